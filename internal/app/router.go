package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pelita-edu/pelita/internal/auth"
	"github.com/pelita-edu/pelita/internal/authz"
	"github.com/pelita-edu/pelita/internal/enrollment"
	"github.com/pelita-edu/pelita/internal/grants"
	"github.com/pelita-edu/pelita/internal/observability"
	"github.com/pelita-edu/pelita/internal/schools"
	"github.com/pelita-edu/pelita/internal/shared"
	"github.com/pelita-edu/pelita/internal/staff"
	"github.com/pelita-edu/pelita/internal/students"
	"github.com/pelita-edu/pelita/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	SessionManager    *shared.SessionManager
	CSRFManager       *shared.CSRFManager
	ActorResolver     *authz.Resolver
	AuthHandler       *auth.Handler
	SchoolsHandler    *schools.Handler
	GrantsHandler     *grants.Handler
	StudentsHandler   *students.Handler
	StaffHandler      *staff.Handler
	EnrollmentHandler *enrollment.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with Pelita defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		ActorResolver:  params.ActorResolver,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.SchoolsHandler != nil {
		r.Route("/schools", params.SchoolsHandler.MountRoutes)
	}
	if params.GrantsHandler != nil {
		r.Route("/grants", params.GrantsHandler.MountRoutes)
	}
	if params.StudentsHandler != nil {
		r.Route("/students", params.StudentsHandler.MountRoutes)
	}
	if params.StaffHandler != nil {
		r.Route("/staff", params.StaffHandler.MountRoutes)
	}
	if params.EnrollmentHandler != nil {
		r.Route("/enrollment", params.EnrollmentHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
