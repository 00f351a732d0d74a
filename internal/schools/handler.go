package schools

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pelita-edu/pelita/internal/authz"
	"github.com/pelita-edu/pelita/internal/platform/httpx"
	"github.com/pelita-edu/pelita/internal/shared"
)

// Handler exposes the school directory over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers school routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{schoolID}/dashboard", h.dashboard)
}

type schoolResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	City string `json:"city,omitempty"`
}

type dashboardResponse struct {
	School      schoolResponse `json:"school"`
	Students    int64          `json:"students"`
	Staff       int64          `json:"staff"`
	Classes     int64          `json:"classes"`
	AccessLevel string         `json:"access_level"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.ActorFromContext(r.Context())
	visible, err := h.service.ListVisible(r.Context(), actor)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	out := make([]schoolResponse, 0, len(visible))
	for _, s := range visible {
		out = append(out, schoolResponse{ID: s.ID, Name: s.Name, City: s.City})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"schools": out})
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	schoolID, err := strconv.ParseInt(chi.URLParam(r, "schoolID"), 10, 64)
	if err != nil || schoolID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "school id must be a positive integer")
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	dash, level, err := h.service.GetDashboard(r.Context(), actor, schoolID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dashboardResponse{
		School:      schoolResponse{ID: dash.School.ID, Name: dash.School.Name, City: dash.School.City},
		Students:    dash.Students,
		Staff:       dash.Staff,
		Classes:     dash.Classes,
		AccessLevel: string(level),
	})
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrAccessDenied):
		httpx.Deny(w)
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "school not found")
	default:
		h.logger.Error("schools: request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
