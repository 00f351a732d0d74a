package grants

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pelita-edu/pelita/internal/authz"
	"github.com/pelita-edu/pelita/internal/platform/httpx"
	"github.com/pelita-edu/pelita/internal/shared"
)

// Handler exposes grant administration over HTTP.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers grant routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/{grantID}/revoke", h.revoke)
}

type createGrantRequest struct {
	DirectorID int64 `json:"director_id" validate:"required,gt=0"`
	SchoolID   int64 `json:"school_id" validate:"required,gt=0"`
}

type grantResponse struct {
	ID         int64 `json:"id"`
	DirectorID int64 `json:"director_id"`
	SchoolID   int64 `json:"school_id"`
	IsActive   bool  `json:"is_active"`
	GrantedBy  int64 `json:"granted_by"`
}

func toGrantResponse(g SchoolGrant) grantResponse {
	return grantResponse{
		ID:         g.ID,
		DirectorID: g.DirectorID,
		SchoolID:   g.SchoolID,
		IsActive:   g.IsActive,
		GrantedBy:  g.GrantedBy,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	directorID, err := strconv.ParseInt(r.URL.Query().Get("director_id"), 10, 64)
	if err != nil || directorID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "director_id query parameter is required")
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	grants, err := h.service.ListByDirector(r.Context(), actor, directorID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	out := make([]grantResponse, 0, len(grants))
	for _, g := range grants {
		out = append(out, toGrantResponse(g))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"grants": out})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createGrantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "director_id and school_id are required")
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	g, err := h.service.Create(r.Context(), actor, req.DirectorID, req.SchoolID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toGrantResponse(g))
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "grantID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "grant id must be a positive integer")
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	g, err := h.service.Revoke(r.Context(), actor, id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toGrantResponse(g))
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrAccessDenied):
		httpx.Deny(w)
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "grant not found")
	default:
		h.logger.Error("grants: request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
