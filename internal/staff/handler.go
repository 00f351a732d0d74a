package staff

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pelita-edu/pelita/internal/authz"
	"github.com/pelita-edu/pelita/internal/platform/httpx"
	"github.com/pelita-edu/pelita/internal/shared"
)

// Handler exposes staff administration over HTTP.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers staff routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{staffID}", h.get)
	r.Put("/{staffID}", h.update)
	r.Get("/leave", h.listLeave)
	r.Post("/leave", h.requestLeave)
	r.Post("/leave/{leaveID}/decision", h.decideLeave)
}

type createStaffRequest struct {
	UserID   int64  `json:"user_id" validate:"required,gt=0"`
	SchoolID int64  `json:"school_id" validate:"required,gt=0"`
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Position string `json:"position" validate:"required,min=2,max=80"`
}

type updateStaffRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Position string `json:"position" validate:"required,min=2,max=80"`
	IsActive bool   `json:"is_active"`
}

type requestLeaveRequest struct {
	StaffID  int64  `json:"staff_id" validate:"required,gt=0"`
	FromDate string `json:"from_date" validate:"required,datetime=2006-01-02"`
	ToDate   string `json:"to_date" validate:"required,datetime=2006-01-02"`
	Reason   string `json:"reason" validate:"required,min=3,max=240"`
}

type decideLeaveRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

type staffResponse struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	SchoolID int64  `json:"school_id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	IsActive bool   `json:"is_active"`
}

type leaveResponse struct {
	ID       int64  `json:"id"`
	StaffID  int64  `json:"staff_id"`
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
	Reason   string `json:"reason"`
	Status   string `json:"status"`
}

func toStaffResponse(m Member) staffResponse {
	return staffResponse{ID: m.ID, UserID: m.UserID, SchoolID: m.SchoolID, Name: m.Name, Position: m.Position, IsActive: m.IsActive}
}

func toLeaveResponse(lr LeaveRequest) leaveResponse {
	return leaveResponse{
		ID:       lr.ID,
		StaffID:  lr.StaffID,
		FromDate: lr.FromDate.Format("2006-01-02"),
		ToDate:   lr.ToDate.Format("2006-01-02"),
		Reason:   lr.Reason,
		Status:   lr.Status,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := h.schoolIDQuery(w, r)
	if !ok {
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	members, err := h.service.ListBySchool(r.Context(), actor, schoolID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	out := make([]staffResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toStaffResponse(m))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"staff": out})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "staffID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "staff id must be a positive integer")
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	m, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toStaffResponse(m))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createStaffRequest
	if !h.decode(w, r, &req) {
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	m, err := h.service.Create(r.Context(), actor, Member{
		UserID:   req.UserID,
		SchoolID: req.SchoolID,
		Name:     req.Name,
		Position: req.Position,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toStaffResponse(m))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "staffID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "staff id must be a positive integer")
		return
	}
	var req updateStaffRequest
	if !h.decode(w, r, &req) {
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	m, err := h.service.Update(r.Context(), actor, id, req.Name, req.Position, req.IsActive)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toStaffResponse(m))
}

func (h *Handler) listLeave(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := h.schoolIDQuery(w, r)
	if !ok {
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	requests, err := h.service.ListLeaveBySchool(r.Context(), actor, schoolID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	out := make([]leaveResponse, 0, len(requests))
	for _, lr := range requests {
		out = append(out, toLeaveResponse(lr))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"leave_requests": out})
}

func (h *Handler) requestLeave(w http.ResponseWriter, r *http.Request) {
	var req requestLeaveRequest
	if !h.decode(w, r, &req) {
		return
	}
	from, _ := time.Parse("2006-01-02", req.FromDate)
	to, _ := time.Parse("2006-01-02", req.ToDate)
	if to.Before(from) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "to_date must not precede from_date")
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	lr, err := h.service.RequestLeave(r.Context(), actor, LeaveRequest{
		StaffID:  req.StaffID,
		FromDate: from,
		ToDate:   to,
		Reason:   req.Reason,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toLeaveResponse(lr))
}

func (h *Handler) decideLeave(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "leaveID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "leave id must be a positive integer")
		return
	}
	var req decideLeaveRequest
	if !h.decode(w, r, &req) {
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	lr, err := h.service.DecideLeave(r.Context(), actor, id, req.Status)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toLeaveResponse(lr))
}

func (h *Handler) schoolIDQuery(w http.ResponseWriter, r *http.Request) (int64, bool) {
	schoolID, err := strconv.ParseInt(r.URL.Query().Get("school_id"), 10, 64)
	if err != nil || schoolID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "school_id query parameter is required")
		return 0, false
	}
	return schoolID, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body must be valid JSON")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "request payload failed validation")
		return false
	}
	return true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrAccessDenied):
		httpx.Deny(w)
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "record not found")
	default:
		h.logger.Error("staff: request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
