package enrollment

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

// Handler exposes enrollment administration over HTTP.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers enrollment routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/classes", h.listClasses)
	r.Post("/classes", h.createClass)
	r.Post("/classes/{classID}/teachers", h.assignTeacher)
	r.Delete("/classes/{classID}/teachers/{teacherID}", h.unassignTeacher)
	r.Post("/classes/{classID}/roster", h.addToRoster)
	r.Delete("/classes/{classID}/roster/{studentID}", h.removeFromRoster)
	r.Get("/students/{studentID}/guardians", h.listGuardians)
	r.Post("/students/{studentID}/guardians", h.linkGuardian)
	r.Delete("/students/{studentID}/guardians/{parentID}", h.unlinkGuardian)
}

type createClassRequest struct {
	SchoolID int64  `json:"school_id" validate:"required,gt=0"`
	Name     string `json:"name" validate:"required,min=1,max=60"`
}

type assignTeacherRequest struct {
	TeacherID int64 `json:"teacher_id" validate:"required,gt=0"`
}

type rosterRequest struct {
	StudentID int64 `json:"student_id" validate:"required,gt=0"`
}

type guardianRequest struct {
	ParentID int64 `json:"parent_id" validate:"required,gt=0"`
}

type classResponse struct {
	ID       int64  `json:"id"`
	SchoolID int64  `json:"school_id"`
	Name     string `json:"name"`
}

func (h *Handler) listClasses(w http.ResponseWriter, r *http.Request) {
	schoolID, err := strconv.ParseInt(r.URL.Query().Get("school_id"), 10, 64)
	if err != nil || schoolID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "school_id query parameter is required")
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	classes, err := h.service.ListClasses(r.Context(), actor, schoolID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	out := make([]classResponse, 0, len(classes))
	for _, c := range classes {
		out = append(out, classResponse{ID: c.ID, SchoolID: c.SchoolID, Name: c.Name})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"classes": out})
}

func (h *Handler) createClass(w http.ResponseWriter, r *http.Request) {
	var req createClassRequest
	if !h.decode(w, r, &req) {
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	c, err := h.service.CreateClass(r.Context(), actor, req.SchoolID, req.Name)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, classResponse{ID: c.ID, SchoolID: c.SchoolID, Name: c.Name})
}

func (h *Handler) assignTeacher(w http.ResponseWriter, r *http.Request) {
	classID, ok := h.pathID(w, r, "classID")
	if !ok {
		return
	}
	var req assignTeacherRequest
	if !h.decode(w, r, &req) {
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	if err := h.service.AssignTeacher(r.Context(), actor, req.TeacherID, classID); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) unassignTeacher(w http.ResponseWriter, r *http.Request) {
	classID, ok := h.pathID(w, r, "classID")
	if !ok {
		return
	}
	teacherID, ok := h.pathID(w, r, "teacherID")
	if !ok {
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	if err := h.service.UnassignTeacher(r.Context(), actor, teacherID, classID); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addToRoster(w http.ResponseWriter, r *http.Request) {
	classID, ok := h.pathID(w, r, "classID")
	if !ok {
		return
	}
	var req rosterRequest
	if !h.decode(w, r, &req) {
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	if err := h.service.AddToRoster(r.Context(), actor, classID, req.StudentID); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeFromRoster(w http.ResponseWriter, r *http.Request) {
	classID, ok := h.pathID(w, r, "classID")
	if !ok {
		return
	}
	studentID, ok := h.pathID(w, r, "studentID")
	if !ok {
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	if err := h.service.RemoveFromRoster(r.Context(), actor, classID, studentID); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listGuardians(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.pathID(w, r, "studentID")
	if !ok {
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	parents, err := h.service.ListGuardians(r.Context(), actor, studentID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if parents == nil {
		parents = []int64{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"guardians": parents})
}

func (h *Handler) linkGuardian(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.pathID(w, r, "studentID")
	if !ok {
		return
	}
	var req guardianRequest
	if !h.decode(w, r, &req) {
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	if err := h.service.LinkGuardian(r.Context(), actor, req.ParentID, studentID); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) unlinkGuardian(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.pathID(w, r, "studentID")
	if !ok {
		return
	}
	parentID, ok := h.pathID(w, r, "parentID")
	if !ok {
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	if err := h.service.UnlinkGuardian(r.Context(), actor, parentID, studentID); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", name+" must be a positive integer")
		return 0, false
	}
	return id, true
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
		h.logger.Error("enrollment: request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
