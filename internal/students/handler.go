package students

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

// Handler exposes student records, grades and attendance over HTTP.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers student routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/linked", h.listLinked)
	r.Post("/", h.create)
	r.Get("/{studentID}", h.get)
	r.Put("/{studentID}", h.update)
	r.Get("/{studentID}/grades", h.listGrades)
	r.Post("/{studentID}/grades", h.addGrade)
	r.Get("/{studentID}/attendance", h.listAttendance)
	r.Post("/{studentID}/attendance", h.markAttendance)
}

type createStudentRequest struct {
	SchoolID  int64  `json:"school_id" validate:"required,gt=0"`
	Name      string `json:"name" validate:"required,min=2,max=120"`
	ClassName string `json:"class_name" validate:"max=60"`
}

type updateStudentRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=120"`
	ClassName string `json:"class_name" validate:"max=60"`
	IsActive  bool   `json:"is_active"`
}

type addGradeRequest struct {
	Subject string  `json:"subject" validate:"required,min=2,max=80"`
	Term    string  `json:"term" validate:"required,min=2,max=40"`
	Score   float64 `json:"score" validate:"gte=0,lte=100"`
}

type markAttendanceRequest struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Status string `json:"status" validate:"required,oneof=present absent excused late"`
}

type studentResponse struct {
	ID        int64  `json:"id"`
	SchoolID  int64  `json:"school_id"`
	Name      string `json:"name"`
	ClassName string `json:"class_name,omitempty"`
	IsActive  bool   `json:"is_active"`
}

func toStudentResponse(s Student) studentResponse {
	return studentResponse{ID: s.ID, SchoolID: s.SchoolID, Name: s.Name, ClassName: s.ClassName, IsActive: s.IsActive}
}

type gradeResponse struct {
	ID      int64   `json:"id"`
	Subject string  `json:"subject"`
	Term    string  `json:"term"`
	Score   float64 `json:"score"`
}

type attendanceResponse struct {
	ID     int64  `json:"id"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	schoolID, err := strconv.ParseInt(r.URL.Query().Get("school_id"), 10, 64)
	if err != nil || schoolID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "school_id query parameter is required")
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	rows, err := h.service.ListBySchool(r.Context(), actor, schoolID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	meta := shared.NewPagination(page, perPage, len(rows))
	start := (meta.Page - 1) * meta.PerPage
	if start > len(rows) {
		start = len(rows)
	}
	end := start + meta.PerPage
	if end > len(rows) {
		end = len(rows)
	}
	out := make([]studentResponse, 0, end-start)
	for _, s := range rows[start:end] {
		out = append(out, toStudentResponse(s))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"students": out,
		"pagination": map[string]int{
			"page":        meta.Page,
			"per_page":    meta.PerPage,
			"total":       meta.Total,
			"total_pages": meta.TotalPages,
		},
	})
}

func (h *Handler) listLinked(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.ActorFromContext(r.Context())
	rows, err := h.service.ListLinked(r.Context(), actor)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	out := make([]studentResponse, 0, len(rows))
	for _, s := range rows {
		out = append(out, toStudentResponse(s))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"students": out})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	s, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toStudentResponse(s))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createStudentRequest
	if !h.decode(w, r, &req) {
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	s, err := h.service.Create(r.Context(), actor, req.SchoolID, req.Name, req.ClassName)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toStudentResponse(s))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}
	var req updateStudentRequest
	if !h.decode(w, r, &req) {
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	s, err := h.service.Update(r.Context(), actor, id, req.Name, req.ClassName, req.IsActive)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toStudentResponse(s))
}

func (h *Handler) listGrades(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	grades, err := h.service.ListGrades(r.Context(), actor, id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	out := make([]gradeResponse, 0, len(grades))
	for _, g := range grades {
		out = append(out, gradeResponse{ID: g.ID, Subject: g.Subject, Term: g.Term, Score: g.Score})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"grades": out})
}

func (h *Handler) addGrade(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}
	var req addGradeRequest
	if !h.decode(w, r, &req) {
		return
	}
	actor, _ := authz.ActorFromContext(r.Context())
	g, err := h.service.AddGrade(r.Context(), actor, id, req.Subject, req.Term, req.Score)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, gradeResponse{ID: g.ID, Subject: g.Subject, Term: g.Term, Score: g.Score})
}

func (h *Handler) listAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}
	to := time.Now()
	from := to.AddDate(0, -1, 0)
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "from must be YYYY-MM-DD")
			return
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "to must be YYYY-MM-DD")
			return
		}
		to = parsed
	}
	actor, _ := authz.ActorFromContext(r.Context())
	entries, err := h.service.ListAttendance(r.Context(), actor, id, from, to)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	out := make([]attendanceResponse, 0, len(entries))
	for _, a := range entries {
		out = append(out, attendanceResponse{ID: a.ID, Date: a.Date.Format("2006-01-02"), Status: a.Status})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"attendance": out})
}

func (h *Handler) markAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}
	var req markAttendanceRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, _ := time.Parse("2006-01-02", req.Date)
	actor, _ := authz.ActorFromContext(r.Context())
	a, err := h.service.MarkAttendance(r.Context(), actor, id, date, req.Status)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, attendanceResponse{ID: a.ID, Date: a.Date.Format("2006-01-02"), Status: a.Status})
}

func (h *Handler) studentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "studentID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "student id must be a positive integer")
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
		httpx.Problem(w, http.StatusNotFound, "Not Found", "student not found")
	default:
		h.logger.Error("students: request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
