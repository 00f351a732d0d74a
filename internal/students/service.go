package students

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pelita-edu/pelita/internal/authz"
	"github.com/pelita-edu/pelita/internal/shared"
)

var nameTitler = cases.Title(language.Indonesian)

// normalizeName trims and title-cases a person name so "budi santoso"
// and "BUDI SANTOSO" land in the directory as the same spelling.
func normalizeName(name string) string {
	return nameTitler.String(strings.Join(strings.Fields(name), " "))
}

// Service exposes student records, grades and attendance. Every read and
// write asks the engine with a descriptor of the concrete row, so school
// boundaries and guardian or roster links are enforced uniformly.
type Service struct {
	repo   RepositoryPort
	engine *authz.Engine
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo RepositoryPort, engine *authz.Engine, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, engine: engine, logger: logger}
}

// Get returns one student record.
func (s *Service) Get(ctx context.Context, actor authz.Actor, id int64) (Student, error) {
	student, err := s.repo.Get(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if err := s.gate(ctx, actor, authz.ResourceStudentRecord, student, authz.OpRead); err != nil {
		return Student{}, err
	}
	return student, nil
}

// ListBySchool lists a school's students. School members see the whole
// roster; parents and teachers without school access see only the rows
// their links reach, narrowed with the same resolution single-record
// reads use.
func (s *Service) ListBySchool(ctx context.Context, actor authz.Actor, schoolID int64) ([]Student, error) {
	access, err := s.engine.ValidateSchoolAccess(ctx, actor, schoolID)
	if err != nil {
		return nil, err
	}
	if access.HasAccess {
		return s.repo.ListBySchool(ctx, schoolID)
	}

	linked, applicable, err := s.engine.VisibleStudents(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !applicable {
		return nil, shared.ErrAccessDenied
	}
	rows, err := s.repo.ListByIDs(ctx, linked)
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, st := range rows {
		if st.SchoolID == schoolID {
			out = append(out, st)
		}
	}
	return out, nil
}

// ListLinked returns the students an actor reaches through guardian or
// roster links, regardless of school.
func (s *Service) ListLinked(ctx context.Context, actor authz.Actor) ([]Student, error) {
	linked, applicable, err := s.engine.VisibleStudents(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !applicable {
		return nil, shared.ErrAccessDenied
	}
	return s.repo.ListByIDs(ctx, linked)
}

// Create enrolls a student into a school.
func (s *Service) Create(ctx context.Context, actor authz.Actor, schoolID int64, name, className string) (Student, error) {
	decision, err := s.engine.CanAccess(ctx, actor,
		authz.SchoolResource(authz.ResourceStudentRecord, schoolID), authz.OpCreate)
	if err != nil {
		return Student{}, err
	}
	if !decision.Allowed {
		return Student{}, shared.ErrAccessDenied
	}
	return s.repo.Create(ctx, Student{
		SchoolID:  schoolID,
		Name:      normalizeName(name),
		ClassName: strings.TrimSpace(className),
	})
}

// Update rewrites a student's mutable fields.
func (s *Service) Update(ctx context.Context, actor authz.Actor, id int64, name, className string, isActive bool) (Student, error) {
	student, err := s.repo.Get(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if err := s.gate(ctx, actor, authz.ResourceStudentRecord, student, authz.OpUpdate); err != nil {
		return Student{}, err
	}
	student.Name = normalizeName(name)
	student.ClassName = strings.TrimSpace(className)
	student.IsActive = isActive
	return s.repo.Update(ctx, student)
}

// ListGrades returns a student's grade entries.
func (s *Service) ListGrades(ctx context.Context, actor authz.Actor, studentID int64) ([]GradeEntry, error) {
	student, err := s.repo.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if err := s.gate(ctx, actor, authz.ResourceGradeEntry, student, authz.OpList); err != nil {
		return nil, err
	}
	return s.repo.ListGrades(ctx, studentID)
}

// AddGrade records a graded result for a student.
func (s *Service) AddGrade(ctx context.Context, actor authz.Actor, studentID int64, subject, term string, score float64) (GradeEntry, error) {
	student, err := s.repo.Get(ctx, studentID)
	if err != nil {
		return GradeEntry{}, err
	}
	if err := s.gate(ctx, actor, authz.ResourceGradeEntry, student, authz.OpCreate); err != nil {
		return GradeEntry{}, err
	}
	return s.repo.AddGrade(ctx, GradeEntry{
		StudentID: student.ID,
		SchoolID:  student.SchoolID,
		Subject:   strings.TrimSpace(subject),
		Term:      strings.TrimSpace(term),
		Score:     score,
		EnteredBy: actor.ID,
	})
}

// ListAttendance returns a student's attendance in a date window.
func (s *Service) ListAttendance(ctx context.Context, actor authz.Actor, studentID int64, from, to time.Time) ([]AttendanceEntry, error) {
	student, err := s.repo.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if err := s.gate(ctx, actor, authz.ResourceAttendance, student, authz.OpList); err != nil {
		return nil, err
	}
	return s.repo.ListAttendance(ctx, studentID, from, to)
}

// MarkAttendance records a student's status for one day.
func (s *Service) MarkAttendance(ctx context.Context, actor authz.Actor, studentID int64, date time.Time, status string) (AttendanceEntry, error) {
	student, err := s.repo.Get(ctx, studentID)
	if err != nil {
		return AttendanceEntry{}, err
	}
	if err := s.gate(ctx, actor, authz.ResourceAttendance, student, authz.OpCreate); err != nil {
		return AttendanceEntry{}, err
	}
	return s.repo.MarkAttendance(ctx, AttendanceEntry{
		StudentID: student.ID,
		SchoolID:  student.SchoolID,
		Date:      date,
		Status:    status,
	})
}

func (s *Service) gate(ctx context.Context, actor authz.Actor, t authz.ResourceType, student Student, op authz.Operation) error {
	decision, err := s.engine.CanAccess(ctx, actor,
		authz.StudentResource(t, student.SchoolID, student.ID), op)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return shared.ErrAccessDenied
	}
	return nil
}
