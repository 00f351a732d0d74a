package enrollment

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pelita-edu/pelita/internal/authz"
	"github.com/pelita-edu/pelita/internal/shared"
)

// Service manages classes, teacher assignments, rosters and guardian
// links. These rows are what relationship reach resolves against, so
// every mutation requires school-level access to the affected school and
// is audited. The engine reads links fresh on every decision; removing a
// row here is immediately effective.
type Service struct {
	repo   RepositoryPort
	engine *authz.Engine
	audit  shared.AuditSink
	logger *slog.Logger
}

// NewService constructs a Service. The audit sink may be nil in tests.
func NewService(repo RepositoryPort, engine *authz.Engine, audit shared.AuditSink, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, engine: engine, audit: audit, logger: logger}
}

// CreateClass adds a class to a school.
func (s *Service) CreateClass(ctx context.Context, actor authz.Actor, schoolID int64, name string) (Class, error) {
	if err := s.requireSchool(ctx, actor, schoolID); err != nil {
		return Class{}, err
	}
	return s.repo.CreateClass(ctx, Class{SchoolID: schoolID, Name: strings.TrimSpace(name)})
}

// ListClasses returns a school's classes.
func (s *Service) ListClasses(ctx context.Context, actor authz.Actor, schoolID int64) ([]Class, error) {
	if err := s.requireSchool(ctx, actor, schoolID); err != nil {
		return nil, err
	}
	return s.repo.ListClassesBySchool(ctx, schoolID)
}

// AssignTeacher binds a teacher to a class in the class's school.
func (s *Service) AssignTeacher(ctx context.Context, actor authz.Actor, teacherID, classID int64) error {
	class, err := s.repo.GetClass(ctx, classID)
	if err != nil {
		return err
	}
	if err := s.requireSchool(ctx, actor, class.SchoolID); err != nil {
		return err
	}
	if err := s.repo.AssignTeacher(ctx, teacherID, classID); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, class.SchoolID, "enrollment.assign_teacher", "class", classID,
		map[string]any{"teacher_id": teacherID})
	return nil
}

// UnassignTeacher removes the binding.
func (s *Service) UnassignTeacher(ctx context.Context, actor authz.Actor, teacherID, classID int64) error {
	class, err := s.repo.GetClass(ctx, classID)
	if err != nil {
		return err
	}
	if err := s.requireSchool(ctx, actor, class.SchoolID); err != nil {
		return err
	}
	if err := s.repo.UnassignTeacher(ctx, teacherID, classID); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, class.SchoolID, "enrollment.unassign_teacher", "class", classID,
		map[string]any{"teacher_id": teacherID})
	return nil
}

// AddToRoster places a student in a class of the student's own school.
func (s *Service) AddToRoster(ctx context.Context, actor authz.Actor, classID, studentID int64) error {
	class, err := s.repo.GetClass(ctx, classID)
	if err != nil {
		return err
	}
	schoolID, err := s.repo.StudentSchool(ctx, studentID)
	if err != nil {
		return err
	}
	if schoolID != class.SchoolID {
		return shared.ErrAccessDenied
	}
	if err := s.requireSchool(ctx, actor, class.SchoolID); err != nil {
		return err
	}
	if err := s.repo.AddToRoster(ctx, classID, studentID); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, class.SchoolID, "enrollment.roster_add", "class", classID,
		map[string]any{"student_id": studentID})
	return nil
}

// RemoveFromRoster takes a student out of a class.
func (s *Service) RemoveFromRoster(ctx context.Context, actor authz.Actor, classID, studentID int64) error {
	class, err := s.repo.GetClass(ctx, classID)
	if err != nil {
		return err
	}
	if err := s.requireSchool(ctx, actor, class.SchoolID); err != nil {
		return err
	}
	if err := s.repo.RemoveFromRoster(ctx, classID, studentID); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, class.SchoolID, "enrollment.roster_remove", "class", classID,
		map[string]any{"student_id": studentID})
	return nil
}

// LinkGuardian binds a parent to a student.
func (s *Service) LinkGuardian(ctx context.Context, actor authz.Actor, parentID, studentID int64) error {
	schoolID, err := s.repo.StudentSchool(ctx, studentID)
	if err != nil {
		return err
	}
	if err := s.requireSchool(ctx, actor, schoolID); err != nil {
		return err
	}
	if err := s.repo.LinkGuardian(ctx, parentID, studentID); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, schoolID, "enrollment.link_guardian", "student", studentID,
		map[string]any{"parent_id": parentID})
	return nil
}

// UnlinkGuardian removes the binding.
func (s *Service) UnlinkGuardian(ctx context.Context, actor authz.Actor, parentID, studentID int64) error {
	schoolID, err := s.repo.StudentSchool(ctx, studentID)
	if err != nil {
		return err
	}
	if err := s.requireSchool(ctx, actor, schoolID); err != nil {
		return err
	}
	if err := s.repo.UnlinkGuardian(ctx, parentID, studentID); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, schoolID, "enrollment.unlink_guardian", "student", studentID,
		map[string]any{"parent_id": parentID})
	return nil
}

// ListGuardians returns the parents linked to a student.
func (s *Service) ListGuardians(ctx context.Context, actor authz.Actor, studentID int64) ([]int64, error) {
	schoolID, err := s.repo.StudentSchool(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if err := s.requireSchool(ctx, actor, schoolID); err != nil {
		return nil, err
	}
	return s.repo.ListGuardians(ctx, studentID)
}

func (s *Service) requireSchool(ctx context.Context, actor authz.Actor, schoolID int64) error {
	access, err := s.engine.ValidateSchoolAccess(ctx, actor, schoolID)
	if err != nil {
		return err
	}
	if !access.HasAccess {
		return shared.ErrAccessDenied
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actor authz.Actor, schoolID int64, action, entity string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		SchoolID: &schoolID,
		Action:   action,
		Entity:   entity,
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	})
	if err != nil {
		s.logger.Warn("enrollment: audit write failed", slog.String("action", action), slog.Any("error", err))
	}
}
