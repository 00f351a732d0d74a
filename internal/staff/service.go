package staff

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pelita-edu/pelita/internal/authz"
	"github.com/pelita-edu/pelita/internal/shared"
)

// Service exposes staff records and leave requests. Staff records are an
// administratively gated type; leave requests are ordinary school-scoped
// rows.
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

// Get returns one staff record.
func (s *Service) Get(ctx context.Context, actor authz.Actor, id int64) (Member, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return Member{}, err
	}
	if err := s.gate(ctx, actor, authz.ResourceStaffRecord, m.SchoolID, authz.OpRead); err != nil {
		return Member{}, err
	}
	return m, nil
}

// ListBySchool lists a school's staff records.
func (s *Service) ListBySchool(ctx context.Context, actor authz.Actor, schoolID int64) ([]Member, error) {
	if err := s.gate(ctx, actor, authz.ResourceStaffRecord, schoolID, authz.OpList); err != nil {
		return nil, err
	}
	return s.repo.ListBySchool(ctx, schoolID)
}

// Create adds a staff record to a school.
func (s *Service) Create(ctx context.Context, actor authz.Actor, m Member) (Member, error) {
	if err := s.gate(ctx, actor, authz.ResourceStaffRecord, m.SchoolID, authz.OpCreate); err != nil {
		return Member{}, err
	}
	m.Name = strings.TrimSpace(m.Name)
	m.Position = strings.TrimSpace(m.Position)
	return s.repo.Create(ctx, m)
}

// Update rewrites a staff record's mutable fields.
func (s *Service) Update(ctx context.Context, actor authz.Actor, id int64, name, position string, isActive bool) (Member, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return Member{}, err
	}
	if err := s.gate(ctx, actor, authz.ResourceStaffRecord, m.SchoolID, authz.OpUpdate); err != nil {
		return Member{}, err
	}
	m.Name = strings.TrimSpace(name)
	m.Position = strings.TrimSpace(position)
	m.IsActive = isActive
	return s.repo.Update(ctx, m)
}

// ListLeaveBySchool lists a school's leave requests.
func (s *Service) ListLeaveBySchool(ctx context.Context, actor authz.Actor, schoolID int64) ([]LeaveRequest, error) {
	if err := s.gate(ctx, actor, authz.ResourceLeaveRequest, schoolID, authz.OpList); err != nil {
		return nil, err
	}
	return s.repo.ListLeaveBySchool(ctx, schoolID)
}

// RequestLeave files a pending leave request for a staff member.
func (s *Service) RequestLeave(ctx context.Context, actor authz.Actor, lr LeaveRequest) (LeaveRequest, error) {
	member, err := s.repo.Get(ctx, lr.StaffID)
	if err != nil {
		return LeaveRequest{}, err
	}
	lr.SchoolID = member.SchoolID
	if err := s.gate(ctx, actor, authz.ResourceLeaveRequest, lr.SchoolID, authz.OpCreate); err != nil {
		return LeaveRequest{}, err
	}
	lr.Reason = strings.TrimSpace(lr.Reason)
	return s.repo.CreateLeave(ctx, lr)
}

// DecideLeave approves or rejects a pending leave request.
func (s *Service) DecideLeave(ctx context.Context, actor authz.Actor, id int64, status string) (LeaveRequest, error) {
	lr, err := s.repo.GetLeave(ctx, id)
	if err != nil {
		return LeaveRequest{}, err
	}
	if err := s.gate(ctx, actor, authz.ResourceLeaveRequest, lr.SchoolID, authz.OpUpdate); err != nil {
		return LeaveRequest{}, err
	}
	return s.repo.SetLeaveStatus(ctx, id, status)
}

func (s *Service) gate(ctx context.Context, actor authz.Actor, t authz.ResourceType, schoolID int64, op authz.Operation) error {
	decision, err := s.engine.CanAccess(ctx, actor, authz.SchoolResource(t, schoolID), op)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return shared.ErrAccessDenied
	}
	return nil
}
