package grants

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/pelita-edu/pelita/internal/authz"
	"github.com/pelita-edu/pelita/internal/shared"
)

// Service manages director school grants. Every operation is gated by a
// fresh engine decision; grant rows are administratively gated, so only
// platform roles can reach them.
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

// ListByDirector returns a director's grant rows.
func (s *Service) ListByDirector(ctx context.Context, actor authz.Actor, directorID int64) ([]SchoolGrant, error) {
	if err := s.gate(ctx, actor, authz.OpList); err != nil {
		return nil, err
	}
	return s.repo.ListByDirector(ctx, directorID)
}

// Create grants a director access to a school. Re-granting a revoked
// pair reactivates the existing row.
func (s *Service) Create(ctx context.Context, actor authz.Actor, directorID, schoolID int64) (SchoolGrant, error) {
	if err := s.gate(ctx, actor, authz.OpCreate); err != nil {
		return SchoolGrant{}, err
	}
	g, err := s.repo.Upsert(ctx, directorID, schoolID, actor.ID)
	if err != nil {
		return SchoolGrant{}, err
	}
	s.recordAudit(ctx, actor, "grant.create", g)
	return g, nil
}

// Revoke deactivates a grant. The director loses the school on their
// next decision; nothing is cached in between.
func (s *Service) Revoke(ctx context.Context, actor authz.Actor, id int64) (SchoolGrant, error) {
	if err := s.gate(ctx, actor, authz.OpDelete); err != nil {
		return SchoolGrant{}, err
	}
	g, err := s.repo.Revoke(ctx, id)
	if err != nil {
		return SchoolGrant{}, err
	}
	s.recordAudit(ctx, actor, "grant.revoke", g)
	return g, nil
}

func (s *Service) gate(ctx context.Context, actor authz.Actor, op authz.Operation) error {
	decision, err := s.engine.CanAccess(ctx, actor, authz.GlobalResource(authz.ResourceSchoolGrant), op)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return shared.ErrAccessDenied
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actor authz.Actor, action string, g SchoolGrant) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		SchoolID: &g.SchoolID,
		Action:   action,
		Entity:   "school_grant",
		EntityID: strconv.FormatInt(g.ID, 10),
		Meta:     map[string]any{"director_id": g.DirectorID, "is_active": g.IsActive},
	})
	if err != nil {
		s.logger.Warn("grants: audit write failed", slog.String("action", action), slog.Any("error", err))
	}
}
