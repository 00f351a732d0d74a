package schools

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/pelita-edu/pelita/internal/authz"
	"github.com/pelita-edu/pelita/internal/shared"
)

// Service exposes the school directory narrowed to each actor's reach.
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

// ListVisible returns the schools the actor may act within. Listings are
// narrowed with the same resolution the per-resource rules use, so a
// revoked grant disappears from the list immediately.
func (s *Service) ListVisible(ctx context.Context, actor authz.Actor) ([]School, error) {
	set, err := s.engine.ResolveSchools(ctx, actor)
	if err != nil {
		return nil, err
	}
	if set.All() {
		return s.repo.List(ctx)
	}
	if set.Empty() {
		return nil, nil
	}
	return s.repo.ListByIDs(ctx, set.IDs())
}

// GetDashboard loads the headline numbers for one school after the coarse
// section pre-check. The three counts load concurrently.
func (s *Service) GetDashboard(ctx context.Context, actor authz.Actor, schoolID int64) (Dashboard, authz.AccessLevel, error) {
	access, err := s.engine.ValidateSchoolAccess(ctx, actor, schoolID)
	if err != nil {
		return Dashboard{}, authz.AccessLevelNone, err
	}
	if !access.HasAccess {
		return Dashboard{}, authz.AccessLevelNone, shared.ErrAccessDenied
	}

	school, err := s.repo.Get(ctx, schoolID)
	if err != nil {
		return Dashboard{}, authz.AccessLevelNone, err
	}

	dash := Dashboard{School: school}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.CountStudents(gctx, schoolID)
		dash.Students = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountStaff(gctx, schoolID)
		dash.Staff = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountClasses(gctx, schoolID)
		dash.Classes = n
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, authz.AccessLevelNone, err
	}
	return dash, access.Level, nil
}
