package jobs

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	jobmetrics "github.com/pelita-edu/pelita/internal/jobs"
)

// IntegrityScanner detects link rows the access rules would resolve
// against but whose endpoints no longer exist. Orphans never grant
// access, they only waste lookups; the scan reports them so operators
// can clean up.
type IntegrityScanner struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewIntegrityScanner constructs an IntegrityScanner.
func NewIntegrityScanner(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *IntegrityScanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntegrityScanner{pool: pool, logger: logger, metrics: metrics}
}

type orphanQuery struct {
	kind  string
	query string
}

var orphanQueries = []orphanQuery{
	{
		kind: "grant_missing_director",
		query: `SELECT COUNT(*) FROM school_grants g
		         WHERE g.is_active AND NOT EXISTS (SELECT 1 FROM users u WHERE u.id = g.director_id AND u.is_active)`,
	},
	{
		kind: "grant_missing_school",
		query: `SELECT COUNT(*) FROM school_grants g
		         WHERE g.is_active AND NOT EXISTS (SELECT 1 FROM schools s WHERE s.id = g.school_id AND s.is_active)`,
	},
	{
		kind: "guardian_missing_student",
		query: `SELECT COUNT(*) FROM student_guardians sg
		         WHERE NOT EXISTS (SELECT 1 FROM students st WHERE st.id = sg.student_id)`,
	},
	{
		kind: "guardian_missing_parent",
		query: `SELECT COUNT(*) FROM student_guardians sg
		         WHERE NOT EXISTS (SELECT 1 FROM users u WHERE u.id = sg.parent_id AND u.is_active)`,
	},
	{
		kind: "roster_missing_student",
		query: `SELECT COUNT(*) FROM class_rosters cr
		         WHERE NOT EXISTS (SELECT 1 FROM students st WHERE st.id = cr.student_id)`,
	},
	{
		kind: "assignment_missing_teacher",
		query: `SELECT COUNT(*) FROM teacher_classes tc
		         WHERE NOT EXISTS (SELECT 1 FROM users u WHERE u.id = tc.teacher_id AND u.is_active)`,
	},
}

// Run executes every orphan query concurrently and reports the counts.
func (s *IntegrityScanner) Run(ctx context.Context) error {
	tracker := s.metrics.Track("authz_integrity_scan")
	g, gctx := errgroup.WithContext(ctx)
	for _, oq := range orphanQueries {
		g.Go(func() error {
			var n int64
			if err := s.pool.QueryRow(gctx, oq.query).Scan(&n); err != nil {
				return err
			}
			if n > 0 {
				s.metrics.AddOrphans(oq.kind, int(n))
				s.logger.Warn("integrity scan found orphaned links",
					slog.String("kind", oq.kind), slog.Int64("count", n))
			}
			return nil
		})
	}
	return tracker.End(g.Wait())
}
