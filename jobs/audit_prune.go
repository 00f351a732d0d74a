package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/pelita-edu/pelita/internal/jobs"
)

// AuditPruner deletes audit rows older than the retention window.
type AuditPruner struct {
	pool      *pgxpool.Pool
	retention time.Duration
	logger    *slog.Logger
	metrics   *jobmetrics.Metrics
}

// NewAuditPruner constructs an AuditPruner.
func NewAuditPruner(pool *pgxpool.Pool, retention time.Duration, logger *slog.Logger, metrics *jobmetrics.Metrics) *AuditPruner {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditPruner{pool: pool, retention: retention, logger: logger, metrics: metrics}
}

// Run deletes expired audit rows in a single statement.
func (p *AuditPruner) Run(ctx context.Context) error {
	tracker := p.metrics.Track("audit_prune")
	cutoff := time.Now().Add(-p.retention)
	tag, err := p.pool.Exec(ctx, `DELETE FROM audit_logs WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return tracker.End(err)
	}
	if tag.RowsAffected() > 0 {
		p.logger.Info("audit prune completed",
			slog.Int64("deleted", tag.RowsAffected()),
			slog.Time("cutoff", cutoff))
	}
	return tracker.End(nil)
}
