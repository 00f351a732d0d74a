package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskIntegrityScan looks for grant and relationship link rows that
	// point at missing users, schools or students.
	TaskIntegrityScan = "authz:integrity_scan"
	// TaskAuditPrune deletes audit rows past the retention window.
	TaskAuditPrune = "audit:prune"
)

// NewIntegrityScanTask constructs the integrity scan task.
func NewIntegrityScanTask() *asynq.Task {
	return asynq.NewTask(TaskIntegrityScan, nil)
}

// NewAuditPruneTask constructs the audit prune task.
func NewAuditPruneTask() *asynq.Task {
	return asynq.NewTask(TaskAuditPrune, nil)
}
