// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/healthcredit/internal/app/store/audit"
	"go.uber.org/zap"
)

// Job is a unit of periodic background work.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration // per-run deadline; zero means 30s
	Run      func(ctx context.Context) error
}

// AuditRetentionJob creates a job that deletes audit events older than retention.
// A non-positive retention keeps events forever and returns ok=false.
func AuditRetentionJob(store *audit.Store, logger *zap.Logger, retention time.Duration) (Job, bool) {
	if retention <= 0 {
		return Job{}, false
	}
	return Job{
		Name:     "audit-retention",
		Interval: 1 * time.Hour,
		Timeout:  2 * time.Minute,
		Run: func(ctx context.Context) error {
			count, err := store.DeleteOlderThan(ctx, time.Now().UTC().Add(-retention))
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("deleted expired audit events",
					zap.Int64("count", count),
					zap.Duration("retention", retention))
			}
			return nil
		},
	}, true
}
