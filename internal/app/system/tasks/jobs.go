// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/redaid/internal/app/store/audit"
	"github.com/dalemusser/redaid/internal/app/system/idempotency"
	"github.com/dalemusser/redaid/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// IdempotencyPurgeJob removes idempotency keys older than ttl.
// This is a backup for when MongoDB's TTL index cleanup is delayed.
func IdempotencyPurgeJob(store *idempotency.MongoStore, ttl time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "idempotency-purge",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := store.Purge(ctx, ttl)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Debug("purged expired idempotency keys", zap.Int64("count", count))
			}
			return nil
		},
	}
}

// RateLimitSweepJob drops idle per-client buckets so the limiter's memory
// tracks active clients only.
func RateLimitSweepJob(l *ratelimit.Limiter, interval time.Duration) Job {
	return Job{
		Name:     "ratelimit-sweep",
		Interval: interval,
		Run: func(ctx context.Context) error {
			l.Sweep(time.Now())
			return nil
		},
	}
}

// AuditPurgeJob deletes audit events older than retention, once a day.
func AuditPurgeJob(store *audit.Store, retention time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "audit-purge",
		Interval: 24 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := store.Purge(ctx, time.Now().UTC().Add(-retention))
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("purged old audit events", zap.Int64("count", count))
			}
			return nil
		},
	}
}
