package db

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Purger permanently removes documents that were soft-deleted before a cutoff.
type Purger interface {
	Purge(ctx context.Context, before time.Time) (int64, error)
}

// StartSoftDeleteCleaner purges soft-deleted documents older than retention
// every interval until ctx is cancelled.
func StartSoftDeleteCleaner(
	ctx context.Context,
	purger Purger,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := purger.Purge(ctx, time.Now().Add(-retention))
				if err != nil {
					log.Error("failed to clean soft-deleted documents", zap.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("cleaned soft-deleted documents", zap.Int64("removed", removed))
				}
			}
		}
	}()
}
