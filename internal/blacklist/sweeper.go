package blacklist

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper drops expired entries from a store.
type Sweeper interface {
	Sweep(now time.Time) int
}

// StartSweeper removes expired revocations every interval until ctx is done.
func StartSweeper(
	ctx context.Context,
	store Sweeper,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if removed := store.Sweep(now); removed > 0 {
					log.Debug("swept expired revoked tokens", zap.Int("removed", removed))
				}
			}
		}
	}()
}
