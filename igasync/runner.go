package igasync

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/vetadata/iga_backend/config"
)

// StartScheduler runs RunSync on the configured interval until the context
// is cancelled. The first pass runs shortly after startup so a fresh deploy
// does not wait a full interval for data.
func StartScheduler(ctx context.Context) {
	if !config.UpstreamSyncEnabled() {
		config.GetLogger().WithField("module", "igasync").Info("scheduled sync disabled")
		return
	}

	go func() {
		logger := config.GetLogger()
		interval := config.UpstreamSyncInterval()

		timer := time.NewTimer(30 * time.Second)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			if _, err := RunSync(ctx, "scheduler"); err != nil && !errors.Is(err, ErrSyncRunning) {
				config.LogError(logger, "igasync", "StartScheduler", "scheduled run", nil, err)
			}

			timer.Reset(interval)
		}
	}()
}
