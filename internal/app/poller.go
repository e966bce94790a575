package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/listfeed/listfeed/internal/state"
)

const minRefreshInterval = 5 * time.Second

// Reloadable is the part of a fetch controller the poller drives.
type Reloadable interface {
	Name() string
	Phase() state.Phase
	Load()
}

// StartPoller reloads every resource that is currently Loaded once per
// interval. Failed resources are left alone so retry stays with the user, and
// a resource already Loading is not superseded. It returns immediately; the
// goroutine exits when ctx ends.
func StartPoller(ctx context.Context, interval time.Duration, logger *zap.Logger, resources ...Reloadable) {
	if interval <= 0 || len(resources) == 0 {
		return
	}
	if interval < minRefreshInterval {
		interval = minRefreshInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := reloadLoaded(resources); n > 0 {
					logger.Debug("auto refresh", zap.Int("resources", n))
				}
			}
		}
	}()
}

func reloadLoaded(resources []Reloadable) int {
	n := 0
	for _, r := range resources {
		if r.Phase() != state.Loaded {
			continue
		}
		r.Load()
		n++
	}
	return n
}
