package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Pinger is satisfied by the redis client
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// StartCacheHealthMonitor pings the cache on every tick and logs failures and recoveries.
// The returned function stops the monitor.
func StartCacheHealthMonitor(parent context.Context, client Pinger, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if client == nil {
		return cancel
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		healthy := true
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(monitorCtx, 3*time.Second)
				err := client.Ping(ctx)
				c()
				switch {
				case err != nil && healthy:
					healthy = false
					log.Warn().Err(err).Msg("redis healthcheck failed")
				case err == nil && !healthy:
					healthy = true
					log.Info().Msg("redis healthcheck recovered")
				}
			}
		}
	}()

	return cancel
}
