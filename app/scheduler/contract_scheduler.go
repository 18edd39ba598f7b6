// Package scheduler runs periodic background jobs
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ExpiryCompleter completes active contracts whose end date has passed
type ExpiryCompleter interface {
	CompleteExpired(ctx context.Context) (int, error)
}

// ContractExpiryScheduler periodically completes active contracts past their end date
type ContractExpiryScheduler struct {
	completer ExpiryCompleter
	interval  time.Duration
	timeout   time.Duration
	runOnBoot bool
	logger    zerolog.Logger
}

func NewContractExpiryScheduler(completer ExpiryCompleter, interval time.Duration, runOnBoot bool) *ContractExpiryScheduler {
	if interval <= 0 {
		interval = time.Hour
	}

	return &ContractExpiryScheduler{
		completer: completer,
		interval:  interval,
		timeout:   5 * time.Minute,
		runOnBoot: runOnBoot,
		logger:    log.With().Str("component", "contract_expiry_scheduler").Logger(),
	}
}

// Start launches the scheduler loop in a background goroutine and returns a stop function
func (s *ContractExpiryScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	go func() {
		defer close(done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		if s.runOnBoot {
			s.runOnce(ctx)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	s.logger.Info().Dur("interval", s.interval).Msg("scheduler started")

	return func() {
		cancel()
		<-done
		s.logger.Info().Msg("scheduler stopped")
	}
}

func (s *ContractExpiryScheduler) runOnce(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	completed, err := s.completer.CompleteExpired(ctx)
	if err != nil {
		s.logger.Error().Err(err).Int("completed", completed).Msg("completing expired contracts failed")
		return
	}
	if completed > 0 {
		s.logger.Info().Int("completed", completed).Msg("expired contracts completed")
	}
}
