package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingCompleter struct {
	calls atomic.Int32
	err   error
}

func (c *countingCompleter) CompleteExpired(ctx context.Context) (int, error) {
	c.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("expected a deadline")
	}
	return 2, c.err
}

func TestContractExpiryScheduler(t *testing.T) {
	t.Run("runs on boot and on every tick", func(t *testing.T) {
		completer := &countingCompleter{}
		stop := NewContractExpiryScheduler(completer, 10*time.Millisecond, true).Start(context.Background())

		assert.Eventually(t, func() bool { return completer.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
		stop()

		after := completer.calls.Load()
		time.Sleep(30 * time.Millisecond)
		assert.Equal(t, after, completer.calls.Load())
	})

	t.Run("without boot run waits for the first tick", func(t *testing.T) {
		completer := &countingCompleter{}
		stop := NewContractExpiryScheduler(completer, time.Hour, false).Start(context.Background())
		time.Sleep(20 * time.Millisecond)
		stop()

		assert.Equal(t, int32(0), completer.calls.Load())
	})

	t.Run("failures do not stop the loop", func(t *testing.T) {
		completer := &countingCompleter{err: errors.New("database unavailable")}
		stop := NewContractExpiryScheduler(completer, 10*time.Millisecond, true).Start(context.Background())

		assert.Eventually(t, func() bool { return completer.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
		stop()
	})

	t.Run("non positive interval falls back to an hour", func(t *testing.T) {
		s := NewContractExpiryScheduler(&countingCompleter{}, 0, false)
		assert.Equal(t, time.Hour, s.interval)
	})
}

func TestStartCacheHealthMonitor(t *testing.T) {
	var pings atomic.Int32
	stop := StartCacheHealthMonitor(context.Background(), PingerFunc(func(context.Context) error {
		if pings.Add(1)%2 == 0 {
			return errors.New("connection refused")
		}
		return nil
	}), 5*time.Millisecond)

	assert.Eventually(t, func() bool { return pings.Load() >= 4 }, time.Second, 5*time.Millisecond)
	stop()

	t.Run("nil client is a no-op", func(t *testing.T) {
		stop := StartCacheHealthMonitor(context.Background(), nil, time.Millisecond)
		stop()
	})
}
