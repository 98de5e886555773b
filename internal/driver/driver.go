// Package driver runs an engine's frame loop.
package driver

import (
	"context"
	"log/slog"
	"time"

	"github.com/nvandessel/neurosim/internal/logging"
)

// Stepper is the part of the engine the loop drives.
type Stepper interface {
	Advance(dt, elapsed float64)
}

// Loop calls Advance once per tick of a time.Ticker with the wall-clock
// delta since the previous tick. The engine clamps dt itself.
type Loop struct {
	stepper  Stepper
	interval time.Duration
	maxTicks uint64
	log      *slog.Logger
	now      func() time.Time
}

// Option configures a Loop.
type Option func(*Loop)

// WithMaxTicks stops the loop after n ticks. 0 runs until cancelled.
func WithMaxTicks(n uint64) Option {
	return func(l *Loop) { l.maxTicks = n }
}

// WithLogger sets the loop's logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Loop) { l.log = log }
}

// New creates a loop ticking every interval.
func New(s Stepper, interval time.Duration, opts ...Option) *Loop {
	if interval <= 0 {
		interval = time.Second / 60
	}
	l := &Loop{
		stepper:  s,
		interval: interval,
		log:      logging.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run ticks until ctx is cancelled or the tick limit is reached. It returns
// the number of ticks run. Cancellation is not an error.
func (l *Loop) Run(ctx context.Context) uint64 {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	start := l.now()
	last := start
	var ticks uint64

	l.log.Info("driver started", "interval", l.interval, "max_ticks", l.maxTicks)
	for {
		select {
		case <-ctx.Done():
			l.log.Info("driver stopped", "ticks", ticks, "reason", context.Cause(ctx))
			return ticks

		case <-ticker.C:
			now := l.now()
			dt := now.Sub(last).Seconds()
			last = now
			l.stepper.Advance(dt, now.Sub(start).Seconds())
			ticks++
			if l.maxTicks > 0 && ticks >= l.maxTicks {
				l.log.Info("driver finished", "ticks", ticks)
				return ticks
			}
		}
	}
}

// Steps advances s n times with a fixed dt, without waiting. It is the
// headless counterpart of Run.
func Steps(s Stepper, n int, dt float64) {
	for i := 1; i <= n; i++ {
		s.Advance(dt, float64(i)*dt)
	}
}
