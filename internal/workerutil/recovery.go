// Package workerutil runs long-lived background goroutines that survive
// panics.
package workerutil

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

const (
	defaultInitialBackoff = 100 * time.Millisecond
	defaultMaxBackoff     = 5 * time.Second
	defaultMaxRestarts    = 10
)

// RestartPolicy controls how a panicking worker is restarted. Zero fields
// take the package defaults.
type RestartPolicy struct {
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// MaxRestarts is the total number of runs allowed; 1 means never restart.
	MaxRestarts int

	// OnPanic runs after each recovered panic. attempt starts at 1.
	OnPanic func(worker string, attempt int)
	// OnGiveUp runs once the worker has used all its runs.
	OnGiveUp func(worker string, runs int)
	// Stopping reports that the application is shutting down; a worker that
	// panics then is not restarted.
	Stopping func() bool
}

func (p RestartPolicy) withDefaults() RestartPolicy {
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = defaultInitialBackoff
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = defaultMaxBackoff
	}
	if p.MaxRestarts <= 0 {
		p.MaxRestarts = defaultMaxRestarts
	}
	if p.MaxBackoff < p.InitialBackoff {
		slog.Warn("[WARN-WORKER] MaxBackoff below InitialBackoff, raising it",
			"initialBackoff", p.InitialBackoff, "maxBackoff", p.MaxBackoff)
		p.MaxBackoff = p.InitialBackoff
	}
	return p
}

// Go starts fn on a goroutine tracked by wg. A panic in fn is logged and fn
// is started again after an exponential backoff, until ctx is cancelled or
// the policy runs out of restarts. A normal return ends the worker.
func Go(ctx context.Context, name string, wg *sync.WaitGroup, fn func(ctx context.Context), policy RestartPolicy) {
	policy = policy.withDefaults()
	wg.Go(func() {
		supervise(ctx, name, fn, policy)
	})
}

func supervise(ctx context.Context, name string, fn func(ctx context.Context), policy RestartPolicy) {
	delay := policy.InitialBackoff
	for run := 1; run <= policy.MaxRestarts; run++ {
		if !runOnce(ctx, name, fn) || ctx.Err() != nil {
			return
		}
		if policy.Stopping != nil && policy.Stopping() {
			slog.Info("[worker] shutting down, not restarting", "worker", name)
			return
		}
		slog.Warn("[worker] restarting after panic", "worker", name, "attempt", run, "delay", delay)
		if policy.OnPanic != nil {
			policy.OnPanic(name, run)
		}
		if run == policy.MaxRestarts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		delay = nextBackoff(delay, policy.MaxBackoff)
	}

	slog.Error("[worker] giving up after repeated panics", "worker", name, "runs", policy.MaxRestarts)
	if policy.OnGiveUp != nil {
		policy.OnGiveUp(name, policy.MaxRestarts)
	}
}

// runOnce reports whether fn panicked.
func runOnce(ctx context.Context, name string, fn func(ctx context.Context)) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[worker] recovered from panic", "worker", name, "panic", r, "stack", string(debug.Stack()))
			panicked = true
		}
	}()
	fn(ctx)
	return false
}

// nextBackoff doubles current up to limit, guarding against overflow.
func nextBackoff(current, limit time.Duration) time.Duration {
	if current <= 0 {
		return defaultInitialBackoff
	}
	next := current * 2
	if next > limit || next < current {
		return limit
	}
	return next
}
