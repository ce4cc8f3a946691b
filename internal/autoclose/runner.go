// Package autoclose drives the scheduled week rollover. A Runner polls
// the ledger on a fixed interval; the ledger itself decides whether the
// configured close moment has arrived.
package autoclose

import (
	"context"
	"log/slog"
	"time"
)

// Closer is implemented by the week ledger. CheckAndAutoClose reports
// whether a close actually happened on this tick.
type Closer interface {
	CheckAndAutoClose(ctx context.Context) (bool, error)
}

type Runner struct {
	closer   Closer
	interval time.Duration
	onClose  func()
}

type Option func(*Runner)

// WithOnClose registers a callback invoked after each successful close,
// so the caller can refresh whatever it keeps derived from the ledger.
func WithOnClose(fn func()) Option {
	return func(r *Runner) {
		r.onClose = fn
	}
}

func NewRunner(closer Closer, interval time.Duration, opts ...Option) *Runner {
	r := &Runner{closer: closer, interval: interval}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run blocks until ctx is cancelled. It checks once immediately, then on
// every tick. Check failures are logged and the loop keeps going.
func (r *Runner) Run(ctx context.Context) {
	slog.Info("auto-close runner started", "interval", r.interval)

	r.check(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("auto-close runner stopped")
			return
		case <-ticker.C:
			r.check(ctx)
		}
	}
}

func (r *Runner) check(ctx context.Context) {
	closed, err := r.closer.CheckAndAutoClose(ctx)
	if err != nil {
		slog.Error("auto-close check failed", "error", err)
		return
	}

	if !closed {
		return
	}

	slog.Info("week closed automatically")

	if r.onClose != nil {
		r.onClose()
	}
}
