package autoclose_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tassioalves/controle-financeiro-semanal/internal/autoclose"
)

type fakeCloser struct {
	calls  atomic.Int64
	closed atomic.Bool
}

func (f *fakeCloser) CheckAndAutoClose(context.Context) (bool, error) {
	f.calls.Add(1)
	return f.closed.Load(), nil
}

func TestRunner_ChecksOnStartAndTick(t *testing.T) {
	closer := &fakeCloser{}
	runner := autoclose.NewRunner(closer, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	runner.Run(ctx)

	// One immediate check plus at least one tick.
	assert.GreaterOrEqual(t, closer.calls.Load(), int64(2))
}

func TestRunner_OnCloseCallback(t *testing.T) {
	closer := &fakeCloser{}
	closer.closed.Store(true)

	var notified atomic.Int64

	runner := autoclose.NewRunner(closer, 5*time.Millisecond,
		autoclose.WithOnClose(func() { notified.Add(1) }))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	runner.Run(ctx)

	assert.GreaterOrEqual(t, notified.Load(), int64(1))
}

func TestRunner_StopsOnCancel(t *testing.T) {
	closer := &fakeCloser{}
	runner := autoclose.NewRunner(closer, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})

	go func() {
		runner.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after cancellation")
	}

	assert.Equal(t, int64(1), closer.calls.Load())
}
