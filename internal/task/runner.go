// Package task runs fire-and-forget side effects. A task's error or panic
// is logged and counted, never returned to whoever started it.
package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Func is one unit of background work. The context is detached from the
// request that spawned it.
type Func func(ctx context.Context) error

type Runner struct {
	log     *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
	onError func(name string, err error)
}

// NewRunner returns a runner. A zero timeout lets tasks run until they
// finish on their own.
func NewRunner(log *zap.Logger, timeout time.Duration) *Runner {
	return &Runner{log: log.Named("task"), timeout: timeout}
}

// OnError registers a hook called after a task fails or panics.
func (r *Runner) OnError(fn func(name string, err error)) {
	r.onError = fn
}

// Go starts fn in its own goroutine and returns immediately.
func (r *Runner) Go(name string, fn Func, fields ...zap.Field) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		log := r.log.With(append(fields, zap.String("task", name))...)

		start := time.Now()
		err := r.run(fn)
		if err != nil {
			log.Error("task failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
			if r.onError != nil {
				r.onError(name, err)
			}
			return
		}
		log.Debug("task done", zap.Duration("duration", time.Since(start)))
	}()
}

func (r *Runner) run(fn Func) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return fn(ctx)
}

// Wait blocks until every started task has finished or ctx is done.
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
