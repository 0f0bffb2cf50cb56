// Package work runs fire-and-forget background jobs, such as like requests,
// with bounded concurrency and a graceful drain on shutdown.
package work

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/abelbrown/shortfeed/internal/logging"
)

// Runner executes jobs on background goroutines, at most limit at a time.
// Go never blocks the caller; excess jobs wait for a free slot.
type Runner struct {
	slots chan struct{}

	// mu orders wg.Add in Go against Stop's switch to stopped, so no Add
	// happens once Wait may have begun.
	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup

	started   atomic.Int64
	completed atomic.Int64
	panicked  atomic.Int64
	dropped   atomic.Int64
}

// Stats is a snapshot of runner counters.
type Stats struct {
	Started   int64
	Completed int64
	Panicked  int64
	Dropped   int64
}

// NewRunner creates a Runner. A limit <= 0 means one job at a time.
func NewRunner(limit int) *Runner {
	if limit <= 0 {
		limit = 1
	}
	return &Runner{slots: make(chan struct{}, limit)}
}

// Go schedules fn. After Stop it is dropped.
func (r *Runner) Go(fn func()) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		r.dropped.Add(1)
		logging.Warn("work runner stopped, job dropped")
		return
	}
	r.started.Add(1)
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		r.slots <- struct{}{}
		defer func() { <-r.slots }()
		r.run(fn)
	}()
}

func (r *Runner) run(fn func()) {
	defer func() {
		if p := recover(); p != nil {
			r.panicked.Add(1)
			logging.Error("work job panicked", "panic", fmt.Sprint(p), "stack", string(debug.Stack()))
			return
		}
		r.completed.Add(1)
	}()
	fn()
}

// Stop refuses new jobs and waits for running ones until ctx is done.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s := r.Stats()
		logging.Info("work runner drained", "completed", s.Completed, "panicked", s.Panicked)
		return nil
	case <-ctx.Done():
		logging.Warn("work runner stop timed out", "pending", r.started.Load()-r.completed.Load()-r.panicked.Load())
		return ctx.Err()
	}
}

// Stats returns the current counters.
func (r *Runner) Stats() Stats {
	return Stats{
		Started:   r.started.Load(),
		Completed: r.completed.Load(),
		Panicked:  r.panicked.Load(),
		Dropped:   r.dropped.Load(),
	}
}
