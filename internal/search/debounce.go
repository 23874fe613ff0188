// Package search implements search-as-you-type on top of a debounced task.
package search

import (
	"context"
	"sync"
	"time"
)

// Debouncer runs the most recently scheduled task once its delay has passed.
// Scheduling a task discards the previous one: a task still waiting never
// fires and a task already running sees its context canceled.
type Debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	seq    uint64
	key    string
	timer  *time.Timer
	cancel context.CancelFunc
}

// NewDebouncer creates a debouncer with the given delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule replaces any pending task with fn, identified by key.
func (d *Debouncer) Schedule(parent context.Context, key string, fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	ctx, cancel := context.WithCancel(parent)
	d.seq++
	seq := d.seq
	d.key = key
	d.cancel = cancel
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := seq == d.seq && ctx.Err() == nil
		if current {
			d.timer = nil
			d.key = ""
		}
		d.mu.Unlock()

		if current {
			fn(ctx)
		}
	})
}

// Commit runs fn if ctx belongs to the latest scheduled task and reports whether
// it ran. No task can be scheduled while fn runs.
func (d *Debouncer) Commit(ctx context.Context, fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	fn()
	return true
}

// Pending returns the key of the task waiting to fire, if any.
func (d *Debouncer) Pending() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.key, d.timer != nil
}

// Cancel discards the pending or running task.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	d.stopLocked()
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.key = ""
}
