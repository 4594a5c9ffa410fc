package scheduler

import (
	"context"
	"sync"
	"time"
)

// DefaultDelay is the quiet period before a triggered task runs
const DefaultDelay = 500 * time.Millisecond

// Debouncer coalesces bursts of triggers into a single run of the last task.
// Triggering again cancels both the pending timer and the context of a task
// that is already running.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
	seq    uint64
	wg     sync.WaitGroup
}

// NewDebouncer creates a debouncer; a non-positive delay uses DefaultDelay
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay}
}

// Trigger schedules fn to run after the quiet period
func (d *Debouncer) Trigger(fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.seq++
	seq := d.seq

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.seq != seq {
			d.mu.Unlock()
			return
		}
		d.wg.Add(1)
		d.mu.Unlock()

		defer d.wg.Done()
		fn(ctx)
	})
}

// Stop cancels the pending task and any running one
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopLocked()
	d.seq++
	d.mu.Unlock()
}

// Wait blocks until running tasks return. It does not wait for pending timers.
func (d *Debouncer) Wait() {
	d.wg.Wait()
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
}
