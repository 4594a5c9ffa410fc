package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesBursts(t *testing.T) {
	d := NewDebouncer(200 * time.Millisecond)
	defer d.Stop()

	var runs atomic.Int32
	var last atomic.Int32
	done := make(chan struct{}, 10)

	for i := 1; i <= 5; i++ {
		d.Trigger(func(ctx context.Context) {
			runs.Add(1)
			last.Store(int32(i))
			done <- struct{}{}
		})
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Debounced task never ran")
	}
	time.Sleep(100 * time.Millisecond)

	if n := runs.Load(); n != 1 {
		t.Errorf("Expected 1 run, got %d", n)
	}
	if v := last.Load(); v != 5 {
		t.Errorf("Expected the last trigger to win, got %d", v)
	}
}

func TestDebouncer_CancelsRunningTask(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	defer d.Stop()

	started := make(chan struct{})
	cancelled := make(chan struct{})
	d.Trigger(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		close(cancelled)
	})

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("First task never started")
	}

	d.Trigger(func(ctx context.Context) {})

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected the running task to be cancelled")
	}
	d.Wait()
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var ran atomic.Bool
	d.Trigger(func(ctx context.Context) { ran.Store(true) })
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	if ran.Load() {
		t.Error("Expected stopped task not to run")
	}
}

func TestNewDebouncer_DefaultDelay(t *testing.T) {
	if d := NewDebouncer(0); d.delay != DefaultDelay {
		t.Errorf("Expected default delay %v, got %v", DefaultDelay, d.delay)
	}
}
