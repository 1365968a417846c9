package tick

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Waiter blocks the caller for a number of ticks.
type Waiter interface {
	WaitTicks(ctx context.Context, n int) error
}

// Counter counts ticks from a Source and lets one caller at a time wait for
// a number of them.
type Counter struct {
	source   Source
	interval time.Duration

	// waitMu serializes WaitTicks; only one control thread counts at a time.
	waitMu sync.Mutex

	ticks  atomic.Uint32
	notify chan struct{}
}

// NewCounter creates a Counter on the given source using DefaultInterval.
func NewCounter(source Source) *Counter {
	return NewCounterWithInterval(source, DefaultInterval)
}

// NewCounterWithInterval creates a Counter with a custom tick period.
func NewCounterWithInterval(source Source, interval time.Duration) *Counter {
	c := &Counter{
		source:   source,
		interval: interval,
		notify:   make(chan struct{}, 1),
	}
	source.OnTick(c.onTick)
	return c
}

func (c *Counter) onTick() {
	c.ticks.Add(1)
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// WaitTicks starts the source, blocks until n ticks have elapsed, then resets
// the count and stops the source. A cancelled context ends the wait early
// with the context's error.
func (c *Counter) WaitTicks(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}

	c.waitMu.Lock()
	defer c.waitMu.Unlock()

	c.ticks.Store(0)
	// Drain a stale notification from a previous wait.
	select {
	case <-c.notify:
	default:
	}

	if err := c.source.Start(c.interval); err != nil {
		return err
	}
	defer func() {
		c.source.Stop()
		c.ticks.Store(0)
	}()

	for int(c.ticks.Load()) < n {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.notify:
		}
	}
	return nil
}

// Recorder is a Waiter that returns immediately and records every request.
type Recorder struct {
	mu    sync.Mutex
	waits []int
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// WaitTicks records n and returns. Non-positive counts are not recorded.
func (r *Recorder) WaitTicks(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	r.mu.Lock()
	r.waits = append(r.waits, n)
	r.mu.Unlock()
	return nil
}

// Waits returns a copy of the recorded tick counts in call order.
func (r *Recorder) Waits() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.waits))
	copy(out, r.waits)
	return out
}

// Total returns the sum of all recorded tick counts.
func (r *Recorder) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, n := range r.waits {
		total += n
	}
	return total
}

// Reset clears the recorded waits.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waits = nil
}

// Compile-time interface satisfaction checks.
var (
	_ Waiter = (*Counter)(nil)
	_ Waiter = (*Recorder)(nil)
)
