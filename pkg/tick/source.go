package tick

import (
	"errors"
	"sync"
	"time"
)

// DefaultInterval is the tick period of the reference hardware.
const DefaultInterval = time.Second

// ErrInvalidInterval is returned by Start for a non-positive interval.
var ErrInvalidInterval = errors.New("tick interval must be positive")

// Source delivers periodic ticks to one callback.
type Source interface {
	// OnTick registers the callback invoked on every tick. It replaces any
	// previously registered callback.
	OnTick(fn func())

	// Start begins delivering ticks every interval. Starting a running source
	// is a no-op.
	Start(interval time.Duration) error

	// Stop halts tick delivery. Stopping a stopped source is a no-op.
	Stop()
}

// Ticker is a Source backed by time.Ticker.
type Ticker struct {
	mu       sync.Mutex
	callback func()
	ticker   *time.Ticker
	done     chan struct{}
}

// NewTicker creates a stopped Ticker.
func NewTicker() *Ticker {
	return &Ticker{}
}

// OnTick registers the tick callback.
func (t *Ticker) OnTick(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.callback = fn
}

// Start begins delivering ticks every interval.
func (t *Ticker) Start(interval time.Duration) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ticker != nil {
		return nil
	}

	t.ticker = time.NewTicker(interval)
	t.done = make(chan struct{})
	go t.run(t.ticker, t.done)
	return nil
}

func (t *Ticker) run(ticker *time.Ticker, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			t.mu.Lock()
			fn := t.callback
			t.mu.Unlock()
			if fn != nil {
				fn()
			}
		}
	}
}

// Stop halts tick delivery.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ticker == nil {
		return
	}
	t.ticker.Stop()
	close(t.done)
	t.ticker = nil
	t.done = nil
}

// Running reports whether the ticker is delivering ticks.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ticker != nil
}

// Manual is a Source whose ticks are fired by calling Tick. Ticks fired
// while the source is stopped are dropped.
type Manual struct {
	mu       sync.Mutex
	callback func()
	running  bool
	starts   int
}

// NewManual creates a stopped Manual source.
func NewManual() *Manual {
	return &Manual{}
}

// OnTick registers the tick callback.
func (m *Manual) OnTick(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callback = fn
}

// Start marks the source running. The interval is validated but unused.
func (m *Manual) Start(interval time.Duration) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		m.running = true
		m.starts++
	}
	return nil
}

// Stop marks the source stopped.
func (m *Manual) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
}

// Running reports whether the source is started.
func (m *Manual) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Starts returns how many times the source went from stopped to running.
func (m *Manual) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}

// Tick fires one tick. It reports whether the tick was delivered.
func (m *Manual) Tick() bool {
	m.mu.Lock()
	fn := m.callback
	running := m.running
	m.mu.Unlock()

	if !running || fn == nil {
		return false
	}
	fn()
	return true
}

// Compile-time interface satisfaction checks.
var (
	_ Source = (*Ticker)(nil)
	_ Source = (*Manual)(nil)
)
