package lockout

import (
	"context"
	"sync"

	"github.com/doorlock-protocol/doorlock-go/pkg/hal"
	"github.com/doorlock-protocol/doorlock-go/pkg/tick"
)

// AlarmState is the state of the back-unit alarm.
type AlarmState uint8

const (
	// AlarmSilent is the idle state.
	AlarmSilent AlarmState = iota

	// AlarmSounding means the buzzer is on.
	AlarmSounding
)

// String returns the alarm state name.
func (s AlarmState) String() string {
	switch s {
	case AlarmSilent:
		return "SILENT"
	case AlarmSounding:
		return "SOUNDING"
	default:
		return "UNKNOWN"
	}
}

// AlarmConfig configures an Alarm.
type AlarmConfig struct {
	Buzzer hal.Buzzer
	Waiter tick.Waiter

	// Ticks is the alarm duration (default: AlarmTicks).
	Ticks int
}

// Alarm drives the buzzer for a bounded window.
type Alarm struct {
	buzzer hal.Buzzer
	waiter tick.Waiter
	ticks  int

	// soundMu serializes Sound calls.
	soundMu sync.Mutex

	mu          sync.RWMutex
	state       AlarmState
	activations int

	onStateChange func(from, to AlarmState)
}

// NewAlarm creates a silent alarm.
func NewAlarm(cfg AlarmConfig) *Alarm {
	if cfg.Ticks <= 0 {
		cfg.Ticks = AlarmTicks
	}
	return &Alarm{
		buzzer: cfg.Buzzer,
		waiter: cfg.Waiter,
		ticks:  cfg.Ticks,
	}
}

// OnStateChange registers a callback for alarm state transitions.
func (a *Alarm) OnStateChange(fn func(from, to AlarmState)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onStateChange = fn
}

// Sound turns the buzzer on, waits for the alarm window and turns it off.
// The window is not shortened by cancelling ctx, and the buzzer is always
// turned off before Sound returns.
func (a *Alarm) Sound(ctx context.Context) error {
	a.soundMu.Lock()
	defer a.soundMu.Unlock()

	a.buzzer.On()
	a.setState(AlarmSounding)

	err := a.waiter.WaitTicks(context.WithoutCancel(ctx), a.ticks)

	a.buzzer.Off()
	a.setState(AlarmSilent)
	return err
}

func (a *Alarm) setState(s AlarmState) {
	a.mu.Lock()
	old := a.state
	a.state = s
	if s == AlarmSounding && old != AlarmSounding {
		a.activations++
	}
	fn := a.onStateChange
	a.mu.Unlock()

	if fn != nil && old != s {
		fn(old, s)
	}
}

// State returns the current alarm state.
func (a *Alarm) State() AlarmState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Activations returns how many times the alarm has sounded.
func (a *Alarm) Activations() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.activations
}

// Ticks returns the alarm window length.
func (a *Alarm) Ticks() int {
	return a.ticks
}
