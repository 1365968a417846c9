// Package door implements the timed bolt sequence of the back unit.
package door

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/doorlock-protocol/doorlock-go/pkg/hal"
	"github.com/doorlock-protocol/doorlock-go/pkg/tick"
)

// Phase durations in ticks.
const (
	UnlockTicks = 15
	HoldTicks   = 3
	LockTicks   = 15
)

// ErrBusy is returned when a sequence is already running.
var ErrBusy = errors.New("door sequence already running")

// State is the door state.
type State uint8

const (
	// StateLocked is the resting state.
	StateLocked State = iota

	// StateUnlocking drives the bolt open.
	StateUnlocking

	// StateHeld keeps the door open with the actuator stopped.
	StateHeld

	// StateLocking drives the bolt closed.
	StateLocking
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateLocked:
		return "LOCKED"
	case StateUnlocking:
		return "UNLOCKING"
	case StateHeld:
		return "HELD"
	case StateLocking:
		return "LOCKING"
	default:
		return "UNKNOWN"
	}
}

// Config configures a Sequencer. Zero durations select the defaults.
type Config struct {
	Actuator hal.Actuator
	Waiter   tick.Waiter

	// Duty is the actuator duty cycle while moving (default: hal.MaxDuty).
	Duty uint8

	UnlockTicks int
	HoldTicks   int
	LockTicks   int
}

type phase struct {
	state State
	dir   hal.Direction
	duty  uint8
	ticks int
}

// Sequencer runs Locked → Unlocking → Held → Locking → Locked. A started
// sequence always runs to completion.
type Sequencer struct {
	actuator hal.Actuator
	waiter   tick.Waiter
	phases   []phase

	running atomic.Bool

	mu            sync.RWMutex
	state         State
	cycles        int
	onStateChange func(from, to State)
}

// NewSequencer creates a sequencer in StateLocked.
func NewSequencer(cfg Config) *Sequencer {
	if cfg.Duty == 0 || cfg.Duty > hal.MaxDuty {
		cfg.Duty = hal.MaxDuty
	}
	if cfg.UnlockTicks <= 0 {
		cfg.UnlockTicks = UnlockTicks
	}
	if cfg.HoldTicks <= 0 {
		cfg.HoldTicks = HoldTicks
	}
	if cfg.LockTicks <= 0 {
		cfg.LockTicks = LockTicks
	}
	return &Sequencer{
		actuator: cfg.Actuator,
		waiter:   cfg.Waiter,
		phases: []phase{
			{StateUnlocking, hal.DirectionForward, cfg.Duty, cfg.UnlockTicks},
			{StateHeld, hal.DirectionStop, 0, cfg.HoldTicks},
			{StateLocking, hal.DirectionReverse, cfg.Duty, cfg.LockTicks},
		},
	}
}

// OnStateChange registers a callback for door state transitions.
func (s *Sequencer) OnStateChange(fn func(from, to State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStateChange = fn
}

// Run performs one full door cycle. Cancelling ctx does not interrupt the
// cycle. It returns ErrBusy if a cycle is already in progress.
func (s *Sequencer) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.running.Store(false)

	ctx = context.WithoutCancel(ctx)
	for _, p := range s.phases {
		s.actuator.Drive(p.dir, p.duty)
		s.setState(p.state)
		if err := s.waiter.WaitTicks(ctx, p.ticks); err != nil {
			s.actuator.Drive(hal.DirectionStop, 0)
			s.setState(StateLocked)
			return fmt.Errorf("door %s: %w", p.state, err)
		}
	}
	s.actuator.Drive(hal.DirectionStop, 0)
	s.setState(StateLocked)

	s.mu.Lock()
	s.cycles++
	s.mu.Unlock()
	return nil
}

func (s *Sequencer) setState(to State) {
	s.mu.Lock()
	from := s.state
	s.state = to
	fn := s.onStateChange
	s.mu.Unlock()

	if fn != nil && from != to {
		fn(from, to)
	}
}

// State returns the current door state.
func (s *Sequencer) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Running reports whether a cycle is in progress.
func (s *Sequencer) Running() bool {
	return s.running.Load()
}

// Cycles returns the number of completed cycles.
func (s *Sequencer) Cycles() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cycles
}

// TotalTicks returns the length of one cycle in ticks.
func (s *Sequencer) TotalTicks() int {
	total := 0
	for _, p := range s.phases {
		total += p.ticks
	}
	return total
}
