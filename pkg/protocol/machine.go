package protocol

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Dispatcher errors.
var (
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

type state interface {
	~uint8
	String() string
}

// machine holds the current state of a dispatcher and enforces its
// transition table.
type machine[S state] struct {
	mu       sync.RWMutex
	current  S
	table    map[S][]S
	onChange []func(from, to S, reason string)
}

func newMachine[S state](initial S, table map[S][]S) *machine[S] {
	return &machine[S]{current: initial, table: table}
}

func (m *machine[S]) state() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *machine[S]) observe(fn func(from, to S, reason string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

func (m *machine[S]) transition(to S, reason string) error {
	m.mu.Lock()
	from := m.current
	if !slices.Contains(m.table[from], to) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	m.current = to
	observers := slices.Clone(m.onChange)
	m.mu.Unlock()

	for _, fn := range observers {
		fn(from, to, reason)
	}
	return nil
}
