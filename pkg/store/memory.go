package store

import (
	"context"
	"sync"
)

// Memory is an in-memory store.
type Memory struct {
	mu       sync.Mutex
	cells    map[uint16]byte
	capacity int
	writes   int
}

// NewMemory creates an erased in-memory store. A capacity of zero selects
// DefaultCapacity.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{cells: make(map[uint16]byte), capacity: capacity}
}

// Read returns the byte at addr.
func (m *Memory) Read(ctx context.Context, addr uint16) (byte, error) {
	if err := checkAddress(addr, m.capacity); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.cells[addr]
	if !ok {
		return Erased, nil
	}
	return b, nil
}

// Write stores b at addr.
func (m *Memory) Write(ctx context.Context, addr uint16, b byte) error {
	if err := checkAddress(addr, m.capacity); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cells[addr] = b
	m.writes++
	return nil
}

// Writes returns the number of successful writes.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Snapshot returns a copy of all written cells.
func (m *Memory) Snapshot() map[uint16]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uint16]byte, len(m.cells))
	for k, v := range m.cells {
		out[k] = v
	}
	return out
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

// Compile-time interface satisfaction check.
var _ Store = (*Memory)(nil)
