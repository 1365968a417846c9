package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/doorlock-protocol/doorlock-go/pkg/hal"
)

// Erased is the value of a cell that was never written.
const Erased byte = 0xFF

// DefaultCapacity is the size of the reference EEPROM in bytes.
const DefaultCapacity = 2048

// ErrAddressOutOfRange is returned for addresses beyond the store capacity.
var ErrAddressOutOfRange = errors.New("address out of range")

func checkAddress(addr uint16, capacity int) error {
	if int(addr) >= capacity {
		return fmt.Errorf("%w: 0x%04X (capacity %d)", ErrAddressOutOfRange, addr, capacity)
	}
	return nil
}

// Kind names a store backend.
type Kind string

// Store backends.
const (
	KindMemory Kind = "memory"
	KindFile   Kind = "file"
	KindRedis  Kind = "redis"
)

// Options selects and configures a backend for Open.
type Options struct {
	Kind Kind

	// Capacity in bytes (default: DefaultCapacity).
	Capacity int

	// Path of the image file (file backend).
	Path string

	// Redis settings (redis backend).
	Redis RedisConfig
}

// Store is a hal.Store that may hold resources.
type Store interface {
	hal.Store
	Close() error
}

// Open creates the backend selected by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Kind {
	case KindMemory, "":
		return NewMemory(opts.Capacity), nil
	case KindFile:
		return OpenFile(opts.Path, opts.Capacity)
	case KindRedis:
		cfg := opts.Redis
		if cfg.Capacity == 0 {
			cfg.Capacity = opts.Capacity
		}
		return NewRedis(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store kind %q", opts.Kind)
	}
}
