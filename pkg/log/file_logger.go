package log

import (
	"fmt"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLogger appends events to a .dlog capture as a stream of CBOR items,
// one per event. lock-log reads the same stream back.
type FileLogger struct {
	mu   sync.Mutex
	f    *os.File
	enc  *cbor.Encoder
	done bool
}

// NewFileLogger opens path for appending, creating it if needed, so that
// successive runs of a unit accumulate in one capture.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open capture %s: %w", path, err)
	}
	return &FileLogger{f: f, enc: NewEncoder(f)}, nil
}

// Log appends event. Encode failures are dropped.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.done {
		_ = l.enc.Encode(event)
	}
}

// Close closes the capture. Later events are dropped and a
// second Close returns nil.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done {
		return nil
	}
	l.done = true
	return l.f.Close()
}

var _ Logger = (*FileLogger)(nil)
