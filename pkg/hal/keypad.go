package hal

import (
	"context"
	"errors"
	"sync"

	"github.com/doorlock-protocol/doorlock-go/pkg/wire"
)

// ErrKeypadClosed is returned by ReadSymbol after the keypad is closed.
var ErrKeypadClosed = errors.New("keypad closed")

// ChannelKeypad is a Keypad fed by Press calls from another goroutine, such
// as a console reader.
type ChannelKeypad struct {
	keys      chan wire.Symbol
	closed    chan struct{}
	closeOnce sync.Once
}

// NewChannelKeypad creates a keypad that buffers up to buffer pending keys.
func NewChannelKeypad(buffer int) *ChannelKeypad {
	return &ChannelKeypad{
		keys:   make(chan wire.Symbol, buffer),
		closed: make(chan struct{}),
	}
}

// Press queues a key. It blocks while the buffer is full and returns false
// once the keypad is closed.
func (k *ChannelKeypad) Press(s wire.Symbol) bool {
	select {
	case <-k.closed:
		return false
	default:
	}
	select {
	case k.keys <- s:
		return true
	case <-k.closed:
		return false
	}
}

// ReadSymbol returns the next pressed key.
func (k *ChannelKeypad) ReadSymbol(ctx context.Context) (wire.Symbol, error) {
	select {
	case s := <-k.keys:
		return s, nil
	case <-k.closed:
		return 0, ErrKeypadClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Close unblocks pending and future reads.
func (k *ChannelKeypad) Close() {
	k.closeOnce.Do(func() { close(k.closed) })
}

// ScriptedKeypad replays a fixed key sequence. Once the script is exhausted
// ReadSymbol blocks until ctx is done.
type ScriptedKeypad struct {
	mu     sync.Mutex
	script []wire.Symbol
	pos    int
}

// NewScriptedKeypad creates a keypad that replays keys in order.
func NewScriptedKeypad(keys ...wire.Symbol) *ScriptedKeypad {
	return &ScriptedKeypad{script: keys}
}

// NewScriptedKeypadString builds a script from a string, one key per byte.
func NewScriptedKeypadString(keys string) *ScriptedKeypad {
	script := make([]wire.Symbol, len(keys))
	for i := 0; i < len(keys); i++ {
		script[i] = wire.Symbol(keys[i])
	}
	return &ScriptedKeypad{script: script}
}

// Append adds keys to the end of the script.
func (k *ScriptedKeypad) Append(keys ...wire.Symbol) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.script = append(k.script, keys...)
}

// ReadSymbol returns the next scripted key.
func (k *ScriptedKeypad) ReadSymbol(ctx context.Context) (wire.Symbol, error) {
	k.mu.Lock()
	if k.pos < len(k.script) {
		s := k.script[k.pos]
		k.pos++
		k.mu.Unlock()
		return s, nil
	}
	k.mu.Unlock()

	<-ctx.Done()
	return 0, ctx.Err()
}

// Remaining returns how many scripted keys have not been read.
func (k *ScriptedKeypad) Remaining() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.script) - k.pos
}

// Compile-time interface satisfaction checks.
var (
	_ Keypad = (*ChannelKeypad)(nil)
	_ Keypad = (*ScriptedKeypad)(nil)
)
