package link

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doorlock-protocol/doorlock-go/pkg/wire"
)

// Link errors.
var (
	ErrClosed       = errors.New("link closed")
	ErrChannelStall = errors.New("link receive timed out")
)

// Link is a blocking, ordered byte channel to the peer unit.
type Link interface {
	// SendByte transmits one byte.
	SendByte(ctx context.Context, b wire.Byte) error

	// ReceiveByte blocks until one byte arrives or ctx is done.
	ReceiveByte(ctx context.Context) (wire.Byte, error)
}

// timeoutLink bounds receives on the wrapped link.
type timeoutLink struct {
	Link
	timeout time.Duration
}

// WithReceiveTimeout returns a Link whose ReceiveByte fails with
// ErrChannelStall when no byte arrives within timeout. Receives made with a
// context from Unbounded are not limited. A zero or negative timeout returns
// l unchanged.
func WithReceiveTimeout(l Link, timeout time.Duration) Link {
	if timeout <= 0 {
		return l
	}
	return &timeoutLink{Link: l, timeout: timeout}
}

type unboundedKey struct{}

// Unbounded returns a context whose receives ignore any receive timeout. It
// marks waits paced by a person at the peer unit, such as the next action or
// the first digit of an entry.
func Unbounded(ctx context.Context) context.Context {
	return context.WithValue(ctx, unboundedKey{}, true)
}

func isUnbounded(ctx context.Context) bool {
	v, _ := ctx.Value(unboundedKey{}).(bool)
	return v
}

func (t *timeoutLink) ReceiveByte(ctx context.Context) (wire.Byte, error) {
	if isUnbounded(ctx) {
		return t.Link.ReceiveByte(ctx)
	}
	rctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	b, err := t.Link.ReceiveByte(rctx)
	if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return 0, fmt.Errorf("%w after %v", ErrChannelStall, t.timeout)
	}
	return b, err
}

// Unwrap returns the wrapped link.
func (t *timeoutLink) Unwrap() Link {
	return t.Link
}

// WaitFor receives bytes until want arrives. Other bytes are discarded and
// passed to discard when it is non-nil.
func WaitFor(ctx context.Context, l Link, want wire.Byte, discard func(wire.Byte)) error {
	for {
		b, err := l.ReceiveByte(ctx)
		if err != nil {
			return err
		}
		if b == want {
			return nil
		}
		if discard != nil {
			discard(b)
		}
	}
}
