package link

import (
	"context"
	"sync"

	"github.com/doorlock-protocol/doorlock-go/pkg/wire"
)

// PipeBuffer is the per-direction receive buffer of a Pipe, comparable to a
// UART receive FIFO.
const PipeBuffer = 16

// pipeShared is the close state common to both ends of a pipe.
type pipeShared struct {
	done chan struct{}
	once sync.Once
}

// PipeEnd is one side of an in-memory link.
type PipeEnd struct {
	in     <-chan wire.Byte
	out    chan<- wire.Byte
	shared *pipeShared

	mu   sync.Mutex
	sent []wire.Byte
}

// Pipe returns two connected link ends. Bytes sent on one end are received
// on the other in order.
func Pipe() (*PipeEnd, *PipeEnd) {
	ab := make(chan wire.Byte, PipeBuffer)
	ba := make(chan wire.Byte, PipeBuffer)
	shared := &pipeShared{done: make(chan struct{})}
	return &PipeEnd{in: ba, out: ab, shared: shared},
		&PipeEnd{in: ab, out: ba, shared: shared}
}

// SendByte queues b for the other end.
func (p *PipeEnd) SendByte(ctx context.Context, b wire.Byte) error {
	select {
	case <-p.shared.done:
		return ErrClosed
	default:
	}
	select {
	case p.out <- b:
		p.mu.Lock()
		p.sent = append(p.sent, b)
		p.mu.Unlock()
		return nil
	case <-p.shared.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReceiveByte returns the next byte from the other end.
func (p *PipeEnd) ReceiveByte(ctx context.Context) (wire.Byte, error) {
	select {
	case b := <-p.in:
		return b, nil
	case <-p.shared.done:
		return 0, ErrClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Sent returns a copy of every byte sent from this end.
func (p *PipeEnd) Sent() []wire.Byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]wire.Byte, len(p.sent))
	copy(out, p.sent)
	return out
}

// Close closes both ends of the pipe.
func (p *PipeEnd) Close() error {
	p.shared.once.Do(func() { close(p.shared.done) })
	return nil
}

// Compile-time interface satisfaction check.
var _ Link = (*PipeEnd)(nil)
