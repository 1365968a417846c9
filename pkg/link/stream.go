package link

import (
	"context"
	"io"
	"sync"

	"github.com/doorlock-protocol/doorlock-go/pkg/wire"
)

// StreamLink carries the byte protocol over an io.ReadWriteCloser such as a
// serial port or a TCP connection.
type StreamLink struct {
	rwc  io.ReadWriteCloser
	name string

	writeMu sync.Mutex

	incoming chan wire.Byte
	done     chan struct{}

	errMu   sync.Mutex
	readErr error

	closeOnce sync.Once
	closeErr  error
}

// NewStreamLink starts reading from rwc. name identifies the port in logs.
func NewStreamLink(rwc io.ReadWriteCloser, name string) *StreamLink {
	s := &StreamLink{
		rwc:      rwc,
		name:     name,
		incoming: make(chan wire.Byte, 1),
		done:     make(chan struct{}),
	}
	go s.readLoop()
	return s
}

func (s *StreamLink) readLoop() {
	buf := make([]byte, 1)
	for {
		n, err := s.rwc.Read(buf)
		if n == 1 {
			select {
			case s.incoming <- wire.Byte(buf[0]):
			case <-s.done:
				return
			}
		}
		if err != nil {
			select {
			case <-s.done:
			default:
				s.errMu.Lock()
				s.readErr = err
				s.errMu.Unlock()
				s.Close()
			}
			return
		}
	}
}

// Name returns the port or address the link is attached to.
func (s *StreamLink) Name() string {
	return s.name
}

// SendByte writes one byte to the stream.
func (s *StreamLink) SendByte(ctx context.Context, b wire.Byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-s.done:
		return ErrClosed
	default:
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.rwc.Write([]byte{byte(b)})
	return err
}

// ReceiveByte returns the next byte read from the stream. A byte already read
// is delivered even if the stream has since failed.
func (s *StreamLink) ReceiveByte(ctx context.Context) (wire.Byte, error) {
	select {
	case b := <-s.incoming:
		return b, nil
	default:
	}
	select {
	case b := <-s.incoming:
		return b, nil
	case <-s.done:
		return 0, s.closedErr()
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (s *StreamLink) closedErr() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.readErr != nil && s.readErr != io.EOF {
		return s.readErr
	}
	return ErrClosed
}

// Close stops the reader and closes the stream.
func (s *StreamLink) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.closeErr = s.rwc.Close()
	})
	return s.closeErr
}

// Compile-time interface satisfaction check.
var _ Link = (*StreamLink)(nil)
