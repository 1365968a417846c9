package link

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/doorlock-protocol/doorlock-go/pkg/log"
	"github.com/doorlock-protocol/doorlock-go/pkg/wire"
)

// LoggedLink records every byte crossing the wrapped link as a protocol
// event. Credential digits are recorded masked.
type LoggedLink struct {
	link   Link
	logger log.Logger
	role   log.Role
	linkID string
	port   string
}

// WithLogger wraps l so that traffic is captured to logger. A nil logger
// returns l unwrapped. Each call starts a new link session with its own ID.
func WithLogger(l Link, logger log.Logger, role log.Role, port string) Link {
	if logger == nil {
		return l
	}
	return &LoggedLink{
		link:   l,
		logger: logger,
		role:   role,
		linkID: uuid.New().String(),
		port:   port,
	}
}

// LinkID returns the session ID stamped on captured events.
func (l *LoggedLink) LinkID() string {
	return l.linkID
}

// SendByte sends b and records it.
func (l *LoggedLink) SendByte(ctx context.Context, b wire.Byte) error {
	err := l.link.SendByte(ctx, b)
	if err != nil {
		l.logError(err, "send "+b.String())
		return err
	}
	l.logger.Log(l.byteEvent(b, log.DirectionOut))
	return nil
}

// ReceiveByte receives a byte and records it.
func (l *LoggedLink) ReceiveByte(ctx context.Context) (wire.Byte, error) {
	b, err := l.link.ReceiveByte(ctx)
	if err != nil {
		if ctx.Err() == nil {
			l.logError(err, "receive")
		}
		return 0, err
	}
	l.logger.Log(l.byteEvent(b, log.DirectionIn))
	return b, nil
}

// Unwrap returns the wrapped link.
func (l *LoggedLink) Unwrap() Link {
	return l.link
}

func (l *LoggedLink) byteEvent(b wire.Byte, direction log.Direction) log.Event {
	ev := &log.ByteEvent{Value: uint8(b), Name: b.String()}
	if b.IsDigit() {
		ev.Value = 0
		ev.Masked = true
	}
	return log.Event{
		Timestamp: time.Now(),
		LinkID:    l.linkID,
		Direction: direction,
		Layer:     log.LayerLink,
		Category:  log.CategoryByte,
		LocalRole: l.role,
		Port:      l.port,
		Byte:      ev,
	}
}

func (l *LoggedLink) logError(err error, op string) {
	ev := log.NewErrorEvent(l.role, log.LayerLink, err, op)
	ev.LinkID = l.linkID
	ev.Port = l.port
	l.logger.Log(ev)
}

// Compile-time interface satisfaction check.
var _ Link = (*LoggedLink)(nil)
