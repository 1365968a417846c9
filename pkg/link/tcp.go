package link

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"
)

// DefaultBridgePort is the TCP port a back unit serves its link on.
const DefaultBridgePort = 7015

// Bridge accepts a single peer on a TCP serial bridge.
type Bridge struct {
	listener net.Listener
}

// Listen opens a TCP listener for a serial bridge.
func Listen(address string) (*Bridge, error) {
	if address == "" {
		address = fmt.Sprintf(":%d", DefaultBridgePort)
	}
	l, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}
	return &Bridge{listener: l}, nil
}

// Addr returns the listening address.
func (b *Bridge) Addr() net.Addr {
	return b.listener.Addr()
}

// Port returns the listening TCP port.
func (b *Bridge) Port() int {
	if tcp, ok := b.listener.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}

// Accept waits for one peer and returns a link to it.
func (b *Bridge) Accept(ctx context.Context) (*StreamLink, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		conn, err := b.listener.Accept()
		ch <- result{conn, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("accept failed: %w", r.err)
		}
		return NewStreamLink(r.conn, r.conn.RemoteAddr().String()), nil
	case <-ctx.Done():
		b.listener.Close()
		return nil, ctx.Err()
	}
}

// Close stops listening.
func (b *Bridge) Close() error {
	return b.listener.Close()
}

// DialConfig configures Dial.
type DialConfig struct {
	// Address of the bridge, host:port.
	Address string

	// ConnectTimeout bounds each attempt (default: 5s).
	ConnectTimeout time.Duration

	// MaxAttempts limits connection attempts; zero retries until ctx is done.
	MaxAttempts int

	// Backoff between attempts (default: NewBackoff()).
	Backoff *Backoff

	// Logger for reconnection messages (optional).
	Logger *slog.Logger
}

// Dial connects to a serial bridge, retrying with exponential backoff.
func Dial(ctx context.Context, cfg DialConfig) (*StreamLink, error) {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.Backoff == nil {
		cfg.Backoff = NewBackoff()
	}

	dialer := &net.Dialer{}
	var lastErr error
	for attempt := 1; cfg.MaxAttempts == 0 || attempt <= cfg.MaxAttempts; attempt++ {
		actx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		conn, err := dialer.DialContext(actx, "tcp", cfg.Address)
		cancel()
		if err == nil {
			cfg.Backoff.Reset()
			return NewStreamLink(conn, cfg.Address), nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if cfg.MaxAttempts != 0 && attempt == cfg.MaxAttempts {
			break
		}

		delay := cfg.Backoff.Next()
		if cfg.Logger != nil {
			cfg.Logger.Debug("bridge dial failed, retrying",
				"address", cfg.Address, "attempt", attempt, "delay", delay, "error", err)
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Address, lastErr)
}
