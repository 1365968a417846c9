package credential

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/doorlock-protocol/doorlock-go/pkg/hal"
	"github.com/doorlock-protocol/doorlock-go/pkg/link"
	"github.com/doorlock-protocol/doorlock-go/pkg/wire"
)

// Display prompts.
const (
	PromptEnter        = "plz enter pass:"
	PromptReenter      = "plz re-enter the"
	PromptReenterLine2 = "same pass: "
	MsgPasswordsLine1  = "The 2 Passwords"
	MsgEqual           = "Are Equal :)"
	MsgNotEqual        = "Are Not Equal :("
)

// MaskChar is shown on the display for every accepted digit.
const MaskChar = '*'

// SessionConfig configures a front-unit credential session.
type SessionConfig struct {
	Keypad  hal.Keypad
	Display hal.Display
	Link    link.Link

	// Logger for debug output (optional).
	Logger *slog.Logger
}

// Session collects credentials on the front unit and sends them to the back
// unit.
type Session struct {
	keypad  hal.Keypad
	display hal.Display
	link    link.Link
	logger  *slog.Logger
}

// NewSession creates a front-unit session.
func NewSession(cfg SessionConfig) *Session {
	return &Session{
		keypad:  cfg.Keypad,
		display: cfg.Display,
		link:    cfg.Link,
		logger:  cfg.Logger,
	}
}

func (s *Session) debugLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

// CollectEntry reads exactly Length digits from the keypad, echoing a mask
// character for each, then waits for the confirm key. Control keys are
// rejected without advancing the position. There is no timeout; only ctx
// ends the wait.
func (s *Session) CollectEntry(ctx context.Context) (Credential, error) {
	var entry Entry
	for !entry.Complete() {
		sym, err := s.keypad.ReadSymbol(ctx)
		if err != nil {
			return Credential{}, err
		}
		if !sym.IsDigit() {
			s.debugLog("session: key rejected during entry", "key", sym.String(), "position", entry.Len())
			continue
		}
		// Add cannot fail: sym is a digit and the entry is incomplete.
		_ = entry.Add(byte(sym))
		s.display.WriteChar(MaskChar)
	}

	for {
		sym, err := s.keypad.ReadSymbol(ctx)
		if err != nil {
			return Credential{}, err
		}
		if sym == wire.SymbolConfirm {
			break
		}
	}

	c, _ := entry.Credential()
	return c, nil
}

// CreateWithConfirmation collects a new credential and a fresh confirm entry.
// When both match the credential is transmitted to the back unit and
// returned. Otherwise nothing is transmitted and ErrMismatch is returned;
// the caller runs the exchange again.
func (s *Session) CreateWithConfirmation(ctx context.Context) (Credential, error) {
	s.display.Clear()
	s.display.WriteText(PromptEnter, 0, 0)
	first, err := s.CollectEntry(ctx)
	if err != nil {
		return Credential{}, err
	}

	s.display.Clear()
	s.display.WriteText(PromptReenter, 0, 0)
	s.display.WriteText(PromptReenterLine2, 1, 0)
	confirm, err := s.CollectEntry(ctx)
	if err != nil {
		return Credential{}, err
	}

	if !first.Equal(confirm) {
		s.showPasswords(MsgNotEqual)
		s.debugLog("session: confirmation mismatch")
		return Credential{}, ErrMismatch
	}

	if err := s.Transmit(ctx, first); err != nil {
		return Credential{}, err
	}
	s.showPasswords(MsgEqual)
	return first, nil
}

func (s *Session) showPasswords(line2 string) {
	s.display.Clear()
	s.display.WriteText(MsgPasswordsLine1, 0, 0)
	s.display.WriteText(line2, 1, 0)
}

// Transmit sends the credential one digit at a time, waiting for a SYNC
// acknowledgment after each digit. Bytes other than SYNC received while
// waiting are discarded.
func (s *Session) Transmit(ctx context.Context, c Credential) error {
	for i, d := range c {
		if err := s.link.SendByte(ctx, wire.Byte(d)); err != nil {
			return fmt.Errorf("send digit %d: %w", i, err)
		}
		err := link.WaitFor(ctx, s.link, wire.Sync, func(b wire.Byte) {
			s.debugLog("session: discarded byte while waiting for sync", "byte", b.String(), "position", i)
		})
		if err != nil {
			return fmt.Errorf("wait sync for digit %d: %w", i, err)
		}
	}
	return nil
}
