package protocol

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/doorlock-protocol/doorlock-go/pkg/credential"
	"github.com/doorlock-protocol/doorlock-go/pkg/door"
	"github.com/doorlock-protocol/doorlock-go/pkg/hal"
	"github.com/doorlock-protocol/doorlock-go/pkg/link"
	"github.com/doorlock-protocol/doorlock-go/pkg/lockout"
	"github.com/doorlock-protocol/doorlock-go/pkg/log"
	"github.com/doorlock-protocol/doorlock-go/pkg/tick"
	"github.com/doorlock-protocol/doorlock-go/pkg/wire"
)

// Front display text.
const (
	MenuOpenDoor     = "+ : Open Door"
	MenuChange       = "- : Change Pass"
	MsgWrongPassword = "Wrong Password"
	MsgCorrectPass   = "Correct Password"
	MsgDoorIs        = "Door is"
	MsgUnlocking     = "Unlocking"
	MsgLocking       = "locking"
	MsgChangedLine1  = "Password Changed"
	MsgChangedLine2  = "Successfully"
	MsgLockoutLine1  = "ERROR"
	MsgLockoutLine2  = "WRONG 3 TRIES"
)

// DefaultMessageHold is the display time of transient messages on the
// reference hardware.
const DefaultMessageHold = 250 * time.Millisecond

// FrontConfig configures the front dispatcher.
type FrontConfig struct {
	Link    link.Link
	Keypad  hal.Keypad
	Display hal.Display

	// Waiter counts the door and alarm windows in step with the back unit.
	Waiter tick.Waiter

	// Threshold is the number of failures that triggers the alarm
	// (default: lockout.Threshold).
	Threshold int

	// AlarmTicks is the lockout window (default: lockout.AlarmTicks).
	AlarmTicks int

	// Door phase lengths (default: door.UnlockTicks, door.HoldTicks,
	// door.LockTicks). They must match the back unit.
	UnlockTicks int
	HoldTicks   int
	LockTicks   int

	// MessageHold is how long transient messages stay on the display.
	// Zero shows them without pausing.
	MessageHold time.Duration

	// Logger for debug output (optional).
	Logger *slog.Logger

	// ProtocolLogger receives state change and error events (optional).
	ProtocolLogger log.Logger
}

// Front is the keypad and display dispatcher.
type Front struct {
	config  FrontConfig
	link    link.Link
	display hal.Display
	keypad  hal.Keypad
	waiter  tick.Waiter
	session *credential.Session
	tracker *lockout.Tracker
	machine *machine[FrontState]
	logger  *slog.Logger
	plog    log.Logger
}

// NewFront creates a front dispatcher in FrontStart.
func NewFront(config FrontConfig) (*Front, error) {
	if config.Link == nil || config.Keypad == nil || config.Display == nil || config.Waiter == nil {
		return nil, fmt.Errorf("%w: front needs link, keypad, display and waiter", ErrInvalidConfig)
	}
	if config.Threshold <= 0 {
		config.Threshold = lockout.Threshold
	}
	if config.AlarmTicks <= 0 {
		config.AlarmTicks = lockout.AlarmTicks
	}
	if config.UnlockTicks <= 0 {
		config.UnlockTicks = door.UnlockTicks
	}
	if config.HoldTicks <= 0 {
		config.HoldTicks = door.HoldTicks
	}
	if config.LockTicks <= 0 {
		config.LockTicks = door.LockTicks
	}

	session := credential.NewSession(credential.SessionConfig{
		Keypad:  config.Keypad,
		Display: config.Display,
		Link:    config.Link,
		Logger:  config.Logger,
	})

	f := &Front{
		config:  config,
		link:    config.Link,
		display: config.Display,
		keypad:  config.Keypad,
		waiter:  config.Waiter,
		session: session,
		tracker: lockout.NewTracker(config.Threshold),
		machine: newMachine(FrontStart, frontTransitions),
		logger:  config.Logger,
		plog:    config.ProtocolLogger,
	}
	if f.plog == nil {
		f.plog = log.NoopLogger{}
	}

	f.machine.observe(func(from, to FrontState, reason string) {
		f.debugLog("front: state change", "from", from, "to", to, "reason", reason)
		f.plog.Log(log.NewStateEvent(log.RoleFront, log.LayerDispatcher, log.StateEntityDispatcher,
			from.String(), to.String(), reason))
	})
	f.tracker.OnChange(func(from, to int) {
		f.plog.Log(log.NewStateEvent(log.RoleFront, log.LayerSession, log.StateEntityRetry,
			strconv.Itoa(from), strconv.Itoa(to), ""))
	})
	return f, nil
}

func (f *Front) debugLog(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}

// State returns the current dispatcher state.
func (f *Front) State() FrontState {
	return f.machine.state()
}

// Failures returns the current retry count.
func (f *Front) Failures() int {
	return f.tracker.Failures()
}

// OnStateChange registers a callback for dispatcher transitions.
func (f *Front) OnStateChange(fn func(from, to FrontState)) {
	f.machine.observe(func(from, to FrontState, _ string) {
		fn(from, to)
	})
}

// Run drives the dispatcher until ctx is cancelled or a step fails with an
// unrecoverable error such as a closed link.
func (f *Front) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := f.Step(ctx); err != nil {
			return err
		}
	}
}

// Step runs the action of the current state once and performs the resulting
// transition. A stalled link abandons the round and is not returned.
func (f *Front) Step(ctx context.Context) error {
	current := f.State()
	var err error
	switch current {
	case FrontStart:
		err = f.start(ctx)
	case FrontCreateCredential:
		err = f.createCredential(ctx)
	case FrontMenu:
		err = f.menu(ctx)
	case FrontVerifyOpen:
		err = f.verify(ctx, FrontDoorCycle)
	case FrontVerifyChange:
		err = f.verify(ctx, FrontChangeCredential)
	case FrontDoorCycle:
		err = f.doorCycle(ctx)
	case FrontChangeCredential:
		err = f.changeCredential(ctx)
	case FrontLockout:
		err = f.lockout(ctx)
	default:
		return fmt.Errorf("front: %w: %s", ErrInvalidTransition, current)
	}
	if err == nil {
		return nil
	}
	return f.recover(current, err)
}

// recover abandons the round on a stalled link.
func (f *Front) recover(current FrontState, err error) error {
	if !errors.Is(err, link.ErrChannelStall) {
		return err
	}
	f.plog.Log(log.NewErrorEvent(log.RoleFront, log.LayerDispatcher, err, current.String()))
	if f.logger != nil {
		f.logger.Warn("front: link stalled, abandoning round", "state", current, "error", err)
	}

	fallback := FrontMenu
	if current == FrontCreateCredential {
		fallback = FrontStart
	}
	if current == fallback {
		return nil
	}
	f.tracker.Reset()
	return f.machine.transition(fallback, "stall")
}

func (f *Front) start(ctx context.Context) error {
	if err := f.link.SendByte(ctx, wire.ActionCreate); err != nil {
		return fmt.Errorf("send action: %w", err)
	}
	return f.machine.transition(FrontCreateCredential, "create")
}

// createCredential runs the confirmed entry until both entries match.
func (f *Front) createCredential(ctx context.Context) error {
	if err := f.confirmCredential(ctx); err != nil {
		return err
	}
	return f.machine.transition(FrontMenu, "created")
}

func (f *Front) confirmCredential(ctx context.Context) error {
	for {
		_, err := f.session.CreateWithConfirmation(ctx)
		if err == nil {
			f.plog.Log(log.NewStateEvent(log.RoleFront, log.LayerSession, log.StateEntityCredential,
				"", "sent", ""))
			return f.hold(ctx)
		}
		if !errors.Is(err, credential.ErrMismatch) {
			return err
		}
		if err := f.hold(ctx); err != nil {
			return err
		}
	}
}

func (f *Front) menu(ctx context.Context) error {
	f.display.Clear()
	f.display.WriteText(MenuOpenDoor, 0, 0)
	f.display.WriteText(MenuChange, 1, 0)

	for {
		sym, err := f.keypad.ReadSymbol(ctx)
		if err != nil {
			return err
		}

		var mode wire.Mode
		var next FrontState
		switch sym {
		case wire.SymbolOpenDoor:
			mode, next = wire.ModeOpenDoor, FrontVerifyOpen
		case wire.SymbolChange:
			mode, next = wire.ModeChangeCredential, FrontVerifyChange
		default:
			f.debugLog("front: key ignored in menu", "key", sym.String())
			continue
		}

		if err := f.link.SendByte(ctx, wire.ActionVerify); err != nil {
			return fmt.Errorf("send action: %w", err)
		}
		if err := f.link.SendByte(ctx, mode.Byte()); err != nil {
			return fmt.Errorf("send mode: %w", err)
		}
		f.tracker.Reset()
		return f.machine.transition(next, mode.String())
	}
}

// verify runs one submission of the verification round. It stays in the
// current state after a failure below the threshold.
func (f *Front) verify(ctx context.Context, onSuccess FrontState) error {
	f.display.Clear()
	f.display.WriteText(credential.PromptEnter, 0, 0)
	f.display.WriteText("", 1, 0)

	entry, err := f.session.CollectEntry(ctx)
	if err != nil {
		return err
	}
	if err := f.session.Transmit(ctx, entry); err != nil {
		return err
	}

	verdict, err := f.link.ReceiveByte(ctx)
	if err != nil {
		return fmt.Errorf("receive verdict: %w", err)
	}
	if verdict == wire.Correct {
		f.tracker.RecordSuccess()
		return f.machine.transition(onSuccess, "correct")
	}
	if verdict != wire.Incorrect {
		f.debugLog("front: unexpected verdict treated as incorrect", "byte", verdict.String())
	}

	f.display.Clear()
	f.display.WriteText(MsgWrongPassword, 0, 0)
	if err := f.hold(ctx); err != nil {
		return err
	}

	reached := f.tracker.RecordFailure()
	if err := f.link.SendByte(ctx, wire.AlarmCommand(reached)); err != nil {
		return fmt.Errorf("send alarm command: %w", err)
	}
	if reached {
		return f.machine.transition(FrontLockout, lockout.ErrLockout.Error())
	}
	f.debugLog("front: "+lockout.ErrVerificationFailed.Error(), "failures", f.tracker.Failures())
	return nil
}

func (f *Front) doorCycle(ctx context.Context) error {
	f.display.Clear()
	f.display.WriteText(MsgDoorIs, 0, 0)
	f.display.WriteText(MsgUnlocking, 1, 0)
	if err := f.waiter.WaitTicks(ctx, f.config.UnlockTicks); err != nil {
		return err
	}
	if err := f.waiter.WaitTicks(ctx, f.config.HoldTicks); err != nil {
		return err
	}

	f.display.Clear()
	f.display.WriteText(MsgDoorIs, 0, 0)
	f.display.WriteText(MsgLocking, 1, 0)
	if err := f.waiter.WaitTicks(ctx, f.config.LockTicks); err != nil {
		return err
	}
	f.tracker.Reset()
	return f.machine.transition(FrontMenu, "door cycle complete")
}

func (f *Front) changeCredential(ctx context.Context) error {
	f.display.Clear()
	f.display.WriteText(MsgCorrectPass, 0, 0)
	if err := f.hold(ctx); err != nil {
		return err
	}
	if err := f.confirmCredential(ctx); err != nil {
		return err
	}

	f.display.Clear()
	f.display.WriteText(MsgChangedLine1, 0, 0)
	f.display.WriteText(MsgChangedLine2, 1, 0)
	if err := f.hold(ctx); err != nil {
		return err
	}
	f.tracker.Reset()
	return f.machine.transition(FrontMenu, "credential changed")
}

func (f *Front) lockout(ctx context.Context) error {
	f.display.Clear()
	f.display.WriteText(MsgLockoutLine1, 0, 0)
	f.display.WriteText(MsgLockoutLine2, 1, 0)
	if err := f.waiter.WaitTicks(ctx, f.config.AlarmTicks); err != nil {
		return err
	}
	f.tracker.Reset()
	return f.machine.transition(FrontMenu, "alarm window elapsed")
}

// hold keeps a transient message on the display for MessageHold.
func (f *Front) hold(ctx context.Context) error {
	if f.config.MessageHold <= 0 {
		return nil
	}
	timer := time.NewTimer(f.config.MessageHold)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
