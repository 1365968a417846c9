package protocol

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/doorlock-protocol/doorlock-go/pkg/credential"
	"github.com/doorlock-protocol/doorlock-go/pkg/door"
	"github.com/doorlock-protocol/doorlock-go/pkg/hal"
	"github.com/doorlock-protocol/doorlock-go/pkg/link"
	"github.com/doorlock-protocol/doorlock-go/pkg/lockout"
	"github.com/doorlock-protocol/doorlock-go/pkg/log"
	"github.com/doorlock-protocol/doorlock-go/pkg/tick"
	"github.com/doorlock-protocol/doorlock-go/pkg/wire"
)

// BackConfig configures the back dispatcher.
type BackConfig struct {
	Link     link.Link
	Store    hal.Store
	Actuator hal.Actuator
	Buzzer   hal.Buzzer

	// Waiter times the door cycle and the alarm.
	Waiter tick.Waiter

	// BaseAddress of the stored credential (default: credential.BaseAddress).
	BaseAddress uint16

	// Threshold is the failure count at which the front unit is expected to
	// enable the alarm (default: lockout.Threshold).
	Threshold int

	// AlarmTicks is the alarm duration (default: lockout.AlarmTicks).
	AlarmTicks int

	// Door is the door sequencer configuration. Actuator and Waiter are
	// taken from this config.
	Door door.Config

	// Logger for debug output (optional).
	Logger *slog.Logger

	// ProtocolLogger receives state change and error events (optional).
	ProtocolLogger log.Logger
}

// BackStatus is a snapshot of the back unit.
type BackStatus struct {
	State            BackState
	Mode             wire.Mode
	Door             door.State
	Alarm            lockout.AlarmState
	Failures         int
	DoorCycles       int
	AlarmActivations int
	Desyncs          int
}

// Back is the actuator, buzzer and store dispatcher.
type Back struct {
	link    link.Link
	vault   *credential.Vault
	door    *door.Sequencer
	alarm   *lockout.Alarm
	tracker *lockout.Tracker
	machine *machine[BackState]
	logger  *slog.Logger
	plog    log.Logger

	mu      sync.RWMutex
	mode    wire.Mode
	desyncs int
}

// NewBack creates a back dispatcher in BackWaitAction.
func NewBack(config BackConfig) (*Back, error) {
	if config.Link == nil || config.Store == nil || config.Actuator == nil ||
		config.Buzzer == nil || config.Waiter == nil {
		return nil, fmt.Errorf("%w: back needs link, store, actuator, buzzer and waiter", ErrInvalidConfig)
	}
	if config.Threshold <= 0 {
		config.Threshold = lockout.Threshold
	}

	doorConfig := config.Door
	doorConfig.Actuator = config.Actuator
	doorConfig.Waiter = config.Waiter

	vault := credential.NewVault(credential.VaultConfig{
		Link:        config.Link,
		Store:       config.Store,
		BaseAddress: config.BaseAddress,
		Logger:      config.Logger,
	})
	alarm := lockout.NewAlarm(lockout.AlarmConfig{
		Buzzer: config.Buzzer,
		Waiter: config.Waiter,
		Ticks:  config.AlarmTicks,
	})

	b := &Back{
		link:    config.Link,
		vault:   vault,
		door:    door.NewSequencer(doorConfig),
		alarm:   alarm,
		tracker: lockout.NewTracker(config.Threshold),
		machine: newMachine(BackWaitAction, backTransitions),
		logger:  config.Logger,
		plog:    config.ProtocolLogger,
	}
	if b.plog == nil {
		b.plog = log.NoopLogger{}
	}

	b.machine.observe(func(from, to BackState, reason string) {
		b.debugLog("back: state change", "from", from, "to", to, "reason", reason)
		b.plog.Log(log.NewStateEvent(log.RoleBack, log.LayerDispatcher, log.StateEntityDispatcher,
			from.String(), to.String(), reason))
	})
	b.door.OnStateChange(func(from, to door.State) {
		b.plog.Log(log.NewStateEvent(log.RoleBack, log.LayerSession, log.StateEntityDoor,
			from.String(), to.String(), ""))
	})
	b.alarm.OnStateChange(func(from, to lockout.AlarmState) {
		b.plog.Log(log.NewStateEvent(log.RoleBack, log.LayerSession, log.StateEntityAlarm,
			from.String(), to.String(), ""))
	})
	b.tracker.OnChange(func(from, to int) {
		b.plog.Log(log.NewStateEvent(log.RoleBack, log.LayerSession, log.StateEntityRetry,
			strconv.Itoa(from), strconv.Itoa(to), ""))
	})
	return b, nil
}

func (b *Back) debugLog(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Debug(msg, args...)
	}
}

func (b *Back) warnLog(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Warn(msg, args...)
	}
}

// State returns the current dispatcher state.
func (b *Back) State() BackState {
	return b.machine.state()
}

// Status returns a snapshot of the back unit.
func (b *Back) Status() BackStatus {
	b.mu.RLock()
	mode, desyncs := b.mode, b.desyncs
	b.mu.RUnlock()

	return BackStatus{
		State:            b.State(),
		Mode:             mode,
		Door:             b.door.State(),
		Alarm:            b.alarm.State(),
		Failures:         b.tracker.Failures(),
		DoorCycles:       b.door.Cycles(),
		AlarmActivations: b.alarm.Activations(),
		Desyncs:          desyncs,
	}
}

// Vault returns the credential vault.
func (b *Back) Vault() *credential.Vault {
	return b.vault
}

// OnStateChange registers a callback for dispatcher transitions.
func (b *Back) OnStateChange(fn func(from, to BackState)) {
	b.machine.observe(func(from, to BackState, _ string) {
		fn(from, to)
	})
}

// Run drives the dispatcher until ctx is cancelled or a step fails with an
// unrecoverable error such as a closed link.
func (b *Back) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.Step(ctx); err != nil {
			return err
		}
	}
}

// Step runs the action of the current state once and performs the resulting
// transition. A stalled link abandons the round and is not returned.
func (b *Back) Step(ctx context.Context) error {
	current := b.State()
	var err error
	switch current {
	case BackWaitAction:
		err = b.waitAction(ctx)
	case BackCreateCredential:
		err = b.persist(ctx, "created")
	case BackCheckAction:
		err = b.checkAction(ctx)
	case BackVerifyOpen:
		err = b.verify(ctx, BackDoorSequence)
	case BackVerifyChange:
		err = b.verify(ctx, BackPersistCredential)
	case BackDoorSequence:
		err = b.doorSequence(ctx)
	case BackPersistCredential:
		err = b.persist(ctx, "changed")
	case BackAlarm:
		err = b.soundAlarm(ctx)
	default:
		return fmt.Errorf("back: %w: %s", ErrInvalidTransition, current)
	}
	if err == nil {
		return nil
	}
	return b.recover(current, err)
}

// recover abandons the round on a stalled link.
func (b *Back) recover(current BackState, err error) error {
	if !errors.Is(err, link.ErrChannelStall) {
		return err
	}
	b.plog.Log(log.NewErrorEvent(log.RoleBack, log.LayerDispatcher, err, current.String()))
	b.warnLog("back: link stalled, abandoning round", "state", current, "error", err)
	if current == BackWaitAction {
		return nil
	}
	b.tracker.Reset()
	return b.machine.transition(BackWaitAction, "stall")
}

func (b *Back) waitAction(ctx context.Context) error {
	action, err := b.link.ReceiveByte(link.Unbounded(ctx))
	if err != nil {
		return fmt.Errorf("receive action: %w", err)
	}
	switch action {
	case wire.ActionCreate:
		return b.machine.transition(BackCreateCredential, "create")
	case wire.ActionVerify:
		return b.machine.transition(BackCheckAction, "verify")
	default:
		b.debugLog("back: unknown action ignored", "byte", action.String())
		return nil
	}
}

func (b *Back) checkAction(ctx context.Context) error {
	raw, err := b.link.ReceiveByte(ctx)
	if err != nil {
		return fmt.Errorf("receive mode: %w", err)
	}
	mode := wire.ParseMode(raw)

	b.mu.Lock()
	b.mode = mode
	b.mu.Unlock()
	b.tracker.Reset()

	switch mode {
	case wire.ModeOpenDoor:
		return b.machine.transition(BackVerifyOpen, mode.String())
	case wire.ModeChangeCredential:
		return b.machine.transition(BackVerifyChange, mode.String())
	default:
		b.debugLog("back: unknown mode ignored", "byte", raw.String())
		return b.machine.transition(BackWaitAction, "unknown mode")
	}
}

// verify runs one submission of the verification round. After a failure
// below the threshold it stays in the current state for the next
// submission.
func (b *Back) verify(ctx context.Context, onSuccess BackState) error {
	match, err := b.vault.ReceiveAndCompare(ctx)
	if err != nil {
		return err
	}
	if match {
		if err := b.link.SendByte(ctx, wire.Correct); err != nil {
			return fmt.Errorf("send verdict: %w", err)
		}
		b.tracker.RecordSuccess()
		return b.machine.transition(onSuccess, "correct")
	}

	if err := b.link.SendByte(ctx, wire.Incorrect); err != nil {
		return fmt.Errorf("send verdict: %w", err)
	}
	reached := b.tracker.RecordFailure()
	b.debugLog("back: "+lockout.ErrVerificationFailed.Error(), "failures", b.tracker.Failures(), "threshold_reached", reached)

	cmd, err := b.link.ReceiveByte(ctx)
	if err != nil {
		return fmt.Errorf("receive alarm command: %w", err)
	}
	switch cmd {
	case wire.AlarmEnable:
		if !reached {
			b.desync("alarm enabled below threshold")
		}
		return b.machine.transition(BackAlarm, lockout.ErrLockout.Error())
	case wire.AlarmDisable:
		if reached {
			b.desync("alarm disabled at threshold")
			b.tracker.Reset()
		}
		return nil
	default:
		b.debugLog("back: unexpected alarm command treated as disable", "byte", cmd.String())
		if reached {
			b.tracker.Reset()
		}
		return nil
	}
}

// desync records a disagreement between the local retry counter and the
// front unit's alarm command. The front unit's command is obeyed.
func (b *Back) desync(reason string) {
	b.mu.Lock()
	b.desyncs++
	b.mu.Unlock()
	b.warnLog("back: retry counter out of step with front unit",
		"reason", reason, "failures", b.tracker.Failures())
}

func (b *Back) doorSequence(ctx context.Context) error {
	if err := b.door.Run(ctx); err != nil {
		return err
	}
	b.tracker.Reset()
	return b.machine.transition(BackWaitAction, "door cycle complete")
}

func (b *Back) persist(ctx context.Context, reason string) error {
	if err := b.vault.Persist(ctx); err != nil {
		if !errors.Is(err, credential.ErrInvalidCredential) {
			return err
		}
		b.plog.Log(log.NewErrorEvent(log.RoleBack, log.LayerSession, err, b.State().String()))
		b.warnLog("back: credential transfer rejected", "error", err)
		b.tracker.Reset()
		return b.machine.transition(BackWaitAction, "rejected")
	}
	b.plog.Log(log.NewStateEvent(log.RoleBack, log.LayerSession, log.StateEntityCredential,
		"", reason, ""))
	b.tracker.Reset()
	return b.machine.transition(BackWaitAction, reason)
}

func (b *Back) soundAlarm(ctx context.Context) error {
	if err := b.alarm.Sound(ctx); err != nil {
		return err
	}
	b.tracker.Reset()
	return b.machine.transition(BackWaitAction, "alarm window elapsed")
}
