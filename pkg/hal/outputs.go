package hal

import (
	"log/slog"
	"sync"
)

// DriveCommand is one recorded actuator command.
type DriveCommand struct {
	Direction Direction
	Duty      uint8
}

// RecordingActuator records every Drive call and optionally logs it.
type RecordingActuator struct {
	mu       sync.Mutex
	commands []DriveCommand
	logger   *slog.Logger
}

// NewRecordingActuator creates an actuator. logger may be nil.
func NewRecordingActuator(logger *slog.Logger) *RecordingActuator {
	return &RecordingActuator{logger: logger}
}

// Drive records the command. Duty above MaxDuty is clamped.
func (a *RecordingActuator) Drive(dir Direction, dutyPercent uint8) {
	if dutyPercent > MaxDuty {
		dutyPercent = MaxDuty
	}
	a.mu.Lock()
	a.commands = append(a.commands, DriveCommand{Direction: dir, Duty: dutyPercent})
	a.mu.Unlock()

	if a.logger != nil {
		a.logger.Info("actuator", "direction", dir.String(), "duty", dutyPercent)
	}
}

// Commands returns a copy of the recorded commands.
func (a *RecordingActuator) Commands() []DriveCommand {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]DriveCommand, len(a.commands))
	copy(out, a.commands)
	return out
}

// Directions returns the direction of every recorded command.
func (a *RecordingActuator) Directions() []Direction {
	cmds := a.Commands()
	out := make([]Direction, len(cmds))
	for i, c := range cmds {
		out[i] = c.Direction
	}
	return out
}

// RecordingBuzzer tracks buzzer state and counts activations.
type RecordingBuzzer struct {
	mu     sync.Mutex
	on     bool
	ons    int
	events []bool
	logger *slog.Logger
}

// NewRecordingBuzzer creates a silent buzzer. logger may be nil.
func NewRecordingBuzzer(logger *slog.Logger) *RecordingBuzzer {
	return &RecordingBuzzer{logger: logger}
}

// On starts the buzzer.
func (b *RecordingBuzzer) On() {
	b.set(true)
}

// Off silences the buzzer.
func (b *RecordingBuzzer) Off() {
	b.set(false)
}

func (b *RecordingBuzzer) set(on bool) {
	b.mu.Lock()
	if on && !b.on {
		b.ons++
	}
	b.on = on
	b.events = append(b.events, on)
	b.mu.Unlock()

	if b.logger != nil {
		if on {
			b.logger.Warn("buzzer on")
		} else {
			b.logger.Info("buzzer off")
		}
	}
}

// IsOn reports whether the buzzer is sounding.
func (b *RecordingBuzzer) IsOn() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.on
}

// Activations returns how many times the buzzer went from silent to sounding.
func (b *RecordingBuzzer) Activations() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ons
}

// Events returns every On (true) and Off (false) call in order.
func (b *RecordingBuzzer) Events() []bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]bool, len(b.events))
	copy(out, b.events)
	return out
}

// Compile-time interface satisfaction checks.
var (
	_ Actuator = (*RecordingActuator)(nil)
	_ Buzzer   = (*RecordingBuzzer)(nil)
)
