package hal

import (
	"context"

	"github.com/doorlock-protocol/doorlock-go/pkg/wire"
)

// Keypad reads keys pressed on the front unit.
type Keypad interface {
	// ReadSymbol blocks until a key is pressed or ctx is done.
	ReadSymbol(ctx context.Context) (wire.Symbol, error)
}

// Display is the two-row character display of the front unit.
type Display interface {
	Clear()
	WriteText(text string, row, col int)
	WriteChar(ch byte)
}

// Direction is the actuator drive direction.
type Direction uint8

const (
	// DirectionStop halts the actuator.
	DirectionStop Direction = iota

	// DirectionForward drives the bolt open.
	DirectionForward

	// DirectionReverse drives the bolt closed.
	DirectionReverse
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionStop:
		return "STOP"
	case DirectionForward:
		return "FORWARD"
	case DirectionReverse:
		return "REVERSE"
	default:
		return "UNKNOWN"
	}
}

// MaxDuty is the highest accepted duty cycle in percent.
const MaxDuty uint8 = 100

// Actuator drives the door bolt motor. Commands are fire-and-forget.
type Actuator interface {
	Drive(dir Direction, dutyPercent uint8)
}

// Buzzer is the alarm output of the back unit.
type Buzzer interface {
	On()
	Off()
}

// Store is byte-addressed non-volatile memory. Writes are durable when Write
// returns.
type Store interface {
	Read(ctx context.Context, addr uint16) (byte, error)
	Write(ctx context.Context, addr uint16, b byte) error
}
