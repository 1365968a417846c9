package log

import "time"

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// LinkID identifies the link session (UUID).
	LinkID string `cbor:"2,keyasint"`

	// Direction indicates byte flow. Only meaningful for link events.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// LocalRole indicates whether this is the front or the back unit.
	LocalRole Role `cbor:"6,keyasint,omitempty"`

	// Port is the serial device or bridge address of the link.
	Port string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Byte        *ByteEvent        `cbor:"10,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"12,keyasint,omitempty"`
}

// Direction indicates the direction of byte flow.
type Direction uint8

const (
	// DirectionIn indicates a received byte.
	DirectionIn Direction = 0
	// DirectionOut indicates a sent byte.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which part of the stack captured the event.
type Layer uint8

const (
	// LayerLink is the byte layer.
	LayerLink Layer = 0
	// LayerSession covers credential sessions, the retry counter, the door
	// sequencer and the alarm.
	LayerSession Layer = 1
	// LayerDispatcher is the front or back state machine.
	LayerDispatcher Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerLink:
		return "LINK"
	case LayerSession:
		return "SESSION"
	case LayerDispatcher:
		return "DISPATCHER"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryByte indicates a byte on the link.
	CategoryByte Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryByte:
		return "BYTE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Role indicates which unit produced the event.
type Role uint8

const (
	// RoleFront is the keypad and display unit.
	RoleFront Role = 0
	// RoleBack is the actuator and store unit.
	RoleBack Role = 1
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleFront:
		return "FRONT"
	case RoleBack:
		return "BACK"
	default:
		return "UNKNOWN"
	}
}

// ByteEvent captures one byte on the link.
type ByteEvent struct {
	// Value is the raw byte. Zero when Masked is set.
	Value uint8 `cbor:"1,keyasint"`

	// Name is the protocol meaning of the byte (SYNC, MODE_OPEN, DIGIT, ...).
	Name string `cbor:"2,keyasint"`

	// Masked indicates a credential digit whose value was not recorded.
	Masked bool `cbor:"3,keyasint,omitempty"`
}

// StateChangeEvent captures a state transition.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what changed state.
type StateEntity uint8

const (
	// StateEntityDispatcher indicates a front or back dispatcher transition.
	StateEntityDispatcher StateEntity = 0
	// StateEntityDoor indicates a door sequencer phase change.
	StateEntityDoor StateEntity = 1
	// StateEntityAlarm indicates an alarm change.
	StateEntityAlarm StateEntity = 2
	// StateEntityRetry indicates a retry counter change.
	StateEntityRetry StateEntity = 3
	// StateEntityCredential indicates a credential created or changed.
	StateEntityCredential StateEntity = 4
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityDispatcher:
		return "DISPATCHER"
	case StateEntityDoor:
		return "DOOR"
	case StateEntityAlarm:
		return "ALARM"
	case StateEntityRetry:
		return "RETRY"
	case StateEntityCredential:
		return "CREDENTIAL"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}

// NewStateEvent builds a state change event stamped with the current time.
func NewStateEvent(role Role, layer Layer, entity StateEntity, oldState, newState, reason string) Event {
	return Event{
		Timestamp: time.Now(),
		Layer:     layer,
		Category:  CategoryState,
		LocalRole: role,
		StateChange: &StateChangeEvent{
			Entity:   entity,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	}
}

// NewErrorEvent builds an error event stamped with the current time.
func NewErrorEvent(role Role, layer Layer, err error, context string) Event {
	return Event{
		Timestamp: time.Now(),
		Layer:     layer,
		Category:  CategoryError,
		LocalRole: role,
		Error: &ErrorEventData{
			Layer:   layer,
			Message: err.Error(),
			Context: context,
		},
	}
}
