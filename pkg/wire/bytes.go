package wire

import "fmt"

// Byte is a single value on the serial link.
type Byte uint8

// Control bytes. Values match the reference hardware.
const (
	// Sync acknowledges one received digit.
	Sync Byte = 0x15

	// Correct reports that a submitted credential matched the stored one.
	Correct Byte = 0xAA

	// Incorrect reports that a submitted credential did not match.
	Incorrect Byte = 0xBB

	// ActionCreate announces that a new credential follows.
	ActionCreate Byte = 0xCC

	// ActionVerify announces a verification round; a mode byte follows.
	ActionVerify Byte = 0xDD

	// ModeChange selects a verification that ends in a credential change.
	ModeChange Byte = 0xEE

	// ModeOpen selects a verification that ends in a door cycle.
	ModeOpen Byte = 0xFF

	// AlarmEnable tells the back unit that the retry threshold was reached.
	AlarmEnable Byte = 0x68

	// AlarmDisable tells the back unit that the round continues.
	AlarmDisable Byte = 0x69
)

// IsDigit returns true if b is an ASCII decimal digit.
func (b Byte) IsDigit() bool {
	return b >= '0' && b <= '9'
}

// IsControl returns true if b is one of the protocol control bytes.
func (b Byte) IsControl() bool {
	switch b {
	case Sync, Correct, Incorrect, ActionCreate, ActionVerify,
		ModeChange, ModeOpen, AlarmEnable, AlarmDisable:
		return true
	default:
		return false
	}
}

// String returns the control byte name, "DIGIT" for digits, or the hex value.
// Digits are never rendered so credentials do not leak into logs.
func (b Byte) String() string {
	switch b {
	case Sync:
		return "SYNC"
	case Correct:
		return "CORRECT"
	case Incorrect:
		return "INCORRECT"
	case ActionCreate:
		return "ACTION_CREATE"
	case ActionVerify:
		return "ACTION_VERIFY"
	case ModeChange:
		return "MODE_CHANGE"
	case ModeOpen:
		return "MODE_OPEN"
	case AlarmEnable:
		return "ALARM_ENABLE"
	case AlarmDisable:
		return "ALARM_DISABLE"
	}
	if b.IsDigit() {
		return "DIGIT"
	}
	return fmt.Sprintf("0x%02X", uint8(b))
}

// Mode is the verification mode carried by the byte after ActionVerify.
type Mode uint8

const (
	// ModeUnknown is any byte that is not a valid mode.
	ModeUnknown Mode = iota

	// ModeOpenDoor verifies and then runs the door cycle.
	ModeOpenDoor

	// ModeChangeCredential verifies and then replaces the credential.
	ModeChangeCredential
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeOpenDoor:
		return "OPEN_DOOR"
	case ModeChangeCredential:
		return "CHANGE_CREDENTIAL"
	default:
		return "UNKNOWN"
	}
}

// Byte returns the wire value for m.
func (m Mode) Byte() Byte {
	switch m {
	case ModeOpenDoor:
		return ModeOpen
	case ModeChangeCredential:
		return ModeChange
	default:
		return 0
	}
}

// ParseMode maps a received byte to a Mode.
func ParseMode(b Byte) Mode {
	switch b {
	case ModeOpen:
		return ModeOpenDoor
	case ModeChange:
		return ModeChangeCredential
	default:
		return ModeUnknown
	}
}

// AlarmCommand returns AlarmEnable when enable is true, AlarmDisable otherwise.
func AlarmCommand(enable bool) Byte {
	if enable {
		return AlarmEnable
	}
	return AlarmDisable
}
