package wire

// Symbol is a key read from the front keypad.
type Symbol byte

// Control keys on the front keypad.
const (
	// SymbolOpenDoor selects the open-door menu entry.
	SymbolOpenDoor Symbol = '+'

	// SymbolChange selects the change-credential menu entry.
	SymbolChange Symbol = '-'

	// SymbolConfirm ends an entry.
	SymbolConfirm Symbol = '#'

	// SymbolSelect is the spare menu key. It is never part of an entry.
	SymbolSelect Symbol = '^'
)

// IsDigit returns true if s is a decimal digit key.
func (s Symbol) IsDigit() bool {
	return s >= '0' && s <= '9'
}

// IsControl returns true if s is one of the control keys.
func (s Symbol) IsControl() bool {
	switch s {
	case SymbolOpenDoor, SymbolChange, SymbolConfirm, SymbolSelect:
		return true
	default:
		return false
	}
}

// String returns a printable form of the key.
func (s Symbol) String() string {
	switch s {
	case SymbolOpenDoor:
		return "OPEN_DOOR"
	case SymbolChange:
		return "CHANGE"
	case SymbolConfirm:
		return "CONFIRM"
	case SymbolSelect:
		return "SELECT"
	}
	if s.IsDigit() {
		return string(rune(s))
	}
	return "UNKNOWN"
}
