package wire

import "testing"

func TestControlBytesDoNotCollideWithDigits(t *testing.T) {
	controls := []Byte{Sync, Correct, Incorrect, ActionCreate, ActionVerify,
		ModeChange, ModeOpen, AlarmEnable, AlarmDisable}

	seen := make(map[Byte]bool)
	for _, b := range controls {
		if b.IsDigit() {
			t.Errorf("%s (0x%02X) collides with a digit", b, uint8(b))
		}
		if !b.IsControl() {
			t.Errorf("%s not reported as control", b)
		}
		if seen[b] {
			t.Errorf("duplicate control value 0x%02X", uint8(b))
		}
		seen[b] = true
	}
}

func TestByteString(t *testing.T) {
	tests := []struct {
		b    Byte
		want string
	}{
		{Sync, "SYNC"},
		{Correct, "CORRECT"},
		{Incorrect, "INCORRECT"},
		{ActionCreate, "ACTION_CREATE"},
		{ActionVerify, "ACTION_VERIFY"},
		{ModeChange, "MODE_CHANGE"},
		{ModeOpen, "MODE_OPEN"},
		{AlarmEnable, "ALARM_ENABLE"},
		{AlarmDisable, "ALARM_DISABLE"},
		{'7', "DIGIT"},
		{0x01, "0x01"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.b.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	if got := ParseMode(ModeOpen); got != ModeOpenDoor {
		t.Errorf("ParseMode(ModeOpen) = %v, want OPEN_DOOR", got)
	}
	if got := ParseMode(ModeChange); got != ModeChangeCredential {
		t.Errorf("ParseMode(ModeChange) = %v, want CHANGE_CREDENTIAL", got)
	}
	if got := ParseMode(Sync); got != ModeUnknown {
		t.Errorf("ParseMode(Sync) = %v, want UNKNOWN", got)
	}

	for _, m := range []Mode{ModeOpenDoor, ModeChangeCredential} {
		if ParseMode(m.Byte()) != m {
			t.Errorf("ParseMode(%v.Byte()) did not round trip", m)
		}
	}
}

func TestAlarmCommand(t *testing.T) {
	if AlarmCommand(true) != AlarmEnable {
		t.Error("AlarmCommand(true) != AlarmEnable")
	}
	if AlarmCommand(false) != AlarmDisable {
		t.Error("AlarmCommand(false) != AlarmDisable")
	}
}

func TestSymbolClassification(t *testing.T) {
	for _, s := range []Symbol{SymbolOpenDoor, SymbolChange, SymbolConfirm, SymbolSelect} {
		if !s.IsControl() || s.IsDigit() {
			t.Errorf("%v misclassified", s)
		}
	}
	for c := '0'; c <= '9'; c++ {
		s := Symbol(c)
		if !s.IsDigit() || s.IsControl() {
			t.Errorf("%q misclassified", c)
		}
	}
	if Symbol('*').IsDigit() || Symbol('*').IsControl() {
		t.Error("'*' should be neither digit nor control")
	}
}
