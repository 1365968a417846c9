package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"
)

func countEvents(t *testing.T, r *Reader) int {
	t.Helper()
	n := 0
	for {
		_, err := r.Next()
		if err == io.EOF {
			return n
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		n++
	}
}

func writeSampleLog(t *testing.T) (string, time.Time) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.dlog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: base, LinkID: "a", Direction: DirectionOut, Layer: LayerLink, Category: CategoryByte, LocalRole: RoleFront, Byte: &ByteEvent{Value: 0xDD, Name: "ACTION_VERIFY"}},
		{Timestamp: base.Add(time.Second), LinkID: "b", Direction: DirectionIn, Layer: LayerLink, Category: CategoryByte, LocalRole: RoleBack, Byte: &ByteEvent{Value: 0xDD, Name: "ACTION_VERIFY"}},
		{Timestamp: base.Add(2 * time.Second), LinkID: "b", Layer: LayerSession, Category: CategoryState, LocalRole: RoleBack, StateChange: &StateChangeEvent{Entity: StateEntityDoor, OldState: "LOCKED", NewState: "UNLOCKING"}},
		{Timestamp: base.Add(3 * time.Second), LinkID: "b", Layer: LayerDispatcher, Category: CategoryState, LocalRole: RoleBack, StateChange: &StateChangeEvent{Entity: StateEntityDispatcher, OldState: "WAIT_ACTION", NewState: "CHECK_ACTION"}},
		{Timestamp: base.Add(4 * time.Second), LinkID: "a", Layer: LayerLink, Category: CategoryError, LocalRole: RoleFront, Error: &ErrorEventData{Layer: LayerLink, Message: "stall"}},
	}
	for _, e := range events {
		logger.Log(e)
	}
	return path, base
}

func TestReaderReadsAll(t *testing.T) {
	path, _ := writeSampleLog(t)

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	if n := countEvents(t, r); n != 5 {
		t.Errorf("expected 5 events, got %d", n)
	}
}

func TestReaderFilters(t *testing.T) {
	path, base := writeSampleLog(t)

	back := RoleBack
	out := DirectionOut
	state := CategoryState
	door := StateEntityDoor
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"link id", Filter{LinkID: "a"}, 2},
		{"role", Filter{Role: &back}, 3},
		{"direction", Filter{Direction: &out}, 1},
		{"category", Filter{Category: &state}, 2},
		{"entity", Filter{Entity: &door}, 1},
		{"time range", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"combined", Filter{LinkID: "b", Category: &state}, 2},
		{"no match", Filter{LinkID: "zzz"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			defer r.Close()
			if n := countEvents(t, r); n != tt.want {
				t.Errorf("got %d events, want %d", n, tt.want)
			}
		})
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing.dlog")); err == nil {
		t.Error("expected error for missing file")
	}
}
