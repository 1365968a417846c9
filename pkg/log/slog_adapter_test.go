package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func logThroughAdapter(t *testing.T, event Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	NewSlogAdapter(slog.New(handler)).Log(event)

	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("failed to parse slog output: %v", err)
	}
	return out
}

func TestSlogAdapterByte(t *testing.T) {
	out := logThroughAdapter(t, Event{
		Timestamp: time.Now(),
		LinkID:    "link-9",
		Direction: DirectionIn,
		Category:  CategoryByte,
		LocalRole: RoleBack,
		Byte:      &ByteEvent{Value: 0xAA, Name: "CORRECT"},
	})

	if out["msg"] != "protocol" {
		t.Errorf("msg: got %v", out["msg"])
	}
	if out["link_id"] != "link-9" {
		t.Errorf("link_id: got %v", out["link_id"])
	}
	if out["byte_name"] != "CORRECT" {
		t.Errorf("byte_name: got %v", out["byte_name"])
	}
	if out["byte"] != float64(0xAA) {
		t.Errorf("byte: got %v", out["byte"])
	}
	if out["role"] != "BACK" {
		t.Errorf("role: got %v", out["role"])
	}
}

func TestSlogAdapterMaskedDigit(t *testing.T) {
	out := logThroughAdapter(t, Event{
		Category: CategoryByte,
		Byte:     &ByteEvent{Name: "DIGIT", Masked: true},
	})
	if _, ok := out["byte"]; ok {
		t.Error("masked digit must not log a byte value")
	}
	if out["masked"] != true {
		t.Errorf("masked: got %v", out["masked"])
	}
}

func TestSlogAdapterStateChange(t *testing.T) {
	out := logThroughAdapter(t, NewStateEvent(RoleBack, LayerSession, StateEntityAlarm, "SILENT", "SOUNDING", "three failures"))
	if out["entity"] != "ALARM" {
		t.Errorf("entity: got %v", out["entity"])
	}
	if out["new_state"] != "SOUNDING" {
		t.Errorf("new_state: got %v", out["new_state"])
	}
	if out["reason"] != "three failures" {
		t.Errorf("reason: got %v", out["reason"])
	}
}
