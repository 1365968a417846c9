package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/doorlock-protocol/doorlock-go/pkg/log"
)

func TestStatsCountsDomainEvents(t *testing.T) {
	ts := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	verdict := func(name string, v uint8) log.Event {
		return log.Event{
			Timestamp: ts,
			LinkID:    "back-link-0001",
			Direction: log.DirectionOut,
			Layer:     log.LayerLink,
			Category:  log.CategoryByte,
			LocalRole: log.RoleBack,
			Byte:      &log.ByteEvent{Value: v, Name: name},
		}
	}
	events := []log.Event{
		verdict("INCORRECT", 0xBB),
		verdict("CORRECT", 0xAA),
		{Timestamp: ts.Add(time.Second), LinkID: "back-link-0001", Direction: log.DirectionIn, Layer: log.LayerLink, Category: log.CategoryByte, LocalRole: log.RoleBack, Byte: &log.ByteEvent{Name: "DIGIT", Masked: true}},
		log.NewStateEvent(log.RoleBack, log.LayerSession, log.StateEntityDoor, "LOCKED", "UNLOCKING", "credential correct"),
		log.NewStateEvent(log.RoleBack, log.LayerSession, log.StateEntityDoor, "UNLOCKING", "HELD", ""),
		log.NewStateEvent(log.RoleBack, log.LayerSession, log.StateEntityAlarm, "SILENT", "SOUNDING", "alarm enable"),
		{Timestamp: ts, LocalRole: log.RoleFront, Layer: log.LayerLink, Category: log.CategoryError, Error: &log.ErrorEventData{Message: "stall"}},
	}
	for i := range events {
		events[i].Timestamp = ts
	}
	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Total Events: 7",
		"Verdicts:    1 correct, 1 incorrect",
		"Door Cycles: 1",
		"Alarms:      1",
		"Links: 1",
		"[back-lin] BACK 3 events",
		"Bytes: 1 in, 2 out",
		"Errors: 1",
		"SESSION:",
		"FRONT:",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got:\n%s", want, output)
		}
	}
}

func TestStatsEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Total Events: 0") {
		t.Errorf("expected zero events, got: %s", buf.String())
	}
	if strings.Contains(buf.String(), "Time Range") {
		t.Errorf("empty file should not print a time range")
	}
}
