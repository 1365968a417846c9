// Package commands implements the lock-log CLI commands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/doorlock-protocol/doorlock-go/pkg/log"
)

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [link:id] ROLE DIRECTION LAYER Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	linkID := shortenLinkID(event.LinkID)

	var typeLabel string
	switch {
	case event.Byte != nil:
		typeLabel = "Byte"
	case event.StateChange != nil:
		typeLabel = "State"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Unknown"
	}

	// Direction is only meaningful for bytes on the link.
	dir := "-"
	if event.Category == log.CategoryByte {
		dir = event.Direction.String()
	}

	fmt.Fprintf(w, "%s [link:%s] %-5s %-3s %s %s\n", ts, linkID, event.LocalRole, dir, event.Layer, typeLabel)

	switch {
	case event.Byte != nil:
		formatByteDetails(w, event.Byte)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}
	if event.Port != "" {
		fmt.Fprintf(w, "  Port: %s\n", event.Port)
	}

	fmt.Fprintln(w)
}

// shortenLinkID returns the first 8 characters of the link ID.
func shortenLinkID(id string) string {
	if id == "" {
		return "--------"
	}
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatByteDetails(w io.Writer, b *log.ByteEvent) {
	if b.Masked {
		fmt.Fprintf(w, "  %s (masked)\n", b.Name)
		return
	}
	fmt.Fprintf(w, "  %s 0x%02X\n", b.Name, b.Value)
}

// formatStateChangeDetails writes state change details.
func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity.String())
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// ParseLayerFlag parses a layer string from command-line flag (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "link":
		return log.LayerLink, nil
	case "session":
		return log.LayerSession, nil
	case "dispatcher":
		return log.LayerDispatcher, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be link, session, or dispatcher)", s)
	}
}

// ParseDirectionFlag parses a direction string from command-line flag (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "byte":
		return log.CategoryByte, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be byte, state, or error)", s)
	}
}

// ParseRoleFlag parses a unit role from command-line flag (case-insensitive).
func ParseRoleFlag(s string) (log.Role, error) {
	switch strings.ToLower(s) {
	case "front":
		return log.RoleFront, nil
	case "back":
		return log.RoleBack, nil
	default:
		return 0, fmt.Errorf("invalid role: %s (must be front or back)", s)
	}
}

// ParseEntityFlag parses a state entity from command-line flag (case-insensitive).
func ParseEntityFlag(s string) (log.StateEntity, error) {
	switch strings.ToLower(s) {
	case "dispatcher":
		return log.StateEntityDispatcher, nil
	case "door":
		return log.StateEntityDoor, nil
	case "alarm":
		return log.StateEntityAlarm, nil
	case "retry":
		return log.StateEntityRetry, nil
	case "credential":
		return log.StateEntityCredential, nil
	default:
		return 0, fmt.Errorf("invalid entity: %s (must be dispatcher, door, alarm, retry, or credential)", s)
	}
}

// RunView writes every event of the file that matches filter to output.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
}
