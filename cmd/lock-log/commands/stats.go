package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/doorlock-protocol/doorlock-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	EventsByRole      map[log.Role]int
	Links             map[string]*LinkStats
	Errors            int

	// DoorCycles counts door sequences that reached UNLOCKING.
	DoorCycles int
	// Alarms counts alarm episodes that reached SOUNDING.
	Alarms     int
	// Verdicts counts CORRECT and INCORRECT bytes sent by the back unit.
	Verdicts   map[string]int

	TimeRange struct {
		Start time.Time
		End   time.Time
	}
}

// LinkStats holds statistics for a single link session.
type LinkStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Role      log.Role
	Port      string
	BytesIn   int
	BytesOut  int
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := newStats()
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func newStats() *Stats {
	return &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		EventsByRole:      make(map[log.Role]int),
		Links:             make(map[string]*LinkStats),
		Verdicts:          make(map[string]int),
	}
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++
	s.EventsByRole[event.LocalRole]++
	if event.Category == log.CategoryByte {
		s.EventsByDirection[event.Direction]++
	}

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	if event.LinkID != "" {
		link, ok := s.Links[event.LinkID]
		if !ok {
			link = &LinkStats{
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
				Role:      event.LocalRole,
				Port:      event.Port,
			}
			s.Links[event.LinkID] = link
		}
		link.Events++
		if event.Timestamp.After(link.LastSeen) {
			link.LastSeen = event.Timestamp
		}
		if event.Byte != nil {
			if event.Direction == log.DirectionIn {
				link.BytesIn++
			} else {
				link.BytesOut++
			}
		}
	}

	switch {
	case event.Byte != nil:
		if event.LocalRole == log.RoleBack && event.Direction == log.DirectionOut {
			switch event.Byte.Name {
			case "CORRECT", "INCORRECT":
				s.Verdicts[event.Byte.Name]++
			}
		}
	case event.StateChange != nil:
		sc := event.StateChange
		switch {
		case sc.Entity == log.StateEntityDoor && sc.NewState == "UNLOCKING":
			s.DoorCycles++
		case sc.Entity == log.StateEntityAlarm && sc.NewState == "SOUNDING":
			s.Alarms++
		}
	case event.Error != nil:
		s.Errors++
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Door Lock Protocol Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Role:")
	for _, role := range []log.Role{log.RoleFront, log.RoleBack} {
		if count := stats.EventsByRole[role]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", role.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerLink, log.LayerSession, log.LayerDispatcher} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryByte, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Bytes by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Verdicts:    %d correct, %d incorrect\n", stats.Verdicts["CORRECT"], stats.Verdicts["INCORRECT"])
	fmt.Fprintf(w, "Door Cycles: %d\n", stats.DoorCycles)
	fmt.Fprintf(w, "Alarms:      %d\n", stats.Alarms)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Links: %d\n", len(stats.Links))
	if len(stats.Links) > 0 {
		type linkInfo struct {
			id    string
			stats *LinkStats
		}
		links := make([]linkInfo, 0, len(stats.Links))
		for id, ls := range stats.Links {
			links = append(links, linkInfo{id, ls})
		}
		sort.Slice(links, func(i, j int) bool {
			return links[i].stats.FirstSeen.Before(links[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, l := range links {
			duration := l.stats.LastSeen.Sub(l.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %s %d events, duration %s\n", shortenLinkID(l.id), l.stats.Role, l.stats.Events, duration)
			fmt.Fprintf(w, "           Bytes: %d in, %d out\n", l.stats.BytesIn, l.stats.BytesOut)
			if l.stats.Port != "" {
				fmt.Fprintf(w, "           Port: %s\n", l.stats.Port)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
