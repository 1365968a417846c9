package hal

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Display geometry of the reference hardware.
const (
	DisplayRows = 2
	DisplayCols = 16
)

// Screen is an in-memory two-row character display. Text past the last
// column is clipped.
type Screen struct {
	mu     sync.Mutex
	cells  [DisplayRows][DisplayCols]byte
	row    int
	col    int
	frames []string
}

// NewScreen creates a blank screen.
func NewScreen() *Screen {
	s := &Screen{}
	s.blank()
	return s
}

func (s *Screen) blank() {
	for r := range s.cells {
		for c := range s.cells[r] {
			s.cells[r][c] = ' '
		}
	}
	s.row, s.col = 0, 0
}

// Clear blanks the screen and homes the cursor.
func (s *Screen) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blank()
	s.frames = append(s.frames, "")
}

// WriteText writes text starting at row, col.
func (s *Screen) WriteText(text string, row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row < 0 || row >= DisplayRows {
		return
	}
	s.row, s.col = row, col
	for i := 0; i < len(text); i++ {
		s.put(text[i])
	}
	s.snapshot()
}

// WriteChar writes one character at the cursor.
func (s *Screen) WriteChar(ch byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(ch)
	s.snapshot()
}

func (s *Screen) put(ch byte) {
	if s.col >= 0 && s.col < DisplayCols {
		s.cells[s.row][s.col] = ch
	}
	s.col++
}

func (s *Screen) snapshot() {
	if len(s.frames) == 0 {
		s.frames = append(s.frames, "")
	}
	s.frames[len(s.frames)-1] = s.text()
}

func (s *Screen) text() string {
	lines := make([]string, DisplayRows)
	for r := range s.cells {
		lines[r] = strings.TrimRight(string(s.cells[r][:]), " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// Row returns the trimmed contents of one row.
func (s *Screen) Row(row int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row < 0 || row >= DisplayRows {
		return ""
	}
	return strings.TrimSpace(string(s.cells[row][:]))
}

// Text returns both rows joined by a newline, right-trimmed.
func (s *Screen) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text()
}

// Frames returns the final contents of every screen shown between clears.
func (s *Screen) Frames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.frames))
	copy(out, s.frames)
	return out
}

// Contains reports whether any frame shown so far contains sub.
func (s *Screen) Contains(sub string) bool {
	for _, f := range s.Frames() {
		if strings.Contains(f, sub) {
			return true
		}
	}
	return false
}

// TerminalDisplay renders the screen to a writer after every update, one
// boxed frame per change.
type TerminalDisplay struct {
	*Screen
	out io.Writer
}

// NewTerminalDisplay creates a display that prints to out.
func NewTerminalDisplay(out io.Writer) *TerminalDisplay {
	return &TerminalDisplay{Screen: NewScreen(), out: out}
}

// WriteText writes text and renders the screen.
func (d *TerminalDisplay) WriteText(text string, row, col int) {
	d.Screen.WriteText(text, row, col)
	d.render()
}

// WriteChar writes one character and renders the screen.
func (d *TerminalDisplay) WriteChar(ch byte) {
	d.Screen.WriteChar(ch)
	d.render()
}

func (d *TerminalDisplay) render() {
	border := "+" + strings.Repeat("-", DisplayCols) + "+"
	fmt.Fprintln(d.out, border)
	for r := 0; r < DisplayRows; r++ {
		d.Screen.mu.Lock()
		line := string(d.Screen.cells[r][:])
		d.Screen.mu.Unlock()
		fmt.Fprintf(d.out, "|%s|\n", line)
	}
	fmt.Fprintln(d.out, border)
}

// Compile-time interface satisfaction checks.
var (
	_ Display = (*Screen)(nil)
	_ Display = (*TerminalDisplay)(nil)
)
