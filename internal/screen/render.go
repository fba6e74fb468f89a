package screen

import (
	"errors"
	"fmt"
)

// ErrGridMismatch marks a frame whose cell count disagrees with its size.
// It indicates a caller bug, not a runtime condition.
var ErrGridMismatch = errors.New("grid mismatch")

// GridMismatchError carries the expected and actual cell counts.
type GridMismatchError struct {
	Expected, Actual int
}

func (e *GridMismatchError) Error() string {
	return fmt.Sprintf("grid mismatch: expected %d cells, got %d", e.Expected, e.Actual)
}

func (e *GridMismatchError) Is(target error) bool { return target == ErrGridMismatch }

// Render writes the visible rows into out (reset to length 0 first) and
// returns it. The result always holds Cols*Rows runes. With a non-zero
// scroll offset the window is moved that many rows up through scrollback.
func (s *Screen) Render(out []rune) []rune {
	cols, rows := s.size.Cols, s.size.Rows
	if cap(out) < cols*rows {
		out = make([]rune, 0, cols*rows)
	}
	out = out[:0]

	history := len(s.scrollback)
	start := history - min(s.offset, history)

	for row := 0; row < rows; row++ {
		idx := start + row
		var line []Cell
		if idx < history {
			line = s.scrollback[idx]
		} else {
			line = s.grid[idx-history]
		}
		for _, c := range line[:cols] {
			out = append(out, c.Ch)
		}
	}
	return out
}

// RenderRows returns a fresh flat row-major rune slice of the visible rows.
func (s *Screen) RenderRows() []rune {
	return s.Render(nil)
}

// Frame is a render-ready snapshot of the visible rows.
type Frame struct {
	Cols, Rows int
	Cells      []rune
	// Cursor is nil when it should not be drawn (scrolled back or hidden).
	Cursor *Cursor
}

// Frame snapshots the visible rows. The cursor is only reported on the live
// view and when showCursor is set.
func (s *Screen) Frame(showCursor bool) Frame {
	f := Frame{
		Cols:  s.size.Cols,
		Rows:  s.size.Rows,
		Cells: s.RenderRows(),
	}
	if showCursor && !s.IsScrolled() {
		c := s.cursor
		f.Cursor = &c
	}
	return f
}

// Validate checks len(Cells) == Cols*Rows.
func (f Frame) Validate() error {
	expected := f.Cols * f.Rows
	if len(f.Cells) != expected {
		return &GridMismatchError{Expected: expected, Actual: len(f.Cells)}
	}
	return nil
}

// Row returns row i of the frame as a string.
func (f Frame) Row(i int) string {
	if i < 0 || i >= f.Rows || (i+1)*f.Cols > len(f.Cells) {
		return ""
	}
	return string(f.Cells[i*f.Cols : (i+1)*f.Cols])
}
