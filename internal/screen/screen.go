// Package screen holds the display grid, cursor and scrollback that
// decoded terminal output is applied to.
package screen

import (
	"errors"
	"fmt"
)

// MaxScrollback is the number of historical rows kept before the oldest is evicted.
const MaxScrollback = 1000

// ErrInvalidSize is matched by every zero or negative dimension error.
var ErrInvalidSize = errors.New("invalid screen size")

// InvalidSizeError reports the rejected dimensions.
type InvalidSizeError struct {
	Cols, Rows int
}

func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("invalid screen size: cols=%d, rows=%d", e.Cols, e.Rows)
}

func (e *InvalidSizeError) Is(target error) bool { return target == ErrInvalidSize }

// Size is a grid dimension in cells.
type Size struct {
	Cols, Rows int
}

// Validate rejects sizes with a non-positive dimension.
func (s Size) Validate() error {
	if s.Cols <= 0 || s.Rows <= 0 {
		return &InvalidSizeError{Cols: s.Cols, Rows: s.Rows}
	}
	return nil
}

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Cols, s.Rows) }

// Cursor is a 0-indexed grid position.
type Cursor struct {
	Col, Row int
}

// Cell is a single grid position.
type Cell struct {
	Ch rune
}

// BlankCell is the empty cell value.
var BlankCell = Cell{Ch: ' '}

func blankLine(cols int) []Cell {
	line := make([]Cell, cols)
	for i := range line {
		line[i] = BlankCell
	}
	return line
}

func copyLine(src []Cell) []Cell {
	dst := make([]Cell, len(src))
	copy(dst, src)
	return dst
}

// Screen is the live grid plus scroll history. It is not safe for
// concurrent use; the session coordinator owns it on a single goroutine.
type Screen struct {
	size   Size
	cursor Cursor

	// grid holds Rows lines of exactly Cols cells each.
	grid [][]Cell

	// scrollback is oldest first; every line has Cols cells.
	scrollback [][]Cell

	// offset is how many rows the view sits above the live grid (0 = live).
	offset int
}

// New returns a blank screen of the given size.
func New(size Size) (*Screen, error) {
	if err := size.Validate(); err != nil {
		return nil, err
	}
	s := &Screen{size: size}
	s.grid = makeGrid(size)
	return s, nil
}

func makeGrid(size Size) [][]Cell {
	grid := make([][]Cell, size.Rows)
	for i := range grid {
		grid[i] = blankLine(size.Cols)
	}
	return grid
}

// Size returns the grid dimensions.
func (s *Screen) Size() Size { return s.size }

// Cursor returns the cursor position.
func (s *Screen) Cursor() Cursor { return s.cursor }

// ScrollbackLen returns the number of retained history rows.
func (s *Screen) ScrollbackLen() int { return len(s.scrollback) }

// ScrollOffset returns the current view offset (0 = live).
func (s *Screen) ScrollOffset() int { return s.offset }

// IsScrolled reports whether the view is showing history.
func (s *Screen) IsScrolled() bool { return s.offset > 0 }

// Cells returns a row-major copy of the live grid.
func (s *Screen) Cells() []Cell {
	out := make([]Cell, 0, s.size.Cols*s.size.Rows)
	for _, line := range s.grid {
		out = append(out, line...)
	}
	return out
}

// Line returns live grid row as a string, or "" when row is out of range.
func (s *Screen) Line(row int) string {
	if row < 0 || row >= len(s.grid) {
		return ""
	}
	return lineString(s.grid[row])
}

// ScrollbackLine returns history row i (0 = oldest), or "" when out of range.
func (s *Screen) ScrollbackLine(i int) string {
	if i < 0 || i >= len(s.scrollback) {
		return ""
	}
	return lineString(s.scrollback[i])
}

func lineString(line []Cell) string {
	rs := make([]rune, len(line))
	for i, c := range line {
		rs[i] = c.Ch
	}
	return string(rs)
}

// Clear blanks the live grid, homes the cursor and returns to the live view.
// Scrollback is kept.
func (s *Screen) Clear() {
	for _, line := range s.grid {
		for i := range line {
			line[i] = BlankCell
		}
	}
	s.cursor = Cursor{}
	s.offset = 0
}

// Resize reallocates the grid. The overlapping top-left rectangle is kept,
// everything else is dropped without reflow. Scrollback rows are padded or
// truncated to the new width and the cursor and offset are re-clamped.
func (s *Screen) Resize(size Size) error {
	if err := size.Validate(); err != nil {
		return err
	}

	grid := makeGrid(size)
	keepRows := min(s.size.Rows, size.Rows)
	keepCols := min(s.size.Cols, size.Cols)
	for row := 0; row < keepRows; row++ {
		copy(grid[row][:keepCols], s.grid[row][:keepCols])
	}
	s.grid = grid

	for i, line := range s.scrollback {
		switch {
		case len(line) < size.Cols:
			padded := blankLine(size.Cols)
			copy(padded, line)
			s.scrollback[i] = padded
		case len(line) > size.Cols:
			s.scrollback[i] = line[:size.Cols:size.Cols]
		}
	}

	s.size = size
	if s.offset > len(s.scrollback) {
		s.offset = len(s.scrollback)
	}
	if s.cursor.Col >= size.Cols {
		s.cursor.Col = size.Cols - 1
	}
	if s.cursor.Row >= size.Rows {
		s.cursor.Row = size.Rows - 1
	}
	return nil
}
