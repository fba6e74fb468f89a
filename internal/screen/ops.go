package screen

import "github.com/andyrewlee/ring0/internal/vt"

// Apply performs one display operation. It never fails.
func (s *Screen) Apply(op vt.Op) {
	switch op.Kind {
	case vt.OpPrint:
		s.print(op.Ch)
	case vt.OpNewline:
		s.newline()
	case vt.OpCarriageReturn:
		s.cursor.Col = 0
	case vt.OpBackspace:
		s.backspace()
	}
}

// ApplyAll performs ops in order.
func (s *Screen) ApplyAll(ops []vt.Op) {
	for _, op := range ops {
		s.Apply(op)
	}
}

func (s *Screen) print(ch rune) {
	s.grid[s.cursor.Row][s.cursor.Col] = Cell{Ch: ch}
	s.cursor.Col++
	if s.cursor.Col >= s.size.Cols {
		s.cursor.Col = 0
		s.newline()
	}
}

func (s *Screen) newline() {
	s.cursor.Row++
	if s.cursor.Row >= s.size.Rows {
		s.scrollUp()
		s.cursor.Row = s.size.Rows - 1
	}
}

// backspace erases the cell left of the cursor. It does not wrap to the
// previous row.
func (s *Screen) backspace() {
	if s.cursor.Col == 0 {
		return
	}
	s.cursor.Col--
	s.grid[s.cursor.Row][s.cursor.Col] = BlankCell
}
