package pty

import "fmt"

// Size is a pseudo-terminal dimension in character cells.
type Size struct {
	Cols, Rows uint16
}

// Validate rejects sizes with a zero dimension.
func (s Size) Validate() error {
	if s.Cols == 0 || s.Rows == 0 {
		return &InvalidSizeError{Cols: s.Cols, Rows: s.Rows}
	}
	return nil
}

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Cols, s.Rows) }

// SizeOf converts int dimensions, saturating at the uint16 range.
func SizeOf(cols, rows int) Size {
	return Size{Cols: clampDim(cols), Rows: clampDim(rows)}
}

func clampDim(v int) uint16 {
	switch {
	case v < 0:
		return 0
	case v > 0xffff:
		return 0xffff
	default:
		return uint16(v)
	}
}
