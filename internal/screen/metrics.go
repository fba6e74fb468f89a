package screen

// Metrics describes how a pixel surface maps onto grid cells.
type Metrics struct {
	CellWidth, CellHeight int
	PadX, PadY            int
}

// DefaultMetrics matches the 10x20 cell with 12px padding used by the
// windowed renderer.
var DefaultMetrics = Metrics{CellWidth: 10, CellHeight: 20, PadX: 12, PadY: 12}

// SizeFromPixels returns how many whole cells fit in a width x height
// surface after padding. Each dimension is at least 1.
func SizeFromPixels(width, height int, m Metrics) Size {
	usableW := max(width-2*m.PadX, 0)
	usableH := max(height-2*m.PadY, 0)
	cols, rows := 1, 1
	if m.CellWidth > 0 {
		cols = max(usableW/m.CellWidth, 1)
	}
	if m.CellHeight > 0 {
		rows = max(usableH/m.CellHeight, 1)
	}
	return Size{Cols: cols, Rows: rows}
}

// PixelSize is the inverse of SizeFromPixels for a grid of size s.
func (m Metrics) PixelSize(s Size) (width, height int) {
	return s.Cols*m.CellWidth + 2*m.PadX, s.Rows*m.CellHeight + 2*m.PadY
}
