package app

import "github.com/andyrewlee/ring0/internal/screen"

// gridSize returns the terminal grid that fits a width x height window once
// the pane border and status line are taken out. Each dimension is at least 1.
func gridSize(width, height int) screen.Size {
	return screen.Size{
		Cols: max(width-borderSize, 1),
		Rows: max(height-borderSize-statusHeight, 1),
	}
}
