package app

import "time"

const (
	// frameInterval paces pumping session output into the screen.
	frameInterval = 16 * time.Millisecond

	// blinkInterval toggles cursor visibility.
	blinkInterval = 600 * time.Millisecond

	// paneZoneID marks the terminal pane for mouse hit-testing.
	paneZoneID = "ring0-terminal"

	// statusHeight is the number of rows below the pane.
	statusHeight = 1

	// borderSize is the cells a rounded border takes on each axis.
	borderSize = 2
)
