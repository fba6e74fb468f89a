package app

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/andyrewlee/ring0/internal/perf"
	"github.com/andyrewlee/ring0/internal/screen"
)

// View renders the pane and status line.
func (a *App) View() tea.View {
	defer perf.Time("view")()

	var view tea.View
	view.AltScreen = true
	view.MouseMode = tea.MouseModeCellMotion

	if a.quitting {
		view.SetContent("")
		return view
	}
	if !a.ready {
		view.SetContent("Starting...")
		return view
	}

	view.SetContent(a.render())
	return view
}

// render lays out the bordered pane over the status line.
func (a *App) render() string {
	frame := a.coord.Frame(a.cursorOn)
	pane := a.styles.Pane
	if a.coord.Closed() {
		pane = a.styles.ClosedPane
	}
	body := a.zone.Mark(paneZoneID, pane.Render(a.renderGrid(frame)))
	return a.zone.Scan(body + "\n" + a.renderStatus(a.width))
}

// renderGrid draws the frame rows, highlighting the cursor cell.
func (a *App) renderGrid(f screen.Frame) string {
	var b strings.Builder
	for row := 0; row < f.Rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		line := f.Cells[row*f.Cols : (row+1)*f.Cols]
		if f.Cursor != nil && f.Cursor.Row == row {
			col := f.Cursor.Col
			b.WriteString(fitCells(string(line[:col]), col))
			b.WriteString(a.styles.Cursor.Render(string(line[col])))
			rest := f.Cols - col - 1
			b.WriteString(fitCells(string(line[col+1:]), rest))
			continue
		}
		b.WriteString(fitCells(string(line), f.Cols))
	}
	return b.String()
}

// fitCells truncates or pads s to exactly width terminal cells.
func fitCells(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "")
	}
	return runewidth.FillRight(s, width)
}

func (a *App) renderStatus(width int) string {
	size := a.coord.Size()
	left := fmt.Sprintf(" %s  %dx%d", shellName(a.cfg.Shell), size.Cols, size.Rows)

	var state string
	switch {
	case a.coord.Closed():
		state = a.styles.Closed.Render("closed")
	case a.coord.IsScrolled():
		state = a.styles.Scrolled.Render(fmt.Sprintf("scrolled %d/%d",
			a.coord.ScrollOffset(), a.coord.ScrollbackLen()))
	}
	if state != "" {
		left += "  " + state
	}
	if a.notice != "" {
		left += "  " + a.notice
	}

	var help []string
	for _, b := range a.keymap.ShortHelp() {
		h := b.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	right := a.styles.Help.Render(strings.Join(help, " • ")) + " "

	gap := width - ansi.StringWidth(left) - ansi.StringWidth(right)
	if gap < 1 {
		return ansi.Truncate(a.styles.Status.Render(left), width, "…")
	}
	return a.styles.Status.Render(left) + strings.Repeat(" ", gap) + right
}

// shellName returns the program name of a shell command line.
func shellName(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "shell"
	}
	name := fields[0]
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return name
}
