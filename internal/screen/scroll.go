package screen

// scrollUp moves the top grid row into scrollback and opens a blank row
// at the bottom. A scrolled-back view follows its content.
func (s *Screen) scrollUp() {
	top := s.grid[0]
	s.scrollback = append(s.scrollback, top)
	if s.offset > 0 {
		s.offset++
	}
	if over := len(s.scrollback) - MaxScrollback; over > 0 {
		// Drop references so evicted rows can be collected.
		for i := 0; i < over; i++ {
			s.scrollback[i] = nil
		}
		s.scrollback = s.scrollback[over:]
	}
	if s.offset > len(s.scrollback) {
		s.offset = len(s.scrollback)
	}

	copy(s.grid, s.grid[1:])
	s.grid[len(s.grid)-1] = blankLine(s.size.Cols)
}

// ScrollView moves the view delta rows into history (negative = toward
// live) clamped to [0, ScrollbackLen]. It reports whether the view moved.
func (s *Screen) ScrollView(delta int) bool {
	next := s.offset + delta
	if next < 0 {
		next = 0
	}
	if next > len(s.scrollback) {
		next = len(s.scrollback)
	}
	if next == s.offset {
		return false
	}
	s.offset = next
	return true
}

// ScrollToBottom returns to the live view.
func (s *Screen) ScrollToBottom() {
	s.offset = 0
}

// ScrollToTop shows the oldest retained history.
func (s *Screen) ScrollToTop() {
	s.offset = len(s.scrollback)
}
