package screen

import (
	"errors"
	"strings"
	"testing"

	"github.com/andyrewlee/ring0/internal/vt"
)

func newScreen(t *testing.T, cols, rows int) *Screen {
	t.Helper()
	s, err := New(Size{Cols: cols, Rows: rows})
	if err != nil {
		t.Fatalf("New(%dx%d) failed: %v", cols, rows, err)
	}
	return s
}

func feed(s *Screen, text string) {
	s.ApplyAll(vt.Decode([]byte(text)))
}

func pad(text string, cols int) string {
	return text + strings.Repeat(" ", cols-len(text))
}

func TestNewRejectsZeroSize(t *testing.T) {
	for _, size := range []Size{{0, 24}, {80, 0}, {0, 0}, {-1, 5}} {
		_, err := New(size)
		if !errors.Is(err, ErrInvalidSize) {
			t.Fatalf("New(%v) err = %v, want ErrInvalidSize", size, err)
		}
		var sizeErr *InvalidSizeError
		if !errors.As(err, &sizeErr) || sizeErr.Cols != size.Cols || sizeErr.Rows != size.Rows {
			t.Fatalf("expected InvalidSizeError carrying %v, got %v", size, err)
		}
	}
}

func TestNewIsBlank(t *testing.T) {
	s := newScreen(t, 4, 2)
	if got := string(s.RenderRows()); got != strings.Repeat(" ", 8) {
		t.Fatalf("expected blank grid, got %q", got)
	}
	if s.Cursor() != (Cursor{}) {
		t.Fatalf("expected cursor at origin, got %+v", s.Cursor())
	}
}

func TestCRLFFixture(t *testing.T) {
	s := newScreen(t, 80, 24)
	feed(s, "AB\r\nC")

	if got := s.Line(0); got != pad("AB", 80) {
		t.Fatalf("row 0 = %q", got)
	}
	if got := s.Line(1); got != pad("C", 80) {
		t.Fatalf("row 1 = %q", got)
	}
	if got := s.Cursor(); got != (Cursor{Col: 1, Row: 1}) {
		t.Fatalf("cursor = %+v, want (1,1)", got)
	}
}

func TestNewlineKeepsColumn(t *testing.T) {
	s := newScreen(t, 10, 3)
	feed(s, "ab\ncd")
	if got := s.Line(1); got != pad("  cd", 10) {
		t.Fatalf("row 1 = %q", got)
	}
}

func TestPrintAutoWraps(t *testing.T) {
	s := newScreen(t, 5, 3)
	feed(s, "abcde")
	if got := s.Cursor(); got != (Cursor{Col: 0, Row: 1}) {
		t.Fatalf("cursor after full row = %+v, want (0,1)", got)
	}
	feed(s, "f")
	if s.Line(0) != "abcde" || s.Line(1) != pad("f", 5) {
		t.Fatalf("unexpected rows %q / %q", s.Line(0), s.Line(1))
	}
}

func TestWrapOnLastRowScrolls(t *testing.T) {
	s := newScreen(t, 3, 2)
	feed(s, "abcxyz")
	if s.ScrollbackLen() != 1 || s.ScrollbackLine(0) != "abc" {
		t.Fatalf("expected 'abc' in scrollback, got len=%d %q", s.ScrollbackLen(), s.ScrollbackLine(0))
	}
	if s.Line(0) != "xyz" || s.Line(1) != "   " {
		t.Fatalf("unexpected grid %q / %q", s.Line(0), s.Line(1))
	}
	if s.Cursor() != (Cursor{Col: 0, Row: 1}) {
		t.Fatalf("cursor = %+v", s.Cursor())
	}
}

func TestCarriageReturn(t *testing.T) {
	s := newScreen(t, 6, 2)
	feed(s, "hello\rJ")
	if s.Line(0) != "Jello " {
		t.Fatalf("row 0 = %q", s.Line(0))
	}
	if s.Cursor() != (Cursor{Col: 1, Row: 0}) {
		t.Fatalf("cursor = %+v", s.Cursor())
	}
}

func TestBackspace(t *testing.T) {
	s := newScreen(t, 6, 2)
	feed(s, "abc\b")
	if s.Line(0) != "ab    " {
		t.Fatalf("row 0 = %q", s.Line(0))
	}
	if s.Cursor() != (Cursor{Col: 2, Row: 0}) {
		t.Fatalf("cursor = %+v", s.Cursor())
	}
}

func TestBackspaceAtColumnZeroIsNoop(t *testing.T) {
	s := newScreen(t, 4, 3)
	feed(s, "ab\r\n\b\b")
	if s.Cursor() != (Cursor{Col: 0, Row: 1}) {
		t.Fatalf("cursor moved: %+v", s.Cursor())
	}
	if s.Line(0) != "ab  " {
		t.Fatalf("previous row modified: %q", s.Line(0))
	}
}

func TestNewlinesIntoScrollback(t *testing.T) {
	s := newScreen(t, 80, 24)
	feed(s, strings.Repeat("\n", 24))
	if s.ScrollbackLen() != 1 {
		t.Fatalf("24 newlines: scrollback = %d, want 1", s.ScrollbackLen())
	}

	s = newScreen(t, 80, 24)
	feed(s, strings.Repeat("\n", 23))
	if s.ScrollbackLen() != 0 {
		t.Fatalf("23 newlines: scrollback = %d, want 0", s.ScrollbackLen())
	}

	s = newScreen(t, 80, 24)
	feed(s, strings.Repeat("\n", 25))
	if s.ScrollbackLen() != 2 {
		t.Fatalf("25 newlines: scrollback = %d, want 2", s.ScrollbackLen())
	}
	if got := string(s.RenderRows()); got != strings.Repeat(" ", 80*24) {
		t.Fatalf("expected blank live grid")
	}
}

func TestScrollbackCap(t *testing.T) {
	s := newScreen(t, 4, 2)
	// Row 1 is reached after one newline; every newline after that scrolls.
	feed(s, "\n")
	for i := 0; i < MaxScrollback+1; i++ {
		feed(s, "\r"+string(rune('a'+i%26))+"\n")
	}
	if s.ScrollbackLen() != MaxScrollback {
		t.Fatalf("scrollback = %d, want %d", s.ScrollbackLen(), MaxScrollback)
	}
	// The first scroll pushed the blank top row, so that is what got evicted.
	if got := s.ScrollbackLine(0); got != "a   " {
		t.Fatalf("oldest retained row = %q, want %q", got, "a   ")
	}
}

func TestScrollViewClamps(t *testing.T) {
	s := newScreen(t, 4, 2)
	if s.ScrollView(3) {
		t.Fatalf("no history: ScrollView should report no change")
	}

	feed(s, "1\r\n2\r\n3\r\n4")
	if s.ScrollbackLen() != 2 {
		t.Fatalf("scrollback = %d, want 2", s.ScrollbackLen())
	}

	if !s.ScrollView(10) {
		t.Fatalf("expected view to move")
	}
	if s.ScrollOffset() != 2 {
		t.Fatalf("offset = %d, want 2", s.ScrollOffset())
	}
	if s.ScrollView(1) {
		t.Fatalf("clamped at top: expected no change")
	}
	if !s.IsScrolled() {
		t.Fatalf("expected IsScrolled")
	}

	if !s.ScrollView(-100) || s.ScrollOffset() != 0 {
		t.Fatalf("expected offset 0, got %d", s.ScrollOffset())
	}
	if s.ScrollView(-1) {
		t.Fatalf("clamped at bottom: expected no change")
	}
}

func TestRenderScrolledWindow(t *testing.T) {
	s := newScreen(t, 2, 2)
	feed(s, "a\r\nb\r\nc\r\nd")
	// history: a, b; grid: c, d
	cases := map[int]string{
		0: "c d ",
		1: "b c ",
		2: "a b ",
	}
	for offset, want := range cases {
		s.ScrollToBottom()
		s.ScrollView(offset)
		if got := string(s.RenderRows()); got != want {
			t.Fatalf("offset %d: render = %q, want %q", offset, got, want)
		}
	}
}

func TestScrolledViewStaysAnchored(t *testing.T) {
	s := newScreen(t, 2, 2)
	feed(s, "a\r\nb\r\nc\r\nd")
	s.ScrollView(2)
	before := string(s.RenderRows())

	feed(s, "\r\ne")
	if s.ScrollOffset() != 3 {
		t.Fatalf("offset = %d, want 3", s.ScrollOffset())
	}
	if after := string(s.RenderRows()); after != before {
		t.Fatalf("view drifted: %q -> %q", before, after)
	}
}

func TestAnchoredOffsetClampedAtCap(t *testing.T) {
	s := newScreen(t, 1, 1)
	for i := 0; i < MaxScrollback; i++ {
		feed(s, "\n")
	}
	s.ScrollToTop()
	feed(s, "\n\n")
	if s.ScrollbackLen() != MaxScrollback {
		t.Fatalf("scrollback = %d", s.ScrollbackLen())
	}
	if s.ScrollOffset() != MaxScrollback {
		t.Fatalf("offset = %d, want %d", s.ScrollOffset(), MaxScrollback)
	}
}

func TestResizePreservesOverlap(t *testing.T) {
	sizes := []Size{{1, 1}, {2, 5}, {6, 2}, {10, 10}, {4, 3}, {3, 4}}
	for _, size := range sizes {
		s := newScreen(t, 4, 3)
		feed(s, "abcdefghijk")

		if err := s.Resize(size); err != nil {
			t.Fatalf("Resize(%v): %v", size, err)
		}
		rows := s.RenderRows()
		if len(rows) != size.Cols*size.Rows {
			t.Fatalf("Resize(%v): render len %d", size, len(rows))
		}

		src := []string{"abcd", "efgh", "ijk "}
		for r := 0; r < min(3, size.Rows); r++ {
			want := src[r][:min(4, size.Cols)]
			if got := s.Line(r)[:min(4, size.Cols)]; got != want {
				t.Fatalf("Resize(%v): row %d = %q, want %q", size, r, got, want)
			}
		}
		c := s.Cursor()
		if c.Col >= size.Cols || c.Row >= size.Rows {
			t.Fatalf("Resize(%v): cursor out of bounds %+v", size, c)
		}
	}
}

func TestResizeRejectsInvalid(t *testing.T) {
	s := newScreen(t, 4, 3)
	feed(s, "abc")
	if err := s.Resize(Size{Cols: 0, Rows: 3}); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}
	if s.Size() != (Size{Cols: 4, Rows: 3}) || s.Line(0) != "abc " {
		t.Fatalf("failed resize changed state")
	}
}

func TestResizeAdjustsScrollback(t *testing.T) {
	s := newScreen(t, 4, 1)
	feed(s, "abcd")
	feed(s, "ef\r\n")
	if s.ScrollbackLen() != 2 {
		t.Fatalf("scrollback = %d", s.ScrollbackLen())
	}
	s.ScrollView(2)

	if err := s.Resize(Size{Cols: 2, Rows: 1}); err != nil {
		t.Fatal(err)
	}
	if s.ScrollbackLine(0) != "ab" || s.ScrollbackLine(1) != "ef" {
		t.Fatalf("truncate: %q %q", s.ScrollbackLine(0), s.ScrollbackLine(1))
	}
	if err := s.Resize(Size{Cols: 5, Rows: 1}); err != nil {
		t.Fatal(err)
	}
	if s.ScrollbackLine(0) != "ab   " {
		t.Fatalf("pad: %q", s.ScrollbackLine(0))
	}
	if s.ScrollOffset() != 2 {
		t.Fatalf("offset = %d", s.ScrollOffset())
	}
	if got := len(s.RenderRows()); got != 5 {
		t.Fatalf("render len %d", got)
	}
}

func TestResizeShrinkClampsCursor(t *testing.T) {
	s := newScreen(t, 10, 10)
	feed(s, strings.Repeat("\n", 8)+"123456789")
	if err := s.Resize(Size{Cols: 1, Rows: 1}); err != nil {
		t.Fatal(err)
	}
	if s.Cursor() != (Cursor{}) {
		t.Fatalf("cursor = %+v, want origin", s.Cursor())
	}
	feed(s, "xyz")
	if len(s.RenderRows()) != 1 {
		t.Fatalf("render len mismatch")
	}
}

func TestClearKeepsScrollback(t *testing.T) {
	s := newScreen(t, 3, 1)
	feed(s, "ab\r\ncd")
	s.ScrollView(1)
	s.Clear()
	if s.Line(0) != "   " || s.Cursor() != (Cursor{}) || s.IsScrolled() {
		t.Fatalf("clear did not reset grid/cursor/offset")
	}
	if s.ScrollbackLen() != 1 {
		t.Fatalf("scrollback dropped by Clear")
	}
}

func TestFrame(t *testing.T) {
	s := newScreen(t, 3, 2)
	feed(s, "hi")

	f := s.Frame(true)
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if f.Row(0) != "hi " || f.Cursor == nil || *f.Cursor != (Cursor{Col: 2}) {
		t.Fatalf("unexpected frame %+v", f)
	}
	if s.Frame(false).Cursor != nil {
		t.Fatalf("hidden cursor reported")
	}

	feed(s, "\r\n\r\n")
	s.ScrollView(1)
	if s.Frame(true).Cursor != nil {
		t.Fatalf("cursor reported while scrolled back")
	}
}

func TestFrameValidateMismatch(t *testing.T) {
	f := Frame{Cols: 3, Rows: 2, Cells: make([]rune, 5)}
	err := f.Validate()
	if !errors.Is(err, ErrGridMismatch) {
		t.Fatalf("expected ErrGridMismatch, got %v", err)
	}
	var gm *GridMismatchError
	if !errors.As(err, &gm) || gm.Expected != 6 || gm.Actual != 5 {
		t.Fatalf("unexpected error detail %v", err)
	}
}

func TestRenderReusesBuffer(t *testing.T) {
	s := newScreen(t, 4, 2)
	buf := make([]rune, 0, 64)
	out := s.Render(buf)
	if len(out) != 8 || &out[:1][0] != &buf[:1][0] {
		t.Fatalf("expected render into provided buffer")
	}
}

func TestSizeFromPixels(t *testing.T) {
	tests := []struct {
		w, h int
		want Size
	}{
		{10*120 + 24, 20*30 + 24, Size{120, 30}},
		{0, 0, Size{1, 1}},
		{30, 30, Size{1, 1}},
		{10*80 + 24 + 9, 20*24 + 24 + 19, Size{80, 24}},
	}
	for _, tt := range tests {
		if got := SizeFromPixels(tt.w, tt.h, DefaultMetrics); got != tt.want {
			t.Errorf("SizeFromPixels(%d,%d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
	w, h := DefaultMetrics.PixelSize(Size{Cols: 120, Rows: 30})
	if w != 1224 || h != 624 {
		t.Fatalf("PixelSize = %dx%d", w, h)
	}
}
