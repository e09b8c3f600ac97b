package textbuf

import (
	"image"
	"testing"
	"unicode/utf8"
)

// monoMeasurer gives every rune the same advance.
type monoMeasurer struct{ advance float64 }

func (m monoMeasurer) MeasureString(s string) (float64, float64) {
	return float64(utf8.RuneCountInString(s)) * m.advance, 16
}

func TestLayoutLines(t *testing.T) {
	b := typed("ab\n\ncdef")
	l := b.Layout(monoMeasurer{advance: 8})
	if len(l.Lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(l.Lines))
	}
	for i, wantY := range []int{0, 20, 40} {
		if l.Lines[i].Y != wantY {
			t.Errorf("line %d Y = %d, want %d", i, l.Lines[i].Y, wantY)
		}
	}
	if l.Width != 32 {
		t.Fatalf("Width = %v, want 32", l.Width)
	}
}

func TestLayoutImageLine(t *testing.T) {
	b := New()
	if _, err := b.InsertImagePlaceholder(image.NewRGBA(image.Rect(0, 0, 60, 150))); err != nil {
		t.Fatal(err)
	}
	b.Insert("after")
	l := b.Layout(monoMeasurer{advance: 8})
	first := l.Lines[0]
	if first.Kind != ImageLine || first.Height != 155 {
		t.Fatalf("first line kind=%v height=%d", first.Kind, first.Height)
	}
	// 150px spans 8 line heights, so two newlines follow the marker.
	last := l.Lines[len(l.Lines)-1]
	if len(l.Lines) != 3 || last.Text != "after" || last.Y != 155+LineHeight {
		t.Fatalf("last line %q at %d", last.Text, last.Y)
	}
}

func TestLayoutBrokenMarker(t *testing.T) {
	b := typed("[IMAGE_7]\nx")
	l := b.Layout(monoMeasurer{advance: 8})
	if l.Lines[0].Kind != BrokenLine || l.Lines[0].Height != LineHeight {
		t.Fatalf("out of range marker laid out as %+v", l.Lines[0])
	}
	if l.Lines[1].Y != LineHeight {
		t.Fatalf("next line Y = %d", l.Lines[1].Y)
	}
}

func TestCaretFollowsContentLayout(t *testing.T) {
	b := typed("one\ntwo three\n\nfour")
	l := b.Layout(monoMeasurer{advance: 10})
	for pos := 0; pos <= b.Len(); pos++ {
		c := l.Caret(pos)
		ln := l.Lines[l.LineAt(pos)]
		if c.Y != ln.Y {
			t.Fatalf("pos %d: caret y %d, line y %d", pos, c.Y, ln.Y)
		}
		if want := (pos - ln.Start) * 10; c.X != want {
			t.Fatalf("pos %d: caret x %d, want %d", pos, c.X, want)
		}
	}
}

func TestCaretAfterTrailingNewline(t *testing.T) {
	b := typed("abc\n")
	l := b.Layout(monoMeasurer{advance: 8})
	if c := l.Caret(b.Len()); c != image.Pt(0, LineHeight) {
		t.Fatalf("caret = %v, want (0,%d)", c, LineHeight)
	}
}

func TestSpanClipsSelection(t *testing.T) {
	b := typed("hello\nworld")
	l := b.Layout(monoMeasurer{advance: 10})
	x0, x1, ok := l.Span(0, 3, 8)
	if !ok || x0 != 30 || x1 != 50 {
		t.Fatalf("line 0 span = %v,%v,%v", x0, x1, ok)
	}
	x0, x1, ok = l.Span(1, 3, 8)
	if !ok || x0 != 0 || x1 != 20 {
		t.Fatalf("line 1 span = %v,%v,%v", x0, x1, ok)
	}
	if _, _, ok := l.Span(1, 0, 5); ok {
		t.Fatal("span outside line reported ok")
	}
}

func TestParseMarker(t *testing.T) {
	tests := []struct {
		line         string
		idx          int
		isMarker, ok bool
	}{
		{"[IMAGE_3]", 3, true, true},
		{"plain", 0, false, false},
		{"[IMAGE_x]", 0, true, false},
		{"[IMAGE_12", 0, true, false},
	}
	for _, tt := range tests {
		idx, isMarker, ok := parseMarker(tt.line)
		if idx != tt.idx || isMarker != tt.isMarker || ok != tt.ok {
			t.Errorf("parseMarker(%q) = %d,%v,%v", tt.line, idx, isMarker, ok)
		}
	}
}
