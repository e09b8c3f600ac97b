package textbuf

import "image"

// ImageSpacing is the gap left below an inline image.
const ImageSpacing = 5

// Measurer reports the rendered size of a string. *gg.Context satisfies it.
type Measurer interface {
	MeasureString(s string) (w, h float64)
}

// LineKind tells a renderer what a laid out line holds.
type LineKind int

const (
	TextLine LineKind = iota
	ImageLine
	// BrokenLine carries an image marker that does not resolve to an image.
	// Nothing is drawn for it but it still takes one line of height.
	BrokenLine
)

// Line is one newline-delimited line of the buffer placed vertically.
// Start and End are rune offsets; End excludes the newline.
type Line struct {
	Kind       LineKind
	Start, End int
	Text       string
	Y          int
	Height     int
	Width      float64
	Image      *image.RGBA
}

// Layout is the vertical arrangement of a buffer, relative to the text
// origin. Content drawing and caret placement both read from it so they
// always agree on where lines break.
type Layout struct {
	Lines []Line
	Width float64
	Height int

	runes   []rune
	measure Measurer
}

// Layout splits the buffer into lines and assigns each one a Y offset.
func (b *Buffer) Layout(m Measurer) *Layout {
	l := &Layout{runes: b.text, measure: m}
	y := 0
	start := 0
	for i := 0; i <= len(b.text); i++ {
		if i < len(b.text) && b.text[i] != '\n' {
			continue
		}
		line := Line{Start: start, End: i, Text: string(b.text[start:i]), Y: y}
		if idx, isMarker, ok := parseMarker(line.Text); isMarker {
			if img, found := b.Image(idx); ok && found {
				line.Kind = ImageLine
				line.Image = img
				line.Height = img.Bounds().Dy() + ImageSpacing
				line.Width = float64(img.Bounds().Dx())
			} else {
				line.Kind = BrokenLine
				line.Height = LineHeight
			}
		} else {
			line.Kind = TextLine
			line.Height = LineHeight
			line.Width = l.textWidth(line.Text)
		}
		if line.Width > l.Width {
			l.Width = line.Width
		}
		l.Lines = append(l.Lines, line)
		y += line.Height
		start = i + 1
	}
	l.Height = y
	return l
}

// LineAt returns the index of the line containing rune offset pos.
func (l *Layout) LineAt(pos int) int {
	for i, ln := range l.Lines {
		if pos >= ln.Start && pos <= ln.End {
			return i
		}
	}
	return len(l.Lines) - 1
}

// Caret returns the top-left corner of the caret for rune offset pos. A
// caret on an image line sits below the image.
func (l *Layout) Caret(pos int) image.Point {
	if len(l.Lines) == 0 {
		return image.Point{}
	}
	ln := l.Lines[l.LineAt(pos)]
	switch ln.Kind {
	case ImageLine, BrokenLine:
		return image.Pt(0, ln.Y+ln.Height)
	}
	col := min(max(pos-ln.Start, 0), ln.End-ln.Start)
	return image.Pt(int(l.textWidth(string(l.runes[ln.Start:ln.Start+col]))), ln.Y)
}

// Span returns the horizontal extent of runes [start, end) clipped to the
// given text line. ok is false when the range misses the line.
func (l *Layout) Span(line int, start, end int) (x0, x1 float64, ok bool) {
	if line < 0 || line >= len(l.Lines) {
		return 0, 0, false
	}
	ln := l.Lines[line]
	if ln.Kind != TextLine {
		return 0, 0, false
	}
	a, b := max(start, ln.Start), min(end, ln.End)
	if a >= b {
		return 0, 0, false
	}
	x0 = l.textWidth(string(l.runes[ln.Start:a]))
	x1 = l.textWidth(string(l.runes[ln.Start:b]))
	return x0, x1, true
}

func (l *Layout) textWidth(s string) float64 {
	if s == "" || l.measure == nil {
		return 0
	}
	w, _ := l.measure.MeasureString(s)
	return w
}
