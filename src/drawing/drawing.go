package drawing

import (
	"image"
	"image/color"
	"math"
)

// Tool identifies the kind of annotation an Element renders as.
type Tool int

const (
	ToolNone Tool = iota
	ToolLine
	ToolArrow
	ToolRectangle
	// ToolText is reserved. The router never produces it; text notes live in
	// the text buffer instead.
	ToolText
	ToolHighlighter
)

func (t Tool) String() string {
	switch t {
	case ToolLine:
		return "LINE"
	case ToolArrow:
		return "ARROW"
	case ToolRectangle:
		return "RECTANGLE"
	case ToolText:
		return "TEXT"
	case ToolHighlighter:
		return "HIGHLIGHTER"
	default:
		return "NONE"
	}
}

const (
	// MinStrokeLength is the shortest line or arrow that gets committed.
	MinStrokeLength = 10
	// MinBoxSize is the smallest rectangle or highlighter side that gets committed.
	MinBoxSize = 5
)

var (
	DefaultColor     = color.RGBA{R: 255, A: 255}
	HighlighterColor = color.RGBA{R: 255, G: 255, B: 25, A: 255}
)

// Style carries the stroke attributes applied to new elements.
type Style struct {
	Color     color.RGBA
	Thickness int
	Filled    bool
}

// DefaultStyle is a 3px red outline.
func DefaultStyle() Style {
	return Style{Color: DefaultColor, Thickness: 3}
}

// Element is one committed annotation. Elements are immutable once stored.
type Element struct {
	Tool      Tool
	P1, P2    image.Point
	Color     color.RGBA
	Thickness int
	Filled    bool
	Text      string
}

// New builds an element from a drag. Rectangles and highlighter bands are
// stored with ordered corners; lines and arrows keep their direction.
func New(tool Tool, from, to image.Point, st Style) Element {
	e := Element{Tool: tool, P1: from, P2: to, Color: st.Color, Thickness: st.Thickness, Filled: st.Filled}
	switch tool {
	case ToolRectangle, ToolHighlighter:
		r := image.Rectangle{Min: from, Max: to}.Canon()
		e.P1, e.P2 = r.Min, r.Max
	}
	if tool == ToolHighlighter {
		e.Color = HighlighterColor
	}
	if e.Thickness <= 0 {
		e.Thickness = 1
	}
	return e
}

// Length is the distance between the element's endpoints.
func (e Element) Length() float64 {
	dx := float64(e.P2.X - e.P1.X)
	dy := float64(e.P2.Y - e.P1.Y)
	return math.Hypot(dx, dy)
}

// Bounds returns the canonical rectangle spanned by the endpoints.
func (e Element) Bounds() image.Rectangle {
	return image.Rectangle{Min: e.P1, Max: e.P2}.Canon()
}

// Valid reports whether the element is large enough to keep.
func (e Element) Valid() bool {
	switch e.Tool {
	case ToolLine, ToolArrow:
		return e.Length() >= MinStrokeLength
	case ToolRectangle, ToolHighlighter:
		b := e.Bounds()
		return b.Dx() >= MinBoxSize && b.Dy() >= MinBoxSize
	default:
		return false
	}
}

// ArrowHead returns the two barb end points for an arrow pointing at P2 and
// the point where the shaft should stop so it does not poke through the head.
func (e Element) ArrowHead() (left, right, shaftEnd image.Point) {
	headLen := float64(e.Thickness * 6)
	angle := math.Atan2(float64(e.P2.Y-e.P1.Y), float64(e.P2.X-e.P1.X))
	const spread = 35 * math.Pi / 180

	tip := e.P2
	left = image.Pt(
		tip.X-int(math.Round(headLen*math.Cos(angle-spread))),
		tip.Y-int(math.Round(headLen*math.Sin(angle-spread))),
	)
	right = image.Pt(
		tip.X-int(math.Round(headLen*math.Cos(angle+spread))),
		tip.Y-int(math.Round(headLen*math.Sin(angle+spread))),
	)
	shaftEnd = image.Pt(
		tip.X-int(math.Round(headLen*math.Cos(angle))),
		tip.Y-int(math.Round(headLen*math.Sin(angle))),
	)
	return left, right, shaftEnd
}

// Store is a LIFO stack of committed elements.
type Store struct {
	elems []Element
}

func NewStore() *Store { return &Store{} }

// Add appends e when it is valid and reports whether it was stored.
func (s *Store) Add(e Element) bool {
	if !e.Valid() {
		return false
	}
	s.elems = append(s.elems, e)
	return true
}

// Pop removes the most recently added element.
func (s *Store) Pop() (Element, bool) {
	if len(s.elems) == 0 {
		return Element{}, false
	}
	last := s.elems[len(s.elems)-1]
	s.elems = s.elems[:len(s.elems)-1]
	return last, true
}

func (s *Store) Len() int { return len(s.elems) }

// All returns the elements in insertion order.
func (s *Store) All() []Element {
	out := make([]Element, len(s.elems))
	copy(out, s.elems)
	return out
}

func (s *Store) Clear() { s.elems = nil }
