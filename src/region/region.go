package region

import (
	"image"
	"log"
)

const (
	// MinSize is the smallest width and height a committed region may have.
	MinSize = 5
	// separation is the gap kept between a new region and an overlapped one.
	separation = 2
)

// Rect is a rectangle in overlay coordinates. Corners are stored as the user
// dragged them; call Normalize before relying on X1 <= X2 and Y1 <= Y2.
type Rect struct {
	X1, Y1, X2, Y2 int
}

// FromPoints builds a Rect from two drag corners.
func FromPoints(a, b image.Point) Rect {
	return Rect{X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y}
}

// Normalize returns the rectangle with ordered corners.
func (r Rect) Normalize() Rect {
	if r.X1 > r.X2 {
		r.X1, r.X2 = r.X2, r.X1
	}
	if r.Y1 > r.Y2 {
		r.Y1, r.Y2 = r.Y2, r.Y1
	}
	return r
}

// Dx returns the normalized width.
func (r Rect) Dx() int {
	n := r.Normalize()
	return n.X2 - n.X1
}

// Dy returns the normalized height.
func (r Rect) Dy() int {
	n := r.Normalize()
	return n.Y2 - n.Y1
}

// Valid reports whether the normalized rectangle is at least min pixels in
// both dimensions.
func (r Rect) Valid(min int) bool {
	return r.Dx() >= min && r.Dy() >= min
}

// Image converts the normalized rectangle to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	n := r.Normalize()
	return image.Rect(n.X1, n.Y1, n.X2, n.Y2)
}

// Center returns the midpoint of the normalized rectangle.
func (r Rect) Center() image.Point {
	n := r.Normalize()
	return image.Pt((n.X1+n.X2)/2, (n.Y1+n.Y2)/2)
}

// Inset shrinks the normalized rectangle by m pixels on every side.
func (r Rect) Inset(m int) Rect {
	n := r.Normalize()
	return Rect{X1: n.X1 + m, Y1: n.Y1 + m, X2: n.X2 - m, Y2: n.Y2 - m}
}

func (r Rect) overlaps(o Rect) bool {
	return r.X1 < o.X2 && r.X2 > o.X1 && r.Y1 < o.Y2 && r.Y2 > o.Y1
}

// Store is a LIFO stack of committed regions.
type Store struct {
	rects []Rect
}

// NewStore returns an empty store.
func NewStore() *Store { return &Store{} }

// Commit normalizes r, nudges it clear of the first region it touches and
// appends it. It reports false and stores nothing when r is smaller than
// MinSize in either dimension.
func (s *Store) Commit(r Rect) (Rect, bool) {
	n := r.Normalize()
	if !n.Valid(MinSize) {
		return Rect{}, false
	}
	n = s.adjust(n)
	s.rects = append(s.rects, n)
	return n, true
}

// adjust translates r so it sits separation pixels beside the first existing
// region it overlaps. Gaps are negative while the two overlap; only an overlap
// of at most separation pixels on the side with the smallest gap moves r.
// Width and height are kept.
func (s *Store) adjust(r Rect) Rect {
	for _, ex := range s.rects {
		if !r.overlaps(ex) {
			continue
		}
		gapLeft := ex.X1 - r.X2
		gapRight := r.X1 - ex.X2
		gapTop := ex.Y1 - r.Y2
		gapBottom := r.Y1 - ex.Y2
		min := abs(gapLeft)
		for _, g := range []int{gapRight, gapTop, gapBottom} {
			if abs(g) < min {
				min = abs(g)
			}
		}

		w, h := r.X2-r.X1, r.Y2-r.Y1
		switch {
		case abs(gapLeft) == min && gapLeft >= -separation:
			r.X2 = ex.X1 - separation
			r.X1 = r.X2 - w
		case abs(gapRight) == min && gapRight >= -separation:
			r.X1 = ex.X2 + separation
			r.X2 = r.X1 + w
		case abs(gapTop) == min && gapTop >= -separation:
			r.Y2 = ex.Y1 - separation
			r.Y1 = r.Y2 - h
		case abs(gapBottom) == min && gapBottom >= -separation:
			r.Y1 = ex.Y2 + separation
			r.Y2 = r.Y1 + h
		default:
			return r
		}
		log.Printf("region: moved touching selection to %+v", r)
		return r
	}
	return r
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Pop removes and returns the most recent region.
func (s *Store) Pop() (Rect, bool) {
	if len(s.rects) == 0 {
		return Rect{}, false
	}
	last := s.rects[len(s.rects)-1]
	s.rects = s.rects[:len(s.rects)-1]
	return last, true
}

// Last returns the most recent region without removing it.
func (s *Store) Last() (Rect, bool) {
	if len(s.rects) == 0 {
		return Rect{}, false
	}
	return s.rects[len(s.rects)-1], true
}

// Len returns the number of stored regions.
func (s *Store) Len() int { return len(s.rects) }

// All returns a copy of the stored regions in insertion order.
func (s *Store) All() []Rect {
	out := make([]Rect, len(s.rects))
	copy(out, s.rects)
	return out
}

// Clear drops every region.
func (s *Store) Clear() { s.rects = nil }
