package region

import (
	"image"
	"testing"
)

func TestNormalize(t *testing.T) {
	r := Rect{X1: 50, Y1: 40, X2: 10, Y2: 20}.Normalize()
	if r != (Rect{X1: 10, Y1: 20, X2: 50, Y2: 40}) {
		t.Fatalf("Normalize() = %+v", r)
	}
	if r.Dx() != 40 || r.Dy() != 20 {
		t.Fatalf("Dx/Dy = %d/%d", r.Dx(), r.Dy())
	}
}

func TestCommitRejectsSmallRegions(t *testing.T) {
	tests := []struct {
		name string
		r    Rect
		ok   bool
	}{
		{"4x4", Rect{0, 0, 4, 4}, false},
		{"5x4", Rect{0, 0, 5, 4}, false},
		{"4x5 reversed", Rect{4, 5, 0, 0}, false},
		{"5x5", Rect{0, 0, 5, 5}, true},
		{"reversed drag", Rect{100, 100, 10, 10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			got, ok := s.Commit(tt.r)
			if ok != tt.ok {
				t.Fatalf("Commit(%+v) ok = %v, want %v", tt.r, ok, tt.ok)
			}
			if !ok {
				if s.Len() != 0 {
					t.Fatalf("rejected region was stored")
				}
				return
			}
			if got.X1 > got.X2 || got.Y1 > got.Y2 {
				t.Fatalf("stored region not normalized: %+v", got)
			}
		})
	}
}

func TestStoredRegionsAlwaysMeetMinimum(t *testing.T) {
	s := NewStore()
	drags := []Rect{
		{0, 0, 100, 100}, {90, 10, 200, 80}, {50, 50, 53, 200},
		{10, 95, 60, 150}, {300, 300, 301, 301}, {0, 0, 100, 100},
	}
	for _, d := range drags {
		s.Commit(d)
	}
	for _, r := range s.All() {
		if r.X2-r.X1 < MinSize || r.Y2-r.Y1 < MinSize {
			t.Fatalf("stored region below minimum: %+v", r)
		}
	}
}

func TestCommitAdjustsOverlap(t *testing.T) {
	tests := []struct {
		name     string
		existing Rect
		drag     Rect
		want     Rect
	}{
		{"2px overlap moves right", Rect{0, 0, 100, 100}, Rect{98, 0, 200, 100}, Rect{102, 0, 204, 100}},
		{"1px overlap moves up", Rect{0, 0, 100, 100}, Rect{0, -50, 100, 1}, Rect{0, -53, 100, -2}},
		{"10px overlap kept", Rect{0, 0, 100, 100}, Rect{90, 0, 200, 100}, Rect{90, 0, 200, 100}},
		{"nested kept", Rect{0, 0, 1000, 1000}, Rect{100, 100, 200, 200}, Rect{100, 100, 200, 200}},
		{"corner overlap kept", Rect{100, 100, 200, 200}, Rect{150, 150, 300, 300}, Rect{150, 150, 300, 300}},
		{"shared edge kept", Rect{0, 0, 100, 100}, Rect{100, 0, 200, 100}, Rect{100, 0, 200, 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			if _, ok := s.Commit(tt.existing); !ok {
				t.Fatal("first commit failed")
			}
			got, ok := s.Commit(tt.drag)
			if !ok {
				t.Fatal("second commit failed")
			}
			if got != tt.want {
				t.Fatalf("Commit(%+v) = %+v, want %+v", tt.drag, got, tt.want)
			}
			if got.Dx() != tt.drag.Dx() || got.Dy() != tt.drag.Dy() {
				t.Fatalf("size changed: %+v", got)
			}
			if last, _ := s.Last(); last != got {
				t.Fatalf("stored %+v, returned %+v", last, got)
			}
		})
	}
}

func TestPopIsLIFO(t *testing.T) {
	s := NewStore()
	s.Commit(Rect{0, 0, 10, 10})
	s.Commit(Rect{50, 50, 70, 70})
	r, ok := s.Pop()
	if !ok || r.X1 != 50 {
		t.Fatalf("Pop() = %+v, %v", r, ok)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d", s.Len())
	}
	s.Pop()
	if _, ok := s.Pop(); ok {
		t.Fatal("Pop on empty store succeeded")
	}
}

func TestInsetAndImage(t *testing.T) {
	r := Rect{10, 10, 0, 0}.Inset(2)
	if r.Image() != image.Rect(2, 2, 8, 8) {
		t.Fatalf("Inset().Image() = %v", r.Image())
	}
	if c := (Rect{0, 0, 10, 20}).Center(); c != image.Pt(5, 10) {
		t.Fatalf("Center() = %v", c)
	}
}
