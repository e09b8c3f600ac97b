package zoom

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"screen-highlighter/src/region"
)

type countingGrabber struct {
	calls int
	err   error
}

func (g *countingGrabber) Grab(r image.Rectangle) (*image.RGBA, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	img := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for i := range img.Pix {
		img.Pix[i] = 0x40
	}
	return img, nil
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestWheelTicksCaptureOnce(t *testing.T) {
	g := &countingGrabber{}
	c := New(g, DefaultMinScale, DefaultMaxScale)
	if err := c.Capture(region.Rect{X1: 0, Y1: 0, X2: 100, Y2: 100}); err != nil {
		t.Fatal(err)
	}
	if s := c.Step(true); !near(s, 1.1) {
		t.Fatalf("after one tick scale = %v, want 1.1", s)
	}
	for i := 0; i < 20; i++ {
		c.Step(true)
	}
	if !near(c.Scale(), 5.0) {
		t.Fatalf("after 21 ticks scale = %v, want 5.0", c.Scale())
	}
	if g.calls != 1 || c.Grabs() != 1 {
		t.Fatalf("grabber called %d times, want 1", g.calls)
	}
}

func TestSetScaleClamps(t *testing.T) {
	c := New(&countingGrabber{}, 0.5, 5)
	tests := []struct{ in, want float64 }{
		{0.1, 0.5}, {0.5, 0.5}, {2.5, 2.5}, {9, 5}, {math.NaN(), 5},
	}
	for _, tt := range tests {
		if got := c.SetScale(tt.in); !near(got, tt.want) {
			t.Errorf("SetScale(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewFallsBackOnBadRange(t *testing.T) {
	c := New(nil, 3, 1)
	if lo, hi := c.Range(); lo != DefaultMinScale || hi != DefaultMaxScale {
		t.Fatalf("Range() = %v,%v", lo, hi)
	}
}

func TestCaptureFailureLeavesInactive(t *testing.T) {
	c := New(&countingGrabber{err: errors.New("no display")}, 0.5, 5)
	if err := c.Capture(region.Rect{X2: 50, Y2: 50}); err == nil {
		t.Fatal("expected error")
	}
	if c.Active() || c.Snapshot() != nil {
		t.Fatal("zoom active after failed capture")
	}
	if err := New(nil, 0.5, 5).Capture(region.Rect{X2: 5, Y2: 5}); !errors.Is(err, ErrNoGrabber) {
		t.Fatalf("err = %v, want ErrNoGrabber", err)
	}
}

func TestTeardownIsIdempotent(t *testing.T) {
	c := New(&countingGrabber{}, 0.5, 5)
	c.Teardown()
	_ = c.Capture(region.Rect{X2: 20, Y2: 20})
	c.SetScale(3)
	c.Teardown()
	c.Teardown()
	if c.Active() || c.Scale() != 1 || c.Snapshot() != nil {
		t.Fatalf("after teardown active=%v scale=%v", c.Active(), c.Scale())
	}
}

func TestPlacementAndFocal(t *testing.T) {
	c := New(&countingGrabber{}, 0.5, 5)
	_ = c.Capture(region.Rect{X1: 100, Y1: 100, X2: 200, Y2: 150})
	c.AnchorFocal(image.Rect(0, 0, 1000, 800))
	if c.Focal() != image.Pt(500, 320) {
		t.Fatalf("Focal() = %v, want (500,320)", c.Focal())
	}
	c.SetScale(2)
	if p := c.Placement(); p != image.Rect(400, 270, 600, 370) {
		t.Fatalf("Placement() = %v", p)
	}
}

func TestDrawPaintsSnapshot(t *testing.T) {
	c := New(&countingGrabber{}, 0.5, 5)
	_ = c.Capture(region.Rect{X1: 0, Y1: 0, X2: 10, Y2: 10})
	c.SetFocal(image.Pt(50, 50))
	c.SetScale(2)
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	c.Draw(dst)
	if got := dst.RGBAAt(50, 50); got == (color.RGBA{}) {
		t.Fatal("zoom area left blank")
	}
	if got := dst.RGBAAt(5, 5); got != (color.RGBA{}) {
		t.Fatalf("pixel outside placement touched: %v", got)
	}
}
