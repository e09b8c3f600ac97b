package zoom

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"

	xdraw "golang.org/x/image/draw"

	"screen-highlighter/src/region"
)

const (
	DefaultMinScale = 0.5
	DefaultMaxScale = 5.0
	stepUp          = 1.1
	stepDown        = 0.9
	// focalLift raises the focal point above the screen centre by this share
	// of half the screen height, leaving room for the note below.
	focalLift = 0.2
)

var (
	ErrNoGrabber   = errors.New("zoom: no grabber configured")
	ErrEmptyRegion = errors.New("zoom: region is empty")
)

// Grabber copies the pixels of a screen rectangle.
type Grabber interface {
	Grab(r image.Rectangle) (*image.RGBA, error)
}

// GrabberFunc adapts a function to Grabber.
type GrabberFunc func(r image.Rectangle) (*image.RGBA, error)

func (f GrabberFunc) Grab(r image.Rectangle) (*image.RGBA, error) { return f(r) }

// Capture is a magnified view of one region. The region's pixels are grabbed
// once on Capture; scale and focal changes only affect how that snapshot is
// drawn.
type Capture struct {
	grabber  Grabber
	minScale float64
	maxScale float64

	active   bool
	snapshot *image.RGBA
	rect     region.Rect
	scale    float64
	focal    image.Point
	grabs    int
}

// New returns an inactive capture clamping scale to [minScale, maxScale].
// Out of order or non-positive bounds fall back to the defaults.
func New(g Grabber, minScale, maxScale float64) *Capture {
	if minScale <= 0 || maxScale <= 0 || minScale > maxScale {
		minScale, maxScale = DefaultMinScale, DefaultMaxScale
	}
	return &Capture{grabber: g, minScale: minScale, maxScale: maxScale, scale: 1}
}

// Capture grabs r and activates the zoom centred on r. On failure the zoom
// stays inactive and the error is returned.
func (c *Capture) Capture(r region.Rect) error {
	if c.grabber == nil {
		return ErrNoGrabber
	}
	n := r.Normalize()
	if n.Dx() <= 0 || n.Dy() <= 0 {
		return ErrEmptyRegion
	}
	img, err := c.grabber.Grab(n.Image())
	c.grabs++
	if err != nil {
		c.Teardown()
		return fmt.Errorf("zoom: capture %v: %w", n.Image(), err)
	}
	c.snapshot = img
	c.rect = n
	c.scale = 1
	c.focal = n.Center()
	c.active = true
	log.Printf("zoom: captured %dx%d region at %v", n.Dx(), n.Dy(), n.Image().Min)
	return nil
}

// SetScale clamps f to the configured range and returns the applied scale.
// It never grabs new pixels.
func (c *Capture) SetScale(f float64) float64 {
	if math.IsNaN(f) {
		return c.scale
	}
	c.scale = math.Min(math.Max(f, c.minScale), c.maxScale)
	return c.scale
}

// Step scales by one wheel notch, up or down.
func (c *Capture) Step(up bool) float64 {
	if up {
		return c.SetScale(c.scale * stepUp)
	}
	return c.SetScale(c.scale * stepDown)
}

// SetFocal moves the centre of the zoomed view.
func (c *Capture) SetFocal(p image.Point) { c.focal = p }

// AnchorFocal places the focal point at the horizontal centre of screen and
// slightly above its vertical centre.
func (c *Capture) AnchorFocal(screen image.Rectangle) {
	cx := screen.Min.X + screen.Dx()/2
	half := screen.Dy() / 2
	cy := screen.Min.Y + half - int(float64(half)*focalLift)
	c.focal = image.Pt(cx, cy)
}

// Teardown releases the snapshot and resets the scale. It is safe to call
// when inactive.
func (c *Capture) Teardown() {
	c.active = false
	c.snapshot = nil
	c.rect = region.Rect{}
	c.scale = 1
}

func (c *Capture) Active() bool { return c.active }
func (c *Capture) Scale() float64 { return c.scale }
func (c *Capture) Focal() image.Point { return c.focal }
func (c *Capture) Region() region.Rect { return c.rect }
func (c *Capture) Snapshot() *image.RGBA { return c.snapshot }
func (c *Capture) Range() (float64, float64) { return c.minScale, c.maxScale }

// Grabs counts calls made to the grabber since creation.
func (c *Capture) Grabs() int { return c.grabs }

// Placement is the on-screen rectangle the zoomed snapshot occupies.
func (c *Capture) Placement() image.Rectangle {
	if !c.active {
		return image.Rectangle{}
	}
	w := int(math.Round(float64(c.rect.Dx()) * c.scale))
	h := int(math.Round(float64(c.rect.Dy()) * c.scale))
	x := c.focal.X - w/2
	y := c.focal.Y - h/2
	return image.Rect(x, y, x+w, y+h)
}

// Draw paints a white backing and the stretched snapshot onto dst.
func (c *Capture) Draw(dst draw.Image) {
	if !c.active || c.snapshot == nil {
		return
	}
	p := c.Placement()
	if p.Empty() {
		return
	}
	draw.Draw(dst, p, image.NewUniform(color.White), image.Point{}, draw.Src)
	xdraw.ApproxBiLinear.Scale(dst, p, c.snapshot, c.snapshot.Bounds(), draw.Over, nil)
}
