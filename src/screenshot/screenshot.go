package screenshot

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// Capture captures the entire virtual screen across all active displays
func Capture() (*image.RGBA, error) {
	bounds, err := VirtualBounds()
	if err != nil {
		return nil, err
	}
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("screenshot: capture virtual screen: %w", err)
	}
	return img, nil
}

// VirtualBounds returns the union of all active display bounds.
func VirtualBounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return union, nil
}

// GetDisplayBounds returns the bounds of the primary display
func GetDisplayBounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	return screenshot.GetDisplayBounds(0), nil
}

// ScreenGrabber reads pixels straight from the live screen.
type ScreenGrabber struct{}

func (ScreenGrabber) Grab(r image.Rectangle) (*image.RGBA, error) {
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", r.Dx(), r.Dy())
	}
	img, err := screenshot.CaptureRect(r)
	if err != nil {
		return nil, fmt.Errorf("failed to capture region: %w", err)
	}
	return img, nil
}

// ImageGrabber crops from an already captured image, such as a frozen
// desktop backdrop or the last frame shown by the overlay.
type ImageGrabber struct {
	Source func() *image.RGBA
}

func (g ImageGrabber) Grab(r image.Rectangle) (*image.RGBA, error) {
	var src *image.RGBA
	if g.Source != nil {
		src = g.Source()
	}
	if src == nil {
		return nil, fmt.Errorf("screenshot: no source image")
	}
	r = r.Intersect(src.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("screenshot: region outside source %v", src.Bounds())
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		so := src.PixOffset(r.Min.X, r.Min.Y+y)
		copy(out.Pix[y*out.Stride:y*out.Stride+4*r.Dx()], src.Pix[so:so+4*r.Dx()])
	}
	return out, nil
}
