package screenshot

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/bmp"

	"screen-highlighter/src/region"
)

const (
	// BorderMargin is trimmed from every side so the drag outline drawn by
	// the overlay does not end up in the capture.
	BorderMargin = 2
	// fileTimeLayout renders as ddMMyyyy-HH-mm-ss.
	fileTimeLayout = "02012006-15-04-05"
	fileExt        = ".bmp"
)

var ErrRegionTooSmall = errors.New("screenshot: region smaller than 5x5")

// Grabber copies the pixels of a screen rectangle.
type Grabber interface {
	Grab(r image.Rectangle) (*image.RGBA, error)
}

// ImagePublisher receives captured images, normally the clipboard.
type ImagePublisher interface {
	WriteImage(img image.Image) error
}

// FileWriter persists a captured image.
type FileWriter interface {
	WriteImageFile(img image.Image, path string) error
}

// Result reports which side effects of a capture succeeded.
type Result struct {
	Captured  bool
	Published bool
	Saved     bool
	Path      string
	Err       error
}

// Capturer turns a screen rectangle into a clipboard image and a file.
type Capturer struct {
	grabber   Grabber
	publisher ImagePublisher
	writer    FileWriter
	dir       string
	now       func() time.Time
}

// NewCapturer wires a capturer. publisher or writer may be nil to skip that
// side effect.
func NewCapturer(g Grabber, p ImagePublisher, w FileWriter, dir string) *Capturer {
	return &Capturer{grabber: g, publisher: p, writer: w, dir: dir, now: time.Now}
}

// Capture normalizes r, rejects it when smaller than 5x5, trims the border
// margin and copies the pixels. Clipboard publication and file export are
// attempted independently; their failures are logged and reported in Result
// but never stop the other.
func (c *Capturer) Capture(r region.Rect) Result {
	n := r.Normalize()
	if !n.Valid(region.MinSize) {
		return Result{Err: ErrRegionTooSmall}
	}
	inner := n.Inset(BorderMargin)
	if inner.X2 <= inner.X1 || inner.Y2 <= inner.Y1 {
		return Result{Err: ErrRegionTooSmall}
	}
	if c.grabber == nil {
		return Result{Err: errors.New("screenshot: no grabber")}
	}

	img, err := c.grabber.Grab(inner.Image())
	if err != nil {
		log.Printf("screenshot: grab %v failed: %v", inner.Image(), err)
		return Result{Err: err}
	}
	res := Result{Captured: true}

	if c.publisher != nil {
		if err := c.publisher.WriteImage(img); err != nil {
			log.Printf("screenshot: clipboard publish failed: %v", err)
			res.Err = errors.Join(res.Err, err)
		} else {
			res.Published = true
		}
	}

	if c.writer != nil {
		path := filepath.Join(c.dir, FileName(c.now()))
		if err := c.writer.WriteImageFile(img, path); err != nil {
			log.Printf("screenshot: save %s failed: %v", path, err)
			res.Err = errors.Join(res.Err, err)
		} else {
			res.Saved = true
			res.Path = path
			log.Printf("screenshot: saved %dx%d to %s", img.Bounds().Dx(), img.Bounds().Dy(), path)
		}
	}
	return res
}

// FileName returns the timestamped file name for a capture taken at t.
func FileName(t time.Time) string {
	return t.Format(fileTimeLayout) + fileExt
}

// BMPWriter stores images as 24-bit bottom-up bitmaps.
type BMPWriter struct{}

func (BMPWriter) WriteImageFile(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("screenshot: create %s: %w", path, err)
	}
	if err := bmp.Encode(f, opaque(img)); err != nil {
		f.Close()
		return fmt.Errorf("screenshot: encode %s: %w", path, err)
	}
	return f.Close()
}

// opaque copies img with every alpha forced to 255 so the encoder emits
// 24 bits per pixel.
func opaque(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}
