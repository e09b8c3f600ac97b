package compositor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"screen-highlighter/src/drawing"
	"screen-highlighter/src/overlay"
	"screen-highlighter/src/textbuf"
)

const (
	textSize  = 16
	badgeSize = 20

	boxPadding  = 40
	boxMinWidth = 100
	boxMaxWidth = 1200
	boxInsetX   = 10
	boxInsetY   = 5
	boxGap      = 5
	caretWidth  = 2

	screenshotCaption = "SCREENSHOT - Release click to capture"
	screenshotBanner  = "SCREENSHOT"
	screenshotHelp    = "ESC = Exit | Click + Drag = Select area | Release to capture"
)

var (
	// CutoutKey marks pixels the presenter shows as the desktop underneath.
	CutoutKey = color.RGBA{R: 255, B: 255, A: 255}
	// DrawingKey replaces CutoutKey while a drawing tool is active.
	DrawingKey = color.RGBA{G: 255, B: 255, A: 255}

	dimColor       = color.RGBA{A: 255}
	textColor      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	selectionColor = color.RGBA{R: 0, G: 120, B: 215, A: 255}
	helpColor      = color.RGBA{R: 255, G: 255, A: 255}
	bannerColor    = color.RGBA{R: 255, A: 255}
)

// Frame is one composited overlay image. Pixels equal to Key are see-through;
// every other pixel is shown at Opacity over the desktop.
type Frame struct {
	Image   *image.RGBA
	Key     color.RGBA
	Opacity uint8
}

// Compositor renders session state to frames. It holds only font faces and
// never mutates the session it renders.
type Compositor struct {
	text  font.Face
	badge font.Face
	label font.Face
}

func New() (*Compositor, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}
	face := func(f *truetype.Font, size float64) font.Face {
		return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	}
	return &Compositor{
		text:  face(regular, textSize),
		badge: face(bold, badgeSize),
		label: face(bold, textSize),
	}, nil
}

// KeyFor returns the see-through colour for the session's current mode.
func KeyFor(s *overlay.Session) color.RGBA {
	if s.DrawingActive() {
		return DrawingKey
	}
	return CutoutKey
}

// Render composites the session into a new frame the size of its screen.
func (c *Compositor) Render(s *overlay.Session) Frame {
	screen := s.Screen()
	img := image.NewRGBA(image.Rect(0, 0, screen.Dx(), screen.Dy()))
	dc := gg.NewContextForRGBA(img)
	key := KeyFor(s)

	c.layer("dim", func() {
		draw.Draw(img, img.Bounds(), image.NewUniform(dimColor), image.Point{}, draw.Src)
	})
	c.layer("cutouts", func() { c.drawCutouts(img, s, key) })
	c.layer("borders", func() { c.drawBorders(dc, s) })
	c.layer("zoom", func() {
		s.Zoom().Draw(img)
		c.drawTextBox(dc, img, s)
	})
	c.layer("elements", func() {
		for _, e := range s.Elements() {
			c.drawElement(dc, e)
		}
	})
	c.layer("preview", func() { c.drawPreview(dc, s) })
	c.layer("badges", func() { c.drawBadges(dc, s) })

	return Frame{Image: img, Key: key, Opacity: opacityFor(s)}
}

func opacityFor(s *overlay.Session) uint8 {
	if s.Zoom().Active() {
		return 255
	}
	return uint8(min(max(s.Settings().OverlayOpacity, 0), 255))
}

// layer runs one drawing step and keeps a panic in it from taking the
// remaining layers down with it.
func (c *Compositor) layer(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("compositor: layer %s skipped: %v", name, r)
		}
	}()
	fn()
}

func (c *Compositor) drawCutouts(img *image.RGBA, s *overlay.Session, key color.RGBA) {
	fill := image.NewUniform(key)
	if !s.Zoom().Active() {
		for _, r := range s.Regions() {
			draw.Draw(img, r.Image(), fill, image.Point{}, draw.Src)
		}
	}
	if d := s.Drag(); d.Active && s.Mode().Kind == overlay.ModeSelecting {
		draw.Draw(img, d.Rect().Image(), fill, image.Point{}, draw.Src)
	}
}

func (c *Compositor) drawBorders(dc *gg.Context, s *overlay.Session) {
	st := s.Settings()
	dc.SetColor(st.BorderRGBA())
	dc.SetLineWidth(float64(max(st.BorderThickness, 1)))
	strokeRect := func(r image.Rectangle) {
		dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
		dc.Stroke()
	}

	if z := s.Zoom(); z.Active() {
		strokeRect(z.Placement())
	} else {
		for _, r := range s.Regions() {
			strokeRect(r.Image())
		}
	}

	d := s.Drag()
	if !d.Active {
		return
	}
	switch s.Mode().Kind {
	case overlay.ModeSelecting:
		strokeRect(d.Rect().Image())
	case overlay.ModeScreenshot:
		c.drawMarquee(dc, d.Rect().Image())
	}
}

func (c *Compositor) drawMarquee(dc *gg.Context, r image.Rectangle) {
	dc.Push()
	defer dc.Pop()
	dc.SetColor(textColor)
	dc.SetLineWidth(1)
	dc.SetDash(6, 4)
	dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	dc.Stroke()
	dc.SetDash()

	dc.SetFontFace(c.label)
	mid := float64(r.Min.X+r.Max.X) / 2
	dc.DrawStringAnchored(screenshotCaption, mid, float64(r.Min.Y)-12, 0.5, 0.5)
}

// TextBoxOrigin returns the top-left corner and width of the note box for a
// layout of the given width.
func TextBoxOrigin(s *overlay.Session, layoutWidth float64) (image.Point, int) {
	w := min(max(int(layoutWidth)+boxPadding, boxMinWidth), boxMaxWidth)
	if z := s.Zoom(); z.Active() {
		p := z.Placement()
		return image.Pt(p.Min.X+(p.Dx()-w)/2, p.Max.Y+boxGap), w
	}
	if last, ok := s.LastRegion(); ok {
		r := last.Normalize()
		return image.Pt(r.X1, r.Y2+boxGap), w
	}
	return image.Pt(20, 20), w
}

func (c *Compositor) drawTextBox(dc *gg.Context, img *image.RGBA, s *overlay.Session) {
	b := s.Text()
	if b.Empty() && !s.TextActive() {
		return
	}
	dc.SetFontFace(c.text)
	l := b.Layout(dc)
	box, w := TextBoxOrigin(s, l.Width)
	ox, oy := box.X+boxInsetX, box.Y+boxInsetY
	selStart, selEnd, hasSel := b.Selection()

	for i, ln := range l.Lines {
		top := oy + ln.Y
		switch ln.Kind {
		case textbuf.ImageLine:
			ib := ln.Image.Bounds()
			x := box.X + (w-ib.Dx())/2
			draw.Draw(img, image.Rect(x, top, x+ib.Dx(), top+ib.Dy()), ln.Image, ib.Min, draw.Src)
		case textbuf.TextLine:
			if hasSel {
				if x0, x1, ok := l.Span(i, selStart, selEnd); ok {
					dc.SetColor(selectionColor)
					dc.DrawRectangle(float64(ox)+x0, float64(top), x1-x0, textbuf.LineHeight)
					dc.Fill()
				}
			}
			if ln.Text != "" {
				dc.SetColor(textColor)
				dc.DrawStringAnchored(ln.Text, float64(ox), float64(top)+textbuf.LineHeight/2, 0, 0.5)
			}
		}
	}

	if s.TextActive() && s.CaretVisible() {
		p := l.Caret(b.Caret())
		draw.Draw(img, image.Rect(ox+p.X, oy+p.Y, ox+p.X+caretWidth, oy+p.Y+textbuf.LineHeight),
			image.NewUniform(textColor), image.Point{}, draw.Src)
	}
}

func (c *Compositor) drawPreview(dc *gg.Context, s *overlay.Session) {
	d := s.Drag()
	m := s.Mode()
	if !d.Active || m.Kind != overlay.ModeDrawing || d.Start == d.End {
		return
	}
	c.drawElement(dc, drawing.New(m.Tool, d.Start, d.End, s.Style()))
}

func (c *Compositor) drawElement(dc *gg.Context, e drawing.Element) {
	dc.SetColor(e.Color)
	dc.SetLineWidth(float64(max(e.Thickness, 1)))
	x1, y1 := float64(e.P1.X), float64(e.P1.Y)
	x2, y2 := float64(e.P2.X), float64(e.P2.Y)

	switch e.Tool {
	case drawing.ToolLine:
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	case drawing.ToolArrow:
		left, right, shaft := e.ArrowHead()
		dc.DrawLine(x1, y1, float64(shaft.X), float64(shaft.Y))
		dc.DrawLine(x2, y2, float64(left.X), float64(left.Y))
		dc.DrawLine(x2, y2, float64(right.X), float64(right.Y))
		dc.Stroke()
	case drawing.ToolRectangle:
		dc.DrawRectangle(x1, y1, x2-x1, y2-y1)
		if e.Filled {
			dc.Fill()
		} else {
			dc.Stroke()
		}
	case drawing.ToolHighlighter:
		dc.DrawRectangle(x1, y1, x2-x1, y2-y1)
		dc.Fill()
	}
}

func (c *Compositor) drawBadges(dc *gg.Context, s *overlay.Session) {
	m := s.Mode()
	switch m.Kind {
	case overlay.ModeDrawing:
		toolColor := s.Style().Color
		if m.Tool == drawing.ToolHighlighter {
			toolColor = drawing.HighlighterColor
		}
		c.badgeBox(dc, 20, 20, 180, 30, dimColor, toolColor)
		dc.SetFontFace(c.badge)
		dc.SetColor(textColor)
		dc.DrawStringAnchored(m.Tool.String(), 25, 35, 0, 0.5)
	case overlay.ModeScreenshot:
		c.badgeBox(dc, 20, 20, 230, 30, bannerColor, textColor)
		dc.SetFontFace(c.badge)
		dc.SetColor(textColor)
		dc.DrawStringAnchored(screenshotBanner, 25, 35, 0, 0.5)
		dc.SetFontFace(c.text)
		dc.SetColor(helpColor)
		dc.DrawStringAnchored(screenshotHelp, 20, 55, 0, 1)
	}
}

func (c *Compositor) badgeBox(dc *gg.Context, x, y, w, h float64, fill, border color.Color) {
	dc.SetColor(fill)
	dc.DrawRectangle(x, y, w, h)
	dc.Fill()
	dc.SetColor(border)
	dc.SetLineWidth(2)
	dc.DrawRectangle(x, y, w, h)
	dc.Stroke()
}
