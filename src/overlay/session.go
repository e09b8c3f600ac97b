package overlay

import (
	"image"
	"log"
	"sync/atomic"

	"screen-highlighter/src/config"
	"screen-highlighter/src/drawing"
	"screen-highlighter/src/region"
	"screen-highlighter/src/screenshot"
	"screen-highlighter/src/textbuf"
	"screen-highlighter/src/zoom"
)

// ScreenshotTaker captures a rectangle of the screen to its destinations.
type ScreenshotTaker interface {
	Capture(r region.Rect) screenshot.Result
}

// Options wires a session to its screen and capabilities.
type Options struct {
	Screen      image.Rectangle
	Settings    config.Settings
	Grabber     zoom.Grabber
	Clipboard   textbuf.Clipboard
	Screenshots ScreenshotTaker
}

// Drag is the pointer drag in progress, if any.
type Drag struct {
	Active     bool
	Start, End image.Point
}

// Rect returns the drag as an unnormalized rectangle.
func (d Drag) Rect() region.Rect { return region.FromPoints(d.Start, d.End) }

// Session is everything one overlay activation knows: committed regions and
// annotations, the note buffer, the zoom and the current mode. It is owned
// by a single goroutine; only the caret blink flag may be touched from
// elsewhere.
type Session struct {
	screen   image.Rectangle
	settings config.Settings

	regions  *region.Store
	elements *drawing.Store
	text     *textbuf.Buffer
	zoom     *zoom.Capture
	style    drawing.Style

	mode Mode
	drag Drag

	clip  textbuf.Clipboard
	shots ScreenshotTaker

	caretVisible atomic.Bool
	dirty        bool
	done         bool
}

func NewSession(opts Options) *Session {
	lo, hi := opts.Settings.ZoomRange()
	s := &Session{
		screen:   opts.Screen,
		settings: opts.Settings,
		regions:  region.NewStore(),
		elements: drawing.NewStore(),
		text:     textbuf.New(),
		zoom:     zoom.New(opts.Grabber, lo, hi),
		style:    drawing.DefaultStyle(),
		mode:     idle(),
		clip:     opts.Clipboard,
		shots:    opts.Screenshots,
		dirty:    true,
	}
	s.caretVisible.Store(true)
	return s
}

func (s *Session) Screen() image.Rectangle { return s.screen }
func (s *Session) Settings() config.Settings { return s.settings }
func (s *Session) Mode() Mode { return s.mode }
func (s *Session) Drag() Drag { return s.drag }
func (s *Session) Style() drawing.Style { return s.style }

// Regions returns the committed regions, oldest first.
func (s *Session) Regions() []region.Rect { return s.regions.All() }

// Elements returns the committed annotations, oldest first.
func (s *Session) Elements() []drawing.Element { return s.elements.All() }

// LastRegion returns the most recently committed region.
func (s *Session) LastRegion() (region.Rect, bool) { return s.regions.Last() }

// Zoom exposes the zoom for rendering. Callers must not mutate it.
func (s *Session) Zoom() *zoom.Capture { return s.zoom }

// Text exposes the note buffer for rendering. Callers must not mutate it.
func (s *Session) Text() *textbuf.Buffer { return s.text }

// TextActive reports whether keystrokes edit the note, including while a
// selection drag started from text mode is in progress.
func (s *Session) TextActive() bool {
	return s.mode.Kind == ModeTextInput || (s.mode.Kind == ModeSelecting && s.mode.resume == ModeTextInput)
}

// DrawingActive reports whether a drawing tool is selected.
func (s *Session) DrawingActive() bool { return s.mode.Kind == ModeDrawing }

// ToggleCaret flips caret visibility. Safe to call from any goroutine.
func (s *Session) ToggleCaret() bool {
	for {
		old := s.caretVisible.Load()
		if s.caretVisible.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

func (s *Session) CaretVisible() bool { return s.caretVisible.Load() }

// MarkDirty requests a redraw.
func (s *Session) MarkDirty() { s.dirty = true }

// TakeDirty reports and clears the redraw request.
func (s *Session) TakeDirty() bool {
	d := s.dirty
	s.dirty = false
	return d
}

// Done reports whether the user asked to leave the overlay.
func (s *Session) Done() bool { return s.done }

// Close ends the session and releases the zoom snapshot.
func (s *Session) Close() {
	s.zoom.Teardown()
	s.done = true
}

// endZoom tears the zoom down along with everything drawn or typed over it.
func (s *Session) endZoom() {
	s.zoom.Teardown()
	s.text.Reset()
	s.elements.Clear()
	if s.mode.Kind == ModeDrawing || s.mode.Kind == ModeTextInput {
		s.transition(idle())
	}
	log.Printf("overlay: zoom ended")
	s.MarkDirty()
}
