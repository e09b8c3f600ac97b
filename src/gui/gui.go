package gui

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"log"
	"time"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"screen-highlighter/src/clipboard"
	"screen-highlighter/src/compositor"
	"screen-highlighter/src/config"
	"screen-highlighter/src/notification"
	"screen-highlighter/src/overlay"
	"screen-highlighter/src/region"
	"screen-highlighter/src/screenshot"
)

const windowTitle = "Screen Highlighter Overlay"

// blinkEvent and cancelEvent are sent into the window's event queue from
// helper goroutines; everything else arrives from the platform.
type (
	blinkEvent  struct{}
	cancelEvent struct{}
)

// window is the part of screen.Window the overlay loop drives.
type window interface {
	NextEvent() interface{}
	Send(event interface{})
	Upload(dp image.Point, src screen.Buffer, sr image.Rectangle)
	Publish() screen.PublishResult
	Release()
}

// bufferer allocates upload buffers. screen.Screen satisfies it.
type bufferer interface {
	NewBuffer(size image.Point) (screen.Buffer, error)
}

// Options configures a Host.
type Options struct {
	Screen    screen.Screen
	Clipboard clipboard.Board
	OutputDir string

	// Backdrop captures the desktop shown beneath the overlay. Defaults to
	// the whole virtual screen.
	Backdrop func() (*image.RGBA, error)
	// Beep is played after a successful screenshot.
	Beep func()
}

// Host shows overlay sessions in a shiny window over a frozen copy of the
// desktop. It implements overlay.Host.
type Host struct {
	screen    screen.Screen
	clip      clipboard.Board
	outputDir string
	backdrop  func() (*image.RGBA, error)
	beep      func()
	comp      *compositor.Compositor
}

var _ overlay.Host = (*Host)(nil)

func NewHost(opts Options) (*Host, error) {
	comp, err := compositor.New()
	if err != nil {
		return nil, err
	}
	h := &Host{
		screen:    opts.Screen,
		clip:      opts.Clipboard,
		outputDir: opts.OutputDir,
		backdrop:  opts.Backdrop,
		beep:      opts.Beep,
		comp:      comp,
	}
	if h.backdrop == nil {
		h.backdrop = screenshot.Capture
	}
	if h.beep == nil {
		h.beep = notification.Beep
	}
	if h.clip == nil {
		h.clip = clipboard.NewMemory()
	}
	return h, nil
}

// Run captures the desktop, opens the overlay window and blocks until the
// session ends.
func (h *Host) Run(ctx context.Context, settings config.Settings) error {
	if h.screen == nil {
		return fmt.Errorf("gui: no screen available")
	}
	shot, err := h.backdrop()
	if err != nil {
		return fmt.Errorf("gui: capture desktop: %w", err)
	}
	origin := shot.Bounds().Min
	backdrop := rebase(shot)
	sz := backdrop.Bounds().Size()

	w, err := h.screen.NewWindow(&screen.NewWindowOptions{Width: sz.X, Height: sz.Y, Title: windowTitle})
	if err != nil {
		return fmt.Errorf("gui: new window: %w", err)
	}
	defer w.Release()
	if err := raiseWindow(windowTitle, image.Rectangle{Min: origin, Max: origin.Add(sz)}); err != nil {
		log.Printf("gui: could not raise overlay window: %v", err)
	}

	return h.loop(ctx, w, h.screen, backdrop, settings)
}

// view holds the frozen desktop the session's grabbers crop from and the last
// frame shown on screen. Zoom and screenshots both read the desktop, so the
// overlay's own dimming and marquee never end up in a capture.
type view struct {
	backdrop  *image.RGBA
	presented *image.RGBA
}

func (v *view) Backdrop() *image.RGBA { return v.backdrop }

// beepingCapturer plays a sound once a screenshot reached the clipboard or
// disk.
type beepingCapturer struct {
	inner *screenshot.Capturer
	beep  func()
}

func (c beepingCapturer) Capture(r region.Rect) screenshot.Result {
	res := c.inner.Capture(r)
	if res.Published || res.Saved {
		c.beep()
	}
	if res.Saved {
		log.Printf("gui: screenshot saved to %s", res.Path)
	}
	return res
}

func (h *Host) loop(ctx context.Context, w window, bufs bufferer, backdrop *image.RGBA, settings config.Settings) error {
	v := &view{backdrop: backdrop, presented: image.NewRGBA(backdrop.Bounds())}
	capturer := screenshot.NewCapturer(screenshot.ImageGrabber{Source: v.Backdrop}, h.clip, screenshot.BMPWriter{}, h.outputDir)
	sess := overlay.NewSession(overlay.Options{
		Screen:      backdrop.Bounds(),
		Settings:    settings,
		Grabber:     screenshot.ImageGrabber{Source: v.Backdrop},
		Clipboard:   h.clip,
		Screenshots: beepingCapturer{inner: capturer, beep: h.beep},
	})

	stop := make(chan struct{})
	defer close(stop)
	go blink(stop, settings.BlinkInterval(), sess, w)
	go func() {
		select {
		case <-ctx.Done():
			w.Send(cancelEvent{})
		case <-stop:
		}
	}()

	log.Printf("gui: overlay session started %dx%d", backdrop.Bounds().Dx(), backdrop.Bounds().Dy())
	w.Send(paint.Event{})
	for {
		switch e := w.NextEvent().(type) {
		case cancelEvent:
			sess.Close()
			return ctx.Err()
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				sess.Close()
				log.Printf("gui: overlay window closed")
				return nil
			}
		case key.Event:
			sess.HandleKey(e)
		case mouse.Event:
			sess.HandleMouse(e)
		case blinkEvent:
			if sess.TextActive() {
				sess.MarkDirty()
			}
		case paint.Event, size.Event:
			sess.MarkDirty()
		}

		if sess.Done() {
			log.Printf("gui: overlay session ended")
			return nil
		}
		if sess.TakeDirty() {
			h.draw(w, bufs, v, sess)
		}
	}
}

func (h *Host) draw(w window, bufs bufferer, v *view, sess *overlay.Session) {
	frame := h.comp.Render(sess)

	Present(v.presented, frame, v.backdrop)

	b, err := bufs.NewBuffer(v.presented.Bounds().Size())
	if err != nil {
		log.Printf("gui: new buffer: %v", err)
		return
	}
	defer b.Release()
	draw.Draw(b.RGBA(), b.Bounds(), v.presented, image.Point{}, draw.Src)
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

// blink flips caret visibility on a fixed interval and wakes the loop. It
// never touches session state beyond the atomic flag.
func blink(stop <-chan struct{}, interval time.Duration, sess *overlay.Session, w window) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			sess.ToggleCaret()
			w.Send(blinkEvent{})
		case <-stop:
			return
		}
	}
}
