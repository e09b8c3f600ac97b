package overlay

import (
	"image"
	"log"
	"unicode"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"screen-highlighter/src/drawing"
	"screen-highlighter/src/logutil"
	"screen-highlighter/src/textbuf"
)

var toolKeys = map[key.Code]drawing.Tool{
	key.CodeF1: drawing.ToolLine,
	key.CodeF2: drawing.ToolArrow,
	key.CodeF3: drawing.ToolRectangle,
	key.CodeF4: drawing.ToolHighlighter,
}

// HandleMouse applies one pointer event to the session.
func (s *Session) HandleMouse(e mouse.Event) {
	p := image.Pt(int(e.X), int(e.Y))

	switch e.Button {
	case mouse.ButtonWheelUp, mouse.ButtonWheelDown:
		if e.Direction != mouse.DirRelease {
			s.wheel(e.Button == mouse.ButtonWheelUp)
		}
		return
	}

	switch e.Direction {
	case mouse.DirPress:
		if e.Button == mouse.ButtonLeft {
			s.pointerDown(p)
		}
	case mouse.DirNone:
		if s.drag.Active {
			s.drag.End = p
			s.MarkDirty()
		}
	case mouse.DirRelease:
		if e.Button == mouse.ButtonLeft {
			s.pointerUp(p)
		}
	}
}

func (s *Session) pointerDown(p image.Point) {
	switch s.mode.Kind {
	case ModeIdle, ModeTextInput:
		s.transition(selecting(s.mode.Kind))
	case ModeSelecting:
		return
	}
	s.drag = Drag{Active: true, Start: p, End: p}
	s.MarkDirty()
}

func (s *Session) pointerUp(p image.Point) {
	if !s.drag.Active {
		return
	}
	s.drag.End = p
	d := s.drag
	s.drag = Drag{}
	s.MarkDirty()

	switch s.mode.Kind {
	case ModeSelecting:
		if r, ok := s.regions.Commit(d.Rect()); ok {
			log.Printf("overlay: region %d committed %v", s.regions.Len(), r.Image())
		}
		s.transition(Mode{Kind: s.mode.resume})
	case ModeDrawing:
		e := drawing.New(s.mode.Tool, d.Start, d.End, s.style)
		if s.elements.Add(e) {
			log.Printf("overlay: %s committed, %d elements", e.Tool, s.elements.Len())
		}
	case ModeScreenshot:
		s.takeScreenshot(d)
		s.transition(idle())
	}
}

func (s *Session) takeScreenshot(d Drag) {
	if s.shots == nil {
		log.Printf("overlay: screenshot requested but no capturer configured")
		return
	}
	res := s.shots.Capture(d.Rect())
	if res.Err != nil {
		log.Printf("overlay: screenshot %v: %v", d.Rect().Image(), res.Err)
	}
}

func (s *Session) wheel(up bool) {
	if s.mode.Kind == ModeDrawing {
		return
	}
	last, ok := s.regions.Last()
	if !ok {
		return
	}
	if !s.zoom.Active() {
		if err := s.zoom.Capture(last); err != nil {
			log.Printf("overlay: %v", err)
			return
		}
		s.text.Reset()
	}
	s.zoom.Step(up)
	s.zoom.AnchorFocal(s.screen)
	s.MarkDirty()
}

// HandleKey applies one key event to the session.
func (s *Session) HandleKey(e key.Event) {
	if e.Direction == key.DirRelease {
		return
	}
	ctrl := e.Modifiers&(key.ModControl|key.ModMeta) != 0

	switch {
	case e.Code == key.CodeEscape:
		s.escape()
	case ctrl && e.Code == key.CodeZ:
		s.undo()
	case ctrl && (e.Code == key.CodeReturnEnter || e.Code == key.CodeKeypadEnter):
		s.transition(screenshotMode())
	case ctrl && e.Code == key.CodeT:
		s.transition(textInput())
		s.text.SetCaret(s.text.Len())
	default:
		if tool, ok := toolKeys[e.Code]; ok {
			s.transition(drawingMode(tool))
			return
		}
		if s.TextActive() {
			s.textKey(e, ctrl)
		}
	}
}

// escape backs out one level: screenshot mode, drawing mode, text entry
// over a zoom, the zoom itself, and finally the whole session.
func (s *Session) escape() {
	switch {
	case s.mode.Kind == ModeScreenshot, s.mode.Kind == ModeDrawing:
		s.transition(idle())
	case s.zoom.Active():
		if s.TextActive() {
			s.transition(idle())
			return
		}
		s.endZoom()
	default:
		log.Printf("overlay: session closed by escape")
		s.Close()
	}
}

// undo removes the newest annotation, or the newest region when there are
// no annotations left.
func (s *Session) undo() {
	if e, ok := s.elements.Pop(); ok {
		log.Printf("overlay: undo %s, %d elements left", e.Tool, s.elements.Len())
		s.MarkDirty()
		return
	}
	r, ok := s.regions.Pop()
	if !ok {
		return
	}
	log.Printf("overlay: undo region %v, %d left", r.Image(), s.regions.Len())
	if s.zoom.Active() || s.regions.Len() == 0 {
		s.endZoom()
	}
	s.MarkDirty()
}

func (s *Session) textKey(e key.Event, ctrl bool) {
	shift := e.Modifiers&key.ModShift != 0
	b := s.text

	switch e.Code {
	case key.CodeReturnEnter, key.CodeKeypadEnter:
		b.Insert("\n")
	case key.CodeDeleteBackspace:
		b.DeleteBackward(ctrl)
	case key.CodeDeleteForward:
		b.DeleteForward(ctrl)
	case key.CodeLeftArrow:
		b.MoveCaret(textbuf.Left, shift, ctrl)
	case key.CodeRightArrow:
		b.MoveCaret(textbuf.Right, shift, ctrl)
	case key.CodeUpArrow:
		b.MoveCaret(textbuf.Up, shift, ctrl)
	case key.CodeDownArrow:
		b.MoveCaret(textbuf.Down, shift, ctrl)
	case key.CodeHome:
		b.MoveCaret(textbuf.Home, shift, ctrl)
	case key.CodeEnd:
		b.MoveCaret(textbuf.End, shift, ctrl)
	default:
		if ctrl {
			s.textCommand(e.Code)
			break
		}
		if e.Rune >= 0 && unicode.IsPrint(e.Rune) {
			b.Insert(string(e.Rune))
		} else {
			return
		}
	}
	s.caretVisible.Store(true)
	s.MarkDirty()
}

func (s *Session) textCommand(code key.Code) {
	b := s.text
	var err error
	switch code {
	case key.CodeA:
		b.SelectAll()
	case key.CodeC:
		err = b.Copy(s.clip)
	case key.CodeX:
		err = b.Cut(s.clip)
	case key.CodeV:
		err = b.Paste(s.clip)
		log.Printf("overlay: pasted, note is now %q", logutil.Sanitize(b.String()))
	}
	if err != nil {
		log.Printf("overlay: clipboard: %v", err)
	}
}
