package overlay

import (
	"fmt"
	"log"

	"screen-highlighter/src/drawing"
)

// ModeKind is the interaction state of an overlay session.
type ModeKind int

const (
	ModeIdle ModeKind = iota
	ModeSelecting
	ModeDrawing
	ModeScreenshot
	ModeTextInput
)

func (k ModeKind) String() string {
	switch k {
	case ModeIdle:
		return "idle"
	case ModeSelecting:
		return "selecting"
	case ModeDrawing:
		return "drawing"
	case ModeScreenshot:
		return "screenshot"
	case ModeTextInput:
		return "text"
	default:
		return fmt.Sprintf("mode(%d)", int(k))
	}
}

// Mode is exactly one interaction state. Tool is meaningful only for
// ModeDrawing; resume is where ModeSelecting returns after the drag.
type Mode struct {
	Kind   ModeKind
	Tool   drawing.Tool
	resume ModeKind
}

func (m Mode) String() string {
	if m.Kind == ModeDrawing {
		return fmt.Sprintf("drawing(%s)", m.Tool)
	}
	return m.Kind.String()
}

func idle() Mode { return Mode{Kind: ModeIdle} }
func textInput() Mode { return Mode{Kind: ModeTextInput} }
func screenshotMode() Mode { return Mode{Kind: ModeScreenshot} }
func drawingMode(t drawing.Tool) Mode { return Mode{Kind: ModeDrawing, Tool: t} }
func selecting(resume ModeKind) Mode { return Mode{Kind: ModeSelecting, resume: resume} }

// transition is the only place the mode changes. Any in-progress drag
// belongs to the mode being left and is dropped; committed regions and
// elements are untouched.
func (s *Session) transition(to Mode) {
	if s.mode == to {
		return
	}
	log.Printf("overlay: mode %s -> %s", s.mode, to)
	s.mode = to
	s.drag = Drag{}
	if to.Kind == ModeTextInput {
		s.caretVisible.Store(true)
	}
	s.MarkDirty()
}
