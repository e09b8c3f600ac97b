package textbuf

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log"
	"strings"
	"unicode"
)

const (
	// LineHeight is the vertical advance of one text line in pixels.
	LineHeight = 20
	// MaxImageSide bounds the width and height of a pasted image.
	MaxImageSide = 2000
	// imageLineAllowance is the number of line heights an image may cover
	// before placeholder newlines are added below its marker.
	imageLineAllowance = 6
)

var (
	ErrImageTooLarge = errors.New("textbuf: image exceeds 2000x2000")
	ErrEmptyImage    = errors.New("textbuf: image has no pixels")
)

// Clipboard is the subset of clipboard access the buffer needs.
type Clipboard interface {
	HasImage() bool
	ReadImage() (image.Image, error)
	ReadText() (string, error)
	WriteText(s string) error
}

// Direction names a caret movement.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
	Home
	End
)

// Buffer holds the note typed under a region: its runes, a caret, an
// optional selection and the images referenced by inline markers.
//
// The caret is always within [0, Len()]. Selection endpoints are stored in
// the order they were made; use Selection for the ordered range.
type Buffer struct {
	text   []rune
	caret  int
	images []*image.RGBA

	selActive bool
	selStart  int
	selEnd    int
}

func New() *Buffer { return &Buffer{} }

func (b *Buffer) String() string { return string(b.text) }

func (b *Buffer) Len() int { return len(b.text) }

func (b *Buffer) Empty() bool { return len(b.text) == 0 }

func (b *Buffer) Caret() int { return b.caret }

// SetCaret moves the caret, clamping to the buffer bounds.
func (b *Buffer) SetCaret(pos int) {
	b.caret = b.clamp(pos)
}

// Images returns the pasted images in marker index order.
func (b *Buffer) Images() []*image.RGBA { return b.images }

// Image returns images[i] when i is in range.
func (b *Buffer) Image(i int) (*image.RGBA, bool) {
	if i < 0 || i >= len(b.images) {
		return nil, false
	}
	return b.images[i], true
}

// Reset empties the buffer, drops pasted images and clears the selection.
func (b *Buffer) Reset() {
	b.text = nil
	b.images = nil
	b.caret = 0
	b.ClearSelection()
}

// Selection returns the ordered, clamped selection range. ok is false when
// no selection is active.
func (b *Buffer) Selection() (start, end int, ok bool) {
	if !b.selActive {
		return 0, 0, false
	}
	start, end = b.clamp(b.selStart), b.clamp(b.selEnd)
	if start > end {
		start, end = end, start
	}
	return start, end, true
}

// SelectionEnds returns the selection endpoints in the order they were set.
func (b *Buffer) SelectionEnds() (start, end int, ok bool) {
	return b.selStart, b.selEnd, b.selActive
}

func (b *Buffer) ClearSelection() {
	b.selActive = false
	b.selStart, b.selEnd = 0, 0
}

// SelectAll selects the whole buffer and puts the caret at its end.
func (b *Buffer) SelectAll() {
	b.selActive = true
	b.selStart = 0
	b.selEnd = len(b.text)
	b.caret = len(b.text)
}

// SelectedText returns the runes inside the selection.
func (b *Buffer) SelectedText() string {
	start, end, ok := b.Selection()
	if !ok || start == end {
		return ""
	}
	return string(b.text[start:end])
}

// Insert places s at the caret and advances the caret past it.
func (b *Buffer) Insert(s string) {
	if s == "" {
		return
	}
	rs := []rune(s)
	pos := b.clamp(b.caret)
	out := make([]rune, 0, len(b.text)+len(rs))
	out = append(out, b.text[:pos]...)
	out = append(out, rs...)
	out = append(out, b.text[pos:]...)
	b.text = out
	b.caret = pos + len(rs)
	b.ClearSelection()
}

// DeleteBackward removes the rune before the caret, or with word set the run
// of whitespace and then the run of non-whitespace before it. A non-empty
// selection is removed instead.
func (b *Buffer) DeleteBackward(word bool) {
	if b.deleteSelection() {
		return
	}
	pos := b.clamp(b.caret)
	if pos == 0 {
		return
	}
	start := pos - 1
	if word {
		start = b.wordStartBefore(pos)
	}
	b.remove(start, pos)
	b.caret = start
}

// DeleteForward removes the rune after the caret, or with word set the run
// of non-whitespace and then the run of whitespace after it.
func (b *Buffer) DeleteForward(word bool) {
	if b.deleteSelection() {
		return
	}
	pos := b.clamp(b.caret)
	if pos >= len(b.text) {
		return
	}
	end := pos + 1
	if word {
		end = b.wordEndAfter(pos)
	}
	b.remove(pos, end)
	b.caret = pos
}

// MoveCaret moves the caret in direction d. With extend set the selection is
// anchored at the caret position before the first extending move and its
// other end follows the caret; otherwise any selection is dropped.
// wordOrLine turns Left/Right into word jumps and Home/End into jumps to the
// start or end of the whole buffer.
func (b *Buffer) MoveCaret(d Direction, extend, wordOrLine bool) {
	pos := b.clamp(b.caret)
	target := pos
	switch d {
	case Left:
		if wordOrLine {
			target = b.wordStartBefore(pos)
		} else if pos > 0 {
			target = pos - 1
		}
	case Right:
		if wordOrLine {
			target = b.wordEndAfter(pos)
		} else if pos < len(b.text) {
			target = pos + 1
		}
	case Up:
		target = b.lineAbove(pos)
	case Down:
		target = b.lineBelow(pos)
	case Home:
		if wordOrLine {
			target = 0
		} else {
			target = b.lineStart(pos)
		}
	case End:
		if wordOrLine {
			target = len(b.text)
		} else {
			target = b.lineEnd(pos)
		}
	}

	if target == pos {
		if !extend {
			b.ClearSelection()
		}
		return
	}
	if extend {
		if !b.selActive {
			b.selActive = true
			b.selStart = pos
		}
		b.selEnd = target
	} else {
		b.ClearSelection()
	}
	b.caret = target
}

// Copy writes the selection to the clipboard, or the whole buffer when no
// selection is active. An empty selection copies nothing.
func (b *Buffer) Copy(cb Clipboard) error {
	var s string
	if _, _, ok := b.Selection(); ok {
		s = b.SelectedText()
	} else {
		s = b.String()
	}
	if s == "" || cb == nil {
		return nil
	}
	if err := cb.WriteText(s); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	return nil
}

// Cut copies a non-empty selection to the clipboard and removes it. The
// buffer is left untouched when the clipboard write fails.
func (b *Buffer) Cut(cb Clipboard) error {
	start, end, ok := b.Selection()
	if !ok || start == end || cb == nil {
		return nil
	}
	if err := cb.WriteText(string(b.text[start:end])); err != nil {
		return fmt.Errorf("cut: %w", err)
	}
	b.remove(start, end)
	b.caret = start
	b.ClearSelection()
	return nil
}

// Paste inserts clipboard content at the caret. An image is preferred over
// text; an image that cannot be read or accepted becomes ErrorToken.
func (b *Buffer) Paste(cb Clipboard) error {
	if cb == nil {
		return nil
	}
	if cb.HasImage() {
		img, err := cb.ReadImage()
		if err == nil {
			_, err = b.InsertImagePlaceholder(img)
		}
		if err != nil {
			log.Printf("textbuf: image paste failed: %v", err)
			b.Insert(ErrorToken)
		}
		return nil
	}
	s, err := cb.ReadText()
	if err != nil {
		return fmt.Errorf("paste: %w", err)
	}
	b.Insert(strings.ReplaceAll(s, "\r\n", "\n"))
	return nil
}

// InsertImagePlaceholder stores a copy of img, inserts its marker at the
// caret followed by enough newlines for the following text to clear the
// image, and returns the marker.
func (b *Buffer) InsertImagePlaceholder(img image.Image) (string, error) {
	if img == nil {
		return "", ErrEmptyImage
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return "", ErrEmptyImage
	}
	if w > MaxImageSide || h > MaxImageSide {
		return "", ErrImageTooLarge
	}
	cp := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(cp, cp.Bounds(), img, bounds.Min, draw.Src)
	b.images = append(b.images, cp)

	token := Marker(len(b.images) - 1)
	b.Insert(token + strings.Repeat("\n", placeholderNewlines(h)))
	return token, nil
}

func placeholderNewlines(h int) int {
	lines := (h + LineHeight - 1) / LineHeight
	return max(0, lines-imageLineAllowance)
}

func (b *Buffer) deleteSelection() bool {
	start, end, ok := b.Selection()
	if !ok || start == end {
		return false
	}
	b.remove(start, end)
	b.caret = start
	b.ClearSelection()
	return true
}

func (b *Buffer) remove(start, end int) {
	start, end = b.clamp(start), b.clamp(end)
	if start >= end {
		return
	}
	b.text = append(b.text[:start], b.text[end:]...)
	b.ClearSelection()
}

func (b *Buffer) clamp(pos int) int {
	return min(max(pos, 0), len(b.text))
}

func (b *Buffer) wordStartBefore(pos int) int {
	for pos > 0 && unicode.IsSpace(b.text[pos-1]) {
		pos--
	}
	for pos > 0 && !unicode.IsSpace(b.text[pos-1]) {
		pos--
	}
	return pos
}

func (b *Buffer) wordEndAfter(pos int) int {
	n := len(b.text)
	for pos < n && !unicode.IsSpace(b.text[pos]) {
		pos++
	}
	for pos < n && unicode.IsSpace(b.text[pos]) {
		pos++
	}
	return pos
}

func (b *Buffer) lineStart(pos int) int {
	for pos > 0 && b.text[pos-1] != '\n' {
		pos--
	}
	return pos
}

func (b *Buffer) lineEnd(pos int) int {
	for pos < len(b.text) && b.text[pos] != '\n' {
		pos++
	}
	return pos
}

func (b *Buffer) lineAbove(pos int) int {
	start := b.lineStart(pos)
	if start == 0 {
		return pos
	}
	col := pos - start
	prevEnd := start - 1
	prevStart := b.lineStart(prevEnd)
	return prevStart + min(col, prevEnd-prevStart)
}

func (b *Buffer) lineBelow(pos int) int {
	end := b.lineEnd(pos)
	if end >= len(b.text) {
		return pos
	}
	col := pos - b.lineStart(pos)
	nextStart := end + 1
	nextEnd := b.lineEnd(nextStart)
	return nextStart + min(col, nextEnd-nextStart)
}
