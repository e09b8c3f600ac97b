package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sync"

	"golang.design/x/clipboard"
)

var ErrEmpty = errors.New("clipboard: no data in requested format")

// Board is the clipboard capability the overlay uses for text notes and
// screenshots.
type Board interface {
	HasImage() bool
	ReadImage() (image.Image, error)
	WriteImage(img image.Image) error
	ReadText() (string, error)
	WriteText(s string) error
}

// Init prepares the system clipboard. Callers fall back to NewMemory when it
// fails, for example on a headless host.
func Init() error {
	return clipboard.Init()
}

// System is the OS clipboard. Images travel as PNG.
type System struct {
	mu sync.Mutex
}

func NewSystem() *System { return &System{} }

func (s *System) HasImage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(clipboard.Read(clipboard.FmtImage)) > 0
}

func (s *System) ReadImage() (image.Image, error) {
	s.mu.Lock()
	data := clipboard.Read(clipboard.FmtImage)
	s.mu.Unlock()
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("clipboard: decode image: %w", err)
	}
	return img, nil
}

// WriteImage performs a mutex-guarded image write.
func (s *System) WriteImage(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("clipboard: encode image: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	clipboard.Write(clipboard.FmtImage, buf.Bytes())
	return nil
}

func (s *System) ReadText() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data := clipboard.Read(clipboard.FmtText)
	if data == nil {
		return "", ErrEmpty
	}
	return string(data), nil
}

// WriteText performs a mutex-guarded text write to prevent corruption under parallel writes.
func (s *System) WriteText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// Memory is a process-local clipboard holding one item, text or image.
type Memory struct {
	mu   sync.Mutex
	text *string
	img  image.Image
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) HasImage() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.img != nil
}

func (m *Memory) ReadImage() (image.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.img == nil {
		return nil, ErrEmpty
	}
	return m.img, nil
}

func (m *Memory) WriteImage(img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.img, m.text = img, nil
	return nil
}

func (m *Memory) ReadText() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.text == nil {
		return "", ErrEmpty
	}
	return *m.text, nil
}

func (m *Memory) WriteText(s string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text, m.img = &s, nil
	return nil
}
