package config

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	keyOverlayOpacity  = "overlay_opacity"
	keyZoomMinFactor   = "zoom_min_factor"
	keyZoomMaxFactor   = "zoom_max_factor"
	keyCursorBlink     = "text_cursor_blink_speed"
	keyBorderThickness = "region_border_thickness"
	keyBorderColor     = "region_border_color"
	keyHotkeyEnabled   = "hotkey_shift_alt_x"
)

// settingLine matches the key=value lines worth handing to the parser.
var settingLine = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*\s*=`)

// Settings are the user-tunable overlay parameters persisted in the INI file.
// Zoom factors are percentages; the border colour is a Win32 COLORREF
// (0x00BBGGRR), so files written by the Windows build read the same here.
type Settings struct {
	OverlayOpacity  int
	ZoomMinFactor   int
	ZoomMaxFactor   int
	CursorBlinkMs   int
	BorderThickness int
	BorderColor     int
	HotkeyEnabled   bool
}

func DefaultSettings() Settings {
	return Settings{
		OverlayOpacity:  178,
		ZoomMinFactor:   50,
		ZoomMaxFactor:   500,
		CursorBlinkMs:   500,
		BorderThickness: 2,
		BorderColor:     0x00FF00,
		HotkeyEnabled:   true,
	}
}

// ZoomRange returns the zoom bounds as scale factors.
func (s Settings) ZoomRange() (float64, float64) {
	return float64(s.ZoomMinFactor) / 100, float64(s.ZoomMaxFactor) / 100
}

func (s Settings) BlinkInterval() time.Duration {
	return time.Duration(s.CursorBlinkMs) * time.Millisecond
}

func (s Settings) BorderRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(s.BorderColor),
		G: uint8(s.BorderColor >> 8),
		B: uint8(s.BorderColor >> 16),
		A: 255,
	}
}

// LoadSettings reads path. A missing or unreadable file yields the defaults.
func LoadSettings(path string) Settings {
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("config: cannot open %s: %v", path, err)
		}
		return DefaultSettings()
	}
	defer f.Close()
	return ParseSettings(f)
}

// ParseSettings reads key=value lines on top of the defaults. Lines starting
// with ';' or '#' are comments; unknown keys, malformed lines and values out
// of range are ignored.
func ParseSettings(r io.Reader) Settings {
	s := DefaultSettings()

	var kept strings.Builder
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			continue
		}
		if !settingLine.MatchString(line) {
			log.Printf("config: ignoring malformed line %q", line)
			continue
		}
		kept.WriteString(line)
		kept.WriteByte('\n')
	}

	values, err := godotenv.Parse(strings.NewReader(kept.String()))
	if err != nil {
		log.Printf("config: cannot parse settings: %v", err)
		return s
	}

	for key, raw := range values {
		// Decimal only: a leading zero is padding, not an octal prefix.
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			log.Printf("config: ignoring %s=%q: %v", key, raw, err)
			continue
		}
		s.apply(strings.ToLower(key), int(n))
	}
	if s.ZoomMinFactor > s.ZoomMaxFactor {
		d := DefaultSettings()
		s.ZoomMinFactor, s.ZoomMaxFactor = d.ZoomMinFactor, d.ZoomMaxFactor
	}
	return s
}

func (s *Settings) apply(key string, v int) {
	inRange := func(lo, hi int) bool {
		if v < lo || v > hi {
			log.Printf("config: %s=%d outside [%d,%d], keeping %s default", key, v, lo, hi, key)
			return false
		}
		return true
	}
	switch key {
	case keyOverlayOpacity:
		if inRange(0, 255) {
			s.OverlayOpacity = v
		}
	case keyZoomMinFactor:
		if inRange(10, 1000) {
			s.ZoomMinFactor = v
		}
	case keyZoomMaxFactor:
		if inRange(10, 1000) {
			s.ZoomMaxFactor = v
		}
	case keyCursorBlink:
		if inRange(50, 5000) {
			s.CursorBlinkMs = v
		}
	case keyBorderThickness:
		if inRange(1, 50) {
			s.BorderThickness = v
		}
	case keyBorderColor:
		if inRange(0, 0xFFFFFF) {
			s.BorderColor = v
		}
	case keyHotkeyEnabled:
		s.HotkeyEnabled = v != 0
	}
}

// WriteSettings writes s in the INI layout LoadSettings reads.
func WriteSettings(w io.Writer, s Settings) error {
	hotkey := 0
	if s.HotkeyEnabled {
		hotkey = 1
	}
	_, err := fmt.Fprintf(w, `; Screen Highlighter Configuration File
; Lines starting with ';' are comments

%s=%d
%s=%d
%s=%d
%s=%d
%s=%d
%s=%d
%s=%d
`,
		keyOverlayOpacity, s.OverlayOpacity,
		keyZoomMinFactor, s.ZoomMinFactor,
		keyZoomMaxFactor, s.ZoomMaxFactor,
		keyCursorBlink, s.CursorBlinkMs,
		keyBorderThickness, s.BorderThickness,
		keyBorderColor, s.BorderColor,
		keyHotkeyEnabled, hotkey,
	)
	return err
}

// SaveSettings writes s to path, replacing any existing file.
func SaveSettings(path string, s Settings) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", path, err)
	}
	if err := WriteSettings(f, s); err != nil {
		f.Close()
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return f.Close()
}

// EnsureSettingsFile writes the defaults to path when no file exists yet.
func EnsureSettingsFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return SaveSettings(path, DefaultSettings())
}
