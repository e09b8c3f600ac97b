package hotkey

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// DefaultCombo opens the overlay when no other combination is configured.
const DefaultCombo = "Shift+Alt+X"

// Listen hooks the keyboard globally and calls activate each time every key
// of combo is held down together. It returns once the hook is installed;
// the hook is removed when ctx is cancelled.
func Listen(ctx context.Context, combo string, activate func()) error {
	m, err := newMatcher(combo)
	if err != nil {
		return err
	}
	log.Printf("hotkey: listening for %s", combo)

	evChan := gohook.Start()
	if evChan == nil {
		return fmt.Errorf("hotkey: gohook.Start returned nil channel")
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey goroutine: %v", r)
			}
		}()
		for ev := range evChan {
			if ev.Kind != gohook.KeyDown && ev.Kind != gohook.KeyUp {
				continue
			}
			if m.feed(ev.Kind == gohook.KeyDown, ev.Rawcode) {
				log.Printf("hotkey: %s pressed", combo)
				if activate != nil {
					activate()
				}
			}
		}
		log.Printf("hotkey: event channel closed")
	}()

	go func() {
		<-ctx.Done()
		gohook.End()
	}()
	return nil
}

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

// matcher tracks which keys of a combination are down.
type matcher struct {
	mu   sync.Mutex
	keys []keyState
}

func newMatcher(combo string) (*matcher, error) {
	m := &matcher{}
	for _, name := range parseHotkey(combo) {
		codes := keyNameToRawcodes(name)
		if len(codes) == 0 {
			return nil, fmt.Errorf("hotkey: cannot map key %q in %q", name, combo)
		}
		m.keys = append(m.keys, keyState{name: name, rawcodes: codes})
	}
	if len(m.keys) == 0 {
		return nil, fmt.Errorf("hotkey: no keys in %q", combo)
	}
	return m, nil
}

// feed records one key transition and reports whether it completed the
// combination. Activation resets the state so holding the keys fires once.
func (m *matcher) feed(down bool, rawcode uint16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.keys {
		for _, c := range m.keys[i].rawcodes {
			if c == rawcode {
				m.keys[i].pressed = down
			}
		}
	}
	if !down {
		return false
	}
	for _, k := range m.keys {
		if !k.pressed {
			return false
		}
	}
	for i := range m.keys {
		m.keys[i].pressed = false
	}
	return true
}

// parseHotkey converts a hotkey string like "Shift+Alt+X" to normalized key names
func parseHotkey(combo string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(combo), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			part = "ctrl"
		case "win", "super":
			part = "cmd"
		}
		keys = append(keys, part)
	}
	return keys
}

var namedKeys = map[string][]uint16{
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN
	"win":   {91, 92},
	"super": {91, 92},

	"space":     {32},
	"enter":     {13},
	"return":    {13},
	"esc":       {27},
	"escape":    {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"del":       {46},
	"insert":    {45},
	"ins":       {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33},
	"pgup":      {33},
	"pagedown":  {34},
	"pgdn":      {34},
	"left":      {37},
	"up":        {38},
	"right":     {39},
	"down":      {40},
}

// keyNameToRawcodes maps a key name to its Windows virtual key codes. Modifiers
// map to both their left and right variants.
func keyNameToRawcodes(name string) []uint16 {
	name = strings.ToLower(strings.TrimSpace(name))
	if codes, ok := namedKeys[name]; ok {
		return codes
	}
	if len(name) == 1 {
		switch c := name[0]; {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c-'a') + 65}
		case c >= '0' && c <= '9':
			return []uint16{uint16(c-'0') + 48}
		}
	}
	if strings.HasPrefix(name, "f") {
		if n, err := strconv.Atoi(name[1:]); err == nil && n >= 1 && n <= 24 {
			return []uint16{uint16(111 + n)} // VK_F1 is 112
		}
	}
	log.Printf("WARNING: Unknown key name '%s', cannot map to rawcode", name)
	return nil
}
