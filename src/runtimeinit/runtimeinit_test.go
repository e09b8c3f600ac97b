package runtimeinit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"screen-highlighter/src/clipboard"
	"screen-highlighter/src/config"
)

func TestBootstrapLoadsSettingsAndLogging(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.ini")
	if err := os.WriteFile(path, []byte("overlay_opacity=90\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENABLE_FILE_LOGGING", "true")

	var logging []bool
	rt, err := Bootstrap(Options{
		LoadOptions:   config.LoadOptions{SettingsPathOverride: path},
		SetupLogging:  func(on bool) { logging = append(logging, on) },
		initClipboard: func() error { return nil },
	})
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if len(logging) != 1 || !logging[0] {
		t.Errorf("SetupLogging calls = %v", logging)
	}
	if rt.Config.SettingsPath != path || rt.Config.Settings.OverlayOpacity != 90 {
		t.Errorf("config = %+v", rt.Config)
	}
	if _, ok := rt.Clipboard.(*clipboard.System); !ok {
		t.Errorf("clipboard = %T, want *clipboard.System", rt.Clipboard)
	}
}

func TestBootstrapFallsBackToMemoryClipboard(t *testing.T) {
	rt, err := Bootstrap(Options{
		LoadOptions:   config.LoadOptions{SettingsPathOverride: filepath.Join(t.TempDir(), "none.ini")},
		initClipboard: func() error { return errors.New("no display") },
	})
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if _, ok := rt.Clipboard.(*clipboard.Memory); !ok {
		t.Fatalf("clipboard = %T, want *clipboard.Memory", rt.Clipboard)
	}
	if rt.Config.Settings != config.DefaultSettings() {
		t.Errorf("missing file should give defaults, got %+v", rt.Config.Settings)
	}
}
