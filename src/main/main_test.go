package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	"screen-highlighter/src/region"
	"screen-highlighter/src/screenshot"
	"screen-highlighter/src/singleinstance"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes long single dash flags",
			in:   []string{"screen-highlighter", "-activate", "-config", "/tmp/x.ini"},
			out:  []string{"screen-highlighter", "--activate", "--config", "/tmp/x.ini"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"screen-highlighter", "capture", "-rect=1,2,30,40", "-out=/tmp"},
			out:  []string{"screen-highlighter", "capture", "--rect=1,2,30,40", "--out=/tmp"},
		},
		{
			name: "Leaves other flags unchanged",
			in:   []string{"screen-highlighter", "--quit", "-h", "--other"},
			out:  []string{"screen-highlighter", "--quit", "-h", "--other"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLegacyArgs(tt.in)
			if len(got) != len(tt.out) {
				t.Fatalf("Expected len=%d, got %d", len(tt.out), len(got))
			}
			for i := range got {
				if got[i] != tt.out[i] {
					t.Fatalf("Expected arg[%d]=%q, got %q", i, tt.out[i], got[i])
				}
			}
		})
	}
}

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--settings", "--config", "/tmp/x.ini"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if !opts.settings || opts.activate || opts.quit {
		t.Fatalf("unexpected flags %+v", *opts)
	}
	if opts.configPath != "/tmp/x.ini" {
		t.Fatalf("Expected configPath=/tmp/x.ini, got %q", opts.configPath)
	}
	if got := requestedCommand(*opts); got != singleinstance.CmdSettings {
		t.Fatalf("requestedCommand = %q", got)
	}
}

func TestRootRejectsConflictingFlags(t *testing.T) {
	err := runWithArgs([]string{"screen-highlighter", "--activate", "--quit"})
	if err == nil {
		t.Fatal("expected an error for --activate with --quit")
	}
}

func TestRequestedCommand(t *testing.T) {
	tests := []struct {
		opts mainOptions
		want singleinstance.Command
	}{
		{mainOptions{}, ""},
		{mainOptions{activate: true}, singleinstance.CmdActivate},
		{mainOptions{settings: true}, singleinstance.CmdSettings},
		{mainOptions{quit: true}, singleinstance.CmdExit},
	}
	for _, tt := range tests {
		if got := requestedCommand(tt.opts); got != tt.want {
			t.Errorf("requestedCommand(%+v) = %q, want %q", tt.opts, got, tt.want)
		}
	}
}

func TestParseRect(t *testing.T) {
	tests := []struct {
		in      string
		want    region.Rect
		wantErr bool
	}{
		{"10,20,110,220", region.Rect{X1: 10, Y1: 20, X2: 110, Y2: 220}, false},
		{" 300, 40 ,-5,7", region.Rect{X1: 300, Y1: 40, X2: -5, Y2: 7}, false},
		{"1,2,3", region.Rect{}, true},
		{"a,b,c,d", region.Rect{}, true},
		{"", region.Rect{}, true},
	}
	for _, tt := range tests {
		got, err := parseRect(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseRect(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseRect(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

type fakeSender struct {
	delegated bool
	err       error
	got       singleinstance.Command
}

func (f *fakeSender) Send(ctx context.Context, cmd singleinstance.Command) (bool, error) {
	f.got = cmd
	return f.delegated, f.err
}

func TestDelegateCommand(t *testing.T) {
	tests := []struct {
		name    string
		client  *fakeSender
		want    bool
		wantErr bool
	}{
		{"delegated", &fakeSender{delegated: true}, true, false},
		{"no resident", &fakeSender{}, false, false},
		{"resident refused", &fakeSender{delegated: true, err: errors.New("overlay already active")}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := delegateCommand(context.Background(), tt.client, singleinstance.CmdActivate)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if got != tt.want {
				t.Fatalf("delegated = %v, want %v", got, tt.want)
			}
			if tt.client.got != singleinstance.CmdActivate {
				t.Fatalf("sent %q", tt.client.got)
			}
		})
	}
}

type sliceGrabber struct{}

func (sliceGrabber) Grab(r image.Rectangle) (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy())), nil
}

type nopPublisher struct{ n int }

func (p *nopPublisher) WriteImage(image.Image) error { p.n++; return nil }

func TestRunCapture(t *testing.T) {
	dir := t.TempDir()
	pub := &nopPublisher{}
	c := screenshot.NewCapturer(sliceGrabber{}, pub, screenshot.BMPWriter{}, dir)

	var out bytes.Buffer
	if err := runCapture(region.Rect{X1: 50, Y1: 50, X2: 10, Y2: 10}, c, &out); err != nil {
		t.Fatalf("runCapture: %v", err)
	}
	if pub.n != 1 {
		t.Fatalf("clipboard writes = %d", pub.n)
	}
	if path := strings.TrimSpace(out.String()); !strings.HasPrefix(path, dir) || !strings.HasSuffix(path, ".bmp") {
		t.Fatalf("printed path %q", path)
	}

	if err := runCapture(region.Rect{X1: 0, Y1: 0, X2: 3, Y2: 3}, c, &out); !errors.Is(err, screenshot.ErrRegionTooSmall) {
		t.Fatalf("tiny region err = %v", err)
	}
}
