package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"

	"screen-highlighter/src/config"
	"screen-highlighter/src/eventloop"
	"screen-highlighter/src/gui"
	"screen-highlighter/src/logutil"
	"screen-highlighter/src/region"
	"screen-highlighter/src/runtimeinit"
	"screen-highlighter/src/screenshot"
	"screen-highlighter/src/singleinstance"
	"screen-highlighter/src/tray"
)

const delegateTimeout = 3 * time.Second

type mainOptions struct {
	activate   bool
	settings   bool
	quit       bool
	configPath string
}

type captureOptions struct {
	rect   string
	outDir string
}

func main() {
	// Ensure DPI awareness before creating any windows or querying metrics
	enableDPIAwareness()

	// The shiny driver must own the main OS thread.
	runtime.LockOSThread()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"screen-highlighter"}
	}

	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screen-highlighter",
		Short:         "Resident screen highlighter: select, zoom, annotate and capture",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(*opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to the settings INI file (highest precedence)")
	cmd.Flags().BoolVar(&opts.activate, "activate", false, "Open the overlay in the running instance")
	cmd.Flags().BoolVar(&opts.settings, "settings", false, "Open the settings file of the running instance")
	cmd.Flags().BoolVar(&opts.quit, "quit", false, "Stop the running instance")
	cmd.MarkFlagsMutuallyExclusive("activate", "settings", "quit")

	cmd.AddCommand(newCaptureCmd(opts))
	return cmd
}

func newCaptureCmd(root *mainOptions) *cobra.Command {
	opts := &captureOptions{}
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture a screen rectangle to the clipboard and a BMP file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseRect(opts.rect)
			if err != nil {
				return err
			}
			rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
				LoadOptions:  config.LoadOptions{SettingsPathOverride: root.configPath},
				SetupLogging: logutil.Setup,
			})
			if err != nil {
				return err
			}
			dir := rt.Config.OutputDir
			if opts.outDir != "" {
				dir = opts.outDir
			}
			c := screenshot.NewCapturer(screenshot.ScreenGrabber{}, rt.Clipboard, screenshot.BMPWriter{}, dir)
			return runCapture(r, c, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.rect, "rect", "", "Rectangle as x1,y1,x2,y2 in desktop coordinates")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "Directory for the BMP file (default: SCREENSHOT_DIR or the executable directory)")
	_ = cmd.MarkFlagRequired("rect")
	return cmd
}

// parseRect reads "x1,y1,x2,y2". The corners may be given in any order.
func parseRect(s string) (region.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return region.Rect{}, fmt.Errorf("rect %q: want x1,y1,x2,y2", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return region.Rect{}, fmt.Errorf("rect %q: %w", s, err)
		}
		v[i] = n
	}
	return region.Rect{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}, nil
}

func runCapture(r region.Rect, c *screenshot.Capturer, out io.Writer) error {
	res := c.Capture(r)
	if !res.Captured {
		return fmt.Errorf("capture failed: %w", res.Err)
	}
	if res.Saved {
		fmt.Fprintln(out, res.Path)
	}
	if !res.Published && !res.Saved {
		return fmt.Errorf("capture could not be delivered: %w", res.Err)
	}
	return nil
}

// requestedCommand maps the root flags to the command for a resident.
func requestedCommand(opts mainOptions) singleinstance.Command {
	switch {
	case opts.activate:
		return singleinstance.CmdActivate
	case opts.settings:
		return singleinstance.CmdSettings
	case opts.quit:
		return singleinstance.CmdExit
	}
	return ""
}

func runRoot(opts mainOptions) error {
	// Load .env early so SINGLEINSTANCE_PORT_* are applied before delegation scan
	_, _ = config.LoadWithOptions(config.LoadOptions{SettingsPathOverride: opts.configPath})

	cmd := requestedCommand(opts)
	probe := cmd
	if probe == "" {
		// A plain second launch brings up the overlay of the first one.
		probe = singleinstance.CmdActivate
	}

	ctx, cancel := context.WithTimeout(context.Background(), delegateTimeout)
	delegated, err := delegateCommand(ctx, singleinstance.NewClient(), probe)
	cancel()
	if err != nil {
		return err
	}
	if delegated {
		return nil
	}
	if cmd == singleinstance.CmdExit {
		return errors.New("no running instance to stop")
	}

	var initial []eventloop.Action
	switch cmd {
	case singleinstance.CmdActivate:
		initial = append(initial, eventloop.ActionActivate)
	case singleinstance.CmdSettings:
		initial = append(initial, eventloop.ActionSettings)
	}
	return runResident(opts, initial)
}

type commandSender interface {
	Send(ctx context.Context, cmd singleinstance.Command) (bool, error)
}

// delegateCommand hands cmd to a running resident. It reports false when no
// resident answered, so the caller becomes the resident instead.
func delegateCommand(ctx context.Context, client commandSender, cmd singleinstance.Command) (bool, error) {
	delegated, err := client.Send(ctx, cmd)
	if err != nil {
		return false, fmt.Errorf("resident rejected %s: %w", cmd, err)
	}
	if delegated {
		log.Printf("Delegated %s to resident", cmd)
	} else {
		log.Printf("No resident detected for %s", cmd)
	}
	return delegated, nil
}

func runResident(opts mainOptions, initial []eventloop.Action) error {
	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:        config.LoadOptions{SettingsPathOverride: opts.configPath},
		SetupLogging:       logutil.Setup,
		ShowBlockingErrors: true,
	})
	if err != nil {
		return err
	}
	cfg := rt.Config
	logMonitorConfiguration()
	log.Printf("Screen Highlighter initialized, hotkey %s (enabled=%v)", cfg.Hotkey, cfg.Settings.HotkeyEnabled)

	var runErr error
	driver.Main(func(s screen.Screen) {
		runErr = serve(s, rt, initial)
	})
	return runErr
}

func serve(s screen.Screen, rt *runtimeinit.Runtime, initial []eventloop.Action) error {
	cfg := rt.Config
	host, err := gui.NewHost(gui.Options{
		Screen:    s,
		Clipboard: rt.Clipboard,
		OutputDir: cfg.OutputDir,
	})
	if err != nil {
		return err
	}

	tooltip := fmt.Sprintf("Screen Highlighter - Press %s to highlight", cfg.Hotkey)
	tray.SetAboutHotkey(cfg.Hotkey)
	loop := eventloop.New(eventloop.Options{Host: host, Config: cfg})
	loop.SetDefaultTooltip(tooltip)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	trayIcon, err := tray.New(tray.Config{
		Title:      "Screen Highlighter",
		Tooltip:    tooltip,
		OnActivate: func() { loop.Post(eventloop.ActionActivate) },
		OnSettings: func() { loop.Post(eventloop.ActionSettings) },
		OnExit:     func() { loop.Post(eventloop.ActionExit) },
	})
	if err != nil {
		log.Printf("tray unavailable: %v", err)
	} else {
		go trayIcon.Run()
		defer trayIcon.Destroy()
	}

	if err := loop.StartHotkey(ctx, cfg.Hotkey); err != nil {
		log.Printf("hotkey unavailable: %v", err)
	}
	for _, a := range initial {
		loop.Post(a)
	}

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("event loop stopped: %w", err)
	}
	log.Printf("Screen Highlighter exiting")
	return nil
}

// normalizeLegacyArgs maps single-dash long flags to the GNU form cobra
// expects.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"activate", "settings", "quit", "config", "rect", "out"} {
			single := "-" + name
			switch {
			case arg == single:
				normalized[i] = "-" + single
			case strings.HasPrefix(arg, single+"="):
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}
