package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log"

	"screen-highlighter/src/config"
	"screen-highlighter/src/hotkey"
	"screen-highlighter/src/overlay"
	"screen-highlighter/src/singleinstance"
	"screen-highlighter/src/tray"
)

// Action is a request posted into the loop from the tray menu.
type Action int

const (
	ActionActivate Action = iota
	ActionSettings
	ActionExit
)

func (a Action) String() string {
	switch a {
	case ActionActivate:
		return "activate"
	case ActionSettings:
		return "settings"
	case ActionExit:
		return "exit"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ErrBusy is reported to remote clients when an overlay is already showing.
var ErrBusy = errors.New("overlay already active")

var errExit = errors.New("exit requested")

// Options wires a Loop to its collaborators. Zero-valued fields fall back to
// the tray package and a TCP single-instance server.
type Options struct {
	Host   overlay.Host
	Config *config.Config
	Server singleinstance.Server

	// OpenSettings shows the settings file to the user.
	OpenSettings func(path string) error
	Tooltip      func(text string)
	About        func(text string)
}

// Loop is the single-threaded coordinator of the resident process. Hotkey
// presses, tray clicks and remote commands all funnel into Run, which starts
// at most one overlay session at a time.
type Loop struct {
	host overlay.Host
	cfg  *config.Config
	srv  singleinstance.Server

	openSettings func(string) error
	tooltip      func(string)
	about        func(string)

	busy           bool
	cancelSession  context.CancelFunc
	sessionDone    chan error
	hotkeyCh       chan struct{}
	actions        chan Action
	defaultTooltip string
}

func New(opts Options) *Loop {
	l := &Loop{
		host:           opts.Host,
		cfg:            opts.Config,
		srv:            opts.Server,
		openSettings:   opts.OpenSettings,
		tooltip:        opts.Tooltip,
		about:          opts.About,
		sessionDone:    make(chan error, 1),
		hotkeyCh:       make(chan struct{}, 4),
		actions:        make(chan Action, 4),
		defaultTooltip: "Screen Highlighter",
	}
	if l.cfg == nil {
		l.cfg = &config.Config{Settings: config.DefaultSettings()}
	}
	if l.srv == nil {
		l.srv = singleinstance.NewServer()
	}
	if l.openSettings == nil {
		l.openSettings = tray.OpenFile
	}
	if l.tooltip == nil {
		l.tooltip = tray.UpdateTooltip
	}
	if l.about == nil {
		l.about = tray.SetAboutExtra
	}
	return l
}

// SetDefaultTooltip optionally sets the tray tooltip shown while idle.
func (l *Loop) SetDefaultTooltip(tt string) { l.defaultTooltip = tt }

func (l *Loop) setBusy(b bool) {
	l.busy = b
	if b {
		l.tooltip("Screen Highlighter: overlay active")
	} else {
		l.tooltip(l.defaultTooltip)
	}
}

// StartHotkey registers the global hotkey and posts presses into the loop.
// Presses are dropped while the settings disable the hotkey.
func (l *Loop) StartHotkey(ctx context.Context, combo string) error {
	if combo == "" {
		return nil
	}
	return hotkey.Listen(ctx, combo, l.pressHotkey)
}

func (l *Loop) pressHotkey() {
	select {
	case l.hotkeyCh <- struct{}{}:
	default:
	}
}

// Post queues a tray action without blocking the caller.
func (l *Loop) Post(a Action) {
	select {
	case l.actions <- a:
	default:
		log.Printf("eventloop: dropping %s, queue full", a)
	}
}

// Run starts the singleinstance server and processes hotkey, tray and client
// requests. It blocks until ctx is cancelled or an exit is requested, and
// returns nil for a requested exit.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.srv.Start(ctx); err != nil {
		return err
	}
	defer l.srv.Close()
	if p := l.srv.Port(); p > 0 {
		log.Printf("Resident listening on 127.0.0.1:%d", p)
		l.about(fmt.Sprintf("Resident TCP port: %d", p))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer l.endSession()

	// Accept loop in background so an open overlay never stalls clients.
	reqCh := make(chan singleinstance.Conn, 4)
	go func() {
		for {
			conn, err := l.srv.Next(ctx)
			if err != nil {
				close(reqCh)
				return
			}
			select {
			case reqCh <- conn:
			case <-ctx.Done():
				_ = conn.Close()
			}
		}
	}()

	for {
		var err error
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.hotkeyCh:
			l.handleHotkey(ctx)
		case a := <-l.actions:
			err = l.handleAction(ctx, a)
		case conn, ok := <-reqCh:
			if !ok {
				return nil
			}
			err = l.handleConn(ctx, conn)
		case res := <-l.sessionDone:
			l.handleSessionDone(res)
		}
		if errors.Is(err, errExit) {
			log.Printf("eventloop: exit requested")
			return nil
		}
	}
}

func (l *Loop) handleHotkey(ctx context.Context) {
	if !l.cfg.Settings.HotkeyEnabled {
		log.Printf("eventloop: hotkey disabled in settings, ignoring")
		return
	}
	if err := l.activate(ctx); err != nil {
		log.Printf("eventloop: hotkey: %v", err)
	}
}

func (l *Loop) handleAction(ctx context.Context, a Action) error {
	log.Printf("eventloop: tray %s", a)
	switch a {
	case ActionActivate:
		if err := l.activate(ctx); err != nil {
			log.Printf("eventloop: tray activate: %v", err)
		}
	case ActionSettings:
		if err := l.showSettings(); err != nil {
			log.Printf("eventloop: settings: %v", err)
		}
	case ActionExit:
		return errExit
	}
	return nil
}

func (l *Loop) handleConn(ctx context.Context, conn singleinstance.Conn) error {
	defer conn.Close()
	cmd := conn.Command()
	log.Printf("eventloop: remote %s", cmd)

	var err error
	switch cmd {
	case singleinstance.CmdActivate:
		err = l.activate(ctx)
	case singleinstance.CmdSettings:
		err = l.showSettings()
	case singleinstance.CmdExit:
		_ = conn.RespondSuccess("exiting")
		return errExit
	default:
		err = fmt.Errorf("unsupported command %q", cmd)
	}

	if err != nil {
		_ = conn.RespondError(err.Error())
		return nil
	}
	_ = conn.RespondSuccess("OK")
	return nil
}

// activate re-reads the settings file and starts an overlay session on its
// own goroutine. The result comes back through sessionDone.
func (l *Loop) activate(ctx context.Context) error {
	if l.busy {
		return ErrBusy
	}
	if l.host == nil {
		return errors.New("no overlay host")
	}

	if l.cfg.SettingsPath != "" {
		l.cfg.ReloadSettings()
	}
	sessCtx, cancel := context.WithCancel(ctx)
	l.cancelSession = cancel
	l.setBusy(true)
	settings := l.cfg.Settings
	host := l.host
	done := l.sessionDone
	go func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in overlay session: %v", r)
				err = fmt.Errorf("overlay panic: %v", r)
			}
			done <- err
		}()
		err = host.Run(sessCtx, settings)
	}()
	return nil
}

func (l *Loop) handleSessionDone(err error) {
	if l.cancelSession != nil {
		l.cancelSession()
		l.cancelSession = nil
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("eventloop: overlay session failed: %v", err)
	} else {
		log.Printf("eventloop: overlay session closed")
	}
	// Presses queued while the overlay was up belong to that session.
	for len(l.hotkeyCh) > 0 {
		<-l.hotkeyCh
	}
	l.setBusy(false)
}

// endSession cancels a running overlay and waits for its host to return.
func (l *Loop) endSession() {
	if !l.busy {
		return
	}
	l.cancelSession()
	l.handleSessionDone(<-l.sessionDone)
}

// showSettings writes the defaults when no settings file exists, reloads it
// and opens it for editing. Edits apply from the next activation.
func (l *Loop) showSettings() error {
	path := l.cfg.SettingsPath
	if path == "" {
		return errors.New("no settings file configured")
	}
	if err := config.EnsureSettingsFile(path); err != nil {
		return err
	}
	l.cfg.ReloadSettings()
	if err := l.openSettings(path); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return nil
}

