package tray

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"screen-highlighter/src/notification"
)

const shellPollInterval = 2 * time.Second

// Config describes the tray icon and what its menu items do. Callbacks run on
// the tray's own goroutine and should only post work elsewhere.
type Config struct {
	Title      string
	Tooltip    string
	OnActivate func()
	OnSettings func()
	OnExit     func()
}

// Icon is the notification-area presence of the resident process.
type Icon struct {
	cfg    Config
	icon   []byte
	ctx    context.Context
	cancel context.CancelFunc
}

var (
	mu          sync.Mutex
	ready       bool
	tooltip     string
	aboutHotkey string
	aboutExtra  string
)

func New(cfg Config) (*Icon, error) {
	icon, err := iconBytes()
	if err != nil {
		return nil, err
	}
	if cfg.Title == "" {
		cfg.Title = "Screen Highlighter"
	}
	mu.Lock()
	if tooltip == "" {
		tooltip = cfg.Tooltip
	}
	mu.Unlock()
	ctx, cancel := context.WithCancel(context.Background())
	return &Icon{cfg: cfg, icon: icon, ctx: ctx, cancel: cancel}, nil
}

// Run shows the icon and blocks until Destroy is called.
func (i *Icon) Run() {
	systray.Run(i.onReady, i.onExit)
}

// Destroy removes the icon and unblocks Run.
func (i *Icon) Destroy() {
	i.cancel()
	systray.Quit()
}

func (i *Icon) onReady() {
	mu.Lock()
	ready = true
	mu.Unlock()
	i.apply()

	mActivate := systray.AddMenuItem("Activate", "Open the highlighter overlay")
	mSettings := systray.AddMenuItem("Settings", "Edit the settings file")
	mAbout := systray.AddMenuItem("About", "About Screen Highlighter")
	systray.AddSeparator()
	mExit := systray.AddMenuItem("Exit", "Quit Screen Highlighter")

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in tray menu goroutine: %v", r)
			}
		}()
		for {
			select {
			case <-mActivate.ClickedCh:
				call(i.cfg.OnActivate)
			case <-mSettings.ClickedCh:
				call(i.cfg.OnSettings)
			case <-mAbout.ClickedCh:
				go notification.ShowInfo("About "+i.cfg.Title, aboutText(i.cfg.Title))
			case <-mExit.ClickedCh:
				call(i.cfg.OnExit)
			case <-i.ctx.Done():
				return
			}
		}
	}()

	go Watch(i.ctx, explorerPID, shellPollInterval, i.apply)
}

func (i *Icon) onExit() {
	mu.Lock()
	ready = false
	mu.Unlock()
	i.cancel()
}

// apply (re)publishes icon, title and tooltip. Called once the tray is up and
// again whenever the desktop shell was restarted.
func (i *Icon) apply() {
	systray.SetIcon(i.icon)
	systray.SetTitle(i.cfg.Title)
	mu.Lock()
	tt := tooltip
	mu.Unlock()
	systray.SetTooltip(tt)
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

// UpdateTooltip changes the tray tooltip. Safe to call before the tray is up.
func UpdateTooltip(tt string) {
	mu.Lock()
	tooltip = tt
	r := ready
	mu.Unlock()
	if r {
		systray.SetTooltip(tt)
	}
}

// SetAboutHotkey records the hotkey shown in the About box.
func SetAboutHotkey(h string) {
	mu.Lock()
	aboutHotkey = h
	mu.Unlock()
}

// SetAboutExtra appends a line to the About box.
func SetAboutExtra(s string) {
	mu.Lock()
	aboutExtra = s
	mu.Unlock()
}

func aboutText(title string) string {
	mu.Lock()
	defer mu.Unlock()
	lines := []string{title, "Select, zoom, annotate and capture screen regions."}
	if aboutHotkey != "" {
		lines = append(lines, fmt.Sprintf("Hotkey: %s", aboutHotkey))
	}
	if aboutExtra != "" {
		lines = append(lines, aboutExtra)
	}
	return strings.Join(lines, "\n")
}

// Watch polls probe for the desktop shell's process id and calls restore
// whenever it changes to a new live process. A zero id means the shell is
// not running, or that the platform cannot tell.
func Watch(ctx context.Context, probe func() uint32, interval time.Duration, restore func()) {
	t := time.NewTicker(interval)
	defer t.Stop()
	last := probe()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		cur := probe()
		if cur == 0 {
			continue
		}
		if last != 0 && cur != last {
			log.Printf("tray: desktop shell restarted (pid %d -> %d), restoring icon", last, cur)
			restore()
		}
		last = cur
	}
}
