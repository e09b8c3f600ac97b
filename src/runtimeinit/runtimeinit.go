package runtimeinit

import (
	"fmt"
	"log"

	"screen-highlighter/src/clipboard"
	"screen-highlighter/src/config"
	"screen-highlighter/src/notification"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(bool)
	// ShowBlockingErrors reports fatal startup problems in a dialog as well
	// as in the returned error.
	ShowBlockingErrors bool

	initClipboard func() error
}

// Runtime is what the resident and one-shot commands need after startup.
type Runtime struct {
	Config    *config.Config
	Clipboard clipboard.Board
}

func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		err = fmt.Errorf("failed to load configuration: %w", err)
		if opts.ShowBlockingErrors {
			notification.ShowBlockingError("Screen Highlighter", err.Error())
		}
		return nil, err
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}

	initClipboard := opts.initClipboard
	if initClipboard == nil {
		initClipboard = clipboard.Init
	}
	var board clipboard.Board
	if err := initClipboard(); err != nil {
		// Copy and paste keep working inside the overlay; nothing reaches
		// other applications.
		log.Printf("clipboard unavailable, using in-process clipboard: %v", err)
		board = clipboard.NewMemory()
	} else {
		board = clipboard.NewSystem()
	}

	log.Printf("Settings file: %s", cfg.SettingsPath)
	log.Printf("Screenshot directory: %s", cfg.OutputDir)
	return &Runtime{Config: cfg, Clipboard: board}, nil
}
