package overlay

import (
	"context"

	"screen-highlighter/src/config"
)

// Host shows one overlay session and blocks until the user leaves it.
// Calls must not overlap; the resident event loop runs at most one at a time.
// It returns nil when the session ended normally, including by Escape.
type Host interface {
	Run(ctx context.Context, settings config.Settings) error
}

// HostFunc adapts a function to Host.
type HostFunc func(ctx context.Context, settings config.Settings) error

func (f HostFunc) Run(ctx context.Context, settings config.Settings) error { return f(ctx, settings) }
