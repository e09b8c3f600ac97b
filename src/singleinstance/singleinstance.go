package singleinstance

import (
	"context"
	"fmt"
	"strings"
)

// Command is what a second launch asks the resident instance to do.
type Command string

const (
	CmdActivate Command = "ACTIVATE"
	CmdSettings Command = "SETTINGS"
	CmdExit     Command = "EXIT"
)

// ParseCommand reads one request line. Unknown commands are rejected.
func ParseCommand(line string) (Command, error) {
	c := Command(strings.ToUpper(strings.TrimSpace(line)))
	switch c {
	case CmdActivate, CmdSettings, CmdExit:
		return c, nil
	}
	return "", fmt.Errorf("singleinstance: unknown command %q", strings.TrimSpace(line))
}

// Server owns the loopback endpoint and hands accepted commands to the
// resident event loop.
type Server interface {
	// Start binds the first port of the configured range and accepts clients.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection as a Conn, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn is one client connection carrying a single command.
type Conn interface {
	Command() Command
	RespondSuccess(text string) error
	RespondError(msg string) error
	Close() error
}

// Client delegates a command to a resident instance.
type Client interface {
	// Send scans the port range for a resident and delivers cmd. When no
	// resident answers it returns delegated=false, err=nil.
	Send(ctx context.Context, cmd Command) (delegated bool, err error)
}

// NewServer returns TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns TCP implementation.
func NewClient() Client { return newTcpClient() }
