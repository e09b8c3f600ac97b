//go:build !windows

package gui

import "image"

// raiseWindow is a no-op where the window manager decides placement.
func raiseWindow(title string, bounds image.Rectangle) error {
	return nil
}
