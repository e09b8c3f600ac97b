//go:build !windows

package tray

import (
	"os/exec"
	"runtime"
)

// explorerPID has nothing to watch outside Windows.
func explorerPID() uint32 { return 0 }

// OpenFile opens path with the desktop's default handler.
func OpenFile(path string) error {
	opener := "xdg-open"
	if runtime.GOOS == "darwin" {
		opener = "open"
	}
	return exec.Command(opener, path).Start()
}
