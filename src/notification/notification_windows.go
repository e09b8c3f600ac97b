//go:build windows

package notification

import (
	"time"

	"golang.org/x/sys/windows"
)

var (
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")
	procBeep = kernel32.NewProc("Beep")
)

func playTone(freq int, d time.Duration) error {
	if err := procBeep.Find(); err != nil {
		return err
	}
	r, _, err := procBeep.Call(uintptr(freq), uintptr(d.Milliseconds()))
	if r == 0 {
		return err
	}
	return nil
}

// ShowBlockingError displays a modal, blocking error dialog and returns after user dismisses it.
func ShowBlockingError(title, message string) {
	titlePtr, _ := windows.UTF16PtrFromString(title)
	msgPtr, _ := windows.UTF16PtrFromString(message)
	windows.MessageBox(0, msgPtr, titlePtr, windows.MB_OK|windows.MB_ICONERROR|windows.MB_SYSTEMMODAL)
}

// ShowInfo displays a modal information dialog.
func ShowInfo(title, message string) {
	titlePtr, _ := windows.UTF16PtrFromString(title)
	msgPtr, _ := windows.UTF16PtrFromString(message)
	windows.MessageBox(0, msgPtr, titlePtr, windows.MB_OK|windows.MB_ICONINFORMATION)
}
