//go:build windows

package gui

import (
	"fmt"
	"image"
	"os"
	"syscall"

	"github.com/lxn/win"
)

var (
	user32DLL                    = syscall.NewLazyDLL("user32.dll")
	procAllowSetForegroundWindow = user32DLL.NewProc("AllowSetForegroundWindow")
)

// raiseWindow turns the overlay window into a borderless topmost popup that
// covers the virtual screen, and gives it the keyboard focus.
func raiseWindow(title string, bounds image.Rectangle) error {
	hwnd := win.FindWindow(nil, syscall.StringToUTF16Ptr(title))
	if hwnd == 0 {
		return fmt.Errorf("overlay window %q not found", title)
	}

	style := uint32(win.WS_POPUP | win.WS_VISIBLE)
	win.SetWindowLong(hwnd, win.GWL_STYLE, int32(style))
	exStyle := uint32(win.GetWindowLong(hwnd, win.GWL_EXSTYLE)) | win.WS_EX_TOPMOST
	win.SetWindowLong(hwnd, win.GWL_EXSTYLE, int32(exStyle))

	if !win.SetWindowPos(hwnd, win.HWND_TOPMOST,
		int32(bounds.Min.X), int32(bounds.Min.Y), int32(bounds.Dx()), int32(bounds.Dy()),
		win.SWP_SHOWWINDOW|win.SWP_FRAMECHANGED) {
		return fmt.Errorf("SetWindowPos failed")
	}

	procAllowSetForegroundWindow.Call(uintptr(os.Getpid()))
	win.SetForegroundWindow(hwnd)
	win.BringWindowToTop(hwnd)
	win.SetFocus(hwnd)
	return nil
}
