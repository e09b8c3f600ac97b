package notification

import (
	"runtime"
	"testing"
)

func TestBeepDoesNotBlock(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("audible on Windows")
	}
	Beep()
}

func TestShowBlockingErrorLogsOffWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("ShowBlockingError opens a modal dialog on Windows")
	}
	ShowBlockingError("title", "message")
	ShowInfo("title", "message")
}
