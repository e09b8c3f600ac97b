//go:build !windows

package notification

import (
	"log"
	"time"
)

func playTone(freq int, d time.Duration) error {
	log.Printf("notification: beep %dHz for %v", freq, d)
	return nil
}

// ShowBlockingError logs a blocking error message on non-Windows platforms.
func ShowBlockingError(title, message string) {
	log.Printf("%s: %s", title, message)
}

// ShowInfo logs an informational message on non-Windows platforms.
func ShowInfo(title, message string) {
	log.Printf("%s: %s", title, message)
}
