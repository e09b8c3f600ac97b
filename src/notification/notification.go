package notification

import (
	"log"
	"time"
)

const (
	beepFrequency = 2400
	beepDuration  = 800 * time.Millisecond
)

// Beep plays the capture confirmation tone without blocking the caller.
func Beep() {
	go func() {
		if err := playTone(beepFrequency, beepDuration); err != nil {
			log.Printf("notification: beep failed: %v", err)
		}
	}()
}
