//go:build !windows

package main

import (
	"log"

	"screen-highlighter/src/screenshot"
)

func enableDPIAwareness() {}

func logMonitorConfiguration() {
	if b, err := screenshot.VirtualBounds(); err == nil {
		log.Printf("MONITOR: Virtual screen - %v", b)
	}
}
