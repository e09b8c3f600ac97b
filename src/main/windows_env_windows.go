//go:build windows

package main

import (
	"log"

	"golang.org/x/sys/windows"
)

var (
	shcore               = windows.NewLazySystemDLL("Shcore.dll")
	user32               = windows.NewLazySystemDLL("user32.dll")
	procSetDpiAwareness  = shcore.NewProc("SetProcessDpiAwareness")
	procSetProcessDPI    = user32.NewProc("SetProcessDPIAware")
	procGetSystemMetrics = user32.NewProc("GetSystemMetrics")
)

const (
	processPerMonitorDPIAware = 2

	smCXScreen        = 0
	smCYScreen        = 1
	smXVirtualScreen  = 76
	smYVirtualScreen  = 77
	smCXVirtualScreen = 78
	smCYVirtualScreen = 79
	smCMonitors       = 80
)

// enableDPIAwareness sets per-monitor DPI awareness so the overlay maps one
// window pixel to one screen pixel on scaled displays.
func enableDPIAwareness() {
	if err := procSetDpiAwareness.Find(); err == nil {
		ret, _, _ := procSetDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		if ret == 0 {
			log.Printf("DPI: Successfully set per-monitor DPI awareness")
		} else {
			log.Printf("DPI: Failed to set per-monitor DPI awareness, error code: %d", ret)
		}
		return
	}

	log.Printf("DPI: Shcore.SetProcessDpiAwareness not available, trying fallback")
	if err := procSetProcessDPI.Find(); err != nil {
		log.Printf("DPI: SetProcessDPIAware not available, no DPI awareness set")
		return
	}
	if ret, _, _ := procSetProcessDPI.Call(); ret != 0 {
		log.Printf("DPI: Successfully set system DPI awareness (fallback)")
	} else {
		log.Printf("DPI: Failed to set system DPI awareness (fallback)")
	}
}

func metric(index int) int32 {
	ret, _, _ := procGetSystemMetrics.Call(uintptr(index))
	return int32(ret)
}

func logMonitorConfiguration() {
	log.Printf("MONITOR: Detected %d monitors", metric(smCMonitors))
	log.Printf("MONITOR: Virtual screen - x:%d y:%d w:%d h:%d",
		metric(smXVirtualScreen), metric(smYVirtualScreen),
		metric(smCXVirtualScreen), metric(smCYVirtualScreen))
	log.Printf("MONITOR: Primary screen - w:%d h:%d", metric(smCXScreen), metric(smCYScreen))
}
