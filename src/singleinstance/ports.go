package singleinstance

import (
	"os"
	"strconv"
)

const (
	defaultPortStart = 49500
	defaultPortEnd   = 49550

	envPortStart = "SINGLEINSTANCE_PORT_START"
	envPortEnd   = "SINGLEINSTANCE_PORT_END"
)

// getPortRange returns the inclusive TCP port range from SINGLEINSTANCE_PORT_START
// and SINGLEINSTANCE_PORT_END, falling back to defaults when unset or invalid
// and clamping to [1024, 65535].
func getPortRange() (int, int) {
	start := envInt(envPortStart, defaultPortStart)
	end := envInt(envPortEnd, defaultPortEnd)
	start = max(start, 1024)
	end = min(end, 65535)
	if end < start {
		start, end = end, start
	}
	return start, end
}

func envInt(name string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(name)); err == nil {
		return n
	}
	return def
}

// GetPortRangeForDebug exposes the current effective port range for logging/debugging.
func GetPortRangeForDebug() (int, int) { return getPortRange() }
