package textbuf

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	markerPrefix = "[IMAGE_"
	markerSuffix = "]"

	// ErrorToken is inserted in place of an image that could not be pasted.
	ErrorToken = "[ERROR IMAGE]"
)

// Marker returns the inline token that references images[i].
func Marker(i int) string {
	return fmt.Sprintf("%s%d%s", markerPrefix, i, markerSuffix)
}

// parseMarker looks for an image token in one line of text. isMarker reports
// whether the line carries the token prefix at all; ok reports whether a
// non-negative index could be read from it.
func parseMarker(line string) (idx int, isMarker, ok bool) {
	start := strings.Index(line, markerPrefix)
	if start < 0 {
		return 0, false, false
	}
	rest := line[start+len(markerPrefix):]
	end := strings.Index(rest, markerSuffix)
	if end < 0 {
		return 0, true, false
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil || n < 0 {
		return 0, true, false
	}
	return n, true, true
}
