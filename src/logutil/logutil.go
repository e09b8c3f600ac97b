package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

const (
	logFileName  = "screen_highlighter.log"
	maxSizeBytes = 10 * 1024 * 1024 // 10 MB
	maxArchives  = 3
	maxLogText   = 100
)

// Setup enables file logging with basic size-based rotation (10MB, max 3 files).
// When disabled, logs are discarded to keep the console clean.
func Setup(enableFileLogging bool) {
	SetupAt(".", enableFileLogging)
}

// SetupAt is Setup with the log file placed in dir.
func SetupAt(dir string, enableFileLogging bool) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if !enableFileLogging {
		log.SetOutput(io.Discard)
		return
	}
	base := filepath.Join(dir, logFileName)
	rotateIfNeeded(base)
	f, err := os.OpenFile(base, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		return
	}
	log.SetOutput(&rotatingWriter{f: f, base: base})
}

type rotatingWriter struct {
	f    *os.File
	base string
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	if st, err := w.f.Stat(); err == nil && st.Size()+int64(len(p)) > maxSizeBytes {
		_ = w.f.Close()
		rotate(w.base)
		nf, err := os.OpenFile(w.base, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return 0, err
		}
		w.f = nf
	}
	return w.f.Write(p)
}

func rotateIfNeeded(base string) {
	if st, err := os.Stat(base); err == nil && st.Size() > maxSizeBytes {
		rotate(base)
	}
}

// rotate shifts base -> .1 -> .2 -> .3, discarding the oldest archive.
func rotate(base string) {
	_ = os.Remove(archiveName(base, maxArchives))
	for i := maxArchives - 1; i >= 1; i-- {
		_ = os.Rename(archiveName(base, i), archiveName(base, i+1))
	}
	_ = os.Rename(base, archiveName(base, 1))
}

func archiveName(base string, n int) string { return fmt.Sprintf("%s.%d", base, n) }

// Sanitize shortens user text and escapes control characters so it can be
// logged on one line.
func Sanitize(text string) string {
	r := []rune(text)
	suffix := ""
	if len(r) > maxLogText {
		r = r[:maxLogText]
		suffix = "..."
	}
	var b strings.Builder
	for _, c := range r {
		switch {
		case c == '\n' || c == '\r':
			b.WriteString("\\n")
		case c == '\t':
			b.WriteString("\\t")
		case c < 32 || c == 127:
			b.WriteByte('?')
		default:
			b.WriteRune(c)
		}
	}
	b.WriteString(suffix)
	return b.String()
}
