// ABOUTME: File-backed diagnostics log for the interactive dashboard
// ABOUTME: Keeps slog and ad-hoc messages off the alt screen

package debuglog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const fileName = "debug.log"

var (
	mu      sync.Mutex
	logFile *os.File
)

// Init opens the debug log under configDir, creating the directory when
// needed. An empty configDir disables logging; Log calls become no-ops
// and Writer returns io.Discard.
func Init(configDir string) error {
	mu.Lock()
	defer mu.Unlock()

	if configDir == "" {
		logFile = nil
		return nil
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(configDir, fileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}

	logFile = f
	return nil
}

// Writer returns the active log file, or io.Discard when logging is
// disabled. TUI startup points slog here so nothing reaches the
// terminal while the alt screen is up.
func Writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()

	if logFile == nil {
		return io.Discard
	}
	return logFile
}

// Close flushes and closes the log file. Safe to call when disabled.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// Logf writes a timestamped line to the debug log
func Logf(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if logFile == nil {
		return
	}
	fmt.Fprintf(logFile, "%s %s\n", time.Now().Format(time.RFC3339), fmt.Sprintf(format, args...))
}

// Errorf records a failure with the operation that produced it
func Errorf(op string, err error) {
	if err == nil {
		return
	}
	Logf("error: %s: %v", op, err)
}
