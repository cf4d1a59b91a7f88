// ABOUTME: Leveled logging wrapper around slog for the TUI process
// ABOUTME: Writes to a file under the config dir so output never mixes with the alternate screen

package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
)

var (
	logger  atomic.Pointer[slog.Logger]
	leveler slog.LevelVar
)

func init() {
	// Until Init is called, discard everything. The TUI owns the terminal;
	// stray writes to stderr corrupt the alternate screen.
	logger.Store(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// Init routes log output to the given file, creating parent directories.
// Passing an empty path logs to stderr (useful outside the TUI).
func Init(path string, level slog.Level) error {
	leveler.Set(level)

	var w io.Writer = os.Stderr
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		w = f
	}

	logger.Store(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: &leveler})))
	return nil
}

// SetLevel changes the global log level.
func SetLevel(l slog.Level) {
	leveler.Set(l)
}

// Debug logs at debug level with optional slog attrs.
func Debug(msg string, args ...any) {
	logger.Load().Debug(msg, args...)
}

// Info logs at info level with optional slog attrs.
func Info(msg string, args ...any) {
	logger.Load().Info(msg, args...)
}

// Warn logs at warn level with optional slog attrs.
func Warn(msg string, args ...any) {
	logger.Load().Warn(msg, args...)
}

// Error logs at error level with optional slog attrs.
func Error(msg string, args ...any) {
	logger.Load().Error(msg, args...)
}
