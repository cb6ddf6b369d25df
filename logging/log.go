// Package logging provides the single process-wide logger used by every
// lever component. All request handling happens off stdout (stdout carries
// the LSP transport), so diagnostics go to a per-run log file instead.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Logger is the process-wide structured logger. Initialized once by Init.
var Logger *slog.Logger

var logFile *os.File

// LogPath reports the path Init will use for a given language name, without
// opening anything. Exposed so callers can report it in diagnostics.
func LogPath(languageName string) string {
	name := strings.ToLower(languageName)
	if name == "" {
		name = "unknown"
	}
	return filepath.Join(os.TempDir(), "lever-"+name+".log")
}

// Init opens the per-run log file for languageName and installs Logger.
// The file is named lever-<language-name-lowercased>.log in the OS temp
// directory, truncated on every run.
func Init(languageName string) error {
	path := LogPath(languageName)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("logging: open log file: %w", err)
	}
	logFile = f
	Logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return nil
}

// Fatalf logs an error-level message and terminates the process. Reserved
// for unrecoverable startup failures (malformed rule file, unwritable log
// path) - never called from request handling, which must recover and log
// instead of exiting.
func Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if Logger != nil {
		Logger.Error(msg)
	} else {
		fmt.Fprintln(os.Stderr, msg)
	}
	Close()
	os.Exit(1)
}

// Close flushes and closes the log file. Safe to call multiple times.
func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}
