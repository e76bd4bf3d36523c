// Package logger provides leveled logging for HireFlow.
//
// Debug output is suppressed unless verbose mode is enabled, keeping
// normal server logs focused on warnings and errors.
package logger

import (
	"log"
	"os"
	"sync/atomic"
)

var (
	verbose atomic.Bool

	stdLog = log.New(os.Stderr, "", log.LstdFlags)
)

// SetVerbose enables or disables debug output.
func SetVerbose(v bool) {
	verbose.Store(v)
}

// Verbose reports whether debug output is enabled.
func Verbose() bool {
	return verbose.Load()
}

// Debug logs a message only when verbose mode is enabled.
func Debug(format string, args ...any) {
	if verbose.Load() {
		stdLog.Printf("DEBUG "+format, args...)
	}
}

// Info logs an informational message.
func Info(format string, args ...any) {
	stdLog.Printf("INFO  "+format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...any) {
	stdLog.Printf("WARN  "+format, args...)
}

// Error logs an error message. Use for failures that need operator
// attention, such as a token rotation that could not be persisted.
func Error(format string, args ...any) {
	stdLog.Printf("ERROR "+format, args...)
}
