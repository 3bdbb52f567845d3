// Package logger provides verbose logging for geosearch.
// When verbose mode is enabled via the --verbose flag or the log.verbose
// setting, debug messages are printed to stderr to help users follow the
// suggest/select pipeline. Errors are always printed.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Silence discards all output until the returned function restores the
// previous writer.
func Silence() (restore func()) {
	mu.Lock()
	prev := output
	output = io.Discard
	mu.Unlock()
	return func() { SetOutput(prev) }
}

func write(onlyVerbose bool, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if onlyVerbose && !verbose {
		return
	}
	fmt.Fprintf(output, prefix+format+"\n", args...)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(true, "[DEBUG] ", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(true, "[INFO] ", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	write(true, "[WARN] ", format, args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	write(false, "[ERROR] ", format, args...)
}

// Scoped prefixes every message with a component name.
type Scoped struct {
	component string
}

// For returns a logger for a named component, e.g. "offline".
func For(component string) Scoped {
	return Scoped{component: component}
}

// Debug prints a component message if verbose mode is enabled.
func (s Scoped) Debug(format string, args ...any) {
	write(true, "[DEBUG] "+s.component+": ", format, args...)
}

// Info prints a component message if verbose mode is enabled.
func (s Scoped) Info(format string, args ...any) {
	write(true, "[INFO] "+s.component+": ", format, args...)
}

// Warn prints a component warning if verbose mode is enabled.
func (s Scoped) Warn(format string, args ...any) {
	write(true, "[WARN] "+s.component+": ", format, args...)
}

// Error prints a component error regardless of verbose mode.
func (s Scoped) Error(format string, args ...any) {
	write(false, "[ERROR] "+s.component+": ", format, args...)
}
