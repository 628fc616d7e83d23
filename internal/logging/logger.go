// Package logging - logger.go
//
// Thread-safe leveled logging for the navigator. Every message goes to a log
// file (truncated on each startup) and, when enabled, to a colored console sink.
//
// Levels:
//   - DEBUG: perception detail (match misses, coordinates, timings)
//   - INFO: navigation decisions and completed transitions
//   - WARN: refused transitions, overlay assumptions, recoverable faults
//   - ERROR: capture failures, decode faults, fail-safe trips
//
// The package keeps one global Logger so collaborators in every package can log
// without threading a handle through their constructors.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the tag printed in front of each line.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string onto a Level. Unrecognized input yields LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger writes leveled messages to a file and an optional console.
//
// File Behavior:
// The log file is truncated (O_TRUNC) on open so it only ever holds the
// current session.
type Logger struct {
	file    *os.File
	logger  *log.Logger
	console *log.Logger
	min     Level
	mu      sync.Mutex
}

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

var levelColors = map[Level]*color.Color{
	LevelDebug: color.New(color.FgHiBlack),
	LevelInfo:  color.New(color.FgCyan),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed, color.Bold),
}

// New creates a Logger. An empty path disables the file sink; console controls
// the colored stderr sink.
func New(path string, min Level, console bool) (*Logger, error) {
	l := &Logger{min: min}

	if path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
		if err != nil {
			return nil, fmt.Errorf("logging: open %s: %w", path, err)
		}
		l.file = file
		l.logger = log.New(file, "", log.LstdFlags|log.Lmicroseconds)
	}
	if console {
		l.console = log.New(color.Error, "", log.Ltime|log.Lmicroseconds)
	}
	return l, nil
}

// NewWriter creates a Logger writing plain lines to w. Used by tests and by
// callers that want to capture output.
func NewWriter(w io.Writer, min Level) *Logger {
	return &Logger{
		logger: log.New(w, "", 0),
		min:    min,
	}
}

// Init opens the global logger. The previous global logger, if any, is closed.
func Init(path string, min Level, console bool) error {
	l, err := New(path, min, console)
	if err != nil {
		return err
	}
	SetGlobal(l)
	l.Info("Logger initialized (log file cleared)")
	return nil
}

// SetGlobal swaps the global logger.
func SetGlobal(l *Logger) {
	globalMu.Lock()
	prev := globalLogger
	globalLogger = l
	globalMu.Unlock()

	if prev != nil && prev != l {
		prev.Close()
	}
}

// Close closes the global logger.
func Close() {
	globalMu.Lock()
	l := globalLogger
	globalLogger = nil
	globalMu.Unlock()

	if l != nil {
		l.Info("Logger closing")
		l.Close()
	}
}

// SetLevel changes the minimum level of the global logger.
func SetLevel(min Level) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.min = min
		l.mu.Unlock()
	}
}

// Close releases the file sink.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}

func (l *Logger) write(level Level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.min {
		return
	}
	msg := fmt.Sprintf(format, v...)
	if l.logger != nil {
		l.logger.Printf("[%s] %s", level, msg)
	}
	if l.console != nil {
		l.console.Printf("%s %s", levelColors[level].Sprintf("[%s]", level), msg)
	}
}

// Debug logs debug level messages
func (l *Logger) Debug(format string, v ...interface{}) { l.write(LevelDebug, format, v...) }

// Info logs info level messages
func (l *Logger) Info(format string, v ...interface{}) { l.write(LevelInfo, format, v...) }

// Warn logs warning level messages
func (l *Logger) Warn(format string, v ...interface{}) { l.write(LevelWarn, format, v...) }

// Error logs error level messages
func (l *Logger) Error(format string, v ...interface{}) { l.write(LevelError, format, v...) }

func current() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// Debug is a convenience function for debug logging
func Debug(format string, v ...interface{}) {
	if l := current(); l != nil {
		l.Debug(format, v...)
	}
}

// Info is a convenience function for info logging
func Info(format string, v ...interface{}) {
	if l := current(); l != nil {
		l.Info(format, v...)
	}
}

// Warn is a convenience function for warning logging
func Warn(format string, v ...interface{}) {
	if l := current(); l != nil {
		l.Warn(format, v...)
	}
}

// Error is a convenience function for error logging
func Error(format string, v ...interface{}) {
	if l := current(); l != nil {
		l.Error(format, v...)
	}
}
