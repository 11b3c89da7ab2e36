// Package logger provides leveled logging for the devhost CLI.
//
// Diagnostics go to stderr, separate from the user-facing output written by
// the output package, so --verbose never corrupts --json output. Rendering is
// done by charmbracelet/log with bracketed level labels styled through
// lipgloss.
//
// # Log Levels
//
// Four levels are supported, in order of severity: Debug, Info, Warn, Error.
// By default only Warn and Error are shown; Init(true) enables everything.
//
// # Usage
//
//	logger.Debug("Loading config from %s", path)
//	logger.Warn("hosts update failed, vhost kept: %v", err)
//
//	logger.InfoFields("route added", map[string]interface{}{
//	    "op":       opID,
//	    "hostname": "dev.local",
//	})
//
// # Output Format
//
//	2026-02-03 10:30:45 [DEBUG] Loading configuration
//	2026-02-03 10:30:45 [INFO] route added hostname=dev.local op=5f0c...
//
// # Audit File
//
// SetFile attaches a rotating audit log (lumberjack) that records Info and
// above regardless of console verbosity. Every mutation of the vhost file or
// the hosts table is logged there with its operation id.
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timeFormat = "2006-01-02 15:04:05"

// Level represents a logging severity level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level.
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

func (l Level) charm() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelInfo:
		return log.InfoLevel
	case LevelWarn:
		return log.WarnLevel
	default:
		return log.ErrorLevel
	}
}

// Logger handles leveled logging to the console and an optional audit file.
type Logger struct {
	level   Level
	console *log.Logger
	audit   *log.Logger
	file    *lumberjack.Logger
	mu      sync.Mutex
}

// Global logger instance.
var std = newLogger(os.Stderr, LevelWarn)

func newLogger(w io.Writer, level Level) *Logger {
	return &Logger{
		level:   level,
		console: newCharm(w, level),
	}
}

func newCharm(w io.Writer, level Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
		Level:           level.charm(),
	})
	l.SetStyles(levelStyles())
	return l
}

func levelStyles() *log.Styles {
	styles := log.DefaultStyles()
	colors := map[Level]string{
		LevelDebug: "63",
		LevelInfo:  "86",
		LevelWarn:  "192",
		LevelError: "204",
	}
	for _, lvl := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		styles.Levels[lvl.charm()] = lipgloss.NewStyle().
			SetString("[" + lvl.String() + "]").
			Bold(true).
			Foreground(lipgloss.Color(colors[lvl]))
	}
	return styles
}

// Init initializes the global logger with the specified verbosity.
// When verbose is true, Debug and Info levels are enabled.
// When verbose is false, only Warn and Error are shown.
func Init(verbose bool) {
	if verbose {
		SetLevel(LevelDebug)
	} else {
		SetLevel(LevelWarn)
	}
}

// SetLevel sets the minimum console log level.
func SetLevel(level Level) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.level = level
	std.console.SetLevel(level.charm())
}

// SetOutput redirects console logging. A nil writer restores stderr.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	std.mu.Lock()
	defer std.mu.Unlock()
	std.console = newCharm(w, std.level)
}

// GetLevel returns the current console log level.
func GetLevel() Level {
	std.mu.Lock()
	defer std.mu.Unlock()
	return std.level
}

// SetFile attaches a size-rotated audit log at path. An empty path detaches
// and closes any current audit file.
func SetFile(path string) error {
	std.mu.Lock()
	defer std.mu.Unlock()

	if std.file != nil {
		_ = std.file.Close()
		std.file, std.audit = nil, nil
	}
	if path == "" {
		return nil
	}

	std.file = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     30, // days
	}
	std.audit = newCharm(std.file, LevelInfo)
	std.audit.SetFormatter(log.LogfmtFormatter)
	return nil
}

// Close flushes and detaches the audit file, if any.
func Close() error {
	return SetFile("")
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.emit(level, fmt.Sprintf(format, args...))
}

func (l *Logger) logFields(level Level, msg string, fields map[string]interface{}) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	keyvals := make([]interface{}, 0, len(keys)*2)
	for _, k := range keys {
		keyvals = append(keyvals, k, fields[k])
	}
	l.emit(level, msg, keyvals...)
}

func (l *Logger) emit(level Level, msg string, keyvals ...interface{}) {
	l.mu.Lock()
	targets := []*log.Logger{l.console}
	if l.audit != nil {
		targets = append(targets, l.audit)
	}
	l.mu.Unlock()

	for _, t := range targets {
		switch level {
		case LevelDebug:
			t.Debug(msg, keyvals...)
		case LevelInfo:
			t.Info(msg, keyvals...)
		case LevelWarn:
			t.Warn(msg, keyvals...)
		default:
			t.Error(msg, keyvals...)
		}
	}
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) {
	std.log(LevelDebug, format, args...)
}

// Info logs an informational message.
func Info(format string, args ...interface{}) {
	std.log(LevelInfo, format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	std.log(LevelWarn, format, args...)
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	std.log(LevelError, format, args...)
}

// InfoFields logs an informational message with structured fields.
func InfoFields(msg string, fields map[string]interface{}) {
	std.logFields(LevelInfo, msg, fields)
}

// WarnFields logs a warning message with structured fields.
func WarnFields(msg string, fields map[string]interface{}) {
	std.logFields(LevelWarn, msg, fields)
}

// ErrorFields logs an error message with structured fields.
func ErrorFields(msg string, fields map[string]interface{}) {
	std.logFields(LevelError, msg, fields)
}
