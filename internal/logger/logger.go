package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color represents a lipgloss color ID
type Color string

const (
	ColorInfo    Color = "6"   // Cyan (ANSI 36)
	ColorDebug   Color = "248" // Light gray (ANSI 90)
	ColorSuccess Color = "46"  // Bright green (ANSI 32)
	ColorWarning Color = "220" // Yellow/Orange (ANSI 33)
	ColorError   Color = "1"   // Red (ANSI 31)

	ColorDarkGray  Color = "240"
	ColorLightGray Color = "248"
)

// String returns the color ID as a string
func (c Color) String() string {
	return string(c)
}

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
)

var (
	iconDebug   = "⚙"
	iconSuccess = "✓"
	iconWarning = "⚠"
	iconError   = "✗"

	colorDebugStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDebug))
	colorSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess))
	colorWarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarning))
	colorErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
)

// Logger writes leveled, lightly coloured messages to the terminal.
type Logger struct {
	level LogLevel
	out   io.Writer
	err   io.Writer
}

var globalLogger *Logger

// InitLogger initializes the global logger
func InitLogger(level LogLevel) {
	globalLogger = New(level, os.Stdout, os.Stderr)
}

// New creates a logger writing regular output to out and errors to errOut.
func New(level LogLevel, out, errOut io.Writer) *Logger {
	return &Logger{level: level, out: out, err: errOut}
}

// GetLogger returns the global logger instance
func GetLogger() *Logger {
	if globalLogger == nil {
		InitLogger(LogLevelInfo)
	}
	return globalLogger
}

func (l *Logger) write(w io.Writer, prefix, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	if prefix != "" {
		message = prefix + " " + message
	}
	fmt.Fprint(w, message)
	if !strings.HasSuffix(message, "\n") {
		fmt.Fprintln(w)
	}
}

// Info logs an info message
func (l *Logger) Info(format string, args ...any) {
	l.write(l.out, "", format, args...)
}

// Debug logs a debug message (only if log level is debug)
func (l *Logger) Debug(format string, args ...any) {
	if l.level != LogLevelDebug {
		return
	}
	l.write(l.out, colorDebugStyle.Render(iconDebug), format, args...)
}

// Success logs a success message
func (l *Logger) Success(format string, args ...any) {
	l.write(l.out, colorSuccessStyle.Render(iconSuccess), format, args...)
}

// Error logs an error message to stderr
func (l *Logger) Error(format string, args ...any) {
	l.write(l.err, colorErrorStyle.Render(iconError), format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...any) {
	l.write(l.out, colorWarningStyle.Render(iconWarning), format, args...)
}

// Package-level convenience functions that use the global logger

// Info logs an info message using the global logger
func Info(format string, args ...any) {
	GetLogger().Info(format, args...)
}

// Debug logs a debug message using the global logger
func Debug(format string, args ...any) {
	GetLogger().Debug(format, args...)
}

// Success logs a success message using the global logger
func Success(format string, args ...any) {
	GetLogger().Success(format, args...)
}

// Error logs an error message using the global logger
func Error(format string, args ...any) {
	GetLogger().Error(format, args...)
}

// Warning logs a warning message using the global logger
func Warning(format string, args ...any) {
	GetLogger().Warning(format, args...)
}
