// Package logger implements a logging adapter using log/slog with a charmbracelet/log handler.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
	"go.trai.ch/mpm/internal/core/domain"
	"go.trai.ch/zerr"
)

// Logger implements ports.Logger using log/slog.
type Logger struct {
	mu     sync.RWMutex
	logger *slog.Logger
	output io.Writer
	level  domain.LogLevel
}

// New creates a new Logger writing informational messages and above to stderr.
func New() *Logger {
	return NewWithLevel(os.Stderr, domain.LogLevelInfo)
}

// NewWithLevel creates a new Logger writing to w at the given level.
func NewWithLevel(w io.Writer, level domain.LogLevel) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{
		logger: slog.New(newHandler(w, level)),
		output: w,
		level:  level,
	}
}

func newHandler(w io.Writer, level domain.LogLevel) slog.Handler {
	return charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.Level(level),
		ReportTimestamp: level == domain.LogLevelDebug,
		TimeFormat:      time.TimeOnly,
	})
}

// SetOutput updates the logger's output destination.
// If w is nil, os.Stderr is used.
func (l *Logger) SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
	l.logger = slog.New(newHandler(w, l.level))
}

// SetLevel updates the minimum level that is written.
func (l *Logger) SetLevel(level domain.LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.logger = slog.New(newHandler(l.output, level))
}

// Slog returns the underlying slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.logger
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.Slog().Debug(msg, args...)
}

// Info logs an informational message.
func (l *Logger) Info(msg string, args ...any) {
	l.Slog().Info(msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.Slog().Warn(msg, args...)
}

// Error logs an error with its zerr metadata as structured fields.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}
	zerr.Log(context.Background(), l.Slog(), err)
}
