package logger

import (
	"io"
	"log"
	"os"
	"strings"
)

// Level controls which messages a Logger emits
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Logger is a small leveled logger shared by the builder, engine and CLI
type Logger struct {
	level       Level
	debugLogger *log.Logger
	infoLogger  *log.Logger
	errorLogger *log.Logger
}

// New creates a logger writing to w at the given level ("debug", "info" or "error")
func New(w io.Writer, level string) *Logger {
	if w == nil {
		w = os.Stderr
	}

	return &Logger{
		level:       ParseLevel(level),
		debugLogger: log.New(w, "[DEBUG] ", 0),
		infoLogger:  log.New(w, "[INFO] ", 0),
		errorLogger: log.New(w, "[ERROR] ", 0),
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return New(io.Discard, string(LevelError))
}

// ParseLevel maps a level name to a Level, defaulting to info
func ParseLevel(level string) Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Level returns the configured level
func (l *Logger) Level() Level {
	if l == nil {
		return LevelError
	}
	return l.level
}

// Debug logs only when the level is debug
func (l *Logger) Debug(format string, v ...any) {
	if l == nil || l.level != LevelDebug {
		return
	}
	l.debugLogger.Printf(format, v...)
}

// Info logs unless the level is error
func (l *Logger) Info(format string, v ...any) {
	if l == nil || l.level == LevelError {
		return
	}
	l.infoLogger.Printf(format, v...)
}

// Error always logs
func (l *Logger) Error(format string, v ...any) {
	if l == nil {
		return
	}
	l.errorLogger.Printf(format, v...)
}
