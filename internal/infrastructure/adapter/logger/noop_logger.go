package logger

import (
	"sync"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
)

// NoopLogger discards every record. Useful for tests or when logging is disabled.
type NoopLogger struct {
	level core.LogLevel
}

// NewNoopLogger creates a new no-op logger
func NewNoopLogger() core.Logger {
	return &NoopLogger{level: core.LogLevelInfo}
}

func (l *NoopLogger) SetLevel(level core.LogLevel)           { l.level = level }
func (l *NoopLogger) GetLevel() core.LogLevel                { return l.level }
func (l *NoopLogger) Debug(message string, _ map[string]any) {}
func (l *NoopLogger) Info(message string, _ map[string]any)  {}
func (l *NoopLogger) Warn(message string, _ map[string]any)  {}
func (l *NoopLogger) Error(message string, _ map[string]any) {}
func (l *NoopLogger) Flush() error                           { return nil }

// Entry is a record kept by MemoryLogger
type Entry struct {
	Level   core.LogLevel
	Message string
	Fields  map[string]any
}

// MemoryLogger keeps every record at or above its level in memory
type MemoryLogger struct {
	mu      sync.Mutex
	level   core.LogLevel
	entries []Entry
}

// NewMemoryLogger creates a logger recording from debug level up
func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{level: core.LogLevelDebug}
}

func (l *MemoryLogger) SetLevel(level core.LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *MemoryLogger) GetLevel() core.LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *MemoryLogger) record(level core.LogLevel, message string, fields map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	l.entries = append(l.entries, Entry{Level: level, Message: message, Fields: fields})
}

func (l *MemoryLogger) Debug(message string, fields map[string]any) {
	l.record(core.LogLevelDebug, message, fields)
}

func (l *MemoryLogger) Info(message string, fields map[string]any) {
	l.record(core.LogLevelInfo, message, fields)
}

func (l *MemoryLogger) Warn(message string, fields map[string]any) {
	l.record(core.LogLevelWarn, message, fields)
}

func (l *MemoryLogger) Error(message string, fields map[string]any) {
	l.record(core.LogLevelError, message, fields)
}

func (l *MemoryLogger) Flush() error { return nil }

// Entries returns a copy of the recorded entries
func (l *MemoryLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Messages returns the recorded messages at level
func (l *MemoryLogger) Messages(level core.LogLevel) []string {
	var out []string
	for _, e := range l.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}
