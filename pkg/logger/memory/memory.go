// Package memory provides a logger backend that keeps records in memory.
// It is used by tests that assert on emitted warnings.
package memory

import (
	"strings"
	"sync"
)

// Record is a single captured log call.
type Record struct {
	Level   string
	Message string
	Keyvals []any
}

// MemoryLogger captures every log call it receives.
type MemoryLogger struct {
	mu      sync.Mutex
	records []Record
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (m *MemoryLogger) add(level, message string, keyvals []any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, Record{Level: level, Message: message, Keyvals: keyvals})
}

func (m *MemoryLogger) Log(message string, keyvals ...any)   { m.add("log", message, keyvals) }
func (m *MemoryLogger) Debug(message string, keyvals ...any) { m.add("debug", message, keyvals) }
func (m *MemoryLogger) Info(message string, keyvals ...any)  { m.add("info", message, keyvals) }
func (m *MemoryLogger) Warn(message string, keyvals ...any)  { m.add("warn", message, keyvals) }
func (m *MemoryLogger) Error(message string, keyvals ...any) { m.add("error", message, keyvals) }

// Fatal is recorded like any other level; it does not exit.
func (m *MemoryLogger) Fatal(message string, keyvals ...any) { m.add("fatal", message, keyvals) }

// Records returns a copy of everything captured so far.
func (m *MemoryLogger) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

// Contains reports whether a record with the given level contains substr in its message.
func (m *MemoryLogger) Contains(level, substr string) bool {
	for _, r := range m.Records() {
		if r.Level == level && strings.Contains(r.Message, substr) {
			return true
		}
	}
	return false
}
