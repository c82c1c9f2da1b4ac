package mocks

import (
	"fmt"
	"sync"

	"github.com/AnthonySaldana/nujob/internal/application/port/output"
)

var _ output.LoggerPort = (*Logger)(nil)

type Entry struct {
	Level   string
	Message string
	Fields  map[string]any
}

// Logger records entries in memory; children share the parent's sink.
type Logger struct {
	sink   *sink
	fields map[string]any
}

type sink struct {
	mu      sync.Mutex
	entries []Entry
}

func NewLogger() *Logger {
	return &Logger{sink: &sink{}, fields: map[string]any{}}
}

func (l *Logger) log(level, msg string, args ...any) {
	fields := make(map[string]any, len(l.fields)+len(args)/2)
	for k, v := range l.fields {
		fields[k] = v
	}
	for i := 0; i+1 < len(args); i += 2 {
		fields[fmt.Sprint(args[i])] = args[i+1]
	}
	l.sink.mu.Lock()
	l.sink.entries = append(l.sink.entries, Entry{Level: level, Message: msg, Fields: fields})
	l.sink.mu.Unlock()
}

func (l *Logger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.log("INFO", msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.log("WARN", msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.log("ERROR", msg, args...) }

func (l *Logger) WithField(key string, value any) output.LoggerPort {
	return l.WithFields(map[string]any{key: value})
}

func (l *Logger) WithFields(fields map[string]any) output.LoggerPort {
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{sink: l.sink, fields: merged}
}

func (l *Logger) Close() error { return nil }

func (l *Logger) Entries() []Entry {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return append([]Entry(nil), l.sink.entries...)
}

// Count returns how many entries were logged at level.
func (l *Logger) Count(level string) int {
	n := 0
	for _, e := range l.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}
