package testutil

import (
	"fmt"
	"strings"
	"sync"
)

// Entry is one captured log call.
type Entry struct {
	Level string
	Msg   string
	Args  []any
}

// RecordingLogger captures log calls for assertions.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *RecordingLogger) record(level, msg string, args []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Msg: msg, Args: append([]any(nil), args...)})
}

func (r *RecordingLogger) Debug(msg string, args ...any) { r.record("DEBUG", msg, args) }
func (r *RecordingLogger) Info(msg string, args ...any)  { r.record("INFO", msg, args) }
func (r *RecordingLogger) Warn(msg string, args ...any)  { r.record("WARN", msg, args) }
func (r *RecordingLogger) Error(msg string, args ...any) { r.record("ERROR", msg, args) }

// Entries returns a copy of everything captured so far.
func (r *RecordingLogger) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Messages returns the captured messages in order.
func (r *RecordingLogger) Messages() []string {
	entries := r.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Msg
	}
	return out
}

// Dump renders every entry including its arguments, for leak assertions.
func (r *RecordingLogger) Dump() string {
	var b strings.Builder
	for _, e := range r.Entries() {
		fmt.Fprintf(&b, "%s %s %v\n", e.Level, e.Msg, e.Args)
	}
	return b.String()
}
