package testutil

import (
	"sync"
)

// Record is one captured log call.
type Record struct {
	Level string
	Msg   string
	Attrs map[string]any
}

// RecordingLogger captures log calls for assertions. It satisfies
// logging.Logger.
type RecordingLogger struct {
	mu      sync.Mutex
	records []Record
}

func (l *RecordingLogger) add(level, msg string, args []any) {
	attrs := make(map[string]any, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		if k, ok := args[i].(string); ok {
			attrs[k] = args[i+1]
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, Record{Level: level, Msg: msg, Attrs: attrs})
}

func (l *RecordingLogger) Debug(msg string, args ...any) { l.add("DEBUG", msg, args) }
func (l *RecordingLogger) Info(msg string, args ...any)  { l.add("INFO", msg, args) }
func (l *RecordingLogger) Warn(msg string, args ...any)  { l.add("WARN", msg, args) }
func (l *RecordingLogger) Error(msg string, args ...any) { l.add("ERROR", msg, args) }

// Records returns a snapshot of captured records.
func (l *RecordingLogger) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Record(nil), l.records...)
}

// Find returns the first record with msg.
func (l *RecordingLogger) Find(msg string) (Record, bool) {
	for _, r := range l.Records() {
		if r.Msg == msg {
			return r, true
		}
	}
	return Record{}, false
}
