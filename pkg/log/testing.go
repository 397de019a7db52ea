package log

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-json-experiment/json"
)

// TestLogger keeps records in memory as JSON lines so tests can check what a
// pipeline step or experiment reported. Loggers derived with With share the
// buffer and level of their parent.
type TestLogger struct {
	shared *testSink
	fields map[string]any
}

type testSink struct {
	mu    sync.Mutex
	buf   *bytes.Buffer
	level Level
}

// NewTestLogger returns a logger that drops records below level, and the
// buffer it writes to.
//
//	logger, buf := log.NewTestLogger(log.LevelDebug)
func NewTestLogger(level Level) (*TestLogger, *bytes.Buffer) {
	sink := &testSink{buf: &bytes.Buffer{}, level: level}
	return &TestLogger{shared: sink, fields: map[string]any{}}, sink.buf
}

func (t *TestLogger) Debug(msg string, fields ...any) { t.write(LevelDebug, msg, fields) }
func (t *TestLogger) Info(msg string, fields ...any)  { t.write(LevelInfo, msg, fields) }
func (t *TestLogger) Warn(msg string, fields ...any)  { t.write(LevelWarn, msg, fields) }

// Error stores a leading error value under ErrAttrKey, as the zerolog logger does.
func (t *TestLogger) Error(msg string, fields ...any) {
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			fields = append([]any{ErrAttrKey, err}, fields[1:]...)
		}
	}
	t.write(LevelError, msg, fields)
}

func (t *TestLogger) With(fields ...any) Logger {
	merged := make(map[string]any, len(t.fields)+len(fields)/2)
	for k, v := range t.fields {
		merged[k] = v
	}
	putFields(merged, fields)
	return &TestLogger{shared: t.shared, fields: merged}
}

func (t *TestLogger) Enabled(_ context.Context, level Level) bool {
	t.shared.mu.Lock()
	defer t.shared.mu.Unlock()
	return level >= t.shared.level
}

// SetLevel changes the threshold for this logger and everything derived from it.
func (t *TestLogger) SetLevel(level Level) {
	t.shared.mu.Lock()
	t.shared.level = level
	t.shared.mu.Unlock()
}

func (t *TestLogger) write(level Level, msg string, fields []any) {
	if !t.Enabled(context.Background(), level) {
		return
	}
	record := map[string]any{"level": level.String(), "message": msg}
	for k, v := range t.fields {
		record[k] = v
	}
	putFields(record, fields)

	line, err := json.Marshal(record)
	if err != nil {
		line = []byte(fmt.Sprintf(`{"level":%q,"message":%q}`, level.String(), msg))
	}

	t.shared.mu.Lock()
	defer t.shared.mu.Unlock()
	t.shared.buf.Write(line)
	t.shared.buf.WriteByte('\n')
}

func putFields(dst map[string]any, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		if err, ok := fields[i+1].(error); ok {
			dst[key] = err.Error()
			continue
		}
		dst[key] = fields[i+1]
	}
}

// GetLogEntries decodes every captured record.
func (t *TestLogger) GetLogEntries() ([]map[string]any, error) {
	t.shared.mu.Lock()
	raw := t.shared.buf.String()
	t.shared.mu.Unlock()

	var entries []map[string]any
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (t *TestLogger) ContainsMessage(message string) bool {
	entries, err := t.GetLogEntries()
	if err != nil {
		return false
	}
	for _, e := range entries {
		if m, _ := e["message"].(string); strings.Contains(m, message) {
			return true
		}
	}
	return false
}

// ContainsField reports whether a record has key equal to value. Numbers come
// back from JSON as float64.
func (t *TestLogger) ContainsField(key string, value any) bool {
	entries, err := t.GetLogEntries()
	if err != nil {
		return false
	}
	for _, e := range entries {
		if v, ok := e[key]; ok && v == value {
			return true
		}
	}
	return false
}

func (t *TestLogger) Clear() {
	t.shared.mu.Lock()
	t.shared.buf.Reset()
	t.shared.mu.Unlock()
}
