package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Func is a plain message sink, for callers that hand the client a
// print-style function instead of a zerolog logger.
type Func func(msg string)

// FromFunc returns a logger whose events are rendered to a single line and
// passed to fn. A nil fn yields a no-op logger.
func FromFunc(fn Func) zerolog.Logger {
	if fn == nil {
		return zerolog.Nop()
	}
	return zerolog.New(funcWriter{fn: fn}).Level(zerolog.GlobalLevel())
}

// funcWriter renders zerolog's JSON events as "LEVEL message key=value ...".
type funcWriter struct {
	fn Func
}

// Write implements io.Writer. zerolog calls Write once per event.
func (w funcWriter) Write(p []byte) (int, error) {
	var event map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(p), &event); err != nil {
		w.fn(strings.TrimSpace(string(p)))
		return len(p), nil
	}
	w.fn(formatEvent(event))
	return len(p), nil
}

func formatEvent(event map[string]any) string {
	var b strings.Builder

	if level, ok := event[zerolog.LevelFieldName].(string); ok {
		b.WriteString(strings.ToUpper(level))
		b.WriteByte(' ')
	}
	if msg, ok := event[zerolog.MessageFieldName].(string); ok {
		b.WriteString(msg)
	}

	keys := make([]string, 0, len(event))
	for k := range event {
		switch k {
		case zerolog.LevelFieldName, zerolog.MessageFieldName, zerolog.TimestampFieldName:
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, event[k])
	}
	return b.String()
}
