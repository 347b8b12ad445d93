package logs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"exifatlas/internal/logging"
)

// Entry is one decoded JSON log line.
type Entry struct {
	Time      string
	Level     slog.Level
	Message   string
	Component string
	RunID     string
	EventType string
	Fields    map[string]any
}

// ParseEntry decodes a line produced by the JSON handler. ok is false for
// anything that is not a JSON object.
func ParseEntry(line string) (Entry, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, false
	}
	entry := Entry{
		Time:      stringField(raw, "ts"),
		Level:     ParseLevel(stringField(raw, "level")),
		Message:   stringField(raw, "msg"),
		Component: stringField(raw, logging.FieldComponent),
		RunID:     stringField(raw, logging.FieldRunID),
		EventType: stringField(raw, logging.FieldEventType),
		Fields:    make(map[string]any),
	}
	for key, value := range raw {
		if isReserved(key) {
			continue
		}
		entry.Fields[key] = value
	}
	return entry, true
}

// ParseLevel maps a level name to slog; unknown names are info.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// String renders e as "ts LEVEL [component] msg key=value ...", keys sorted.
func (e Entry) String() string {
	var b strings.Builder
	if e.Time != "" {
		b.WriteString(e.Time)
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s", e.Level.String())
	if e.Component != "" {
		fmt.Fprintf(&b, " [%s]", e.Component)
	}
	b.WriteByte(' ')
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%v", key, e.Fields[key])
	}
	return b.String()
}

func stringField(raw map[string]any, key string) string {
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func isReserved(key string) bool {
	switch key {
	case "ts", "level", "msg", "source", logging.FieldComponent, logging.FieldRunID, logging.FieldEventType:
		return true
	}
	return false
}
