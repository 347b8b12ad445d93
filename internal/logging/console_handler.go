package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// consoleHandler prints a one-line header per record followed by an indented
// bullet list of fields:
//
//	2024-05-01 10:12:03 INFO [ingest] Run 1a2b3c4d · IMG_0001.jpg - photo failed
//	    - Kind: corrupt-metadata
type consoleHandler struct {
	mu        *sync.Mutex
	out       io.Writer
	level     *slog.LevelVar
	preset    []kv
	groups    []string
	addSource bool
}

type kv struct {
	key   string
	value slog.Value
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{mu: &sync.Mutex{}, out: w, level: lvl, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.preset = slices.Clone(h.preset)
	for _, attr := range attrs {
		next.preset = appendFlat(next.preset, h.groups, attr)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.groups = append(slices.Clone(h.groups), name)
	return &next
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if !h.Enabled(context.Background(), record.Level) {
		return nil
	}
	fields := slices.Clone(h.preset)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendFlat(fields, h.groups, attr)
		return true
	})
	fields = lastValueWins(fields)

	var component, runID, path string
	body := make([]kv, 0, len(fields))
	for _, f := range fields {
		switch f.key {
		case FieldComponent:
			component = plainValue(f.value)
			continue
		case FieldRunID:
			runID = plainValue(f.value)
		case FieldPath:
			path = plainValue(f.value)
		}
		body = append(body, f)
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var sb strings.Builder
	sb.WriteString(formatTimestamp(ts) + " " + levelLabel(record.Level))
	if component != "" {
		sb.WriteString(" [" + component + "]")
	}
	if subject := composeSubject(runID, path); subject != "" {
		sb.WriteString(" " + subject)
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	sb.WriteString(" - " + msg)
	if src := record.Source(); h.addSource && src != nil {
		fmt.Fprintf(&sb, " [%s:%d]", filepath.Base(src.File), src.Line)
	}
	sb.WriteByte('\n')
	for _, field := range selectInfoFields(body, record.Level < slog.LevelInfo) {
		fmt.Fprintf(&sb, "    - %s: %s\n", field.label, field.value)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, sb.String())
	return err
}

// composeSubject renders "Run 1a2b3c4d · IMG_0001.jpg" from the run id and photo path.
func composeSubject(runID, path string) string {
	var parts []string
	if runID = strings.TrimSpace(runID); runID != "" {
		parts = append(parts, "Run "+runID[:min(len(runID), 8)])
	}
	if path = strings.TrimSpace(path); path != "" {
		parts = append(parts, filepath.Base(path))
	}
	return strings.Join(parts, " · ")
}

// appendFlat adds attr to dst, joining group names into dotted keys.
func appendFlat(dst []kv, groups []string, attr slog.Attr) []kv {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		inner := groups
		if attr.Key != "" {
			inner = append(slices.Clone(groups), attr.Key)
		}
		for _, member := range attr.Value.Group() {
			dst = appendFlat(dst, inner, member)
		}
		return dst
	}
	key := attr.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	return append(dst, kv{key: key, value: attr.Value})
}

// lastValueWins keeps the first position of each key with its latest value.
func lastValueWins(fields []kv) []kv {
	index := make(map[string]int, len(fields))
	out := make([]kv, 0, len(fields))
	for _, f := range fields {
		if f.key == "" {
			continue
		}
		if i, ok := index[f.key]; ok {
			out[i].value = f.value
			continue
		}
		index[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}
