package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"exifatlas/internal/logs"
)

const sampleLog = `{"ts":"2024-06-01T10:00:00Z","level":"info","msg":"ingest started","component":"ingest","run_id":"aaaa-1111","root":"/photos"}
{"ts":"2024-06-01T10:00:01Z","level":"warn","msg":"file failed","component":"ingest","run_id":"aaaa-1111","event_type":"file_failed","path":"/photos/x.jpg"}
not json at all
{"ts":"2024-06-01T11:00:00Z","level":"info","msg":"ingest started","component":"ingest","run_id":"bbbb-2222","root":"/photos"}
{"ts":"2024-06-01T11:00:02Z","level":"error","msg":"store failed","component":"ingest","run_id":"bbbb-2222"}
`

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "exifatlas.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailLastLines(t *testing.T) {
	path := writeLog(t, "a\nb\nc\n")

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if len(result.Lines) != 2 || result.Lines[0] != "b" || result.Lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", result.Lines)
	}
	if result.Offset != 6 {
		t.Fatalf("expected offset 6, got %d", result.Offset)
	}
}

func TestTailMissingFile(t *testing.T) {
	result, err := logs.Tail(context.Background(), filepath.Join(t.TempDir(), "none.log"), logs.TailOptions{Offset: -1, Limit: 5})
	if err != nil || len(result.Lines) != 0 || result.Offset != 0 {
		t.Fatalf("expected empty result, got %+v, %v", result, err)
	}
}

func TestTailFilters(t *testing.T) {
	path := writeLog(t, sampleLog)

	cases := []struct {
		name   string
		filter logs.Filter
		want   []string
	}{
		{"run prefix", logs.Filter{RunID: "aaaa"}, []string{"ingest started", "file failed"}},
		{"level", logs.Filter{MinLevel: "warn"}, []string{"file failed", "store failed"}},
		{"event", logs.Filter{EventType: "file_failed"}, []string{"file failed"}},
		{"combined", logs.Filter{RunID: "bbbb", MinLevel: "error"}, []string{"store failed"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 10, Filter: tc.filter})
			if err != nil {
				t.Fatalf("tail: %v", err)
			}
			if len(result.Lines) != len(tc.want) {
				t.Fatalf("expected %d lines, got %#v", len(tc.want), result.Lines)
			}
			for i, line := range result.Lines {
				if !strings.Contains(line, tc.want[i]) {
					t.Fatalf("line %d = %q, want %q", i, line, tc.want[i])
				}
			}
		})
	}

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 10})
	if err != nil || len(result.Lines) != 5 {
		t.Fatalf("unfiltered tail should keep non-JSON lines, got %d, %v", len(result.Lines), err)
	}
}

func TestTailFromOffsetRestartsAfterTruncation(t *testing.T) {
	path := writeLog(t, "one\n")

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: 1000})
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(result.Lines) != 1 || result.Lines[0] != "one" {
		t.Fatalf("expected re-read from start, got %#v", result.Lines)
	}
}

func TestTailFollowWaits(t *testing.T) {
	path := writeLog(t, "start\n")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	result, err := logs.Tail(ctx, path, logs.TailOptions{Offset: -1, Limit: 1})
	if err != nil {
		t.Fatalf("initial tail: %v", err)
	}
	if len(result.Lines) != 1 {
		t.Fatalf("expected initial line, got %#v", result.Lines)
	}

	done := make(chan struct{})
	go func(offset int64) {
		defer close(done)
		res, err := logs.Tail(ctx, path, logs.TailOptions{Offset: offset, Follow: true, Wait: 5 * time.Second})
		if err != nil {
			t.Errorf("follow tail error: %v", err)
		}
		if len(res.Lines) != 1 || res.Lines[0] != "later" {
			t.Errorf("unexpected follow lines: %#v", res.Lines)
		}
	}(result.Offset)

	time.Sleep(200 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("tail follow did not return")
	}
}

func TestParseEntryAndString(t *testing.T) {
	entry, ok := logs.ParseEntry(`{"ts":"2024-06-01T10:00:01Z","level":"warn","msg":"file failed","component":"ingest","run_id":"r1","path":"/p/x.jpg","size":12}`)
	if !ok {
		t.Fatal("expected JSON line to parse")
	}
	if entry.Component != "ingest" || entry.RunID != "r1" || entry.Message != "file failed" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	want := "2024-06-01T10:00:01Z WARN  [ingest] file failed path=/p/x.jpg size=12"
	if got := entry.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if _, ok := logs.ParseEntry("plain text"); ok {
		t.Fatal("expected plain text to be rejected")
	}
}
