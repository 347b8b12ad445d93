package fileutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFingerprintIsStableAndContentSensitive(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.jpg")
	b := filepath.Join(dir, "b.jpg")
	if err := os.WriteFile(a, []byte("same bytes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(b, []byte("same bytes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fa, size, err := Fingerprint(a)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if size != int64(len("same bytes")) {
		t.Fatalf("unexpected size %d", size)
	}
	if len(fa) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(fa))
	}
	fb, _, err := Fingerprint(b)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if fa != fb {
		t.Fatal("expected identical content to share a fingerprint")
	}

	if err := os.WriteFile(b, []byte("same bytez"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fb2, _, err := Fingerprint(b)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if fb2 == fa {
		t.Fatal("expected different content to change the fingerprint")
	}
}

func TestFingerprintMissingFile(t *testing.T) {
	if _, _, err := Fingerprint(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out", "export.csv")
	err := WriteFileAtomic(dst, 0o644, func(w io.Writer) error {
		_, err := io.WriteString(w, "ID,Filename\n")
		return err
	})
	if err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "ID,Filename\n" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestWriteFileAtomicLeavesNothingOnError(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "export.csv")
	err := WriteFileAtomic(dst, 0o644, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return errors.New("query failed")
	})
	if err == nil || !strings.Contains(err.Error(), "query failed") {
		t.Fatalf("expected writer error, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected no files left behind, found %d", len(entries))
	}
}
