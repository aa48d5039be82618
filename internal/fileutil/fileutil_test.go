package fileutil

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestReadPrefixShortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.bin")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := ReadPrefix(path, 1024)
	if err != nil {
		t.Fatalf("ReadPrefix failed: %v", err)
	}
	if string(got) != "abc" {
		t.Fatalf("unexpected prefix: %q", got)
	}
}

func TestReadPrefixCapsLongFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.bin")
	if err := os.WriteFile(path, bytes.Repeat([]byte{0xAB}, 100), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := ReadPrefix(path, 10)
	if err != nil {
		t.Fatalf("ReadPrefix failed: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("expected 10 bytes, got %d", len(got))
	}
}

func TestReadPrefixRejectsBadLimit(t *testing.T) {
	if _, err := ReadPrefix("irrelevant", 0); err == nil {
		t.Fatal("expected error for zero limit")
	}
}

func TestWriteStream(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "nested", "out.bin")
	n, err := WriteStream(dst, bytes.NewReader([]byte("payload")), 64)
	if err != nil {
		t.Fatalf("WriteStream failed: %v", err)
	}
	if n != 7 {
		t.Fatalf("expected 7 bytes written, got %d", n)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected contents: %q", data)
	}
}

func TestWriteStreamEnforcesLimit(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.bin")
	_, err := WriteStream(dst, bytes.NewReader(bytes.Repeat([]byte{1}, 11)), 10)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if _, statErr := os.Stat(dst); !os.IsNotExist(statErr) {
		t.Fatalf("expected partial file removed, got %v", statErr)
	}
}
