package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileCreatesNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads", "today")
	if err := writeFile([]byte("payload"), "out.bin", dir); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "out.bin"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("wrote %q, want payload", data)
	}
}

func TestWriteFileOverwrites(t *testing.T) {
	dir := t.TempDir()
	if err := writeFile([]byte("a much longer first version"), "out.bin", dir); err != nil {
		t.Fatalf("first writeFile: %v", err)
	}
	if err := writeFile([]byte("short"), "out.bin", dir); err != nil {
		t.Fatalf("second writeFile: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "out.bin"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "short" {
		t.Errorf("file holds %q, want short", data)
	}
}

func TestWriteFileStripsPathComponents(t *testing.T) {
	dir := t.TempDir()
	if err := writeFile([]byte("x"), "../escape.txt", dir); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.txt")); err != nil {
		t.Errorf("expected file inside the output directory: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "escape.txt")); !os.IsNotExist(err) {
		t.Errorf("file escaped the output directory")
	}
}

func TestWriteFileRejectsFileAsDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "occupied")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := writeFile([]byte("y"), "out.bin", blocker); err == nil {
		t.Fatal("expected error when output directory path is a regular file")
	}
}
