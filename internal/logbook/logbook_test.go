package logbook

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTailReturnsMostRecentLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crewdeck.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines := book.Tail(3)
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestAppendUsesInjectedClockAndLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crewdeck.log")
	fixed := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	book.WithClock(func() time.Time { return fixed })
	book.Warn("snapshot aborted: %s", "pipeline fetch failed")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := strings.TrimSpace(string(data))
	if !strings.HasPrefix(line, "2025-03-01T09:30:00Z") {
		t.Fatalf("line %q missing fixed timestamp", line)
	}
	if !strings.Contains(line, "WARN") {
		t.Fatalf("line %q missing level", line)
	}
	if !strings.Contains(line, "snapshot aborted: pipeline fetch failed") {
		t.Fatalf("line %q missing message", line)
	}
}

func TestNilLogbookIsSafe(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	book.Printf("ignored %d", 1)
	if lines := book.Tail(5); lines != nil {
		t.Fatalf("nil logbook tail = %v, want nil", lines)
	}
	if book.Path() != "" {
		t.Fatalf("nil logbook path = %q, want empty", book.Path())
	}
}
