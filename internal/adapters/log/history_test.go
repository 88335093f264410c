package log

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestHistory_LineFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "history.log")
	var echo bytes.Buffer

	h, err := OpenHistory(HistoryConfig{Path: path, Echo: &echo})
	if err != nil {
		t.Fatalf("OpenHistory: %v", err)
	}
	h.now = func() time.Time {
		return time.Date(2024, 3, 1, 17, 30, 5, 123_000_000, time.FixedZone("WIB", 7*3600))
	}

	if err := h.Log("Session is ready!"); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := h.Log("Message sent to 1@c.us: \"hi\""); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "[2024-03-01T10:30:05.123Z] Session is ready!\n" +
		"[2024-03-01T10:30:05.123Z] Message sent to 1@c.us: \"hi\"\n"
	if string(data) != want {
		t.Fatalf("history file:\n%q\nwant:\n%q", data, want)
	}
	if !strings.Contains(echo.String(), "Session is ready!") {
		t.Errorf("console echo missing line: %q", echo.String())
	}
}

func TestHistory_AppendsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.log")
	line := regexp.MustCompile(`^\[\d{4}-\d\d-\d\dT\d\d:\d\d:\d\d\.\d{3}Z\] (first|second)$`)

	for _, msg := range []string{"first", "second"} {
		h, err := OpenHistory(HistoryConfig{Path: path})
		if err != nil {
			t.Fatalf("OpenHistory: %v", err)
		}
		if err := h.Log(msg); err != nil {
			t.Fatalf("Log: %v", err)
		}
		_ = h.Close()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), data)
	}
	for _, l := range lines {
		if !line.MatchString(l) {
			t.Errorf("line %q does not match history format", l)
		}
	}
}

func TestHistory_RotatingWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.log")
	h, err := OpenHistory(HistoryConfig{Path: path, MaxSizeMB: 1, MaxBackups: 2})
	if err != nil {
		t.Fatalf("OpenHistory: %v", err)
	}
	if err := h.Log("rotated"); err != nil {
		t.Fatalf("Log: %v", err)
	}
	_ = h.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasSuffix(string(data), "] rotated\n") {
		t.Fatalf("history file = %q", data)
	}
}

func TestHistory_OpenFailureFallsBackToConsole(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var echo bytes.Buffer

	h, err := OpenHistory(HistoryConfig{Path: filepath.Join(blocker, "history.log"), Echo: &echo})
	if err == nil {
		t.Fatal("expected open error")
	}
	if h == nil {
		t.Fatal("expected console-only history")
	}
	if err := h.Log("still visible"); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if !strings.Contains(echo.String(), "still visible") {
		t.Errorf("echo = %q", echo.String())
	}
}

type brokenWriter struct{}

func (brokenWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestHistory_WriteErrorIsReturned(t *testing.T) {
	var echo bytes.Buffer
	h := newHistory(brokenWriter{}, nil, &echo)

	err := h.Log("lost line")
	if err == nil || err.Error() != "disk full" {
		t.Fatalf("Log error = %v, want disk full", err)
	}
	if !strings.Contains(echo.String(), "Failed to write log") {
		t.Errorf("echo = %q", echo.String())
	}
}
