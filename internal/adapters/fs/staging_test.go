package fs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	return len(entries)
}

func TestStaging_Stage(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		limit    int64
		wantSize int64
	}{
		{"under limit", []byte("hello"), 10, 5},
		{"at limit", bytes.Repeat([]byte("a"), 10), 10, 10},
		{"over limit is capped at limit+1", bytes.Repeat([]byte("a"), 50), 10, 11},
		{"no limit", bytes.Repeat([]byte("a"), 50), 0, 50},
		{"empty", nil, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStaging(filepath.Join(t.TempDir(), "uploads"))

			up, err := s.Stage(bytes.NewReader(tt.payload), "doc.pdf", tt.limit)
			if err != nil {
				t.Fatalf("Stage: %v", err)
			}
			if up.Name() != "doc.pdf" {
				t.Errorf("Name() = %q", up.Name())
			}
			if up.Size() != tt.wantSize {
				t.Errorf("Size() = %d, want %d", up.Size(), tt.wantSize)
			}
			if filepath.Dir(up.Path()) != s.Dir() {
				t.Errorf("staged outside dir: %s", up.Path())
			}

			data, err := up.ReadAll()
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if int64(len(data)) != tt.wantSize {
				t.Errorf("read %d bytes, want %d", len(data), tt.wantSize)
			}

			if err := up.Remove(); err != nil {
				t.Fatalf("Remove: %v", err)
			}
			if err := up.Remove(); err != nil {
				t.Fatalf("second Remove: %v", err)
			}
			if n := countFiles(t, s.Dir()); n != 0 {
				t.Fatalf("%d files left in staging", n)
			}
		})
	}
}

type failingReader struct{ n int }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.n > 0 {
		r.n--
		return copy(p, "partial"), nil
	}
	return 0, errors.New("connection reset")
}

func TestStaging_StageFailureLeavesNothing(t *testing.T) {
	s := NewStaging(t.TempDir())

	_, err := s.Stage(&failingReader{n: 2}, "x.bin", 1<<20)
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("Stage error = %v", err)
	}
	if n := countFiles(t, s.Dir()); n != 0 {
		t.Fatalf("%d files left in staging", n)
	}
}

func TestStaging_Sweep(t *testing.T) {
	dir := t.TempDir()
	s := NewStaging(dir)

	for _, name := range []string{"a", "b", "c"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	n, err := s.Sweep()
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 3 {
		t.Errorf("Sweep removed %d, want 3", n)
	}
	if left := countFiles(t, dir); left != 0 {
		t.Errorf("%d files left", left)
	}
}

func TestStaging_SweepMissingDir(t *testing.T) {
	s := NewStaging(filepath.Join(t.TempDir(), "absent"))
	n, err := s.Sweep()
	if err != nil || n != 0 {
		t.Fatalf("Sweep() = %d, %v", n, err)
	}
}
