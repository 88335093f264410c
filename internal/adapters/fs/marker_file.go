package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultMarkerName is the marker filename used when no path is configured.
const DefaultMarkerName = "wa_ready.flag"

// MarkerFile implements ports.MarkerStore. The file exists exactly while the
// session is usable; its content is the RFC3339 time it became usable.
type MarkerFile struct {
	path string
	now  func() time.Time
}

// NewMarkerFile creates a marker store backed by path.
func NewMarkerFile(path string) *MarkerFile {
	return &MarkerFile{path: path, now: time.Now}
}

// SetReady writes the marker atomically, overwriting any previous one.
// Uses atomic write (write to temp file, then rename) so health checks never read a
// partial timestamp.
func (m *MarkerFile) SetReady() error {
	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create marker dir: %w", err)
		}
	}

	tmp := m.path + ".tmp"
	data := []byte(m.now().UTC().Format(time.RFC3339) + "\n")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write marker: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename marker: %w", err)
	}
	return nil
}

// Clear removes the marker. A missing marker is not an error.
func (m *MarkerFile) Clear() error {
	if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove marker: %w", err)
	}
	return nil
}

// Exists reports whether the marker is present.
func (m *MarkerFile) Exists() bool {
	_, err := os.Stat(m.path)
	return err == nil
}

// ReadySince returns when the marker was written.
// It prefers the timestamp stored in the file and falls back to the
// modification time for markers written by other tools.
// Returns os.ErrNotExist (wrapped) if there is no marker.
func (m *MarkerFile) ReadySince() (time.Time, error) {
	return ReadMarker(m.path)
}

// Path returns the full path to the marker file.
func (m *MarkerFile) Path() string {
	return m.path
}

// ReadMarker reads the ready-since time of the marker at path.
func ReadMarker(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, err
	}
	if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(string(data))); err == nil {
		return ts, nil
	}
	return info.ModTime().UTC(), nil
}
