package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Staging stores uploaded payloads on disk for the lifetime of one request.
type Staging struct {
	dir string
}

// NewStaging creates a staging area rooted at dir.
func NewStaging(dir string) *Staging {
	return &Staging{dir: dir}
}

// Dir returns the staging directory.
func (s *Staging) Dir() string {
	return s.dir
}

// Ensure creates the staging directory if needed.
func (s *Staging) Ensure() error {
	return os.MkdirAll(s.dir, 0o700)
}

// Stage copies r into a new file in the staging directory. At most limit+1
// bytes are copied, which is enough for the caller to tell that the payload
// exceeds limit without buffering the rest. A non-positive limit copies
// everything.
//
// On error nothing is left behind.
func (s *Staging) Stage(r io.Reader, name string, limit int64) (*StagedUpload, error) {
	if err := s.Ensure(); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	path := filepath.Join(s.dir, uuid.NewString())
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create staged file: %w", err)
	}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, err := io.Copy(f, src)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("stage upload: %w", err)
	}

	return &StagedUpload{path: path, name: name, size: n}, nil
}

// Sweep removes everything left in the staging directory, typically by a
// previous process that crashed mid-request. It returns the number of entries
// removed.
func (s *Staging) Sweep() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	var removed int
	var errs []error
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(s.dir, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

// StagedUpload is one staged payload. It implements app.Upload.
type StagedUpload struct {
	path string
	name string
	size int64

	once      sync.Once
	removeErr error
}

// Name returns the filename supplied by the uploader.
func (u *StagedUpload) Name() string { return u.name }

// Size returns the number of bytes staged.
func (u *StagedUpload) Size() int64 { return u.size }

// Path returns the location of the staged file.
func (u *StagedUpload) Path() string { return u.path }

// ReadAll reads the staged contents.
func (u *StagedUpload) ReadAll() ([]byte, error) {
	return os.ReadFile(u.path)
}

// Remove deletes the staged file. Only the first call does any work; later
// calls return the first result.
func (u *StagedUpload) Remove() error {
	u.once.Do(func() {
		err := os.Remove(u.path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			u.removeErr = err
		}
	})
	return u.removeErr
}
