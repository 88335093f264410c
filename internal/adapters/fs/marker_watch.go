package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WaitForMarker blocks until the marker at path exists and returns its
// ready-since time. The marker's directory is watched with fsnotify; while
// that directory does not exist yet it is polled with backoff.
func WaitForMarker(ctx context.Context, path string) (time.Time, error) {
	if since, err := ReadMarker(path); err == nil {
		return since, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return time.Time{}, fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	b := newBackoff(DefaultBackoffInitial, DefaultBackoffMax)
	for {
		err := watcher.Add(dir)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrNotExist) {
			return time.Time{}, fmt.Errorf("watch %s: %w", dir, err)
		}
		if err := b.Wait(ctx); err != nil {
			return time.Time{}, err
		}
	}

	// The marker may have appeared before the watch was registered.
	if since, err := ReadMarker(path); err == nil {
		return since, nil
	}

	name := filepath.Base(path)
	for {
		select {
		case <-ctx.Done():
			return time.Time{}, ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return time.Time{}, errors.New("watcher closed")
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if since, err := ReadMarker(path); err == nil {
				return since, nil
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return time.Time{}, errors.New("watcher closed")
			}
			return time.Time{}, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
}
