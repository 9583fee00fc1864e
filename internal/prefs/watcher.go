package prefs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"

	"github.com/abiolaogu/voxguard-console/internal/storage"
)

// Watch observes the preferences file on disk and rebroadcasts a change
// event when another process edits it, so a second console instance (or an
// operator editing state by hand) propagates without a restart. Blocks
// until ctx is cancelled.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create preferences watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.storage.Dir()); err != nil {
		return fmt.Errorf("failed to watch state directory: %w", err)
	}

	prefsFile := s.storage.FileFor(storage.KeyPreferences)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Writes land via rename, so Create fires for the final file
			if event.Name != prefsFile || !event.Op.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			s.reloadFromDisk()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("preferences watcher error", slog.Any("error", err))
		}
	}
}

func (s *Store) reloadFromDisk() {
	s.mu.Lock()
	prev := s.current
	prevLoaded := s.loaded
	s.loaded = false
	next := s.loadLocked()
	s.mu.Unlock()

	if prevLoaded && prev == next {
		return
	}

	s.logger.Info("preferences reloaded from disk")
	s.broadcast(ChangeEvent{Field: "external", Preferences: next})
}
