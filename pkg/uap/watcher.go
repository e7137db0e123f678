package uap

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Watcher calls back whenever the source document changes on disk. Bursts of
// events are collapsed into one call once the file has been quiet for the
// debounce interval.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher for the file at path.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		path:     filepath.Clean(abs),
		debounce: debounce,
		watcher:  fw,
	}, nil
}

// Watch blocks until ctx is cancelled, calling onChange after each change to
// the file. Calls never overlap. An error from onChange is logged and
// watching continues.
//
// The parent directory is watched rather than the file itself so that
// editors that save by renaming a temporary file over the original are seen.
func (w *Watcher) Watch(ctx context.Context, onChange func() error) error {
	defer w.watcher.Close()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	log.WithField("path", w.path).Infof("watching for changes (debounce %s)", w.debounce)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.WithField("path", w.path).Info("watcher stopped")
			return nil

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			log.WithFields(log.Fields{"path": ev.Name, "op": ev.Op.String()}).Debug("file event")

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := onChange(); err != nil {
				log.WithField("path", w.path).Errorf("reconversion failed: %v", err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			log.Errorf("file watcher error: %v", err)
		}
	}
}
