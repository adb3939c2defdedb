package storage

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 100 * time.Millisecond

// Invalidator is notified when files under the root change.
type Invalidator interface {
	Clear(ctx context.Context)
}

// Watcher clears a path cache whenever files are created, removed or
// renamed below the asset root.
type Watcher struct {
	root     *Root
	target   Invalidator
	log      *zap.Logger
	debounce time.Duration
}

// NewWatcher creates a watcher for root. Events are coalesced within the
// debounce window; zero selects the default.
func NewWatcher(root *Root, target Invalidator, log *zap.Logger, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{root: root, target: target, log: log, debounce: debounce}
}

// Run watches until ctx is cancelled. New directories are added to the
// watch list as they appear.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := addDirsRecursive(fw, w.root.Dir()); err != nil {
		return err
	}
	w.log.Info("asset watcher started", zap.String("root", w.root.Dir()))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			fire = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.log.Info("asset watcher stopped")
			return nil

		case <-fire:
			w.target.Clear(ctx)
			w.log.Debug("asset watcher cleared path cache")

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(fw, ev.Name); addErr != nil {
						w.log.Warn("asset watcher: add dir failed", zap.String("path", ev.Name), zap.Error(addErr))
					}
				}
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("asset watcher error", zap.Error(watchErr))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
