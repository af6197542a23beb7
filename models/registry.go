// Package models tracks trained classifier model artifacts on disk.
//
// Artifacts live under one directory, one subdirectory per place id,
// produced by the external training step from exported CSV data. The
// registry answers "does place N have a trained model" without hitting the
// filesystem per prediction session, and picks up newly trained models
// while the server runs.
package models

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/whereabouts/errors"
)

// Registry caches which place ids have a trained model artifact
type Registry struct {
	trainedDir string
	logger     *zap.SugaredLogger

	mu        sync.RWMutex
	available map[int64]struct{}

	watcher       *fsnotify.Watcher
	debounceTimer *time.Timer
	debounceMu    sync.Mutex
	done          chan struct{}
}

// debouncePeriod absorbs the burst of fsnotify events a training run
// produces while writing artifact files.
const debouncePeriod = 500 * time.Millisecond

// NewRegistry creates a registry over trainedDir, creating the directory
// if needed, and performs the initial scan.
func NewRegistry(trainedDir string, logger *zap.SugaredLogger) (*Registry, error) {
	if err := os.MkdirAll(trainedDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create trained dir %s", trainedDir)
	}

	r := &Registry{
		trainedDir: trainedDir,
		logger:     logger,
		available:  make(map[int64]struct{}),
		done:       make(chan struct{}),
	}
	if err := r.rescan(); err != nil {
		return nil, err
	}
	return r, nil
}

// Watch starts watching the trained directory for model changes.
// Call Close to stop.
func (r *Registry) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create fsnotify watcher")
	}
	if err := watcher.Add(r.trainedDir); err != nil {
		watcher.Close()
		return errors.Wrapf(err, "watch trained dir %s", r.trainedDir)
	}
	r.watcher = watcher

	go r.watchLoop()
	return nil
}

// Close stops the watcher, if running
func (r *Registry) Close() error {
	close(r.done)
	if r.watcher != nil {
		return r.watcher.Close()
	}
	return nil
}

// Available reports whether a trained model exists for the place
func (r *Registry) Available(placeID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.available[placeID]
	return ok
}

// ModelPath returns the artifact directory for the place. The path is
// handed opaquely to the classifier; the registry never reads inside it.
func (r *Registry) ModelPath(placeID int64) string {
	return filepath.Join(r.trainedDir, strconv.FormatInt(placeID, 10))
}

func (r *Registry) watchLoop() {
	for {
		select {
		case <-r.done:
			return
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				r.scheduleRescan()
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			if r.logger != nil {
				r.logger.Warnw("Model watcher error", "error", err)
			}
		}
	}
}

// scheduleRescan debounces rapid event bursts into one rescan
func (r *Registry) scheduleRescan() {
	r.debounceMu.Lock()
	defer r.debounceMu.Unlock()

	if r.debounceTimer != nil {
		r.debounceTimer.Stop()
	}
	r.debounceTimer = time.AfterFunc(debouncePeriod, func() {
		if err := r.rescan(); err != nil && r.logger != nil {
			r.logger.Warnw("Model rescan failed", "error", err)
		}
	})
}

func (r *Registry) rescan() error {
	entries, err := os.ReadDir(r.trainedDir)
	if err != nil {
		return errors.Wrapf(err, "read trained dir %s", r.trainedDir)
	}

	available := make(map[int64]struct{}, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		placeID, err := strconv.ParseInt(entry.Name(), 10, 64)
		if err != nil {
			// Not a place artifact; ignore
			continue
		}
		available[placeID] = struct{}{}
	}

	r.mu.Lock()
	changed := len(available) != len(r.available)
	if !changed {
		for id := range available {
			if _, ok := r.available[id]; !ok {
				changed = true
				break
			}
		}
	}
	r.available = available
	r.mu.Unlock()

	if changed && r.logger != nil {
		r.logger.Infow("Trained models updated", "count", len(available))
	}
	return nil
}
