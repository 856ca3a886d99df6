// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// watcher.go - fsnotify-based hot reload of the rules file.
package rules

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// RULES WATCHER
// =============================================================================

// Watcher reloads a file-backed Store when the rules file changes.
//
// The parent directory is watched rather than the file itself, because
// editors commonly replace files via rename, which would otherwise drop
// the watch. Bursts of events are debounced so a single save triggers a
// single reload. Reload errors go to the OnError callback and the store
// keeps its previous collection.
type Watcher struct {
	store    *Store
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	pending time.Time // Zero when no reload is queued

	ctx    context.Context
	cancel context.CancelFunc

	// OnReload is called after each successful reload with the new
	// rule count. Optional.
	OnReload func(ruleCount int)

	// OnError is called when a reload fails. Optional. The active
	// collection is unchanged when this fires.
	OnError func(err error)
}

// NewWatcher creates a watcher for the store's file source.
// The store must be backed by a FileSource.
func NewWatcher(store *Store, debounce time.Duration) (*Watcher, error) {
	fs, ok := store.Source().(*FileSource)
	if !ok {
		return nil, ErrSourceUnavailable
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		store:    store,
		path:     fs.Path,
		watcher:  fw,
		debounce: debounce,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts watching for rules file changes.
func (w *Watcher) Watch() error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.processEvents()
	go w.processPending()

	return nil
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

// =============================================================================
// EVENT PROCESSING
// =============================================================================

// processEvents filters file system events down to changes of the rules
// file and queues a debounced reload.
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// Only the rules file itself is interesting
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}

			// Write, Create and Rename all indicate new content on
			// the watched path (rename-into-place saves show up as
			// Create or Rename of the target)
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.queueReload()
			}

			// Remove without a follow-up Create means the file is
			// gone; the reload will fail and report through OnError
			if event.Op&fsnotify.Remove != 0 {
				w.queueReload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.OnError != nil {
				w.OnError(err)
			}
		}
	}
}

// queueReload records a pending reload, resetting the debounce window.
func (w *Watcher) queueReload() {
	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

// processPending fires queued reloads once the debounce window passes.
func (w *Watcher) processPending() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			w.mu.Lock()
			due := !w.pending.IsZero() && time.Since(w.pending) >= w.debounce
			if due {
				w.pending = time.Time{}
			}
			w.mu.Unlock()

			if due {
				w.reload()
			}
		}
	}
}

// reload performs the actual store reload and reports the outcome.
func (w *Watcher) reload() {
	collection, err := w.store.Reload()
	if err != nil {
		if w.OnError != nil {
			w.OnError(err)
		}
		return
	}
	if w.OnReload != nil {
		w.OnReload(len(collection))
	}
}
