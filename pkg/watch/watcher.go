// Package watch republishes the config document when the backing file is
// changed outside the engine, e.g. by another process or a text editor.
package watch

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/blackcoderx/callisto/pkg/core"
	"github.com/blackcoderx/callisto/pkg/logging"
	"github.com/blackcoderx/callisto/pkg/storage"
	"github.com/fsnotify/fsnotify"
)

const subsystem = "Watcher"

// DefaultDebounceInterval is the time to wait after the last file event
// before reloading.
const DefaultDebounceInterval = 200 * time.Millisecond

// Loader reads the current document.
type Loader interface {
	Load(path string) (*storage.Document, error)
}

// Watcher reloads the file at Path on change and publishes the result.
// A reload that yields the same document as the last publish is skipped.
type Watcher struct {
	path     string
	loader   Loader
	notifier core.Notifier
	debounce time.Duration

	mu   sync.Mutex
	last []byte
}

// New creates a watcher for path. debounce <= 0 selects DefaultDebounceInterval.
func New(path string, loader Loader, notifier core.Notifier, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounceInterval
	}
	return &Watcher{
		path:     filepath.Clean(path),
		loader:   loader,
		notifier: notifier,
		debounce: debounce,
	}
}

// Run watches until ctx is cancelled. The parent directory is watched
// rather than the file because writes replace the file by rename.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logging.Info(subsystem, "watching %s for changes", w.path)

	// Seed with the current document so an unchanged file is not republished.
	if doc, err := w.loader.Load(w.path); err == nil {
		if data, err := storage.Encode(doc); err == nil {
			w.setLast(data)
		}
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logging.Debug(subsystem, "config file changed: %s", event)
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			w.Reload()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logging.Error(subsystem, err, "file watcher error")
		}
	}
}

// Reload loads the document and publishes it if it differs from the last
// one seen. Load failures are logged; a half-written file is picked up
// again on the next event.
func (w *Watcher) Reload() {
	doc, err := w.loader.Load(w.path)
	if err != nil {
		logging.Warn(subsystem, "failed to reload %s: %v", w.path, err)
		return
	}
	data, err := storage.Encode(doc)
	if err != nil {
		logging.Warn(subsystem, "failed to encode reloaded config: %v", err)
		return
	}

	w.mu.Lock()
	unchanged := bytes.Equal(data, w.last)
	w.last = data
	w.mu.Unlock()
	if unchanged {
		return
	}

	if err := w.notifier.Publish(core.ConfigEvent, doc); err != nil {
		logging.Warn(subsystem, "failed to publish %s: %v", core.ConfigEvent, err)
	}
}

func (w *Watcher) setLast(data []byte) {
	w.mu.Lock()
	w.last = data
	w.mu.Unlock()
}
