package catalog

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/skinlens/backend/internal/pkg/logger"
)

// defaultDebounce groups the burst of events editors emit on save
const defaultDebounce = 500 * time.Millisecond

// Watcher reloads the catalog when its file changes on disk
type Watcher struct {
	path     string
	reload   func(ctx context.Context) error
	debounce time.Duration
	log      *logger.Logger
}

// NewWatcher creates a watcher for path. reload is called once per burst
// of changes.
func NewWatcher(path string, reload func(ctx context.Context) error, debounce time.Duration, log *logger.Logger) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{
		path:     filepath.Clean(path),
		reload:   reload,
		debounce: debounce,
		log:      logger.OrNop(log).With("component", "catalog_watcher"),
	}
}

// Run watches until ctx is cancelled. The parent directory is watched so
// that files replaced by rename are still picked up.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.log.Info("watching catalog file", "path", w.path)

	// Reset discards stale fires, so the timer can be re-armed on every event
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("catalog watcher error", "error", err)

		case <-timer.C:
			if err := w.reload(ctx); err != nil {
				w.log.Error("catalog reload after change failed", "path", w.path, "error", err)
				continue
			}
			w.log.Info("catalog reloaded after change", "path", w.path)
		}
	}
}

// relevant reports whether an event touches the watched file with a write
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
