// Package watch reruns work when an extract on disk changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events a single save produces
const DefaultDebounce = 200 * time.Millisecond

// Watcher reports writes to one file. The parent directory is watched so that
// editors which replace the file are still seen.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
	fsw      *fsnotify.Watcher
}

// New creates a watcher for path
func New(path string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		debounce: debounce,
		logger:   logger,
		fsw:      fsw,
	}, nil
}

// Run calls onChange after every settled write or create of the file until ctx
// is done. Errors from onChange are logged and watching continues.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context) error) error {
	w.logger.Info("watching for changes", "path", w.path, "debounce", w.debounce)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug("change detected", "path", w.path, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", "path", w.path, "error", err)

		case <-fire:
			fire = nil
			if err := onChange(ctx); err != nil {
				w.logger.Error("rerun failed", "path", w.path, "error", err)
			}
		}
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
