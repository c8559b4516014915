package lunar

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of events editors emit on save.
const reloadDebounce = 100 * time.Millisecond

// WatchFile reloads the table at path whenever it changes and installs it in
// store. A file that fails to load is logged and the previous snapshot stays
// live. WatchFile blocks until ctx is cancelled.
func WatchFile(ctx context.Context, path string, store *Store, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors and deploy tools often replace the file
	// rather than write to it, which drops a watch on the file itself.
	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	logger.Info("watching reference table", slog.String("path", target))

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			reloadInto(target, store, logger)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("table watcher error", slog.Any("error", err))
		}
	}
}

func reloadInto(path string, store *Store, logger *slog.Logger) {
	t, err := LoadFile(path)
	if err != nil {
		logger.Error("reference table reload rejected; keeping current table",
			slog.String("path", path),
			slog.Any("error", err),
		)
		return
	}

	prev := store.Swap(t)
	logger.Info("reference table reloaded",
		slog.String("path", path),
		slog.String("version", t.Metadata().Version),
		slog.String("previous_version", prev.Metadata().Version),
	)
}
