package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads base whenever the file at path is written or recreated. A reload
// that fails keeps the previous entries. Watch returns once the watcher is
// registered; the reload loop stops when ctx is cancelled.
func Watch(ctx context.Context, logger *slog.Logger, path string, base *Base) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("knowledge: create watcher: %w", err)
	}
	// Watch the directory: editors usually replace the file instead of writing it.
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("knowledge: watch %s: %w", path, err)
	}
	target := filepath.Clean(path)

	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				entries, err := read(path)
				if err != nil {
					logger.WarnContext(ctx, "knowledge base reload failed, keeping previous entries", "path", path, "err", err)
					continue
				}
				base.Replace(entries)
				logger.InfoContext(ctx, "knowledge base reloaded", "path", path, "entries", len(entries))
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.WarnContext(ctx, "knowledge base watcher error", "err", err)
			}
		}
	}()
	return nil
}
