package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/stubls/stubls/internal/project/logging"
)

// Watch reloads the file at path whenever it is written and passes the valid
// result to onChange. Invalid files are logged and skipped. Watching stops
// when ctx is done.
func Watch(ctx context.Context, path string, logger logging.Logger, onChange func(*Options)) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// Editors often replace the file instead of writing it, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				opts, err := Load(path)
				if err == nil {
					err = opts.Validate()
				}
				if err != nil {
					logger.Warn("ignoring config change: ", err)
					continue
				}
				logger.Logf("reloaded %s", path)
				onChange(opts)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher: ", err)
			}
		}
	}()
	return nil
}
