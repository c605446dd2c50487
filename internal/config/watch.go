package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/yourusername/tilewm/internal/logging"
)

// DefaultDebounce is how long Watch waits for writes to settle
const DefaultDebounce = 200 * time.Millisecond

// Watch reloads the config file at path whenever it changes and hands each
// valid result to onReload. Invalid edits are logged and skipped. It blocks
// until ctx is done.
//
// The parent directory is watched so editors that replace the file by
// rename are still picked up.
func Watch(ctx context.Context, path string, debounce time.Duration, onReload func(*Config)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	path, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}
	logging.Info().Str("path", path).Msg("watching config")

	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn().Err(err).Msg("config watcher error")

		case <-timer.C:
			cfg, err := LoadConfig(path)
			if err != nil {
				logging.Warn().Err(err).Str("path", path).Msg("ignoring invalid config change")
				continue
			}
			logging.Info().Str("path", path).Msg("config changed")
			onReload(cfg)
		}
	}
}
