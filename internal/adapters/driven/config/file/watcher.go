package file

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/veilchat/recall/internal/logger"
)

// debounceWindow coalesces the burst of filesystem events most
// editors emit for a single save.
const debounceWindow = 100 * time.Millisecond

// Watch reloads the configuration whenever the file at path changes
// and delivers each successfully parsed Config to onChange. It blocks
// until ctx is cancelled. A config that fails to parse is skipped; the
// previous configuration stays in effect.
func Watch(ctx context.Context, path string, onChange func(Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors replace files on
	// save, which would silently drop a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceWindow, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			cfg, err := Load(path)
			if err != nil {
				logger.Warn("Config reload failed, keeping previous configuration: %v", err)
				continue
			}
			logger.Info("Configuration reloaded from %s", path)
			onChange(cfg)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Config watcher error: %v", watchErr)
		}
	}
}
