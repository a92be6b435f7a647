package sources

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"GeoSentinel/internal/logging"
)

const watchDebounce = 300 * time.Millisecond

// Watch reloads the whitelist whenever path changes and passes the new list to
// onChange. It blocks until ctx is done. A reload that fails to parse is
// logged and the previous list stays in effect.
func Watch(ctx context.Context, path string, onChange func([]Source)) error {
	logger := logging.New("sources")

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Editors replace files by rename, so watch the directory.
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(path)

	var timer *time.Timer
	reload := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case <-reload:
			list, err := Load(path)
			if err != nil {
				logger.Warn().Err(err).Msg("whitelist reload failed")
				continue
			}
			logger.Info().Int("sources", len(list)).Msg("whitelist reloaded")
			onChange(list)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watcher error")
		}
	}
}
