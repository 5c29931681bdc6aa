package tracker

import (
	"context"
	"degreetrack/internal/engine"
	"degreetrack/internal/logging"
	"degreetrack/internal/transcript"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events editors emit per save.
const DefaultDebounce = 300 * time.Millisecond

// Watch re-imports the transcript file at path whenever it changes, until
// ctx is cancelled. The parent directory is watched so replace-by-rename
// saves are seen. onImport receives every import result.
func (t *Tracker) Watch(ctx context.Context, path string, debounce time.Duration, onImport func(engine.Outcome, error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	logging.Import("Watching %s", abs)

	src := transcript.FileSource{Path: abs}
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Import("Stopped watching %s", abs)
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logging.ImportDebug("Watch: %s %s", event.Op, event.Name)
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logging.ImportWarn("Watch error: %v", err)

		case <-timer.C:
			out, err := t.Import(ctx, src)
			if onImport != nil {
				onImport(out, err)
			}
		}
	}
}
