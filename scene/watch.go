package scene

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch calls fn with the reloaded scene every time the file at path is
// written or replaced, until ctx is done. Load errors are passed to fn
// and do not stop the watch.
func Watch(ctx context.Context, path string, fn func(Scene, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}
	defer w.Close()

	// editors often replace the file, so watch the directory
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %q: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				fn(Load(path))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fn(Scene{}, fmt.Errorf("watch %q: %w", path, err))
		}
	}
}
