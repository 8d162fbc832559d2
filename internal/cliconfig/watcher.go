package cliconfig

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/meshkit/meshdeploy/internal/ports"
)

// SpecWatcher monitors a deployment config file via fsnotify and invokes
// a callback with the reloaded file config whenever it changes. The
// deploy command uses it to upscale a running deployment when the
// replica count in the file is edited.
type SpecWatcher struct {
	path     string
	logger   ports.Logger
	onChange func(FileConfig)

	mu       sync.Mutex
	debounce *time.Timer
}

// NewSpecWatcher creates a watcher for the given config file path.
func NewSpecWatcher(path string, logger ports.Logger, onChange func(FileConfig)) *SpecWatcher {
	return &SpecWatcher{
		path:     path,
		logger:   logger,
		onChange: onChange,
	}
}

// Run watches the config file until the context is cancelled. The parent
// directory is watched rather than the file itself, since editors often
// replace the file on save.
func (w *SpecWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.logger.Debug("watching config file", ports.String("path", w.path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounceReload(100 * time.Millisecond)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", ports.Err(err))
		}
	}
}

// debounceReload coalesces bursts of write events into one reload.
func (w *SpecWatcher) debounceReload(delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(delay, w.reload)
}

func (w *SpecWatcher) reload() {
	fc, err := LoadFileConfig(w.path)
	if err != nil {
		w.logger.Warn("reload config file", ports.String("path", w.path), ports.Err(err))
		return
	}
	w.onChange(fc)
}
