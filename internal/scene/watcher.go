package scene

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 100 * time.Millisecond

// Watcher reloads the scene file on change and swaps the provider
// snapshot. A failed reload keeps the previous snapshot. Watching the
// parent directory instead of the file survives editor rename-and-replace
// save strategies.
type Watcher struct {
	path     string
	provider *Provider
	logger   *zap.Logger

	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

func NewWatcher(path string, provider *Provider, logger *zap.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("scene: watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("scene: watch %s: %w", path, err)
	}

	return &Watcher{
		path:      path,
		provider:  provider,
		logger:    logger,
		fsWatcher: fsWatcher,
		stopCh:    make(chan struct{}),
	}, nil
}

func (w *Watcher) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		w.logger.Info("scene watcher started", zap.String("path", w.path))

		var debounce *time.Timer
		var debounceC <-chan time.Time

		for {
			select {
			case event, ok := <-w.fsWatcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(w.path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if debounce == nil {
					debounce = time.NewTimer(reloadDebounce)
					debounceC = debounce.C
				} else {
					debounce.Reset(reloadDebounce)
				}

			case <-debounceC:
				w.reload()

			case err, ok := <-w.fsWatcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("scene watcher error", zap.Error(err))

			case <-w.stopCh:
				w.logger.Info("scene watcher stopped")
				return
			}
		}
	}()
}

func (w *Watcher) Stop() {
	close(w.stopCh)
	_ = w.fsWatcher.Close()
	w.wg.Wait()
}

func (w *Watcher) reload() {
	doc, err := Load(w.path)
	if err != nil {
		w.logger.Warn("scene reload failed, keeping previous snapshot",
			zap.String("path", w.path),
			zap.Error(err))
		return
	}

	if err := w.provider.SetDocument(doc); err != nil {
		w.logger.Warn("scene reload rejected", zap.Error(err))
		return
	}

	w.logger.Info("scene reloaded",
		zap.String("path", w.path),
		zap.Int("obstacles", len(doc.ObstacleSpecs)),
		zap.Float64("width", doc.World.Width),
		zap.Float64("height", doc.World.Height))
}
