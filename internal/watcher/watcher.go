// Package watcher invalidates the config cache when files in the data directory change.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Invalidator drops cached config. *resolver.Resolver satisfies it.
type Invalidator interface {
	Invalidate() int
}

// Watcher monitors the data directory with fsnotify.
// Bursts of changes are collapsed: the target is invalidated once, after
// SettleDelay has passed without further relevant events.
type Watcher struct {
	logger  *slog.Logger
	opts    Options
	dir     string
	target  Invalidator
	watcher *fsnotify.Watcher

	mu    sync.Mutex
	fired int

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a watcher on dir. Call Start to begin delivering invalidations.
func New(logger *slog.Logger, dir string, target Invalidator, opts Options) (*Watcher, error) {
	opts.setDefaults()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	dir = filepath.Clean(dir)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &Watcher{
		logger:  logger,
		opts:    opts,
		dir:     dir,
		target:  target,
		watcher: fw,
		done:    make(chan struct{}),
	}, nil
}

// Start processes events until ctx is cancelled or Stop is called.
// It blocks.
func (w *Watcher) Start(ctx context.Context) error {
	w.wg.Add(1)
	defer w.wg.Done()

	w.logger.Info("watching data directory", "dir", w.dir, "settle_delay", w.opts.SettleDelay)

	settle := time.NewTimer(w.opts.SettleDelay)
	settle.Stop()
	defer settle.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.done:
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.opts.relevant(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			w.logger.Debug("data file changed", "path", event.Name, "op", event.Op.String())
			settle.Reset(w.opts.SettleDelay)
			pending = true
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("data directory watch error", "error", err)
		case <-settle.C:
			if !pending {
				continue
			}
			pending = false
			n := w.target.Invalidate()
			w.mu.Lock()
			w.fired++
			w.mu.Unlock()
			w.logger.Info("config cache invalidated after data change", "cleared_entries", n)
		}
	}
}

// Invalidations returns how many times the watcher invalidated the target.
func (w *Watcher) Invalidations() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fired
}

// Stop ends Start and releases the fsnotify handle. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}
