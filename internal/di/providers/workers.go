package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/rhedu/adstudio-server/internal/config"
	"github.com/rhedu/adstudio-server/internal/logger"
	"github.com/rhedu/adstudio-server/internal/ratelimit"
	"github.com/rhedu/adstudio-server/internal/source"
	"github.com/rhedu/adstudio-server/internal/watcher"
)

// FileWatcherHandle wraps the data directory watcher with shutdown capability.
// Watcher is nil when watching is disabled.
type FileWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *FileWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideFileWatcher provides the data directory watcher.
func ProvideFileWatcher(i do.Injector) (*FileWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Data.Watch {
		log.Info("Data directory watching disabled by configuration")
		return &FileWatcherHandle{}, nil
	}

	dir := do.MustInvoke[DataDir](i)
	res := do.MustInvoke[*ResolverHandle](i)

	files := make([]string, 0, len(source.All()))
	for _, src := range source.All() {
		files = append(files, src.File)
	}

	w, err := watcher.New(log.Component("watcher"), string(dir), res.Resolver, watcher.Options{Files: files})
	if err != nil {
		return nil, err
	}

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("File watcher error", "error", err)
		}
	}()

	log.Info("File watcher started", "path", dir, "files", files)

	return &FileWatcherHandle{
		Watcher: w,
		cancel:  cancel,
	}, nil
}

// RateLimiterHandle wraps the per-IP limiter for login and revalidation.
type RateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideRateLimiter provides the login and revalidation rate limiter.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &RateLimiterHandle{
		KeyedRateLimiter: ratelimit.PerMinute(cfg.Gate.LoginRatePerMinute),
	}, nil
}
