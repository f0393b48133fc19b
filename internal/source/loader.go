package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/rhedu/adstudio-server/internal/cache"
	"github.com/rhedu/adstudio-server/internal/schema"
)

// Loader reads sources through the cache.
//
// Concurrent cold reads of the same source are not de-duplicated: each one
// reads, validates and stores, and the last Put wins. Failures are never cached.
type Loader struct {
	fsys   fs.FS
	store  cache.Store
	logger *slog.Logger

	mu    sync.Mutex
	loads map[Name]int
}

// NewLoader creates a loader reading from fsys (rooted at the data directory).
func NewLoader(fsys fs.FS, store cache.Store, logger *slog.Logger) *Loader {
	return &Loader{
		fsys:   fsys,
		store:  store,
		logger: logger,
		loads:  make(map[Name]int),
	}
}

// Load returns the validated value for name, reading the file on a cache miss.
func (l *Loader) Load(ctx context.Context, name Name) (any, error) {
	src, ok := Lookup(name)
	if !ok {
		return nil, &NotFoundError{Source: name}
	}

	if v, ok := l.store.Get(src.CacheKey()); ok {
		l.logger.Debug("config cache hit", "source", name)
		return v, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}

	start := time.Now()
	data, err := fs.ReadFile(l.fsys, src.File)
	if err != nil {
		l.logger.Error("config source unavailable", "source", name, "file", src.File, "error", err)
		return nil, &NotFoundError{Source: name, Path: src.File, Err: err}
	}
	l.countLoad(name)

	v, err := schema.Decode(src.Kind, data)
	if err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			verr.Source = src.File
			l.logger.Error("config source failed validation",
				"source", name,
				"file", src.File,
				"violations", len(verr.Violations),
				"first", verr.First().String(),
			)
		}
		return nil, err
	}

	l.store.Put(src.CacheKey(), v)
	l.logger.Info("config source loaded", "source", name, "file", src.File, "duration", time.Since(start))
	return v, nil
}

// Load is the typed form of Loader.Load.
func Load[T any](ctx context.Context, l *Loader, name Name) (T, error) {
	var zero T
	v, err := l.Load(ctx, name)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("config source %q holds %T, not %T", name, v, zero)
	}
	return typed, nil
}

// Invalidate clears every cached source and returns how many entries were dropped.
// Reads already in flight may still return the value they loaded.
func (l *Loader) Invalidate() int {
	n := l.store.Clear()
	l.logger.Info("config cache cleared", "entries", n)
	return n
}

// Entries describes the cached sources.
func (l *Loader) Entries() []cache.EntryInfo {
	return l.store.Entries()
}

// Loads returns how many times name was read from disk.
func (l *Loader) Loads(name Name) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads[name]
}

// LoadCounts returns the read count for every source.
func (l *Loader) LoadCounts() map[Name]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[Name]int, len(l.loads))
	for k, v := range l.loads {
		out[k] = v
	}
	return out
}

// Close releases the underlying store.
func (l *Loader) Close() {
	l.store.Close()
}

func (l *Loader) countLoad(name Name) {
	l.mu.Lock()
	l.loads[name]++
	l.mu.Unlock()
}
