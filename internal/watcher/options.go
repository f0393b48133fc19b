package watcher

import (
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Options configures the data directory watcher.
type Options struct {
	// Files limits invalidation to these base names. Empty means any file.
	Files []string
	// IgnorePatterns are filepath.Match patterns applied to the base name.
	IgnorePatterns []string
	// SettleDelay is the quiet period after the last change before invalidating.
	SettleDelay time.Duration
}

// setDefaults applies default values to unset options.
func (o *Options) setDefaults() {
	if o.SettleDelay == 0 {
		o.SettleDelay = 250 * time.Millisecond
	}

	// nil means defaults; an explicit empty slice disables ignoring.
	if o.IgnorePatterns == nil {
		o.IgnorePatterns = []string{
			"*.swp",
			"*.tmp",
			"*~",
			".DS_Store",
		}
	}
}

// relevant reports whether a change to path should invalidate the cache.
func (o *Options) relevant(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}

	for _, pattern := range o.IgnorePatterns {
		matched, err := filepath.Match(pattern, base)
		if err == nil && matched {
			return false
		}
	}

	return len(o.Files) == 0 || slices.Contains(o.Files, base)
}
