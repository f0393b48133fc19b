// Package source resolves logical config sources to files, parses and validates
// them, and caches the typed result.
package source

import (
	"fmt"
	"os"
	"path/filepath"

	domainerrors "github.com/rhedu/adstudio-server/internal/errors"
	"github.com/rhedu/adstudio-server/internal/schema"
)

// Name is a logical config source.
type Name string

// Logical sources. Each maps to exactly one file in the data directory.
const (
	AdLimits   Name = "ad_limits"
	AssetSpecs Name = "asset_specs"
	Taxonomies Name = "taxonomies"
)

// Source binds a logical name to its file and document kind.
type Source struct {
	Name Name
	File string
	Kind schema.Kind
}

// CacheKey is the key the loaded value is stored under.
func (s Source) CacheKey() string {
	return "yaml:" + s.File
}

var registry = []Source{
	{Name: AdLimits, File: "ad_limits.yaml", Kind: schema.KindAdLimits},
	{Name: AssetSpecs, File: "asset_specs.yaml", Kind: schema.KindAssetSpecs},
	{Name: Taxonomies, File: "taxonomies.yaml", Kind: schema.KindTaxonomies},
}

// All returns every known source in a stable order.
func All() []Source {
	out := make([]Source, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the source registered under name.
func Lookup(name Name) (Source, bool) {
	for _, s := range registry {
		if s.Name == name {
			return s, true
		}
	}
	return Source{}, false
}

// NotFoundError reports a source file that is missing or unreadable.
type NotFoundError struct {
	Source Name
	Path   string
	Err    error
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config source %q is not registered", e.Source)
	}
	return fmt.Sprintf("config source %q unavailable at %s: %v", e.Source, e.Path, e.Err)
}

// Unwrap returns the underlying I/O error.
func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// Is lets callers match with errors.Is(err, errors.ErrSourceNotFound).
func (e *NotFoundError) Is(target error) bool {
	return target == domainerrors.ErrSourceNotFound
}

// FindDataDir returns the directory holding the source files.
// An explicit directory must exist. Otherwise ./data, ../data and
// <executable dir>/data are tried in that order.
func FindDataDir(explicit string) (string, error) {
	if explicit != "" {
		if !isDir(explicit) {
			return "", fmt.Errorf("data directory %s does not exist", explicit)
		}
		return filepath.Abs(explicit)
	}

	candidates := []string{"data", filepath.Join("..", "data")}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "data"))
	}

	for _, dir := range candidates {
		if isDir(dir) {
			return filepath.Abs(dir)
		}
	}
	return "", fmt.Errorf("data directory not found, tried %v", candidates)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
