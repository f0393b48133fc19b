package providers

import (
	"context"
	"os"

	"github.com/samber/do/v2"

	"github.com/rhedu/adstudio-server/internal/cache"
	"github.com/rhedu/adstudio-server/internal/config"
	"github.com/rhedu/adstudio-server/internal/logger"
	"github.com/rhedu/adstudio-server/internal/resolver"
	"github.com/rhedu/adstudio-server/internal/source"
)

// DataDir is the resolved absolute path of the config data directory.
type DataDir string

// ResolverHandle wraps resolver.Resolver with Shutdownable.
type ResolverHandle struct {
	*resolver.Resolver
}

// Shutdown implements do.Shutdownable.
func (h *ResolverHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideDataDir locates the data directory.
func ProvideDataDir(i do.Injector) (DataDir, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dir, err := source.FindDataDir(cfg.Data.Dir)
	if err != nil {
		return "", err
	}

	log.Info("Using data directory", "path", dir)
	return DataDir(dir), nil
}

// ProvideResolver provides the config resolver over a fresh cache.
// Every source is loaded once at startup. Load failures are logged, not fatal.
func ProvideResolver(i do.Injector) (*ResolverHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	dir := do.MustInvoke[DataDir](i)

	componentLog := log.Component("config")
	store := cache.NewMemory(cfg.Data.CacheTTL)
	loader := source.NewLoader(os.DirFS(string(dir)), store, componentLog)
	res := resolver.New(loader, componentLog)

	report, err := res.Audit(context.Background())
	switch {
	case err != nil:
		log.Error("Config sources failed to load at startup", "error", err)
	case report.Clean():
		log.Info("Config sources loaded", "entries", len(loader.Entries()))
	}

	return &ResolverHandle{Resolver: res}, nil
}
