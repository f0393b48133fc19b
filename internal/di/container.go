// Package di provides dependency injection configuration for the Ad Studio server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/rhedu/adstudio-server/internal/config"
	"github.com/rhedu/adstudio-server/internal/di/providers"
	"github.com/rhedu/adstudio-server/internal/logger"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Config sources
	do.Provide(injector, providers.ProvideDataDir)
	do.Provide(injector, providers.ProvideResolver)

	// Workers
	do.Provide(injector, providers.ProvideFileWatcher)
	do.Provide(injector, providers.ProvideRateLimiter)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services.
// This triggers lazy initialization in dependency order.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[providers.DataDir](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.ResolverHandle](injector)

	if _, err := do.Invoke[*providers.FileWatcherHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.RateLimiterHandle](injector)

	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
