// Package di provides dependency injection configuration for the preferences daemon.
package di

import (
	"github.com/samber/do/v2"

	"github.com/qualcodeapp/prefs-core/internal/bus"
	"github.com/qualcodeapp/prefs-core/internal/config"
	"github.com/qualcodeapp/prefs-core/internal/di/providers"
	"github.com/qualcodeapp/prefs-core/internal/logger"
	"github.com/qualcodeapp/prefs-core/internal/service"
	"github.com/qualcodeapp/prefs-core/internal/store"
	"github.com/qualcodeapp/prefs-core/internal/tools"
	"github.com/qualcodeapp/prefs-core/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()
	Register(injector)
	return injector
}

// Register adds every provider to injector. Tests override individual
// providers afterwards with do.Override.
func Register(injector do.Injector) {
	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideBus)

	// Persistence
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideJournal)
	do.Provide(injector, providers.ProvideSSEManager)

	// Business services
	do.Provide(injector, providers.ProvideSettingsService)
	do.Provide(injector, providers.ProvideSettingsQueries)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideToolRegistry)
	do.Provide(injector, providers.ProvideReloadDetector)

	// Workers
	do.Provide(injector, providers.ProvideFileWatcher)
	do.Provide(injector, providers.ProvideToolLimiter)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)
}

// Bootstrap initializes all services. Event subscribers (journal, SSE, reload
// detector) are invoked before anything can publish.
func Bootstrap(injector do.Injector) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*bus.Bus](injector)
	_ = do.MustInvoke[*store.Store](injector)

	// Subscribers
	if _, err := do.Invoke[*providers.JournalHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.ReloadDetectorHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.SettingsService](injector)
	_ = do.MustInvoke[*service.SettingsQueries](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*tools.Registry](injector)

	// Workers
	if _, err := do.Invoke[*providers.FileWatcherHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.ToolLimiterHandle](injector)

	// Server
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
