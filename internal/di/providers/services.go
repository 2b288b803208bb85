package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/qualcodeapp/prefs-core/internal/bus"
	"github.com/qualcodeapp/prefs-core/internal/logger"
	"github.com/qualcodeapp/prefs-core/internal/service"
	"github.com/qualcodeapp/prefs-core/internal/store"
	"github.com/qualcodeapp/prefs-core/internal/tools"
	"github.com/qualcodeapp/prefs-core/internal/validation"
)

// ProvideSettingsService provides the settings command handlers.
func ProvideSettingsService(i do.Injector) (*service.SettingsService, error) {
	st := do.MustInvoke[*store.Store](i)
	b := do.MustInvoke[*bus.Bus](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSettingsService(st, b, log.Component("settings")), nil
}

// ProvideSettingsQueries provides the read side, including history when enabled.
func ProvideSettingsQueries(i do.Injector) (*service.SettingsQueries, error) {
	st := do.MustInvoke[*store.Store](i)
	journalHandle := do.MustInvoke[*JournalHandle](i)

	// A nil *journal.Journal must not become a non-nil interface.
	var history service.HistoryReader
	if journalHandle.Journal != nil {
		history = journalHandle.Journal
	}
	return service.NewSettingsQueries(st, history), nil
}

// ProvideValidator provides the tool parameter validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideToolRegistry provides the agent tool surface.
func ProvideToolRegistry(i do.Injector) (*tools.Registry, error) {
	settings := do.MustInvoke[*service.SettingsService](i)
	queries := do.MustInvoke[*service.SettingsQueries](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	registry := tools.NewRegistry(settings, queries, v, log.Component("tools"))
	log.Info("Tool registry ready", "tools", len(registry.List()))

	return registry, nil
}

// ReloadDetectorHandle wraps the detector and its bus subscription.
type ReloadDetectorHandle struct {
	*service.ReloadDetector
	unsubscribe func()
}

// Shutdown implements do.Shutdownable.
func (h *ReloadDetectorHandle) Shutdown() error {
	h.unsubscribe()
	return nil
}

// ProvideReloadDetector provides external-change detection. It tracks every
// published event so its snapshot matches what this process committed.
func ProvideReloadDetector(i do.Injector) (*ReloadDetectorHandle, error) {
	st := do.MustInvoke[*store.Store](i)
	b := do.MustInvoke[*bus.Bus](i)
	log := do.MustInvoke[*logger.Logger](i)

	detector := service.NewReloadDetector(context.Background(), st, b, log.Component("reload"))

	return &ReloadDetectorHandle{
		ReloadDetector: detector,
		unsubscribe:    b.SubscribeAll(detector.Track),
	}, nil
}
