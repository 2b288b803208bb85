package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/qualcodeapp/prefs-core/internal/bus"
	"github.com/qualcodeapp/prefs-core/internal/config"
	"github.com/qualcodeapp/prefs-core/internal/journal"
	"github.com/qualcodeapp/prefs-core/internal/logger"
	"github.com/qualcodeapp/prefs-core/internal/sse"
	"github.com/qualcodeapp/prefs-core/internal/store"
)

// ProvideBus provides the in-process event bus.
func ProvideBus(i do.Injector) (*bus.Bus, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return bus.New(log.Component("bus")), nil
}

// SSEManagerHandle wraps the SSE manager and its bus subscription.
type SSEManagerHandle struct {
	*sse.Manager
	unsubscribe func()
	injector    do.Injector
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.unsubscribe()
	ctx, cancel := shutdownContext(h.injector)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager, fed by every settings event.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	b := do.MustInvoke[*bus.Bus](i)

	manager := sse.NewManager(log.Component("sse"))
	unsubscribe := b.SubscribeAll(manager.HandleEvent)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager:     manager,
		unsubscribe: unsubscribe,
		injector:    i,
	}, nil
}

// ProvideStore provides the settings document store.
func ProvideStore(i do.Injector) (*store.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st := store.New(cfg.Settings.Path, log.Component("store"))

	log.Info("Settings store initialized",
		"path", st.Path(),
		"exists", st.Exists(),
	)

	return st, nil
}

// JournalHandle wraps the history journal. Journal is nil when history is disabled.
type JournalHandle struct {
	*journal.Journal
	unsubscribe func()
}

// Shutdown implements do.Shutdownable.
func (h *JournalHandle) Shutdown() error {
	if h.Journal == nil {
		return nil
	}
	h.unsubscribe()
	return h.Close()
}

// ProvideJournal opens the history database and records every settings event.
func ProvideJournal(i do.Injector) (*JournalHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	b := do.MustInvoke[*bus.Bus](i)

	if !cfg.Journal.Enabled {
		log.Info("Settings history disabled by configuration")
		return &JournalHandle{}, nil
	}

	j, err := journal.Open(cfg.Journal.Path, log.Component("journal"))
	if err != nil {
		return nil, err
	}

	count, err := j.Count(context.Background())
	if err != nil {
		log.Warn("Failed to count history entries", "error", err)
	}
	log.Info("Settings history opened", "path", cfg.Journal.Path, "entries", count)

	return &JournalHandle{
		Journal:     j,
		unsubscribe: b.SubscribeAll(j.Record),
	}, nil
}
