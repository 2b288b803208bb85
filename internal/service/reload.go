package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/qualcodeapp/prefs-core/internal/domain"
	"github.com/qualcodeapp/prefs-core/internal/id"
	"github.com/qualcodeapp/prefs-core/internal/store"
)

// ReloadDetector turns rewrites of the settings file by another process into
// ordinary settings events, one per aspect that differs from what this
// process last knew.
type ReloadDetector struct {
	store  *store.Store
	bus    Publisher
	logger *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	last domain.UserSettings
}

// NewReloadDetector snapshots the current settings and acknowledges the file
// as it is now, so only later rewrites are reported.
func NewReloadDetector(ctx context.Context, st *store.Store, bus Publisher, logger *slog.Logger) *ReloadDetector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	last := st.LoadSettings(ctx)
	if doc, changed := st.CheckExternal(ctx); changed {
		last = doc.Settings
	}

	return &ReloadDetector{
		store:  st,
		bus:    bus,
		logger: logger,
		now:    time.Now,
		last:   last,
	}
}

// Track keeps the snapshot current with changes committed in this process.
// It has the bus handler signature.
func (d *ReloadDetector) Track(_ context.Context, event domain.Event) error {
	d.mu.Lock()
	d.last = domain.Apply(d.last, event)
	d.mu.Unlock()
	return nil
}

// Snapshot returns the settings this detector currently believes are persisted.
func (d *ReloadDetector) Snapshot() domain.UserSettings {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Check compares the file against the last write this process made. If
// another writer replaced it, the differing aspects are published and returned.
func (d *ReloadDetector) Check(ctx context.Context) []domain.Event {
	doc, changed := d.store.CheckExternal(ctx)
	if !changed {
		return nil
	}

	meta := domain.EventMeta{
		OccurredAt:    d.now().UTC(),
		CorrelationID: id.NewCorrelationID(),
	}

	d.mu.Lock()
	events := domain.Diff(d.last, doc.Settings, meta)
	d.last = doc.Settings
	d.mu.Unlock()

	if len(events) == 0 {
		return nil
	}

	d.logger.Info("settings changed externally",
		"path", d.store.Path(),
		"changed_aspects", len(events),
		"correlation_id", meta.CorrelationID)

	if d.bus != nil {
		for _, e := range events {
			if err := d.bus.Publish(ctx, e); err != nil {
				d.logger.Warn("settings event subscriber failed",
					"kind", e.Kind(),
					"error", err)
			}
		}
	}
	return events
}
