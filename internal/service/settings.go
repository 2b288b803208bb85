package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/qualcodeapp/prefs-core/internal/derive"
	"github.com/qualcodeapp/prefs-core/internal/domain"
	"github.com/qualcodeapp/prefs-core/internal/errors"
	"github.com/qualcodeapp/prefs-core/internal/id"
	"github.com/qualcodeapp/prefs-core/internal/store"
)

// Publisher delivers committed events to subscribers.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// SettingsService runs the settings commands: load, derive, persist, publish.
type SettingsService struct {
	store  *store.Store
	bus    Publisher
	logger *slog.Logger
	now    func() time.Time
}

// NewSettingsService creates a new settings service. bus may be nil.
func NewSettingsService(store *store.Store, bus Publisher, logger *slog.Logger) *SettingsService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SettingsService{
		store:  store,
		bus:    bus,
		logger: logger,
		now:    time.Now,
	}
}

// BackupInput holds the parameters of ConfigureBackup.
type BackupInput struct {
	Enabled         bool
	IntervalMinutes int
	MaxBackups      int
	BackupPath      *string
}

// CloudSyncInput holds the parameters of ConfigureCloudSync. A nil URL or
// project id keeps the current value; a pointer to "" clears it.
type CloudSyncInput struct {
	Enabled         bool
	ConvexURL       *string
	ConvexProjectID *string
}

// ChangeTheme sets the UI theme.
func (s *SettingsService) ChangeTheme(ctx context.Context, name string) (domain.ThemeChanged, error) {
	return execute(ctx, s, "theme",
		func(current domain.UserSettings, meta domain.EventMeta) (domain.ThemeChanged, error) {
			return derive.ThemeChange(name, current, meta)
		},
		func(ctx context.Context, e domain.ThemeChanged) error {
			return s.store.SetTheme(ctx, e.New)
		})
}

// ChangeFont sets the UI font family and size.
func (s *SettingsService) ChangeFont(ctx context.Context, family string, size int) (domain.FontChanged, error) {
	return execute(ctx, s, "font",
		func(current domain.UserSettings, meta domain.EventMeta) (domain.FontChanged, error) {
			return derive.FontChange(family, size, current, meta)
		},
		func(ctx context.Context, e domain.FontChanged) error {
			return s.store.SetFont(ctx, e.New)
		})
}

// ChangeLanguage sets the UI language.
func (s *SettingsService) ChangeLanguage(ctx context.Context, code string) (domain.LanguageChanged, error) {
	return execute(ctx, s, "language",
		func(current domain.UserSettings, meta domain.EventMeta) (domain.LanguageChanged, error) {
			return derive.LanguageChange(code, current, meta)
		},
		func(ctx context.Context, e domain.LanguageChanged) error {
			return s.store.SetLanguage(ctx, e.New)
		})
}

// ConfigureBackup sets the automatic-backup policy.
func (s *SettingsService) ConfigureBackup(ctx context.Context, in BackupInput) (domain.BackupConfigChanged, error) {
	return execute(ctx, s, "backup",
		func(current domain.UserSettings, meta domain.EventMeta) (domain.BackupConfigChanged, error) {
			return derive.BackupChange(in.Enabled, in.IntervalMinutes, in.MaxBackups, in.BackupPath, current, meta)
		},
		func(ctx context.Context, e domain.BackupConfigChanged) error {
			return s.store.SetBackup(ctx, e.New)
		})
}

// ConfigureAVCoding sets the timestamp and speaker display formats.
func (s *SettingsService) ConfigureAVCoding(ctx context.Context, timestampFormat, speakerFormat string) (domain.AVCodingConfigChanged, error) {
	return execute(ctx, s, "av_coding",
		func(current domain.UserSettings, meta domain.EventMeta) (domain.AVCodingConfigChanged, error) {
			return derive.AVCodingChange(timestampFormat, speakerFormat, current, meta)
		},
		func(ctx context.Context, e domain.AVCodingConfigChanged) error {
			return s.store.SetAVCoding(ctx, e.New)
		})
}

// ConfigureCloudSync sets the cloud-sync backend.
func (s *SettingsService) ConfigureCloudSync(ctx context.Context, in CloudSyncInput) (domain.CloudSyncConfigChanged, error) {
	return execute(ctx, s, "cloud_sync",
		func(current domain.UserSettings, meta domain.EventMeta) (domain.CloudSyncConfigChanged, error) {
			return derive.CloudSyncChange(in.Enabled, in.ConvexURL, in.ConvexProjectID, current, meta)
		},
		func(ctx context.Context, e domain.CloudSyncConfigChanged) error {
			return s.store.SetBackend(ctx, e.New)
		})
}

// ResetToDefaults restores every settings aspect to its default and returns
// one event per aspect that actually changed. Recent projects are kept.
func (s *SettingsService) ResetToDefaults(ctx context.Context) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	current := s.store.LoadSettings(ctx)
	events := derive.ResetChanges(current, s.newMeta())
	if len(events) == 0 {
		return nil, nil
	}

	if err := s.store.SaveSettings(ctx, domain.DefaultUserSettings()); err != nil {
		return nil, err
	}

	for _, e := range events {
		s.publish(ctx, e)
	}

	s.logger.Info("settings reset to defaults", "changed_aspects", len(events))
	return events, nil
}

// OpenProject records a project as opened now. An empty name defaults to the
// last element of path.
func (s *SettingsService) OpenProject(ctx context.Context, path, name string) ([]domain.RecentProject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.Validation("project path is required")
	}
	if name == "" {
		name = filepath.Base(path)
	}

	projects, err := s.store.AddRecentProject(ctx, domain.RecentProject{
		Path:       path,
		Name:       name,
		LastOpened: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("project opened", "path", path, "recent_count", len(projects))
	return projects, nil
}

// ForgetProject removes a project from the recent list.
func (s *SettingsService) ForgetProject(ctx context.Context, path string) ([]domain.RecentProject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	projects, err := s.store.RemoveRecentProject(ctx, path)
	if err != nil {
		return nil, err
	}

	s.logger.Info("project forgotten", "path", path)
	return projects, nil
}

// ClearRecentProjects empties the recent list.
func (s *SettingsService) ClearRecentProjects(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.store.ClearRecentProjects(ctx); err != nil {
		return err
	}

	s.logger.Info("recent projects cleared")
	return nil
}

func (s *SettingsService) newMeta() domain.EventMeta {
	return domain.EventMeta{
		OccurredAt:    s.now().UTC(),
		CorrelationID: id.NewCorrelationID(),
	}
}

// publish hands e to the bus. Subscriber failures are logged; the change is
// already committed.
func (s *SettingsService) publish(ctx context.Context, e domain.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, e); err != nil {
		s.logger.Warn("settings event subscriber failed",
			"kind", e.Kind(),
			"correlation_id", e.Metadata().CorrelationID,
			"error", err)
	}
}

// execute runs one command: load the aggregate, derive the event, and on
// success persist and publish it. A rejected change performs no I/O beyond
// the initial load.
func execute[E domain.Event](
	ctx context.Context,
	s *SettingsService,
	aspect string,
	deriveFn func(domain.UserSettings, domain.EventMeta) (E, error),
	persist func(context.Context, E) error,
) (E, error) {
	var zero E
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	current := s.store.LoadSettings(ctx)

	event, err := deriveFn(current, s.newMeta())
	if err != nil {
		s.logger.Debug("settings change rejected",
			"aspect", aspect,
			"code", errors.CodeOf(err),
			"error", err)
		return zero, err
	}

	if err := persist(ctx, event); err != nil {
		return zero, err
	}

	s.publish(ctx, event)

	oldValue, newValue := domain.Values(event)
	s.logger.Info(aspect+" changed",
		"old", oldValue,
		"new", newValue,
		"correlation_id", event.Metadata().CorrelationID)

	return event, nil
}
