package service

import (
	"context"

	"github.com/qualcodeapp/prefs-core/internal/domain"
	"github.com/qualcodeapp/prefs-core/internal/journal"
	"github.com/qualcodeapp/prefs-core/internal/store"
)

// HistoryReader lists recorded settings events, newest first.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

// SettingsQueries reads settings straight from the store. Nothing is cached;
// every call re-reads the document.
type SettingsQueries struct {
	store   *store.Store
	history HistoryReader
}

// NewSettingsQueries creates the query side. history may be nil when the
// journal is disabled.
func NewSettingsQueries(store *store.Store, history HistoryReader) *SettingsQueries {
	return &SettingsQueries{store: store, history: history}
}

// Status summarizes where settings live and what state they are in.
type Status struct {
	SettingsPath        string `json:"settings_path"`
	FileExists          bool   `json:"file_exists"`
	Theme               string `json:"theme"`
	Language            string `json:"language"`
	BackupEnabled       bool   `json:"backup_enabled"`
	CloudSyncEnabled    bool   `json:"cloud_sync_enabled"`
	CloudSyncConfigured bool   `json:"cloud_sync_configured"`
	RecentProjectCount  int    `json:"recent_project_count"`
	HistoryEnabled      bool   `json:"history_enabled"`
}

func (q *SettingsQueries) GetAllSettings(ctx context.Context) domain.UserSettings {
	return q.store.LoadSettings(ctx)
}

func (q *SettingsQueries) GetTheme(ctx context.Context) domain.ThemePreference {
	return q.store.GetTheme(ctx)
}

func (q *SettingsQueries) GetFont(ctx context.Context) domain.FontPreference {
	return q.store.GetFont(ctx)
}

func (q *SettingsQueries) GetLanguage(ctx context.Context) domain.LanguagePreference {
	return q.store.GetLanguage(ctx)
}

func (q *SettingsQueries) GetBackupConfig(ctx context.Context) domain.BackupConfig {
	return q.store.GetBackup(ctx)
}

func (q *SettingsQueries) GetAVCodingConfig(ctx context.Context) domain.AVCodingConfig {
	return q.store.GetAVCoding(ctx)
}

func (q *SettingsQueries) GetBackendConfig(ctx context.Context) domain.BackendConfig {
	return q.store.GetBackend(ctx)
}

func (q *SettingsQueries) GetRecentProjects(ctx context.Context) []domain.RecentProject {
	return q.store.RecentProjects(ctx)
}

// GetHistory returns up to limit recorded events. It is empty when no
// journal is configured.
func (q *SettingsQueries) GetHistory(ctx context.Context, limit int) ([]journal.Entry, error) {
	if q.history == nil {
		return []journal.Entry{}, nil
	}
	return q.history.Recent(ctx, limit)
}

// Status reports the current settings state in one read.
func (q *SettingsQueries) Status(ctx context.Context) Status {
	doc := q.store.Load(ctx)
	return Status{
		SettingsPath:        q.store.Path(),
		FileExists:          q.store.Exists(),
		Theme:               doc.Settings.Theme.Name,
		Language:            doc.Settings.Language.Code,
		BackupEnabled:       doc.Settings.Backup.Enabled,
		CloudSyncEnabled:    doc.Settings.Backend.CloudSyncEnabled,
		CloudSyncConfigured: doc.Settings.Backend.IsConfigured(),
		RecentProjectCount:  len(doc.RecentProjects),
		HistoryEnabled:      q.history != nil,
	}
}
