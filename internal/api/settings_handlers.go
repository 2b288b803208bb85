package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/qualcodeapp/prefs-core/internal/domain"
	"github.com/qualcodeapp/prefs-core/internal/journal"
	"github.com/qualcodeapp/prefs-core/internal/service"
)

func (s *Server) registerSettingsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getSettings",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings",
		Summary:     "Get settings",
		Description: "Returns every preference aspect",
		Tags:        []string{"Settings"},
	}, s.handleGetSettings)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSettingsStatus",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings/status",
		Summary:     "Get settings status",
		Description: "Reports where settings are stored and a summary of the current state",
		Tags:        []string{"Settings"},
	}, s.handleGetStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTheme",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings/theme",
		Summary:     "Get theme",
		Tags:        []string{"Settings"},
	}, s.handleGetTheme)

	huma.Register(s.api, huma.Operation{
		OperationID: "changeTheme",
		Method:      http.MethodPut,
		Path:        "/api/v1/settings/theme",
		Summary:     "Change theme",
		Description: "Sets the UI theme and publishes settings.theme_changed",
		Tags:        []string{"Settings"},
	}, s.handleChangeTheme)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFont",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings/font",
		Summary:     "Get font",
		Tags:        []string{"Settings"},
	}, s.handleGetFont)

	huma.Register(s.api, huma.Operation{
		OperationID: "changeFont",
		Method:      http.MethodPut,
		Path:        "/api/v1/settings/font",
		Summary:     "Change font",
		Description: "Sets the UI font family and size and publishes settings.font_changed",
		Tags:        []string{"Settings"},
	}, s.handleChangeFont)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLanguage",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings/language",
		Summary:     "Get language",
		Tags:        []string{"Settings"},
	}, s.handleGetLanguage)

	huma.Register(s.api, huma.Operation{
		OperationID: "changeLanguage",
		Method:      http.MethodPut,
		Path:        "/api/v1/settings/language",
		Summary:     "Change language",
		Description: "Sets the UI language and publishes settings.language_changed",
		Tags:        []string{"Settings"},
	}, s.handleChangeLanguage)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBackupConfig",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings/backup",
		Summary:     "Get backup config",
		Tags:        []string{"Settings"},
	}, s.handleGetBackup)

	huma.Register(s.api, huma.Operation{
		OperationID: "configureBackup",
		Method:      http.MethodPut,
		Path:        "/api/v1/settings/backup",
		Summary:     "Configure backup",
		Description: "Sets the automatic backup policy and publishes settings.backup_config_changed",
		Tags:        []string{"Settings"},
	}, s.handleConfigureBackup)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAVCodingConfig",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings/av-coding",
		Summary:     "Get AV coding config",
		Tags:        []string{"Settings"},
	}, s.handleGetAVCoding)

	huma.Register(s.api, huma.Operation{
		OperationID: "configureAVCoding",
		Method:      http.MethodPut,
		Path:        "/api/v1/settings/av-coding",
		Summary:     "Configure AV coding",
		Description: "Sets the transcript timestamp and speaker formats",
		Tags:        []string{"Settings"},
	}, s.handleConfigureAVCoding)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCloudSyncConfig",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings/cloud-sync",
		Summary:     "Get cloud sync config",
		Tags:        []string{"Settings"},
	}, s.handleGetCloudSync)

	huma.Register(s.api, huma.Operation{
		OperationID: "configureCloudSync",
		Method:      http.MethodPut,
		Path:        "/api/v1/settings/cloud-sync",
		Summary:     "Configure cloud sync",
		Description: "Sets the Convex backend. Omitted url or project_id keep their value; an empty string clears it.",
		Tags:        []string{"Settings"},
	}, s.handleConfigureCloudSync)

	huma.Register(s.api, huma.Operation{
		OperationID: "resetSettings",
		Method:      http.MethodPost,
		Path:        "/api/v1/settings/reset",
		Summary:     "Reset settings",
		Description: "Restores every aspect to its default and publishes one event per aspect that changed",
		Tags:        []string{"Settings"},
	}, s.handleResetSettings)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSettingsHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings/history",
		Summary:     "Get settings history",
		Description: "Returns recorded settings changes, newest first",
		Tags:        []string{"Settings"},
	}, s.handleGetHistory)
}

// === DTOs ===

// SettingsOutput contains every preference aspect.
type SettingsOutput struct {
	Body domain.UserSettings
}

// StatusOutput contains the settings status summary.
type StatusOutput struct {
	Body service.Status
}

// ValueOutput wraps a single preference aspect.
type ValueOutput[T any] struct {
	Body T
}

// EventOutput wraps the event published by a command.
type EventOutput[E domain.Event] struct {
	Body E
}

// ChangeThemeInput contains parameters for changing the theme.
type ChangeThemeInput struct {
	Body struct {
		Name string `json:"name" doc:"Theme name: light, dark, or system" example:"dark"`
	}
}

// ChangeFontInput contains parameters for changing the font.
type ChangeFontInput struct {
	Body struct {
		Family string `json:"family" doc:"Font family" example:"Inter"`
		Size   int    `json:"size" doc:"Font size in points (10-24)" example:"14"`
	}
}

// ChangeLanguageInput contains parameters for changing the UI language.
type ChangeLanguageInput struct {
	Body struct {
		Code string `json:"code" doc:"Language code, e.g. en or de" example:"de"`
	}
}

// ConfigureBackupInput contains parameters for the backup policy.
type ConfigureBackupInput struct {
	Body struct {
		Enabled         bool    `json:"enabled" doc:"Whether automatic backups run"`
		IntervalMinutes int     `json:"interval_minutes" doc:"Minutes between backups (5-120)" example:"30"`
		MaxBackups      int     `json:"max_backups" doc:"Backups to keep (1-20)" example:"10"`
		BackupPath      *string `json:"backup_path,omitempty" doc:"Backup directory; omit for the project directory"`
	}
}

// ConfigureAVCodingInput contains parameters for AV coding.
type ConfigureAVCodingInput struct {
	Body struct {
		TimestampFormat string `json:"timestamp_format" doc:"HH:MM:SS, MM:SS, or HH:MM:SS.mmm" example:"HH:MM:SS"`
		SpeakerFormat   string `json:"speaker_format" doc:"Label template containing {n}" example:"Speaker {n}"`
	}
}

// ConfigureCloudSyncInput contains parameters for the Convex backend.
type ConfigureCloudSyncInput struct {
	Body struct {
		Enabled   bool    `json:"enabled" doc:"Whether cloud sync is on; requires a URL"`
		ConvexURL *string `json:"convex_url,omitempty" doc:"Convex deployment URL" example:"https://quick-fox-123.convex.cloud"`
		ProjectID *string `json:"convex_project_id,omitempty" doc:"Convex project identifier"`
	}
}

// ResetOutput lists the events published by a reset.
type ResetOutput struct {
	Body ResetResponse
}

// ResetResponse contains one entry per aspect that changed.
type ResetResponse struct {
	Changes []ChangeSummary `json:"changes" doc:"Changes applied, empty when settings were already default"`
}

// ChangeSummary is a published event tagged with its kind.
type ChangeSummary struct {
	Kind   string `json:"kind" doc:"Event kind"`
	Change any    `json:"change" doc:"Event payload with old and new values"`
}

// HistoryInput contains parameters for reading history.
type HistoryInput struct {
	Limit int `query:"limit" default:"50" minimum:"1" maximum:"500" doc:"Maximum entries to return"`
}

// HistoryOutput contains recorded changes.
type HistoryOutput struct {
	Body []journal.Entry
}

// === Handlers ===

func (s *Server) handleGetSettings(ctx context.Context, _ *struct{}) (*SettingsOutput, error) {
	return &SettingsOutput{Body: s.services.Queries.GetAllSettings(ctx)}, nil
}

func (s *Server) handleGetStatus(ctx context.Context, _ *struct{}) (*StatusOutput, error) {
	return &StatusOutput{Body: s.services.Queries.Status(ctx)}, nil
}

func (s *Server) handleGetTheme(ctx context.Context, _ *struct{}) (*ValueOutput[domain.ThemePreference], error) {
	return &ValueOutput[domain.ThemePreference]{Body: s.services.Queries.GetTheme(ctx)}, nil
}

func (s *Server) handleChangeTheme(ctx context.Context, input *ChangeThemeInput) (*EventOutput[domain.ThemeChanged], error) {
	e, err := s.services.Settings.ChangeTheme(ctx, input.Body.Name)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &EventOutput[domain.ThemeChanged]{Body: e}, nil
}

func (s *Server) handleGetFont(ctx context.Context, _ *struct{}) (*ValueOutput[domain.FontPreference], error) {
	return &ValueOutput[domain.FontPreference]{Body: s.services.Queries.GetFont(ctx)}, nil
}

func (s *Server) handleChangeFont(ctx context.Context, input *ChangeFontInput) (*EventOutput[domain.FontChanged], error) {
	e, err := s.services.Settings.ChangeFont(ctx, input.Body.Family, input.Body.Size)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &EventOutput[domain.FontChanged]{Body: e}, nil
}

func (s *Server) handleGetLanguage(ctx context.Context, _ *struct{}) (*ValueOutput[domain.LanguagePreference], error) {
	return &ValueOutput[domain.LanguagePreference]{Body: s.services.Queries.GetLanguage(ctx)}, nil
}

func (s *Server) handleChangeLanguage(ctx context.Context, input *ChangeLanguageInput) (*EventOutput[domain.LanguageChanged], error) {
	e, err := s.services.Settings.ChangeLanguage(ctx, input.Body.Code)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &EventOutput[domain.LanguageChanged]{Body: e}, nil
}

func (s *Server) handleGetBackup(ctx context.Context, _ *struct{}) (*ValueOutput[domain.BackupConfig], error) {
	return &ValueOutput[domain.BackupConfig]{Body: s.services.Queries.GetBackupConfig(ctx)}, nil
}

func (s *Server) handleConfigureBackup(ctx context.Context, input *ConfigureBackupInput) (*EventOutput[domain.BackupConfigChanged], error) {
	e, err := s.services.Settings.ConfigureBackup(ctx, service.BackupInput{
		Enabled:         input.Body.Enabled,
		IntervalMinutes: input.Body.IntervalMinutes,
		MaxBackups:      input.Body.MaxBackups,
		BackupPath:      input.Body.BackupPath,
	})
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &EventOutput[domain.BackupConfigChanged]{Body: e}, nil
}

func (s *Server) handleGetAVCoding(ctx context.Context, _ *struct{}) (*ValueOutput[domain.AVCodingConfig], error) {
	return &ValueOutput[domain.AVCodingConfig]{Body: s.services.Queries.GetAVCodingConfig(ctx)}, nil
}

func (s *Server) handleConfigureAVCoding(ctx context.Context, input *ConfigureAVCodingInput) (*EventOutput[domain.AVCodingConfigChanged], error) {
	e, err := s.services.Settings.ConfigureAVCoding(ctx, input.Body.TimestampFormat, input.Body.SpeakerFormat)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &EventOutput[domain.AVCodingConfigChanged]{Body: e}, nil
}

func (s *Server) handleGetCloudSync(ctx context.Context, _ *struct{}) (*ValueOutput[domain.BackendConfig], error) {
	return &ValueOutput[domain.BackendConfig]{Body: s.services.Queries.GetBackendConfig(ctx)}, nil
}

func (s *Server) handleConfigureCloudSync(ctx context.Context, input *ConfigureCloudSyncInput) (*EventOutput[domain.CloudSyncConfigChanged], error) {
	e, err := s.services.Settings.ConfigureCloudSync(ctx, service.CloudSyncInput{
		Enabled:         input.Body.Enabled,
		ConvexURL:       input.Body.ConvexURL,
		ConvexProjectID: input.Body.ProjectID,
	})
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &EventOutput[domain.CloudSyncConfigChanged]{Body: e}, nil
}

func (s *Server) handleResetSettings(ctx context.Context, _ *struct{}) (*ResetOutput, error) {
	events, err := s.services.Settings.ResetToDefaults(ctx)
	if err != nil {
		return nil, toHTTPError(err)
	}

	changes := make([]ChangeSummary, 0, len(events))
	for _, e := range events {
		changes = append(changes, ChangeSummary{Kind: string(e.Kind()), Change: e})
	}
	return &ResetOutput{Body: ResetResponse{Changes: changes}}, nil
}

func (s *Server) handleGetHistory(ctx context.Context, input *HistoryInput) (*HistoryOutput, error) {
	entries, err := s.services.Queries.GetHistory(ctx, input.Limit)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &HistoryOutput{Body: entries}, nil
}
