package tools

import (
	"context"

	"github.com/qualcodeapp/prefs-core/internal/domain"
	apperrors "github.com/qualcodeapp/prefs-core/internal/errors"
	"github.com/qualcodeapp/prefs-core/internal/service"
)

type noParams struct{}

type confirmParams struct {
	Confirm bool `json:"confirm" doc:"Must be true to perform this irreversible action"`
}

type changeThemeParams struct {
	Theme *string `json:"theme" enum:"light,dark,system" doc:"Theme name" validate:"required"`
}

type changeFontParams struct {
	Family *string `json:"family" doc:"Supported UI font family, e.g. Inter" validate:"required"`
	Size   *int    `json:"size" minimum:"10" maximum:"24" doc:"Font size in pixels" validate:"required"`
}

type changeLanguageParams struct {
	Code *string `json:"code" doc:"UI language code, e.g. en" validate:"required"`
}

type configureBackupParams struct {
	Enabled         bool    `json:"enabled" doc:"Whether automatic backups run"`
	IntervalMinutes *int    `json:"interval_minutes" minimum:"5" maximum:"120" doc:"Minutes between backups" validate:"required"`
	MaxBackups      *int    `json:"max_backups" minimum:"1" maximum:"20" doc:"Backups to keep" validate:"required"`
	BackupPath      *string `json:"backup_path,omitempty" required:"false" doc:"Directory for backups; omitted means the default location"`
}

type configureAVCodingParams struct {
	TimestampFormat *string `json:"timestamp_format" enum:"HH:MM:SS,MM:SS,HH:MM:SS.mmm" doc:"Timestamp display format" validate:"required"`
	SpeakerFormat   *string `json:"speaker_format" doc:"Speaker label template containing {n}" validate:"required"`
}

type configureCloudSyncParams struct {
	Enabled         bool    `json:"enabled" doc:"Whether cloud sync is on; requires a Convex URL"`
	ConvexURL       *string `json:"convex_url,omitempty" required:"false" doc:"Convex deployment URL; omit to keep, empty string to clear"`
	ConvexProjectID *string `json:"convex_project_id,omitempty" required:"false" doc:"Convex project id; omit to keep, empty string to clear"`
}

type historyParams struct {
	Limit int `json:"limit,omitempty" required:"false" minimum:"1" maximum:"500" doc:"Maximum entries to return, newest first" validate:"omitempty,min=1,max=500"`
}

// settingsView is the get_settings payload.
type settingsView struct {
	Settings       domain.UserSettings    `json:"settings"`
	RecentProjects []domain.RecentProject `json:"recent_projects"`
}

// changeView summarizes a committed change for agents.
type changeView struct {
	Kind          domain.EventKind `json:"kind"`
	CorrelationID string           `json:"correlation_id"`
	Old           any              `json:"old"`
	New           any              `json:"new"`
}

func (r *Registry) registerAll() {
	register(r, "get_settings_status",
		"Report where settings are stored, whether the file exists, and a summary of the current state.",
		false,
		func(ctx context.Context, _ noParams) (any, error) {
			return r.queries.Status(ctx), nil
		})

	register(r, "get_settings",
		"Return all user settings and the recent projects list.",
		false,
		func(ctx context.Context, _ noParams) (any, error) {
			return settingsView{
				Settings:       r.queries.GetAllSettings(ctx),
				RecentProjects: r.queries.GetRecentProjects(ctx),
			}, nil
		})

	register(r, "change_theme",
		"Change the UI theme to light, dark or system.",
		false,
		func(ctx context.Context, p changeThemeParams) (any, error) {
			e, err := r.settings.ChangeTheme(ctx, *p.Theme)
			if err != nil {
				return nil, err
			}
			return changeView{e.Kind(), e.CorrelationID, e.Old, e.New}, nil
		})

	register(r, "change_font",
		"Change the UI font family and size.",
		false,
		func(ctx context.Context, p changeFontParams) (any, error) {
			e, err := r.settings.ChangeFont(ctx, *p.Family, *p.Size)
			if err != nil {
				return nil, err
			}
			return changeView{e.Kind(), e.CorrelationID, e.Old, e.New}, nil
		})

	register(r, "change_language",
		"Change the UI language by language code.",
		false,
		func(ctx context.Context, p changeLanguageParams) (any, error) {
			e, err := r.settings.ChangeLanguage(ctx, *p.Code)
			if err != nil {
				return nil, err
			}
			return changeView{e.Kind(), e.CorrelationID, e.Old, e.New}, nil
		})

	register(r, "configure_backup",
		"Configure automatic project backups.",
		false,
		func(ctx context.Context, p configureBackupParams) (any, error) {
			e, err := r.settings.ConfigureBackup(ctx, service.BackupInput{
				Enabled:         p.Enabled,
				IntervalMinutes: *p.IntervalMinutes,
				MaxBackups:      *p.MaxBackups,
				BackupPath:      p.BackupPath,
			})
			if err != nil {
				return nil, err
			}
			return changeView{e.Kind(), e.CorrelationID, e.Old, e.New}, nil
		})

	register(r, "configure_av_coding",
		"Configure how timestamps and speaker labels are shown when coding audio and video.",
		false,
		func(ctx context.Context, p configureAVCodingParams) (any, error) {
			e, err := r.settings.ConfigureAVCoding(ctx, *p.TimestampFormat, *p.SpeakerFormat)
			if err != nil {
				return nil, err
			}
			return changeView{e.Kind(), e.CorrelationID, e.Old, e.New}, nil
		})

	register(r, "configure_cloud_sync",
		"Configure the Convex cloud-sync backend. Enabling requires a deployment URL.",
		false,
		func(ctx context.Context, p configureCloudSyncParams) (any, error) {
			e, err := r.settings.ConfigureCloudSync(ctx, service.CloudSyncInput{
				Enabled:         p.Enabled,
				ConvexURL:       p.ConvexURL,
				ConvexProjectID: p.ConvexProjectID,
			})
			if err != nil {
				return nil, err
			}
			return changeView{e.Kind(), e.CorrelationID, e.Old, e.New}, nil
		})

	register(r, "get_settings_history",
		"List recent settings changes, newest first.",
		false,
		func(ctx context.Context, p historyParams) (any, error) {
			return r.queries.GetHistory(ctx, p.Limit)
		})

	register(r, "reset_settings",
		"Restore every setting to its default. Recent projects are kept. Cannot be undone.",
		true,
		func(ctx context.Context, p confirmParams) (any, error) {
			if err := requireConfirm(p); err != nil {
				return nil, err
			}
			events, err := r.settings.ResetToDefaults(ctx)
			if err != nil {
				return nil, err
			}
			changed := make([]domain.EventKind, 0, len(events))
			for _, e := range events {
				changed = append(changed, e.Kind())
			}
			return map[string]any{"changed": changed}, nil
		})

	register(r, "clear_recent_projects",
		"Remove every entry from the recent projects list. Cannot be undone.",
		true,
		func(ctx context.Context, p confirmParams) (any, error) {
			if err := requireConfirm(p); err != nil {
				return nil, err
			}
			if err := r.settings.ClearRecentProjects(ctx); err != nil {
				return nil, err
			}
			return map[string]any{"cleared": true}, nil
		})
}

func requireConfirm(p confirmParams) error {
	if !p.Confirm {
		return apperrors.ValidationWithDetails("This action is destructive; pass confirm=true to proceed",
			map[string]string{"confirm": "must be true"})
	}
	return nil
}
