// Package derive holds the pure decision functions of the preferences core.
//
// Each deriver checks proposed input against the domain invariants and either
// returns a validation failure (*errors.Error) or the event describing the
// change. Derivers never read or write storage and never publish; the caller
// supplies the current aggregate and the event metadata.
package derive

import (
	"strings"

	"github.com/qualcodeapp/prefs-core/internal/domain"
	"github.com/qualcodeapp/prefs-core/internal/errors"
)

// ThemeChange validates a theme name.
func ThemeChange(name string, current domain.UserSettings, meta domain.EventMeta) (domain.ThemeChanged, error) {
	if !domain.IsValidTheme(name) {
		return domain.ThemeChanged{}, errors.Failure(errors.CodeInvalidTheme, "theme", name,
			"Invalid theme '%s'. Must be one of: %s", name, strings.Join(domain.ValidThemes, ", "))
	}

	return domain.ThemeChanged{
		EventMeta: meta,
		Old:       current.Theme,
		New:       domain.ThemePreference{Name: name},
	}, nil
}

// FontChange validates a font family and size. The family is checked first.
func FontChange(family string, size int, current domain.UserSettings, meta domain.EventMeta) (domain.FontChanged, error) {
	if !domain.IsValidFontFamily(family) {
		return domain.FontChanged{}, errors.Failure(errors.CodeInvalidFontFamily, "family", family,
			"Unsupported font family '%s'. Must be one of: %s", family, strings.Join(domain.SupportedFontFamilies, ", "))
	}
	if !domain.IsValidFontSize(size) {
		return domain.FontChanged{}, errors.Failure(errors.CodeInvalidFontSize, "size", size,
			"Font size must be between %d and %d, got %d", domain.MinFontSize, domain.MaxFontSize, size)
	}

	return domain.FontChanged{
		EventMeta: meta,
		Old:       current.Font,
		New:       domain.FontPreference{Family: family, Size: size},
	}, nil
}

// LanguageChange validates a language code. The display name is looked up,
// never taken from the caller.
func LanguageChange(code string, current domain.UserSettings, meta domain.EventMeta) (domain.LanguageChanged, error) {
	lang, ok := domain.NewLanguagePreference(code)
	if !ok {
		return domain.LanguageChanged{}, errors.Failure(errors.CodeInvalidLanguage, "code", code,
			"Unsupported language code '%s'", code)
	}

	return domain.LanguageChanged{
		EventMeta: meta,
		Old:       current.Language,
		New:       lang,
	}, nil
}

// BackupChange validates a backup policy. The interval is checked before the
// retention count. backupPath is stored as given.
func BackupChange(enabled bool, intervalMinutes, maxBackups int, backupPath *string, current domain.UserSettings, meta domain.EventMeta) (domain.BackupConfigChanged, error) {
	if !domain.IsValidBackupInterval(intervalMinutes) {
		return domain.BackupConfigChanged{}, errors.Failure(errors.CodeInvalidBackupInterval, "interval_minutes", intervalMinutes,
			"Backup interval must be between %d and %d minutes, got %d",
			domain.MinBackupIntervalMinutes, domain.MaxBackupIntervalMinutes, intervalMinutes)
	}
	if !domain.IsValidMaxBackups(maxBackups) {
		return domain.BackupConfigChanged{}, errors.Failure(errors.CodeInvalidMaxBackups, "max_backups", maxBackups,
			"Max backups must be between %d and %d, got %d", domain.MinMaxBackups, domain.MaxMaxBackups, maxBackups)
	}

	next := domain.BackupConfig{
		Enabled:         enabled,
		IntervalMinutes: intervalMinutes,
		MaxBackups:      maxBackups,
	}
	if backupPath != nil {
		p := *backupPath
		next.BackupPath = &p
	}

	return domain.BackupConfigChanged{
		EventMeta: meta,
		Old:       current.Backup,
		New:       next,
	}, nil
}

// AVCodingChange validates the timestamp and speaker display formats.
func AVCodingChange(timestampFormat, speakerFormat string, current domain.UserSettings, meta domain.EventMeta) (domain.AVCodingConfigChanged, error) {
	if !domain.IsValidTimestampFormat(timestampFormat) {
		return domain.AVCodingConfigChanged{}, errors.Failure(errors.CodeInvalidTimestampFormat, "timestamp_format", timestampFormat,
			"Invalid timestamp format '%s'. Must be one of: %s", timestampFormat, strings.Join(domain.ValidTimestampFormats, ", "))
	}
	if !domain.IsValidSpeakerFormat(speakerFormat) {
		if speakerFormat == "" {
			return domain.AVCodingConfigChanged{}, errors.Failure(errors.CodeInvalidSpeakerFormat, "speaker_format", speakerFormat,
				"Speaker format must not be empty")
		}
		return domain.AVCodingConfigChanged{}, errors.Failure(errors.CodeInvalidSpeakerFormat, "speaker_format", speakerFormat,
			"Speaker format must contain the %s placeholder, got '%s'", domain.SpeakerPlaceholder, speakerFormat)
	}

	return domain.AVCodingConfigChanged{
		EventMeta: meta,
		Old:       current.AVCoding,
		New:       domain.AVCodingConfig{TimestampFormat: timestampFormat, SpeakerFormat: speakerFormat},
	}, nil
}

// CloudSyncChange validates a backend configuration change.
//
// A nil convexURL or projectID keeps the current value; a pointer to "" clears
// it. A supplied URL must be well formed, and enabling sync requires a URL
// that is either supplied now or already configured.
func CloudSyncChange(enabled bool, convexURL, projectID *string, current domain.UserSettings, meta domain.EventMeta) (domain.CloudSyncConfigChanged, error) {
	if convexURL != nil && *convexURL != "" && !domain.IsValidConvexURL(*convexURL) {
		return domain.CloudSyncConfigChanged{}, errors.Failure(errors.CodeInvalidConvexURL, "convex_url", *convexURL,
			"Invalid Convex deployment URL '%s'. Expected an http(s) URL such as https://example.convex.cloud", *convexURL)
	}

	next := domain.BackendConfig{
		CloudSyncEnabled: enabled,
		ConvexURL:        resolve(convexURL, current.Backend.ConvexURL),
		ConvexProjectID:  resolve(projectID, current.Backend.ConvexProjectID),
	}

	if !domain.CanEnableCloudSync(enabled, nil, next.ConvexURL) {
		return domain.CloudSyncConfigChanged{}, errors.Failure(errors.CodeConfigurationFailed, "cloud_sync_enabled", enabled,
			"Cloud sync requires a Convex deployment URL. Configure convex_url before enabling sync")
	}

	return domain.CloudSyncConfigChanged{
		EventMeta: meta,
		Old:       current.Backend,
		New:       next,
	}, nil
}

// ResetChanges returns one event per aspect of current that differs from the
// defaults. An empty result means current already holds the defaults.
func ResetChanges(current domain.UserSettings, meta domain.EventMeta) []domain.Event {
	return domain.Diff(current, domain.DefaultUserSettings(), meta)
}

// resolve applies the keep/clear/replace rule for optional strings.
func resolve(requested, current *string) *string {
	if requested == nil {
		if current == nil {
			return nil
		}
		v := *current
		return &v
	}
	if *requested == "" {
		return nil
	}
	v := *requested
	return &v
}
