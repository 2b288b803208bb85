package domain

import "time"

// EventKind identifies the type of a committed settings change.
type EventKind string

const (
	// KindThemeChanged is published after the theme is persisted.
	KindThemeChanged EventKind = "settings.theme_changed"
	// KindFontChanged is published after the font is persisted.
	KindFontChanged EventKind = "settings.font_changed"
	// KindLanguageChanged is published after the UI language is persisted.
	KindLanguageChanged EventKind = "settings.language_changed"
	// KindBackupConfigChanged is published after the backup policy is persisted.
	KindBackupConfigChanged EventKind = "settings.backup_config_changed"
	// KindAVCodingConfigChanged is published after the AV-coding config is persisted.
	KindAVCodingConfigChanged EventKind = "settings.av_coding_config_changed"
	// KindCloudSyncConfigChanged is published after the backend config is persisted.
	KindCloudSyncConfigChanged EventKind = "settings.cloud_sync_config_changed"
)

// AllEventKinds lists every settings event kind.
var AllEventKinds = []EventKind{
	KindThemeChanged,
	KindFontChanged,
	KindLanguageChanged,
	KindBackupConfigChanged,
	KindAVCodingConfigChanged,
	KindCloudSyncConfigChanged,
}

// Event is an immutable record of a committed settings change.
type Event interface {
	Kind() EventKind
	Metadata() EventMeta
}

// EventMeta is shared by every event.
type EventMeta struct {
	OccurredAt    time.Time `json:"occurred_at"`
	CorrelationID string    `json:"correlation_id"`
}

// Metadata returns the event's timestamp and correlation id.
func (m EventMeta) Metadata() EventMeta { return m }

// ThemeChanged records a theme change.
type ThemeChanged struct {
	EventMeta
	Old ThemePreference `json:"old"`
	New ThemePreference `json:"new"`
}

// Kind implements Event.
func (ThemeChanged) Kind() EventKind { return KindThemeChanged }

// FontChanged records a font change.
type FontChanged struct {
	EventMeta
	Old FontPreference `json:"old"`
	New FontPreference `json:"new"`
}

// Kind implements Event.
func (FontChanged) Kind() EventKind { return KindFontChanged }

// LanguageChanged records a UI language change.
type LanguageChanged struct {
	EventMeta
	Old LanguagePreference `json:"old"`
	New LanguagePreference `json:"new"`
}

// Kind implements Event.
func (LanguageChanged) Kind() EventKind { return KindLanguageChanged }

// BackupConfigChanged records a backup policy change.
type BackupConfigChanged struct {
	EventMeta
	Old BackupConfig `json:"old"`
	New BackupConfig `json:"new"`
}

// Kind implements Event.
func (BackupConfigChanged) Kind() EventKind { return KindBackupConfigChanged }

// AVCodingConfigChanged records an AV-coding display change.
type AVCodingConfigChanged struct {
	EventMeta
	Old AVCodingConfig `json:"old"`
	New AVCodingConfig `json:"new"`
}

// Kind implements Event.
func (AVCodingConfigChanged) Kind() EventKind { return KindAVCodingConfigChanged }

// CloudSyncConfigChanged records a backend configuration change.
type CloudSyncConfigChanged struct {
	EventMeta
	Old BackendConfig `json:"old"`
	New BackendConfig `json:"new"`
}

// Kind implements Event.
func (CloudSyncConfigChanged) Kind() EventKind { return KindCloudSyncConfigChanged }

// Apply returns settings with the event's new value written into the matching aspect.
func Apply(s UserSettings, e Event) UserSettings {
	switch ev := e.(type) {
	case ThemeChanged:
		return s.WithTheme(ev.New)
	case FontChanged:
		return s.WithFont(ev.New)
	case LanguageChanged:
		return s.WithLanguage(ev.New)
	case BackupConfigChanged:
		return s.WithBackup(ev.New)
	case AVCodingConfigChanged:
		return s.WithAVCoding(ev.New)
	case CloudSyncConfigChanged:
		return s.WithBackend(ev.New)
	default:
		return s
	}
}

// Values returns the event's old and new aspect values.
func Values(e Event) (before, after any) {
	switch ev := e.(type) {
	case ThemeChanged:
		return ev.Old, ev.New
	case FontChanged:
		return ev.Old, ev.New
	case LanguageChanged:
		return ev.Old, ev.New
	case BackupConfigChanged:
		return ev.Old, ev.New
	case AVCodingConfigChanged:
		return ev.Old, ev.New
	case CloudSyncConfigChanged:
		return ev.Old, ev.New
	default:
		return nil, nil
	}
}

// Diff returns one event per aspect that differs between before and after,
// in aggregate field order. All events share meta.
func Diff(before, after UserSettings, meta EventMeta) []Event {
	var events []Event
	if before.Theme != after.Theme {
		events = append(events, ThemeChanged{EventMeta: meta, Old: before.Theme, New: after.Theme})
	}
	if before.Font != after.Font {
		events = append(events, FontChanged{EventMeta: meta, Old: before.Font, New: after.Font})
	}
	if before.Language != after.Language {
		events = append(events, LanguageChanged{EventMeta: meta, Old: before.Language, New: after.Language})
	}
	if !before.Backup.Equal(after.Backup) {
		events = append(events, BackupConfigChanged{EventMeta: meta, Old: before.Backup, New: after.Backup})
	}
	if before.AVCoding != after.AVCoding {
		events = append(events, AVCodingConfigChanged{EventMeta: meta, Old: before.AVCoding, New: after.AVCoding})
	}
	if !before.Backend.Equal(after.Backend) {
		events = append(events, CloudSyncConfigChanged{EventMeta: meta, Old: before.Backend, New: after.Backend})
	}
	return events
}
