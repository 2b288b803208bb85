package domain

// ThemePreference is the selected UI theme.
type ThemePreference struct {
	Name string `json:"name"`
}

// FontPreference is the UI font family and pixel size.
type FontPreference struct {
	Family string `json:"family"`
	Size   int    `json:"size"`
}

// LanguagePreference is the UI language. Name is always derived from Code.
type LanguagePreference struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewLanguagePreference builds a preference for code, taking the display name
// from SupportedLanguages. The second result is false for unsupported codes.
func NewLanguagePreference(code string) (LanguagePreference, bool) {
	name, ok := SupportedLanguages[code]
	if !ok {
		return LanguagePreference{}, false
	}
	return LanguagePreference{Code: code, Name: name}, true
}

// BackupConfig is the automatic-backup policy.
type BackupConfig struct {
	Enabled         bool    `json:"enabled"`
	IntervalMinutes int     `json:"interval_minutes"`
	MaxBackups      int     `json:"max_backups"`
	BackupPath      *string `json:"backup_path"`
}

// AVCodingConfig controls how audio/video coding timestamps and speakers are displayed.
type AVCodingConfig struct {
	TimestampFormat string `json:"timestamp_format"`
	SpeakerFormat   string `json:"speaker_format"`
}

// BackendConfig is the optional cloud-sync backend.
type BackendConfig struct {
	CloudSyncEnabled bool    `json:"cloud_sync_enabled"`
	ConvexURL        *string `json:"convex_url"`
	ConvexProjectID  *string `json:"convex_project_id"`
}

// IsConfigured reports whether a deployment URL has been set.
func (b BackendConfig) IsConfigured() bool {
	return b.ConvexURL != nil && *b.ConvexURL != ""
}

// UserSettings is the aggregate root of a user's application preferences.
// Values are treated as immutable; use the With* helpers to derive a changed copy.
type UserSettings struct {
	Theme    ThemePreference    `json:"theme"`
	Font     FontPreference     `json:"font"`
	Language LanguagePreference `json:"language"`
	Backup   BackupConfig       `json:"backup"`
	AVCoding AVCodingConfig     `json:"av_coding"`
	Backend  BackendConfig      `json:"backend"`
}

// Default values for each aspect.
func DefaultTheme() ThemePreference { return ThemePreference{Name: ThemeLight} }

func DefaultFont() FontPreference { return FontPreference{Family: "Inter", Size: 14} }

func DefaultLanguage() LanguagePreference { return LanguagePreference{Code: "en", Name: "English"} }

func DefaultBackup() BackupConfig {
	return BackupConfig{Enabled: false, IntervalMinutes: 30, MaxBackups: 5}
}

func DefaultAVCoding() AVCodingConfig {
	return AVCodingConfig{TimestampFormat: TimestampHHMMSS, SpeakerFormat: "Speaker {n}"}
}

func DefaultBackend() BackendConfig { return BackendConfig{} }

// DefaultUserSettings returns the settings used when nothing has been persisted.
func DefaultUserSettings() UserSettings {
	return UserSettings{
		Theme:    DefaultTheme(),
		Font:     DefaultFont(),
		Language: DefaultLanguage(),
		Backup:   DefaultBackup(),
		AVCoding: DefaultAVCoding(),
		Backend:  DefaultBackend(),
	}
}

// WithTheme returns a copy of s with the theme replaced.
func (s UserSettings) WithTheme(t ThemePreference) UserSettings {
	s.Theme = t
	return s
}

// WithFont returns a copy of s with the font replaced.
func (s UserSettings) WithFont(f FontPreference) UserSettings {
	s.Font = f
	return s
}

// WithLanguage returns a copy of s with the language replaced.
func (s UserSettings) WithLanguage(l LanguagePreference) UserSettings {
	s.Language = l
	return s
}

// WithBackup returns a copy of s with the backup policy replaced.
func (s UserSettings) WithBackup(b BackupConfig) UserSettings {
	s.Backup = b.clone()
	return s
}

// WithAVCoding returns a copy of s with the AV-coding config replaced.
func (s UserSettings) WithAVCoding(a AVCodingConfig) UserSettings {
	s.AVCoding = a
	return s
}

// WithBackend returns a copy of s with the backend config replaced.
func (s UserSettings) WithBackend(b BackendConfig) UserSettings {
	s.Backend = b.clone()
	return s
}

// Valid reports whether every aspect satisfies its invariants.
func (s UserSettings) Valid() bool {
	return s.Theme.Valid() &&
		s.Font.Valid() &&
		s.Language.Valid() &&
		s.Backup.Valid() &&
		s.AVCoding.Valid() &&
		s.Backend.Valid()
}

// Valid reports whether the theme name is accepted.
func (t ThemePreference) Valid() bool { return IsValidTheme(t.Name) }

// Valid reports whether family and size are accepted.
func (f FontPreference) Valid() bool {
	return IsValidFontFamily(f.Family) && IsValidFontSize(f.Size)
}

// Valid reports whether the code is supported and the name matches it.
func (l LanguagePreference) Valid() bool {
	return IsValidLanguageCode(l.Code) && SupportedLanguages[l.Code] == l.Name
}

// Valid reports whether interval and retention are in range.
func (b BackupConfig) Valid() bool {
	return IsValidBackupInterval(b.IntervalMinutes) && IsValidMaxBackups(b.MaxBackups)
}

// Valid reports whether both display formats are accepted.
func (a AVCodingConfig) Valid() bool {
	return IsValidTimestampFormat(a.TimestampFormat) && IsValidSpeakerFormat(a.SpeakerFormat)
}

// Valid reports whether a configured URL is well formed and cloud sync is
// only enabled with one.
func (b BackendConfig) Valid() bool {
	if b.ConvexURL != nil && *b.ConvexURL != "" && !IsValidConvexURL(*b.ConvexURL) {
		return false
	}
	return CanEnableCloudSync(b.CloudSyncEnabled, nil, b.ConvexURL)
}

func (b BackupConfig) clone() BackupConfig {
	b.BackupPath = cloneString(b.BackupPath)
	return b
}

func (b BackendConfig) clone() BackendConfig {
	b.ConvexURL = cloneString(b.ConvexURL)
	b.ConvexProjectID = cloneString(b.ConvexProjectID)
	return b
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Equal reports whether two backup policies hold the same values.
func (b BackupConfig) Equal(o BackupConfig) bool {
	return b.Enabled == o.Enabled &&
		b.IntervalMinutes == o.IntervalMinutes &&
		b.MaxBackups == o.MaxBackups &&
		equalStrings(b.BackupPath, o.BackupPath)
}

// Equal reports whether two backend configs hold the same values.
func (b BackendConfig) Equal(o BackendConfig) bool {
	return b.CloudSyncEnabled == o.CloudSyncEnabled &&
		equalStrings(b.ConvexURL, o.ConvexURL) &&
		equalStrings(b.ConvexProjectID, o.ConvexProjectID)
}

func equalStrings(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
