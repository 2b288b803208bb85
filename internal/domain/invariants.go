package domain

import (
	"net/url"
	"slices"
	"strings"
)

// Theme names.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// Inclusive bounds for numeric preferences.
const (
	MinFontSize = 10
	MaxFontSize = 24

	MinBackupIntervalMinutes = 5
	MaxBackupIntervalMinutes = 120

	MinMaxBackups = 1
	MaxMaxBackups = 20

	// MaxRecentProjects caps the recently opened projects list.
	MaxRecentProjects = 10
)

// SpeakerPlaceholder must appear in every speaker format.
const SpeakerPlaceholder = "{n}"

// Timestamp display formats.
const (
	TimestampHHMMSS       = "HH:MM:SS"
	TimestampMMSS         = "MM:SS"
	TimestampHHMMSSMillis = "HH:MM:SS.mmm"
)

// ValidThemes lists every accepted theme name.
var ValidThemes = []string{ThemeLight, ThemeDark, ThemeSystem}

// SupportedFontFamilies is the whitelist of UI font families.
var SupportedFontFamilies = []string{
	"Inter",
	"Roboto",
	"Open Sans",
	"Lato",
	"Source Sans Pro",
	"Noto Sans",
	"Segoe UI",
	"Helvetica",
	"Arial",
	"JetBrains Mono",
	"Fira Code",
}

// SupportedLanguages maps UI language codes to their display names.
// The name stored in a LanguagePreference always comes from this map.
var SupportedLanguages = map[string]string{
	"en": "English",
	"de": "Deutsch",
	"es": "Español",
	"fr": "Français",
	"it": "Italiano",
	"pt": "Português",
	"nl": "Nederlands",
	"ja": "日本語",
	"zh": "中文",
}

// ValidTimestampFormats lists the accepted AV-coding timestamp formats.
var ValidTimestampFormats = []string{TimestampHHMMSS, TimestampMMSS, TimestampHHMMSSMillis}

// IsValidTheme reports whether name is one of ValidThemes.
func IsValidTheme(name string) bool {
	return slices.Contains(ValidThemes, name)
}

// IsValidFontFamily reports whether family is whitelisted.
func IsValidFontFamily(family string) bool {
	return slices.Contains(SupportedFontFamilies, family)
}

// IsValidFontSize reports whether size lies in [MinFontSize, MaxFontSize].
func IsValidFontSize(size int) bool {
	return size >= MinFontSize && size <= MaxFontSize
}

// IsValidLanguageCode reports whether code is a key of SupportedLanguages.
func IsValidLanguageCode(code string) bool {
	_, ok := SupportedLanguages[code]
	return ok
}

// IsValidTimestampFormat reports whether format is one of ValidTimestampFormats.
func IsValidTimestampFormat(format string) bool {
	return slices.Contains(ValidTimestampFormats, format)
}

// IsValidSpeakerFormat reports whether format is non-empty and contains SpeakerPlaceholder.
func IsValidSpeakerFormat(format string) bool {
	return format != "" && strings.Contains(format, SpeakerPlaceholder)
}

// IsValidBackupInterval reports whether minutes lies in the accepted interval range.
func IsValidBackupInterval(minutes int) bool {
	return minutes >= MinBackupIntervalMinutes && minutes <= MaxBackupIntervalMinutes
}

// IsValidMaxBackups reports whether count lies in the accepted retention range.
func IsValidMaxBackups(count int) bool {
	return count >= MinMaxBackups && count <= MaxMaxBackups
}

// IsValidConvexURL reports whether raw is an absolute http(s) URL with a host.
func IsValidConvexURL(raw string) bool {
	if strings.TrimSpace(raw) != raw || raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// CanEnableCloudSync reports whether cloud sync may be switched to enabled.
// Disabling is always allowed. Enabling needs a valid deployment URL, either
// the one supplied with the request or the one already configured.
func CanEnableCloudSync(enabled bool, newURL, currentURL *string) bool {
	if !enabled {
		return true
	}
	if newURL != nil && *newURL != "" {
		return IsValidConvexURL(*newURL)
	}
	return currentURL != nil && IsValidConvexURL(*currentURL)
}
