package tools

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/language"

	"github.com/qualcodeapp/prefs-core/internal/domain"
	apperrors "github.com/qualcodeapp/prefs-core/internal/errors"
)

// languageCodes lists supported codes with English first; the matcher falls
// back to the first tag.
var languageCodes = func() []string {
	codes := make([]string, 0, len(domain.SupportedLanguages))
	for code := range domain.SupportedLanguages {
		if code != "en" {
			codes = append(codes, code)
		}
	}
	slices.Sort(codes)
	return append([]string{"en"}, codes...)
}()

var languageMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(languageCodes))
	for i, code := range languageCodes {
		tags[i] = language.Make(code)
	}
	return language.NewMatcher(tags)
}()

// suggestionsFor returns remediation hints for a failed tool call.
func suggestionsFor(err error) []string {
	var value any
	var e *apperrors.Error
	if apperrors.As(err, &e) {
		if d, ok := e.Details.(map[string]any); ok {
			for _, v := range d {
				value = v
			}
		}
	}

	switch apperrors.CodeOf(err) {
	case apperrors.CodeInvalidTheme:
		return []string{"Use one of: " + strings.Join(domain.ValidThemes, ", ")}
	case apperrors.CodeInvalidFontFamily:
		return []string{"Use one of: " + strings.Join(domain.SupportedFontFamilies, ", ")}
	case apperrors.CodeInvalidFontSize:
		return []string{fmt.Sprintf("Use a size between %d and %d", domain.MinFontSize, domain.MaxFontSize)}
	case apperrors.CodeInvalidLanguage:
		code, _ := value.(string)
		return languageSuggestions(code)
	case apperrors.CodeInvalidTimestampFormat:
		return []string{"Use one of: " + strings.Join(domain.ValidTimestampFormats, ", ")}
	case apperrors.CodeInvalidSpeakerFormat:
		return []string{"Include the " + domain.SpeakerPlaceholder + " placeholder, e.g. \"Speaker {n}\""}
	case apperrors.CodeInvalidBackupInterval:
		return []string{fmt.Sprintf("Use an interval between %d and %d minutes",
			domain.MinBackupIntervalMinutes, domain.MaxBackupIntervalMinutes)}
	case apperrors.CodeInvalidMaxBackups:
		return []string{fmt.Sprintf("Keep between %d and %d backups", domain.MinMaxBackups, domain.MaxMaxBackups)}
	case apperrors.CodeInvalidConvexURL:
		return []string{"Use the deployment URL from the Convex dashboard, e.g. https://happy-otter-123.convex.cloud"}
	case apperrors.CodeConfigurationFailed:
		return []string{"Set convex_url in the same call, or configure it first and then enable cloud sync"}
	case apperrors.CodeStorage:
		return []string{"Check that the settings directory exists and is writable"}
	default:
		return nil
	}
}

// languageSuggestions proposes the closest supported language for code, then
// lists every supported code.
func languageSuggestions(code string) []string {
	all := make([]string, 0, len(languageCodes))
	for _, c := range languageCodes {
		all = append(all, fmt.Sprintf("%s (%s)", c, domain.SupportedLanguages[c]))
	}
	list := "Supported languages: " + strings.Join(all, ", ")

	if match, ok := closestLanguage(code); ok {
		return []string{fmt.Sprintf("Did you mean '%s' (%s)?", match, domain.SupportedLanguages[match]), list}
	}
	return []string{list}
}

// closestLanguage maps input such as "de-AT", "PT_br" or "deu" to a
// supported code.
func closestLanguage(code string) (string, bool) {
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
	if err != nil {
		return "", false
	}
	_, index, confidence := languageMatcher.Match(tag)
	if confidence < language.High {
		return "", false
	}
	return languageCodes[index], true
}
