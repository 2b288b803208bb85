package store

import (
	"encoding/json"

	"github.com/qualcodeapp/prefs-core/internal/domain"
)

// fileDocument is the on-disk layout. Aspects are kept raw on decode so a
// single bad key only resets that aspect.
type fileDocument struct {
	Theme          domain.ThemePreference    `json:"theme"`
	Font           domain.FontPreference     `json:"font"`
	Language       domain.LanguagePreference `json:"language"`
	Backup         domain.BackupConfig       `json:"backup"`
	AVCoding       domain.AVCodingConfig     `json:"av_coding"`
	Backend        domain.BackendConfig      `json:"backend"`
	RecentProjects []domain.RecentProject    `json:"recent_projects"`
}

// decode parses data into a document. Unparseable input, a non-object top
// level, or any individually broken aspect falls back to defaults.
func (s *Store) decode(data []byte) Document {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		s.logger.Warn("settings file corrupt, using defaults", "path", s.path, "error", err)
		return DefaultDocument()
	}

	settings := domain.UserSettings{
		Theme: decodeAspect(s, raw, "theme", domain.DefaultTheme(), func(t domain.ThemePreference) bool {
			return t.Valid()
		}),
		Font: decodeAspect(s, raw, "font", domain.DefaultFont(), func(f domain.FontPreference) bool {
			return f.Valid()
		}),
		Language: decodeLanguage(s, raw),
		Backup: decodeAspect(s, raw, "backup", domain.DefaultBackup(), func(b domain.BackupConfig) bool {
			return b.Valid()
		}),
		AVCoding: decodeAspect(s, raw, "av_coding", domain.DefaultAVCoding(), func(a domain.AVCodingConfig) bool {
			return a.Valid()
		}),
		Backend: decodeAspect(s, raw, "backend", domain.DefaultBackend(), func(b domain.BackendConfig) bool {
			return b.Valid()
		}),
	}

	projects := decodeAspect(s, raw, "recent_projects", []domain.RecentProject{}, func([]domain.RecentProject) bool {
		return true
	})

	return Document{
		Settings:       settings,
		RecentProjects: domain.NormalizeRecentProjects(projects),
	}
}

// decodeAspect unmarshals raw[key] over a copy of def so that absent inner
// fields keep their defaults. Missing keys, JSON null and values failing
// valid all yield def.
func decodeAspect[T any](s *Store, raw map[string]json.RawMessage, key string, def T, valid func(T) bool) T {
	msg, ok := raw[key]
	if !ok || string(msg) == "null" {
		return def
	}

	v := def
	if err := json.Unmarshal(msg, &v); err != nil {
		s.logger.Warn("settings key unreadable, using default", "key", key, "error", err)
		return def
	}
	if !valid(v) {
		s.logger.Warn("settings key invalid, using default", "key", key)
		return def
	}
	return v
}

// decodeLanguage ignores the stored display name and derives it from the code.
func decodeLanguage(s *Store, raw map[string]json.RawMessage) domain.LanguagePreference {
	stored := decodeAspect(s, raw, "language", domain.DefaultLanguage(), func(l domain.LanguagePreference) bool {
		return domain.IsValidLanguageCode(l.Code)
	})
	lang, ok := domain.NewLanguagePreference(stored.Code)
	if !ok {
		return domain.DefaultLanguage()
	}
	return lang
}
