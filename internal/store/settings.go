package store

import (
	"context"

	"github.com/qualcodeapp/prefs-core/internal/domain"
)

// GetTheme returns the persisted theme.
func (s *Store) GetTheme(ctx context.Context) domain.ThemePreference {
	return s.LoadSettings(ctx).Theme
}

// SetTheme persists the theme, leaving every other key untouched.
func (s *Store) SetTheme(ctx context.Context, t domain.ThemePreference) error {
	return s.update(ctx, func(doc Document) Document {
		doc.Settings = doc.Settings.WithTheme(t)
		return doc
	})
}

// GetFont returns the persisted font.
func (s *Store) GetFont(ctx context.Context) domain.FontPreference {
	return s.LoadSettings(ctx).Font
}

// SetFont persists the font.
func (s *Store) SetFont(ctx context.Context, f domain.FontPreference) error {
	return s.update(ctx, func(doc Document) Document {
		doc.Settings = doc.Settings.WithFont(f)
		return doc
	})
}

// GetLanguage returns the persisted UI language.
func (s *Store) GetLanguage(ctx context.Context) domain.LanguagePreference {
	return s.LoadSettings(ctx).Language
}

// SetLanguage persists the UI language.
func (s *Store) SetLanguage(ctx context.Context, l domain.LanguagePreference) error {
	return s.update(ctx, func(doc Document) Document {
		doc.Settings = doc.Settings.WithLanguage(l)
		return doc
	})
}

// GetBackup returns the persisted backup policy.
func (s *Store) GetBackup(ctx context.Context) domain.BackupConfig {
	return s.LoadSettings(ctx).Backup
}

// SetBackup persists the backup policy.
func (s *Store) SetBackup(ctx context.Context, b domain.BackupConfig) error {
	return s.update(ctx, func(doc Document) Document {
		doc.Settings = doc.Settings.WithBackup(b)
		return doc
	})
}

// GetAVCoding returns the persisted AV-coding config.
func (s *Store) GetAVCoding(ctx context.Context) domain.AVCodingConfig {
	return s.LoadSettings(ctx).AVCoding
}

// SetAVCoding persists the AV-coding config.
func (s *Store) SetAVCoding(ctx context.Context, a domain.AVCodingConfig) error {
	return s.update(ctx, func(doc Document) Document {
		doc.Settings = doc.Settings.WithAVCoding(a)
		return doc
	})
}

// GetBackend returns the persisted backend config.
func (s *Store) GetBackend(ctx context.Context) domain.BackendConfig {
	return s.LoadSettings(ctx).Backend
}

// SetBackend persists the backend config.
func (s *Store) SetBackend(ctx context.Context, b domain.BackendConfig) error {
	return s.update(ctx, func(doc Document) Document {
		doc.Settings = doc.Settings.WithBackend(b)
		return doc
	})
}

// RecentProjects returns the recent projects list, newest first.
func (s *Store) RecentProjects(ctx context.Context) []domain.RecentProject {
	return s.Load(ctx).RecentProjects
}

// AddRecentProject records p as opened, moving an existing entry for the same
// path to the front and evicting the oldest beyond the cap.
func (s *Store) AddRecentProject(ctx context.Context, p domain.RecentProject) ([]domain.RecentProject, error) {
	var out []domain.RecentProject
	err := s.update(ctx, func(doc Document) Document {
		doc.RecentProjects = domain.AddRecentProject(doc.RecentProjects, p)
		out = doc.RecentProjects
		return doc
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveRecentProject drops the entry for path. Unknown paths are a no-op.
func (s *Store) RemoveRecentProject(ctx context.Context, path string) ([]domain.RecentProject, error) {
	var out []domain.RecentProject
	err := s.update(ctx, func(doc Document) Document {
		doc.RecentProjects = domain.RemoveRecentProject(doc.RecentProjects, path)
		out = doc.RecentProjects
		return doc
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ClearRecentProjects empties the recent projects list.
func (s *Store) ClearRecentProjects(ctx context.Context) error {
	return s.update(ctx, func(doc Document) Document {
		doc.RecentProjects = []domain.RecentProject{}
		return doc
	})
}
