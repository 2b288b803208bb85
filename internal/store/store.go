// Package store persists the user settings document and the recent projects
// list as a single JSON file.
//
// Reads never fail: a missing file yields defaults, an unparseable file yields
// defaults, and a parseable file has only its missing or invalid keys
// defaulted. Writes go to a temporary file in the same directory which is then
// renamed over the target, so readers never observe a half-written document.
//
// Every read-modify-write runs under a process-local mutex. Nothing coordinates
// writers in other processes; the last rename wins.
package store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/qualcodeapp/prefs-core/internal/domain"
	"github.com/qualcodeapp/prefs-core/internal/errors"
)

// File permissions for the settings document and its directory.
const (
	filePerm = 0o600
	dirPerm  = 0o755
)

// Document is everything stored in the settings file.
type Document struct {
	Settings       domain.UserSettings
	RecentProjects []domain.RecentProject
}

// DefaultDocument returns the document used when nothing has been persisted.
func DefaultDocument() Document {
	return Document{
		Settings:       domain.DefaultUserSettings(),
		RecentProjects: []domain.RecentProject{},
	}
}

// Store reads and writes the settings document at a fixed path.
type Store struct {
	path   string
	logger *slog.Logger

	// mu serializes load/save pairs within this process.
	mu sync.Mutex

	// lastDigest is the hash of the bytes this process last wrote or
	// acknowledged, used to tell external rewrites from our own.
	digestMu   sync.Mutex
	lastDigest [sha256.Size]byte
}

// New creates a Store for the document at path. The file is not touched
// until the first write.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		path:   path,
		logger: logger,
	}
}

// Path returns the location of the settings document.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the settings document is present on disk.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the document, filling defaults for anything missing or invalid.
func (s *Store) Load(ctx context.Context) Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, _ := s.load(ctx)
	return doc
}

// Save replaces the whole document.
func (s *Store) Save(ctx context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, doc)
}

// LoadSettings returns only the settings aggregate.
func (s *Store) LoadSettings(ctx context.Context) domain.UserSettings {
	return s.Load(ctx).Settings
}

// SaveSettings replaces the settings aggregate, keeping the recent projects list.
func (s *Store) SaveSettings(ctx context.Context, settings domain.UserSettings) error {
	return s.update(ctx, func(doc Document) Document {
		doc.Settings = settings
		return doc
	})
}

// CheckExternal reads the file and reports whether its bytes differ from
// what this process last wrote or acknowledged. A differing read becomes the
// new acknowledged state. A missing file counts as the empty document.
func (s *Store) CheckExternal(ctx context.Context) (Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("settings file unreadable", "path", s.path, "error", err)
		return Document{}, false
	}

	digest := sha256.Sum256(data)
	s.digestMu.Lock()
	same := digest == s.lastDigest
	s.lastDigest = digest
	s.digestMu.Unlock()

	if same {
		return Document{}, false
	}
	if len(data) == 0 {
		return DefaultDocument(), true
	}
	return s.decode(data), true
}

// update runs a read-modify-write of the whole document under the mutex.
func (s *Store) update(ctx context.Context, fn func(Document) Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	return s.save(ctx, fn(doc))
}

// load reads the document. The error is only ever a context error; I/O and
// parse problems fall back to defaults.
func (s *Store) load(ctx context.Context) (Document, error) {
	if err := ctx.Err(); err != nil {
		return DefaultDocument(), err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("settings file unreadable, using defaults", "path", s.path, "error", err)
		}
		return DefaultDocument(), nil
	}

	return s.decode(data), nil
}

func (s *Store) save(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeDocument(doc)
	if err != nil {
		return errors.Wrap(err, errors.CodeStorage, "encode settings")
	}

	if err := writeFileAtomic(s.path, data, filePerm); err != nil {
		s.logger.Warn("failed to save settings", "path", s.path, "error", err)
		return errors.Wrap(err, errors.CodeStorage, "save settings")
	}

	s.digestMu.Lock()
	s.lastDigest = sha256.Sum256(data)
	s.digestMu.Unlock()

	return nil
}

func encodeDocument(doc Document) ([]byte, error) {
	projects := doc.RecentProjects
	if projects == nil {
		projects = []domain.RecentProject{}
	}

	file := fileDocument{
		Theme:          doc.Settings.Theme,
		Font:           doc.Settings.Font,
		Language:       doc.Settings.Language,
		Backup:         doc.Settings.Backup,
		AVCoding:       doc.Settings.AVCoding,
		Backend:        doc.Settings.Backend,
		RecentProjects: projects,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(file); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeFileAtomic writes data to a temp file next to path and renames it into place.
func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	// Atomic rename
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename settings file: %w", err)
	}
	return nil
}
