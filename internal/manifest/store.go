package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// backupStamp is the timestamp suffix on backup files.
const backupStamp = "20060102150405"

// Store persists the manifest with backup-before-write. Path is the manifest
// file; BackupDir receives timestamped copies before every save.
type Store struct {
	Path      string
	BackupDir string
}

func NewStore(path, backupDir string) *Store {
	return &Store{Path: path, BackupDir: backupDir}
}

// Load reads the manifest. It never fails: a missing, unreadable or
// structurally broken file yields a fresh default manifest so read-only
// commands keep working on a box whose state got mangled. The broken file is
// left untouched on disk; the next Save backs it up before overwriting.
func (s *Store) Load() *Manifest {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn("Could not read manifest, starting from defaults", "path", s.Path, "err", err)
		}
		return Default()
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		log.Warn("Manifest is not valid YAML, starting from defaults", "path", s.Path, "err", err)
		return Default()
	}

	m.normalize()
	return &m
}

// Save writes the manifest, backing up the existing file first.
func (s *Store) Save(m *Manifest) error {
	if _, err := s.Backup(); err != nil {
		return fmt.Errorf("failed to back up manifest: %w", err)
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", s.Path, err)
	}
	log.Debug("Manifest saved", "path", s.Path)
	return nil
}

// Backup copies the current manifest file into the backup directory with a
// timestamp suffix. Returns the backup path, or "" when there is nothing to
// back up yet.
func (s *Store) Backup() (string, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read manifest for backup: %w", err)
	}

	if err := os.MkdirAll(s.BackupDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup dir %s: %w", s.BackupDir, err)
	}

	name := fmt.Sprintf("%s.%s", filepath.Base(s.Path), time.Now().Format(backupStamp))
	dest := filepath.Join(s.BackupDir, name)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup %s: %w", dest, err)
	}
	log.Debug("Manifest backed up", "path", dest)
	return dest, nil
}
