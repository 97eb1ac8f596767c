package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/lousa/pkg/settings"
)

// Store implements ports.SettingsStore using the local filesystem.
// The record lives in <BasePath>/img-solve-settings.json.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".lousa".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = ".lousa"
	}
	return &Store{BasePath: basePath}
}

// Path returns the location of the settings file.
func (s *Store) Path() string {
	return filepath.Join(s.BasePath, settings.Key+".json")
}

// Save writes the settings atomically: temp file, fsync, rename.
func (s *Store) Save(ctx context.Context, v settings.Settings) error {
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure settings directory: %w", err)
	}

	data, err := settings.Encode(v)
	if err != nil {
		return err
	}

	// 1. Create Temp File in the same directory, so the rename stays on one filesystem
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+settings.Key+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	// 2. Write and fsync
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}

	// 3. Close (cannot rename open file on Windows)
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// 4. Rename over the destination. Windows refuses to rename onto an existing file.
	dest := s.Path()
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("failed to remove existing settings file: %w", err)
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load reads the settings file. A missing or malformed file yields the defaults.
func (s *Store) Load(ctx context.Context) (settings.Settings, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return settings.Default(), nil
		}
		return settings.Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}
	return settings.Decode(data), nil
}

// Clear removes the settings file.
func (s *Store) Clear(ctx context.Context) error {
	if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove settings file: %w", err)
	}
	return nil
}
