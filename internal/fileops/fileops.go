package fileops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrConfigNotFound is returned when a configuration file does not exist
var ErrConfigNotFound = errors.New("configuration file not found")

// FileOps interface defines operations for managing files in the factreader config directory
type FileOps interface {
	// GetConfigDir returns the full path to the factreader config directory
	GetConfigDir() string

	// SaveConfig saves data to a file in the config directory
	SaveConfig(filename string, data []byte) error

	// LoadConfig loads data from a file in the config directory
	LoadConfig(filename string) ([]byte, error)

	// EnsureDirectories creates necessary directories if they don't exist
	EnsureDirectories() error

	// GetResourcesDir returns the full path to the resources directory
	GetResourcesDir() string

	// GetAudioDir returns the full path to the audio resources directory
	GetAudioDir() string

	// GetStatsPath returns the full path to the usage statistics file
	GetStatsPath() string
}

// DefaultFileOps implements FileOps interface
type DefaultFileOps struct {
	configDir string
}

// NewDefaultFileOps creates a DefaultFileOps rooted at ~/.config/factreader
func NewDefaultFileOps() (*DefaultFileOps, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return NewFileOps(filepath.Join(homeDir, ".config", "factreader")), nil
}

// NewFileOps creates a DefaultFileOps rooted at configDir
func NewFileOps(configDir string) *DefaultFileOps {
	return &DefaultFileOps{configDir: configDir}
}

func (f *DefaultFileOps) GetConfigDir() string {
	return f.configDir
}

func (f *DefaultFileOps) SaveConfig(filename string, data []byte) error {
	path := filepath.Join(f.configDir, filename)
	return os.WriteFile(path, data, 0o600)
}

func (f *DefaultFileOps) LoadConfig(filename string) ([]byte, error) {
	path := filepath.Join(f.configDir, filename)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrConfigNotFound
	}
	return data, err
}

func (f *DefaultFileOps) EnsureDirectories() error {
	// Create config directory
	if err := os.MkdirAll(f.configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create resources directories
	dirs := []string{
		f.GetResourcesDir(),
		f.GetAudioDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

func (f *DefaultFileOps) GetResourcesDir() string {
	return filepath.Join(f.configDir, "resources")
}

func (f *DefaultFileOps) GetAudioDir() string {
	return filepath.Join(f.GetResourcesDir(), "audio")
}

func (f *DefaultFileOps) GetStatsPath() string {
	return filepath.Join(f.configDir, "stats.json")
}
