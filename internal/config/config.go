package config

import (
	"errors"
	"fmt"

	"github.com/dooshek/factreader/internal/fileops"
	"github.com/dooshek/factreader/internal/logger"
	"github.com/dooshek/factreader/internal/types"
	"gopkg.in/yaml.v3"
)

const (
	configFilename = "factreader.yaml"
)

// LoadConfig reads ~/.config/factreader/factreader.yaml.
// It returns nil, nil when no configuration has been written yet.
func LoadConfig() (*types.Config, error) {
	fileOps, err := fileops.NewDefaultFileOps()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file operations: %w", err)
	}
	return Load(fileOps)
}

// Load reads the configuration through fileOps
func Load(fileOps fileops.FileOps) (*types.Config, error) {
	if err := fileOps.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	data, err := fileOps.LoadConfig(configFilename)
	if err != nil {
		if errors.Is(err, fileops.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config types.Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveConfig merges config into the stored configuration and writes it back
func SaveConfig(config *types.Config) error {
	fileOps, err := fileops.NewDefaultFileOps()
	if err != nil {
		return fmt.Errorf("failed to initialize file operations: %w", err)
	}
	return Save(fileOps, config)
}

// Save merges config into the configuration stored by fileOps and writes it back
func Save(fileOps fileops.FileOps, config *types.Config) error {
	existingConfig, err := Load(fileOps)
	if err != nil {
		// Just log the error but continue with new config
		logger.Warnf("Failed to load existing config: %v", err)
	} else if existingConfig != nil {
		mergeConfigs(existingConfig, config)
		config = existingConfig
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := fileOps.SaveConfig(configFilename, data); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// mergeConfigs copies every value explicitly set in sourceConfig into targetConfig
func mergeConfigs(targetConfig, sourceConfig *types.Config) {
	if sourceConfig.Facts.Path != "" {
		targetConfig.Facts.Path = sourceConfig.Facts.Path
	}
	if sourceConfig.Facts.CopyToClipboard {
		targetConfig.Facts.CopyToClipboard = true
	}

	src, dst := &sourceConfig.Speech, &targetConfig.Speech
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Language != "" {
		dst.Language = src.Language
	}
	if src.AccentDomain != "" {
		dst.AccentDomain = src.AccentDomain
	}
	if src.Slow {
		dst.Slow = true
	}
	if src.DeleteAfterPlay != nil {
		dst.DeleteAfterPlay = src.DeleteAfterPlay
	}
	if src.Voice != "" {
		dst.Voice = src.Voice
	}
	if src.Player != "" {
		dst.Player = src.Player
	}
	if src.FallbackSound != "" {
		dst.FallbackSound = src.FallbackSound
	}
	if src.OpenAI.Model != "" {
		dst.OpenAI.Model = src.OpenAI.Model
	}
	if src.OpenAI.Speed != 0 {
		dst.OpenAI.Speed = src.OpenAI.Speed
	}
	if src.OpenAI.Format != "" {
		dst.OpenAI.Format = src.OpenAI.Format
	}
	if src.Realtime.Model != "" {
		dst.Realtime.Model = src.Realtime.Model
	}

	if sourceConfig.Input.Backend != "" {
		targetConfig.Input.Backend = sourceConfig.Input.Backend
	}
	if sourceConfig.Keys.OpenAIKey != "" {
		targetConfig.Keys.OpenAIKey = sourceConfig.Keys.OpenAIKey
	}
	if sourceConfig.Notify {
		targetConfig.Notify = true
	}

	// Phrases are replaced one by one so a partial set keeps the rest
	p, q := &targetConfig.Phrases, sourceConfig.Phrases
	for _, pair := range []struct {
		dst *string
		src string
	}{
		{&p.Greeting, q.Greeting},
		{&p.Farewell, q.Farewell},
		{&p.FileNotFound, q.FileNotFound},
		{&p.EmptyFile, q.EmptyFile},
		{&p.NotEnoughFacts, q.NotEnoughFacts},
	} {
		if pair.src != "" {
			*pair.dst = pair.src
		}
	}
}
