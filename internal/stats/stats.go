package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dooshek/factreader/internal/logger"
)

// ProviderStats holds statistics for a single speech provider
type ProviderStats struct {
	Sessions    int `json:"sessions"`
	FactsSpoken int `json:"facts_spoken"`
}

// Stats holds all reading statistics
type Stats struct {
	Sessions    int                       `json:"sessions"`
	FactsSpoken int                       `json:"facts_spoken"`
	ByProvider  map[string]*ProviderStats `json:"by_provider"`
}

// StatsManager manages reading statistics persistence
type StatsManager struct {
	stats    Stats
	filePath string
	mu       sync.Mutex
}

// NewStatsManager creates a stats manager backed by filePath and loads existing data
func NewStatsManager(filePath string) *StatsManager {
	sm := &StatsManager{
		filePath: filePath,
		stats: Stats{
			ByProvider: make(map[string]*ProviderStats),
		},
	}

	// Load existing stats if available
	if err := sm.load(); err != nil {
		logger.Debugf("Could not load stats (will start fresh): %v", err)
	}

	return sm
}

// RecordSession adds a finished session and persists immediately
func (sm *StatsManager) RecordSession(provider string, facts int) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	// Ensure provider map is initialized
	if sm.stats.ByProvider == nil {
		sm.stats.ByProvider = make(map[string]*ProviderStats)
	}
	if _, exists := sm.stats.ByProvider[provider]; !exists {
		sm.stats.ByProvider[provider] = &ProviderStats{}
	}

	sm.stats.Sessions++
	sm.stats.FactsSpoken += facts
	sm.stats.ByProvider[provider].Sessions++
	sm.stats.ByProvider[provider].FactsSpoken += facts

	// Save immediately
	if err := sm.save(); err != nil {
		return fmt.Errorf("failed to save stats: %w", err)
	}
	return nil
}

// GetStats returns a deep copy of current statistics
func (sm *StatsManager) GetStats() Stats {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	// Deep copy to prevent external modification
	statsCopy := Stats{
		Sessions:    sm.stats.Sessions,
		FactsSpoken: sm.stats.FactsSpoken,
		ByProvider:  make(map[string]*ProviderStats, len(sm.stats.ByProvider)),
	}
	for provider, providerStats := range sm.stats.ByProvider {
		p := *providerStats
		statsCopy.ByProvider[provider] = &p
	}

	return statsCopy
}

// GetStatsJSON returns statistics as a JSON string (for D-Bus)
func (sm *StatsManager) GetStatsJSON() (string, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	data, err := json.Marshal(sm.stats)
	if err != nil {
		return "", fmt.Errorf("failed to marshal stats to JSON: %w", err)
	}

	return string(data), nil
}

// Reset clears all statistics and persists empty state
func (sm *StatsManager) Reset() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.stats = Stats{
		ByProvider: make(map[string]*ProviderStats),
	}

	if err := sm.save(); err != nil {
		return fmt.Errorf("failed to save reset stats: %w", err)
	}

	return nil
}

func (sm *StatsManager) load() error {
	data, err := os.ReadFile(sm.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist yet - start with empty stats
			logger.Debugf("Stats file not found, starting fresh: %s", sm.filePath)
			return nil
		}
		return fmt.Errorf("failed to read stats file: %w", err)
	}

	if err := json.Unmarshal(data, &sm.stats); err != nil {
		return fmt.Errorf("failed to unmarshal stats: %w", err)
	}

	// Ensure provider map is initialized
	if sm.stats.ByProvider == nil {
		sm.stats.ByProvider = make(map[string]*ProviderStats)
	}

	logger.Debugf("Loaded stats from %s", sm.filePath)
	return nil
}

func (sm *StatsManager) save() error {
	// Ensure directory exists
	dir := filepath.Dir(sm.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create stats directory: %w", err)
	}

	// Marshal with indentation for readability
	data, err := json.MarshalIndent(sm.stats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	// Write atomically by writing to temp file and renaming
	tempFile := sm.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp stats file: %w", err)
	}

	if err := os.Rename(tempFile, sm.filePath); err != nil {
		return fmt.Errorf("failed to rename temp stats file: %w", err)
	}

	logger.Debugf("Saved stats to %s", sm.filePath)
	return nil
}
