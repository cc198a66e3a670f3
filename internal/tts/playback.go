package tts

import (
	"context"
	"fmt"
	"os"

	"github.com/dooshek/factreader/internal/audio"
	"github.com/dooshek/factreader/internal/logger"
)

// saveAndPlay writes encoded audio into dir and plays it
func saveAndPlay(ctx context.Context, player audio.Player, dir, ext string, data []byte, deleteAfter bool) error {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create audio directory: %w", err)
		}
	}

	f, err := os.CreateTemp(dir, "factreader_tts_*."+ext)
	if err != nil {
		return fmt.Errorf("failed to create audio file: %w", err)
	}
	path := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write audio data: %w", err)
	}

	if deleteAfter {
		defer os.Remove(path)
	} else {
		logger.Debugf("Keeping synthesised audio at %s", path)
	}

	if err := player.PlayFile(ctx, path); err != nil {
		return fmt.Errorf("failed to play audio: %w", err)
	}
	return nil
}

// formatSize provides human-readable size estimate
func formatSize(bytes int) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
}
