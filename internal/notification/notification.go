package notification

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dooshek/factreader/internal/audio"
	"github.com/dooshek/factreader/internal/logger"
	"github.com/dooshek/factreader/pkg/wav"
)

const (
	appName           = "factreader"
	fallbackSoundFile = "fallback.wav"
	toneVolume        = 0.4
)

// fallbackTones is a falling two-note chime
var fallbackTones = []wav.Tone{
	{Frequency: 880, Duration: 180 * time.Millisecond},
	{Frequency: 587.33, Duration: 320 * time.Millisecond},
}

// Notifier defines the interface for system notifications
type Notifier interface {
	// Notify shows a desktop notification
	Notify(title, message string) error

	// PlayFallback plays the sound used when speech is unavailable
	PlayFallback(ctx context.Context) error
}

// SilentNotifier is a no-op implementation
type SilentNotifier struct{}

func NewSilent() Notifier {
	return &SilentNotifier{}
}

func (s *SilentNotifier) Notify(title, message string) error     { return nil }
func (s *SilentNotifier) PlayFallback(ctx context.Context) error { return nil }

type platformNotifier interface {
	send(title, message string) error
}

type baseNotifier struct {
	platform platformNotifier
	player   audio.Player
	sound    string
	audioDir string
}

// New creates a platform-specific notifier. sound is played as the fallback
// when set, otherwise a generated chime is written to audioDir.
func New(player audio.Player, sound, audioDir string) Notifier {
	logger.Debug("Initializing notification system")
	var platform platformNotifier
	switch runtime.GOOS {
	case "darwin":
		logger.Debug("Using Darwin (macOS) notifier")
		platform = newDarwinNotifier()
	default:
		logger.Debug("Using Linux notifier")
		platform = newLinuxNotifier()
	}
	return &baseNotifier{
		platform: platform,
		player:   player,
		sound:    sound,
		audioDir: audioDir,
	}
}

func (n *baseNotifier) Notify(title, message string) error {
	return n.platform.send(title, message)
}

func (n *baseNotifier) PlayFallback(ctx context.Context) error {
	path := n.sound
	if path == "" {
		var err error
		path, err = ensureFallbackSound(n.audioDir)
		if err != nil {
			return err
		}
	}

	logger.Debugf("Playing fallback sound %s", path)
	if err := n.player.PlayFile(ctx, path); err != nil {
		return fmt.Errorf("failed to play fallback sound: %w", err)
	}
	return nil
}

// ensureFallbackSound writes the generated chime into dir unless it exists
func ensureFallbackSound(dir string) (string, error) {
	path := filepath.Join(dir, fallbackSoundFile)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	pcm := wav.GenerateTones(audio.SampleRate, toneVolume, fallbackTones...)
	data, err := wav.ConvertPCMToWAV(pcm, audio.Channels, audio.SampleRate)
	if err != nil {
		return "", fmt.Errorf("failed to encode fallback sound: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write fallback sound: %w", err)
	}
	return path, nil
}
