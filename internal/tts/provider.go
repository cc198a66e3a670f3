package tts

import (
	"context"
	"errors"

	"github.com/dooshek/factreader/internal/types"
)

// ErrSynthesisUnavailable is returned when the speech service cannot be reached
var ErrSynthesisUnavailable = errors.New("speech synthesis unavailable")

// TTSProvider defines the interface for text-to-speech providers
type TTSProvider interface {
	// Speak converts text to speech and plays it to completion
	Speak(ctx context.Context, text string, opts Options) error

	// GetAudio converts text to speech and returns encoded audio data
	GetAudio(ctx context.Context, text string, opts Options) ([]byte, error)

	// GetProviderName returns the name of the provider
	GetProviderName() string
}

// Options are the per-call speech settings
type Options struct {
	Language        string // BCP-47 language code
	AccentDomain    string // Google top level domain selecting the accent
	Slow            bool
	DeleteAfterPlay bool
	Voice           string // OpenAI voice
}

// OptionsFromConfig builds Options from a speech configuration with defaults applied
func OptionsFromConfig(config types.SpeechConfig) Options {
	opts := Options{
		Language:     config.Language,
		AccentDomain: config.AccentDomain,
		Slow:         config.Slow,
		Voice:        config.Voice,
	}
	if config.DeleteAfterPlay != nil {
		opts.DeleteAfterPlay = *config.DeleteAfterPlay
	}
	return opts
}
