package tts

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/dooshek/factreader/internal/audio"
	"github.com/dooshek/factreader/internal/logger"
	"github.com/dooshek/factreader/internal/types"
	"github.com/sashabaranov/go-openai"
)

// Manager manages TTS providers and handles text-to-speech operations
type Manager struct {
	provider TTSProvider
	opts     Options
}

// NewManager creates a Manager for the configured provider.
// config must already have its defaults applied.
func NewManager(config types.SpeechConfig, apiKey string, player audio.Player, audioDir string) (*Manager, error) {
	provider, err := createProvider(config, apiKey, player, audioDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create TTS provider: %w", err)
	}

	logger.Debugf("Initialized TTS Manager with provider: %s", provider.GetProviderName())

	return NewManagerWithProvider(provider, OptionsFromConfig(config)), nil
}

// NewManagerWithProvider creates a Manager around an existing provider
func NewManagerWithProvider(provider TTSProvider, opts Options) *Manager {
	return &Manager{
		provider: provider,
		opts:     opts,
	}
}

// Speak speaks text with the configured options
func (m *Manager) Speak(ctx context.Context, text string) error {
	return m.SpeakWith(ctx, text, m.opts)
}

// SpeakWith speaks text with explicit options
func (m *Manager) SpeakWith(ctx context.Context, text string, opts Options) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text cannot be empty")
	}

	logger.Debugf("Speaking: %s", text)
	return classify(m.provider.Speak(ctx, text, opts))
}

// GetAudio converts text to speech and returns the encoded audio
func (m *Manager) GetAudio(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	data, err := m.provider.GetAudio(ctx, text, m.opts)
	return data, classify(err)
}

// GetProviderName returns the name of the current provider
func (m *Manager) GetProviderName() string {
	return m.provider.GetProviderName()
}

// createProvider creates appropriate TTS provider based on configuration and API key
func createProvider(config types.SpeechConfig, apiKey string, player audio.Player, audioDir string) (TTSProvider, error) {
	switch config.Provider {
	case types.ProviderGoogle:
		return NewGoogleTTSProvider(player, audioDir), nil

	case types.ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required for OpenAI TTS provider - configure it using the wizard")
		}
		return NewOpenAITTSProvider(openai.DefaultConfig(apiKey), config.OpenAI, player, audioDir), nil

	case types.ProviderRealtime:
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required for Realtime TTS provider - configure it using the wizard")
		}
		return NewRealtimeTTSProvider(apiKey, config.Realtime, player), nil

	case types.ProviderConsole:
		return NewConsoleProvider(nil), nil

	default:
		return nil, fmt.Errorf("unsupported TTS provider: %s (supported: google, openai, realtime, console)", config.Provider)
	}
}

// classify marks network failures as ErrSynthesisUnavailable
func classify(err error) error {
	if err == nil || errors.Is(err, ErrSynthesisUnavailable) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var (
		netErr *net.OpError
		dnsErr *net.DNSError
		urlErr *url.Error
		apiErr *openai.APIError
		reqErr *openai.RequestError
	)
	switch {
	case errors.As(err, &dnsErr), errors.As(err, &netErr):
	case errors.As(err, &urlErr) && urlErr.Op != "parse":
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ENETUNREACH):
	case errors.Is(err, context.DeadlineExceeded):
	case errors.As(err, &apiErr) && apiErr.HTTPStatusCode >= 500:
	case errors.As(err, &reqErr) && reqErr.HTTPStatusCode >= 500:
	default:
		return err
	}
	return fmt.Errorf("%w: %w", ErrSynthesisUnavailable, err)
}
