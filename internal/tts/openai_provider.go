package tts

import (
	"context"
	"fmt"
	"io"

	"github.com/dooshek/factreader/internal/audio"
	"github.com/dooshek/factreader/internal/logger"
	"github.com/dooshek/factreader/internal/types"
	"github.com/sashabaranov/go-openai"
)

// slowSpeedFactor scales the configured speed when slow speech is requested
const slowSpeedFactor = 0.75

// OpenAITTSProvider implements TTSProvider for OpenAI TTS API
type OpenAITTSProvider struct {
	client   *openai.Client
	config   types.SpeechOpenAIConfig
	player   audio.Player
	audioDir string
}

// NewOpenAITTSProvider creates a new OpenAI TTS provider
func NewOpenAITTSProvider(clientConfig openai.ClientConfig, config types.SpeechOpenAIConfig, player audio.Player, audioDir string) *OpenAITTSProvider {
	if config.Model == "" {
		config.Model = string(openai.TTSModel1HD)
	}
	if config.Speed == 0 {
		config.Speed = 1.0
	}
	if config.Format == "" {
		config.Format = string(openai.SpeechResponseFormatMp3)
	}

	return &OpenAITTSProvider{
		client:   openai.NewClientWithConfig(clientConfig),
		config:   config,
		player:   player,
		audioDir: audioDir,
	}
}

// Speak converts text to speech and plays it immediately
func (p *OpenAITTSProvider) Speak(ctx context.Context, text string, opts Options) error {
	audioData, err := p.GetAudio(ctx, text, opts)
	if err != nil {
		return err
	}

	return saveAndPlay(ctx, p.player, p.audioDir, p.config.Format, audioData, opts.DeleteAfterPlay)
}

// GetAudio converts text to speech and returns audio data
func (p *OpenAITTSProvider) GetAudio(ctx context.Context, text string, opts Options) ([]byte, error) {
	voice := opts.Voice
	if voice == "" {
		voice = string(openai.VoiceNova)
	}
	speed := p.config.Speed
	if opts.Slow {
		speed *= slowSpeedFactor
	}

	logger.Debugf("Generating OpenAI TTS for text (length: %d chars) with voice: %s", len(text), voice)

	response, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(p.config.Model),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		Speed:          speed,
		ResponseFormat: openai.SpeechResponseFormat(p.config.Format),
	})
	if err != nil {
		return nil, fmt.Errorf("TTS request failed: %w", err)
	}
	defer response.Close()

	audioData, err := io.ReadAll(response)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	logger.Debugf("Generated %d bytes of %s audio (%s)", len(audioData), p.config.Format, formatSize(len(audioData)))

	return audioData, nil
}

// GetProviderName returns provider name
func (p *OpenAITTSProvider) GetProviderName() string {
	return "OpenAI TTS"
}
