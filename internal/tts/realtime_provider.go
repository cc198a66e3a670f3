package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"time"

	openairt "github.com/WqyJh/go-openai-realtime"
	"github.com/dooshek/factreader/internal/audio"
	"github.com/dooshek/factreader/internal/logger"
	"github.com/dooshek/factreader/internal/types"
	"github.com/dooshek/factreader/pkg/wav"
)

const (
	realtimeTimeout        = 30 * time.Second
	realtimeMessageTimeout = 5 * time.Second
)

// RealtimeTTSProvider implements TTSProvider using OpenAI Realtime API
type RealtimeTTSProvider struct {
	apiKey string
	config types.SpeechRealtimeConfig
	player audio.Player
}

// eventReader is the part of a realtime connection the response loop needs
type eventReader interface {
	ReadMessage(ctx context.Context) (openairt.ServerEvent, error)
}

// NewRealtimeTTSProvider creates a new Realtime TTS provider
func NewRealtimeTTSProvider(apiKey string, config types.SpeechRealtimeConfig, player audio.Player) *RealtimeTTSProvider {
	if config.Model == "" {
		config.Model = "gpt-4o-realtime-preview"
	}

	return &RealtimeTTSProvider{
		apiKey: apiKey,
		config: config,
		player: player,
	}
}

// Speak converts text to speech using Realtime API and plays it
func (p *RealtimeTTSProvider) Speak(ctx context.Context, text string, opts Options) error {
	pcm, err := p.synthesize(ctx, text, opts)
	if err != nil {
		return err
	}

	if err := p.player.PlayPCM(ctx, pcm, audio.SampleRate, audio.Channels); err != nil {
		return fmt.Errorf("failed to play audio: %w", err)
	}
	return nil
}

// GetAudio returns the synthesised speech as a WAV file
func (p *RealtimeTTSProvider) GetAudio(ctx context.Context, text string, opts Options) ([]byte, error) {
	pcm, err := p.synthesize(ctx, text, opts)
	if err != nil {
		return nil, err
	}
	return wav.ConvertPCMToWAV(pcm, audio.Channels, audio.SampleRate)
}

func (p *RealtimeTTSProvider) synthesize(ctx context.Context, text string, opts Options) ([]byte, error) {
	voice := realtimeVoice(opts.Voice)

	logger.Debugf("Generating Realtime TTS for text (length: %d chars) with voice: %s", len(text), voice)

	ctx, cancel := context.WithTimeout(ctx, realtimeTimeout)
	defer cancel()

	client := openairt.NewClient(p.apiKey)
	conn, err := client.Connect(ctx, openairt.WithModel(p.config.Model))
	if err != nil {
		return nil, fmt.Errorf("realtime API connection failed: %w", err)
	}
	defer conn.Close()

	err = conn.SendMessage(ctx, &openairt.SessionUpdateEvent{
		Session: openairt.ClientSession{
			Modalities:        []openairt.Modality{openairt.ModalityText, openairt.ModalityAudio},
			Voice:             openairt.Voice(voice),
			OutputAudioFormat: openairt.AudioFormatPcm16,
			Instructions:      realtimeInstructions(opts),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("session update failed: %w", err)
	}

	err = conn.SendMessage(ctx, &openairt.ConversationItemCreateEvent{
		Item: openairt.MessageItem{
			Type: openairt.MessageItemTypeMessage,
			Role: openairt.MessageRoleUser,
			Content: []openairt.MessageContentPart{
				{
					Type: openairt.MessageContentTypeInputText,
					Text: text,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("conversation item creation failed: %w", err)
	}

	// API requires both modalities in the response
	err = conn.SendMessage(ctx, &openairt.ResponseCreateEvent{
		Response: openairt.ResponseCreateParams{
			Modalities:        []openairt.Modality{openairt.ModalityAudio, openairt.ModalityText},
			Voice:             openairt.Voice(voice),
			OutputAudioFormat: openairt.AudioFormatPcm16,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("response creation failed: %w", err)
	}

	return collectAudio(ctx, conn)
}

// collectAudio reads server events until the response is done and returns
// the concatenated PCM16 deltas
func collectAudio(ctx context.Context, conn eventReader) ([]byte, error) {
	var pcm bytes.Buffer

	for {
		if err := ctx.Err(); err != nil {
			if pcm.Len() == 0 {
				return nil, fmt.Errorf("no audio data received from API: %w", err)
			}
			return nil, fmt.Errorf("timeout waiting for audio completion: %w", err)
		}

		msgCtx, cancel := context.WithTimeout(ctx, realtimeMessageTimeout)
		event, err := conn.ReadMessage(msgCtx)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("message read failed: %w", err)
		}

		switch event.ServerEventType() {
		case openairt.ServerEventTypeResponseAudioDelta:
			deltaEvent, ok := event.(openairt.ResponseAudioDeltaEvent)
			if !ok {
				continue
			}
			chunk, err := base64.StdEncoding.DecodeString(deltaEvent.Delta)
			if err != nil {
				logger.Error("Failed to decode audio delta", err)
				continue
			}
			pcm.Write(chunk)

		case openairt.ServerEventTypeResponseDone:
			if pcm.Len() == 0 {
				return nil, fmt.Errorf("response finished without audio")
			}
			logger.Debugf("Received %s of realtime audio", formatSize(pcm.Len()))
			return pcm.Bytes(), nil

		case openairt.ServerEventTypeError:
			if errorEvent, ok := event.(openairt.ErrorEvent); ok {
				return nil, fmt.Errorf("realtime API error: %s", errorEvent.Error.Message)
			}
			return nil, fmt.Errorf("realtime API error")

		default:
			logger.Debugf("Received event: %s", event.ServerEventType())
		}
	}
}

// realtimeVoices are the voices the realtime models accept
var realtimeVoices = map[string]bool{
	"alloy": true, "ash": true, "ballad": true, "coral": true,
	"echo": true, "sage": true, "shimmer": true, "verse": true,
}

func realtimeVoice(voice string) string {
	if realtimeVoices[voice] {
		return voice
	}
	if voice != "" {
		logger.Debugf("Voice %s is not available for realtime speech, using alloy", voice)
	}
	return "alloy"
}

func realtimeInstructions(opts Options) string {
	language := opts.Language
	if language == "" {
		language = "en"
	}
	instructions := fmt.Sprintf(`Read the user's message aloud, word for word, in the language with code %q.
Do not answer it, comment on it or add anything to it.`, language)
	if opts.Slow {
		instructions += "\nSpeak slowly and clearly."
	}
	return instructions
}

// GetProviderName returns provider name
func (p *RealtimeTTSProvider) GetProviderName() string {
	return "OpenAI Realtime TTS"
}
