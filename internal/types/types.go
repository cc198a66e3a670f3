package types

import "github.com/sashabaranov/go-openai"

// Speech providers
const (
	ProviderGoogle   = "google"
	ProviderOpenAI   = "openai"
	ProviderRealtime = "realtime"
	ProviderConsole  = "console"
)

// Audio players
const (
	PlayerAuto     = "auto"
	PlayerNative   = "native"
	PlayerExternal = "external"
)

// Input backends
const (
	InputStdin = "stdin"
	InputEvdev = "evdev"
	InputAuto  = "auto"
)

type FactsConfig struct {
	Path            string `yaml:"path"`
	CopyToClipboard bool   `yaml:"copy_to_clipboard"`
}

// SpeechConfig holds configuration for Text-to-Speech
type SpeechConfig struct {
	Provider        string               `yaml:"provider"`          // "google", "openai", "realtime", "console"
	Language        string               `yaml:"language"`          // BCP-47 code, e.g. "en", "pt-BR"
	AccentDomain    string               `yaml:"accent_domain"`     // Google top level domain used for the accent, e.g. "ca", "co.uk"
	Slow            bool                 `yaml:"slow"`              // Slower speech
	DeleteAfterPlay *bool                `yaml:"delete_after_play"` // Remove synthesised audio after playing (default true)
	Voice           string               `yaml:"voice"`             // OpenAI voice
	Player          string               `yaml:"player"`            // "auto", "native", "external"
	FallbackSound   string               `yaml:"fallback_sound"`    // Played when speech synthesis is unavailable
	OpenAI          SpeechOpenAIConfig   `yaml:"openai"`
	Realtime        SpeechRealtimeConfig `yaml:"realtime"`
}

// SpeechOpenAIConfig holds OpenAI TTS specific configuration
type SpeechOpenAIConfig struct {
	Model  string  `yaml:"model"`  // "tts-1" or "tts-1-hd"
	Speed  float64 `yaml:"speed"`  // 0.25-4.0, default 1.0
	Format string  `yaml:"format"` // "mp3", "opus", "aac", "flac", "wav"
}

// SpeechRealtimeConfig holds OpenAI Realtime API specific configuration
type SpeechRealtimeConfig struct {
	Model string `yaml:"model"` // "gpt-4o-realtime-preview" or "gpt-4o-mini-realtime-preview"
}

type InputConfig struct {
	Backend string `yaml:"backend"` // "stdin", "evdev", "auto"
}

// Phrases are the fixed sentences spoken around the facts
type Phrases struct {
	Greeting       string `yaml:"greeting"`
	Farewell       string `yaml:"farewell"`
	FileNotFound   string `yaml:"file_not_found"`
	EmptyFile      string `yaml:"empty_file"`
	NotEnoughFacts string `yaml:"not_enough_facts"`
}

type Keys struct {
	OpenAIKey string `yaml:"openai_api_key"`
}

type Config struct {
	Facts   FactsConfig  `yaml:"facts"`
	Speech  SpeechConfig `yaml:"speech"`
	Input   InputConfig  `yaml:"input"`
	Phrases Phrases      `yaml:"phrases"`
	Keys    Keys         `yaml:"keys"`
	Notify  bool         `yaml:"notify"`
}

// GetFactsConfig returns the fact source configuration with defaults
func (c *Config) GetFactsConfig() FactsConfig {
	config := c.Facts
	if config.Path == "" {
		config.Path = "facts.txt"
	}
	return config
}

// GetSpeechConfig returns speech configuration with defaults
func (c *Config) GetSpeechConfig() SpeechConfig {
	config := c.Speech

	if config.Provider == "" {
		config.Provider = ProviderGoogle
	}
	if config.Language == "" {
		config.Language = "en"
	}
	if config.AccentDomain == "" {
		config.AccentDomain = "ca"
	}
	if config.DeleteAfterPlay == nil {
		deleteAfterPlay := true
		config.DeleteAfterPlay = &deleteAfterPlay
	}
	if config.Voice == "" {
		config.Voice = string(openai.VoiceNova)
	}
	if config.Player == "" {
		config.Player = PlayerAuto
	}

	// OpenAI TTS defaults
	if config.OpenAI.Model == "" {
		config.OpenAI.Model = string(openai.TTSModel1HD)
	}
	if config.OpenAI.Speed == 0 {
		config.OpenAI.Speed = 1.0
	}
	if config.OpenAI.Format == "" {
		config.OpenAI.Format = string(openai.SpeechResponseFormatMp3)
	}

	// Realtime API defaults
	if config.Realtime.Model == "" {
		config.Realtime.Model = "gpt-4o-realtime-preview"
	}

	return config
}

// GetInputConfig returns input configuration with defaults
func (c *Config) GetInputConfig() InputConfig {
	config := c.Input
	if config.Backend == "" {
		config.Backend = InputStdin
	}
	return config
}

// GetPhrases returns the spoken phrases, filling any that are not configured
func (c *Config) GetPhrases() Phrases {
	p := c.Phrases
	if p.Greeting == "" {
		p.Greeting = "Hello! How many facts do you want to know today?"
	}
	if p.Farewell == "" {
		p.Farewell = "Have a nice day!"
	}
	if p.FileNotFound == "" {
		p.FileNotFound = "The designated file could not be found!"
	}
	if p.EmptyFile == "" {
		p.EmptyFile = "The file is empty!"
	}
	if p.NotEnoughFacts == "" {
		p.NotEnoughFacts = "There are not enough facts in the file!"
	}
	return p
}
