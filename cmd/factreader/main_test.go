package main

import (
	"testing"

	"github.com/dooshek/factreader/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFlags(t *testing.T) {
	cfg := &types.Config{}
	cfg.Speech.Provider = types.ProviderOpenAI
	cfg.Facts.Path = "/srv/trivia.txt"

	applyFlags(cfg, cliFlags{
		provider:  types.ProviderConsole,
		input:     types.InputEvdev,
		language:  "pt-BR",
		accent:    "com.br",
		slow:      true,
		keepAudio: true,
	})

	assert.Equal(t, "/srv/trivia.txt", cfg.Facts.Path)
	assert.Equal(t, types.ProviderConsole, cfg.Speech.Provider)
	assert.Equal(t, types.InputEvdev, cfg.Input.Backend)
	assert.Equal(t, "pt-BR", cfg.Speech.Language)
	assert.Equal(t, "com.br", cfg.Speech.AccentDomain)
	assert.True(t, cfg.Speech.Slow)
	require.NotNil(t, cfg.Speech.DeleteAfterPlay)
	assert.False(t, *cfg.Speech.DeleteAfterPlay)
}

func TestApplyFlagsKeepsConfigDefaults(t *testing.T) {
	cfg := &types.Config{}
	applyFlags(cfg, cliFlags{file: "facts.txt"})

	speech := cfg.GetSpeechConfig()
	assert.Equal(t, "facts.txt", cfg.Facts.Path)
	assert.Equal(t, types.ProviderGoogle, speech.Provider)
	assert.True(t, *speech.DeleteAfterPlay)
	assert.False(t, speech.Slow)
}
