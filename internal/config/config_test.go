package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dooshek/factreader/internal/fileops"
	"github.com/dooshek/factreader/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOps(t *testing.T) *fileops.DefaultFileOps {
	return fileops.NewFileOps(filepath.Join(t.TempDir(), "factreader"))
}

func TestLoadMissingConfig(t *testing.T) {
	cfg, err := Load(newOps(t))
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadInvalidYAML(t *testing.T) {
	ops := newOps(t)
	require.NoError(t, ops.EnsureDirectories())
	require.NoError(t, ops.SaveConfig(configFilename, []byte("speech: [not a map")))

	_, err := Load(ops)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestSaveMergesWithExisting(t *testing.T) {
	ops := newOps(t)

	require.NoError(t, Save(ops, &types.Config{
		Facts:   types.FactsConfig{Path: "/tmp/facts.txt"},
		Speech:  types.SpeechConfig{Provider: types.ProviderGoogle, AccentDomain: "co.uk"},
		Phrases: types.Phrases{Greeting: "Hi there"},
	}))
	require.NoError(t, Save(ops, &types.Config{
		Speech:  types.SpeechConfig{Language: "en-GB"},
		Phrases: types.Phrases{Farewell: "Bye"},
	}))

	cfg, err := Load(ops)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "/tmp/facts.txt", cfg.Facts.Path)
	assert.Equal(t, "co.uk", cfg.Speech.AccentDomain)
	assert.Equal(t, "en-GB", cfg.Speech.Language)
	assert.Equal(t, "Hi there", cfg.Phrases.Greeting)
	assert.Equal(t, "Bye", cfg.Phrases.Farewell)
}

func TestRunWizard(t *testing.T) {
	ops := newOps(t)
	answers := strings.Join([]string{
		"/data/trivia.txt",
		"google",
		"fr",
		"fr",
		"", // keep stdin
	}, "\n") + "\n"

	var out bytes.Buffer
	require.NoError(t, RunWizardWith(strings.NewReader(answers), &out, ops))

	cfg, err := Load(ops)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "/data/trivia.txt", cfg.Facts.Path)
	assert.Equal(t, "fr", cfg.Speech.Language)
	assert.Equal(t, "fr", cfg.Speech.AccentDomain)
	assert.Equal(t, types.InputStdin, cfg.Input.Backend)
	assert.Contains(t, out.String(), "Configuration saved")
}

func TestRunWizardRejectsUnknownProvider(t *testing.T) {
	err := RunWizardWith(strings.NewReader("\nespeak\n"), &bytes.Buffer{}, newOps(t))
	assert.ErrorContains(t, err, "unsupported speech provider")
}

func TestCleanAnswer(t *testing.T) {
	assert.Equal(t, "yes", cleanAnswer(" yes\r\n"))
	assert.Equal(t, "ab", cleanAnswer("a\x1bb"))
}
