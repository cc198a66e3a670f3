package notification

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPlayer struct {
	played []string
	err    error
}

func (p *recordingPlayer) PlayFile(ctx context.Context, path string) error {
	p.played = append(p.played, path)
	return p.err
}

func (p *recordingPlayer) PlayPCM(ctx context.Context, pcm []byte, sampleRate, channels int) error {
	return p.err
}

type recordingPlatform struct {
	sent [][2]string
}

func (p *recordingPlatform) send(title, message string) error {
	p.sent = append(p.sent, [2]string{title, message})
	return nil
}

func TestPlayFallbackGeneratesSound(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audio")
	player := &recordingPlayer{}
	n := &baseNotifier{platform: &recordingPlatform{}, player: player, audioDir: dir}

	require.NoError(t, n.PlayFallback(context.Background()))

	require.Len(t, player.played, 1)
	assert.Equal(t, filepath.Join(dir, fallbackSoundFile), player.played[0])

	data, err := os.ReadFile(player.played[0])
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Greater(t, len(data), 44)
}

func TestEnsureFallbackSoundKeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, fallbackSoundFile)
	require.NoError(t, os.WriteFile(path, []byte("custom"), 0o644))

	got, err := ensureFallbackSound(dir)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", string(data))
}

func TestPlayFallbackConfiguredSound(t *testing.T) {
	dir := t.TempDir()
	player := &recordingPlayer{}
	n := &baseNotifier{platform: &recordingPlatform{}, player: player, sound: "/usr/share/sounds/error.oga", audioDir: dir}

	require.NoError(t, n.PlayFallback(context.Background()))
	assert.Equal(t, []string{"/usr/share/sounds/error.oga"}, player.played)
	assert.NoFileExists(t, filepath.Join(dir, fallbackSoundFile))
}

func TestPlayFallbackPlayerError(t *testing.T) {
	boom := errors.New("no device")
	n := &baseNotifier{platform: &recordingPlatform{}, player: &recordingPlayer{err: boom}, audioDir: t.TempDir()}

	assert.ErrorIs(t, n.PlayFallback(context.Background()), boom)
}

func TestNotifyUsesPlatform(t *testing.T) {
	platform := &recordingPlatform{}
	n := &baseNotifier{platform: platform}

	require.NoError(t, n.Notify("factreader", "3 facts read"))
	assert.Equal(t, [][2]string{{"factreader", "3 facts read"}}, platform.sent)
}

func TestSilentNotifier(t *testing.T) {
	n := NewSilent()
	assert.NoError(t, n.Notify("a", "b"))
	assert.NoError(t, n.PlayFallback(context.Background()))
}
