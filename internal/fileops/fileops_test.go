package fileops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDirectoriesAndConfigRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "factreader")
	ops := NewFileOps(dir)

	require.NoError(t, ops.EnsureDirectories())
	assert.DirExists(t, ops.GetAudioDir())
	assert.Equal(t, filepath.Join(dir, "stats.json"), ops.GetStatsPath())

	_, err := ops.LoadConfig("factreader.yaml")
	require.ErrorIs(t, err, ErrConfigNotFound)

	require.NoError(t, ops.SaveConfig("factreader.yaml", []byte("notify: true\n")))
	data, err := ops.LoadConfig("factreader.yaml")
	require.NoError(t, err)
	assert.Equal(t, "notify: true\n", string(data))
}

func TestEnsureDirectoriesConfigDirIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factreader")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	err := NewFileOps(path).EnsureDirectories()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create config directory")
}
