package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerLoadMissingFilesUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	workDir := t.TempDir()
	chdir(t, workDir)

	m, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, m.Load())

	assert.Equal(t, "strict", m.EffectiveDialect())
	assert.Equal(t, 1, m.EffectiveChunkLines())
	assert.Equal(t, ".", m.EffectiveWatchDir())
	assert.Equal(t, ".srdiffignore", m.EffectiveIgnoreFile())
	assert.Equal(t, "info", m.EffectiveLogLevel())
}

func TestManagerRepoConfigOverridesGlobal(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".srdiff"), 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(home, ".srdiff", "config.yaml"),
		[]byte("default_dialect: lenient\nchunk_lines: 4\n"),
		0644,
	))

	workDir := t.TempDir()
	chdir(t, workDir)
	require.NoError(t, os.WriteFile(
		filepath.Join(workDir, ".srdiff.yaml"),
		[]byte("default_dialect: strict\n"),
		0644,
	))

	m, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, m.Load())

	assert.Equal(t, "strict", m.EffectiveDialect())
	assert.Equal(t, 4, m.EffectiveChunkLines())
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
