package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http://localhost:8000", cfg.BackendURL)
	assert.Equal(t, 60*time.Second, cfg.QueryTimeout.Std())
	assert.Equal(t, 10, cfg.Embedding.Step)
	assert.Equal(t, 500*time.Millisecond, cfg.Embedding.Interval.Std())
	assert.False(t, cfg.Logging.DebugMode)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend_url: http://qa.internal:9000
query_timeout: 15s
watch_dir: /srv/drop
embedding:
  step: 25
  interval: 200ms
logging:
  debug_mode: true
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://qa.internal:9000", cfg.BackendURL)
	assert.Equal(t, 15*time.Second, cfg.QueryTimeout.Std())
	assert.Equal(t, "/srv/drop", cfg.WatchDir)
	assert.Equal(t, 25, cfg.Embedding.Step)
	assert.Equal(t, 200*time.Millisecond, cfg.Embedding.Interval.Std())
	assert.True(t, cfg.Logging.DebugMode)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, 2*time.Minute, cfg.UploadTimeout.Std())
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("query_timeout: soon\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvBackendURL, "http://override:8080")
	t.Setenv(EnvDebug, "1")
	t.Setenv(EnvDarkMode, "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://override:8080", cfg.BackendURL)
	assert.True(t, cfg.Logging.DebugMode)
	assert.True(t, cfg.DarkMode)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend_url: http://from-file:1\n"), 0644))
	t.Setenv(EnvBackendURL, "http://from-env:2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:2", cfg.BackendURL)
}
