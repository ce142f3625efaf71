package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
	assert.Equal(t, 2*time.Second, cfg.Drain.Grace)
	assert.Empty(t, cfg.Metrics.File)
}

func TestLoadDefaultsMatchDefault(t *testing.T) {
	for _, key := range []string{"PRIMEFAN_LOG_LEVEL", "PRIMEFAN_LOG_DEV", "PRIMEFAN_DRAIN_GRACE", "PRIMEFAN_METRICS_FILE"} {
		unsetenv(t, key)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PRIMEFAN_LOG_LEVEL":    "debug",
		"PRIMEFAN_LOG_DEV":      "true",
		"PRIMEFAN_DRAIN_GRACE":  "250ms",
		"PRIMEFAN_METRICS_FILE": "/tmp/primefan.prom",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 250*time.Millisecond, cfg.Drain.Grace)
	assert.Equal(t, "/tmp/primefan.prom", cfg.Metrics.File)
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("PRIMEFAN_DRAIN_GRACE", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestLoggerConfig(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "warn"
	cfg.Logging.Development = true

	lc := cfg.Logger()
	assert.Equal(t, "warn", lc.Level)
	assert.True(t, lc.Development)
	assert.Equal(t, []string{"stderr"}, lc.OutputPaths)
}

func unsetenv(t *testing.T, key string) {
	t.Helper()
	// Setenv restores the previous value on cleanup
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}
