package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "https://www.cience.com", cfg.Directory.BaseURL)
	assert.Equal(t, "https://www.linkedin.com", cfg.LinkedIn.BaseURL)
	assert.True(t, cfg.LinkedIn.Headless)
	assert.Equal(t, 10, cfg.LinkedIn.LoginWaitSecs)
	assert.Equal(t, 5, cfg.LinkedIn.ElementWaitSecs)
	assert.Equal(t, 2.0, cfg.Coresignal.RequestsPerSecond)
	assert.Equal(t, "browser", cfg.Pipeline.Source)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("LEADSCAN_PIPELINE_SOURCE", "api")
	t.Setenv("LEADSCAN_CORESIGNAL_KEY", "cs-key")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "api", cfg.Pipeline.Source)
	assert.Equal(t, "cs-key", cfg.Coresignal.Key)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shouty"})
	require.Error(t, err)
}
