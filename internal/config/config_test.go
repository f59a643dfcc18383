package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost"}, cfg.Bridge.AllowedOrigins)
	assert.Equal(t, 150*time.Millisecond, cfg.Bridge.ThrottleWindow())
	assert.False(t, cfg.Bridge.RequireSketchID)
	assert.Equal(t, 5*time.Second, cfg.Runtime.Timeout())
	assert.Equal(t, 1024, cfg.Runtime.MaxCallStack)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BRIDGE_ALLOWED_ORIGINS", "http://localhost,https://slides.example")
	t.Setenv("BRIDGE_THROTTLE_MS", "75")
	t.Setenv("RUNTIME_TIMEOUT_MS", "2500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost", "https://slides.example"}, cfg.Bridge.AllowedOrigins)
	assert.Equal(t, 75*time.Millisecond, cfg.Bridge.ThrottleWindow())
	assert.Equal(t, 2500*time.Millisecond, cfg.Runtime.Timeout())
}

func TestLoadOrDefaultOnBadInput(t *testing.T) {
	t.Setenv("RUNTIME_TIMEOUT_MS", "not-a-number")

	cfg := LoadOrDefault()
	assert.Equal(t, Default().Runtime.TimeoutMs, cfg.Runtime.TimeoutMs)
}

func TestDefaultMatchesTags(t *testing.T) {
	env, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), env)
}
