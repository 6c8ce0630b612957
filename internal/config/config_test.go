package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "/api", cfg.Server.BasePath)
	assert.Equal(t, "memory", cfg.Notifier.Driver)
	assert.Equal(t, 10*time.Second, cfg.Presence.HeartbeatInterval)
	assert.Equal(t, 30*time.Second, cfg.Presence.UserTimeout)
	assert.Equal(t, 120*time.Second, cfg.Presence.StaleTimeout)
	assert.Equal(t, 60*time.Second, cfg.Presence.CleanupInterval)
	assert.Equal(t, 2*time.Second, cfg.Presence.DebounceDelay)
	assert.Equal(t, 10*time.Second, cfg.Presence.CleanupTimeout)
	assert.Less(t, cfg.Presence.CleanupTimeout, cfg.Presence.CleanupInterval)
	assert.Equal(t, 3000, cfg.TextGen.MaxTokens)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9001
  base_path: /kitchen
notifier:
  driver: redis
redis:
  url: redis://localhost:6379/3
presence:
  heartbeat_interval: 5s
  user_timeout: 15s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, "/kitchen", cfg.Server.BasePath)
	assert.Equal(t, "redis", cfg.Notifier.Driver)
	assert.Equal(t, "redis://localhost:6379/3", cfg.Redis.URL)
	assert.Equal(t, 5*time.Second, cfg.Presence.HeartbeatInterval)
	assert.Equal(t, 15*time.Second, cfg.Presence.UserTimeout)
	// untouched keys keep their defaults
	assert.Equal(t, 120*time.Second, cfg.Presence.StaleTimeout)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9001\n"), 0o600))

	t.Setenv("PORT", "7000")
	t.Setenv("NOTIFIER_DRIVER", "NATS")
	t.Setenv("NATS_URL", "nats://localhost:4222")
	t.Setenv("PRESENCE_STALE_TIMEOUT", "3m")
	t.Setenv("PRESENCE_CLEANUP_TIMEOUT", "5s")
	t.Setenv("PRESENCE_USER_TIMEOUT", "not-a-duration")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "nats", cfg.Notifier.Driver)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, 3*time.Minute, cfg.Presence.StaleTimeout)
	assert.Equal(t, 5*time.Second, cfg.Presence.CleanupTimeout)
	assert.Equal(t, 30*time.Second, cfg.Presence.UserTimeout, "invalid durations are ignored")
	assert.Equal(t, "sk-test", cfg.TextGen.APIKey)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
