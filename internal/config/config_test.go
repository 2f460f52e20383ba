package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "messenger-service", cfg.ServiceName)
	assert.Equal(t, ":8083", cfg.Addr())
	assert.Equal(t, 20*time.Second, cfg.PresenceThreshold)
	assert.Equal(t, 10*time.Second, cfg.PresenceSweep)
	assert.Equal(t, 3*time.Second, cfg.TypingTTL)
}

func TestLoadRequiresIssuerWhenAuthEnabled(t *testing.T) {
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("AUTH_ISSUER", "")
	t.Setenv("AUTH_JWKS_URL", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadLivenessWindowsOverride(t *testing.T) {
	t.Setenv("AUTH_ENABLED", "false")
	t.Setenv("PRESENCE_THRESHOLD", "45s")
	t.Setenv("TYPING_TTL", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.PresenceThreshold)
	assert.Equal(t, 5*time.Second, cfg.TypingTTL)
}
