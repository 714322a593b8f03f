package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileAndSecrets(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  public_origin: https://app.aesthiq.test
stripe:
  platform_fee_bps: 250
  status_cache_ttl: 45s
payments:
  bypass_setup_gate: true
`)
	t.Setenv("AESTHIQ_SESSION_SECRET", "s3cret")
	t.Setenv("AESTHIQ_STRIPE_SECRET_KEY", "sk_test_123")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://app.aesthiq.test", cfg.Server.PublicOrigin)
	assert.Equal(t, int64(250), cfg.Stripe.PlatformFeeBps)
	assert.Equal(t, 45*time.Second, cfg.Stripe.StatusCacheTTL)
	assert.True(t, cfg.Payments.BypassSetupGate)
	assert.Equal(t, "s3cret", cfg.Session.Secret)
	assert.Equal(t, "sk_test_123", cfg.Stripe.SecretKey)

	// defaults
	assert.Equal(t, "aesthiq_session", cfg.Session.CookieName)
	assert.Equal(t, 14, cfg.Organizations.TrialDays)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("AESTHIQ_SESSION_SECRET", "s3cret")
	t.Setenv("AESTHIQ_SERVER_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadBypassGateDefaultsOff(t *testing.T) {
	path := writeConfig(t, "log:\n  level: debug\n")
	t.Setenv("AESTHIQ_SESSION_SECRET", "s3cret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Payments.BypassSetupGate)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Server:  ServerConfig{Port: 8080},
		Session: SessionConfig{Secret: "x", TTL: time.Hour},
	}
	assert.NoError(t, valid.Validate())

	noSecret := valid
	noSecret.Session.Secret = ""
	assert.Error(t, noSecret.Validate())

	noPort := valid
	noPort.Server.Port = 0
	assert.Error(t, noPort.Validate())

	badFee := valid
	badFee.Stripe.PlatformFeeBps = 20000
	assert.Error(t, badFee.Validate())
}
