package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/stockwatch/pkg/errors"
	"github.com/turtacn/stockwatch/pkg/logger"
)

func TestLoadConfig_RequiresSecret(t *testing.T) {
	t.Setenv("STOCKWATCH_AUTH_SECRET", "")
	t.Setenv("SECRET_KEY", "")

	_, err := NewLoader(logger.NewNullLogger(), t.TempDir()).Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
}

func TestLoadConfig_DefaultsAndEnv(t *testing.T) {
	t.Setenv("STOCKWATCH_AUTH_SECRET", "topsecret")
	t.Setenv("FMP_API_KEY", "fmp-key")

	cfg, err := NewLoader(logger.NewNullLogger(), t.TempDir()).Load()
	require.NoError(t, err)

	assert.Equal(t, "topsecret", cfg.Auth.Secret)
	assert.Equal(t, "fmp-key", cfg.Market.APIKey)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "google_id", cfg.Auth.IdentityClaim)
	assert.Equal(t, 500, cfg.Cache.MaxEntries)
	assert.Equal(t, 300*time.Second, cfg.Cache.DefaultTTL)
	assert.True(t, cfg.Cache.SingleFlight)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadConfig_FileOverrides(t *testing.T) {
	t.Setenv("STOCKWATCH_AUTH_SECRET", "")
	t.Setenv("SECRET_KEY", "")

	dir := t.TempDir()
	yaml := `
server:
  port: 9090
auth:
  secret: from-file
  token_ttl: 30m
cache:
  max_entries: 2
  default_ttl: 10s
  ttls:
    search: 1m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := NewLoader(logger.NewNullLogger(), dir).Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.Auth.Secret)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 2, cfg.Cache.MaxEntries)
	assert.Equal(t, time.Minute, cfg.Cache.TTLFor("search"))
	assert.Equal(t, 10*time.Second, cfg.Cache.TTLFor("stocks"))
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Driver: "sqlite"},
			Auth:     AuthConfig{Secret: "s"},
			Cache:    CacheConfig{Backend: "memory", MaxEntries: 10},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing secret", func(c *Config) { c.Auth.Secret = "" }, "auth.secret"},
		{"vault without path", func(c *Config) { c.Auth.Secret = ""; c.Vault.Enabled = true; c.Vault.Address = "http://vault" }, "vault.secret_path"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"zero cache size", func(c *Config) { c.Cache.MaxEntries = 0 }, "cache.max_entries"},
		{"redis without addresses", func(c *Config) { c.Cache.Backend = "redis" }, "redis.addresses"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true }, "kafka.brokers"},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			appErr, ok := errors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, appErr.Metadata()["field"])
		})
	}
}
