package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"CONFIG_PATH", "PORT", "APP_NAME", "DATABASE_URL", "FOXOPS_URL", "FOXOPS_TOKEN",
	"FOXOPS_TIMEOUT_SECONDS", "INCARNATION_CACHE_SECONDS", "ENRICH_CONCURRENCY", "BULK_CONCURRENCY",
	"JOB_RETENTION_MINUTES",
	"JWT_SECRET", "JWT_ISSUER", "JWT_EXPIRATION_HOURS", "MCP_ENABLED", "MCP_PORT", "FRONTEND_URL", "LOG_LEVEL",
}

// clearEnv blanks every key so values from the host do not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "http://localhost:5001", cfg.FoxopsURL)
	assert.Equal(t, 30*time.Second, cfg.FoxopsTimeout())
	assert.Equal(t, time.Minute, cfg.IncarnationCacheTTL())
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiresIn())
	assert.Equal(t, time.Hour, cfg.JobRetention())
	assert.False(t, cfg.MCPReady())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "4000"
foxops_url: https://foxops.example.com
bulk_concurrency: 2
mcp_enabled: true
foxops_token: svc
log_level: debug
`), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "5000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "https://foxops.example.com", cfg.FoxopsURL)
	assert.Equal(t, 2, cfg.BulkConcurrency)
	assert.Equal(t, 8, cfg.EnrichConcurrency)
	assert.True(t, cfg.MCPReady())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_BadFile(t *testing.T) {
	clearEnv(t)

	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unterminated"), 0o600))
	t.Setenv("CONFIG_PATH", path)
	_, err = Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"port", func(c *Config) { c.Port = "0" }},
		{"relative url", func(c *Config) { c.FoxopsURL = "foxops.local" }},
		{"ftp url", func(c *Config) { c.FoxopsURL = "ftp://foxops.local" }},
		{"enrich", func(c *Config) { c.EnrichConcurrency = 0 }},
		{"bulk", func(c *Config) { c.BulkConcurrency = -1 }},
		{"job retention", func(c *Config) { c.JobRetentionMinutes = 0 }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"mcp port", func(c *Config) { c.MCPEnabled = true; c.MCPPort = "x" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
