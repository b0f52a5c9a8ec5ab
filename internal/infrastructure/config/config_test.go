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

	// Server config
	assert.Equal(t, "3002", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "0.0.0.0:3002", cfg.Server.Addr())
	assert.Equal(t, int64(10*MB), cfg.Server.BodyLimitBytes)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout.Duration)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// Domain config
	assert.Equal(t, 1e-9, cfg.Stats.Tolerance)
	assert.Equal(t, 100, cfg.History.Capacity)
	assert.Equal(t, 10, cfg.History.Recent)
	assert.False(t, cfg.History.AllowClear)
	assert.False(t, cfg.Auth.Required)
	assert.True(t, cfg.Compression.Enabled)

	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                "9000",
		"HOST":                "127.0.0.1",
		"READ_TIMEOUT":        "2s",
		"BODY_LIMIT_BYTES":    "1024",
		"LOG_LEVEL":           "debug",
		"LOG_DEV":             "true",
		"RATE_LIMIT_RPS":      "500",
		"RATE_LIMIT_BURST":    "1000",
		"RATE_LIMIT_ENABLED":  "false",
		"CORS_ORIGINS":        "http://a.test,http://b.test",
		"JWT_REQUIRED":        "true",
		"JWT_SECRET":          "s3cret",
		"STATS_TOLERANCE":     "1e-6",
		"HISTORY_CAPACITY":    "5",
		"HISTORY_RECENT":      "2",
		"HISTORY_ALLOW_CLEAR": "true",
		"GZIP_ENABLED":        "false",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 2*time.Second, cfg.Server.ReadTimeout.Duration)
	assert.Equal(t, int64(1024), cfg.Server.BodyLimitBytes)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)

	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Auth.Required)
	assert.Equal(t, "s3cret", cfg.Auth.Secret)
	assert.Equal(t, 1e-6, cfg.Stats.Tolerance)
	assert.Equal(t, 5, cfg.History.Capacity)
	assert.Equal(t, 2, cfg.History.Recent)
	assert.True(t, cfg.History.AllowClear)
	assert.False(t, cfg.Compression.Enabled)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// defaults still apply
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 100, cfg.History.Capacity)
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	t.Setenv("HISTORY_CAPACITY", "0")

	_, err := Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, 100, cfg.History.Capacity)
}

func TestLoadRejectsMalformedEnv(t *testing.T) {
	t.Setenv("READ_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty port", func(c *Config) { c.Server.Port = "" }, "port"},
		{"zero body limit", func(c *Config) { c.Server.BodyLimitBytes = 0 }, "body limit"},
		{"negative tolerance", func(c *Config) { c.Stats.Tolerance = -1 }, "tolerance"},
		{"zero capacity", func(c *Config) { c.History.Capacity = 0 }, "capacity"},
		{"zero recent", func(c *Config) { c.History.Recent = 0 }, "recent"},
		{"zero rps", func(c *Config) { c.RateLimit.RequestsPerSecond = 0 }, "rate limit"},
		{"zero rps disabled", func(c *Config) {
			c.RateLimit.RequestsPerSecond = 0
			c.RateLimit.Enabled = false
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFileYAML(t *testing.T) {
	t.Setenv("HOST", "10.0.0.1")
	t.Setenv("PORT", "9999")

	path := writeFile(t, "matstat.yaml", `
server:
  port: "4000"
  readTimeout: 3s
history:
  capacity: 50
  allowClear: true
stats:
  tolerance: 0.001
cors:
  allowedOrigins:
    - http://localhost:5173
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, "10.0.0.1", cfg.Server.Host)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout.Duration)
	assert.Equal(t, 50, cfg.History.Capacity)
	assert.Equal(t, 10, cfg.History.Recent)
	assert.True(t, cfg.History.AllowClear)
	assert.Equal(t, 0.001, cfg.Stats.Tolerance)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORS.AllowedOrigins)
}

func TestLoadFileTOML(t *testing.T) {
	path := writeFile(t, "matstat.toml", `
[logging]
level = "debug"
development = true

[rateLimit]
requestsPerSecond = 5
burst = 10

[server]
shutdownTimeout = "1s"
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, time.Second, cfg.Server.ShutdownTimeout.Duration)
	assert.Equal(t, "3002", cfg.Server.Port)
}

func TestLoadFileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := LoadFile(writeFile(t, "matstat.ini", "port=1"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadFile(writeFile(t, "bad.yaml", "server: [unclosed"))
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := LoadFile(writeFile(t, "bad.toml", "[history]\ncapacity = -1\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "capacity")
	})
}
