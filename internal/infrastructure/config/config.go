package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// MB is one mebibyte.
const MB = 1 << 20

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server" toml:"server"`
	Logging     LogConfig         `yaml:"logging" toml:"logging"`
	RateLimit   RateLimitConfig   `yaml:"rateLimit" toml:"rateLimit"`
	CORS        CORSConfig        `yaml:"cors" toml:"cors"`
	Auth        AuthConfig        `yaml:"auth" toml:"auth"`
	Stats       StatsConfig       `yaml:"stats" toml:"stats"`
	History     HistoryConfig     `yaml:"history" toml:"history"`
	Compression CompressionConfig `yaml:"compression" toml:"compression"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"3002" yaml:"port" toml:"port"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0" yaml:"host" toml:"host"`
	ReadTimeout     Duration `envconfig:"READ_TIMEOUT" default:"15s" yaml:"readTimeout" toml:"readTimeout"`
	WriteTimeout    Duration `envconfig:"WRITE_TIMEOUT" default:"15s" yaml:"writeTimeout" toml:"writeTimeout"`
	IdleTimeout     Duration `envconfig:"IDLE_TIMEOUT" default:"60s" yaml:"idleTimeout" toml:"idleTimeout"`
	ShutdownTimeout Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" yaml:"shutdownTimeout" toml:"shutdownTimeout"`
	BodyLimitBytes  int64    `envconfig:"BODY_LIMIT_BYTES" default:"10485760" yaml:"bodyLimitBytes" toml:"bodyLimitBytes"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development" toml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100" yaml:"requestsPerSecond" toml:"requestsPerSecond"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200" yaml:"burst" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" yaml:"enabled" toml:"enabled"`
	// Global shares one bucket across all clients instead of one per IP
	Global bool `envconfig:"RATE_LIMIT_GLOBAL" default:"false" yaml:"global" toml:"global"`
}

// CORSConfig holds allowed origins. "*" allows any origin.
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CORS_ORIGINS" default:"*" yaml:"allowedOrigins" toml:"allowedOrigins"`
}

// AuthConfig holds bearer token configuration.
type AuthConfig struct {
	Required bool   `envconfig:"JWT_REQUIRED" default:"false" yaml:"required" toml:"required"`
	Secret   string `envconfig:"JWT_SECRET" yaml:"secret" toml:"secret"`
}

// StatsConfig holds computation defaults.
type StatsConfig struct {
	Tolerance float64 `envconfig:"STATS_TOLERANCE" default:"1e-9" yaml:"tolerance" toml:"tolerance"`
}

// HistoryConfig holds history ledger configuration.
type HistoryConfig struct {
	Capacity   int  `envconfig:"HISTORY_CAPACITY" default:"100" yaml:"capacity" toml:"capacity"`
	Recent     int  `envconfig:"HISTORY_RECENT" default:"10" yaml:"recent" toml:"recent"`
	AllowClear bool `envconfig:"HISTORY_ALLOW_CLEAR" default:"false" yaml:"allowClear" toml:"allowClear"`
}

// CompressionConfig toggles gzip responses.
type CompressionConfig struct {
	Enabled bool `envconfig:"GZIP_ENABLED" default:"true" yaml:"enabled" toml:"enabled"`
}

// Duration is a time.Duration read from strings such as "15s" in env
// vars, YAML and TOML alike.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText renders the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// LoadFile loads configuration from the environment and overlays the YAML
// or TOML file at path. Keys present in the file win.
func LoadFile(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return nil, fmt.Errorf("unsupported config file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail at runtime.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("server port is required"))
	}
	if c.Server.BodyLimitBytes <= 0 {
		errs = append(errs, fmt.Errorf("body limit must be positive, got %d", c.Server.BodyLimitBytes))
	}
	if t := c.Stats.Tolerance; math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		errs = append(errs, fmt.Errorf("stats tolerance must be a finite non-negative number, got %v", t))
	}
	if c.History.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("history capacity must be positive, got %d", c.History.Capacity))
	}
	if c.History.Recent <= 0 {
		errs = append(errs, fmt.Errorf("history recent limit must be positive, got %d", c.History.Recent))
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("rate limit must be positive when enabled, got %d", c.RateLimit.RequestsPerSecond))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "3002",
			Host:            "0.0.0.0",
			ReadTimeout:     Duration{15 * time.Second},
			WriteTimeout:    Duration{15 * time.Second},
			IdleTimeout:     Duration{60 * time.Second},
			ShutdownTimeout: Duration{10 * time.Second},
			BodyLimitBytes:  10 * MB,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Stats: StatsConfig{
			Tolerance: 1e-9,
		},
		History: HistoryConfig{
			Capacity: 100,
			Recent:   10,
		},
		Compression: CompressionConfig{
			Enabled: true,
		},
	}
}
