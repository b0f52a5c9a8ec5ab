// Package config provides 12-factor configuration management for the
// matstat server.
//
// Configuration is loaded from environment variables with sensible defaults.
// An optional YAML or TOML file can be layered on top, and CLI flags in
// cmd/server override both.
//
// Configuration Sections:
//   - Server: listen address, timeouts, request body limit
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - CORS: allowed origins
//   - Auth: optional JWT bearer tokens
//   - Stats: default diagonal tolerance
//   - History: ledger capacity, summary length, clear endpoint toggle
//   - Compression: gzip responses
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s\n", cfg.Server.Addr())
//
// Environment Variables:
//   - PORT, HOST, READ_TIMEOUT, WRITE_TIMEOUT, IDLE_TIMEOUT, SHUTDOWN_TIMEOUT, BODY_LIMIT_BYTES
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - CORS_ORIGINS (comma separated)
//   - JWT_REQUIRED, JWT_SECRET
//   - STATS_TOLERANCE
//   - HISTORY_CAPACITY, HISTORY_RECENT, HISTORY_ALLOW_CLEAR
//   - GZIP_ENABLED
package config
