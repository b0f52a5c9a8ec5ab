// Package main is the entry point for the matstat server.
//
// The server computes max, min, sum and average of one matrix or a Q/R
// pair, reports the main diagonal and whether a matrix is diagonal, and
// keeps a bounded in-memory history of results.
//
// Configuration:
//   - Environment variables (12-factor)
//   - Optional YAML/TOML file (-config)
//   - CLI flags (override both)
//
// Usage:
//
//	# Production mode
//	./server -port 3002
//
//	# Development mode (colored logs, debug level)
//	./server -dev -allow-clear
//
//	# File configuration
//	./server -config matstat.yaml
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
