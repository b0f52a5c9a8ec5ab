// Package server wires the matstat HTTP server.
//
// This package orchestrates all components:
//   - HTTP routing with Gin framework
//   - Middleware stack (recovery, tracing, request logging, metrics,
//     security headers, CORS, body limit, rate limiting, JWT on /stats)
//   - History ledger and stats service
//   - gzip response compression
//
// Server Lifecycle:
//  1. Load configuration from environment, file and flags
//  2. Initialize logger (production or development)
//  3. Build the ledger, the stats service and the routes
//  4. Serve until the context is cancelled
//  5. Drain in-flight requests within the shutdown timeout
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg)
//	if err != nil {
//		return err
//	}
//	defer srv.Close()
//	return srv.Run(ctx)
package server
