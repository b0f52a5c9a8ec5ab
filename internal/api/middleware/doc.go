// Package middleware provides the HTTP middleware of the matstat server.
//
// Middleware stack includes:
//   - Recovery: panics become a generic 500 and are logged
//   - RequestLogger: one zap line per request
//   - SecurityHeaders / BodyLimit: helmet-style headers, 10MB body cap
//   - CORS: Cross-origin resource sharing with configurable origins
//   - RateLimit: Per-IP token bucket rate limiting
//   - JWT: optional HS256 bearer tokens
//
// Rate Limiting:
//   - Per-IP tracking; idle clients are swept after ClientTTL
//   - Token bucket algorithm (golang.org/x/time/rate)
//   - Global rate limiting option
//   - Rejections carry Retry-After
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
//	stats.Use(middleware.JWT(middleware.AuthConfig{Required: true, Secret: secret}))
package middleware
