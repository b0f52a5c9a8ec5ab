/*
Package monitoring provides Prometheus metrics for the stats server.

# Overview

Metrics live on a dedicated registry so that several collectors can coexist
in one process (tests build one per case). The collector tracks:

- HTTP requests (count, latency, request and response size) by route
- Computations by mode (single, pair), their duration and cell count
- Validation failures by mode and reason
- History ledger size and evictions
- Uptime, plus the Go and process collectors

*Metrics satisfies the service's Recorder interface.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	stats := service.NewStats(ledger, service.WithMetrics(metrics))
*/
package monitoring
