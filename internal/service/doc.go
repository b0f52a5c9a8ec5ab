// Package service provides the stats service sitting between the HTTP layer
// and the numeric core.
//
// The service owns the request lifecycle of a computation:
//  1. Validate the matrix (or both matrices of a Q/R pair)
//  2. Compute statistics with the mode's rounding policy
//  3. Analyze diagonal structure under the request's tolerance
//  4. Record a history entry in the injected ledger
//
// Rounding:
//   - single matrix: avg to 2 places, sum as computed
//   - Q/R pair: avg and sum to 15 places
//
// Example Usage:
//
//	ledger := history.NewLedger(history.DefaultCapacity)
//	stats := service.NewStats(ledger, service.WithLogger(logger))
//	result, err := stats.Analyze(ctx, service.SingleRequest{Matrix: m, Source: "go-api"})
package service
