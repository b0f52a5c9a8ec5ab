// Package history keeps a bounded in-memory log of computation results.
//
// The ledger is an explicitly owned value: the server creates one at startup
// and hands it to the stats service. Nothing in this package is global.
//
// Retention:
//   - Capacity defaults to 100 entries
//   - Oldest entries are evicted first; insertion order is preserved
//   - Reads return deep copies
//
// No persistence: a restart starts with an empty ledger.
package history
