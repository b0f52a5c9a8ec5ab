// Package http provides the gin handlers of the matstat API.
//
// Routes (registered by the server package):
//
//	GET    /health          liveness
//	POST   /stats           statistics of {matrix} or {q, r}
//	GET    /stats/history   totals, latest entry and recent entries; ?source= filters
//	DELETE /stats/history   clears the ledger when enabled, 403 otherwise
//	GET    /metrics/json    counter summary
//
// Request bodies are decoded with sonic. Validation failures answer 400 with
// {error, kind, field, reason}; unexpected failures answer 500 with a
// generic message and are logged.
package http
