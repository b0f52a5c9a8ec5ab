// Package client is a Go client for the matstat HTTP API.
//
// Built on go-resty/resty:
//   - Retries with backoff on connection errors, 429 and 5xx
//   - Pooled transport from hashicorp/go-retryablehttp
//   - Optional client-side rate limiting
//   - Circuit breaker that ignores 4xx answers
//
// Every call carries an X-Request-ID and, when ctx has one, the trace
// headers understood by the server's tracing middleware.
//
// Example Usage:
//
//	c := client.New(client.DefaultConfig())
//	res, err := c.Submit(ctx, matrix.Matrix{{1, 2}, {3, 4}}, client.WithSource("cli"))
//	var apiErr *client.APIError
//	if errors.As(err, &apiErr) && apiErr.IsValidation() {
//		fmt.Println(apiErr.Field, apiErr.Reason)
//	}
package client
