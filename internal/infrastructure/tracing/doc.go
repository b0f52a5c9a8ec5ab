/*
Package tracing provides lightweight request tracing for the stats server.

Each request gets a span. The trace ID is taken from the X-Trace-ID header
when the caller sends one, otherwise a new "req_" ULID is minted. Trace and
span IDs are echoed back in response headers and stored on the request
context, where the service and request logger pick them up.

Finished spans are buffered (1000) and logged by a background collector.
Close drains the buffer.

# Usage

	tracer := tracing.New("matstat", logger.Logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "operation")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
*/
package tracing
