package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/matstat/internal/api/middleware"
	"github.com/GriffinCanCode/matstat/internal/domain/matrix"
	"github.com/GriffinCanCode/matstat/internal/infrastructure/logging"
	"github.com/GriffinCanCode/matstat/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/matstat/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/matstat/internal/service"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "matstat"

// AvailableEndpoints is listed in 404 responses.
var AvailableEndpoints = []string{
	"GET /health",
	"POST /stats",
	"GET /stats/history",
	"DELETE /stats/history",
	"GET /metrics",
	"GET /metrics/json",
}

// StatsService is what the handlers need from the stats service.
type StatsService interface {
	Analyze(ctx context.Context, req service.SingleRequest) (*service.SingleResult, error)
	AnalyzePair(ctx context.Context, req service.PairRequest) (*service.PairResult, error)
	Summary(source string) service.HistorySummary
	ClearHistory()
}

// Handlers contains all HTTP handlers
type Handlers struct {
	stats      StatsService
	metrics    *monitoring.Metrics
	sanitizer  *Sanitizer
	logger     *logging.Logger
	allowClear bool
}

// Option configures the handlers.
type Option func(*Handlers)

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(h *Handlers) { h.logger = logger }
}

// WithMetrics enables the JSON metrics summary.
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(h *Handlers) { h.metrics = metrics }
}

// WithHistoryClear enables DELETE /stats/history.
func WithHistoryClear(allow bool) Option {
	return func(h *Handlers) { h.allowClear = allow }
}

// NewHandlers creates a new handler set
func NewHandlers(stats StatsService, opts ...Option) *Handlers {
	h := &Handlers{
		stats:     stats,
		sanitizer: NewSanitizer(),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health handles the liveness check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": ServiceName,
	})
}

// NotFound answers unknown routes
func (h *Handlers) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":              "Endpoint not found",
		"availableEndpoints": AvailableEndpoints,
	})
}

// rejected counts a validation failure caught while decoding and answers 400.
func (h *Handlers) rejected(c *gin.Context, mode string, err error) {
	var verr *matrix.ValidationError
	if h.metrics != nil && errors.As(err, &verr) {
		h.metrics.RecordValidationFailure(mode, string(verr.Reason))
	}
	h.writeError(c, err, "")
}

// writeError maps err onto a status code and a JSON body. Validation failures
// are reported in full; anything else is logged and answered generically.
func (h *Handlers) writeError(c *gin.Context, err error, generic string) {
	var verr *matrix.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  verr.Error(),
			"kind":   verr.Kind(),
			"field":  verr.Field,
			"reason": verr.Reason,
		})
	case middleware.IsBodyTooLarge(err):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": "request entity too large",
		})
	default:
		_ = c.Error(err)
		h.logger.Error(generic,
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("trace_id", string(tracing.GetTraceID(c.Request.Context()))),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": generic,
		})
	}
}
