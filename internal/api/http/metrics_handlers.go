package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// MetricsSummary is the JSON view of the server's counters.
type MetricsSummary struct {
	Timestamp        time.Time `json:"timestamp"`
	TotalRequests    int64     `json:"totalRequests"`
	AverageLatencyMs float64   `json:"averageLatencyMs"`
	ErrorRate        float64   `json:"errorRate"`
	Computations     int64     `json:"computations"`
	Rejections       int64     `json:"rejections"`
	HistoryRetained  int       `json:"historyRetained"`
	UptimeSeconds    float64   `json:"uptimeSeconds"`
}

// GetMetricsSummary handles GET /metrics/json
func (h *Handlers) GetMetricsSummary(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "metrics are not enabled",
		})
		return
	}

	snap := h.metrics.Snapshot()
	summary := MetricsSummary{
		Timestamp:        time.Now().UTC(),
		TotalRequests:    snap.TotalRequests,
		AverageLatencyMs: snap.AvgRequestSeconds * 1000,
		Computations:     snap.TotalComputations,
		Rejections:       snap.TotalRejections,
		HistoryRetained:  h.stats.Summary("").TotalProcessed,
		UptimeSeconds:    snap.UptimeSeconds,
	}
	if snap.TotalRequests > 0 {
		summary.ErrorRate = float64(snap.TotalErrors) / float64(snap.TotalRequests)
	}

	c.JSON(http.StatusOK, summary)
}
