package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetHistory handles GET /stats/history
func (h *Handlers) GetHistory(c *gin.Context) {
	source := h.sanitizer.Source(c.Query("source"))
	c.JSON(http.StatusOK, h.stats.Summary(source))
}

// ClearHistory handles DELETE /stats/history
func (h *Handlers) ClearHistory(c *gin.Context) {
	if !h.allowClear {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "history clearing is disabled",
		})
		return
	}

	h.stats.ClearHistory()
	c.Status(http.StatusNoContent)
}
