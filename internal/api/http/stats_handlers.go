package http

import (
	"bytes"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/matstat/internal/api/middleware"
	"github.com/GriffinCanCode/matstat/internal/domain/matrix"
	"github.com/GriffinCanCode/matstat/internal/service"
)

// Cells decode as json.Number so integers keep their exact value until
// matrix.Parse converts them.
var decoder = sonic.Config{
	UseNumber:      true,
	CopyString:     true,
	ValidateString: true,
}.Froze()

// StatsRequest is the body of POST /stats. Either Matrix, or both Q and R.
type StatsRequest struct {
	Matrix    any      `json:"matrix"`
	Q         any      `json:"q"`
	R         any      `json:"r"`
	Source    string   `json:"source"`
	Tolerance *float64 `json:"tolerance"`

	// matrixNull is set when the body carries "matrix": null.
	matrixNull bool
}

// ComputeStats handles POST /stats
func (h *Handlers) ComputeStats(c *gin.Context) {
	req, err := h.decodeStatsRequest(c)
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			h.writeError(c, err, "")
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid JSON format",
			"details": err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	source := h.sanitizer.Source(req.Source)

	switch {
	case req.Matrix != nil:
		m, err := matrix.Parse("matrix", req.Matrix)
		if err != nil {
			h.rejected(c, service.ModeSingle, err)
			return
		}
		result, err := h.stats.Analyze(ctx, service.SingleRequest{
			Matrix:    m,
			Source:    source,
			Tolerance: req.Tolerance,
		})
		if err != nil {
			h.writeError(c, err, "Failed to process matrix statistics")
			return
		}
		c.JSON(http.StatusOK, result)

	case req.Q != nil || req.R != nil:
		q, r, err := parsePair(req)
		if err != nil {
			h.rejected(c, service.ModePair, err)
			return
		}
		result, err := h.stats.AnalyzePair(ctx, service.PairRequest{
			Q:         q,
			R:         r,
			Source:    source,
			Tolerance: req.Tolerance,
		})
		if err != nil {
			h.writeError(c, err, "Internal server error while calculating statistics")
			return
		}
		c.JSON(http.StatusOK, result)

	case req.matrixNull:
		h.rejected(c, service.ModeSingle, matrix.EmptyInput("matrix", "matrix must not be null"))

	default:
		h.rejected(c, service.ModeSingle, matrix.EmptyInput("", "request must carry a matrix or a q/r pair"))
	}
}

func (h *Handlers) decodeStatsRequest(c *gin.Context) (*StatsRequest, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}

	var req StatsRequest
	if len(bytes.TrimSpace(body)) == 0 {
		return &req, nil
	}
	if err := decoder.Unmarshal(body, &req); err != nil {
		return nil, err
	}
	if req.Matrix == nil {
		node, err := sonic.Get(body, "matrix")
		req.matrixNull = err == nil && node.Exists()
	}
	return &req, nil
}

func parsePair(req *StatsRequest) (matrix.Matrix, matrix.Matrix, error) {
	if req.Q == nil {
		return nil, nil, matrix.EmptyInput("q", "q is required when r is supplied")
	}
	if req.R == nil {
		return nil, nil, matrix.EmptyInput("r", "r is required when q is supplied")
	}

	q, err := matrix.Parse("q", req.Q)
	if err != nil {
		return nil, nil, err
	}
	r, err := matrix.Parse("r", req.R)
	if err != nil {
		return nil, nil, err
	}
	return q, r, nil
}
