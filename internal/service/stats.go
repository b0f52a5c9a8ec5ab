package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/matstat/internal/domain/history"
	"github.com/GriffinCanCode/matstat/internal/domain/matrix"
	"github.com/GriffinCanCode/matstat/internal/infrastructure/logging"
	"github.com/GriffinCanCode/matstat/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/matstat/internal/shared/id"
)

// Computation modes, used as metric labels
const (
	ModeSingle = "single"
	ModePair   = "pair"
)

// Default source labels when the caller sends none
const (
	DefaultSingleSource = "unknown"
	DefaultPairSource   = "qr"
)

// TimeFormat renders processedAt timestamps. History entries use the same layout.
const TimeFormat = history.TimeFormat

// Recorder receives computation metrics.
type Recorder interface {
	RecordComputation(mode string, cells int, duration time.Duration)
	RecordValidationFailure(mode string, reason string)
	SetHistorySize(n int)
	RecordEvictions(n int)
}

type nopRecorder struct{}

func (nopRecorder) RecordComputation(string, int, time.Duration) {}
func (nopRecorder) RecordValidationFailure(string, string)       {}
func (nopRecorder) SetHistorySize(int)                           {}
func (nopRecorder) RecordEvictions(int)                          {}

// SingleRequest asks for the statistics of one matrix.
type SingleRequest struct {
	Matrix    matrix.Matrix
	Source    string
	Tolerance *float64
}

// PairRequest asks for the combined statistics of a Q/R pair.
type PairRequest struct {
	Q         matrix.Matrix
	R         matrix.Matrix
	Source    string
	Tolerance *float64
}

// SingleResult is the response record for one matrix.
type SingleResult struct {
	matrix.Stats
	Diagonal        []float64 `json:"diagonal"`
	MainDiagonalSum float64   `json:"mainDiagonalSum"`
	IsDiagonal      bool      `json:"isDiagonal"`
	IsSquare        bool      `json:"isSquare"`
	Source          string    `json:"source"`
	ProcessedAt     string    `json:"processedAt"`
}

// PairResult is the response record for a Q/R pair.
type PairResult struct {
	matrix.Stats
	IsDiagonalQ bool   `json:"isDiagonalQ"`
	IsDiagonalR bool   `json:"isDiagonalR"`
	Source      string `json:"source"`
	ProcessedAt string `json:"processedAt"`
}

// HistorySummary is the view served by the history endpoint.
type HistorySummary struct {
	TotalProcessed int             `json:"totalProcessed"`
	LastProcessed  *history.Entry  `json:"lastProcessed"`
	History        []history.Entry `json:"history"`
}

// Stats validates matrices, computes their statistics and records each
// successful computation in the ledger it was given.
type Stats struct {
	ledger    *history.Ledger
	single    *matrix.Calculator
	combined  *matrix.Calculator
	tolerance float64
	recent    int
	logger    *logging.Logger
	metrics   Recorder
	now       func() time.Time
}

// Option configures the stats service.
type Option func(*Stats)

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Stats) { s.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r Recorder) Option {
	return func(s *Stats) { s.metrics = r }
}

// WithTolerance sets the default off-diagonal tolerance.
func WithTolerance(tol float64) Option {
	return func(s *Stats) { s.tolerance = tol }
}

// WithRecentLimit sets how many entries the history summary carries.
// Non-positive values are ignored.
func WithRecentLimit(n int) Option {
	return func(s *Stats) {
		if n > 0 {
			s.recent = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Stats) { s.now = now }
}

// WithPolicies overrides the rounding policies of both modes.
func WithPolicies(single, combined matrix.RoundingPolicy) Option {
	return func(s *Stats) {
		s.single = matrix.NewCalculator(single)
		s.combined = matrix.NewCalculator(combined)
	}
}

// NewStats creates a stats service recording into ledger.
func NewStats(ledger *history.Ledger, opts ...Option) *Stats {
	s := &Stats{
		ledger:    ledger,
		single:    matrix.NewCalculator(matrix.SinglePolicy),
		combined:  matrix.NewCalculator(matrix.CombinedPolicy),
		tolerance: matrix.DefaultTolerance,
		recent:    10,
		logger:    logging.NewNop(),
		metrics:   nopRecorder{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze computes statistics and diagonal structure of one matrix.
func (s *Stats) Analyze(ctx context.Context, req SingleRequest) (*SingleResult, error) {
	start := time.Now()

	shape, err := matrix.Validate("matrix", req.Matrix)
	if err != nil {
		return nil, s.rejected(ctx, ModeSingle, err)
	}
	tol, err := s.resolveTolerance(req.Tolerance)
	if err != nil {
		return nil, s.rejected(ctx, ModeSingle, err)
	}

	stats, err := s.single.Compute(req.Matrix)
	if errors.Is(err, matrix.ErrOverflow) {
		return nil, s.rejected(ctx, ModeSingle, err)
	}
	if err != nil {
		return nil, fmt.Errorf("compute stats: %w", err)
	}
	diag := matrix.AnalyzeDiagonal(req.Matrix, tol)

	source := sourceOr(req.Source, DefaultSingleSource)
	processed := s.now().UTC()

	s.record(history.Entry{
		ID:               id.NewEntryID(),
		Timestamp:        processed,
		Source:           source,
		MatrixDimensions: shape.String(),
		Stats:            stats,
		Diagonal:         &diag,
	})

	s.metrics.RecordComputation(ModeSingle, shape.Cells(), time.Since(start))
	s.logger.Info("Matrix statistics processed",
		zap.String("dimensions", shape.String()),
		zap.String("source", source),
		zap.Float64("max", stats.Max),
		zap.Float64("min", stats.Min),
		zap.Float64("avg", stats.Avg),
		zap.Bool("is_diagonal", diag.IsDiagonal),
		zap.String("trace_id", string(tracing.GetTraceID(ctx))),
	)

	return &SingleResult{
		Stats:           stats,
		Diagonal:        diag.DiagonalElements,
		MainDiagonalSum: diag.DiagonalSum,
		IsDiagonal:      diag.IsDiagonal,
		IsSquare:        diag.IsSquare,
		Source:          source,
		ProcessedAt:     processed.Format(TimeFormat),
	}, nil
}

// AnalyzePair computes combined statistics of Q followed by R and reports
// whether each is diagonal.
func (s *Stats) AnalyzePair(ctx context.Context, req PairRequest) (*PairResult, error) {
	start := time.Now()

	qShape, err := matrix.Validate("q", req.Q)
	if err != nil {
		return nil, s.rejected(ctx, ModePair, err)
	}
	rShape, err := matrix.Validate("r", req.R)
	if err != nil {
		return nil, s.rejected(ctx, ModePair, err)
	}
	tol, err := s.resolveTolerance(req.Tolerance)
	if err != nil {
		return nil, s.rejected(ctx, ModePair, err)
	}

	stats, err := s.combined.ComputeCombined(req.Q, req.R)
	if errors.Is(err, matrix.ErrOverflow) {
		return nil, s.rejected(ctx, ModePair, err)
	}
	if err != nil {
		return nil, fmt.Errorf("compute combined stats: %w", err)
	}
	isDiagQ := matrix.IsDiagonal(req.Q, tol)
	isDiagR := matrix.IsDiagonal(req.R, tol)

	source := sourceOr(req.Source, DefaultPairSource)
	processed := s.now().UTC()
	dims := qShape.String() + "+" + rShape.String()

	s.record(history.Entry{
		ID:               id.NewEntryID(),
		Timestamp:        processed,
		Source:           source,
		MatrixDimensions: dims,
		Stats:            stats,
	})

	s.metrics.RecordComputation(ModePair, qShape.Cells()+rShape.Cells(), time.Since(start))
	s.logger.Info("Combined statistics processed",
		zap.String("q", qShape.String()),
		zap.String("r", rShape.String()),
		zap.String("source", source),
		zap.Float64("max", stats.Max),
		zap.Float64("min", stats.Min),
		zap.Float64("avg", stats.Avg),
		zap.Bool("is_diagonal_q", isDiagQ),
		zap.Bool("is_diagonal_r", isDiagR),
		zap.String("trace_id", string(tracing.GetTraceID(ctx))),
	)

	return &PairResult{
		Stats:       stats,
		IsDiagonalQ: isDiagQ,
		IsDiagonalR: isDiagR,
		Source:      source,
		ProcessedAt: processed.Format(TimeFormat),
	}, nil
}

// Summary returns the total count, the latest entry and the most recent
// entries. A non-empty source restricts all three to that source.
func (s *Stats) Summary(source string) HistorySummary {
	var entries []history.Entry
	if source == "" {
		entries = s.ledger.History()
	} else {
		entries = s.ledger.BySource(source)
	}

	summary := HistorySummary{
		TotalProcessed: len(entries),
		History:        entries[max(len(entries)-s.recent, 0):],
	}
	if len(entries) > 0 {
		last := entries[len(entries)-1]
		summary.LastProcessed = &last
	}
	return summary
}

// ClearHistory empties the ledger.
func (s *Stats) ClearHistory() {
	s.ledger.Clear()
	s.metrics.SetHistorySize(0)
	s.logger.Info("History cleared")
}

func (s *Stats) record(e history.Entry) {
	if evicted := s.ledger.Record(e); evicted > 0 {
		s.metrics.RecordEvictions(evicted)
	}
	s.metrics.SetHistorySize(s.ledger.Len())
}

func (s *Stats) resolveTolerance(tol *float64) (float64, error) {
	if tol == nil {
		return s.tolerance, nil
	}
	if err := matrix.ValidateTolerance(*tol); err != nil {
		return 0, err
	}
	return *tol, nil
}

func (s *Stats) rejected(ctx context.Context, mode string, err error) error {
	reason := "unknown"
	var verr *matrix.ValidationError
	if errors.As(err, &verr) {
		reason = string(verr.Reason)
	}
	s.metrics.RecordValidationFailure(mode, reason)
	s.logger.Debug("Matrix rejected",
		zap.String("mode", mode),
		zap.String("reason", reason),
		zap.Error(err),
		zap.String("trace_id", string(tracing.GetTraceID(ctx))),
	)
	return err
}

func sourceOr(source, fallback string) string {
	if source == "" {
		return fallback
	}
	return source
}
