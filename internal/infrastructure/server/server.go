package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/matstat/internal/api/http"
	"github.com/GriffinCanCode/matstat/internal/api/middleware"
	"github.com/GriffinCanCode/matstat/internal/domain/history"
	"github.com/GriffinCanCode/matstat/internal/infrastructure/config"
	"github.com/GriffinCanCode/matstat/internal/infrastructure/logging"
	"github.com/GriffinCanCode/matstat/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/matstat/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/matstat/internal/service"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	handler    http.Handler
	httpServer *http.Server
	ledger     *history.Ledger
	stats      *service.Stats
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
	tracer     *tracing.Tracer
}

// Option configures the server.
type Option func(*Server)

// WithLogger replaces the logger built from configuration.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics replaces the metrics collector.
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(s *Server) { s.metrics = metrics }
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{config: cfg}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logging.NewFromSettings(cfg.Logging.Level, cfg.Logging.Development)
	}
	logger := s.logger

	logger.Info("Initializing matstat server",
		zap.String("addr", cfg.Server.Addr()),
		zap.Int("history_capacity", cfg.History.Capacity),
		zap.Float64("tolerance", cfg.Stats.Tolerance),
	)

	if s.metrics == nil {
		s.metrics = monitoring.NewMetrics()
	}
	s.tracer = tracing.New(api.ServiceName, logger.Logger)

	s.ledger = history.NewLedger(cfg.History.Capacity)
	s.stats = service.NewStats(s.ledger,
		service.WithLogger(logger),
		service.WithMetrics(s.metrics),
		service.WithTolerance(cfg.Stats.Tolerance),
		service.WithRecentLimit(cfg.History.Recent),
	)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	s.router = s.routes()

	s.handler = s.router
	if cfg.Compression.Enabled {
		s.handler = gzhttp.GzipHandler(s.router)
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           s.handler,
		ReadTimeout:       cfg.Server.ReadTimeout.Duration,
		ReadHeaderTimeout: cfg.Server.ReadTimeout.Duration,
		WriteTimeout:      cfg.Server.WriteTimeout.Duration,
		IdleTimeout:       cfg.Server.IdleTimeout.Duration,
	}

	logger.Info("Server initialized successfully")
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	cfg := s.config
	router := gin.New()

	router.Use(middleware.Recovery(s.logger))
	router.Use(tracing.HTTPMiddleware(s.tracer))
	router.Use(middleware.RequestLogger(s.logger))
	router.Use(monitoring.Middleware(s.metrics))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(middleware.CORSForOrigins(cfg.CORS.AllowedOrigins)))
	router.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))
	if cfg.RateLimit.Enabled {
		s.logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
			zap.Bool("global", cfg.RateLimit.Global),
		)
		limit := middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}
		if cfg.RateLimit.Global {
			router.Use(middleware.GlobalRateLimit(limit))
		} else {
			router.Use(middleware.RateLimit(limit))
		}
	}

	handlers := api.NewHandlers(s.stats,
		api.WithLogger(s.logger),
		api.WithMetrics(s.metrics),
		api.WithHistoryClear(cfg.History.AllowClear),
	)

	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	router.GET("/metrics/json", handlers.GetMetricsSummary)

	stats := router.Group("/stats")
	if cfg.Auth.Required {
		s.logger.Info("Bearer token authentication enabled")
	}
	stats.Use(middleware.JWT(middleware.AuthConfig{
		Required: cfg.Auth.Required,
		Secret:   cfg.Auth.Secret,
	}))
	stats.POST("", handlers.ComputeStats)
	stats.GET("/history", handlers.GetHistory)
	stats.DELETE("/history", handlers.ClearHistory)

	router.NoRoute(handlers.NotFound)
	router.NoMethod(handlers.NotFound)

	return router
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Stats returns the stats service backing the routes.
func (s *Server) Stats() *service.Stats {
	return s.stats
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout.Duration)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Close releases background resources and flushes logs.
func (s *Server) Close() error {
	s.tracer.Close()
	// Sync on stdout/stderr returns EINVAL on some platforms
	_ = s.logger.Sync()
	return nil
}
