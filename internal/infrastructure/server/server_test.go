package server

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/matstat/internal/api/middleware"
	"github.com/GriffinCanCode/matstat/internal/infrastructure/config"
	"github.com/GriffinCanCode/matstat/internal/infrastructure/logging"
	"github.com/GriffinCanCode/matstat/internal/infrastructure/monitoring"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Logging.Development = true
	cfg.RateLimit.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	srv, err := NewServer(cfg,
		WithLogger(logging.NewNop()),
		WithMetrics(monitoring.NewMetricsWithRegistry(prometheus.NewRegistry())),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func request(srv *Server, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestNewServerRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.History.Capacity = 0

	_, err := NewServer(cfg, WithLogger(logging.NewNop()))
	assert.Error(t, err)
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t, nil)

	w := request(srv, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"matstat"}`, w.Body.String())
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))

	w = request(srv, http.MethodPost, "/stats", `{"matrix":[[1,2,3],[4,5,6],[7,8,9]],"source":"go-api"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var single map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &single))
	assert.Equal(t, 45.0, single["sum"])

	w = request(srv, http.MethodGet, "/stats/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalProcessed":1`)

	w = request(srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `matstat_computations_total{mode="single"} 1`)

	w = request(srv, http.MethodGet, "/unknown", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "availableEndpoints")
}

func TestClearHistoryToggle(t *testing.T) {
	locked := newTestServer(t, nil)
	assert.Equal(t, http.StatusForbidden, request(locked, http.MethodDelete, "/stats/history", "").Code)

	open := newTestServer(t, func(c *config.Config) { c.History.AllowClear = true })
	request(open, http.MethodPost, "/stats", `{"matrix":[[1]]}`)
	assert.Equal(t, http.StatusNoContent, request(open, http.MethodDelete, "/stats/history", "").Code)
	assert.Equal(t, 0, open.Stats().Summary("").TotalProcessed)
}

func TestHistoryCapacityFromConfig(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) {
		c.History.Capacity = 3
		c.History.Recent = 2
	})

	for i := 0; i < 5; i++ {
		w := request(srv, http.MethodPost, "/stats", fmt.Sprintf(`{"matrix":[[%d]]}`, i))
		require.Equal(t, http.StatusOK, w.Code)
	}

	summary := srv.Stats().Summary("")
	assert.Equal(t, 3, summary.TotalProcessed)
	assert.Len(t, summary.History, 2)
	assert.Equal(t, 4.0, summary.LastProcessed.Stats.Max)
}

func TestAuthProtectsStatsOnly(t *testing.T) {
	const secret = "test-secret"
	srv := newTestServer(t, func(c *config.Config) {
		c.Auth.Required = true
		c.Auth.Secret = secret
	})

	assert.Equal(t, http.StatusOK, request(srv, http.MethodGet, "/health", "").Code)

	w := request(srv, http.MethodPost, "/stats", `{"matrix":[[1]]}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), middleware.ErrMsgMissingBearer)

	token, err := middleware.SignToken(secret, "test-user", "admin", time.Hour)
	require.NoError(t, err)
	w = request(srv, http.MethodPost, "/stats", `{"matrix":[[1]]}`, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequiredWithoutSecret(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) { c.Auth.Required = true })

	w := request(srv, http.MethodPost, "/stats", `{"matrix":[[1]]}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestBodyLimit(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) { c.Server.BodyLimitBytes = 32 })

	w := request(srv, http.MethodPost, "/stats", `{"matrix":[[1,2,3,4,5,6,7,8,9,10,11,12]]}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRateLimitFromConfig(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) {
		c.RateLimit.Enabled = true
		c.RateLimit.RequestsPerSecond = 1
		c.RateLimit.Burst = 1
	})

	assert.Equal(t, http.StatusOK, request(srv, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, request(srv, http.MethodGet, "/health", "").Code)
}

func TestGlobalRateLimitFromConfig(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) {
		c.RateLimit.Enabled = true
		c.RateLimit.Global = true
		c.RateLimit.RequestsPerSecond = 1
		c.RateLimit.Burst = 1
	})

	assert.Equal(t, http.StatusOK, request(srv, http.MethodGet, "/health", "", "X-Forwarded-For", "10.0.0.1").Code)
	// a different client shares the same bucket
	assert.Equal(t, http.StatusTooManyRequests, request(srv, http.MethodGet, "/health", "", "X-Forwarded-For", "10.0.0.2").Code)
}

func TestGzipResponses(t *testing.T) {
	srv := newTestServer(t, nil)
	for i := 0; i < 10; i++ {
		request(srv, http.MethodPost, "/stats", `{"matrix":[[1,0,0],[0,2,0],[0,0,3]],"source":"gzip-test"}`)
	}

	w := request(srv, http.MethodGet, "/stats/history", "", "Accept-Encoding", "gzip")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"totalProcessed":10`)
}

func TestGzipDisabled(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) { c.Compression.Enabled = false })
	for i := 0; i < 10; i++ {
		request(srv, http.MethodPost, "/stats", `{"matrix":[[1,0,0],[0,2,0],[0,0,3]]}`)
	}

	w := request(srv, http.MethodGet, "/stats/history", "", "Accept-Encoding", "gzip")
	assert.Empty(t, w.Header().Get("Content-Encoding"))
}

func TestServeAndShutdown(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) { c.Server.ShutdownTimeout = config.Duration{Duration: time.Second} })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
