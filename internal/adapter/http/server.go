package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/cwa-proxy-service/internal/config"
	"github.com/couchcryptid/cwa-proxy-service/internal/domain"
	"github.com/couchcryptid/cwa-proxy-service/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	sloghttp "github.com/samber/slog-http"
)

// Route paths served to the front end.
const (
	RouteTyphoonData    = "/get-typhoon-data"
	RouteCWAWarnings    = "/get-cwa-warnings"
	RouteCWAWarningsRSS = "/get-cwa-warnings/rss"
)

// Proxy is the application service behind the proxy routes.
type Proxy interface {
	Cyclone(ctx context.Context) (domain.CycloneData, error)
	Warnings(ctx context.Context) ([]domain.WarningItem, error)
	sharedobs.ReadinessChecker
}

// Server exposes the proxy routes plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	proxy      Proxy
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the proxy routes, /healthz, /readyz, and /metrics.
// Every route allows cross-origin requests from any origin.
func NewServer(addr string, proxy Proxy, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		proxy:   proxy,
		metrics: metrics,
		logger:  logger,
	}

	mux.HandleFunc("GET "+RouteTyphoonData, s.handleTyphoonData)
	mux.HandleFunc("GET "+RouteCWAWarnings, s.handleWarnings)
	mux.HandleFunc("GET "+RouteCWAWarningsRSS, s.handleWarningsRSS)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(proxy))
	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = s.recoverer(handler)
	handler = cors.AllowAll().Handler(handler)
	handler = sloghttp.New(logger)(handler)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: config.HTTPWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
