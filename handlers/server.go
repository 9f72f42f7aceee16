package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/nijaru/yt-summary/config"
	"github.com/nijaru/yt-summary/middleware"
	"github.com/nijaru/yt-summary/models"
	"github.com/nijaru/yt-summary/summary"
	"github.com/sirupsen/logrus"
)

// Service is the summary pipeline as seen by the HTTP layer.
type Service interface {
	Relay(ctx context.Context, input string) (*summary.RelayResult, error)
	Forward(ctx context.Context, body []byte) (*summary.RelayResult, error)
	Digest(ctx context.Context, input string) (*summary.Digest, error)
	GetSummary(ctx context.Context, input string) (*models.Summary, error)
	DeleteSummary(ctx context.Context, input string) (string, error)
}

type Server struct {
	service   Service
	config    *config.Config
	logger    *logrus.Logger
	server    *http.Server
	startTime time.Time
}

type ServerOption func(*Server)

// NewServer creates a new API server backed by the given service
func NewServer(cfg *config.Config, service Service, opts ...ServerOption) *Server {
	s := &Server{
		service:   service,
		config:    cfg,
		logger:    logrus.StandardLogger(),
		startTime: time.Now(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func (s *Server) Start() error {
	s.logger.WithField("port", s.config.ServerPort).Info("Starting server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// Handler returns the routed mux wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Relay accepts any path; non-POST methods are rejected by the handler.
	mux.HandleFunc("/", s.handleRelay)
	s.addV1Routes(mux)
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.middleware(mux)
}

func (s *Server) addV1Routes(mux *http.ServeMux) {
	const v1Prefix = "/api/v1"

	mux.HandleFunc(v1Prefix+"/relay", s.handleRelay)
	mux.HandleFunc("POST "+v1Prefix+"/proxy", s.handleProxy)
	mux.HandleFunc("POST "+v1Prefix+"/digest", s.handleDigest)
	mux.HandleFunc("GET "+v1Prefix+"/summaries/{id}", s.handleGetSummary)
	mux.HandleFunc("DELETE "+v1Prefix+"/summaries/{id}", s.handleDeleteSummary)
}

func (s *Server) middleware(handler http.Handler) http.Handler {
	var rateLimiter middleware.RateLimiter
	if s.config.RateLimit.Enabled {
		rateLimiter = middleware.NewRateLimiter(
			s.config.RateLimit.RequestsPerMinute,
			s.config.RateLimit.BurstSize,
		)
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logging(s.logger),
		middleware.CORS(s.config.CORS),
		middleware.Timeout(s.config.RequestTimeout),
	}

	if rateLimiter != nil {
		middlewares = append(middlewares, rateLimiter.Middleware)
	}

	return middleware.Chain(handler, middlewares...)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   s.config.Version,
		"uptime":    time.Since(s.startTime).String(),
	}

	if s.config.Debug {
		status["debug"] = true
		status["goroutines"] = runtime.NumGoroutine()
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		status["memory"] = map[string]interface{}{
			"allocated": m.Alloc,
			"total":     m.TotalAlloc,
			"system":    m.Sys,
			"gc_cycles": m.NumGC,
		}
	}

	respondJSON(w, r, http.StatusOK, status)
}
