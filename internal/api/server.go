// Package api exposes the chat pipeline over a JSON HTTP API.
//
// Routes:
//
//	POST   /api/v1/chat                    run one chat turn
//	GET    /api/v1/sessions/{id}/history   read conversation history
//	DELETE /api/v1/sessions/{id}           clear a conversation
//	GET    /health                         liveness probe
//	GET    /ready                          readiness probe (checks the pool)
//
// Health probes bypass the middleware stack so orchestrator checks are
// never rate limited.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pravnik0/pravnik/internal/rag"
)

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger      *slog.Logger
	Pipeline    *rag.Pipeline // Required
	Pool        *pgxpool.Pool // Optional: nil skips the database readiness check
	CORSOrigins []string      // Allowed origins for CORS
	TrustProxy  bool          // Trust X-Real-IP/X-Forwarded-For (behind reverse proxy)
	RatePerSec  float64       // Rate limiter refill per IP (0 = default 10)
	RateBurst   int           // Rate limiter burst per IP (0 = default 30)
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a server with all routes and middleware configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Pipeline == nil {
		return nil, errors.New("pipeline is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ch := &chatHandler{pipeline: cfg.Pipeline, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/chat", ch.send)
	mux.HandleFunc("GET /api/v1/sessions/{id}/history", ch.history)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", ch.clear)

	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 10
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 30
	}
	rl := newRateLimiter(perSec, burst)

	// Middleware stack, outermost first:
	//   Recovery → RequestID → Logging → CORS → RateLimit → Routes
	// RequestID precedes Logging so request_id is available in log
	// attributes. CORS precedes RateLimit so preflight OPTIONS always
	// gets its headers.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("GET /ready", readiness(cfg.Pool))
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
