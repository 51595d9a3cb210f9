// Package api exposes the broker's HTTP query surface (C6) over chi.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bgpkit/broker-go/internal/logging"
	"github.com/bgpkit/broker-go/internal/metrics"
	"github.com/bgpkit/broker-go/pkg/broker"
)

// Server wires HTTP handlers to an Engine.
type Server struct {
	router chi.Router
	engine *broker.Engine
}

// Config controls CORS and request-handling behavior.
type Config struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	return c
}

// NewServer constructs a Server with middleware and routes mounted.
func NewServer(engine *broker.Engine, cfg Config) *Server {
	cfg = cfg.withDefaults()
	s := &Server{engine: engine}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(recoverMiddleware)
	r.Use(timeoutMiddleware(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	metrics.Init()
	r.Get("/health", s.health)
	r.Get("/search", s.search)
	r.Post("/search", s.search)
	r.Get("/latest", s.latest)
	r.Get("/peers", s.peers)
	r.Handle("/metrics", metrics.Handler())

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	meta, found, err := s.engine.LatestMeta(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	payload := map[string]any{"status": "ok"}
	if found {
		payload["last_update"] = meta
	}

	status := http.StatusOK
	if maxDelayStr := r.URL.Query().Get("max_delay_secs"); maxDelayStr != "" {
		maxDelay, err := parseIntParam("max_delay_secs", maxDelayStr)
		if err != nil {
			writeAPIError(w, err)
			return
		}
		files, err := s.engine.LatestFiles(r.Context(), "")
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		for _, f := range files {
			if f.DelaySeconds > int64(maxDelay) {
				status = http.StatusServiceUnavailable
				payload["status"] = "unhealthy"
				break
			}
		}
	}
	writeJSON(w, status, payload)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	f, err := parseSearchFilter(r)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	result, err := s.engine.Search(r.Context(), f)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) latest(w http.ResponseWriter, r *http.Request) {
	collector := r.URL.Query().Get("collector")
	files, err := s.engine.LatestFiles(r.Context(), collector)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (s *Server) peers(w http.ResponseWriter, r *http.Request) {
	f, err := parsePeersFilter(r)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	peers, err := s.engine.Peers(r.Context(), f)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"peers": peers})
}

// writeAPIError maps the engine's typed error taxonomy onto HTTP status
// codes, falling back to 500 for anything unrecognized.
func writeAPIError(w http.ResponseWriter, err error) {
	var cfgErr *broker.ConfigurationError
	var upErr *broker.UpstreamError
	switch {
	case errors.As(err, &cfgErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &upErr):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		duration := time.Since(start)
		logging.L.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Duration("duration", duration),
		)
		metrics.ObserveHTTPRequest(r.Method, r.URL.Path, ww.status, duration)
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.L.Error("panic recovered", zap.Any("recover", rec))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("hijacker not supported")
}

type requestIDKey struct{}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.L.Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
