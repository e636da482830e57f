// Package server provides the HTTP JSON API over one cover letter session.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonathan/cover-letter-agent/internal/coverletter"
	"github.com/jonathan/cover-letter-agent/internal/extraction"
	"github.com/jonathan/cover-letter-agent/internal/ingestion"
	"github.com/jonathan/cover-letter-agent/internal/logger"
	"github.com/jonathan/cover-letter-agent/internal/retrieval"
	"github.com/jonathan/cover-letter-agent/internal/server/middleware"
	"github.com/jonathan/cover-letter-agent/internal/server/ratelimit"
)

// DefaultMaxUploadBytes bounds multipart uploads when Options leaves it unset.
const DefaultMaxUploadBytes = 10 << 20

// Service is the session surface the API exposes.
type Service interface {
	ExtractJob(ctx context.Context, jobURL string) (*extraction.ExtractedContent, error)
	Generate(ctx context.Context, in coverletter.GenerateInput) (*coverletter.GenerateOutput, error)
	Improve(ctx context.Context, coverLetter, instructions string) (string, error)
	RenderPDF(ctx context.Context, text string) ([]byte, error)
	LoadContextFiles(ctx context.Context, files []ingestion.File) (int, error)
	Stats() retrieval.Stats
}

// Options configures a Server.
type Options struct {
	Service        Service
	Port           int
	MaxUploadBytes int64
	// Limiter defaults to a disabled limiter.
	Limiter *ratelimit.Limiter
	Logger  *zerolog.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	service        Service
	maxUploadBytes int64
	rateLimiter    *ratelimit.Limiter
	logger         zerolog.Logger
}

// New creates a new server instance
func New(opts Options) (*Server, error) {
	if opts.Service == nil {
		return nil, fmt.Errorf("service is required")
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	}
	base := zerolog.Nop()
	if opts.Logger != nil {
		base = *opts.Logger
	}

	s := &Server{
		service:        opts.Service,
		maxUploadBytes: opts.MaxUploadBytes,
		rateLimiter:    opts.Limiter,
		logger:         base.With().Str("component", "server").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /extract", s.handleExtract)
	mux.HandleFunc("POST /generate", s.handleGenerate)
	mux.HandleFunc("POST /improve", s.handleImprove)
	mux.HandleFunc("POST /render", s.handleRender)
	mux.HandleFunc("POST /context", s.handleContext)
	mux.HandleFunc("POST /documents/text", s.handleDocumentText)

	handler := s.withRateLimit(s.withCORS(mux))
	handler = middleware.Logging(s.logger)(handler)
	handler = middleware.RequestID(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // generation plus PDF rendering
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info().Msg("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+middleware.RequestIDHeader)
		w.Header().Set("Access-Control-Expose-Headers", middleware.RequestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientID is the remote IP. Forwarded headers are ignored.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	retryAfter := int(info.RetryAfter.Round(time.Second).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

	logger.Ctx(r.Context()).Warn().Int("limit", info.Limit).Int("retry_after", retryAfter).Msg("rate limit exceeded")

	s.jsonResponse(w, r, http.StatusTooManyRequests, map[string]any{
		"error":       "Rate limit exceeded. Please try again later.",
		"limit":       info.Limit,
		"remaining":   info.Remaining,
		"reset_at":    info.ResetTime.Format(time.RFC3339),
		"retry_after": retryAfter,
		"request_id":  middleware.GetRequestID(r.Context()),
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("failed to encode JSON response")
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// errorResponse maps err to a status and writes its user-facing message.
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	event := logger.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Ctx(r.Context()).Error()
	}
	event.Err(err).Int("status", status).Msg("request failed")

	s.jsonResponse(w, r, status, ErrorResponse{
		Error:     userMessage(err),
		RequestID: middleware.GetRequestID(r.Context()),
	})
}
