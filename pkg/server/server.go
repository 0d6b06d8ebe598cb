// Package server serves the analysis workflow as a web page and a JSON API.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/prospector/pkg/usecase/intel"
	"github.com/m-mizutani/prospector/pkg/utils/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

const shutdownTimeout = 5 * time.Second

// Server handles HTTP requests for the analysis page and API
type Server struct {
	uc      *intel.UseCase
	page    *template.Template
	timeout time.Duration
}

// Option is a functional option for Server
type Option func(*Server)

// WithAnalysisTimeout bounds each analysis request
func WithAnalysisTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

// New creates a new HTTP server
func New(uc *intel.UseCase, opts ...Option) *Server {
	s := &Server{
		uc: uc,
		page: template.Must(template.New("index.html").Funcs(template.FuncMap{
			"inc": func(i int) int { return i + 1 },
		}).ParseFS(templateFS, "templates/index.html")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Page
	mux.HandleFunc("GET /{$}", s.index)
	mux.HandleFunc("POST /analyze", s.analyzeForm)
	mux.HandleFunc("POST /history/clear", s.clearForm)
	mux.HandleFunc("GET /entries/{id}/raw", s.rawEntry)

	// API
	mux.HandleFunc("GET /api/history", s.listHistory)
	mux.HandleFunc("POST /api/analyze", s.analyzeAPI)
	mux.HandleFunc("DELETE /api/history", s.clearAPI)
	mux.HandleFunc("GET /api/entries/{id}/report", s.entryReport)

	mux.HandleFunc("GET /health", s.health)

	return withLogging(mux)
}

// Run listens on addr and serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	logger := logging.From(ctx)

	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr, "provider", s.uc.Provider())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return goerr.Wrap(err, "HTTP server failed", goerr.V("addr", addr))
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return goerr.Wrap(err, "failed to shut down HTTP server")
	}
	logger.Info("HTTP server stopped")
	return nil
}

func (s *Server) analysisContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}
