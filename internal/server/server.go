// Package server exposes loaded datasets over HTTP and MCP: a windowed,
// filterable, sortable read API that mirrors what the table view shows.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wethinkt/go-csvview/internal/metrics"
	"github.com/wethinkt/go-csvview/internal/tuilog"
)

// ErrInvalidConfiguration is returned when server options conflict.
var ErrInvalidConfiguration = errors.New("invalid server configuration")

// Config holds server configuration.
type Config struct {
	Port int
	Host string
	Auth Auth
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Port: 8790,
		Host: "localhost",
	}
}

// Validate reports configurations that cannot serve.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfiguration, c.Port)
	}
	if strings.ContainsAny(c.Auth.Token, " \t\r\n") {
		return fmt.Errorf("%w: token contains whitespace", ErrInvalidConfiguration)
	}
	return nil
}

// HTTPServer serves the REST API.
type HTTPServer struct {
	catalog *Catalog
	router  chi.Router
	config  Config
	auth    Auth
}

// NewHTTPServer creates a new HTTP server over catalog.
func NewHTTPServer(catalog *Catalog, config Config) *HTTPServer {
	s := &HTTPServer{
		catalog: catalog,
		config:  config,
		auth:    config.Auth,
	}
	s.router = s.setupRouter()
	return s
}

// setupRouter configures all routes.
func (s *HTTPServer) setupRouter() chi.Router {
	r := chi.NewRouter()

	logger := &middleware.DefaultLogFormatter{
		Logger:  log.New(tuilog.Log.Writer(), "", log.LstdFlags),
		NoColor: true,
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&redactingLogFormatter{base: logger}))
	r.Use(middleware.Recoverer)
	r.Use(countRequests)
	r.Use(corsMiddleware)

	r.Get("/v1/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.auth.Middleware)
		r.Get("/v1/datasets", s.handleListDatasets)
		r.Get("/v1/datasets/columns", s.handleGetColumns)
		r.Get("/v1/datasets/rows", s.handleGetRows)
	})

	return r
}

// Router returns the chi router.
func (s *HTTPServer) Router() chi.Router {
	return s.router
}

// Addr returns the server address.
func (s *HTTPServer) Addr() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// ListenAndServe serves until ctx is canceled.
func (s *HTTPServer) ListenAndServe(ctx context.Context) error {
	if err := s.config.Validate(); err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	// Update port if it was auto-assigned
	if s.config.Port == 0 {
		s.config.Port = ln.Addr().(*net.TCPAddr).Port
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	tuilog.Log.Info("HTTP server listening", "addr", s.Addr(), "auth", s.auth.Enabled(), "token_source", s.auth.Source)
	fmt.Printf("HTTP server running at http://%s\n", s.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// countRequests records every response by route pattern and status code.
func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}
