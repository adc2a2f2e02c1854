// Package server assembles the chi router and the HTTP listener.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	apperrors "github.com/bluedatahq/shelfd/internal/errors"
	"github.com/bluedatahq/shelfd/internal/server/handlers"
	"github.com/bluedatahq/shelfd/internal/server/middleware"
)

// Server owns the router and the net/http server.
type Server struct {
	host string
	port int

	listing        *handlers.Listing
	allowedOrigins []string
	version        handlers.VersionInfo

	readTimeout  time.Duration
	writeTimeout time.Duration
	idleTimeout  time.Duration

	router chi.Router
	http   *http.Server
}

// Option customizes a Server before the router is built.
type Option func(*Server)

// WithListing installs the listing handlers. Without this option the
// listing routes answer STORAGE_NOT_CONFIGURED.
func WithListing(l *handlers.Listing) Option {
	return func(s *Server) { s.listing = l }
}

// WithCORS sets the allowed origins. Default is ["*"].
func WithCORS(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// WithVersion sets the build identity for /version.
func WithVersion(info handlers.VersionInfo) Option {
	return func(s *Server) { s.version = info }
}

// WithTimeouts sets the listener timeouts.
func WithTimeouts(read, write, idle time.Duration) Option {
	return func(s *Server) {
		s.readTimeout = read
		s.writeTimeout = write
		s.idleTimeout = idle
	}
}

// New creates a Server bound to host:port.
func New(host string, port int, opts ...Option) *Server {
	s := &Server{
		host:           host,
		port:           port,
		allowedOrigins: []string{"*"},
		version:        handlers.VersionInfo{Version: "dev"},
		readTimeout:    30 * time.Second,
		writeTimeout:   30 * time.Second,
		idleTimeout:    120 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.listing == nil {
		s.listing = handlers.NewListing(nil, "", "")
	}

	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.HeaderRequestID},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		apperrors.WriteError(w, http.StatusNotFound,
			apperrors.CodeNotFound, "route not found",
			middleware.GetRequestID(req.Context()), nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		apperrors.WriteError(w, http.StatusMethodNotAllowed,
			apperrors.CodeMethodNotAllowed, "method not allowed",
			middleware.GetRequestID(req.Context()), nil)
	})

	r.Get("/", handlers.Index)
	r.Get("/health", handlers.Ok)
	r.Get("/health/live", handlers.LivenessHandler)
	r.Get("/health/ready", handlers.ReadinessHandler)
	r.Get("/health/startup", handlers.StartupHandler)
	r.Get("/version", handlers.Version(s.version))

	r.Get("/list_daily", s.listing.ListDaily)
	r.Get("/list_by_prefix", s.listing.ListByPrefix)
	r.Get("/list", s.listing.ListLegacy)

	return r
}

// Handler returns the assembled router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// Addr returns the host:port the server binds to.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.host, s.port)
}

// Start runs the listener until it fails or Shutdown is called.
// http.ErrServerClosed is not treated as an error.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:         s.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  s.idleTimeout,
	}

	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
