// package server contains middleware & handlers for the development movie catalog API
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mvx/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, authentication, recovery, etc.
type Middleware func(http.Handler) http.Handler

// Route is one method and path served by a [Handler], with middleware applied only to it.
type Route struct {
	Method     string
	Path       string
	Handler    http.HandlerFunc
	Middleware []Middleware
}

// Handler defines the interface for groups of HTTP endpoints.
// Implementations handle specific areas of the API (auth, movies).
type Handler interface {
	Routes() []Route // Routes returns the routes this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers every route of a Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Server is the in-memory development catalog.
type Server struct {
	cfg    shared.ServerConfig
	router *MuxRouter
	tokens *TokenIssuer
	data   *Catalog
	logger *log.Logger
}

// New builds a [Server] with seeded movies and the demo user.
func New(cfg shared.ServerConfig, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	users, err := NewUsers(DemoEmail, DemoPassword)
	if err != nil {
		return nil, err
	}

	key := cfg.SigningKey
	if key == "" {
		key = shared.GenerateID()
		logger.Debug("generated ephemeral signing key")
	}
	tokens := NewTokenIssuer([]byte(key), cfg.TokenTTL)
	data := NewCatalog(SeedMovies(), SeedCredits())

	router := NewRouter()
	router.Use(RequestLogger(logger), Recoverer(logger))
	router.Handle(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	router.Handler(NewAuthHandler(users, tokens, logger))
	router.Handler(NewMoviesHandler(data, tokens, logger))

	return &Server{cfg: cfg, router: router, tokens: tokens, data: data, logger: logger}, nil
}

// Handler returns the root handler, for use with [httptest.NewServer].
func (s *Server) Handler() http.Handler {
	return s.router
}

// Tokens exposes the issuer so tests can mint tokens.
func (s *Server) Tokens() *TokenIssuer {
	return s.tokens
}

// ListenAndServe serves on the configured address until ctx is cancelled, then shuts down gracefully.
//
// ready, when non-nil, receives the bound address once the listener is open.
func (s *Server) ListenAndServe(ctx context.Context, ready chan<- string) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr(), err)
	}

	srv := &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	s.logger.Info("catalog server listening", "addr", ln.Addr().String(), "user", DemoEmail)
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down catalog server")
		return srv.Shutdown(shutdownCtx)
	}
}
