package imageproxy

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"
)

const shutdownTimeout = 10 * time.Second

// Server runs the image proxy over HTTP.
type Server struct {
	config     Config
	handler    http.Handler
	httpServer *http.Server

	mu       sync.Mutex
	listener net.Listener
	ready    chan struct{}
}

// NewServer builds the proxy server with its middleware chain.
func NewServer(cfg Config) *Server {
	def := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.Path == "" {
		cfg.Path = def.Path
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, NewHandler(cfg, nil))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintln(w, "ok")
	})

	middlewares := []Middleware{Recovery}
	if cfg.EnableLogging {
		middlewares = append(middlewares, Logging)
	}
	middlewares = append(middlewares, CORS(cfg.AllowedOrigins))

	return &Server{
		config:  cfg,
		handler: Chain(mux, middlewares...),
		ready:   make(chan struct{}),
	}
}

// Handler returns the full handler chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the bound address once the server is listening, otherwise
// the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}

// Ready is closed once the server is listening.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	srv := s.httpServer
	s.mu.Unlock()
	close(s.ready)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[proxy] Serving %s on %s", s.config.Path, ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Printf("[proxy] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
