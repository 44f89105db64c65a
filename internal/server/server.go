// Package server exposes the layout pipeline and the tab state over HTTP.
//
// Routes:
//
//	GET    /healthz                   liveness and version
//	POST   /api/graph                 JSON document → nodes and edges
//	POST   /api/layout                worker request → NDJSON event stream
//	POST   /api/render                JSON document → SVG, DOT or positioned JSON
//	POST   /api/estimate              node → estimated height
//	GET    /ws                        worker protocol over a WebSocket
//	/api/tabs/...                     tab state, see tabs.go
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pdjsoneditor/jsongraph/pkg/buildinfo"
	"github.com/pdjsoneditor/jsongraph/pkg/pipeline"
	"github.com/pdjsoneditor/jsongraph/pkg/tabs"
	"github.com/pdjsoneditor/jsongraph/pkg/worker"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// Config holds server configuration.
type Config struct {
	Addr         string
	MaxBodyBytes int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// AllowedOrigins lists origins accepted for WebSocket upgrades and CORS
	// requests to /api. An entry matches the origin itself and any port on
	// it; "*" matches everything. Requests without an Origin header are
	// always accepted.
	AllowedOrigins []string
}

// Server serves the HTTP API.
type Server struct {
	cfg        Config
	runner     *pipeline.Runner
	worker     *worker.Worker
	tabs       *tabs.State
	logger     *log.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server. A nil runner gets an uncached one; nil state gets an
// in-memory tab state.
func New(cfg Config, runner *pipeline.Runner, state *tabs.State, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	if state == nil {
		state = tabs.NewState(tabs.NewMemoryStore(), tabs.WithLogger(logger))
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 16 << 20
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost", "https://localhost", "http://127.0.0.1"}
	}
	s := &Server{
		cfg:    cfg,
		runner: runner,
		worker: worker.New(runner, logger),
		tabs:   state,
		logger: logger,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
	})
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(s.corsOptions()))
		r.Post("/graph", s.handleGraph)
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
		r.Post("/estimate", s.handleEstimate)
		s.registerTabRoutes(r)
	})
	return r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errc <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// corsOptions lets browser editors on the allowed origins call the API.
func (s *Server) corsOptions() cors.Options {
	var origins []string
	for _, o := range s.cfg.AllowedOrigins {
		if o == "*" {
			origins = []string{"*"}
			break
		}
		o = strings.TrimSuffix(o, "/")
		origins = append(origins, o, o+":*")
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" || strings.HasPrefix(origin, allowed) {
			return true
		}
	}
	s.logger.Warn("rejected websocket origin", "origin", origin)
	return false
}
