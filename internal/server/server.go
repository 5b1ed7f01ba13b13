package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gubarz/virgil/internal/parser"
)

// Options configures the HTTP API
type Options struct {
	MaxBodyBytes    int64
	GitState        parser.GitState // used when compiled frontmatter has no repository
	WorkspaceRemote string          // origin compared against by /api/validate
}

// Server is the HTTP API for compiling and inspecting walkthroughs.
type Server struct {
	router chi.Router
	log    *slog.Logger
	opts   Options
}

// NewServer creates and configures the HTTP server.
func NewServer(log *slog.Logger, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	s := &Server{log: log, opts: opts}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(BodyLimit(s.opts.MaxBodyBytes))

		r.Post("/compile", s.handleCompile)
		r.Post("/validate", s.handleValidate)
		r.Post("/navigation", s.handleNavigation)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
