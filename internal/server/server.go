// Package server wires the session endpoints, the request pipeline stages,
// and the error rendering into a single http.Handler. Composition is explicit
// and static: everything the server depends on is passed to New at startup.
package server

import (
	"net/http"

	"github.com/roosthq/roost/internal/apperror"
	"github.com/roosthq/roost/internal/session"
	"github.com/roosthq/roost/internal/store"
	"github.com/roosthq/roost/internal/telemetry"
)

// Config carries the collaborators and settings the server needs.
type Config struct {
	Users      store.UserStore
	Codec      *session.Codec
	Cookies    session.CookiePolicy
	Production bool
}

// Server handles the session HTTP surface.
type Server struct {
	users      store.UserStore
	codec      *session.Codec
	cookies    session.CookiePolicy
	csrf       *session.CSRFGuard
	restorer   *session.Restorer
	production bool
}

// New creates a server from its collaborators.
func New(cfg Config) *Server {
	return &Server{
		users:      cfg.Users,
		codec:      cfg.Codec,
		cookies:    cfg.Cookies,
		csrf:       session.NewCSRFGuard(cfg.Cookies),
		restorer:   session.NewRestorer(cfg.Codec, cfg.Cookies, cfg.Users),
		production: cfg.Production,
	}
}

// Handler returns the composed handler. Stage order per request: CSRF guard,
// session restore, route dispatch, with every surfaced error rendered by the
// terminal stage.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint for load balancer
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/api/csrf/restore", s.handle(s.dispatchCSRF))
	mux.Handle("/api/session", s.handle(s.dispatchSession))
	mux.Handle("/api/users", s.handle(s.dispatchUsers))

	// Everything else falls through to the 404 synthesizer so unmatched
	// routes render the same uniform error shape.
	mux.Handle("/", s.notFoundHandler())

	csrfStage := s.csrf.Middleware(func(w http.ResponseWriter, r *http.Request, err error) {
		telemetry.GetMetrics().CSRFRejections.Add(r.Context(), 1)
		s.renderError(w, r, s.classify(err))
	})
	restoreStage := s.restorer.Middleware()

	return csrfStage(restoreStage(mux))
}

// Method dispatch happens inside the pipeline so unsupported methods render
// through the terminal error stage instead of the mux's plain-text responses.
// A method with no handler is an unmatched route, same as an unknown path.

func (s *Server) dispatchSession(w http.ResponseWriter, r *http.Request) error {
	switch r.Method {
	case http.MethodPost:
		return s.handleLogin(w, r)
	case http.MethodDelete:
		return s.handleLogout(w, r)
	case http.MethodGet:
		return session.RequireAuth(s.handleRestore)(w, r)
	default:
		return apperror.NotFound()
	}
}

func (s *Server) dispatchUsers(w http.ResponseWriter, r *http.Request) error {
	if r.Method != http.MethodPost {
		return apperror.NotFound()
	}
	return s.handleSignup(w, r)
}

func (s *Server) dispatchCSRF(w http.ResponseWriter, r *http.Request) error {
	if r.Method != http.MethodGet {
		return apperror.NotFound()
	}
	return s.handleCSRFRestore(w, r)
}
