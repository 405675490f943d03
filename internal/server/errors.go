package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/roosthq/roost/internal/apperror"
	"github.com/roosthq/roost/internal/session"
	"github.com/roosthq/roost/internal/store"
)

// errorResponse is the uniform shape every failure renders as.
type errorResponse struct {
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
	Stack   *string           `json:"stack"`
}

// handlerFunc is a route handler that reports failure by returning an error.
// Returned errors flow through the classification stages and are rendered by
// the terminal stage; handlers never write error responses themselves.
type handlerFunc func(http.ResponseWriter, *http.Request) error

// handle wraps a handlerFunc so every surfaced error passes through the
// pipeline: classify, then render. The render stage always runs last and
// never re-raises.
func (s *Server) handle(h handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}
		s.renderError(w, r, s.classify(err))
	})
}

// classify enriches raw errors into an *apperror.Error before rendering.
// Validation failures from the store layer are flattened into field errors;
// CSRF failures get their dedicated kind; everything unrecognized defaults to
// a 500 "Server Error".
func (s *Server) classify(err error) *apperror.Error {
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		return apperror.Validation(verr.Fields)
	}

	if errors.Is(err, session.ErrBadCSRFToken) {
		return apperror.CSRF()
	}

	return apperror.From(err)
}

// renderError is the terminal pipeline stage. It fixes the response status and
// body shape in one place; stack traces are included only outside production.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, appErr *apperror.Error) {
	if appErr.Status >= http.StatusInternalServerError {
		log.Error().Str("path", r.URL.Path).Str("title", appErr.Title).Msg(appErr.Message)
	} else {
		log.Debug().Str("path", r.URL.Path).Int("status", appErr.Status).Msg(appErr.Title)
	}

	resp := errorResponse{
		Title:   appErr.Title,
		Message: appErr.Message,
		Errors:  appErr.FieldErrors,
	}
	if resp.Errors == nil {
		resp.Errors = map[string]string{}
	}
	if !s.production {
		stack := string(debug.Stack())
		resp.Stack = &stack
	}

	writeJSON(w, appErr.Status, resp)
}

// notFoundHandler synthesizes the 404 error for unmatched routes so they
// render through the same terminal stage as every other failure.
func (s *Server) notFoundHandler() http.Handler {
	return s.handle(func(w http.ResponseWriter, r *http.Request) error {
		return apperror.NotFound()
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to encode response body")
	}
}
