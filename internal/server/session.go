package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/roosthq/roost/internal/apperror"
	"github.com/roosthq/roost/internal/models"
	"github.com/roosthq/roost/internal/session"
	"github.com/roosthq/roost/internal/store"
	"github.com/roosthq/roost/internal/telemetry"
)

type loginRequest struct {
	Credential string `json:"credential"`
	Password   string `json:"password"`
}

type sessionResponse struct {
	SessionID string      `json:"session_id"`
	UserID    string      `json:"user_id"`
	User      userPayload `json:"user"`
}

type userPayload struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func sessionBody(token string, user *models.User) sessionResponse {
	return sessionResponse{
		SessionID: token,
		UserID:    strconv.FormatInt(user.ID, 10),
		User: userPayload{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		},
	}
}

// handleLogin verifies a credential/password pair and establishes a session.
// A failed login is always the same generic 401 so callers cannot probe which
// part of the pair was wrong.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperror.BadRequest("invalid JSON payload")
	}

	user, err := s.users.Authenticate(r.Context(), req.Credential, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			telemetry.GetMetrics().LoginFailuresTotal.Add(r.Context(), 1)
			return apperror.InvalidCredentials()
		}
		return fmt.Errorf("authenticate: %w", err)
	}

	token, err := s.codec.Issue(user)
	if err != nil {
		return fmt.Errorf("issue session token: %w", err)
	}
	s.cookies.SetSession(w, token, s.codec.TTL())

	log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("User logged in")
	telemetry.GetMetrics().LoginsTotal.Add(r.Context(), 1)

	writeJSON(w, http.StatusOK, sessionBody(token, user))
	return nil
}

// handleLogout clears the session cookie. Logging out without an active
// session is a client error, deliberately distinct from a failed login.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) error {
	if _, err := r.Cookie(session.SessionCookie); err != nil {
		return apperror.BadRequest("No active session to log out from")
	}

	s.cookies.ClearSession(w)
	telemetry.GetMetrics().LogoutsTotal.Add(r.Context(), 1)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
	return nil
}

// handleRestore echoes the current session token and user back to the caller.
// Runs behind RequireAuth, so the user is always present here.
func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) error {
	user, _ := session.UserFromContext(r.Context())

	var token string
	if cookie, err := r.Cookie(session.SessionCookie); err == nil {
		token = cookie.Value
	}

	telemetry.GetMetrics().SessionRestores.Add(r.Context(), 1)
	writeJSON(w, http.StatusOK, sessionBody(token, user))
	return nil
}

// handleCSRFRestore returns the CSRF token minted for this request so clients
// can rehydrate it after a page reload. The matching cookie was already set
// by the guard.
func (s *Server) handleCSRFRestore(w http.ResponseWriter, r *http.Request) error {
	writeJSON(w, http.StatusOK, map[string]string{
		"XSRF-Token": session.CSRFTokenFromContext(r.Context()),
	})
	return nil
}
