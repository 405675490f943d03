package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/roosthq/roost/internal/apperror"
	"github.com/roosthq/roost/internal/store"
	"github.com/roosthq/roost/internal/telemetry"
)

type signupRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// handleSignup registers a new account and logs it in. Validation failures
// from the store surface as field-level errors through the pipeline.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) error {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperror.BadRequest("invalid JSON payload")
	}

	user, err := s.users.Create(r.Context(), store.NewUser{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}

	token, err := s.codec.Issue(user)
	if err != nil {
		return fmt.Errorf("issue session token: %w", err)
	}
	s.cookies.SetSession(w, token, s.codec.TTL())

	log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("User signed up")
	telemetry.GetMetrics().SignupsTotal.Add(r.Context(), 1)

	writeJSON(w, http.StatusCreated, sessionBody(token, user))
	return nil
}
