package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/roosthq/roost/internal/apperror"
	"github.com/roosthq/roost/internal/models"
	"github.com/roosthq/roost/internal/store"
)

type currentUserKey struct{}

// UserFromContext extracts the current user from the request context.
// The second return is false for unauthenticated requests.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(currentUserKey{}).(*models.User)
	return user, ok
}

// Restorer is the session restoration stage of the request pipeline. It runs
// on every request before route dispatch and decides the authentication
// context; it never blocks unauthenticated traffic.
type Restorer struct {
	codec   *Codec
	cookies CookiePolicy
	users   store.UserStore
}

// NewRestorer creates the session restoration middleware.
func NewRestorer(codec *Codec, cookies CookiePolicy, users store.UserStore) *Restorer {
	return &Restorer{codec: codec, cookies: cookies, users: users}
}

// Middleware resolves the current user from the session cookie. A user is
// attached to the context only when the full chain holds: a well-formed,
// unexpired, correctly-signed token whose claim resolves to an existing user.
// Any failure clears the cookie and continues unauthenticated.
func (s *Restorer) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := s.codec.Verify(cookie.Value)
			if err != nil {
				log.Debug().Str("path", r.URL.Path).Msg("Session token invalid, clearing cookie")
				s.cookies.ClearSession(w)
				next.ServeHTTP(w, r)
				return
			}

			user, err := s.users.FindByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, store.ErrUserNotFound) {
					log.Debug().Int64("user_id", claims.UserID).Msg("Session user no longer exists, clearing cookie")
				} else {
					log.Warn().Err(err).Int64("user_id", claims.UserID).Msg("User lookup failed during session restore")
				}
				s.cookies.ClearSession(w)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), currentUserKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth gates a handler on a resolved current user. Unauthenticated
// requests fail with a 401 before the wrapped handler runs.
func RequireAuth(next func(http.ResponseWriter, *http.Request) error) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		if _, ok := UserFromContext(r.Context()); !ok {
			return apperror.AuthenticationRequired()
		}
		return next(w, r)
	}
}
