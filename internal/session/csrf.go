package session

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

// ErrBadCSRFToken is returned when a state-mutating request carries a missing,
// malformed, or mismatched CSRF token.
var ErrBadCSRFToken = errors.New("invalid csrf token")

type csrfTokenKey struct{}

// CSRFTokenFromContext returns the CSRF token minted for this request cycle.
func CSRFTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(csrfTokenKey{}).(string)
	return token
}

// CSRFGuard issues a per-request CSRF token bound to a per-client secret and
// rejects unsafe requests that do not echo a matching token. The secret lives
// in an HTTP-only cookie, so a token minted for one client cannot be replayed
// by another.
type CSRFGuard struct {
	cookies CookiePolicy
}

// NewCSRFGuard creates a CSRF guard using the given cookie policy.
func NewCSRFGuard(cookies CookiePolicy) *CSRFGuard {
	return &CSRFGuard{cookies: cookies}
}

// Middleware returns the CSRF stage of the request pipeline. Every request
// gets a fresh token cookie; unsafe methods must present a valid token first.
// Failures are passed to reject, which renders the response.
func (g *CSRFGuard) Middleware(reject func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret, created := g.clientSecret(r)

			if isUnsafeMethod(r.Method) {
				// A secret minted on this request cannot have produced any
				// token the client already holds.
				if created || !g.verify(secret, requestToken(r)) {
					reject(w, r, ErrBadCSRFToken)
					return
				}
			}

			if created {
				g.cookies.setCSRFSecret(w, secret)
			}

			token, err := g.mint(secret)
			if err != nil {
				reject(w, r, err)
				return
			}
			g.cookies.SetCSRF(w, token)

			ctx := context.WithValue(r.Context(), csrfTokenKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// clientSecret returns the per-client secret from the request, generating a
// new one when absent or malformed. The second return reports whether the
// secret was created on this request.
func (g *CSRFGuard) clientSecret(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(csrfSecretCookie)
	if err == nil && validSecret(cookie.Value) {
		return cookie.Value, false
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(buf), true
}

func validSecret(s string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	return err == nil && len(raw) == 32
}

// mint produces a token of the form "salt.sig" where sig is
// HMAC-SHA256(secret, salt). A new salt is drawn per request so tokens are
// unique even though the secret is stable per client.
func (g *CSRFGuard) mint(secret string) (string, error) {
	salt := make([]byte, 8)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	encodedSalt := base64.RawURLEncoding.EncodeToString(salt)

	return encodedSalt + "." + sign(secret, encodedSalt), nil
}

// verify checks that token is "salt.sig" with a signature produced from this
// client's secret.
func (g *CSRFGuard) verify(secret, token string) bool {
	salt, sig, ok := strings.Cut(token, ".")
	if !ok || salt == "" || sig == "" {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(sign(secret, salt)))
}

func sign(secret, salt string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(salt))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// requestToken extracts the echoed CSRF token from a request, preferring the
// headers the frontend sets and falling back to a form field.
func requestToken(r *http.Request) string {
	if v := r.Header.Get("X-XSRF-Token"); v != "" {
		return v
	}
	if v := r.Header.Get("X-CSRF-Token"); v != "" {
		return v
	}
	return r.PostFormValue("_csrf")
}

func isUnsafeMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
