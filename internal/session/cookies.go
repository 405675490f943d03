package session

import (
	"net/http"
	"time"
)

const (
	// SessionCookie holds the signed session token. HTTP-only.
	SessionCookie = "token"

	// CSRFCookie holds the CSRF token. Client-readable so the frontend can
	// echo it back in a request header.
	CSRFCookie = "XSRF-TOKEN"

	// csrfSecretCookie holds the per-client CSRF secret. HTTP-only.
	csrfSecretCookie = "_csrf"
)

// CookiePolicy applies environment-dependent security attributes when writing
// cookies. Secure is set in production; SameSite is Lax in production and
// Strict otherwise, matching cross-site cookie handling behind a proxy.
type CookiePolicy struct {
	Secure bool
}

func (p CookiePolicy) sameSite() http.SameSite {
	if p.Secure {
		return http.SameSiteLaxMode
	}
	return http.SameSiteStrictMode
}

// SetSession writes the session cookie. MaxAge is the token TTL in whole
// seconds.
func (p CookiePolicy) SetSession(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.sameSite(),
		MaxAge:   int(ttl.Seconds()),
	})
}

// ClearSession removes the session cookie. Idempotent.
func (p CookiePolicy) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.sameSite(),
		MaxAge:   -1,
	})
}

// SetCSRF writes the client-readable CSRF token cookie. Never HTTP-only: the
// frontend must read it to round-trip the token in a request header.
func (p CookiePolicy) SetCSRF(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookie,
		Value:    token,
		Path:     "/",
		Secure:   p.Secure,
		SameSite: p.sameSite(),
	})
}

func (p CookiePolicy) setCSRFSecret(w http.ResponseWriter, secret string) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrfSecretCookie,
		Value:    secret,
		Path:     "/",
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.sameSite(),
	})
}
