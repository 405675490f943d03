package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestCookiePolicy_setSessionProduction(t *testing.T) {
	rec := httptest.NewRecorder()
	CookiePolicy{Secure: true}.SetSession(rec, "tok", time.Hour)

	c := findCookie(t, rec, SessionCookie)
	require.Equal(t, "tok", c.Value)
	require.True(t, c.HttpOnly)
	require.True(t, c.Secure)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)
	require.Equal(t, 3600, c.MaxAge)
}

func TestCookiePolicy_setSessionDevelopment(t *testing.T) {
	rec := httptest.NewRecorder()
	CookiePolicy{}.SetSession(rec, "tok", time.Hour)

	c := findCookie(t, rec, SessionCookie)
	require.True(t, c.HttpOnly)
	require.False(t, c.Secure)
	require.Equal(t, http.SameSiteStrictMode, c.SameSite)
}

func TestCookiePolicy_clearSession(t *testing.T) {
	rec := httptest.NewRecorder()
	policy := CookiePolicy{}
	policy.ClearSession(rec)
	policy.ClearSession(rec)

	for _, c := range rec.Result().Cookies() {
		require.Equal(t, SessionCookie, c.Name)
		require.Empty(t, c.Value)
		require.Less(t, c.MaxAge, 0)
	}
}

func TestCookiePolicy_csrfCookieIsClientReadable(t *testing.T) {
	rec := httptest.NewRecorder()
	CookiePolicy{Secure: true}.SetCSRF(rec, "csrf-token")

	c := findCookie(t, rec, CSRFCookie)
	require.False(t, c.HttpOnly)
	require.True(t, c.Secure)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestCookiePolicy_csrfSecretIsHTTPOnly(t *testing.T) {
	rec := httptest.NewRecorder()
	CookiePolicy{}.setCSRFSecret(rec, "secret")

	c := findCookie(t, rec, csrfSecretCookie)
	require.True(t, c.HttpOnly)
}
