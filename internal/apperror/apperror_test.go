package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrom_passesThroughAppErrors(t *testing.T) {
	original := InvalidCredentials()

	got := From(original)
	require.Same(t, original, got)

	// Also through wrapping.
	wrapped := fmt.Errorf("login: %w", original)
	got = From(wrapped)
	require.Same(t, original, got)
}

func TestFrom_defaultsToServerError(t *testing.T) {
	got := From(errors.New("disk on fire"))

	require.Equal(t, KindServer, got.Kind)
	require.Equal(t, http.StatusInternalServerError, got.Status)
	require.Equal(t, "Server Error", got.Title)
	require.Equal(t, "disk on fire", got.Message)
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
		title  string
	}{
		{NotFound(), http.StatusNotFound, "Resource Not Found"},
		{AuthenticationRequired(), http.StatusUnauthorized, "Authentication required"},
		{InvalidCredentials(), http.StatusUnauthorized, "Invalid credentials"},
		{CSRF(), http.StatusForbidden, "Invalid CSRF token"},
		{Validation(map[string]string{"email": "bad"}), http.StatusBadRequest, "Validation Error"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.status, tt.err.Status, tt.title)
		require.Equal(t, tt.title, tt.err.Title)
		require.NotEmpty(t, tt.err.Error())
	}
}
