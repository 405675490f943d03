package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestExtractClientIP_xForwardedFor(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{
			name:     "single IP",
			header:   "192.168.1.1",
			expected: "192.168.1.1",
		},
		{
			name:     "multiple IPs (take first)",
			header:   "203.0.113.1, 198.51.100.1",
			expected: "203.0.113.1",
		},
		{
			name:     "multiple IPs no spaces",
			header:   "203.0.113.1,198.51.100.1",
			expected: "203.0.113.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("X-Forwarded-For", tt.header)

			require.Equal(t, tt.expected, ExtractClientIP(r))
		})
	}
}

func TestExtractClientIP_xRealIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Real-IP", "192.168.1.100")

	require.Equal(t, "192.168.1.100", ExtractClientIP(r))
}

func TestExtractClientIP_remoteAddr(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.168.1.1:54321"

	require.Equal(t, "192.168.1.1", ExtractClientIP(r))
}

func TestRequestTagger(t *testing.T) {
	var gotIP, gotID string
	handler := RequestTagger()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIP = ClientIPFromContext(r.Context())
		gotID = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, "10.0.0.1", gotIP)
	require.NotEmpty(t, gotID)

	id, err := uuid.Parse(gotID)
	require.NoError(t, err)
	require.Equal(t, uuid.Version(7), id.Version())

	require.Equal(t, gotID, rec.Header().Get("X-Request-Id"))
}
