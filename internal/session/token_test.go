package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/roosthq/roost/internal/models"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testUser() *models.User {
	return &models.User{
		ID:       1,
		Username: "ana",
		Email:    "a@x.com",
	}
}

func TestCodec_roundTrip(t *testing.T) {
	codec, err := NewCodec(testSecret, time.Hour)
	require.NoError(t, err)

	token, err := codec.Issue(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	require.Equal(t, int64(1), claims.UserID)
	require.Equal(t, "ana", claims.Username)
	require.Equal(t, "a@x.com", claims.Email)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestCodec_expiredToken(t *testing.T) {
	codec, err := NewCodec(testSecret, time.Hour)
	require.NoError(t, err)

	// Sign an already-expired token with the same secret and method.
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:   1,
		Username: "ana",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	tokenString, err := expired.SignedString(testSecret)
	require.NoError(t, err)

	_, err = codec.Verify(tokenString)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_wrongSecret(t *testing.T) {
	codec, err := NewCodec(testSecret, time.Hour)
	require.NoError(t, err)

	other, err := NewCodec([]byte("ffffffffffffffffffffffffffffffff"), time.Hour)
	require.NoError(t, err)

	token, err := other.Issue(testUser())
	require.NoError(t, err)

	_, err = codec.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_tamperedToken(t *testing.T) {
	codec, err := NewCodec(testSecret, time.Hour)
	require.NoError(t, err)

	token, err := codec.Issue(testUser())
	require.NoError(t, err)

	// Flipping any single byte must fail verification, never crash. The last
	// byte of each segment is skipped: its low bits are base64 padding, so a
	// flip there may not change the decoded bytes at all.
	for i := 0; i < len(token); i++ {
		if token[i] == '.' {
			continue
		}
		if i == len(token)-1 || token[i+1] == '.' {
			continue
		}
		mutated := []byte(token)
		if mutated[i] == 'A' {
			mutated[i] = 'B'
		} else {
			mutated[i] = 'A'
		}

		_, err := codec.Verify(string(mutated))
		require.ErrorIs(t, err, ErrInvalidToken, "byte %d", i)
	}
}

func TestCodec_malformedToken(t *testing.T) {
	codec, err := NewCodec(testSecret, time.Hour)
	require.NoError(t, err)

	for _, token := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := codec.Verify(token)
		require.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestCodec_rejectsUnsignedAlg(t *testing.T) {
	codec, err := NewCodec(testSecret, time.Hour)
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = codec.Verify(tokenString)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewCodec_validation(t *testing.T) {
	_, err := NewCodec([]byte("short"), time.Hour)
	require.Error(t, err)

	_, err = NewCodec(testSecret, 0)
	require.Error(t, err)
}
