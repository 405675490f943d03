// Package session implements the signed session token, the cookie policy,
// CSRF protection, and the request middleware that restores the current user.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/roosthq/roost/internal/models"
)

// ErrInvalidToken is returned for every verification failure: bad signature,
// malformed payload, or expiry. Callers must not be able to tell which check
// failed.
var ErrInvalidToken = errors.New("invalid session token")

// Claims is the identity payload embedded in a signed session token.
type Claims struct {
	UserID   int64  `json:"uid"`
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session tokens. It is stateless and safe for
// concurrent use.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec creates a token codec. The secret must be at least 32 bytes.
func NewCodec(secret []byte, ttl time.Duration) (*Codec, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 bytes")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session TTL must be greater than 0")
	}
	return &Codec{secret: secret, ttl: ttl}, nil
}

// TTL returns the configured token lifetime, truncated to whole seconds.
func (c *Codec) TTL() time.Duration {
	return c.ttl.Truncate(time.Second)
}

// Issue creates a signed token carrying the user's identity claim.
func (c *Codec) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.TTL())),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify parses and validates a token, returning its claims. Any failure
// returns ErrInvalidToken.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("invalid signing method")
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
