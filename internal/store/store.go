package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/roosthq/roost/internal/models"
)

// Sentinel errors for common error conditions
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// NewUser is the input for creating an account.
type NewUser struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// ValidationError carries field-level validation failures from the store
// layer. The error pipeline flattens Fields into the rendered response.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("validation failed on fields %v", keys)
}

// UserStore provides identity lookup and credential verification.
// Implementations must only return the identity-safe field set; password
// hashes stay inside the store.
type UserStore interface {
	// FindByID retrieves a user by primary key.
	// Returns ErrUserNotFound if no user exists with that ID.
	FindByID(ctx context.Context, id int64) (*models.User, error)

	// Authenticate verifies a credential (username or email) and password.
	// Returns ErrInvalidCredentials on any mismatch, without distinguishing
	// an unknown credential from a wrong password.
	Authenticate(ctx context.Context, credential, password string) (*models.User, error)

	// Create registers a new account. Returns *ValidationError when the
	// input is invalid or the username/email is already taken.
	Create(ctx context.Context, input NewUser) (*models.User, error)
}
