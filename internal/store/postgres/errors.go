package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/roosthq/roost/internal/store"
)

// validationFromPgError maps PostgreSQL constraint violations onto the field
// level validation errors the rest of the pipeline understands. Returns nil
// when the error is not a recognized constraint violation.
func validationFromPgError(err error) *store.ValidationError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}

	if pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}

	switch pgErr.ConstraintName {
	case "users_username_key", "idx_users_username":
		return &store.ValidationError{Fields: map[string]string{
			"username": "Username is already taken",
		}}
	case "users_email_key", "idx_users_email":
		return &store.ValidationError{Fields: map[string]string{
			"email": "Email is already in use",
		}}
	}

	return nil
}
