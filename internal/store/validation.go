package store

import (
	"net/mail"
	"strings"
)

// ValidateNewUser checks the account creation input and returns a
// *ValidationError describing every failing field, or nil when the input is
// acceptable. Both store implementations run this before touching storage so
// the field-level messages are identical regardless of backend.
func ValidateNewUser(input NewUser) *ValidationError {
	fields := map[string]string{}

	username := strings.TrimSpace(input.Username)
	switch {
	case username == "":
		fields["username"] = "Username is required"
	case len(username) < 3 || len(username) > 30:
		fields["username"] = "Username must be between 3 and 30 characters"
	case isEmail(username):
		fields["username"] = "Username cannot be an email address"
	}

	email := strings.TrimSpace(input.Email)
	switch {
	case email == "":
		fields["email"] = "Email is required"
	case !isEmail(email):
		fields["email"] = "Email is invalid"
	}

	if len(input.Password) < 6 {
		fields["password"] = "Password must be at least 6 characters"
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
