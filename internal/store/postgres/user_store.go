package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/roosthq/roost/internal/models"
	"github.com/roosthq/roost/internal/store"
)

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new PostgreSQL-backed user store.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// safeColumns is the identity-safe field set. The password hash is selected
// only inside Authenticate and never leaves this package.
const safeColumns = `id, username, email, first_name, last_name, created_at, updated_at`

// FindByID retrieves a user by primary key.
func (s *UserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + safeColumns + ` FROM users WHERE id = $1`

	var u models.User
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &u, nil
}

// Authenticate verifies a credential (username or email) and password.
func (s *UserStore) Authenticate(ctx context.Context, credential, password string) (*models.User, error) {
	query := `
		SELECT ` + safeColumns + `, hashed_password
		FROM users
		WHERE lower(username) = lower($1) OR lower(email) = lower($1)
	`

	var u models.User
	var hash []byte
	err := s.pool.QueryRow(ctx, query, strings.TrimSpace(credential)).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.CreatedAt,
		&u.UpdatedAt,
		&hash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up credential: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return nil, store.ErrInvalidCredentials
	}

	return &u, nil
}

// Create registers a new account.
func (s *UserStore) Create(ctx context.Context, input store.NewUser) (*models.User, error) {
	if verr := store.ValidateNewUser(input); verr != nil {
		return nil, verr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `
		INSERT INTO users (username, email, first_name, last_name, hashed_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id
	`

	now := time.Now().UTC()
	u := models.User{
		Username:  strings.TrimSpace(input.Username),
		Email:     strings.TrimSpace(input.Email),
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.pool.QueryRow(ctx, query,
		u.Username,
		u.Email,
		u.FirstName,
		u.LastName,
		hash,
		now,
	).Scan(&u.ID)
	if err != nil {
		if verr := validationFromPgError(err); verr != nil {
			return nil, verr
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Debug().Int64("user_id", u.ID).Str("username", u.Username).Msg("Created user")

	return &u, nil
}
