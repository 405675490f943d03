package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/roosthq/roost/internal/models"
	"github.com/roosthq/roost/internal/store"
)

// UserStore implements store.UserStore using in-memory storage.
// This implementation is for testing and development - data is lost on restart.
type UserStore struct {
	mu sync.RWMutex

	nextID          int64
	users           map[int64]*record
	usersByUsername map[string]*record // lowercase username -> record
	usersByEmail    map[string]*record // lowercase email -> record
}

// record pairs the identity-safe user with its password hash. The hash never
// leaves this package.
type record struct {
	user models.User
	hash []byte
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		nextID:          1,
		users:           make(map[int64]*record),
		usersByUsername: make(map[string]*record),
		usersByEmail:    make(map[string]*record),
	}
}

// FindByID retrieves a user by primary key.
func (s *UserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}

	user := rec.user
	return &user, nil
}

// Authenticate verifies a credential (username or email) and password.
func (s *UserStore) Authenticate(ctx context.Context, credential, password string) (*models.User, error) {
	s.mu.RLock()
	key := strings.ToLower(strings.TrimSpace(credential))
	rec, ok := s.usersByUsername[key]
	if !ok {
		rec, ok = s.usersByEmail[key]
	}
	s.mu.RUnlock()

	if !ok {
		// Burn a bcrypt comparison anyway so a missing user takes as long
		// as a wrong password.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, store.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(rec.hash, []byte(password)); err != nil {
		return nil, store.ErrInvalidCredentials
	}

	user := rec.user
	return &user, nil
}

// Create registers a new account.
func (s *UserStore) Create(ctx context.Context, input store.NewUser) (*models.User, error) {
	if verr := store.ValidateNewUser(input); verr != nil {
		return nil, verr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	usernameKey := strings.ToLower(strings.TrimSpace(input.Username))
	emailKey := strings.ToLower(strings.TrimSpace(input.Email))

	fields := map[string]string{}
	if _, exists := s.usersByUsername[usernameKey]; exists {
		fields["username"] = "Username is already taken"
	}
	if _, exists := s.usersByEmail[emailKey]; exists {
		fields["email"] = "Email is already in use"
	}
	if len(fields) > 0 {
		return nil, &store.ValidationError{Fields: fields}
	}

	now := time.Now().UTC()
	rec := &record{
		user: models.User{
			ID:        s.nextID,
			Username:  strings.TrimSpace(input.Username),
			Email:     strings.TrimSpace(input.Email),
			FirstName: strings.TrimSpace(input.FirstName),
			LastName:  strings.TrimSpace(input.LastName),
			CreatedAt: now,
			UpdatedAt: now,
		},
		hash: hash,
	}
	s.nextID++

	s.users[rec.user.ID] = rec
	s.usersByUsername[usernameKey] = rec
	s.usersByEmail[emailKey] = rec

	user := rec.user
	return &user, nil
}

// dummyHash is compared against when the credential does not resolve to a
// user, keeping Authenticate constant-time-ish across both failure paths.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("roost-no-such-user"), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return h
}()
