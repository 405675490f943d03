package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roosthq/roost/internal/store"
)

func createTestUser(t *testing.T, s *UserStore) int64 {
	t.Helper()

	user, err := s.Create(context.Background(), store.NewUser{
		Username:  "ana",
		Email:     "a@x.com",
		Password:  "password123",
		FirstName: "Ana",
		LastName:  "Moura",
	})
	require.NoError(t, err)
	return user.ID
}

func TestUserStore_createAndFind(t *testing.T) {
	s := NewUserStore()
	id := createTestUser(t, s)
	require.Equal(t, int64(1), id)

	user, err := s.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "ana", user.Username)
	require.Equal(t, "a@x.com", user.Email)
	require.Equal(t, "Ana", user.FirstName)
	require.False(t, user.CreatedAt.IsZero())
}

func TestUserStore_findUnknownID(t *testing.T) {
	s := NewUserStore()

	_, err := s.FindByID(context.Background(), 42)
	require.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestUserStore_authenticate(t *testing.T) {
	s := NewUserStore()
	createTestUser(t, s)

	ctx := context.Background()

	byUsername, err := s.Authenticate(ctx, "ana", "password123")
	require.NoError(t, err)
	require.Equal(t, int64(1), byUsername.ID)

	byEmail, err := s.Authenticate(ctx, "A@X.COM", "password123")
	require.NoError(t, err)
	require.Equal(t, int64(1), byEmail.ID)
}

func TestUserStore_authenticateFailures(t *testing.T) {
	s := NewUserStore()
	createTestUser(t, s)

	ctx := context.Background()

	_, err := s.Authenticate(ctx, "ana", "wrong")
	require.ErrorIs(t, err, store.ErrInvalidCredentials)

	_, err = s.Authenticate(ctx, "nobody", "password123")
	require.ErrorIs(t, err, store.ErrInvalidCredentials)
}

func TestUserStore_duplicateChecks(t *testing.T) {
	s := NewUserStore()
	createTestUser(t, s)

	_, err := s.Create(context.Background(), store.NewUser{
		Username: "Ana",
		Email:    "other@x.com",
		Password: "password123",
	})
	var verr *store.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "username")

	_, err = s.Create(context.Background(), store.NewUser{
		Username: "different",
		Email:    "A@x.com",
		Password: "password123",
	})
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "email")
}

func TestUserStore_createValidatesInput(t *testing.T) {
	s := NewUserStore()

	_, err := s.Create(context.Background(), store.NewUser{
		Username: "",
		Email:    "bad",
		Password: "123",
	})
	var verr *store.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 3)
}
