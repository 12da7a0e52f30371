package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gameplan-scheduler/internal/persistence"
)

type fakeUserRepository struct {
	users        map[string]User
	emailInUse   string
	updateCalled bool
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]User)}
}

func (f *fakeUserRepository) GetUser(_ context.Context, id string) (User, error) {
	user, ok := f.users[id]
	if !ok {
		return User{}, fmt.Errorf("user %s: %w", id, persistence.ErrNotFound)
	}
	return user, nil
}

func (f *fakeUserRepository) UpdateUser(_ context.Context, user User) (User, error) {
	f.updateCalled = true
	if _, ok := f.users[user.ID]; !ok {
		return User{}, fmt.Errorf("user %s: %w", user.ID, persistence.ErrNotFound)
	}
	if f.emailInUse != "" && user.Email == f.emailInUse {
		return User{}, fmt.Errorf("email taken: %w", persistence.ErrDuplicate)
	}
	f.users[user.ID] = user
	return user, nil
}

func newUserServiceForTest(repo *fakeUserRepository) *UserService {
	return NewUserService(repo, func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	})
}

func TestGetProfile(t *testing.T) {
	repo := newFakeUserRepository()
	repo.users["user-1"] = User{ID: "user-1", Username: "alice", Email: "alice@example.com"}
	service := newUserServiceForTest(repo)

	user, err := service.GetProfile(context.Background(), Principal{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = service.GetProfile(context.Background(), Principal{UserID: "user-9"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = service.GetProfile(context.Background(), Principal{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	repo := newFakeUserRepository()
	repo.users["user-1"] = User{ID: "user-1", Username: "alice", Email: "alice@example.com"}
	service := newUserServiceForTest(repo)

	user, err := service.UpdateProfile(context.Background(), UpdateProfileParams{
		Principal: Principal{UserID: "user-1"},
		Username:  "  alice-renamed  ",
		Email:     "Alice.New@Example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice-renamed", user.Username)
	assert.Equal(t, "alice.new@example.com", user.Email)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), user.UpdatedAt)
}

func TestUpdateProfileValidation(t *testing.T) {
	repo := newFakeUserRepository()
	repo.users["user-1"] = User{ID: "user-1", Username: "alice", Email: "alice@example.com"}
	service := newUserServiceForTest(repo)

	cases := []struct {
		name     string
		username string
		email    string
		field    string
	}{
		{name: "missing username", username: "", email: "alice@example.com", field: "username"},
		{name: "missing email", username: "alice", email: "", field: "email"},
		{name: "malformed email", username: "alice", email: "not-an-address", field: "email"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.UpdateProfile(context.Background(), UpdateProfileParams{
				Principal: Principal{UserID: "user-1"},
				Username:  tc.username,
				Email:     tc.email,
			})

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.FieldErrors, tc.field)
		})
	}
	assert.False(t, repo.updateCalled)
}

func TestUpdateProfileDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepository()
	repo.users["user-1"] = User{ID: "user-1", Username: "alice", Email: "alice@example.com"}
	repo.emailInUse = "bob@example.com"
	service := newUserServiceForTest(repo)

	_, err := service.UpdateProfile(context.Background(), UpdateProfileParams{
		Principal: Principal{UserID: "user-1"},
		Username:  "alice",
		Email:     "bob@example.com",
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "email is already registered", vErr.FieldErrors["email"])
}
