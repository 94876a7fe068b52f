package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"socialfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("persists hashed password", func(t *testing.T) {
		t.Parallel()
		var created *models.User
		repo := noopUserRepo()
		repo.createFn = func(_ context.Context, u *models.User) error {
			u.ID = 42
			created = u
			return nil
		}
		svc := NewUserService(repo, fakeHasher{}, fakeTokens{})

		user, err := svc.Register(ctx, RegisterInput{Username: " alice ", Email: "Alice@Example.com", Password: "password123"})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, uint(42), user.ID)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, "hashed:password123", created.Password)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo(), fakeHasher{}, fakeTokens{})
		for _, in := range []RegisterInput{
			{Username: "", Email: "a@b.co", Password: "password123"},
			{Username: "al", Email: "a@b.co", Password: "password123"},
			{Username: "alice!", Email: "a@b.co", Password: "password123"},
			{Username: "alice", Email: "not-an-email", Password: "password123"},
			{Username: "alice", Email: "a@b.co", Password: "short"},
			{Username: "alice", Email: "a@b.co", Password: strings.Repeat("x", 73)},
		} {
			_, err := svc.Register(ctx, in)
			assertValidationError(t, err)
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByUsernameFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 1}, nil
		}
		repo.createFn = func(_ context.Context, _ *models.User) error {
			t.Fatal("create should not be called")
			return nil
		}
		svc := NewUserService(repo, fakeHasher{}, fakeTokens{})

		_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"})
		assertCode(t, err, models.CodeConflict)
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 1}, nil
		}
		svc := NewUserService(repo, fakeHasher{}, fakeTokens{})

		_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"})
		assertCode(t, err, models.CodeConflict)
	})

	t.Run("hash failure is internal", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo(), fakeHasher{err: errors.New("boom")}, fakeTokens{})

		_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"})
		assertCode(t, err, models.CodeInternal)
	})

	t.Run("repo conflict propagates", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.createFn = func(_ context.Context, _ *models.User) error {
			return models.NewConflictError("User already exists")
		}
		svc := NewUserService(repo, fakeHasher{}, fakeTokens{})

		_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"})
		assertCode(t, err, models.CodeConflict)
	})
}

func TestUserService_Login(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	stored := &models.User{ID: 5, Username: "alice", Email: "alice@example.com", Password: "hashed:password123"}
	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		if email == stored.Email {
			return stored, nil
		}
		return nil, nil
	}
	svc := NewUserService(repo, fakeHasher{}, fakeTokens{})

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		token, user, err := svc.Login(ctx, " ALICE@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, "token-alice", token)
		assert.Equal(t, uint(5), user.ID)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		t.Parallel()
		_, _, errWrong := svc.Login(ctx, "alice@example.com", "nope-nope")
		_, _, errUnknown := svc.Login(ctx, "bob@example.com", "password123")
		assertCode(t, errWrong, models.CodeUnauthorized)
		assertCode(t, errUnknown, models.CodeUnauthorized)
		assert.Equal(t, errWrong.Error(), errUnknown.Error())
		assert.Equal(t, "Invalid credentials", errWrong.Error())
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()
		_, _, err := svc.Login(ctx, "", "password123")
		assertValidationError(t, err)
	})

	t.Run("token failure", func(t *testing.T) {
		t.Parallel()
		broken := NewUserService(repo, fakeHasher{}, fakeTokens{err: errors.New("no secret")})
		_, _, err := broken.Login(ctx, "alice@example.com", "password123")
		assertCode(t, err, models.CodeInternal)
	})
}
