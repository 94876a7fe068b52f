// Package service holds the business rules behind the HTTP handlers.
package service

import (
	"context"
	"strings"

	"socialfeed/internal/models"
	"socialfeed/internal/observability"
	"socialfeed/internal/repository"
	"socialfeed/internal/validation"
)

// PasswordHasher hashes and checks account passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, storedHash string) bool
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID uint, username string) (string, error)
}

type UserService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func NewUserService(userRepo repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer) *UserService {
	return &UserService{userRepo: userRepo, hasher: hasher, tokens: tokens}
}

// Register validates and stores a new account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (_ *models.User, err error) {
	defer func() { recordAuth("register", err) }()

	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if username == "" || email == "" || in.Password == "" {
		return nil, models.NewValidationError("Username, email, and password are required")
	}
	for _, check := range []error{
		validation.ValidateUsername(username),
		validation.ValidateEmail(email),
		validation.ValidatePassword(in.Password),
	} {
		if check != nil {
			return nil, models.NewValidationError(check.Error())
		}
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Username already taken")
	}
	existing, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Email already registered")
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: hashed,
	}
	// A concurrent registration can still win the race; the unique
	// indexes surface it as a conflict.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks credentials and returns a signed token with the user.
// Unknown emails and wrong passwords fail identically.
func (s *UserService) Login(ctx context.Context, email, password string) (_ string, _ *models.User, err error) {
	defer func() { recordAuth("login", err) }()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, models.NewValidationError("Email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil || !s.hasher.Verify(password, user.Password) {
		return "", nil, models.NewUnauthorizedError("Invalid credentials")
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", nil, models.NewInternalError(err)
	}
	return token, user, nil
}

func recordAuth(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = strings.ToLower(models.ErrorCode(err))
	}
	observability.AuthAttempts.WithLabelValues(operation, outcome).Inc()
}
