// Package middleware provides authentication, logging, rate limiting and tracing middleware for the application.
package middleware

import (
	"context"
	"errors"

	"socialfeed/internal/auth"
	"socialfeed/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the auth middleware.
const (
	LocalUserID   = "userID"
	LocalUsername = "username"
)

// TokenVerifier verifies a raw bearer token.
type TokenVerifier interface {
	Verify(raw string) (*auth.Identity, error)
}

// AuthRequired rejects requests without a valid bearer token and stores the
// caller's identity in locals and the request context.
func AuthRequired(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := identify(c, verifier)
		if err != nil {
			if errors.Is(err, auth.ErrMissingToken) {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Access denied. No token provided"))
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token"))
		}

		attachIdentity(c, identity)
		return c.Next()
	}
}

// OptionalAuth attaches the caller's identity when a valid token is present and never rejects.
func OptionalAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if identity, err := identify(c, verifier); err == nil {
			attachIdentity(c, identity)
		}
		return c.Next()
	}
}

// UserIDFromLocals returns the authenticated user id, if any.
func UserIDFromLocals(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalUserID).(uint)
	return id, ok && id != 0
}

func identify(c *fiber.Ctx, verifier TokenVerifier) (*auth.Identity, error) {
	raw, err := auth.TokenFromHeader(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return nil, err
	}
	return verifier.Verify(raw)
}

func attachIdentity(c *fiber.Ctx, identity *auth.Identity) {
	c.Locals(LocalUserID, identity.UserID)
	c.Locals(LocalUsername, identity.Username)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, identity.UserID))
}
