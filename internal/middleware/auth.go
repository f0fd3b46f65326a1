package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"movie-discovery-backend/internal/auth"
	"movie-discovery-backend/internal/models"
)

// AccountKey is the Locals key under which the verified account is stored.
const AccountKey = "account"

// TokenVerifier validates a bearer token and resolves it to the current
// account.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*models.Account, error)
}

// Auth enforces Bearer token authentication. Every request re-verifies the
// token signature and expiry and resolves the subject to a live account; a
// client-side decoded session is never trusted here.
func Auth(verifier TokenVerifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "missing Authorization header")
		}

		tokenString, err := auth.ParseBearerToken(authHeader)
		if err != nil {
			return unauthorized(c, "invalid Authorization header format, expected 'Bearer <token>'")
		}

		account, err := verifier.VerifyToken(tokenString)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpired):
				return unauthorized(c, "token expired")
			case errors.Is(err, auth.ErrMalformed), errors.Is(err, auth.ErrInvalidSignature):
				return unauthorized(c, "invalid token")
			default:
				// Includes a stale subject whose account no longer exists.
				// The unverified decode is for the log only.
				claimed, _ := auth.DecodeSubject(tokenString)
				slog.Warn("token verification failed", "claimed_subject", claimed, "error", err)
				return unauthorized(c, "authentication failed")
			}
		}

		c.Locals(AccountKey, account)
		return c.Next()
	}
}

// AccountFrom returns the verified account stored by Auth, or nil.
func AccountFrom(c fiber.Ctx) *models.Account {
	account, _ := c.Locals(AccountKey).(*models.Account)
	return account
}

func unauthorized(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"msg":     msg,
	})
}
