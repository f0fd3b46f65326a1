// Package auth implements token issuance and verification for user sessions.
// Tokens are HMAC-SHA256 JWTs whose subject is the account username. The
// signing secret never leaves the server; clients may only decode the payload
// structurally (see DecodeSubject), which is advisory and carries no trust.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failures, distinguishable with errors.Is.
var (
	ErrMalformed        = errors.New("token is malformed")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token is expired")
)

// TokenManager mints and verifies session tokens.
type TokenManager struct {
	secret   []byte
	issuer   string
	duration time.Duration
}

// NewTokenManager creates a TokenManager signing with secret. Tokens expire
// after duration.
func NewTokenManager(secret, issuer string, duration time.Duration) *TokenManager {
	return &TokenManager{
		secret:   []byte(secret),
		issuer:   issuer,
		duration: duration,
	}
}

// Issue mints a signed token with subject = username.
func (m *TokenManager) Issue(username string) (string, error) {
	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Issuer:    m.issuer,
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.duration)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the subject username.
// Failures map to ErrMalformed, ErrInvalidSignature or ErrExpired so callers
// can respond without inspecting jwt internals.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrInvalidSignature
		default:
			return "", ErrMalformed
		}
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrMalformed
	}
	return subject, nil
}

// DecodeSubject extracts the subject from a token without verifying the
// signature. This is the client-side session-restore primitive: clients never
// hold the signing secret, so the result is advisory only and the server
// remains the sole authority on validity.
func DecodeSubject(tokenString string) (string, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", ErrMalformed
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrMalformed
	}
	return subject, nil
}

// ParseBearerToken extracts the token from an Authorization header value.
func ParseBearerToken(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}
