package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newManager(duration time.Duration) *TokenManager {
	return NewTokenManager(testSecret, "test-issuer", duration)
}

func TestIssueAndVerify(t *testing.T) {
	m := newManager(time.Hour)

	token, err := m.Issue("alice_01")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice_01", subject)
}

func TestVerifyExpired(t *testing.T) {
	m := newManager(-time.Minute)

	token, err := m.Issue("alice_01")
	require.NoError(t, err)

	// Signature is valid, expiry alone must reject it.
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	other := NewTokenManager("other-secret", "test-issuer", time.Hour)
	token, err := other.Issue("alice_01")
	require.NoError(t, err)

	_, err = newManager(time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyMalformed(t *testing.T) {
	m := newManager(time.Hour)

	for _, tokenString := range []string{"", "garbage", "a.b", "a.b.c"} {
		_, err := m.Verify(tokenString)
		assert.ErrorIs(t, err, ErrMalformed, "token %q", tokenString)
	}
}

func TestVerifyWrongIssuer(t *testing.T) {
	other := NewTokenManager(testSecret, "other-issuer", time.Hour)
	token, err := other.Issue("alice_01")
	require.NoError(t, err)

	_, err = newManager(time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestDecodeSubjectWithoutSecret(t *testing.T) {
	token, err := newManager(time.Hour).Issue("alice_01")
	require.NoError(t, err)

	// Structural decode only: no signing key involved.
	subject, err := DecodeSubject(token)
	require.NoError(t, err)
	assert.Equal(t, "alice_01", subject)
}

func TestDecodeSubjectMalformed(t *testing.T) {
	_, err := DecodeSubject("not-a-token")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseBearerToken(t *testing.T) {
	token, err := ParseBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer "} {
		_, err := ParseBearerToken(header)
		assert.Error(t, err, "header %q", header)
	}
}
