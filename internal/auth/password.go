package auth

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// passwordSymbols is the fixed set of symbols accepted by the password policy.
const passwordSymbols = `!@#$%^&*()_+-=[]{};':"\|,.<>/?~`

var usernameRE = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

var (
	ErrBadUsername = errors.New("username must be 3-20 characters, letters, digits and underscore only")
	ErrBadPassword = errors.New("password must be at least 8 characters and contain a letter, a digit and a symbol")
)

// ValidateUsername checks the account name policy.
func ValidateUsername(username string) error {
	if !usernameRE.MatchString(username) {
		return ErrBadUsername
	}
	return nil
}

// ValidatePassword enforces the password policy: length >= 8 with at least
// one letter, one digit and one symbol from the allowed set.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrBadPassword
	}
	var hasLetter, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}
	if !hasLetter || !hasDigit || !hasSymbol {
		return ErrBadPassword
	}
	return nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares password against a stored bcrypt hash.
// bcrypt comparison is constant-time by construction.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
