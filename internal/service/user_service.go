package service

import (
	"errors"
	"fmt"
	"log/slog"

	"movie-discovery-backend/internal/auth"
	"movie-discovery-backend/internal/models"
	"movie-discovery-backend/internal/repository"
)

// Operation failures, distinguishable with errors.Is. Handlers map these to
// HTTP statuses; none are retried internally.
var (
	ErrValidation    = errors.New("validation failed")
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
	ErrUsernameTaken = errors.New("username already taken")
)

// UserStore is the persistence surface the user service needs.
type UserStore interface {
	CreateUser(username, passwordHash string) (*models.Account, error)
	GetUserByUsername(username string) (*models.Account, error)
	GetSet(username, setName string) ([]int64, error)
	AddToSet(username, setName string, movieID int64) ([]int64, bool, error)
	RemoveFromSet(username, setName string, movieID int64) ([]int64, error)
	UpsertReview(username string, movieID int64, rating int, content string) (*models.Review, error)
	ListReviews(username string) ([]models.Review, error)
}

// UserService handles accounts, sessions and per-user collections.
type UserService struct {
	store  UserStore
	tokens *auth.TokenManager
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, tokens *auth.TokenManager) *UserService {
	return &UserService{store: store, tokens: tokens}
}

// Register creates a new account after checking the username and password
// policies. The password is stored as a bcrypt hash only.
func (s *UserService) Register(username, password string) error {
	if err := auth.ValidateUsername(username); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	if err := auth.ValidatePassword(password); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := s.store.CreateUser(username, hash); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return ErrUsernameTaken
		}
		return err
	}

	slog.Info("user registered", "username", username)
	return nil
}

// Login verifies credentials and mints a session token. It is read-only
// against the account store.
func (s *UserService) Login(username, password string) (string, error) {
	account, err := s.store.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	if !auth.CheckPassword(account.PasswordHash, password) {
		return "", ErrWrongPassword
	}

	return s.tokens.Issue(account.Username)
}

// VerifyToken validates a session token and resolves its subject to the
// current account with a fresh lookup. A cached account copy is never
// trusted; the store is the source of truth on every call.
func (s *UserService) VerifyToken(tokenString string) (*models.Account, error) {
	username, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	account, err := s.store.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return account, nil
}

// GetSet returns the named movie-id set for username.
func (s *UserService) GetSet(username, setName string) ([]int64, error) {
	items, err := s.store.GetSet(username, setName)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if items == nil {
		items = []int64{}
	}
	return items, nil
}

// AddToSet idempotently inserts movieID into the named set. The second
// return value reports whether the id was already present.
func (s *UserService) AddToSet(username, setName string, movieID int64) ([]int64, bool, error) {
	if movieID <= 0 {
		return nil, false, fmt.Errorf("%w: movie id must be a positive integer", ErrValidation)
	}

	items, existed, err := s.store.AddToSet(username, setName, movieID)
	if err != nil {
		return nil, false, mapStoreErr(err)
	}
	return items, existed, nil
}

// RemoveFromSet idempotently removes movieID from the named set. Absence is
// not an error.
func (s *UserService) RemoveFromSet(username, setName string, movieID int64) ([]int64, error) {
	if movieID <= 0 {
		return nil, fmt.Errorf("%w: movie id must be a positive integer", ErrValidation)
	}

	items, err := s.store.RemoveFromSet(username, setName, movieID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if items == nil {
		items = []int64{}
	}
	return items, nil
}

// UpsertReview stores the review for (username, movieID), last write wins.
// The author is always the verified username, never client input.
func (s *UserService) UpsertReview(username string, movieID int64, rating int, content string) (*models.Review, error) {
	if movieID <= 0 {
		return nil, fmt.Errorf("%w: movie id must be a positive integer", ErrValidation)
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	if len(content) < 10 {
		return nil, fmt.Errorf("%w: review content must be at least 10 characters", ErrValidation)
	}

	review, err := s.store.UpsertReview(username, movieID, rating, content)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return review, nil
}

// ListReviews returns all reviews authored by username.
func (s *UserService) ListReviews(username string) ([]models.Review, error) {
	reviews, err := s.store.ListReviews(username)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrUnknownSet):
		return fmt.Errorf("%w: %s", ErrValidation, err.Error())
	default:
		return err
	}
}
