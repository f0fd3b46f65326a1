package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"movie-discovery-backend/internal/models"
)

// Set names accepted by the collection operations. They map to table columns
// and are the only values ever interpolated into SQL.
const (
	SetFavorites = "favorites"
	SetMustWatch = "must_watch"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrUnknownSet    = errors.New("unknown collection name")
)

// UserRepository persists accounts, their movie-id sets and reviews.
// Every mutation is a single statement against one row, so operations are
// atomic without explicit transactions.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new account with empty collections.
func (r *UserRepository) CreateUser(username, passwordHash string) (*models.Account, error) {
	var acc models.Account
	err := r.db.QueryRow(`
		INSERT INTO users (username, password_hash) VALUES ($1, $2)
		RETURNING id, username, password_hash, favorites, must_watch, created_at
	`, username, passwordHash).Scan(
		&acc.ID, &acc.Username, &acc.PasswordHash,
		pq.Array(&acc.Favorites), pq.Array(&acc.MustWatch), &acc.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &acc, nil
}

// GetUserByUsername returns the account for username.
func (r *UserRepository) GetUserByUsername(username string) (*models.Account, error) {
	var acc models.Account
	err := r.db.QueryRow(`
		SELECT id, username, password_hash, favorites, must_watch, created_at
		FROM users WHERE username = $1
	`, username).Scan(
		&acc.ID, &acc.Username, &acc.PasswordHash,
		pq.Array(&acc.Favorites), pq.Array(&acc.MustWatch), &acc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &acc, nil
}

// GetSet returns the named movie-id set for username.
func (r *UserRepository) GetSet(username, setName string) ([]int64, error) {
	column, err := setColumn(setName)
	if err != nil {
		return nil, err
	}

	var items []int64
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1`, column)
	if err := r.db.QueryRow(query, username).Scan(pq.Array(&items)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return items, nil
}

// AddToSet inserts movieID into the named set if absent. It returns the
// updated set and whether the id was already present. The CASE keeps a
// repeated add from growing the array, and reading the prior array in the
// same statement makes the membership report atomic with the update.
func (r *UserRepository) AddToSet(username, setName string, movieID int64) ([]int64, bool, error) {
	column, err := setColumn(setName)
	if err != nil {
		return nil, false, err
	}

	query := fmt.Sprintf(`
		WITH prev AS (
			SELECT id, %[1]s AS items FROM users WHERE username = $1
		)
		UPDATE users u
		SET %[1]s = CASE WHEN $2 = ANY(prev.items) THEN prev.items
		                 ELSE array_append(prev.items, $2) END
		FROM prev
		WHERE u.id = prev.id
		RETURNING u.%[1]s, $2 = ANY(prev.items)
	`, column)

	var items []int64
	var existed bool
	if err := r.db.QueryRow(query, username, movieID).Scan(pq.Array(&items), &existed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, ErrNotFound
		}
		return nil, false, fmt.Errorf("failed to add to %s: %w", setName, err)
	}
	return items, existed, nil
}

// RemoveFromSet removes movieID from the named set. Removing an absent id is
// a no-op that still returns the (unchanged) set.
func (r *UserRepository) RemoveFromSet(username, setName string, movieID int64) ([]int64, error) {
	column, err := setColumn(setName)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE users SET %[1]s = array_remove(%[1]s, $2)
		WHERE username = $1
		RETURNING %[1]s
	`, column)

	var items []int64
	if err := r.db.QueryRow(query, username, movieID).Scan(pq.Array(&items)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to remove from %s: %w", setName, err)
	}
	return items, nil
}

// UpsertReview stores the review for (username, movieID), overwriting any
// prior one. The author column is always the account's own username.
func (r *UserRepository) UpsertReview(username string, movieID int64, rating int, content string) (*models.Review, error) {
	var review models.Review
	err := r.db.QueryRow(`
		INSERT INTO reviews (user_id, movie_id, author, rating, content, updated_at)
		SELECT id, $2, username, $3, $4, NOW() FROM users WHERE username = $1
		ON CONFLICT (user_id, movie_id) DO UPDATE SET
			rating = EXCLUDED.rating,
			content = EXCLUDED.content,
			updated_at = NOW()
		RETURNING movie_id, author, rating, content, updated_at
	`, username, movieID, rating, content).Scan(
		&review.MovieID, &review.Author, &review.Rating, &review.Content, &review.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to upsert review: %w", err)
	}
	return &review, nil
}

// ListReviews returns all reviews authored by username.
func (r *UserRepository) ListReviews(username string) ([]models.Review, error) {
	rows, err := r.db.Query(`
		SELECT r.movie_id, r.author, r.rating, r.content, r.updated_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE u.username = $1
		ORDER BY r.updated_at DESC
	`, username)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var review models.Review
		if err := rows.Scan(&review.MovieID, &review.Author, &review.Rating, &review.Content, &review.UpdatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func setColumn(setName string) (string, error) {
	switch setName {
	case SetFavorites, SetMustWatch:
		return setName, nil
	default:
		return "", ErrUnknownSet
	}
}
