package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-discovery-backend/internal/auth"
	"movie-discovery-backend/internal/models"
	"movie-discovery-backend/internal/repository"
)

// fakeStore implements UserStore in memory with the same set/upsert
// semantics as the Postgres repository.
type fakeStore struct {
	accounts map[string]*models.Account
	reviews  map[string]map[int64]models.Review
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: make(map[string]*models.Account),
		reviews:  make(map[string]map[int64]models.Review),
	}
}

func (f *fakeStore) CreateUser(username, passwordHash string) (*models.Account, error) {
	if _, ok := f.accounts[username]; ok {
		return nil, repository.ErrUsernameTaken
	}
	acc := &models.Account{ID: len(f.accounts) + 1, Username: username, PasswordHash: passwordHash}
	f.accounts[username] = acc
	return acc, nil
}

func (f *fakeStore) GetUserByUsername(username string) (*models.Account, error) {
	acc, ok := f.accounts[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return acc, nil
}

func (f *fakeStore) set(acc *models.Account, setName string) (*[]int64, error) {
	switch setName {
	case repository.SetFavorites:
		return &acc.Favorites, nil
	case repository.SetMustWatch:
		return &acc.MustWatch, nil
	default:
		return nil, repository.ErrUnknownSet
	}
}

func (f *fakeStore) GetSet(username, setName string) ([]int64, error) {
	acc, err := f.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	items, err := f.set(acc, setName)
	if err != nil {
		return nil, err
	}
	return append([]int64(nil), *items...), nil
}

func (f *fakeStore) AddToSet(username, setName string, movieID int64) ([]int64, bool, error) {
	acc, err := f.GetUserByUsername(username)
	if err != nil {
		return nil, false, err
	}
	items, err := f.set(acc, setName)
	if err != nil {
		return nil, false, err
	}
	for _, id := range *items {
		if id == movieID {
			return append([]int64(nil), *items...), true, nil
		}
	}
	*items = append(*items, movieID)
	return append([]int64(nil), *items...), false, nil
}

func (f *fakeStore) RemoveFromSet(username, setName string, movieID int64) ([]int64, error) {
	acc, err := f.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	items, err := f.set(acc, setName)
	if err != nil {
		return nil, err
	}
	kept := (*items)[:0]
	for _, id := range *items {
		if id != movieID {
			kept = append(kept, id)
		}
	}
	*items = kept
	return append([]int64(nil), *items...), nil
}

func (f *fakeStore) UpsertReview(username string, movieID int64, rating int, content string) (*models.Review, error) {
	if _, err := f.GetUserByUsername(username); err != nil {
		return nil, err
	}
	if f.reviews[username] == nil {
		f.reviews[username] = make(map[int64]models.Review)
	}
	review := models.Review{MovieID: movieID, Author: username, Rating: rating, Content: content, UpdatedAt: time.Now()}
	f.reviews[username][movieID] = review
	return &review, nil
}

func (f *fakeStore) ListReviews(username string) ([]models.Review, error) {
	var out []models.Review
	for _, review := range f.reviews[username] {
		out = append(out, review)
	}
	return out, nil
}

func newTestService(t *testing.T) (*UserService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	tokens := auth.NewTokenManager("test-secret", "test", time.Hour)
	return NewUserService(store, tokens), store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.Register("alice_01", "Secur3!pass"))

	token, err := svc.Login("alice_01", "Secur3!pass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	account, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice_01", account.Username)
}

func TestRegisterRejectsPolicyViolations(t *testing.T) {
	svc, _ := newTestService(t)

	assert.ErrorIs(t, svc.Register("ab", "Secur3!pass"), ErrValidation)
	assert.ErrorIs(t, svc.Register("alice_01", "weakpass"), ErrValidation)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.Register("alice_01", "Secur3!pass"))
	assert.ErrorIs(t, svc.Register("alice_01", "Secur3!pass"), ErrUsernameTaken)
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newTestService(t)
	require.NoError(t, svc.Register("alice_01", "Secur3!pass"))

	_, err := svc.Login("ghost", "Secur3!pass")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Login("alice_01", "Wr0ng!pass")
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestVerifyTokenUsesFreshLookup(t *testing.T) {
	svc, store := newTestService(t)
	require.NoError(t, svc.Register("alice_01", "Secur3!pass"))

	token, err := svc.Login("alice_01", "Secur3!pass")
	require.NoError(t, err)

	// A valid signature is not enough once the account is gone.
	delete(store.accounts, "alice_01")
	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAddToSetIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	require.NoError(t, svc.Register("alice_01", "Secur3!pass"))

	items, existed, err := svc.AddToSet("alice_01", repository.SetFavorites, 42)
	require.NoError(t, err)
	assert.False(t, existed)
	assert.Equal(t, []int64{42}, items)

	// Second add with the same id yields the same final set.
	items, existed, err = svc.AddToSet("alice_01", repository.SetFavorites, 42)
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, []int64{42}, items)
}

func TestAddToSetValidation(t *testing.T) {
	svc, _ := newTestService(t)
	require.NoError(t, svc.Register("alice_01", "Secur3!pass"))

	_, _, err := svc.AddToSet("alice_01", repository.SetFavorites, 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.AddToSet("alice_01", "bogus", 42)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRemoveFromSetAbsentIsSuccess(t *testing.T) {
	svc, _ := newTestService(t)
	require.NoError(t, svc.Register("alice_01", "Secur3!pass"))

	items, err := svc.RemoveFromSet("alice_01", repository.SetMustWatch, 42)
	require.NoError(t, err)
	assert.Equal(t, []int64{}, items)
}

func TestUpsertReviewOverwrites(t *testing.T) {
	svc, store := newTestService(t)
	require.NoError(t, svc.Register("alice_01", "Secur3!pass"))

	_, err := svc.UpsertReview("alice_01", 42, 3, "decent but overlong")
	require.NoError(t, err)

	review, err := svc.UpsertReview("alice_01", 42, 5, "grew on me a lot")
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)

	// Exactly one stored review, equal to the second submission.
	require.Len(t, store.reviews["alice_01"], 1)
	assert.Equal(t, "grew on me a lot", store.reviews["alice_01"][42].Content)
}

func TestUpsertReviewValidation(t *testing.T) {
	svc, _ := newTestService(t)
	require.NoError(t, svc.Register("alice_01", "Secur3!pass"))

	_, err := svc.UpsertReview("alice_01", 42, 6, "rating out of range")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpsertReview("alice_01", 42, 4, "too short")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpsertReview("alice_01", -1, 4, "bad movie id here")
	assert.ErrorIs(t, err, ErrValidation)
}
