package models

import "time"

// Account represents a registered user.
// Favorites and MustWatch are duplicate-free sets of TMDB movie IDs; the
// repository enforces set semantics on every mutation.
type Account struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Favorites    []int64   `json:"favorites"`
	MustWatch    []int64   `json:"mustWatch"`
	CreatedAt    time.Time `json:"created_at"`
}

// Review is a per-(account, movie) review. At most one exists per pair;
// a second submission overwrites the first.
type Review struct {
	MovieID   int64     `json:"movieId"`
	Author    string    `json:"author"`
	Rating    int       `json:"rating"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CredentialsRequest is the body for both register and login.
type CredentialsRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Password string `json:"password" validate:"required,min=8"`
}

// ReviewRequest is the body for submitting a review. Any client-sent author
// field is ignored; the stored author comes from the verified identity.
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Content string `json:"content" validate:"required,min=10"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg,omitempty"`
	Token   string `json:"token,omitempty"`
}
