package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"movie-discovery-backend/internal/middleware"
	"movie-discovery-backend/internal/models"
	"movie-discovery-backend/internal/repository"
	"movie-discovery-backend/internal/service"
	"movie-discovery-backend/internal/validate"
)

// UserAccounts is the service surface the user handler depends on.
type UserAccounts interface {
	Register(username, password string) error
	Login(username, password string) (string, error)
	GetSet(username, setName string) ([]int64, error)
	AddToSet(username, setName string, movieID int64) ([]int64, bool, error)
	RemoveFromSet(username, setName string, movieID int64) ([]int64, error)
	UpsertReview(username string, movieID int64, rating int, content string) (*models.Review, error)
	ListReviews(username string) ([]models.Review, error)
}

// UserHandler handles account, session and collection requests.
type UserHandler struct {
	svc UserAccounts
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc UserAccounts) *UserHandler {
	return &UserHandler{svc: svc}
}

// jsonKeys maps storage set names to their response field names.
var jsonKeys = map[string]string{
	repository.SetFavorites: "favorites",
	repository.SetMustWatch: "mustWatch",
}

// Authenticate handles POST /api/users. With ?action=register it creates an
// account; otherwise it performs a login and returns a session token.
func (h *UserHandler) Authenticate(c fiber.Ctx) error {
	var req models.CredentialsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.AuthResponse{
			Success: false, Msg: "invalid request body",
		})
	}
	if errs := validate.Map(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"msg":     "username and password are required",
			"errors":  errs,
		})
	}

	if c.Query("action") == "register" {
		return h.register(c, req)
	}
	return h.login(c, req)
}

func (h *UserHandler) register(c fiber.Ctx, req models.CredentialsRequest) error {
	if err := h.svc.Register(req.Username, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrUsernameTaken):
			return c.Status(fiber.StatusBadRequest).JSON(models.AuthResponse{
				Success: false, Msg: err.Error(),
			})
		default:
			slog.Error("registration failed", "username", req.Username, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(models.AuthResponse{
				Success: false, Msg: "internal error",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(models.AuthResponse{
		Success: true, Msg: "user successfully created",
	})
}

func (h *UserHandler) login(c fiber.Ctx, req models.CredentialsRequest) error {
	token, err := h.svc.Login(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrWrongPassword):
			// One message for both cases so login responses do not reveal
			// which usernames exist.
			return c.Status(fiber.StatusUnauthorized).JSON(models.AuthResponse{
				Success: false, Msg: "invalid username or password",
			})
		default:
			slog.Error("login failed", "username", req.Username, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(models.AuthResponse{
				Success: false, Msg: "internal error",
			})
		}
	}

	return c.JSON(models.AuthResponse{Success: true, Token: token})
}

// GetSet handles GET /api/users/favorites and /api/users/mustwatch.
func (h *UserHandler) GetSet(setName string) fiber.Handler {
	return func(c fiber.Ctx) error {
		account := middleware.AccountFrom(c)

		items, err := h.svc.GetSet(account.Username, setName)
		if err != nil {
			return h.collectionError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":         true,
			jsonKeys[setName]: items,
		})
	}
}

// AddToSet handles POST /api/users/{favorites,mustwatch}/:movieId. A repeat
// add of the same id is a 200 no-op; the first add responds 201.
func (h *UserHandler) AddToSet(setName string) fiber.Handler {
	return func(c fiber.Ctx) error {
		account := middleware.AccountFrom(c)

		movieID, err := parseMovieID(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"msg":     "movie id must be a positive integer",
			})
		}

		items, existed, err := h.svc.AddToSet(account.Username, setName, movieID)
		if err != nil {
			return h.collectionError(c, err)
		}

		status := fiber.StatusCreated
		if existed {
			status = fiber.StatusOK
		}
		return c.Status(status).JSON(fiber.Map{
			"success":         true,
			jsonKeys[setName]: items,
		})
	}
}

// RemoveFromSet handles DELETE /api/users/{favorites,mustwatch}/:movieId.
// Removing an absent id still succeeds.
func (h *UserHandler) RemoveFromSet(setName string) fiber.Handler {
	return func(c fiber.Ctx) error {
		account := middleware.AccountFrom(c)

		movieID, err := parseMovieID(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"msg":     "movie id must be a positive integer",
			})
		}

		items, err := h.svc.RemoveFromSet(account.Username, setName, movieID)
		if err != nil {
			return h.collectionError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":         true,
			jsonKeys[setName]: items,
		})
	}
}

// UpsertReview handles POST /api/users/reviews/:movieId. Submitting a second
// review for the same movie overwrites the first.
func (h *UserHandler) UpsertReview(c fiber.Ctx) error {
	account := middleware.AccountFrom(c)

	movieID, err := parseMovieID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"msg":     "movie id must be a positive integer",
		})
	}

	var req models.ReviewRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"msg":     "invalid request body",
		})
	}
	if errs := validate.Map(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"msg":     "invalid review",
			"errors":  errs,
		})
	}

	review, err := h.svc.UpsertReview(account.Username, movieID, req.Rating, req.Content)
	if err != nil {
		return h.collectionError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"review":  review,
	})
}

// ListReviews handles GET /api/users/reviews.
func (h *UserHandler) ListReviews(c fiber.Ctx) error {
	account := middleware.AccountFrom(c)

	reviews, err := h.svc.ListReviews(account.Username)
	if err != nil {
		return h.collectionError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"reviews": reviews,
	})
}

func (h *UserHandler) collectionError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"msg":     err.Error(),
		})
	case errors.Is(err, service.ErrUserNotFound):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"msg":     "authentication failed",
		})
	default:
		slog.Error("collection operation failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"msg":     "internal error",
		})
	}
}

func parseMovieID(c fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("movieId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("movie id must be a positive integer")
	}
	return id, nil
}
