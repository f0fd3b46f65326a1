package handler

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"movie-discovery-backend/internal/filter"
	"movie-discovery-backend/internal/service"
	"movie-discovery-backend/internal/tmdb"
)

// MovieCatalog is the service surface the movie handler depends on.
type MovieCatalog interface {
	Passthrough(path string, query url.Values) ([]byte, error)
	Discover(state filter.State, page int) (*service.DiscoverResult, error)
	InvalidateCache()
}

// MovieHandler serves the read-through TMDB proxy endpoints and the
// discover pipeline.
type MovieHandler struct {
	svc MovieCatalog
}

// NewMovieHandler creates a new MovieHandler.
func NewMovieHandler(svc MovieCatalog) *MovieHandler {
	return &MovieHandler{svc: svc}
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health returns service health status.
func (h *MovieHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "movie-discovery-backend",
	})
}

// Proxy returns a handler that forwards to the given TMDB path, reshaping
// only the URL. Query parameters pass through; the response body is returned
// unmodified.
func (h *MovieHandler) Proxy(path string) fiber.Handler {
	return func(c fiber.Ctx) error {
		return h.forward(c, path)
	}
}

// ProxyID is Proxy for paths containing a numeric :id segment, e.g.
// /movie/%s/credits. Non-numeric ids are rejected before the upstream call.
func (h *MovieHandler) ProxyID(format string) fiber.Handler {
	return func(c fiber.Ctx) error {
		idStr := c.Params("id")
		if _, err := strconv.ParseInt(idStr, 10, 64); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: "invalid id",
			})
		}
		return h.forward(c, fmt.Sprintf(format, idStr))
	}
}

func (h *MovieHandler) forward(c fiber.Ctx, path string) error {
	body, err := h.svc.Passthrough(path, queryValues(c))
	if err != nil {
		return upstreamError(c, err)
	}
	c.Set("Content-Type", "application/json")
	return c.Send(body)
}

// Discover applies the filter/sort pipeline over a discover page.
func (h *MovieHandler) Discover(c fiber.Ctx) error {
	state := filter.DefaultState()
	state.TitleQuery = c.Query("title")
	state.GenreID = fiber.Query(c, "genre", 0)
	state.RatingMin = fiber.Query(c, "rating_min", 0.0)
	state.RatingMax = fiber.Query(c, "rating_max", 10.0)
	state.YearFrom = fiber.Query(c, "year_from", 0)
	state.SortMode = filter.ParseSortMode(c.Query("sort"))

	page := fiber.Query(c, "page", 1)
	if page < 1 {
		page = 1
	}

	result, err := h.svc.Discover(state, page)
	if err != nil {
		return upstreamError(c, err)
	}
	return c.JSON(result)
}

// PurgeCache handles POST /api/admin/cache/purge.
func (h *MovieHandler) PurgeCache(c fiber.Ctx) error {
	h.svc.InvalidateCache()
	return c.JSON(fiber.Map{"success": true, "msg": "cache purged"})
}

func upstreamError(c fiber.Ctx, err error) error {
	if ue, ok := tmdb.AsUpstreamError(err); ok {
		return c.Status(ue.Status).JSON(ErrorResponse{Error: ue.Error()})
	}
	slog.Error("upstream request failed", "error", err)
	return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
		Error: "upstream provider unavailable",
	})
}

func queryValues(c fiber.Ctx) url.Values {
	values := url.Values{}
	for key, val := range c.Queries() {
		values.Set(key, val)
	}
	return values
}
