package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"movie-discovery-backend/internal/filter"
	"movie-discovery-backend/internal/tmdb"
)

const proxyCacheTTL = 5 * time.Minute

// MovieService fronts the TMDB API: raw pass-through for the proxy endpoints
// and the filter pipeline for discover. Responses are cached in Redis when
// available; a nil client just disables caching.
type MovieService struct {
	tmdb  *tmdb.Client
	redis *redis.Client
}

// NewMovieService creates a new MovieService.
func NewMovieService(client *tmdb.Client, rdb *redis.Client) *MovieService {
	return &MovieService{tmdb: client, redis: rdb}
}

// Passthrough fetches a TMDB path and returns its raw JSON body unmodified.
// The body is cached keyed by path and query.
func (s *MovieService) Passthrough(path string, query url.Values) ([]byte, error) {
	cacheKey := fmt.Sprintf("tmdb:%s?%s", path, query.Encode())

	if cached, err := s.getFromCache(cacheKey); err == nil {
		slog.Debug("cache hit", "key", cacheKey)
		return []byte(cached), nil
	}

	body, err := s.tmdb.Get(path, query)
	if err != nil {
		return nil, err
	}

	s.setCache(cacheKey, string(body), proxyCacheTTL)
	return body, nil
}

// DiscoverResult is the derived view returned by Discover.
type DiscoverResult struct {
	Page    int           `json:"page"`
	Results []filter.Item `json:"results"`
	Total   int           `json:"total"`
}

// Discover fetches one discover page and applies the filter/sort pipeline
// to it. Filtering runs before sorting so the sort operates on the reduced
// set.
func (s *MovieService) Discover(state filter.State, page int) (*DiscoverResult, error) {
	resp, err := s.tmdb.DiscoverMovies(page)
	if err != nil {
		return nil, err
	}

	results := filter.Apply(resp.Results, state)
	return &DiscoverResult{
		Page:    resp.Page,
		Results: results,
		Total:   len(results),
	}, nil
}

// ---- Redis Helpers ----

func (s *MovieService) getFromCache(key string) (string, error) {
	if s.redis == nil {
		return "", fmt.Errorf("redis not available")
	}
	return s.redis.Get(context.Background(), key).Result()
}

func (s *MovieService) setCache(key, value string, ttl time.Duration) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(context.Background(), key, value, ttl).Err(); err != nil {
		slog.Error("failed to set cache", "key", key, "error", err)
	}
}

// InvalidateCache drops all cached TMDB responses.
func (s *MovieService) InvalidateCache() {
	if s.redis == nil {
		return
	}
	ctx := context.Background()
	iter := s.redis.Scan(ctx, 0, "tmdb:*", 0).Iterator()
	for iter.Next(ctx) {
		s.redis.Del(ctx, iter.Val())
	}
	slog.Info("TMDB response cache invalidated")
}
