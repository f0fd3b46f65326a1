// Package tmdb wraps the TMDB HTTP API. The client serves two consumers: the
// read-through proxy handlers, which forward raw response bodies unmodified,
// and the discover pipeline, which needs typed list records.
package tmdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"movie-discovery-backend/internal/filter"
)

// UpstreamError reports a non-success response from TMDB. The upstream
// message is carried when TMDB supplied one.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API Error: %d", e.Status)
}

// AsUpstreamError unwraps err into an *UpstreamError if it is one.
func AsUpstreamError(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// Client is the TMDB API client.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new TMDB API client.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// DiscoverResponse is the TMDB discover/movie response.
type DiscoverResponse struct {
	Page         int           `json:"page"`
	Results      []filter.Item `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// Get fetches a TMDB path with the given query parameters and returns the
// raw JSON body. The API key is injected here; callers never see it.
func (c *Client) Get(path string, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	target := c.baseURL + path + "?" + query.Encode()

	slog.Debug("fetching TMDB", "path", path)
	resp, err := c.http.Get(target)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read TMDB response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{
			Status:  resp.StatusCode,
			Message: statusMessage(body),
		}
	}
	return body, nil
}

// DiscoverMovies fetches one page of the discover endpoint as typed records
// for the filter pipeline.
func (c *Client) DiscoverMovies(page int) (*DiscoverResponse, error) {
	query := url.Values{}
	query.Set("sort_by", "popularity.desc")
	query.Set("page", strconv.Itoa(page))

	body, err := c.Get("/discover/movie", query)
	if err != nil {
		return nil, err
	}

	var result DiscoverResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode discover response: %w", err)
	}
	return &result, nil
}

// statusMessage extracts TMDB's status_message from an error body, if any.
func statusMessage(body []byte) string {
	var payload struct {
		StatusMessage string `json:"status_message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.StatusMessage
}
