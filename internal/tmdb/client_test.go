package tmdb

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetInjectsAPIKeyAndReturnsRawBody(t *testing.T) {
	var gotPath, gotKey, gotPage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("api_key")
		gotPage = r.URL.Query().Get("page")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	client := NewClient("k3y", srv.URL)
	query := url.Values{}
	query.Set("page", "2")

	body, err := client.Get("/movie/top_rated", query)
	require.NoError(t, err)
	assert.JSONEq(t, `{"results":[]}`, string(body))
	assert.Equal(t, "/movie/top_rated", gotPath)
	assert.Equal(t, "k3y", gotKey)
	assert.Equal(t, "2", gotPage)
}

func TestGetUpstreamErrorWithMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_code":34,"status_message":"The resource you requested could not be found."}`))
	}))
	defer srv.Close()

	client := NewClient("k3y", srv.URL)
	_, err := client.Get("/movie/999999999", nil)
	require.Error(t, err)

	ue, ok := AsUpstreamError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, ue.Status)
	assert.Equal(t, "The resource you requested could not be found.", ue.Error())
}

func TestGetUpstreamErrorGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	client := NewClient("k3y", srv.URL)
	_, err := client.Get("/discover/movie", nil)

	ue, ok := AsUpstreamError(err)
	require.True(t, ok)
	assert.Equal(t, "API Error: 502", ue.Error())
}

func TestDiscoverMovies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/discover/movie", r.URL.Path)
		assert.Equal(t, "popularity.desc", r.URL.Query().Get("sort_by"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"page": 1,
			"results": [
				{"id": 438631, "title": "Dune", "genre_ids": [878], "vote_average": 8.0, "release_date": "2021-10-01", "popularity": 500.5}
			],
			"total_pages": 10,
			"total_results": 200
		}`))
	}))
	defer srv.Close()

	client := NewClient("k3y", srv.URL)
	resp, err := client.DiscoverMovies(1)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, int64(438631), resp.Results[0].ID)
	assert.Equal(t, []int{878}, resp.Results[0].GenreIDs)
	assert.Equal(t, 10, resp.TotalPages)
}
