// Package filter derives ordered views over in-memory movie lists.
// Filter and Sort are pure: they never mutate their inputs and always return
// new slices, so callers can re-derive a view from the same source list as
// often as they like.
package filter

import (
	"sort"
	"strings"
	"time"
)

// Item is the minimal movie shape the pipeline operates on. List-shaped
// provider records map onto it directly; detail-shaped records must have
// their genre objects normalized to IDs first (see GenreIDs).
type Item struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	GenreIDs    []int   `json:"genre_ids"`
	Rating      float64 `json:"vote_average"`
	ReleaseDate string  `json:"release_date"`
	Popularity  float64 `json:"popularity"`
}

// SortMode selects the ordering applied after filtering.
type SortMode int

const (
	SortNone SortMode = iota
	SortPopularity
	SortRating
	SortReleaseDate
)

// ParseSortMode maps a query-string value to a SortMode. Unknown values
// fall back to SortNone.
func ParseSortMode(s string) SortMode {
	switch s {
	case "popularity":
		return SortPopularity
	case "rating":
		return SortRating
	case "release_date":
		return SortReleaseDate
	default:
		return SortNone
	}
}

// State holds the declarative filter parameters. The zero value of GenreID
// is the wildcard; YearFrom of 0 means no year filter.
type State struct {
	TitleQuery string
	GenreID    int
	RatingMin  float64
	RatingMax  float64
	YearFrom   int
	SortMode   SortMode
}

// DefaultState returns a State that passes every item.
func DefaultState() State {
	return State{RatingMin: 0, RatingMax: 10}
}

// Filter returns the items that pass every active predicate. Predicates are
// conjunctive and independent; the chain order just fails fast on the cheap
// checks. The input slice is never modified.
func Filter(items []Item, state State) []Item {
	query := strings.ToLower(state.TitleQuery)
	currentYear := time.Now().Year()

	out := make([]Item, 0, len(items))
	for _, item := range items {
		if query != "" && !strings.Contains(strings.ToLower(item.Title), query) {
			continue
		}
		if state.GenreID != 0 && !containsGenre(item.GenreIDs, state.GenreID) {
			continue
		}
		if item.Rating < state.RatingMin || item.Rating > state.RatingMax {
			continue
		}
		if state.YearFrom != 0 {
			// Items with an unknown release date are excluded whenever a
			// year filter is active, not defaulted to pass.
			year, ok := releaseYear(item.ReleaseDate)
			if !ok || year < state.YearFrom || year > currentYear {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}

// Sort returns a new slice ordered by mode. All modes sort descending and
// are stable: ties keep their relative input order. SortNone returns a copy
// in the original order.
func Sort(items []Item, mode SortMode) []Item {
	out := make([]Item, len(items))
	copy(out, items)

	switch mode {
	case SortPopularity:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Popularity > out[j].Popularity
		})
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Rating > out[j].Rating
		})
	case SortReleaseDate:
		sort.SliceStable(out, func(i, j int) bool {
			return releaseTime(out[i].ReleaseDate).After(releaseTime(out[j].ReleaseDate))
		})
	}
	return out
}

// Apply filters then sorts. Filtering first keeps the sort over the already
// reduced set.
func Apply(items []Item, state State) []Item {
	return Sort(Filter(items, state), state.SortMode)
}

// Genre is a detail-endpoint genre object.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreIDs normalizes detail-shaped genre objects to the id set used by the
// genre predicate.
func GenreIDs(genres []Genre) []int {
	ids := make([]int, 0, len(genres))
	for _, g := range genres {
		ids = append(ids, g.ID)
	}
	return ids
}

func containsGenre(ids []int, id int) bool {
	for _, g := range ids {
		if g == id {
			return true
		}
	}
	return false
}

func releaseYear(date string) (int, bool) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, false
	}
	return t.Year(), true
}

// releaseTime parses a release date, treating absent or unparseable dates as
// the zero time so they sort oldest.
func releaseTime(date string) time.Time {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}
	}
	return t
}
