package domain

import (
	"context"
	"io"
)

// Scored is a catalog title paired with its similarity to a query title.
type Scored struct {
	Title string
	Score float64
}

// PlatformLink is a platform label with the vendor homepage it links to.
// URL is empty for labels without a known homepage (including sentinels).
type PlatformLink struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Card is one enriched recommendation ready for rendering.
type Card struct {
	Title     string         `json:"title"`
	Score     float64        `json:"score,omitempty"`
	PosterURL string         `json:"poster_url"`
	Platforms []PlatformLink `json:"platforms,omitempty"`
}

// HistoryResult is the render payload for a watch-history upload.
// Warning is set when the file could not be parsed; Info is set when
// nothing in the history matched the catalog.
type HistoryResult struct {
	Cards   []Card `json:"cards"`
	Warning string `json:"warning,omitempty"`
	Info    string `json:"info,omitempty"`
}

// Recommender ranks catalog titles by similarity to a known title.
type Recommender interface {
	Titles() []string
	Recommend(title string, k int) ([]Scored, error)
}

// TitleMatcher maps free-text titles onto catalog titles.
type TitleMatcher interface {
	Name() string
	Match(candidates, catalog []string) []string
}

// PosterFetcher returns a poster image URL for a title. It never fails;
// failures are reported as placeholder URLs.
type PosterFetcher interface {
	Poster(ctx context.Context, title string) string
}

// PlatformFinder guesses which streaming platforms carry a title.
// The returned labels are either platform names or a single sentinel.
type PlatformFinder interface {
	FindPlatforms(ctx context.Context, title string) []string
}

// HistoryExtractor pulls movie-related titles out of a watch-history export.
type HistoryExtractor interface {
	Extract(name string, r io.Reader) ([]string, error)
}

// RecommenderService defines the operations exposed by the application core.
type RecommenderService interface {
	Titles() []string
	Recommend(ctx context.Context, title string) ([]Card, error)
	RecommendFromHistory(ctx context.Context, name string, r io.Reader) HistoryResult
}
