// Package app assembles the recommender service from configuration. Both the
// TUI and the web front end start from here.
package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"movierec/internal/config"
	"movierec/internal/domain"
	"movierec/internal/enrich"
	"movierec/internal/history"
	"movierec/internal/logging"
	"movierec/internal/matcher"
	"movierec/internal/service"
	"movierec/internal/similarity"
)

// InitLogging configures the global logger. When cfg.File is set, logs are
// appended there and the returned closer releases the file.
func InitLogging(cfg config.LoggingConfig) (io.Closer, error) {
	lc := logging.Config{Level: cfg.Level, Format: cfg.Format, Output: os.Stderr}
	var closer io.Closer = io.NopCloser(nil)
	if cfg.File != "" {
		f, err := logging.OpenFile(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		lc.Output = f
		closer = f
	}
	logging.Init(lc)
	return closer, nil
}

// NewMatcher returns the title matcher named by cfg.Type.
func NewMatcher(cfg config.MatcherConfig) (domain.TitleMatcher, error) {
	switch cfg.Type {
	case "ratio", "":
		return matcher.NewRatioMatcher(cfg.Cutoff), nil
	case "jaro-winkler":
		return matcher.NewJaroWinklerMatcher(cfg.Cutoff), nil
	default:
		return nil, fmt.Errorf("unknown matcher: %s", cfg.Type)
	}
}

// NewService loads the artifacts and wires the enrichment clients. A load
// failure is returned as is; callers treat it as fatal.
func NewService(cfg *config.AppConfig) (*service.RecommenderServiceImpl, error) {
	idx, err := similarity.Load(cfg.Artifacts.CatalogPath, cfg.Artifacts.SimilarityPath)
	if err != nil {
		return nil, err
	}
	m, err := NewMatcher(cfg.Matcher)
	if err != nil {
		return nil, err
	}

	posters := enrich.NewOMDbClient(enrich.OMDbConfig{
		BaseURL:   cfg.Poster.BaseURL,
		APIKeyEnv: cfg.Poster.APIKeyEnv,
		Timeout:   time.Duration(cfg.Poster.TimeoutSecs) * time.Second,
	})
	search := enrich.NewWebSearchClient(enrich.WebSearchConfig{
		BaseURL:        cfg.Platforms.BaseURL,
		Timeout:        time.Duration(cfg.Platforms.TimeoutSecs) * time.Second,
		RequestsPerSec: cfg.Platforms.RequestsPerSec,
		Burst:          cfg.Platforms.Burst,
	})
	platforms := enrich.NewPlatformGuesser(search, cfg.Platforms.NumResults)

	logging.Info().
		Int("titles", idx.Len()).
		Str("matcher", m.Name()).
		Str("catalog", cfg.Artifacts.CatalogPath).
		Msg("catalog loaded")

	return service.NewRecommenderService(
		idx,
		m,
		history.NewExtractor(cfg.History.Keywords),
		posters,
		platforms,
		cfg.Recommender.TopK,
		service.HistoryOptions{MaxSeeds: cfg.History.MaxSeeds, MaxResults: cfg.History.MaxResults},
	), nil
}
