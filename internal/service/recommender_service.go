package service

import (
	"context"
	"errors"
	"io"

	"movierec/internal/domain"
	"movierec/internal/enrich"
	"movierec/internal/logging"
	"movierec/internal/metrics"
	"movierec/internal/similarity"
)

// EmptyHistoryMessage is shown when a history upload yields no matches.
const EmptyHistoryMessage = "No movie-related content found in your watch history."

// HistoryOptions bounds history-based recommendations.
type HistoryOptions struct {
	MaxSeeds   int
	MaxResults int
}

type RecommenderServiceImpl struct {
	index     domain.Recommender
	matcher   domain.TitleMatcher
	extractor domain.HistoryExtractor
	posters   domain.PosterFetcher
	platforms domain.PlatformFinder
	topK      int
	history   HistoryOptions
}

var _ domain.RecommenderService = (*RecommenderServiceImpl)(nil)

func NewRecommenderService(index domain.Recommender, matcher domain.TitleMatcher, extractor domain.HistoryExtractor, posters domain.PosterFetcher, platforms domain.PlatformFinder, topK int, history HistoryOptions) *RecommenderServiceImpl {
	if topK <= 0 {
		topK = similarity.DefaultTopK
	}
	if history.MaxSeeds <= 0 {
		history.MaxSeeds = 3
	}
	if history.MaxResults <= 0 {
		history.MaxResults = 5
	}
	return &RecommenderServiceImpl{
		index:     index,
		matcher:   matcher,
		extractor: extractor,
		posters:   posters,
		platforms: platforms,
		topK:      topK,
		history:   history,
	}
}

func (s *RecommenderServiceImpl) Titles() []string { return s.index.Titles() }

// Recommend looks up the titles most similar to title and enriches each one
// with a poster and platform guesses, one title at a time. Enrichment stops
// with ctx's error once ctx is done.
func (s *RecommenderServiceImpl) Recommend(ctx context.Context, title string) ([]domain.Card, error) {
	scored, err := s.index.Recommend(title, s.topK)
	if err != nil {
		if errors.Is(err, similarity.ErrTitleNotFound) {
			metrics.Recommendations.WithLabelValues("not_found").Inc()
		}
		return nil, err
	}
	metrics.Recommendations.WithLabelValues("ok").Inc()
	logging.Ctx(ctx).Info().Str("title", title).Int("results", len(scored)).Msg("recommend")

	cards := make([]domain.Card, 0, len(scored))
	for _, sc := range scored {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cards = append(cards, domain.Card{
			Title:     sc.Title,
			Score:     sc.Score,
			PosterURL: s.posters.Poster(ctx, sc.Title),
			Platforms: enrich.Links(s.platforms.FindPlatforms(ctx, sc.Title)),
		})
	}
	return cards, nil
}

// RecommendFromHistory extracts movie-like titles from an uploaded history
// file, maps them onto the catalog and recommends from the first few matches.
// The union of their recommendations is truncated without re-ranking, so the
// result order carries no relevance meaning.
func (s *RecommenderServiceImpl) RecommendFromHistory(ctx context.Context, name string, r io.Reader) domain.HistoryResult {
	titles, err := s.extractor.Extract(name, r)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("file", name).Msg("history parse failed")
		metrics.HistoryUploads.WithLabelValues("parse_error").Inc()
		return domain.HistoryResult{Warning: "Failed to process watch history: " + err.Error()}
	}

	matched := s.matcher.Match(titles, s.index.Titles())
	logging.Ctx(ctx).Info().Str("file", name).Int("relevant", len(titles)).Int("matched", len(matched)).Msg("history matched")
	if len(matched) > s.history.MaxSeeds {
		matched = matched[:s.history.MaxSeeds]
	}

	seen := make(map[string]struct{})
	var union []string
	for _, seed := range matched {
		recs, err := s.index.Recommend(seed, s.topK)
		if err != nil {
			logging.Warn().Err(err).Str("seed", seed).Msg("history seed lookup failed")
			continue
		}
		logging.Debug().Str("seed", seed).Int("results", len(recs)).Msg("history seed")
		for _, rec := range recs {
			if _, ok := seen[rec.Title]; ok {
				continue
			}
			seen[rec.Title] = struct{}{}
			union = append(union, rec.Title)
		}
	}
	if len(union) > s.history.MaxResults {
		union = union[:s.history.MaxResults]
	}
	if len(union) == 0 {
		metrics.HistoryUploads.WithLabelValues("empty").Inc()
		return domain.HistoryResult{Info: EmptyHistoryMessage}
	}

	metrics.HistoryUploads.WithLabelValues("cards").Inc()
	cards := make([]domain.Card, 0, len(union))
	for _, t := range union {
		if err := ctx.Err(); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("history enrichment stopped")
			return domain.HistoryResult{Warning: "Failed to process watch history: " + err.Error()}
		}
		cards = append(cards, domain.Card{Title: t, PosterURL: s.posters.Poster(ctx, t)})
	}
	return domain.HistoryResult{Cards: cards}
}
