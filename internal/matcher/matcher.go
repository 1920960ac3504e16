// Package matcher maps free-text watch-history titles onto catalog titles
// using approximate string similarity.
package matcher

import (
	"github.com/hbollon/go-edlib"
	"github.com/pmezard/go-difflib/difflib"

	"movierec/internal/domain"
)

// DefaultCutoff is the minimum similarity (0..1) for a candidate to match.
const DefaultCutoff = 0.6

// RatioMatcher scores candidates with the Ratcliff/Obershelp sequence ratio
// computed over runes.
type RatioMatcher struct {
	cutoff float64
}

var _ domain.TitleMatcher = (*RatioMatcher)(nil)

// NewRatioMatcher returns a sequence-ratio matcher. A cutoff outside (0, 1]
// falls back to DefaultCutoff.
func NewRatioMatcher(cutoff float64) *RatioMatcher {
	if cutoff <= 0 || cutoff > 1 {
		cutoff = DefaultCutoff
	}
	return &RatioMatcher{cutoff: cutoff}
}

func (m *RatioMatcher) Name() string { return "ratio" }

// Match returns the deduplicated best catalog title for every candidate that
// has one at or above the cutoff. Order follows first appearance and must
// not be relied on.
func (m *RatioMatcher) Match(candidates, catalog []string) []string {
	seqs := make([][]string, len(catalog))
	for i, c := range catalog {
		seqs[i] = runes(c)
	}
	return collect(candidates, func(candidate string) (string, bool) {
		return m.best(runes(candidate), catalog, seqs)
	})
}

// Ratio is the sequence similarity of a and b in [0, 1].
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

func (m *RatioMatcher) best(word []string, catalog []string, seqs [][]string) (string, bool) {
	sm := difflib.NewMatcher(nil, word)
	bestTitle := ""
	bestScore := -1.0
	for i, seq := range seqs {
		sm.SetSeq1(seq)
		if sm.RealQuickRatio() < m.cutoff || sm.QuickRatio() < m.cutoff {
			continue
		}
		score := sm.Ratio()
		if score < m.cutoff {
			continue
		}
		// equal scores go to the greater title
		if score > bestScore || (score == bestScore && catalog[i] > bestTitle) {
			bestScore = score
			bestTitle = catalog[i]
		}
	}
	return bestTitle, bestScore >= 0
}

// JaroWinklerMatcher scores candidates with Jaro-Winkler similarity, which
// favours shared prefixes.
type JaroWinklerMatcher struct {
	cutoff float32
}

var _ domain.TitleMatcher = (*JaroWinklerMatcher)(nil)

// NewJaroWinklerMatcher returns a Jaro-Winkler matcher. A cutoff outside
// (0, 1] falls back to DefaultCutoff.
func NewJaroWinklerMatcher(cutoff float64) *JaroWinklerMatcher {
	if cutoff <= 0 || cutoff > 1 {
		cutoff = DefaultCutoff
	}
	return &JaroWinklerMatcher{cutoff: float32(cutoff)}
}

func (m *JaroWinklerMatcher) Name() string { return "jaro-winkler" }

func (m *JaroWinklerMatcher) Match(candidates, catalog []string) []string {
	return collect(candidates, func(candidate string) (string, bool) {
		bestTitle := ""
		var bestScore float32 = -1
		for _, title := range catalog {
			score := edlib.JaroWinklerSimilarity(candidate, title)
			if score < m.cutoff {
				continue
			}
			if score > bestScore || (score == bestScore && title > bestTitle) {
				bestScore = score
				bestTitle = title
			}
		}
		return bestTitle, bestScore >= 0
	})
}

func collect(candidates []string, best func(string) (string, bool)) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range candidates {
		title, ok := best(c)
		if !ok {
			continue
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}
		out = append(out, title)
	}
	return out
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
