package enrich

import (
	"context"
	"strings"
	"time"

	"movierec/internal/domain"
	"movierec/internal/logging"
)

// Sentinel labels returned in place of platform names. Callers of
// FindPlatforms cannot tell an empty search from a failed one except by
// comparing against these; PlatformResult carries the distinction properly.
const (
	NotFoundLabel     = "Not found"
	SearchFailedLabel = "Search failed"
)

// Status classifies a platform lookup.
type Status int

const (
	StatusFound Status = iota
	StatusNotFound
	StatusSearchFailed
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	default:
		return "search_failed"
	}
}

// PlatformResult is the outcome of a platform lookup. Err is set only for
// StatusSearchFailed.
type PlatformResult struct {
	Platforms []string
	Status    Status
	Err       error
}

// Labels renders the result as the label list shown to users: the platform
// names, or exactly one sentinel.
func (r PlatformResult) Labels() []string {
	switch r.Status {
	case StatusFound:
		out := make([]string, len(r.Platforms))
		copy(out, r.Platforms)
		return out
	case StatusNotFound:
		return []string{NotFoundLabel}
	default:
		return []string{SearchFailedLabel}
	}
}

// PlatformHomepages maps known platform names to their homepages.
var PlatformHomepages = map[string]string{
	"Netflix":         "https://www.netflix.com",
	"Prime Video":     "https://www.primevideo.com",
	"Disney+ Hotstar": "https://www.hotstar.com",
	"SonyLIV":         "https://www.sonyliv.com",
	"JustWatch":       "https://www.justwatch.com/in",
}

// Links pairs each label with its homepage; unknown labels and sentinels get
// an empty URL.
func Links(labels []string) []domain.PlatformLink {
	out := make([]domain.PlatformLink, 0, len(labels))
	for _, l := range labels {
		name := strings.TrimSpace(l)
		out = append(out, domain.PlatformLink{Name: name, URL: PlatformHomepages[name]})
	}
	return out
}

// platformRules are checked in order against a lower-cased URL; the first
// rule with a matching substring names the platform.
var platformRules = []struct {
	name    string
	needles []string
}{
	{"Netflix", []string{"netflix"}},
	{"Prime Video", []string{"primevideo", "prime"}},
	{"Disney+ Hotstar", []string{"hotstar", "disneyplus"}},
	{"SonyLIV", []string{"sonyliv"}},
	{"JustWatch", []string{"justwatch"}},
}

// GuessPlatforms classifies result URLs into deduplicated platform names in
// first-seen order.
func GuessPlatforms(urls []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, u := range urls {
		lower := strings.ToLower(u)
	rules:
		for _, rule := range platformRules {
			for _, needle := range rule.needles {
				if !strings.Contains(lower, needle) {
					continue
				}
				if _, ok := seen[rule.name]; !ok {
					seen[rule.name] = struct{}{}
					out = append(out, rule.name)
				}
				break rules
			}
		}
	}
	return out
}

// PlatformGuesser searches the web for "<title> where to watch" and scans
// the result URLs for known platform domains.
type PlatformGuesser struct {
	search     Searcher
	numResults int
}

var _ domain.PlatformFinder = (*PlatformGuesser)(nil)

func NewPlatformGuesser(search Searcher, numResults int) *PlatformGuesser {
	if numResults <= 0 {
		numResults = defaultNumResults
	}
	return &PlatformGuesser{search: search, numResults: numResults}
}

// Lookup runs the search and classifies its results.
func (g *PlatformGuesser) Lookup(ctx context.Context, title string) PlatformResult {
	start := time.Now()
	urls, err := g.search.Search(ctx, title+" where to watch", g.numResults)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("title", title).Msg("platform search failed")
		observe("platforms", StatusSearchFailed.String(), start)
		return PlatformResult{Status: StatusSearchFailed, Err: err}
	}
	platforms := GuessPlatforms(urls)
	if len(platforms) == 0 {
		observe("platforms", StatusNotFound.String(), start)
		return PlatformResult{Status: StatusNotFound}
	}
	observe("platforms", StatusFound.String(), start)
	return PlatformResult{Platforms: platforms, Status: StatusFound}
}

// FindPlatforms returns platform names or a single sentinel label.
func (g *PlatformGuesser) FindPlatforms(ctx context.Context, title string) []string {
	return g.Lookup(ctx, title).Labels()
}
