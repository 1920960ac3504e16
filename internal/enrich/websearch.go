package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/time/rate"

	"movierec/internal/htmlutil"
)

const (
	defaultSearchURL  = "https://html.duckduckgo.com/html/"
	defaultNumResults = 5
	resultLinkClass   = "result__a"
	userAgent         = "Mozilla/5.0 (X11; Linux x86_64) movierec"
)

// Searcher returns result URLs for a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string, n int) ([]string, error)
}

// WebSearchConfig configures the HTML search client. A zero Timeout leaves
// the HTTP client without one. RequestsPerSec <= 0 disables pacing.
//
// One limiter is shared by every caller of the client. Burst searches go out
// immediately; after that callers queue at RequestsPerSec. Burst <= 0 means
// defaultNumResults, so one five-card recommendation is not paced.
type WebSearchConfig struct {
	BaseURL        string
	Timeout        time.Duration
	RequestsPerSec float64
	Burst          int
}

// WebSearchClient scrapes an HTML search results page for result links.
type WebSearchClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

var _ Searcher = (*WebSearchClient)(nil)

func NewWebSearchClient(cfg WebSearchConfig) *WebSearchClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultSearchURL
	}
	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultNumResults
	}
	return &WebSearchClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, cfg.Burst),
	}
}

// Search fetches the results page for query and returns at most n result
// URLs in page order. Redirect wrappers carrying the target in a "uddg"
// parameter are unwrapped.
func (c *WebSearchClient) Search(ctx context.Context, query string, n int) ([]string, error) {
	if n <= 0 {
		n = defaultNumResults
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	q := base.Query()
	q.Set("q", query)
	base.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search request failed: %s", resp.Status)
	}
	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}
	links := resultLinks(doc, base)
	if len(links) > n {
		links = links[:n]
	}
	return links, nil
}

// resultLinks returns the hrefs of anchors marked as results. Pages without
// result markup fall back to every absolute off-site link.
func resultLinks(doc *html.Node, base *url.URL) []string {
	var marked, other []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			if href, ok := resolveHref(n, base); ok {
				if htmlutil.HasClass(n, resultLinkClass) {
					marked = append(marked, href)
				} else if u, err := url.Parse(href); err == nil && u.Host != base.Host {
					other = append(other, href)
				}
			}
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(doc)
	if len(marked) > 0 {
		return marked
	}
	return other
}

func resolveHref(n *html.Node, base *url.URL) (string, bool) {
	for _, a := range n.Attr {
		if a.Key != "href" {
			continue
		}
		u, err := base.Parse(strings.TrimSpace(a.Val))
		if err != nil {
			return "", false
		}
		if target := u.Query().Get("uddg"); target != "" {
			return target, true
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return "", false
		}
		return u.String(), true
	}
	return "", false
}

