package enrich

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"movierec/internal/domain"
	"movierec/internal/logging"
)

const (
	// NoPosterURL is returned when the metadata service has no poster.
	NoPosterURL = "https://via.placeholder.com/300x450.png?text=No+Poster"
	// ErrorPosterURL is returned when the lookup itself failed.
	ErrorPosterURL = "https://via.placeholder.com/300x450.png?text=Error"

	defaultOMDbBaseURL = "http://www.omdbapi.com/"
	defaultPosterWait  = 3 * time.Second
)

// OMDbConfig configures the OMDb poster client.
type OMDbConfig struct {
	BaseURL   string
	APIKeyEnv string
	Timeout   time.Duration
}

// OMDbClient looks up poster URLs by exact title.
type OMDbClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[string]
}

var _ domain.PosterFetcher = (*OMDbClient)(nil)

// NewOMDbClient reads the API key from the configured environment variable.
// A missing key is not an error: every lookup then yields ErrorPosterURL.
func NewOMDbClient(cfg OMDbConfig) *OMDbClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOMDbBaseURL
	}
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OMDB_API_KEY"
	}
	t := cfg.Timeout
	if t == 0 {
		t = defaultPosterWait
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		logging.Warn().Str("env", cfg.APIKeyEnv).Msg("omdb api key not set; posters will use placeholders")
	}
	return &OMDbClient{
		baseURL: cfg.BaseURL,
		apiKey:  key,
		client:  &http.Client{Timeout: t},
		cb:      newBreaker[string]("omdb"),
	}
}

// Poster returns the poster URL for title, NoPosterURL when the service has
// none, or ErrorPosterURL on any failure.
func (c *OMDbClient) Poster(ctx context.Context, title string) string {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		observe("poster", "canceled", start)
		return ErrorPosterURL
	}
	poster, err := c.cb.Execute(func() (string, error) {
		return c.fetch(ctx, title)
	})
	if err != nil {
		logging.Warn().Err(err).Str("title", title).Msg("omdb lookup failed")
		observe("poster", "error", start)
		return ErrorPosterURL
	}
	if poster == "" {
		observe("poster", "missing", start)
		return NoPosterURL
	}
	observe("poster", "ok", start)
	return poster
}

type omdbResponse struct {
	Poster   string `json:"Poster"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

func (c *OMDbClient) fetch(ctx context.Context, title string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("omdb api key missing")
	}
	q := url.Values{}
	q.Set("t", title)
	q.Set("apikey", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("omdb request failed: %s", resp.Status)
	}
	var out omdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode omdb response: %w", err)
	}
	poster := strings.TrimSpace(out.Poster)
	if strings.EqualFold(poster, "N/A") {
		poster = ""
	}
	return poster, nil
}
