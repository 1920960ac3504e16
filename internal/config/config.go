package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ArtifactsConfig points at the precomputed catalog and similarity matrix.
type ArtifactsConfig struct {
	CatalogPath    string `yaml:"catalog_path"`
	SimilarityPath string `yaml:"similarity_path"`
}

// RecommenderConfig configures the similarity lookup.
type RecommenderConfig struct {
	TopK int `yaml:"top_k"`
}

// MatcherConfig selects and configures the fuzzy title matcher.
type MatcherConfig struct {
	Type   string  `yaml:"type"`
	Cutoff float64 `yaml:"cutoff"`
}

// PosterConfig configures the OMDb poster lookup.
type PosterConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// PlatformsConfig configures the web search used to guess platforms.
// TimeoutSecs of 0 leaves the HTTP client without a timeout.
//
// Searches share one process-wide limiter: Burst searches run at once, then
// callers wait at RequestsPerSec. With the defaults (0.5/s, burst 5) a single
// recommendation is not delayed, but concurrent web users queue behind each
// other once the burst is spent.
type PlatformsConfig struct {
	BaseURL        string  `yaml:"base_url"`
	NumResults     int     `yaml:"num_results"`
	TimeoutSecs    int     `yaml:"timeout_secs"`
	RequestsPerSec float64 `yaml:"requests_per_sec"`
	Burst          int     `yaml:"burst"`
}

// HistoryConfig configures watch-history based recommendations.
type HistoryConfig struct {
	Keywords   []string `yaml:"keywords"`
	MaxSeeds   int      `yaml:"max_seeds"`
	MaxResults int      `yaml:"max_results"`
}

// LoggingConfig configures the global logger. File, when set, receives log
// output instead of stderr.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// ServerConfig configures the web front end.
type ServerConfig struct {
	Addr               string   `yaml:"addr"`
	RateLimitRequests  int      `yaml:"rate_limit_requests"`
	RateLimitWindowSec int      `yaml:"rate_limit_window_secs"`
	CORSOrigins        []string `yaml:"cors_origins,omitempty"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Artifacts   ArtifactsConfig   `yaml:"artifacts"`
	Recommender RecommenderConfig `yaml:"recommender"`
	Matcher     MatcherConfig     `yaml:"matcher"`
	Poster      PosterConfig      `yaml:"poster"`
	Platforms   PlatformsConfig   `yaml:"platforms"`
	History     HistoryConfig     `yaml:"history"`
	Logging     LoggingConfig     `yaml:"logging"`
	Server      ServerConfig      `yaml:"server"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/movierec/config.yaml.
// If neither exists, it writes defaults to ~/.config/movierec/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "movierec", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Artifacts.CatalogPath == "" {
		cfg.Artifacts.CatalogPath = "movie_dict.json"
	}
	if cfg.Artifacts.SimilarityPath == "" {
		cfg.Artifacts.SimilarityPath = "similarity.json"
	}
	if cfg.Recommender.TopK <= 0 {
		cfg.Recommender.TopK = 5
	}
	if cfg.Matcher.Type == "" {
		cfg.Matcher.Type = "ratio"
	}
	if cfg.Matcher.Cutoff <= 0 {
		cfg.Matcher.Cutoff = 0.6
	}
	if cfg.Poster.BaseURL == "" {
		cfg.Poster.BaseURL = "http://www.omdbapi.com/"
	}
	if cfg.Poster.APIKeyEnv == "" {
		cfg.Poster.APIKeyEnv = "OMDB_API_KEY"
	}
	if cfg.Poster.TimeoutSecs <= 0 {
		cfg.Poster.TimeoutSecs = 3
	}
	if cfg.Platforms.BaseURL == "" {
		cfg.Platforms.BaseURL = "https://html.duckduckgo.com/html/"
	}
	if cfg.Platforms.NumResults <= 0 {
		cfg.Platforms.NumResults = 5
	}
	if cfg.Platforms.RequestsPerSec == 0 {
		cfg.Platforms.RequestsPerSec = 0.5
	}
	if cfg.Platforms.Burst <= 0 {
		cfg.Platforms.Burst = 5
	}
	if len(cfg.History.Keywords) == 0 {
		cfg.History.Keywords = []string{"movie", "film", "official trailer", "netflix", "prime"}
	}
	if cfg.History.MaxSeeds <= 0 {
		cfg.History.MaxSeeds = 3
	}
	if cfg.History.MaxResults <= 0 {
		cfg.History.MaxResults = 5
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8501"
	}
	if cfg.Server.RateLimitRequests == 0 {
		cfg.Server.RateLimitRequests = 60
	}
	if cfg.Server.RateLimitWindowSec <= 0 {
		cfg.Server.RateLimitWindowSec = 60
	}
}
