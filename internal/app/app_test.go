package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"movierec/internal/config"
)

func writeArtifacts(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	catalog := filepath.Join(dir, "movie_dict.json")
	matrix := filepath.Join(dir, "similarity.json")
	if err := os.WriteFile(catalog, []byte(`[{"title":"Avatar"},{"title":"Titanic"},{"title":"Aliens"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(matrix, []byte(`[[1,0.2,0.9],[0.2,1,0.1],[0.9,0.1,1]]`), 0o644); err != nil {
		t.Fatal(err)
	}
	return catalog, matrix
}

func TestNewMatcher(t *testing.T) {
	tests := []struct {
		typ     string
		name    string
		wantErr bool
	}{
		{"", "ratio", false},
		{"ratio", "ratio", false},
		{"jaro-winkler", "jaro-winkler", false},
		{"levenshtein", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			m, err := NewMatcher(config.MatcherConfig{Type: tt.typ, Cutoff: 0.6})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if m.Name() != tt.name {
				t.Errorf("Name() = %q", m.Name())
			}
		})
	}
}

func TestNewServiceLoadsCatalog(t *testing.T) {
	catalog, matrix := writeArtifacts(t)
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Artifacts.CatalogPath = catalog
	cfg.Artifacts.SimilarityPath = matrix

	svc, err := NewService(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(svc.Titles(), ","); got != "Avatar,Titanic,Aliens" {
		t.Fatalf("titles = %s", got)
	}
	res := svc.RecommendFromHistory(context.Background(), "h.txt", strings.NewReader("not json"))
	if res.Warning == "" {
		t.Fatalf("expected parse warning, got %+v", res)
	}
}

func TestNewServiceMissingArtifacts(t *testing.T) {
	cfg := &config.AppConfig{}
	cfg.Artifacts.CatalogPath = filepath.Join(t.TempDir(), "nope.json")
	cfg.Artifacts.SimilarityPath = filepath.Join(t.TempDir(), "nope.json")
	if _, err := NewService(cfg); err == nil {
		t.Fatal("expected load error")
	}
}

func TestNewServiceUnknownMatcher(t *testing.T) {
	catalog, matrix := writeArtifacts(t)
	cfg := &config.AppConfig{}
	cfg.Artifacts.CatalogPath = catalog
	cfg.Artifacts.SimilarityPath = matrix
	cfg.Matcher.Type = "soundex"
	if _, err := NewService(cfg); err == nil {
		t.Fatal("expected matcher error")
	}
}

func TestInitLoggingToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movierec.log")
	closer, err := InitLogging(config.LoggingConfig{Level: "info", Format: "json", File: path})
	if err != nil {
		t.Fatal(err)
	}
	defer InitLogging(config.LoggingConfig{Level: "info"})
	catalog, matrix := writeArtifacts(t)
	cfg := &config.AppConfig{}
	cfg.Artifacts.CatalogPath = catalog
	cfg.Artifacts.SimilarityPath = matrix
	if _, err := NewService(cfg); err != nil {
		t.Fatal(err)
	}
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "catalog loaded") {
		t.Errorf("log file = %s", data)
	}
}
