// Package web serves the single-page recommender UI and its JSON API.
package web

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"movierec/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Config holds the HTTP front end settings.
type Config struct {
	// RateLimitRequests per RateLimitWindow per client IP; 0 disables limiting.
	RateLimitRequests int
	RateLimitWindow   time.Duration
	// CORSOrigins allowed on /api/v1. Empty allows any origin.
	CORSOrigins []string
	// MaxUploadBytes caps watch-history uploads.
	MaxUploadBytes int64
}

// DefaultConfig returns 60 requests per minute per IP and 10 MiB uploads.
func DefaultConfig() Config {
	return Config{
		RateLimitRequests: 60,
		RateLimitWindow:   time.Minute,
		MaxUploadBytes:    10 << 20,
	}
}

// Server renders recommendations from a RecommenderService over HTTP.
type Server struct {
	svc  domain.RecommenderService
	cfg  Config
	tmpl *template.Template
}

// NewServer parses the embedded page template and returns a Server.
func NewServer(svc domain.RecommenderService, cfg Config) (*Server, error) {
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultConfig().MaxUploadBytes
	}
	tmpl, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &Server{svc: svc, cfg: cfg, tmpl: tmpl}, nil
}

// Handler builds the chi router with the full middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDWithLogging)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if s.cfg.RateLimitRequests > 0 {
			r.Use(httprate.LimitByIP(s.cfg.RateLimitRequests, s.cfg.RateLimitWindow))
		}

		r.Get("/", s.indexPage)
		r.Post("/recommend", s.recommendPage)
		r.Post("/history", s.historyPage)

		r.Route("/api/v1", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: s.cfg.CORSOrigins,
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
				ExposedHeaders: []string{"X-Request-ID"},
				MaxAge:         300,
			}))
			r.Get("/titles", s.apiTitles)
			r.Get("/recommend", s.apiRecommend)
			r.Post("/history", s.apiHistory)
		})
	})

	return r
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"titles": len(s.svc.Titles()),
	})
}
