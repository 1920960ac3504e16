package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"movierec/internal/domain"
	"movierec/internal/similarity"
)

type fakeService struct {
	history     domain.HistoryResult
	historyName string
	historyBody string
}

func (f *fakeService) Titles() []string { return []string{"Avatar", "Titanic", "Aliens"} }

func (f *fakeService) Recommend(_ context.Context, title string) ([]domain.Card, error) {
	if title != "Avatar" {
		return nil, fmt.Errorf("%w: %q", similarity.ErrTitleNotFound, title)
	}
	return []domain.Card{
		{Title: "Titanic", Score: 0.8, PosterURL: "https://img.example/titanic.jpg", Platforms: []domain.PlatformLink{{Name: "Netflix", URL: "https://www.netflix.com"}}},
		{Title: "Aliens", Score: 0.5, PosterURL: "https://img.example/aliens.jpg", Platforms: []domain.PlatformLink{{Name: "Search failed"}}},
	}, nil
}

func (f *fakeService) RecommendFromHistory(_ context.Context, name string, r io.Reader) domain.HistoryResult {
	f.historyName = name
	b, _ := io.ReadAll(r)
	f.historyBody = string(b)
	return f.history
}

func newTestHandler(t *testing.T, svc *fakeService, cfg Config) http.Handler {
	t.Helper()
	s, err := NewServer(svc, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return s.Handler()
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, target, filename, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(uploadField, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(fw, body); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAPITitles(t *testing.T) {
	h := newTestHandler(t, &fakeService{}, Config{})
	rec := do(h, httptest.NewRequest(http.MethodGet, "/api/v1/titles", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got titlesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Titles) != 3 || got.Titles[0] != "Avatar" {
		t.Fatalf("titles = %v", got.Titles)
	}
}

func TestAPIRecommend(t *testing.T) {
	h := newTestHandler(t, &fakeService{}, Config{})
	rec := do(h, httptest.NewRequest(http.MethodGet, "/api/v1/recommend?title=Avatar", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	var got recommendResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Title != "Avatar" || len(got.Recommendations) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got.Recommendations[0].Platforms[0].URL != "https://www.netflix.com" {
		t.Errorf("platforms = %+v", got.Recommendations[0].Platforms)
	}
}

func TestAPIRecommendErrors(t *testing.T) {
	h := newTestHandler(t, &fakeService{}, Config{})
	tests := []struct {
		name   string
		target string
		status int
	}{
		{"unknown title", "/api/v1/recommend?title=" + url.QueryEscape("Not A Movie"), http.StatusNotFound},
		{"case sensitive", "/api/v1/recommend?title=avatar", http.StatusNotFound},
		{"missing title", "/api/v1/recommend", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, httptest.NewRequest(http.MethodGet, tt.target, nil))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			var got errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatal(err)
			}
			if got.Error == "" {
				t.Error("missing error message")
			}
		})
	}
}

func TestAPIHistory(t *testing.T) {
	svc := &fakeService{history: domain.HistoryResult{Cards: []domain.Card{{Title: "Skyfall", PosterURL: "https://img.example/skyfall.jpg"}}}}
	h := newTestHandler(t, svc, Config{})
	rec := do(h, uploadRequest(t, "/api/v1/history", "watch-history.json", `[{"title":"Spectre movie"}]`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	if svc.historyName != "watch-history.json" || svc.historyBody != `[{"title":"Spectre movie"}]` {
		t.Errorf("service got %q %q", svc.historyName, svc.historyBody)
	}
	var got domain.HistoryResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Cards) != 1 || got.Cards[0].Title != "Skyfall" {
		t.Fatalf("got %+v", got)
	}
}

func TestAPIHistoryStatuses(t *testing.T) {
	tests := []struct {
		name   string
		res    domain.HistoryResult
		status int
		body   string
	}{
		{"parse warning", domain.HistoryResult{Warning: "Failed to process watch history: bad"}, http.StatusUnprocessableEntity, `"warning":"Failed to process watch history: bad"`},
		{"empty", domain.HistoryResult{Info: "nothing"}, http.StatusOK, `"cards":[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, &fakeService{history: tt.res}, Config{})
			rec := do(h, uploadRequest(t, "/api/v1/history", "h.json", "x"))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if !strings.Contains(rec.Body.String(), tt.body) {
				t.Errorf("body = %s", rec.Body)
			}
		})
	}
}

func TestAPIHistoryMissingFile(t *testing.T) {
	h := newTestHandler(t, &fakeService{}, Config{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/history", strings.NewReader("title=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(h, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestIndexPageListsCatalog(t *testing.T) {
	h := newTestHandler(t, &fakeService{}, Config{})
	rec := do(h, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`<option value="Avatar">`, `<option value="Aliens">`, `enctype="multipart/form-data"`, `href="https://takeout.google.com/"`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestRecommendPage(t *testing.T) {
	h := newTestHandler(t, &fakeService{}, Config{})
	req := httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader("title=Avatar"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Movies similar to Avatar:",
		`<img src="https://img.example/titanic.jpg"`,
		`href="https://www.netflix.com"`,
		`<span class="platform">Search failed</span>`,
		`<option value="Avatar" selected>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestRecommendPageUnknownTitle(t *testing.T) {
	h := newTestHandler(t, &fakeService{}, Config{})
	req := httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader("title=Nope"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(h, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `class="error"`) {
		t.Errorf("missing error block")
	}
}

func TestHistoryPageShowsMessages(t *testing.T) {
	svc := &fakeService{history: domain.HistoryResult{Info: "No movie-related content found in your watch history."}}
	h := newTestHandler(t, svc, Config{})
	rec := do(h, uploadRequest(t, "/history", "watch-history.html", "<div></div>"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `<p class="info">No movie-related content found in your watch history.</p>`) {
		t.Errorf("body = %s", rec.Body)
	}
	if svc.historyName != "watch-history.html" {
		t.Errorf("name = %q", svc.historyName)
	}
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(t, &fakeService{}, Config{})
	rec := do(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"titles":3`) {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHandler(t, &fakeService{}, Config{})
	rec := do(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Errorf("metrics output missing runtime collectors")
	}
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestHandler(t, &fakeService{}, Config{})

	rec := do(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = do(h, req)
	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q", got)
	}
}

func TestRateLimitByIP(t *testing.T) {
	h := newTestHandler(t, &fakeService{}, Config{RateLimitRequests: 1})
	if rec := do(h, httptest.NewRequest(http.MethodGet, "/api/v1/titles", nil)); rec.Code != http.StatusOK {
		t.Fatalf("first status = %d", rec.Code)
	}
	if rec := do(h, httptest.NewRequest(http.MethodGet, "/api/v1/titles", nil)); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d", rec.Code)
	}
	// health checks are not limited
	if rec := do(h, httptest.NewRequest(http.MethodGet, "/healthz", nil)); rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestHandler(t, &fakeService{}, Config{CORSOrigins: []string{"https://movies.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/titles", nil)
	req.Header.Set("Origin", "https://movies.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := do(h, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://movies.example" {
		t.Fatalf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/titles", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = do(h, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}
