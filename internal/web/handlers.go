package web

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"movierec/internal/domain"
	"movierec/internal/logging"
	"movierec/internal/similarity"
)

const uploadField = "history"

type pageData struct {
	Titles   []string
	Selected string
	Heading  string
	Cards    []domain.Card
	Warning  string
	Info     string
	Error    string
}

type titlesResponse struct {
	Titles []string `json:"titles"`
}

type recommendResponse struct {
	Title           string        `json:"title"`
	Recommendations []domain.Card `json:"recommendations"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) indexPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, pageData{})
}

func (s *Server) recommendPage(w http.ResponseWriter, r *http.Request) {
	title := r.PostFormValue("title")
	if title == "" {
		s.render(w, r, http.StatusBadRequest, pageData{Error: "Select a movie first."})
		return
	}
	cards, err := s.svc.Recommend(r.Context(), title)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, similarity.ErrTitleNotFound) {
			status = http.StatusNotFound
		}
		s.render(w, r, status, pageData{Selected: title, Error: err.Error()})
		return
	}
	s.render(w, r, http.StatusOK, pageData{
		Selected: title,
		Heading:  "Movies similar to " + title + ":",
		Cards:    cards,
	})
}

func (s *Server) historyPage(w http.ResponseWriter, r *http.Request) {
	res, err := s.readHistory(w, r)
	if err != nil {
		s.render(w, r, http.StatusBadRequest, pageData{Error: err.Error()})
		return
	}
	s.render(w, r, http.StatusOK, pageData{
		Heading: "Recommended Movies Based on Your Watch History",
		Cards:   res.Cards,
		Warning: res.Warning,
		Info:    res.Info,
	})
}

func (s *Server) apiTitles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, titlesResponse{Titles: s.svc.Titles()})
}

func (s *Server) apiRecommend(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing title parameter"})
		return
	}
	cards, err := s.svc.Recommend(r.Context(), title)
	switch {
	case errors.Is(err, similarity.ErrTitleNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	case err != nil && r.Context().Err() != nil:
		logging.Ctx(r.Context()).Info().Str("title", title).Msg("client went away")
		return
	case err != nil:
		logging.Ctx(r.Context()).Error().Err(err).Str("title", title).Msg("recommend failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, recommendResponse{Title: title, Recommendations: cards})
}

// apiHistory answers 422 with the warning payload when the upload does not parse.
func (s *Server) apiHistory(w http.ResponseWriter, r *http.Request) {
	res, err := s.readHistory(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if res.Cards == nil {
		res.Cards = []domain.Card{}
	}
	status := http.StatusOK
	if res.Warning != "" {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

var errNoUpload = errors.New("upload a watch-history.json or watch-history.html file")

func (s *Server) readHistory(w http.ResponseWriter, r *http.Request) (domain.HistoryResult, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("multipart parse failed")
		return domain.HistoryResult{}, errNoUpload
	}
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return domain.HistoryResult{}, errNoUpload
	}
	defer file.Close()
	return s.svc.RecommendFromHistory(r.Context(), header.Filename, file), nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	data.Titles = s.svc.Titles()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("render page")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
