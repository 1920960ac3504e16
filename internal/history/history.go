// Package history extracts movie-related titles from a watch-history export.
//
// Two export layouts are understood: the vendor HTML page, where each entry
// is a div with the "content-cell" class, and a JSON array of objects with a
// "title" field. Extracted titles pass through a keyword filter that keeps
// anything that looks movie-related. The filter is deliberately crude:
// "Prime Numbers Explained" passes because it contains "prime".
package history

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"movierec/internal/domain"
	"movierec/internal/htmlutil"
)

// DefaultKeywords are the lower-case substrings that mark a title as relevant.
var DefaultKeywords = []string{"movie", "film", "official trailer", "netflix", "prime"}

const watchedPrefix = "Watched "

// Extractor parses history exports and applies the keyword filter.
type Extractor struct {
	keywords []string
}

var _ domain.HistoryExtractor = (*Extractor)(nil)

// NewExtractor returns an Extractor using keywords, or DefaultKeywords when
// none are given. Keywords are compared case-insensitively.
func NewExtractor(keywords []string) *Extractor {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	lower := make([]string, len(keywords))
	for i, k := range keywords {
		lower[i] = strings.ToLower(k)
	}
	return &Extractor{keywords: lower}
}

// Extract parses r according to name and returns the relevant titles.
// Names ending in ".html" are parsed as the HTML export; everything else is
// decoded as JSON.
func (e *Extractor) Extract(name string, r io.Reader) ([]string, error) {
	var (
		titles []string
		err    error
	)
	if strings.HasSuffix(name, ".html") {
		titles, err = ParseHTML(r)
	} else {
		titles, err = ParseJSON(r)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return e.Filter(titles), nil
}

// Filter keeps titles containing at least one keyword.
func (e *Extractor) Filter(titles []string) []string {
	var out []string
	for _, t := range titles {
		lower := strings.ToLower(t)
		for _, k := range e.keywords {
			if strings.Contains(lower, k) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

type jsonEntry struct {
	Title string `json:"title"`
}

// ParseJSON decodes an array of history entries and returns their titles.
func ParseJSON(r io.Reader) ([]string, error) {
	var entries []jsonEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(entries))
	for _, e := range entries {
		titles = append(titles, e.Title)
	}
	return titles, nil
}

// ParseHTML walks the export page and returns one title per watched entry:
// the first line of the cell's text with the "Watched " prefix removed.
func ParseHTML(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("empty document")
	}
	var titles []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Div && htmlutil.HasClass(n, "content-cell") {
			text := nodeText(n)
			if strings.Contains(text, "Watched") {
				line, _, _ := strings.Cut(text, "\n")
				titles = append(titles, strings.TrimSpace(strings.TrimPrefix(line, watchedPrefix)))
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return titles, nil
}

// nodeText concatenates descendant text. <br> becomes a newline and
// non-breaking spaces become plain spaces so "Watched&nbsp;Title" still
// carries the prefix.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(strings.ReplaceAll(n.Data, "\u00a0", " "))
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
