// Package similarity holds the title catalog and its precomputed
// similarity matrix and answers nearest-neighbour lookups over them.
package similarity

import (
	"errors"
	"fmt"
	"sort"

	"movierec/internal/domain"
)

// DefaultTopK is the number of recommendations returned when k <= 0.
const DefaultTopK = 5

// ErrTitleNotFound is returned when a title is not an exact catalog entry.
var ErrTitleNotFound = errors.New("title not found in catalog")

// Index is a read-only catalog plus an N×N similarity matrix aligned to it.
// It is safe for concurrent use because nothing mutates it after NewIndex.
type Index struct {
	titles []string
	matrix [][]float64
	lookup map[string]int
}

var _ domain.Recommender = (*Index)(nil)

// NewIndex validates the matrix shape against the catalog and builds the
// title lookup. When a title appears more than once, the first index wins.
func NewIndex(titles []string, matrix [][]float64) (*Index, error) {
	if len(titles) == 0 {
		return nil, errors.New("empty catalog")
	}
	if len(matrix) != len(titles) {
		return nil, fmt.Errorf("similarity matrix has %d rows, catalog has %d titles", len(matrix), len(titles))
	}
	for i, row := range matrix {
		if len(row) != len(titles) {
			return nil, fmt.Errorf("similarity row %d has %d columns, want %d", i, len(row), len(titles))
		}
	}
	lookup := make(map[string]int, len(titles))
	for i, t := range titles {
		if _, ok := lookup[t]; ok {
			continue
		}
		lookup[t] = i
	}
	return &Index{titles: titles, matrix: matrix, lookup: lookup}, nil
}

// Titles returns the catalog in index order.
func (x *Index) Titles() []string {
	out := make([]string, len(x.titles))
	copy(out, x.titles)
	return out
}

// Len is the catalog size.
func (x *Index) Len() int { return len(x.titles) }

// IndexOf resolves an exact title to its catalog index.
func (x *Index) IndexOf(title string) (int, error) {
	i, ok := x.lookup[title]
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrTitleNotFound, title)
	}
	return i, nil
}

// Recommend returns up to k titles ranked by descending similarity to title,
// excluding title itself. Equal scores keep catalog order.
func (x *Index) Recommend(title string, k int) ([]domain.Scored, error) {
	qi, err := x.IndexOf(title)
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		k = DefaultTopK
	}
	row := x.matrix[qi]
	idxs := argsortDesc(row)

	results := make([]domain.Scored, 0, k)
	for _, j := range idxs {
		if len(results) == k {
			break
		}
		if j == qi {
			continue
		}
		results = append(results, domain.Scored{Title: x.titles[j], Score: row[j]})
	}
	return results, nil
}

// argsortDesc returns indexes of vals ordered by descending value.
// The sort is stable so ties are broken by index.
func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return vals[idxs[a]] > vals[idxs[b]] })
	return idxs
}
