package similarity

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
)

// Load reads both artifacts from disk and builds an Index.
func Load(catalogPath, matrixPath string) (*Index, error) {
	titles, err := loadFile(catalogPath, LoadCatalog)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", catalogPath, err)
	}
	matrix, err := loadFile(matrixPath, LoadMatrix)
	if err != nil {
		return nil, fmt.Errorf("load similarity matrix %s: %w", matrixPath, err)
	}
	return NewIndex(titles, matrix)
}

func loadFile[T any](path string, decode func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	return decode(f)
}

// LoadCatalog decodes a catalog artifact. Three layouts are accepted:
//
//	[{"title": "A"}, {"title": "B"}]            records
//	{"title": {"0": "A", "1": "B"}}              column mapping keyed by row
//	{"title": ["A", "B"]}                        column list
func LoadCatalog(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty catalog artifact")
	}
	if data[0] == '[' {
		return decodeRecords(data)
	}
	return decodeColumns(data)
}

func decodeRecords(data []byte) ([]string, error) {
	var records []map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(records))
	for i, rec := range records {
		raw, ok := rec["title"]
		if !ok {
			return nil, fmt.Errorf("record %d has no title field", i)
		}
		var t string
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		titles = append(titles, t)
	}
	return titles, nil
}

func decodeColumns(data []byte) ([]string, error) {
	var columns map[string]json.RawMessage
	if err := json.Unmarshal(data, &columns); err != nil {
		return nil, err
	}
	raw, ok := columns["title"]
	if !ok {
		return nil, errors.New("catalog has no title column")
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var keyed map[string]string
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, fmt.Errorf("title column: %w", err)
	}
	type row struct {
		pos   int
		title string
	}
	rows := make([]row, 0, len(keyed))
	for k, t := range keyed {
		pos, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("title column key %q is not a row number", k)
		}
		rows = append(rows, row{pos: pos, title: t})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].pos < rows[j].pos })
	titles := make([]string, len(rows))
	for i, r := range rows {
		titles[i] = r.title
	}
	return titles, nil
}

// LoadMatrix decodes a similarity matrix stored as a JSON array of rows.
func LoadMatrix(r io.Reader) ([][]float64, error) {
	var matrix [][]float64
	if err := json.NewDecoder(r).Decode(&matrix); err != nil {
		return nil, err
	}
	if len(matrix) == 0 {
		return nil, errors.New("empty similarity matrix")
	}
	return matrix, nil
}
