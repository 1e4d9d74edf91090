// Package source builds the ordered work-item sequences a run iterates over.
// Every source produces unique, non-empty strings; order defines processing
// order.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// compositeSep joins a keyword and a location into one work item.
const compositeSep = " | "

// ColumnFromCSV reads one column of a CSV file into a deduplicated list that
// preserves first-seen order. Rows shorter than the column index and empty
// cells are skipped; skipHeader drops the first row.
func ColumnFromCSV(path string, column int, skipHeader bool) ([]string, error) {
	if column < 0 {
		return nil, fmt.Errorf("column index must be non-negative, got %d", column)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open work-item file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var items []string
	seen := make(map[string]struct{})
	first := true

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if first {
			first = false
			if skipHeader {
				continue
			}
		}
		if column >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[column])
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		items = append(items, v)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no work items found in column %d of %s", column, path)
	}
	return items, nil
}

// SortedSet trims values, drops empties, and returns the unique remainder in
// ascending order. Keyword lists are processed sorted rather than in file
// order.
func SortedSet(values []string) []string {
	seen := make(map[string]struct{})
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		seen[v] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Composite pairs every keyword with the fixed location, producing
// "<keyword> | <location>" work items.
func Composite(keywords []string, location string) []string {
	items := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		items = append(items, kw+compositeSep+location)
	}
	return items
}

// SplitComposite undoes Composite. ok is false when item has no separator.
func SplitComposite(item string) (keyword, location string, ok bool) {
	return strings.Cut(item, compositeSep)
}
