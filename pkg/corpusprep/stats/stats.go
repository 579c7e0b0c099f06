// Package stats computes the aggregate manifest written alongside a
// processed dataset.
package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/edulang/corpusprep/pkg/corpusprep/dataset"
)

// TopN is how many value frequencies are kept per categorical column.
const TopN = 10

// Stats is the manifest for one processed dataset.
type Stats struct {
	TotalRows    int                    `json:"total_rows"`
	TotalColumns int                    `json:"total_columns"`
	Columns      []string               `json:"columns"`
	TextStats    *TextStats             `json:"text_stats,omitempty"`
	ColumnStats  map[string]ColumnStats `json:"column_stats"`
}

// TextStats summarizes the text column's character-length distribution.
type TextStats struct {
	MinLength        int     `json:"min_length"`
	MaxLength        int     `json:"max_length"`
	MeanLength       float64 `json:"mean_length"`
	MedianLength     float64 `json:"median_length"`
	TotalCharacters  int64   `json:"total_characters"`
	EmptyOrNullCount int     `json:"empty_or_null_count"`
}

// ColumnStats summarizes one non-text column.
type ColumnStats struct {
	Dtype        string       `json:"dtype"`
	NullCount    int          `json:"null_count"`
	UniqueValues int          `json:"unique_values"`
	TopValues    []ValueCount `json:"top_values"`
}

// ValueCount is one entry of a column's value-frequency ranking.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Compute derives the manifest for ds. Lengths are counted in runes so
// multi-byte text does not skew the distribution.
func Compute(ds *dataset.Dataset, textColumn string) Stats {
	st := Stats{
		TotalRows:    ds.Rows(),
		TotalColumns: len(ds.Columns()),
		Columns:      ds.Columns(),
		ColumnStats:  make(map[string]ColumnStats),
	}
	for _, name := range ds.Columns() {
		col, _ := ds.Column(name)
		if name == textColumn {
			ts := textStats(col)
			st.TextStats = &ts
			continue
		}
		st.ColumnStats[name] = columnStats(col)
	}
	return st
}

func textStats(col dataset.Column) TextStats {
	var ts TextStats
	lengths := make([]int, 0, len(col.Values))
	for _, v := range col.Values {
		s := dataset.Format(v)
		if v == nil || strings.TrimSpace(s) == "" {
			ts.EmptyOrNullCount++
		}
		n := len([]rune(s))
		lengths = append(lengths, n)
		ts.TotalCharacters += int64(n)
	}
	if len(lengths) == 0 {
		return ts
	}
	sorted := make([]int, len(lengths))
	copy(sorted, lengths)
	sort.Ints(sorted)
	ts.MinLength = sorted[0]
	ts.MaxLength = sorted[len(sorted)-1]
	ts.MeanLength = float64(ts.TotalCharacters) / float64(len(lengths))
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		ts.MedianLength = float64(sorted[mid])
	} else {
		ts.MedianLength = float64(sorted[mid-1]+sorted[mid]) / 2
	}
	return ts
}

func columnStats(col dataset.Column) ColumnStats {
	cs := ColumnStats{Dtype: string(col.Type)}
	counts := make(map[string]int)
	for _, v := range col.Values {
		if v == nil {
			cs.NullCount++
			continue
		}
		counts[dataset.Format(v)]++
	}
	cs.UniqueValues = len(counts)

	ranked := make([]ValueCount, 0, len(counts))
	for v, c := range counts {
		ranked = append(ranked, ValueCount{Value: v, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Value < ranked[j].Value
	})
	if len(ranked) > TopN {
		ranked = ranked[:TopN]
	}
	cs.TopValues = ranked
	return cs
}

// SidecarPath derives the manifest path from the output dataset path:
// corpus.csv becomes corpus.stats.json.
func SidecarPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext) + ".stats.json"
}

// Write stores the manifest as indented JSON.
func Write(st Stats, path string) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
