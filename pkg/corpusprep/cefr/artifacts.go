package cefr

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Artifact file names written by WriteArtifacts.
const (
	MapFile      = "synonyms.json"
	TableFile    = "synonyms.csv"
	UnmappedFile = "unmapped.txt"
	StatsFile    = "build_stats.json"
)

// WriteArtifacts writes the four build outputs into dir. Content is fully
// ordered, so rebuilding from the same input yields byte-identical files.
func (r Result) WriteArtifacts(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := r.writeMap(filepath.Join(dir, MapFile)); err != nil {
		return err
	}
	if err := r.writeTable(filepath.Join(dir, TableFile)); err != nil {
		return err
	}
	if err := r.writeUnmapped(filepath.Join(dir, UnmappedFile)); err != nil {
		return err
	}
	return r.writeStats(filepath.Join(dir, StatsFile))
}

func (r Result) writeMap(path string) error {
	keys := make([]string, 0, len(r.Map))
	for k := range r.Map {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("{\n")
	for i, k := range keys {
		kj, _ := json.Marshal(k)
		vj, _ := json.Marshal(r.Map[k])
		b.WriteString("  ")
		b.Write(kj)
		b.WriteString(": ")
		b.Write(vj)
		if i < len(keys)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func (r Result) writeTable(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows := make([]MappingRow, len(r.Table))
	copy(rows, r.Table)
	sort.Slice(rows, func(i, j int) bool { return rows[i].From < rows[j].From })

	w := csv.NewWriter(f)
	if err := w.Write([]string{"from", "to", "source", "from_cefr", "to_cefr"}); err != nil {
		return err
	}
	for _, row := range rows {
		rec := []string{row.From, row.To, row.Source, row.FromLevel.String(), row.ToLevel.String()}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (r Result) writeUnmapped(path string) error {
	words := make([]string, len(r.Unmapped))
	copy(words, r.Unmapped)
	sort.Strings(words)
	var b strings.Builder
	for _, w := range words {
		b.WriteString(w)
		b.WriteString("\n")
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func (r Result) writeStats(path string) error {
	data, err := json.MarshalIndent(r.Summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
