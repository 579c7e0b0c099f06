package synonyms

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/edulang/corpusprep/pkg/corpusprep/internalerr"
)

// Load reads a synonym map artifact from a JSON object file or a two-column
// CSV ("from","to" header, or first two columns). The loaded map is
// validated: a file whose values double as keys is rejected.
func Load(path string) (Map, error) {
	var (
		m   Map
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		m, err = loadJSON(path)
	case ".csv":
		m, err = loadCSV(path)
	default:
		return nil, fmt.Errorf("%w: unsupported synonym map format %q", internalerr.ErrInvalidInput, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("synonym map %s: %w", path, err)
	}
	return m, nil
}

func loadJSON(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse synonym map %s: %w", path, err)
	}
	return New(raw), nil
}

func loadCSV(path string) (Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse synonym map %s: %w", path, err)
	}
	if len(records) == 0 {
		return New(nil), nil
	}

	from, to := 0, 1
	start := 0
	header := records[0]
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "from":
			from, start = i, 1
		case "to":
			to, start = i, 1
		}
	}

	raw := make(map[string]string)
	for _, rec := range records[start:] {
		if len(rec) <= from || len(rec) <= to {
			continue
		}
		src := strings.TrimSpace(rec[from])
		dst := strings.TrimSpace(rec[to])
		if src == "" || dst == "" || strings.EqualFold(src, dst) {
			continue
		}
		raw[src] = dst
	}
	return New(raw), nil
}
