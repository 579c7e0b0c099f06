// Package csvfile stores datasets as CSV files with a header row. The
// statistics manifest is written as a JSON sidecar next to the dataset.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edulang/corpusprep/pkg/corpusprep/dataset"
	"github.com/edulang/corpusprep/pkg/corpusprep/internalerr"
	"github.com/edulang/corpusprep/pkg/corpusprep/stats"
	"github.com/edulang/corpusprep/pkg/corpusprep/store"
)

type csvStore struct{}

// New returns a Store where dataset names are CSV file paths.
func New() store.Store {
	return csvStore{}
}

func (csvStore) Close() error { return nil }

// ReadDataset loads the CSV at path. All columns are string typed; the
// required text column must be present in the header.
func (csvStore) ReadDataset(_ context.Context, path, textColumn string) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidInput, path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", internalerr.ErrInvalidInput, path)
	}

	header := records[0]
	found := false
	for _, h := range header {
		if h == textColumn {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: text column %q not found in %s, have %v",
			internalerr.ErrMissingColumn, textColumn, path, header)
	}

	cols := make([]dataset.Column, len(header))
	for i, name := range header {
		values := make([]dataset.Value, 0, len(records)-1)
		for _, rec := range records[1:] {
			if i < len(rec) {
				values = append(values, rec[i])
			} else {
				values = append(values, nil)
			}
		}
		cols[i] = dataset.Column{Name: name, Type: dataset.TypeString, Values: values}
	}
	return dataset.New(cols...)
}

// WriteDataset writes ds to path, creating parent directories as needed.
// Null cells are written as empty fields.
func (csvStore) WriteDataset(_ context.Context, path string, ds *dataset.Dataset) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	names := ds.Columns()
	if err := w.Write(names); err != nil {
		return err
	}
	rec := make([]string, len(names))
	for i := 0; i < ds.Rows(); i++ {
		for j, name := range names {
			rec[j], _ = ds.StringAt(name, i)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteStats writes the manifest next to the dataset, with the sidecar
// name derived from the dataset path.
func (csvStore) WriteStats(_ context.Context, path string, st stats.Stats) error {
	return stats.Write(st, stats.SidecarPath(path))
}
