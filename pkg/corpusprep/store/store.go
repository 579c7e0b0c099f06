// Package store abstracts where datasets and their statistics manifests
// live. Implementations exist for CSV files and SQLite databases.
package store

import (
	"context"

	"github.com/edulang/corpusprep/pkg/corpusprep/dataset"
	"github.com/edulang/corpusprep/pkg/corpusprep/stats"
)

// Store reads and writes datasets by name. For file stores the name is a
// path; for database stores it is a table name.
type Store interface {
	// ReadDataset loads a dataset and verifies the required text column
	// is present.
	ReadDataset(ctx context.Context, name, textColumn string) (*dataset.Dataset, error)

	// WriteDataset persists a dataset under name, replacing any
	// previous content.
	WriteDataset(ctx context.Context, name string, ds *dataset.Dataset) error

	// WriteStats persists the statistics manifest for the dataset named
	// name, alongside it.
	WriteStats(ctx context.Context, name string, st stats.Stats) error

	Close() error
}
