// Package sqlite stores datasets as SQLite tables, one table per dataset,
// with statistics manifests kept in a shared dataset_stats table.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/edulang/corpusprep/pkg/corpusprep/dataset"
	"github.com/edulang/corpusprep/pkg/corpusprep/internalerr"
	"github.com/edulang/corpusprep/pkg/corpusprep/stats"
	"github.com/edulang/corpusprep/pkg/corpusprep/store"
)

type sqliteStore struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database with WAL mode enabled.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS dataset_stats (
	dataset TEXT PRIMARY KEY,
	stats_json TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// ReadDataset loads the named table in rowid order. Column types come from
// the table declaration: INTEGER, REAL and everything else as string.
func (s *sqliteStore) ReadDataset(ctx context.Context, name, textColumn string) (*dataset.Dataset, error) {
	names, types, err := s.tableColumns(ctx, name)
	if err != nil {
		return nil, err
	}
	hasText := false
	for _, n := range names {
		if n == textColumn {
			hasText = true
			break
		}
	}
	if !hasText {
		return nil, fmt.Errorf("%w: text column %q not found in table %q, have %v",
			internalerr.ErrMissingColumn, textColumn, name, names)
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid", quoteAll(names), quoteIdent(name))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make([]dataset.Column, len(names))
	for i, n := range names {
		cols[i] = dataset.Column{Name: n, Type: types[i]}
	}
	scan := make([]any, len(names))
	for rows.Next() {
		for i := range scan {
			scan[i] = new(any)
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, err
		}
		for i := range names {
			cols[i].Values = append(cols[i].Values, cellValue(*scan[i].(*any), types[i]))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dataset.New(cols...)
}

// WriteDataset replaces the named table with the dataset's contents.
// Insert order follows row order, so rowid preserves it for reads.
func (s *sqliteStore) WriteDataset(ctx context.Context, name string, ds *dataset.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(name)); err != nil {
		return err
	}

	names := ds.Columns()
	defs := make([]string, len(names))
	for i, n := range names {
		col, _ := ds.Column(n)
		defs[i] = quoteIdent(n) + " " + sqlType(col.Type)
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(name), quoteAll(names), placeholders)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]any, len(names))
	for i := 0; i < ds.Rows(); i++ {
		for j, n := range names {
			v, _ := ds.Value(n, i)
			args[j] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// WriteStats upserts the manifest for the named dataset.
func (s *sqliteStore) WriteStats(ctx context.Context, name string, st stats.Stats) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO dataset_stats (dataset, stats_json, created_at) VALUES (?, ?, ?)
ON CONFLICT(dataset) DO UPDATE SET stats_json=excluded.stats_json, created_at=excluded.created_at`,
		name, string(data), time.Now().UTC().Format(time.RFC3339))
	return err
}

// ReadStats loads a previously written manifest.
func (s *sqliteStore) ReadStats(ctx context.Context, name string) (stats.Stats, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT stats_json FROM dataset_stats WHERE dataset = ?", name).Scan(&data)
	if err == sql.ErrNoRows {
		return stats.Stats{}, fmt.Errorf("%w: stats for dataset %q", internalerr.ErrNotFound, name)
	}
	if err != nil {
		return stats.Stats{}, err
	}
	var st stats.Stats
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return stats.Stats{}, err
	}
	return st, nil
}

func (s *sqliteStore) tableColumns(ctx context.Context, table string) ([]string, []dataset.Type, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, type FROM pragma_table_info(?) ORDER BY cid", table)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var (
		names []string
		types []dataset.Type
	)
	for rows.Next() {
		var name, decl string
		if err := rows.Scan(&name, &decl); err != nil {
			return nil, nil, err
		}
		names = append(names, name)
		types = append(types, datasetType(decl))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if len(names) == 0 {
		return nil, nil, fmt.Errorf("%w: dataset table %q", internalerr.ErrNotFound, table)
	}
	return names, types, nil
}

func sqlType(t dataset.Type) string {
	switch t {
	case dataset.TypeInt, dataset.TypeBool:
		return "INTEGER"
	case dataset.TypeFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

func datasetType(decl string) dataset.Type {
	switch strings.ToUpper(decl) {
	case "INTEGER":
		return dataset.TypeInt
	case "REAL":
		return dataset.TypeFloat
	default:
		return dataset.TypeString
	}
}

func cellValue(raw any, t dataset.Type) dataset.Value {
	if raw == nil {
		return nil
	}
	switch v := raw.(type) {
	case int64:
		if t == dataset.TypeFloat {
			return float64(v)
		}
		return v
	case float64:
		return v
	case []byte:
		return string(v)
	case string:
		return v
	case bool:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}
