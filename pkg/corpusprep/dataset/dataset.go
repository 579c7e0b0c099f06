package dataset

import (
	"fmt"
	"strconv"

	"github.com/edulang/corpusprep/pkg/corpusprep/internalerr"
)

// Type identifies the declared type of a column.
type Type string

const (
	TypeString Type = "string"
	TypeInt    Type = "int"
	TypeFloat  Type = "float"
	TypeBool   Type = "bool"
)

// Value is a single cell. A nil Value is a null.
// Concrete types are string, int64, float64 and bool, matching Type.
type Value any

// Column is a named, typed sequence of cells.
type Column struct {
	Name   string
	Type   Type
	Values []Value
}

// Dataset is an immutable columnar table. Stages never mutate a Dataset in
// place; every operation that changes rows or columns returns a new value.
type Dataset struct {
	cols []Column
	rows int
}

// New builds a Dataset from columns. All columns must have the same length
// and distinct names.
func New(cols ...Column) (*Dataset, error) {
	rows := 0
	seen := make(map[string]struct{}, len(cols))
	for i, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("%w: column %d has no name", internalerr.ErrInvalidInput, i)
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", internalerr.ErrInvalidInput, c.Name)
		}
		seen[c.Name] = struct{}{}
		if i == 0 {
			rows = len(c.Values)
		} else if len(c.Values) != rows {
			return nil, fmt.Errorf("%w: column %q has %d values, want %d",
				internalerr.ErrInvalidInput, c.Name, len(c.Values), rows)
		}
	}
	return &Dataset{cols: copyColumns(cols), rows: rows}, nil
}

// Rows returns the number of records.
func (d *Dataset) Rows() int { return d.rows }

// Columns returns column names in insertion order.
func (d *Dataset) Columns() []string {
	names := make([]string, len(d.cols))
	for i, c := range d.cols {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether a column with the given name exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index(name)
	return ok
}

// Column returns the named column with its values copied.
func (d *Dataset) Column(name string) (Column, bool) {
	i, ok := d.index(name)
	if !ok {
		return Column{}, false
	}
	c := d.cols[i]
	vals := make([]Value, len(c.Values))
	copy(vals, c.Values)
	return Column{Name: c.Name, Type: c.Type, Values: vals}, true
}

// Value returns the cell at (column, row). ok is false if the column does
// not exist or the row is out of range.
func (d *Dataset) Value(name string, row int) (Value, bool) {
	i, ok := d.index(name)
	if !ok || row < 0 || row >= d.rows {
		return nil, false
	}
	return d.cols[i].Values[row], true
}

// StringAt returns the cell at (column, row) rendered as a string.
// Nulls render as the empty string.
func (d *Dataset) StringAt(name string, row int) (string, bool) {
	v, ok := d.Value(name, row)
	if !ok {
		return "", false
	}
	return Format(v), true
}

// Select returns a new Dataset containing only the given rows, in the given
// order. Indices out of range are an error.
func (d *Dataset) Select(rows []int) (*Dataset, error) {
	for _, r := range rows {
		if r < 0 || r >= d.rows {
			return nil, fmt.Errorf("%w: row index %d out of range", internalerr.ErrInvalidInput, r)
		}
	}
	cols := make([]Column, len(d.cols))
	for i, c := range d.cols {
		vals := make([]Value, len(rows))
		for j, r := range rows {
			vals[j] = c.Values[r]
		}
		cols[i] = Column{Name: c.Name, Type: c.Type, Values: vals}
	}
	return &Dataset{cols: cols, rows: len(rows)}, nil
}

// WithColumn returns a new Dataset with the named column set to the given
// values. An existing column of the same name is replaced in place; a new
// name is appended after the existing columns.
func (d *Dataset) WithColumn(name string, typ Type, values []Value) (*Dataset, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty column name", internalerr.ErrInvalidInput)
	}
	if len(values) != d.rows {
		return nil, fmt.Errorf("%w: column %q has %d values, want %d",
			internalerr.ErrInvalidInput, name, len(values), d.rows)
	}
	cols := copyColumns(d.cols)
	vals := make([]Value, len(values))
	copy(vals, values)
	if i, ok := d.index(name); ok {
		cols[i] = Column{Name: name, Type: typ, Values: vals}
	} else {
		cols = append(cols, Column{Name: name, Type: typ, Values: vals})
	}
	return &Dataset{cols: cols, rows: d.rows}, nil
}

func (d *Dataset) index(name string) (int, bool) {
	for i, c := range d.cols {
		if c.Name == name {
			return i, true
		}
	}
	return 0, false
}

func copyColumns(cols []Column) []Column {
	out := make([]Column, len(cols))
	for i, c := range cols {
		vals := make([]Value, len(c.Values))
		copy(vals, c.Values)
		out[i] = Column{Name: c.Name, Type: c.Type, Values: vals}
	}
	return out
}

// Format renders a cell for text output. Nulls render as "".
func Format(v Value) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
