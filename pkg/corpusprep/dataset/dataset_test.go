package dataset

import (
	"errors"
	"testing"

	"github.com/edulang/corpusprep/pkg/corpusprep/internalerr"
)

func mustNew(t *testing.T, cols ...Column) *Dataset {
	t.Helper()
	d, err := New(cols...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func textColumn(values ...Value) Column {
	return Column{Name: "text", Type: TypeString, Values: values}
}

func TestNewRejectsRaggedColumns(t *testing.T) {
	_, err := New(
		textColumn("a", "b"),
		Column{Name: "score", Type: TypeInt, Values: []Value{int64(1)}},
	)
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := New(textColumn("a"), textColumn("b"))
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSelectDoesNotMutateOriginal(t *testing.T) {
	d := mustNew(t, textColumn("a", "b", "c"))
	sub, err := d.Select([]int{2, 0})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sub.Rows() != 2 {
		t.Fatalf("sub rows = %d, want 2", sub.Rows())
	}
	if got, _ := sub.StringAt("text", 0); got != "c" {
		t.Fatalf("sub[0] = %q, want c", got)
	}
	if d.Rows() != 3 {
		t.Fatalf("original rows changed: %d", d.Rows())
	}
	if got, _ := d.StringAt("text", 0); got != "a" {
		t.Fatalf("original[0] = %q, want a", got)
	}
}

func TestSelectOutOfRange(t *testing.T) {
	d := mustNew(t, textColumn("a"))
	if _, err := d.Select([]int{1}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestWithColumnAppendsAndReplaces(t *testing.T) {
	d := mustNew(t, textColumn("a", "b"))

	d2, err := d.WithColumn("topic", TypeString, []Value{"x", nil})
	if err != nil {
		t.Fatalf("WithColumn: %v", err)
	}
	if got := d2.Columns(); len(got) != 2 || got[1] != "topic" {
		t.Fatalf("columns = %v", got)
	}
	if d.HasColumn("topic") {
		t.Fatal("original dataset gained a column")
	}

	d3, err := d2.WithColumn("topic", TypeString, []Value{"y", "z"})
	if err != nil {
		t.Fatalf("WithColumn replace: %v", err)
	}
	if len(d3.Columns()) != 2 {
		t.Fatalf("replace added a column: %v", d3.Columns())
	}
	if got, _ := d3.StringAt("topic", 0); got != "y" {
		t.Fatalf("replaced value = %q, want y", got)
	}
	if got, _ := d2.StringAt("topic", 0); got != "x" {
		t.Fatalf("previous handle changed: %q", got)
	}
}

func TestStringAtFormatsNullsAndNumbers(t *testing.T) {
	d := mustNew(t,
		textColumn("a", "b"),
		Column{Name: "n", Type: TypeInt, Values: []Value{int64(7), nil}},
	)
	if got, _ := d.StringAt("n", 0); got != "7" {
		t.Fatalf("int cell = %q", got)
	}
	if got, _ := d.StringAt("n", 1); got != "" {
		t.Fatalf("null cell = %q", got)
	}
	if _, ok := d.StringAt("missing", 0); ok {
		t.Fatal("expected missing column")
	}
}
