package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/edulang/corpusprep/pkg/corpusprep/dataset"
)

func fixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		dataset.Column{Name: "text", Type: dataset.TypeString, Values: []dataset.Value{
			"abcd",       // 4
			"abcdefghij", // 10
			"abcdefg",    // 7
		}},
		dataset.Column{Name: "topic", Type: dataset.TypeString, Values: []dataset.Value{
			"math", "math", nil,
		}},
	)
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestComputeTextStats(t *testing.T) {
	st := Compute(fixture(t), "text")
	if st.TotalRows != 3 || st.TotalColumns != 2 {
		t.Fatalf("totals = %d/%d", st.TotalRows, st.TotalColumns)
	}
	ts := st.TextStats
	if ts == nil {
		t.Fatal("missing text stats")
	}
	if ts.MinLength != 4 || ts.MaxLength != 10 {
		t.Fatalf("min/max = %d/%d", ts.MinLength, ts.MaxLength)
	}
	if ts.MeanLength != 7.0 {
		t.Fatalf("mean = %v, want 7.0", ts.MeanLength)
	}
	if ts.MedianLength != 7.0 {
		t.Fatalf("median = %v, want 7.0", ts.MedianLength)
	}
	if ts.TotalCharacters != 21 {
		t.Fatalf("total characters = %d", ts.TotalCharacters)
	}
	if ts.EmptyOrNullCount != 0 {
		t.Fatalf("empty count = %d", ts.EmptyOrNullCount)
	}
}

func TestComputeMedianEvenCount(t *testing.T) {
	ds, err := dataset.New(dataset.Column{
		Name: "text", Type: dataset.TypeString,
		Values: []dataset.Value{"ab", "abcd", "abcdef", "abcdefgh"},
	})
	if err != nil {
		t.Fatal(err)
	}
	st := Compute(ds, "text")
	if st.TextStats.MedianLength != 5.0 {
		t.Fatalf("median = %v, want 5.0", st.TextStats.MedianLength)
	}
}

func TestComputeEmptyOrNull(t *testing.T) {
	ds, err := dataset.New(dataset.Column{
		Name: "text", Type: dataset.TypeString,
		Values: []dataset.Value{"hello", "", "   ", nil},
	})
	if err != nil {
		t.Fatal(err)
	}
	st := Compute(ds, "text")
	if st.TextStats.EmptyOrNullCount != 3 {
		t.Fatalf("empty count = %d, want 3", st.TextStats.EmptyOrNullCount)
	}
}

func TestComputeColumnStats(t *testing.T) {
	st := Compute(fixture(t), "text")
	cs, ok := st.ColumnStats["topic"]
	if !ok {
		t.Fatal("missing topic column stats")
	}
	if cs.Dtype != "string" || cs.NullCount != 1 || cs.UniqueValues != 1 {
		t.Fatalf("column stats = %+v", cs)
	}
	if len(cs.TopValues) != 1 || cs.TopValues[0] != (ValueCount{Value: "math", Count: 2}) {
		t.Fatalf("top values = %v", cs.TopValues)
	}
}

func TestSidecarPath(t *testing.T) {
	cases := map[string]string{
		"out/corpus.csv":  "out/corpus.stats.json",
		"corpus.parquet":  "corpus.stats.json",
		"plain":           "plain.stats.json",
		"a/b.c/corpus.db": "a/b.c/corpus.stats.json",
	}
	for in, want := range cases {
		if got := SidecarPath(in); got != want {
			t.Errorf("SidecarPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteRoundTrip(t *testing.T) {
	st := Compute(fixture(t), "text")
	path := filepath.Join(t.TempDir(), "corpus.stats.json")
	if err := Write(st, path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Stats
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.TotalRows != 3 || decoded.TextStats.MeanLength != 7.0 {
		t.Fatalf("decoded = %+v", decoded)
	}
}
