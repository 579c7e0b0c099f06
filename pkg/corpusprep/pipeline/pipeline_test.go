package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/edulang/corpusprep/pkg/corpusprep/annotate"
	"github.com/edulang/corpusprep/pkg/corpusprep/dataset"
	"github.com/edulang/corpusprep/pkg/corpusprep/internalerr"
	"github.com/edulang/corpusprep/pkg/corpusprep/readability"
	"github.com/edulang/corpusprep/pkg/corpusprep/synonyms"
)

func textDataset(t *testing.T, texts ...string) *dataset.Dataset {
	t.Helper()
	values := make([]dataset.Value, len(texts))
	for i, s := range texts {
		values[i] = s
	}
	ds, err := dataset.New(dataset.Column{Name: "text", Type: dataset.TypeString, Values: values})
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func texts(t *testing.T, ds *dataset.Dataset) []string {
	t.Helper()
	out := make([]string, ds.Rows())
	for i := range out {
		out[i], _ = ds.StringAt("text", i)
	}
	return out
}

func TestProcessMissingTextColumn(t *testing.T) {
	ds, err := dataset.New(dataset.Column{Name: "body", Type: dataset.TypeString, Values: []dataset.Value{"x"}})
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = New("text").Process(context.Background(), ds)
	if !errors.Is(err, internalerr.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestProcessEmptyPipelineIsIdentity(t *testing.T) {
	ds := textDataset(t, "a", "b")
	out, report, err := New("").Process(context.Background(), ds)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Rows() != 2 {
		t.Fatalf("rows = %d", out.Rows())
	}
	if report.RunID == "" || report.InputRows != 2 || report.OutputRows != 2 {
		t.Fatalf("report = %+v", report)
	}
}

func TestKeywordFilter(t *testing.T) {
	ds := textDataset(t, "The solar system.", "Cooking pasta.", "SOLAR panels!")
	out, _, err := New("text").AddKeywordFilter([]string{"solar"}).Process(context.Background(), ds)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	got := texts(t, out)
	if len(got) != 2 || got[0] != "The solar system." || got[1] != "SOLAR panels!" {
		t.Fatalf("texts = %v", got)
	}
}

func TestKeywordFilterEmptySetRetainsAll(t *testing.T) {
	ds := textDataset(t, "a", "b", "c")
	out, _, err := New("text").AddKeywordFilter(nil).Process(context.Background(), ds)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Rows() != 3 {
		t.Fatalf("rows = %d, want 3", out.Rows())
	}
}

func TestReadabilityFilterBoundary(t *testing.T) {
	text := "The cat sat."
	grade, ok := readability.Grade(text)
	if !ok {
		t.Fatal("fixture must be scorable")
	}
	ds := textDataset(t, text)

	// A record scoring exactly maxGrade is retained.
	out, _, err := New("text").AddReadabilityFilter(grade).Process(context.Background(), ds)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Rows() != 1 {
		t.Fatal("record at the boundary must be retained")
	}

	// One scoring just above is dropped.
	out, _, err = New("text").AddReadabilityFilter(grade - 0.01).Process(context.Background(), textDataset(t, text))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Rows() != 0 {
		t.Fatal("record above the threshold must be dropped")
	}
}

func TestReadabilityFilterDropsUnscorable(t *testing.T) {
	ds := textDataset(t, "The cat sat.", "", "   ")
	out, _, err := New("text").AddReadabilityFilter(8.0).Process(context.Background(), ds)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Rows() != 1 {
		t.Fatalf("rows = %d, want 1 (empty text fails the filter)", out.Rows())
	}
}

func TestDeduplicator(t *testing.T) {
	// Case-sensitive: "Hi." and "hi." are distinct keys.
	ds := textDataset(t, "Hi.", "hi.", "Hi.")
	out, _, err := New("text").AddDeduplicator().Process(context.Background(), ds)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	got := texts(t, out)
	if len(got) != 2 || got[0] != "Hi." || got[1] != "hi." {
		t.Fatalf("texts = %v", got)
	}
}

func TestDeduplicatorCollapsesWhitespace(t *testing.T) {
	ds := textDataset(t, "  a  b ", "a b", "a  B")
	out, _, err := New("text").AddDeduplicator().Process(context.Background(), ds)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	got := texts(t, out)
	if len(got) != 2 || got[0] != "  a  b " {
		t.Fatalf("texts = %v (first occurrence must win)", got)
	}
}

func TestSynonymMapperStage(t *testing.T) {
	m := synonyms.NewMapper(synonyms.New(map[string]string{"utilize": "use"}))
	ds := textDataset(t, "Utilize the lever.")
	out, _, err := New("text").AddSynonymMapper(m).Process(context.Background(), ds)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := texts(t, out)[0]; got != "Use the lever." {
		t.Fatalf("text = %q", got)
	}
}

func TestNormalizerStage(t *testing.T) {
	ds := textDataset(t, "Hello, WORLD!!", "###")
	out, _, err := New("text").AddNormalizer().Process(context.Background(), ds)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	got := texts(t, out)
	if len(got) != 1 {
		t.Fatalf("rows = %d, want 1 (row emptied by normalization is dropped)", len(got))
	}
	if got[0] != "hello , world !" {
		t.Fatalf("text = %q", got[0])
	}
}

func TestAnnotationAppendOnlySchema(t *testing.T) {
	ds := textDataset(t, "one", "two words", "three whole words")
	ann := annotate.NewCustom("wordcount", func(text string) (annotate.Result, error) {
		return annotate.Result{"words": len(strings.Fields(text))}, nil
	})
	out, report, err := New("text").AddAnnotator(ann).Process(context.Background(), ds)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Rows() != ds.Rows() {
		t.Fatalf("row count changed: %d -> %d", ds.Rows(), out.Rows())
	}
	for _, name := range ds.Columns() {
		if !out.HasColumn(name) {
			t.Fatalf("column %q lost", name)
		}
	}
	if v, _ := out.Value("words", 2); v != int64(3) {
		t.Fatalf("words[2] = %v", v)
	}
	if len(report.Stages) != 1 || report.Stages[0].Stage != "annotate_wordcount" {
		t.Fatalf("report stages = %v", report.Stages)
	}
}

func TestAnnotatorCollisionOverwritesInStageOrder(t *testing.T) {
	first := annotate.NewCustom("first", func(string) (annotate.Result, error) {
		return annotate.Result{"label": "a"}, nil
	})
	second := annotate.NewCustom("second", func(string) (annotate.Result, error) {
		return annotate.Result{"label": "b"}, nil
	})
	out, _, err := New("text").AddAnnotator(first).AddAnnotator(second).
		Process(context.Background(), textDataset(t, "x"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if v, _ := out.StringAt("label", 0); v != "b" {
		t.Fatalf("label = %q, want b (later stage wins)", v)
	}
	if n := len(out.Columns()); n != 2 {
		t.Fatalf("columns = %v", out.Columns())
	}
}

func TestCustomAnnotatorErrorIsStageError(t *testing.T) {
	boom := errors.New("boom")
	bad := annotate.NewCustom("bad", func(string) (annotate.Result, error) { return nil, boom })
	_, _, err := New("text").
		AddKeywordFilter(nil).
		AddAnnotator(bad).
		Process(context.Background(), textDataset(t, "x"))
	var se *StageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StageError, got %v", err)
	}
	if se.Index != 1 || se.Stage != "annotate_bad" {
		t.Fatalf("stage identity = %d/%q", se.Index, se.Stage)
	}
	if !errors.Is(err, boom) {
		t.Fatal("cause not preserved")
	}
}

func TestAddAfterProcessPanics(t *testing.T) {
	p := New("text")
	if _, _, err := p.Process(context.Background(), textDataset(t, "x")); err != nil {
		t.Fatalf("Process: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on post-start configuration")
		}
	}()
	p.AddDeduplicator()
}

func TestProcessCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := New("text").AddDeduplicator().Process(ctx, textDataset(t, "x"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestStageCountsReported(t *testing.T) {
	ds := textDataset(t, "solar one", "lunar two", "solar one")
	_, report, err := New("text").
		AddKeywordFilter([]string{"solar"}).
		AddDeduplicator().
		Process(context.Background(), ds)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	want := []StageCount{
		{Stage: "keyword_filter", Rows: 2},
		{Stage: "deduplicator", Rows: 1},
	}
	if fmt.Sprint(report.Stages) != fmt.Sprint(want) {
		t.Fatalf("stages = %v, want %v", report.Stages, want)
	}
	if report.InputRows != 3 || report.OutputRows != 1 {
		t.Fatalf("report = %+v", report)
	}
}
