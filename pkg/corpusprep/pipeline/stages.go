package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/edulang/corpusprep/pkg/corpusprep/annotate"
	"github.com/edulang/corpusprep/pkg/corpusprep/dataset"
	"github.com/edulang/corpusprep/pkg/corpusprep/readability"
	"github.com/edulang/corpusprep/pkg/corpusprep/synonyms"
)

// filterRows evaluates keep for every row's text and selects survivors.
func filterRows(ds *dataset.Dataset, textColumn string, keep func(text string) bool) (*dataset.Dataset, error) {
	var rows []int
	for i := 0; i < ds.Rows(); i++ {
		text, _ := ds.StringAt(textColumn, i)
		if keep(text) {
			rows = append(rows, i)
		}
	}
	return ds.Select(rows)
}

type keywordStage struct {
	textColumn string
	keywords   []string
}

func newKeywordStage(textColumn string, keywords []string) *keywordStage {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	return &keywordStage{textColumn: textColumn, keywords: lowered}
}

func (s *keywordStage) name() string { return "keyword_filter" }

func (s *keywordStage) apply(_ context.Context, ds *dataset.Dataset) (*dataset.Dataset, error) {
	if len(s.keywords) == 0 {
		return ds, nil
	}
	return filterRows(ds, s.textColumn, func(text string) bool {
		lower := strings.ToLower(text)
		for _, k := range s.keywords {
			if strings.Contains(lower, k) {
				return true
			}
		}
		return false
	})
}

type readabilityStage struct {
	textColumn string
	maxGrade   float64
}

func (s *readabilityStage) name() string { return "readability_filter" }

func (s *readabilityStage) apply(_ context.Context, ds *dataset.Dataset) (*dataset.Dataset, error) {
	return filterRows(ds, s.textColumn, func(text string) bool {
		grade, ok := readability.Grade(text)
		return ok && grade <= s.maxGrade
	})
}

type synonymStage struct {
	textColumn string
	mapper     *synonyms.Mapper
}

func (s *synonymStage) name() string { return "synonym_mapper" }

func (s *synonymStage) apply(_ context.Context, ds *dataset.Dataset) (*dataset.Dataset, error) {
	col, _ := ds.Column(s.textColumn)
	values := make([]dataset.Value, ds.Rows())
	for i := 0; i < ds.Rows(); i++ {
		if col.Values[i] == nil {
			continue
		}
		text, _ := ds.StringAt(s.textColumn, i)
		values[i] = s.mapper.Rewrite(text)
	}
	return ds.WithColumn(s.textColumn, dataset.TypeString, values)
}

type dedupStage struct {
	textColumn string
}

func (s *dedupStage) name() string { return "deduplicator" }

func (s *dedupStage) apply(_ context.Context, ds *dataset.Dataset) (*dataset.Dataset, error) {
	seen := make(map[string]struct{}, ds.Rows())
	return filterRows(ds, s.textColumn, func(text string) bool {
		// Canonical key: trimmed, internal whitespace collapsed,
		// case preserved.
		key := strings.Join(strings.Fields(text), " ")
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
}

type annotateStage struct {
	textColumn string
	ann        annotate.Annotator
	limit      int
}

func (s *annotateStage) name() string { return "annotate_" + s.ann.Name() }

func (s *annotateStage) apply(ctx context.Context, ds *dataset.Dataset) (*dataset.Dataset, error) {
	rows := ds.Rows()
	results := make([]annotate.Result, rows)

	if s.limit <= 1 {
		for i := 0; i < rows; i++ {
			text, _ := ds.StringAt(s.textColumn, i)
			res, err := s.ann.Annotate(ctx, text)
			if err != nil {
				return nil, err
			}
			results[i] = res
		}
	} else {
		// Calls fan out up to the limit; each result is slotted by row
		// index so the merged order matches sequential execution. On
		// failure the group context cancels in-flight calls and Wait
		// drains them before the error propagates.
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.limit)
		for i := 0; i < rows; i++ {
			i := i
			text, _ := ds.StringAt(s.textColumn, i)
			g.Go(func() error {
				res, err := s.ann.Annotate(gctx, text)
				if err != nil {
					return err
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	return mergeResults(ds, results)
}

// mergeResults appends one column per distinct result key, in first-seen
// row order. A key colliding with an existing column overwrites it.
func mergeResults(ds *dataset.Dataset, results []annotate.Result) (*dataset.Dataset, error) {
	var names []string
	seen := make(map[string]struct{})
	for _, res := range results {
		keys := make([]string, 0, len(res))
		for k := range res {
			keys = append(keys, k)
		}
		// map iteration order is random; keep column order stable
		sort.Strings(keys)
		for _, k := range keys {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				names = append(names, k)
			}
		}
	}

	out := ds
	for _, name := range names {
		values := make([]dataset.Value, len(results))
		typ := dataset.TypeString
		for i, res := range results {
			if res == nil {
				continue
			}
			v, ok := res[name]
			if !ok || v == nil {
				continue
			}
			cv, ct, err := coerce(v)
			if err != nil {
				return nil, fmt.Errorf("annotation column %q row %d: %w", name, i, err)
			}
			values[i] = cv
			typ = ct
		}
		var err error
		out, err = out.WithColumn(name, typ, values)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func coerce(v any) (dataset.Value, dataset.Type, error) {
	switch t := v.(type) {
	case string:
		return t, dataset.TypeString, nil
	case int64:
		return t, dataset.TypeInt, nil
	case int:
		return int64(t), dataset.TypeInt, nil
	case int32:
		return int64(t), dataset.TypeInt, nil
	case float64:
		return t, dataset.TypeFloat, nil
	case float32:
		return float64(t), dataset.TypeFloat, nil
	case bool:
		return t, dataset.TypeBool, nil
	default:
		return nil, "", fmt.Errorf("unsupported annotation value type %T", v)
	}
}
