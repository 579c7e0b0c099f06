// Package pipeline orders and executes processing stages over a Dataset.
// A pipeline is configured through the fluent Add* methods and is frozen
// once Process begins; Process folds the dataset through the stages
// left to right and produces a per-run Report.
package pipeline

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/edulang/corpusprep/pkg/corpusprep/annotate"
	"github.com/edulang/corpusprep/pkg/corpusprep/dataset"
	"github.com/edulang/corpusprep/pkg/corpusprep/internalerr"
	"github.com/edulang/corpusprep/pkg/corpusprep/synonyms"
)

// DefaultTextColumn is used when no text column is configured.
const DefaultTextColumn = "text"

// StageError reports a failed stage, identifying it by position and name.
type StageError struct {
	Index int
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %d (%s): %v", e.Index, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// StageCount records the surviving row count after one stage.
type StageCount struct {
	Stage string
	Rows  int
}

// Report summarizes one Process invocation.
type Report struct {
	RunID           string
	InputRows       int
	OutputRows      int
	Stages          []StageCount
	DegradedRecords int64
}

type stage interface {
	name() string
	apply(ctx context.Context, ds *dataset.Dataset) (*dataset.Dataset, error)
}

// degradedCounter is implemented by annotators that degrade individual
// records instead of failing; Process snapshots it around each stage.
type degradedCounter interface {
	Degraded() int64
}

// Pipeline is an ordered, immutable-once-started sequence of stages.
type Pipeline struct {
	textColumn string
	stages     []stage
	started    bool
}

// New creates an empty pipeline over the given text column
// (DefaultTextColumn when empty).
func New(textColumn string) *Pipeline {
	if textColumn == "" {
		textColumn = DefaultTextColumn
	}
	return &Pipeline{textColumn: textColumn}
}

// TextColumn returns the configured text column name.
func (p *Pipeline) TextColumn() string { return p.textColumn }

func (p *Pipeline) add(s stage) *Pipeline {
	if p.started {
		panic("pipeline: configuration is frozen once Process has begun")
	}
	p.stages = append(p.stages, s)
	return p
}

// AddNormalizer appends a text normalization stage: lowercase, punctuation
// whitelist, collapsed whitespace. Rows left empty are dropped.
func (p *Pipeline) AddNormalizer() *Pipeline {
	return p.add(&normalizeStage{textColumn: p.textColumn})
}

// AddKeywordFilter appends a stage retaining rows whose text contains at
// least one keyword, case-insensitively. An empty keyword set retains all.
func (p *Pipeline) AddKeywordFilter(keywords []string) *Pipeline {
	return p.add(newKeywordStage(p.textColumn, keywords))
}

// AddReadabilityFilter appends a stage retaining rows at or below maxGrade
// on the Flesch-Kincaid scale. Unscorable rows are dropped.
func (p *Pipeline) AddReadabilityFilter(maxGrade float64) *Pipeline {
	return p.add(&readabilityStage{textColumn: p.textColumn, maxGrade: maxGrade})
}

// AddSynonymMapper appends a vocabulary simplification stage.
func (p *Pipeline) AddSynonymMapper(m *synonyms.Mapper) *Pipeline {
	return p.add(&synonymStage{textColumn: p.textColumn, mapper: m})
}

// AddDeduplicator appends an exact-match deduplication stage: first
// occurrence wins, keyed on whitespace-collapsed text.
func (p *Pipeline) AddDeduplicator() *Pipeline {
	return p.add(&dedupStage{textColumn: p.textColumn})
}

// AddAnnotator appends a sequential annotation stage.
func (p *Pipeline) AddAnnotator(a annotate.Annotator) *Pipeline {
	return p.add(&annotateStage{textColumn: p.textColumn, ann: a, limit: 1})
}

// AddRemoteAnnotator appends a remote annotation stage whose calls may run
// concurrently up to the given limit. Results are reassembled in original
// row order, so output is indistinguishable from sequential execution.
func (p *Pipeline) AddRemoteAnnotator(a *annotate.RemoteAnnotator, concurrency int) *Pipeline {
	if concurrency < 1 {
		concurrency = 1
	}
	return p.add(&annotateStage{textColumn: p.textColumn, ann: a, limit: concurrency})
}

// Process folds ds through the configured stages. The first stage failure
// aborts the run with a StageError; no partial output is returned.
func (p *Pipeline) Process(ctx context.Context, ds *dataset.Dataset) (*dataset.Dataset, *Report, error) {
	p.started = true
	if !ds.HasColumn(p.textColumn) {
		return nil, nil, fmt.Errorf("%w: text column %q not found, have %v",
			internalerr.ErrMissingColumn, p.textColumn, ds.Columns())
	}

	report := &Report{RunID: newRunID(), InputRows: ds.Rows()}
	for i, st := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		var (
			dc     degradedCounter
			before int64
		)
		if as, ok := st.(*annotateStage); ok {
			if c, ok := as.ann.(degradedCounter); ok {
				dc = c
				before = c.Degraded()
			}
		}
		out, err := st.apply(ctx, ds)
		if err != nil {
			return nil, nil, &StageError{Index: i, Stage: st.name(), Err: err}
		}
		if dc != nil {
			report.DegradedRecords += dc.Degraded() - before
		}
		ds = out
		report.Stages = append(report.Stages, StageCount{Stage: st.name(), Rows: ds.Rows()})
	}
	report.OutputRows = ds.Rows()
	return ds, report, nil
}

var runEntropy = ulid.Monotonic(rand.Reader, 0)

func newRunID() string {
	return ulid.MustNew(ulid.Now(), runEntropy).String()
}
