// Package annotate adds classification columns to text records. Two
// variants exist: a remote classifier backed by a chat-completion endpoint,
// which degrades gracefully when the endpoint misbehaves, and a wrapper
// around caller-supplied logic, whose failures are fatal to the run.
package annotate

import "context"

// Unknown is the sentinel value recorded when a record could not be
// classified, either because the endpoint returned a value outside the
// allow-list or because all attempts for that record failed.
const Unknown = "unknown"

// Result maps new column names to scalar values for one record.
type Result map[string]any

// Annotator produces annotation columns for a single text.
type Annotator interface {
	Name() string
	Annotate(ctx context.Context, text string) (Result, error)
}

// Func is caller-supplied annotation logic.
type Func func(text string) (Result, error)

// CustomAnnotator wraps a pure function. An error from the function is
// returned as-is and aborts the pipeline run: caller logic is assumed
// correct, so there is nothing to retry.
type CustomAnnotator struct {
	name string
	fn   Func
}

// NewCustom wraps fn under the given stage name.
func NewCustom(name string, fn Func) *CustomAnnotator {
	return &CustomAnnotator{name: name, fn: fn}
}

// Name returns the annotator's stage name.
func (c *CustomAnnotator) Name() string { return c.name }

// Annotate applies the wrapped function.
func (c *CustomAnnotator) Annotate(_ context.Context, text string) (Result, error) {
	return c.fn(text)
}
