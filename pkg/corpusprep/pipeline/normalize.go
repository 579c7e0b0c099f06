package pipeline

import (
	"context"
	"regexp"
	"strings"

	"github.com/edulang/corpusprep/pkg/corpusprep/dataset"
)

var (
	punctMap = strings.NewReplacer(
		"‘", "'", "’", "'",
		"“", `"`, "”", `"`,
		"–", "-", "—", "-",
		" ", " ",
	)
	disallowedRe = regexp.MustCompile(`[^a-z0-9 ,.!?\n]+`)
	multiPunctRe = regexp.MustCompile(`([,.!?]){2,}`)
	punctPadRe   = regexp.MustCompile(`\s*([,.!?])\s*`)
	multiSpaceRe = regexp.MustCompile(`[ \t\r\f\v]+`)
)

// normalizeText lowercases, keeps only letters, digits and the punctuation
// set ", . ? !", collapses runs, and pads punctuation with single spaces.
func normalizeText(s string) string {
	if s == "" {
		return ""
	}
	s = punctMap.Replace(strings.ToLower(s))
	s = disallowedRe.ReplaceAllString(s, " ")
	s = multiPunctRe.ReplaceAllString(s, "$1")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = punctPadRe.ReplaceAllString(s, " $1 ")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

type normalizeStage struct {
	textColumn string
}

func (s *normalizeStage) name() string { return "normalizer" }

func (s *normalizeStage) apply(_ context.Context, ds *dataset.Dataset) (*dataset.Dataset, error) {
	values := make([]dataset.Value, ds.Rows())
	var keep []int
	for i := 0; i < ds.Rows(); i++ {
		text, _ := ds.StringAt(s.textColumn, i)
		norm := normalizeText(text)
		values[i] = norm
		if norm != "" {
			keep = append(keep, i)
		}
	}
	out, err := ds.WithColumn(s.textColumn, dataset.TypeString, values)
	if err != nil {
		return nil, err
	}
	return out.Select(keep)
}
