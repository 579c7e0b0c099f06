package cefr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/edulang/corpusprep/pkg/corpusprep/internalerr"
	"github.com/edulang/corpusprep/pkg/corpusprep/synonyms"
)

// Provenance values recorded in the detailed mapping table.
const (
	SourceManual    = "manual"
	SourceThesaurus = "thesaurus"
	SourceLemma     = "lemma"
)

// BuildOptions configures a synonym-map build.
type BuildOptions struct {
	Easy      []Level // levels treated as easy, e.g. A1,A2
	Difficult []Level // levels treated as difficult, e.g. B2,C1,C2

	Source Source            // candidate supplier; may be nil
	Seed   map[string]string // manual mappings applied before the Source

	AllowMultiword bool // accept multi-word suggestions
	AlphaOnly      bool // skip targets containing non-letters ("a.m.")
	LemmaFallback  bool // try a crude suffix-stripped form when nothing else fits
}

// MappingRow is one row of the detailed mapping table.
type MappingRow struct {
	From      string
	To        string
	Source    string
	FromLevel Level
	ToLevel   Level
}

// LevelCount aggregates outcomes for one difficulty level.
type LevelCount struct {
	Mapped   int `json:"mapped"`
	Unmapped int `json:"unmapped"`
}

// Summary aggregates a whole build.
type Summary struct {
	Targets       int                   `json:"targets"`
	Mapped        int                   `json:"mapped"`
	Unmapped      int                   `json:"unmapped"`
	MappedPercent float64               `json:"mapped_percent"`
	PerLevel      map[string]LevelCount `json:"per_level"`
}

// Result carries the four build artifacts. All of them derive from the same
// pass, so for fixed input and options repeated builds are byte-identical
// once written.
type Result struct {
	Map      synonyms.Map
	Table    []MappingRow
	Unmapped []string
	Summary  Summary
}

// Build partitions the vocabulary into easy and difficult sets and maps
// each difficult word to its best easy synonym. A difficult word with no
// surviving candidate is reported in Unmapped, never silently dropped.
func Build(idx *Index, opts BuildOptions) (Result, error) {
	if len(opts.Easy) == 0 || len(opts.Difficult) == 0 {
		return Result{}, fmt.Errorf("%w: easy and difficult level sets are required", internalerr.ErrInvalidConfig)
	}
	easySet := levelSet(opts.Easy)
	diffSet := levelSet(opts.Difficult)
	for l := range easySet {
		if diffSet[l] {
			return Result{}, fmt.Errorf("%w: level %s is both easy and difficult", internalerr.ErrInvalidConfig, l)
		}
	}

	easy := make(map[string]Level)
	var targets []string
	for _, w := range idx.Words() {
		l, _ := idx.Level(w)
		switch {
		case easySet[l]:
			easy[w] = l
		case diffSet[l]:
			if w == "a" {
				continue
			}
			if opts.AlphaOnly && !isAlpha(w) {
				continue
			}
			targets = append(targets, w)
		}
	}
	sort.Strings(targets)

	mapping := make(map[string]string, len(targets))
	provenance := make(map[string]string, len(targets))

	for src, dst := range opts.Seed {
		s := strings.ToLower(strings.TrimSpace(src))
		d := strings.ToLower(strings.TrimSpace(dst))
		if _, isTarget := indexOf(targets, s); !isTarget {
			continue
		}
		if _, ok := easy[d]; !ok {
			continue
		}
		mapping[s] = d
		provenance[s] = SourceManual
	}

	for _, w := range targets {
		if _, done := mapping[w]; done {
			continue
		}
		if best, ok := bestCandidate(idx, opts, easy, w); ok {
			mapping[w] = best
			provenance[w] = SourceThesaurus
			continue
		}
		if opts.LemmaFallback {
			if lemma := simpleLemma(w); lemma != w {
				if _, ok := easy[lemma]; ok {
					mapping[w] = lemma
					provenance[w] = SourceLemma
					continue
				}
			}
		}
	}

	// A value that is also a key would make lookups order-dependent.
	// Drop such entries back into the unmapped report.
	for src, dst := range mapping {
		if _, clash := mapping[dst]; clash {
			delete(mapping, src)
			delete(provenance, src)
		}
	}

	return assemble(idx, targets, mapping, provenance), nil
}

// bestCandidate intersects the source's suggestions with the easy set and
// applies the selection order: lowest level, highest frequency, shortest
// token, lexicographically smallest.
func bestCandidate(idx *Index, opts BuildOptions, easy map[string]Level, word string) (string, bool) {
	if opts.Source == nil {
		return "", false
	}
	type cand struct {
		word  string
		level Level
		freq  int64
	}
	var cands []cand
	seen := make(map[string]struct{})
	for _, s := range opts.Source.Synonyms(word) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || s == word {
			continue
		}
		if !opts.AllowMultiword && strings.Contains(s, " ") {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		level, ok := easy[s]
		if !ok {
			continue
		}
		cands = append(cands, cand{word: s, level: level, freq: idx.Freq(s)})
	}
	if len(cands) == 0 {
		return "", false
	}
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.level != b.level {
			return a.level < b.level
		}
		if a.freq != b.freq {
			return a.freq > b.freq
		}
		if len(a.word) != len(b.word) {
			return len(a.word) < len(b.word)
		}
		return a.word < b.word
	})
	return cands[0].word, true
}

func assemble(idx *Index, targets []string, mapping, provenance map[string]string) Result {
	res := Result{
		Map: synonyms.Map(mapping),
		Summary: Summary{
			Targets:  len(targets),
			PerLevel: make(map[string]LevelCount),
		},
	}
	for _, w := range targets {
		level, _ := idx.Level(w)
		lc := res.Summary.PerLevel[level.String()]
		if dst, ok := mapping[w]; ok {
			toLevel, _ := idx.Level(dst)
			res.Table = append(res.Table, MappingRow{
				From:      w,
				To:        dst,
				Source:    provenance[w],
				FromLevel: level,
				ToLevel:   toLevel,
			})
			res.Summary.Mapped++
			lc.Mapped++
		} else {
			res.Unmapped = append(res.Unmapped, w)
			res.Summary.Unmapped++
			lc.Unmapped++
		}
		res.Summary.PerLevel[level.String()] = lc
	}
	if res.Summary.Targets > 0 {
		res.Summary.MappedPercent = 100 * float64(res.Summary.Mapped) / float64(res.Summary.Targets)
	}
	return res
}

// simpleLemma strips common suffixes to guess a base form. It is a
// heuristic of last resort; the result is only used when it is itself an
// easy vocabulary word.
func simpleLemma(word string) string {
	w := strings.ToLower(word)
	n := len(w)
	switch {
	case strings.HasSuffix(w, "ies") && n > 4:
		return w[:n-3] + "y"
	case strings.HasSuffix(w, "es") && n > 3:
		return w[:n-2]
	case strings.HasSuffix(w, "s") && n > 3:
		return w[:n-1]
	case strings.HasSuffix(w, "ing") && n > 5:
		return undouble(w[:n-3])
	case strings.HasSuffix(w, "ed") && n > 4:
		return undouble(w[:n-2])
	case strings.HasSuffix(w, "ly") && n > 4:
		return w[:n-2]
	}
	return w
}

func undouble(stem string) string {
	if len(stem) >= 2 && stem[len(stem)-1] == stem[len(stem)-2] {
		return stem[:len(stem)-1]
	}
	return stem
}

func levelSet(levels []Level) map[Level]bool {
	set := make(map[Level]bool, len(levels))
	for _, l := range levels {
		set[l] = true
	}
	return set
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return s != ""
}

func indexOf(sorted []string, w string) (int, bool) {
	i := sort.SearchStrings(sorted, w)
	if i < len(sorted) && sorted[i] == w {
		return i, true
	}
	return 0, false
}
