// Package cefr builds vocabulary-simplification synonym maps from a graded
// CEFR word list: difficult words are mapped to easier synonyms drawn from
// a thesaurus, with a deterministic selection policy.
package cefr

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/edulang/corpusprep/pkg/corpusprep/internalerr"
)

// Level is a CEFR difficulty level, ordered A1 (easiest) to C2 (hardest).
type Level int

const (
	A1 Level = iota
	A2
	B1
	B2
	C1
	C2
)

var levelNames = [...]string{"A1", "A2", "B1", "B2", "C1", "C2"}

func (l Level) String() string {
	if l < A1 || l > C2 {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel parses a level name such as "A1" or "b2".
func ParseLevel(s string) (Level, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range levelNames {
		if name == up {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown CEFR level %q", internalerr.ErrInvalidInput, s)
}

// ParseLevels parses a comma-separated level list such as "A1,A2".
func ParseLevels(s string) ([]Level, error) {
	var out []Level
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		l, err := ParseLevel(part)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// Entry is one graded vocabulary word.
type Entry struct {
	Word  string
	Level Level
	Freq  int64 // optional corpus frequency, 0 when absent
}

// Index holds a CEFR vocabulary keyed by lowercase word. A word listed at
// several levels keeps its minimum difficulty, the same way learners meet it.
type Index struct {
	levels map[string]Level
	freqs  map[string]int64
}

// NewIndex builds an Index from entries.
func NewIndex(entries []Entry) *Index {
	x := &Index{
		levels: make(map[string]Level, len(entries)),
		freqs:  make(map[string]int64, len(entries)),
	}
	for _, e := range entries {
		w := strings.ToLower(strings.TrimSpace(e.Word))
		if w == "" {
			continue
		}
		if prev, ok := x.levels[w]; !ok || e.Level < prev {
			x.levels[w] = e.Level
		}
		if e.Freq > x.freqs[w] {
			x.freqs[w] = e.Freq
		}
	}
	return x
}

// LoadIndex reads a CEFR vocabulary CSV with columns word, level and an
// optional frequency column. Header names are matched case-insensitively;
// "headword"/"cefr" aliases are accepted.
func LoadIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: empty CEFR file %s", internalerr.ErrInvalidInput, path)
	}

	wordIdx, levelIdx, freqIdx := -1, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "word", "headword":
			wordIdx = i
		case "level", "cefr":
			levelIdx = i
		case "frequency", "freq":
			freqIdx = i
		}
	}
	if wordIdx < 0 || levelIdx < 0 {
		return nil, fmt.Errorf("%w: CEFR file %s needs word and level columns, got %v",
			internalerr.ErrMissingColumn, path, header)
	}

	var entries []Entry
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if len(rec) <= wordIdx || len(rec) <= levelIdx {
			continue
		}
		level, err := ParseLevel(rec[levelIdx])
		if err != nil {
			continue // ungraded rows are ignored
		}
		e := Entry{Word: rec[wordIdx], Level: level}
		if freqIdx >= 0 && len(rec) > freqIdx {
			if n, err := strconv.ParseInt(strings.TrimSpace(rec[freqIdx]), 10, 64); err == nil {
				e.Freq = n
			}
		}
		entries = append(entries, e)
	}
	return NewIndex(entries), nil
}

// Level returns the minimum difficulty of a word.
func (x *Index) Level(word string) (Level, bool) {
	l, ok := x.levels[strings.ToLower(word)]
	return l, ok
}

// Freq returns the recorded corpus frequency of a word, 0 if unknown.
func (x *Index) Freq(word string) int64 {
	return x.freqs[strings.ToLower(word)]
}

// Words returns all indexed words, unordered.
func (x *Index) Words() []string {
	out := make([]string, 0, len(x.levels))
	for w := range x.levels {
		out = append(out, w)
	}
	return out
}

// Len returns the number of indexed words.
func (x *Index) Len() int { return len(x.levels) }
