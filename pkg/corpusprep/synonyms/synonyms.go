// Package synonyms applies a word-to-word replacement map to text, used to
// simplify vocabulary in training corpora. The map is built offline (see
// the cefr package) and is read-only for the lifetime of a pipeline run.
package synonyms

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/edulang/corpusprep/pkg/corpusprep/internalerr"
)

// Map maps a lowercase word to its lowercase replacement. Keys are unique;
// a value must not also appear as a key, so lookup never chains.
type Map map[string]string

// New normalizes the given mapping to lowercase keys and values.
func New(mapping map[string]string) Map {
	m := make(Map, len(mapping))
	for k, v := range mapping {
		m[strings.ToLower(strings.TrimSpace(k))] = strings.ToLower(strings.TrimSpace(v))
	}
	return m
}

// Validate reports an error if any value is also a key. Such a map would
// make replacement order-dependent; the builder refuses to emit one, and
// consumers refuse to load one.
func (m Map) Validate() error {
	for k, v := range m {
		if _, clash := m[v]; clash {
			return fmt.Errorf("%w: value %q of key %q is itself a key", internalerr.ErrInvalidInput, v, k)
		}
	}
	return nil
}

// Mapper rewrites text tokens through a Map, preserving the capitalization
// pattern of each original token and leaving punctuation untouched.
type Mapper struct {
	m Map
}

// NewMapper creates a Mapper over the given map.
func NewMapper(m Map) *Mapper {
	return &Mapper{m: m}
}

// Rewrite replaces every mapped word in text. Lookup is single pass: a
// replacement is never looked up again within the same call.
func (mp *Mapper) Rewrite(text string) string {
	if len(mp.m) == 0 {
		return text
	}
	var out strings.Builder
	out.Grow(len(text))
	var word strings.Builder
	flush := func() {
		if word.Len() == 0 {
			return
		}
		w := word.String()
		if repl, ok := mp.m[strings.ToLower(w)]; ok {
			out.WriteString(matchCase(w, repl))
		} else {
			out.WriteString(w)
		}
		word.Reset()
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			word.WriteRune(r)
		} else {
			flush()
			out.WriteRune(r)
		}
	}
	flush()
	return out.String()
}

// matchCase adjusts repl to mimic the case pattern of src: ALLCAPS stays
// upper, Titlecase titlecases each word of the replacement, anything else
// passes the replacement through as stored (lowercase).
func matchCase(src, repl string) string {
	if isUpper(src) {
		return strings.ToUpper(repl)
	}
	if isTitle(src) {
		return titleWords(repl)
	}
	return repl
}

func isUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func isTitle(s string) bool {
	runes := []rune(s)
	if len(runes) < 2 || !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if unicode.IsLetter(r) && !unicode.IsLower(r) {
			return false
		}
	}
	return true
}

func titleWords(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
