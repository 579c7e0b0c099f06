package cefr

import (
	"os"
	"strings"
)

// Source supplies candidate synonyms for a word. Suggestions are raw: the
// builder intersects them with the easy vocabulary before selection.
type Source interface {
	Synonyms(word string) []string
}

// Thesaurus is a flat-file Source.
type Thesaurus struct {
	entries map[string][]string
}

// LoadThesaurus reads a pipe-delimited synonym file:
//
//	# comment
//	word|synonym1|synonym2|...
//
// Lookups are case-insensitive; suggestion order is preserved as written.
func LoadThesaurus(path string) (*Thesaurus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	th := &Thesaurus{entries: make(map[string][]string)}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) < 2 {
			continue
		}
		head := strings.ToLower(strings.TrimSpace(parts[0]))
		if head == "" {
			continue
		}
		syns := make([]string, 0, len(parts)-1)
		for _, p := range parts[1:] {
			s := strings.ToLower(strings.TrimSpace(p))
			if s != "" && s != head {
				syns = append(syns, s)
			}
		}
		th.entries[head] = append(th.entries[head], syns...)
	}
	return th, nil
}

// Synonyms returns the recorded suggestions for word, nil when absent.
func (t *Thesaurus) Synonyms(word string) []string {
	return t.entries[strings.ToLower(word)]
}

// Len returns the number of head words.
func (t *Thesaurus) Len() int { return len(t.entries) }
