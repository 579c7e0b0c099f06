// Package readability estimates the Flesch-Kincaid grade level of a text
// from word, sentence and syllable counts.
package readability

import (
	"strings"
	"unicode"
)

// Grade returns the approximate Flesch-Kincaid grade level of text.
// ok is false when the text is empty or has no countable words, in which
// case the text is unscorable and callers should treat it as filtered out.
func Grade(text string) (grade float64, ok bool) {
	words := countWords(text)
	if words == 0 {
		return 0, false
	}
	sentences := countSentences(text)
	if sentences == 0 {
		sentences = 1
	}
	syllables := 0
	for _, w := range strings.Fields(text) {
		syllables += countSyllables(w)
	}
	g := 0.39*(float64(words)/float64(sentences)) +
		11.8*(float64(syllables)/float64(words)) - 15.59
	return g, true
}

func countWords(text string) int {
	n := 0
	for _, f := range strings.Fields(text) {
		if strings.ContainsFunc(f, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r)
		}) {
			n++
		}
	}
	return n
}

// countSentences counts runs of terminator punctuation so that "Wait..."
// or "Really?!" counts as a single sentence end.
func countSentences(text string) int {
	n := 0
	inRun := false
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			if !inRun {
				n++
				inRun = true
			}
		default:
			inRun = false
		}
	}
	return n
}

// countSyllables approximates syllables as vowel groups, with the usual
// silent-e adjustment. Every word counts at least one.
func countSyllables(word string) int {
	word = strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r)
	}))
	if word == "" {
		return 1
	}
	groups := 0
	prevVowel := false
	for _, r := range word {
		v := isVowel(r)
		if v && !prevVowel {
			groups++
		}
		prevVowel = v
	}
	if groups > 1 && strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") {
		groups--
	}
	if groups < 1 {
		groups = 1
	}
	return groups
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
