// Package sentence provides the shared sentence segmentation primitives used
// by the deterministic enforcer and the validator. Both sides must segment
// identically or sentence-indexed violation positions stop lining up, so the
// splitter lives here and nowhere else.
package sentence

import (
	"strings"
	"unicode"
)

// Sentence is one segmented sentence. Index is the 0-based position in the
// segmented text; Text keeps the original spacing trimmed at both ends.
type Sentence struct {
	Index int
	Text  string
}

// abbreviations that end with a period without ending a sentence. Matched
// lowercase against the token preceding the period. This list is closed and
// intentionally short; an unlisted abbreviation causes an extra split, which
// downstream checks tolerate better than a missed one.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"sr": true, "jr": true, "st": true, "vs": true, "etc": true,
	"approx": true, "dept": true, "fig": true, "inc": true, "est": true,
	"e.g": true, "i.e": true, "u.s": true, "u.k": true,
}

// closers may follow a terminator and still belong to the sentence.
var closers = map[rune]bool{'"': true, '\'': true, ')': true, ']': true, '”': true, '’': true}

// Split segments text into sentences. Boundaries are runs of '.', '!', '?'
// (plus any trailing closers) followed by whitespace and an uppercase
// letter, digit, or opening quote — so decimal numbers and lowercase
// continuations do not split. A blank line always ends the current
// sentence. Setext-style prose tricks (a terminator with no following
// space) are intentionally not treated as boundaries.
func Split(text string) []Sentence {
	var out []Sentence
	runes := []rune(text)
	start := 0

	flush := func(end int) {
		seg := strings.TrimSpace(string(runes[start:end]))
		if seg != "" {
			out = append(out, Sentence{Index: len(out), Text: seg})
		}
		start = end
	}

	i := 0
	for i < len(runes) {
		r := runes[i]

		// Paragraph break: blank line terminates unconditionally.
		if r == '\n' {
			j := i
			for j < len(runes) && (runes[j] == '\n' || runes[j] == ' ' || runes[j] == '\t') {
				j++
			}
			if strings.Count(string(runes[i:j]), "\n") >= 2 || j == len(runes) {
				flush(i)
				start = j
				i = j
				continue
			}
			i++
			continue
		}

		if r != '.' && r != '!' && r != '?' {
			i++
			continue
		}

		// Consume the terminator run (covers "..." and "?!").
		j := i
		for j < len(runes) && (runes[j] == '.' || runes[j] == '!' || runes[j] == '?') {
			j++
		}
		// Consume trailing closers.
		for j < len(runes) && closers[runes[j]] {
			j++
		}

		if r == '.' && j-i == 1 && isAbbreviation(runes, i) {
			i = j
			continue
		}

		// End of text: always a boundary.
		if j >= len(runes) {
			flush(j)
			i = j
			continue
		}
		// Whitespace followed by a sentence opener: boundary.
		if unicode.IsSpace(runes[j]) {
			k := j
			for k < len(runes) && unicode.IsSpace(runes[k]) {
				k++
			}
			if k >= len(runes) || isOpener(runes[k]) {
				flush(j)
				start = k
				i = k
				continue
			}
		}
		i = j
	}
	flush(len(runes))
	return out
}

// isAbbreviation reports whether the period at runes[dot] terminates a known
// abbreviation rather than a sentence.
func isAbbreviation(runes []rune, dot int) bool {
	// Walk back over the token (letters and interior periods, for "e.g").
	start := dot
	for start > 0 {
		r := runes[start-1]
		if unicode.IsLetter(r) || r == '.' {
			start--
			continue
		}
		break
	}
	if start == dot {
		return false
	}
	tok := strings.ToLower(strings.TrimSuffix(string(runes[start:dot]), "."))
	tok = strings.TrimPrefix(tok, ".")
	if abbreviations[tok] {
		return true
	}
	// Single-letter initials ("J. Smith").
	if dot-start == 1 && unicode.IsUpper(runes[start]) {
		return true
	}
	return false
}

// isOpener reports whether r can start a sentence after a boundary.
func isOpener(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsDigit(r) || r == '"' || r == '\'' ||
		r == '(' || r == '“' || r == '‘'
}

// WordCount counts whitespace-delimited words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
