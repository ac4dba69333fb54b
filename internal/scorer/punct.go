package scorer

import "strings"

// PunctuationMarks is the fixed, ordered feature basis for punctuation
// frequency vectors. Extraction and validation both build their vectors over
// this list, so the two sides always compare in the same space.
var PunctuationMarks = []string{
	"period", "comma", "semicolon", "colon", "exclam", "qmark", "dash", "quote", "apostrophe", "parenth",
}

var markRunes = map[rune]string{
	'.': "period",
	',': "comma",
	';': "semicolon",
	':': "colon",
	'!': "exclam",
	'?': "qmark",
	'—': "dash",
	'"': "quote",
	'\'': "apostrophe",
	'(': "parenth",
	')': "parenth",
}

// PunctuationProfile counts punctuation marks in text, expressed per 100
// words. Text is expected to be normalized already, so typographic variants
// have been folded to the canonical marks counted here.
func PunctuationProfile(text string) map[string]float64 {
	out := make(map[string]float64, len(PunctuationMarks))
	for _, m := range PunctuationMarks {
		out[m] = 0
	}
	words := len(strings.Fields(text))
	if words == 0 {
		return out
	}
	for _, r := range text {
		if m, ok := markRunes[r]; ok {
			out[m] += 100 / float64(words)
		}
	}
	return out
}
