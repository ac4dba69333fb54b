package scorer

import (
	"strings"
	"unicode"
)

// Lexicon is the built-in reference scorer: closed word lists per category,
// expressed as percent of total words, plus the four derived summary
// dimensions (Analytic, Clout, Authentic, Tone) and WPS. It is intentionally
// small — a measurement stand-in with the same output shape and determinism
// guarantees as the production engine, not a replacement for it.
type Lexicon struct{}

// NewLexicon returns the built-in lexicon scorer.
func NewLexicon() *Lexicon {
	return &Lexicon{}
}

// categoryWords are the closed per-category word lists. Tokens are matched
// lowercase after punctuation stripping; apostrophes are kept so
// contractions match as single tokens.
var categoryWords = map[string][]string{
	"i":     {"i", "me", "my", "mine", "myself", "i'm", "i've", "i'll", "i'd"},
	"we":    {"we", "us", "our", "ours", "ourselves", "we're", "we've", "we'll", "we'd"},
	"you":   {"you", "your", "yours", "yourself", "yourselves", "you're", "you've", "you'll", "you'd"},
	"shehe": {"she", "he", "her", "him", "his", "hers", "herself", "himself", "she's", "he's"},
	"they":  {"they", "them", "their", "theirs", "themselves", "they're", "they've", "they'll"},
	"social": {
		"talk", "talked", "talking", "share", "shared", "sharing", "friend", "friends",
		"team", "people", "community", "audience", "everyone", "together", "meet",
		"meeting", "call", "conversation", "listen", "colleague", "colleagues",
	},
	"cogproc": {
		"think", "thinking", "thought", "know", "knowing", "because", "reason",
		"reasons", "consider", "however", "therefore", "means", "cause", "effect",
		"understand", "question", "wonder", "if", "but", "idea", "logic",
	},
	"insight": {
		"think", "know", "realize", "realized", "understand", "understood",
		"insight", "learn", "learned", "learning", "recognize", "aware", "sense",
	},
	"certain": {
		"always", "never", "definitely", "certainly", "clearly", "obviously",
		"sure", "absolutely", "undoubtedly", "every", "must", "proven",
	},
	"tentat": {
		"maybe", "perhaps", "might", "may", "seems", "seemed", "possibly",
		"probably", "roughly", "somewhat", "appears", "guess", "likely", "unsure",
	},
	"posemo": {
		"good", "great", "love", "loved", "happy", "win", "winning", "excellent",
		"thrilled", "excited", "exciting", "wonderful", "best", "beautiful",
		"enjoy", "enjoyed", "glad", "proud", "delighted", "fantastic",
	},
	"negemo": {
		"bad", "hate", "hated", "worry", "worried", "fail", "failed", "failure",
		"awful", "wrong", "terrible", "sad", "angry", "frustrating", "frustrated",
		"painful", "problem", "problems", "worst", "fear",
	},
	"achieve": {
		"win", "won", "success", "successful", "achieve", "achieved", "goal",
		"goals", "improve", "improved", "effort", "progress", "accomplish",
		"milestone", "deliver", "delivered", "ship", "shipped",
	},
	"power": {
		"lead", "leader", "leading", "control", "own", "authority", "manage",
		"managed", "drive", "driving", "direct", "command", "influence", "decide",
	},
	"risk": {
		"risk", "risks", "risky", "danger", "dangerous", "threat", "avoid",
		"avoided", "loss", "losses", "exposure", "downside", "caution",
	},
	"focuspast": {
		"was", "were", "had", "did", "ago", "yesterday", "once", "earlier",
		"previously", "used", "began", "started", "happened", "wrote", "built",
	},
	"focuspresent": {
		"is", "are", "am", "now", "today", "currently", "here", "being",
		"happens", "means", "does", "works",
	},
	"focusfuture": {
		"will", "going", "soon", "tomorrow", "plan", "plans", "planning",
		"shall", "upcoming", "next", "future", "eventually",
	},
	"informal": {
		"lol", "yeah", "yep", "ok", "okay", "gonna", "wanna", "kinda", "sorta",
		"btw", "stuff", "things", "pretty", "really", "super", "basically",
	},
}

// Function-word classes feeding the derived summary dimensions.
var (
	articleWords = []string{"the", "a", "an"}
	prepWords    = []string{
		"in", "on", "at", "of", "for", "with", "about", "between", "through",
		"over", "under", "from", "to", "into", "during", "before", "after",
	}
	auxWords = []string{
		"is", "are", "was", "were", "be", "been", "being", "have", "has", "had",
		"do", "does", "did", "can", "could", "would", "should", "will",
	}
	adverbWords = []string{
		"very", "really", "just", "quite", "too", "also", "often", "always",
		"never", "maybe", "probably",
	}
	conjWords = []string{"and", "but", "or", "so", "because", "while", "although", "if"}
	negWords  = []string{"no", "not", "never", "none", "nothing", "don't", "won't", "can't", "isn't"}
)

var sentenceEnders = map[rune]bool{'.': true, '!': true, '?': true}

// Score tokenizes text and returns raw category values: percent-of-words for
// lexical categories, WPS (mean words per sentence), and the derived
// Analytic/Clout/Authentic/Tone summary dimensions on a 1-99 scale. The
// domain hint is accepted for interface compatibility and ignored.
func (l *Lexicon) Score(text string, _ string) (map[string]float64, error) {
	tokens, sentences := tokenize(text)
	out := make(map[string]float64, len(categoryWords)+5)
	if len(tokens) == 0 {
		for cat := range categoryWords {
			out[cat] = 0
		}
		out["WPS"] = 0
		out["Analytic"] = 50
		out["Clout"] = 50
		out["Authentic"] = 50
		out["Tone"] = 50
		return out, nil
	}

	counts := make(map[string]int)
	total := float64(len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}

	pct := func(words []string) float64 {
		n := 0
		for _, w := range words {
			n += counts[w]
		}
		return 100 * float64(n) / total
	}

	for cat, words := range categoryWords {
		out[cat] = pct(words)
	}

	if sentences == 0 {
		sentences = 1
	}
	out["WPS"] = total / float64(sentences)

	// Derived dimensions follow the categorical-dynamic-index construction:
	// function-word classes push the score up or down around a midpoint, and
	// the result is clamped to the 1-99 reporting scale.
	article := pct(articleWords)
	prep := pct(prepWords)
	aux := pct(auxWords)
	adverb := pct(adverbWords)
	conj := pct(conjWords)
	negate := pct(negWords)
	pronoun := out["i"] + out["we"] + out["you"] + out["shehe"] + out["they"]

	out["Analytic"] = clamp99(48 + 2.5*(article+prep) - 1.5*(pronoun+aux+adverb+conj+negate))
	out["Clout"] = clamp99(50 + 4*(out["we"]+out["you"]) - 3*out["i"])
	out["Authentic"] = clamp99(40 + 3*(out["i"]+out["insight"]) - 2*(out["shehe"]+out["they"]))
	out["Tone"] = clamp99(50 + 8*(out["posemo"]-out["negemo"]))

	return out, nil
}

// CategoryVocabulary returns a copy of the closed word list for a lexical
// category, or nil for categories without one (WPS and the derived summary
// dimensions).
func CategoryVocabulary(category string) []string {
	words := categoryWords[category]
	if len(words) == 0 {
		return nil
	}
	return append([]string(nil), words...)
}

func clamp99(v float64) float64 {
	if v < 1 {
		return 1
	}
	if v > 99 {
		return 99
	}
	return v
}

// tokenize lowercases text, splits on non-letter boundaries (keeping
// apostrophes inside words so contractions stay whole), and counts sentence
// terminator runs.
func tokenize(text string) (tokens []string, sentences int) {
	var cur strings.Builder
	inTerminator := false
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range strings.ToLower(text) {
		if sentenceEnders[r] {
			if !inTerminator {
				sentences++
				inTerminator = true
			}
			flush()
			continue
		}
		inTerminator = false
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' {
			cur.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return tokens, sentences
}
