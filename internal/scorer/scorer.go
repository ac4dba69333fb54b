// Package scorer defines the category scorer interface the pipeline measures
// text through, plus a built-in lexicon scorer. The production LIWC-grade
// engine is an external collaborator that plugs in behind the same
// interface; the built-in scorer exists so the pipeline runs end to end in
// tests and the CLI without it.
package scorer

// Scorer maps text to raw linguistic-category values. Implementations must
// be deterministic for identical input: extraction and validation both rely
// on re-scoring producing comparable numbers. The domain hint may inform
// tokenization (e.g. hashtag handling) and may be empty; it must never make
// the result nondeterministic.
type Scorer interface {
	Score(text string, domainHint string) (map[string]float64, error)
}
