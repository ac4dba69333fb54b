// Package extract turns raw writing samples into an author voice profile:
// normalize, segment by domain context, score, aggregate, standardize
// against the matching baseline table.
package extract

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/voicemark/internal/baseline"
	"github.com/dshills/voicemark/internal/schema"
	"github.com/dshills/voicemark/internal/scorer"
	"github.com/dshills/voicemark/internal/textnorm"
	"github.com/dshills/voicemark/internal/traits"
)

// ErrInsufficientData is returned when no usable samples remain after
// normalization. Extraction aborts; it never fabricates a zeroed profile.
var ErrInsufficientData = errors.New("extract: insufficient data")

// Sample is one writing sample. An empty DomainID puts the sample into the
// implicit general bucket, which standardizes against the global baseline.
type Sample struct {
	Text     string
	DomainID string
}

// Options configures an extraction run.
type Options struct {
	AuthorID string
	// Logger receives non-fatal diagnostics such as unknown-domain
	// fallbacks. Defaults to a no-op logger.
	Logger *zerolog.Logger
	// ToleranceDefault is the per-category z tolerance recorded on the
	// profile; 0 selects the standard 0.75.
	ToleranceDefault float64
	// SentenceRunMax is the consecutive-long-sentence allowance recorded on
	// the profile; 0 selects the standard 3.
	SentenceRunMax int
}

const (
	defaultTolerance      = 0.75
	defaultSentenceRunMax = 3
)

// Extract normalizes and scores samples, aggregates raw category values per
// domain group (arithmetic mean of raw values — never a mean of per-sample
// z-scores, which would double-normalize), standardizes each group against
// its domain baseline, and merges groups into one profile weighted by sample
// count. Unknown domains fall back to the global baseline and are logged,
// not fatal.
func Extract(samples []Sample, store *baseline.Store, sc scorer.Scorer, opts Options) (*schema.AuthorProfile, error) {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	groups := groupSamples(samples)
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: no non-empty samples", ErrInsufficientData)
	}

	type groupResult struct {
		domain string
		count  int
		scores map[string]schema.CategoryScore
	}
	var results []groupResult

	// Deterministic group order.
	domains := make([]string, 0, len(groups))
	for d := range groups {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	for _, domain := range domains {
		texts := groups[domain]

		agg := make(map[string]float64)
		for _, text := range texts {
			raw, err := sc.Score(text, domain)
			if err != nil {
				return nil, fmt.Errorf("extract: score sample (domain %q): %w", domain, err)
			}
			for cat, v := range raw {
				agg[cat] += v
			}
		}
		n := float64(len(texts))
		for cat := range agg {
			agg[cat] /= n
		}

		resolved, table, fellBack := store.Resolve(domain)
		if fellBack {
			logger.Warn().
				Str("domain", domain).
				Str("fallback", resolved).
				Msg("unknown domain baseline; using global")
		}

		scores := make(map[string]schema.CategoryScore, len(agg))
		for cat, raw := range agg {
			st, ok := table[cat]
			if !ok {
				// Category missing from the baseline table: record the raw
				// value with a zero z rather than inventing statistics.
				scores[cat] = schema.CategoryScore{Raw: raw}
				continue
			}
			scores[cat] = schema.CategoryScore{
				Raw:   raw,
				Mean:  st.Mean,
				Stdev: st.Stdev,
				Z:     st.Z(raw),
			}
		}
		results = append(results, groupResult{domain: domain, count: len(texts), scores: scores})
	}

	// Merge groups, weighting each category score by its group's sample
	// count. Z-scores are comparable across groups because each was
	// standardized against its own domain baseline.
	merged := make(map[string]schema.CategoryScore)
	weights := make(map[string]int)
	var sources []schema.SourceGroup
	for _, r := range results {
		sources = append(sources, schema.SourceGroup{DomainID: r.domain, SampleCount: r.count})
		for cat, cs := range r.scores {
			prev := merged[cat]
			w := weights[cat]
			total := float64(w + r.count)
			merged[cat] = schema.CategoryScore{
				Raw:   (prev.Raw*float64(w) + cs.Raw*float64(r.count)) / total,
				Mean:  (prev.Mean*float64(w) + cs.Mean*float64(r.count)) / total,
				Stdev: (prev.Stdev*float64(w) + cs.Stdev*float64(r.count)) / total,
				Z:     (prev.Z*float64(w) + cs.Z*float64(r.count)) / total,
			}
			weights[cat] = w + r.count
		}
	}

	tol := opts.ToleranceDefault
	if tol == 0 {
		tol = defaultTolerance
	}
	runMax := opts.SentenceRunMax
	if runMax == 0 {
		runMax = defaultSentenceRunMax
	}

	profile := &schema.AuthorProfile{
		SchemaVersion:   schema.SchemaVersion,
		AuthorID:        opts.AuthorID,
		RunID:           uuid.NewString(),
		CreatedAt:       time.Now().UTC(),
		Sources:         sources,
		CategoryScores:  merged,
		Lexicon:         buildLexicon(groups),
		Punctuation:     aggregatePunctuation(groups),
		DefaultControls: deriveControls(merged),
		Tolerance: schema.Tolerance{
			Default:        tol,
			SentenceRunMax: runMax,
		},
	}
	profile.Traits = traits.Map(merged)
	return profile, nil
}

// groupSamples normalizes sample texts and buckets them by domain, dropping
// samples that are empty after normalization.
func groupSamples(samples []Sample) map[string][]string {
	groups := make(map[string][]string)
	for _, s := range samples {
		text := textnorm.Normalize(s.Text)
		if text == "" {
			continue
		}
		groups[s.DomainID] = append(groups[s.DomainID], text)
	}
	return groups
}

// deriveControls infers the default generation controls from the measured
// profile: sentence-length z drives cadence, and the balance of near versus
// far pronouns drives pronoun distance.
func deriveControls(scores map[string]schema.CategoryScore) schema.Controls {
	c := schema.Controls{
		CadencePattern:  schema.CadenceVaried,
		PronounDistance: schema.PronounBalanced,
	}
	if wps, ok := scores["WPS"]; ok {
		switch {
		case wps.Z <= -0.5:
			c.CadencePattern = schema.CadencePunchy
		case wps.Z >= 0.5:
			c.CadencePattern = schema.CadenceFlowing
		}
	}
	near := scores["i"].Z + scores["you"].Z
	far := scores["shehe"].Z + scores["they"].Z
	switch {
	case near-far >= 1.0:
		c.PronounDistance = schema.PronounClose
	case far-near >= 1.0:
		c.PronounDistance = schema.PronounDistant
	}
	return c
}

// aggregatePunctuation averages the per-sample punctuation frequency vectors
// over every sample, in the fixed basis shared with validation.
func aggregatePunctuation(groups map[string][]string) map[string]float64 {
	sum := make(map[string]float64, len(scorer.PunctuationMarks))
	n := 0
	for _, texts := range groups {
		for _, text := range texts {
			for mark, v := range scorer.PunctuationProfile(text) {
				sum[mark] += v
			}
			n++
		}
	}
	if n == 0 {
		return nil
	}
	for mark := range sum {
		sum[mark] /= float64(n)
	}
	return sum
}

// stopwords excluded from signature lexicon buckets.
var stopwords = map[string]bool{
	"about": true, "after": true, "again": true, "because": true, "before": true,
	"being": true, "between": true, "could": true, "every": true, "first": true,
	"other": true, "people": true, "really": true, "should": true, "their": true,
	"there": true, "these": true, "thing": true, "things": true, "think": true,
	"those": true, "through": true, "under": true, "where": true, "which": true,
	"while": true, "would": true, "your": true, "still": true, "going": true,
}

// buildLexicon collects recurring content words across all samples into the
// "signature" bucket. Tokens must be at least five letters, appear at least
// three times, and not be stopwords. The bucket is capped at 24 tokens,
// most frequent first.
func buildLexicon(groups map[string][]string) map[string][]string {
	counts := make(map[string]int)
	for _, texts := range groups {
		for _, text := range texts {
			for _, tok := range strings.Fields(strings.ToLower(text)) {
				tok = strings.Trim(tok, ".,;:!?\"'()[]—-")
				if len(tok) < 5 || stopwords[tok] {
					continue
				}
				counts[tok]++
			}
		}
	}
	type wc struct {
		word  string
		count int
	}
	var recurring []wc
	for w, n := range counts {
		if n >= 3 {
			recurring = append(recurring, wc{w, n})
		}
	}
	if len(recurring) == 0 {
		return nil
	}
	sort.Slice(recurring, func(i, j int) bool {
		if recurring[i].count != recurring[j].count {
			return recurring[i].count > recurring[j].count
		}
		return recurring[i].word < recurring[j].word
	})
	if len(recurring) > 24 {
		recurring = recurring[:24]
	}
	words := make([]string, len(recurring))
	for i, r := range recurring {
		words[i] = r.word
	}
	return map[string][]string{"signature": words}
}
