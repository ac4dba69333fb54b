// Package validate re-scores generated text against a target profile and
// reports category deviations, deterministic-check violations, and
// vector-similarity metrics.
//
// The load-bearing property of this package is how similarity coordinates
// are produced: every z-score comes from the fixed baseline table that
// produced the target profile, never from statistics over the two vectors
// under comparison. Standardizing only the comparison pair forces the two
// vectors to be exact antipodes per feature (cosine -1.0 for any two
// distinct texts), so that construction is excluded here by never computing
// a mean or stdev inside this package at all.
package validate

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/voicemark/internal/baseline"
	"github.com/dshills/voicemark/internal/enforce"
	"github.com/dshills/voicemark/internal/schema"
	"github.com/dshills/voicemark/internal/scorer"
	"github.com/dshills/voicemark/internal/textnorm"
)

// Options configures a validation run.
type Options struct {
	// DomainID selects the baseline table for standardizing the generated
	// text. It must be the domain the target was planned against; empty
	// selects the global baseline. Unknown domains fall back to global,
	// logged the same way extraction logs them.
	DomainID string
	// TargetZ is the effective target z per category (profile plus
	// adjustments plus channel delta). Nil means the profile's own z-scores
	// are the target.
	TargetZ map[string]float64
	// Config, when set, runs the deterministic checks and folds their
	// violations into the report.
	Config *schema.StyleConfig
	// Enforce controls the deterministic checks when Config is set. A zero
	// SentenceRunMax takes the profile's recorded allowance.
	Enforce enforce.Options
	// Logger receives non-fatal diagnostics. Defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Validate re-scores text with the same normalization and baseline tables
// used at extraction time and emits the full diagnostic report.
func Validate(text string, profile *schema.AuthorProfile, store *baseline.Store, sc scorer.Scorer, opts Options) (*schema.ValidationReport, error) {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	if profile == nil {
		return nil, fmt.Errorf("validate: nil profile")
	}

	var violations []schema.Violation
	if opts.Config != nil {
		if opts.Enforce.SentenceRunMax <= 0 {
			opts.Enforce.SentenceRunMax = profile.Tolerance.SentenceRunMax
		}
		res := enforce.Run(text, opts.Config, opts.Enforce)
		violations = res.Violations
		text = res.Text
	}

	normalized := textnorm.Normalize(text)
	if normalized == "" {
		return nil, fmt.Errorf("validate: no text to validate")
	}

	raw, err := sc.Score(normalized, opts.DomainID)
	if err != nil {
		return nil, fmt.Errorf("validate: score generated text: %w", err)
	}

	resolved, table, fellBack := store.Resolve(opts.DomainID)
	if fellBack {
		logger.Warn().
			Str("domain", opts.DomainID).
			Str("fallback", resolved).
			Msg("unknown domain baseline; using global")
	}

	zGen := make(map[string]float64, len(raw))
	for cat, v := range raw {
		if st, ok := table[cat]; ok {
			zGen[cat] = st.Z(v)
		}
	}

	targets := opts.TargetZ
	if targets == nil {
		targets = make(map[string]float64, len(profile.CategoryScores))
		for cat, cs := range profile.CategoryScores {
			targets[cat] = cs.Z
		}
	}

	report := &schema.ValidationReport{
		SchemaVersion:  schema.SchemaVersion,
		ReportID:       uuid.NewString(),
		AuthorID:       profile.AuthorID,
		CreatedAt:      time.Now().UTC(),
		CategoryReport: categoryReport(zGen, targets, profile.Tolerance),
		Violations:     violations,
	}
	report.Similarity = []schema.SimilarityScore{
		categorySimilarity(report.CategoryReport),
		punctuationSimilarity(normalized, profile),
	}
	report.Verdict = DetermineVerdict(report)
	return report, nil
}

// categoryReport builds the per-category deviation entries over the
// categories measurable on both sides, sorted by name.
func categoryReport(zGen, targets map[string]float64, tol schema.Tolerance) []schema.CategoryDeviation {
	cats := make([]string, 0, len(targets))
	for cat := range targets {
		if _, ok := zGen[cat]; ok {
			cats = append(cats, cat)
		}
	}
	sort.Strings(cats)

	out := make([]schema.CategoryDeviation, 0, len(cats))
	for _, cat := range cats {
		dev := zGen[cat] - targets[cat]
		out = append(out, schema.CategoryDeviation{
			Category:        cat,
			ZGenerated:      zGen[cat],
			ZTarget:         targets[cat],
			Deviation:       dev,
			WithinTolerance: math.Abs(dev) <= tol.CategoryTolerance(cat),
		})
	}
	return out
}

// categorySimilarity computes cosine similarity in the liwc_categories
// family, with the generated and target z-vectors as coordinates over the
// shared category basis.
func categorySimilarity(entries []schema.CategoryDeviation) schema.SimilarityScore {
	if len(entries) == 0 {
		return undefinedScore(schema.FamilyLIWCCategories, "no categories measurable on both sides")
	}
	a := make([]float64, len(entries))
	b := make([]float64, len(entries))
	for i, e := range entries {
		a[i] = e.ZGenerated
		b[i] = e.ZTarget
	}
	return cosine(schema.FamilyLIWCCategories, a, b)
}

// punctuationSimilarity compares the punctuation frequency vector of the
// generated text against the profile's recorded punctuation vector, over the
// fixed mark basis.
func punctuationSimilarity(normalized string, profile *schema.AuthorProfile) schema.SimilarityScore {
	if len(profile.Punctuation) == 0 {
		return undefinedScore(schema.FamilyPunctuation, "profile carries no punctuation record")
	}
	gen := scorer.PunctuationProfile(normalized)
	a := make([]float64, len(scorer.PunctuationMarks))
	b := make([]float64, len(scorer.PunctuationMarks))
	for i, mark := range scorer.PunctuationMarks {
		a[i] = gen[mark]
		b[i] = profile.Punctuation[mark]
	}
	return cosine(schema.FamilyPunctuation, a, b)
}

// cosine computes dot(a,b)/(||a||*||b||). A zero-norm vector makes the
// similarity undefined; it is reported as null with an explicit flag, never
// coerced to -1 or 0.
func cosine(family schema.MetricFamily, a, b []float64) schema.SimilarityScore {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return undefinedScore(family, "zero-norm vector")
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return schema.SimilarityScore{Family: family, Score: &sim, Defined: true}
}

func undefinedScore(family schema.MetricFamily, reason string) schema.SimilarityScore {
	return schema.SimilarityScore{Family: family, Score: nil, Defined: false, Reason: reason}
}

// minorSimilarity is the defined category-similarity floor below which an
// otherwise clean report is still a minor deviation.
const minorSimilarity = 0.8

// DetermineVerdict applies the verdict rules to a report.
//
// Rules (in order of precedence):
//  1. Any CRITICAL violation → OFF_VOICE
//  2. Defined liwc_categories similarity below 0 → OFF_VOICE
//  3. Any category outside tolerance, or any WARN violation → DEVIATION_DETECTED
//  4. Any INFO violation, or defined liwc_categories similarity below 0.8 → MINOR_DEVIATION
//  5. Otherwise → CONFORMANT
//
// An undefined similarity never drives the verdict on its own: degeneracy is
// surfaced through the score's flag, not punished as a deviation.
func DetermineVerdict(report *schema.ValidationReport) schema.Verdict {
	for _, v := range report.Violations {
		if v.Severity == schema.SeverityCritical {
			return schema.VerdictOffVoice
		}
	}

	catSim := math.NaN()
	for _, s := range report.Similarity {
		if s.Family == schema.FamilyLIWCCategories && s.Defined {
			catSim = *s.Score
		}
	}
	if !math.IsNaN(catSim) && catSim < 0 {
		return schema.VerdictOffVoice
	}

	for _, e := range report.CategoryReport {
		if !e.WithinTolerance {
			return schema.VerdictDeviationDetected
		}
	}
	for _, v := range report.Violations {
		if v.Severity == schema.SeverityWarn {
			return schema.VerdictDeviationDetected
		}
	}

	if len(report.Violations) > 0 {
		return schema.VerdictMinorDeviation
	}
	if !math.IsNaN(catSim) && catSim < minorSimilarity {
		return schema.VerdictMinorDeviation
	}

	return schema.VerdictConformant
}

// VerdictOrdinal returns the numeric ordinal for a verdict, used to compare
// severity order. CONFORMANT=0, MINOR_DEVIATION=1, DEVIATION_DETECTED=2,
// OFF_VOICE=3. Used by --fail-on comparison: exit 2 if
// VerdictOrdinal(actual) >= VerdictOrdinal(threshold).
func VerdictOrdinal(v schema.Verdict) int {
	switch v {
	case schema.VerdictConformant:
		return 0
	case schema.VerdictMinorDeviation:
		return 1
	case schema.VerdictDeviationDetected:
		return 2
	case schema.VerdictOffVoice:
		return 3
	default:
		return -1
	}
}

// CountSeverities aggregates severity counts across all violations in the
// report.
func CountSeverities(report *schema.ValidationReport) (critical, warn, info int) {
	for _, v := range report.Violations {
		switch v.Severity {
		case schema.SeverityCritical:
			critical++
		case schema.SeverityWarn:
			warn++
		case schema.SeverityInfo:
			info++
		}
	}
	return
}

// SummarizeDeviations counts category entries inside and outside tolerance.
func SummarizeDeviations(entries []schema.CategoryDeviation) (within, beyond int) {
	for _, e := range entries {
		if e.WithinTolerance {
			within++
		} else {
			beyond++
		}
	}
	return
}
