// Package enforce runs the deterministic, LLM-free checks over generated
// text: typography, sentence-length run gating, pronoun-distance drift,
// metaphor-set coherence, and evidence pairing. Every check is pure and
// idempotent on already-conformant text. A failed check is reported, never
// raised — the caller decides remediation.
package enforce

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/dshills/voicemark/internal/schema"
	"github.com/dshills/voicemark/internal/sentence"
	"github.com/dshills/voicemark/internal/textnorm"
)

// Options controls enforcement behavior for one deployment.
type Options struct {
	// FixTypography rewrites the text to its normalized form instead of only
	// reporting the drift. The choice is per deployment and must stay
	// consistent: a pipeline either always fixes or always reports.
	FixTypography bool
	// Strict escalates violation severities one level.
	Strict bool
	// SentenceRunMax is the number of consecutive over-length sentences
	// tolerated before the run is flagged. Zero means the default of 3.
	SentenceRunMax int
}

// CheckResult is the outcome of one deterministic check.
type CheckResult struct {
	Check      schema.CheckType   `json:"check"`
	Passed     bool               `json:"passed"`
	Violations []schema.Violation `json:"violations,omitempty"`
}

// Result is the combined output of an enforcement run. Text is the input
// text, typography-fixed when Options.FixTypography is set.
type Result struct {
	Text       string             `json:"text"`
	Checks     []CheckResult      `json:"checks"`
	Violations []schema.Violation `json:"violations,omitempty"`
}

// Passed reports whether every check passed.
func (r *Result) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// sentenceRunThresholds maps a cadence pattern to the per-sentence word
// count above which a sentence counts as long for run gating.
var sentenceRunThresholds = map[string]int{
	schema.CadencePunchy:  15,
	schema.CadenceVaried:  25,
	schema.CadenceFlowing: 35,
}

// Run executes every deterministic check against text under cfg. It never
// returns an error: a malformed config simply leaves its dependent checks
// with nothing to enforce, and they pass.
func Run(text string, cfg *schema.StyleConfig, opts Options) *Result {
	runMax := opts.SentenceRunMax
	if runMax <= 0 {
		runMax = 3
	}

	res := &Result{Text: text}

	typo := checkTypography(text, opts.FixTypography)
	if opts.FixTypography {
		res.Text = textnorm.Normalize(text)
	}
	res.Checks = append(res.Checks, typo)

	// The remaining checks run over the (possibly fixed) text so reported
	// sentence indexes match what the caller receives back.
	sentences := sentence.Split(res.Text)
	res.Checks = append(res.Checks,
		checkSentenceRuns(sentences, cfg, runMax),
		checkPronounDistance(sentences, cfg),
		checkMetaphorSets(sentences, cfg),
		checkEvidencePairing(sentences, cfg),
	)

	for i := range res.Checks {
		for j := range res.Checks[i].Violations {
			res.Checks[i].Violations[j] = escalate(res.Checks[i].Violations[j], opts.Strict)
		}
		res.Violations = append(res.Violations, res.Checks[i].Violations...)
	}
	return res
}

// escalate raises a violation's severity one level in strict mode:
// INFO → WARN, WARN → CRITICAL; CRITICAL is unchanged.
func escalate(v schema.Violation, strict bool) schema.Violation {
	if !strict {
		return v
	}
	switch v.Severity {
	case schema.SeverityInfo:
		v.Severity = schema.SeverityWarn
	case schema.SeverityWarn:
		v.Severity = schema.SeverityCritical
	}
	return v
}

// checkTypography compares the text against its normalized form. When the
// two differ the text carries smart quotes, irregular dashes, or stray
// whitespace that the normalizer folds.
func checkTypography(text string, fixed bool) CheckResult {
	norm := textnorm.Normalize(text)
	if norm == strings.TrimSpace(text) {
		return CheckResult{Check: schema.CheckTypography, Passed: true}
	}
	detail := "text differs from its normalized form (quotes, dashes, or whitespace)"
	if fixed {
		detail += "; normalization was applied"
	}
	return CheckResult{
		Check:  schema.CheckTypography,
		Passed: fixed,
		Violations: []schema.Violation{{
			Check:    schema.CheckTypography,
			Severity: schema.SeverityInfo,
			Detail:   detail,
		}},
	}
}

// checkSentenceRuns flags runs of more than runMax consecutive sentences
// whose word count exceeds the cadence threshold.
func checkSentenceRuns(sentences []sentence.Sentence, cfg *schema.StyleConfig, runMax int) CheckResult {
	out := CheckResult{Check: schema.CheckSentenceRun, Passed: true}
	threshold, ok := sentenceRunThresholds[cfg.CadencePattern]
	if !ok {
		return out
	}

	var run []int
	flag := func() {
		if len(run) > runMax {
			out.Passed = false
			out.Violations = append(out.Violations, schema.Violation{
				Check:    schema.CheckSentenceRun,
				Severity: schema.SeverityWarn,
				Detail: fmt.Sprintf("%d consecutive sentences exceed %d words (max run %d for %s cadence)",
					len(run), threshold, runMax, cfg.CadencePattern),
				Sentences: append([]int(nil), run...),
			})
		}
		run = run[:0]
	}
	for _, s := range sentences {
		if sentence.WordCount(s.Text) > threshold {
			run = append(run, s.Index)
			continue
		}
		flag()
	}
	flag()
	return out
}

// Pronoun classes for distance drift. Close pronouns address the reader or
// speak in the first person singular; distant pronouns are third person.
var (
	closePronouns = map[string]bool{
		"i": true, "me": true, "my": true, "mine": true, "myself": true,
		"you": true, "your": true, "yours": true, "yourself": true, "yourselves": true,
		"we": true, "us": true, "our": true, "ours": true, "ourselves": true,
	}
	distantPronouns = map[string]bool{
		"he": true, "him": true, "his": true, "himself": true,
		"she": true, "her": true, "hers": true, "herself": true,
		"they": true, "them": true, "their": true, "theirs": true, "themselves": true,
		"one": true, "oneself": true,
	}
)

// closenessBands maps a pronoun_distance target to the accepted range of
// close/(close+distant) ratio.
var closenessBands = map[string]struct{ lo, hi float64 }{
	schema.PronounClose:    {0.6, 1.0},
	schema.PronounBalanced: {0.3, 0.7},
	schema.PronounDistant:  {0.0, 0.4},
}

// checkPronounDistance measures close vs distant pronoun density against the
// pronoun_distance target and reports the sentences carrying the off-target
// pole.
func checkPronounDistance(sentences []sentence.Sentence, cfg *schema.StyleConfig) CheckResult {
	out := CheckResult{Check: schema.CheckPronounDistance, Passed: true}
	band, ok := closenessBands[cfg.PronounDistance]
	if !ok {
		return out
	}

	var close, distant int
	closeAt := make(map[int]bool)
	distantAt := make(map[int]bool)
	for _, s := range sentences {
		for _, w := range words(s.Text) {
			switch {
			case closePronouns[w]:
				close++
				closeAt[s.Index] = true
			case distantPronouns[w]:
				distant++
				distantAt[s.Index] = true
			}
		}
	}
	total := close + distant
	if total == 0 {
		// No personal pronouns at all: nothing to measure.
		return out
	}

	ratio := float64(close) / float64(total)
	if ratio >= band.lo && ratio <= band.hi {
		return out
	}

	// The offending pole is whichever side pushed the ratio out of band.
	offending := distantAt
	if ratio > band.hi {
		offending = closeAt
	}
	out.Passed = false
	out.Violations = append(out.Violations, schema.Violation{
		Check:    schema.CheckPronounDistance,
		Severity: schema.SeverityWarn,
		Detail: fmt.Sprintf("close-pronoun ratio %.2f outside [%.2f, %.2f] for %q target",
			ratio, band.lo, band.hi, cfg.PronounDistance),
		Sentences: sortedIndexes(offending),
	})
	return out
}

// metaphorStems names the figurative vocabulary of each known metaphor set.
// Tokens are matched by prefix so inflections ("navigating", "anchored")
// hit their stem.
var metaphorStems = map[string][]string{
	"machinery":  {"engine", "gear", "lever", "machin", "piston", "clockwork", "friction"},
	"sports":     {"sprint", "marathon", "scoreboard", "playbook", "hurdle", "finish line", "home run"},
	"nature":     {"root", "branch", "seed", "bloom", "harvest", "ecosystem", "tide", "river"},
	"war":        {"battle", "trench", "ammunition", "front line", "siege", "arsenal", "crossfire"},
	"cooking":    {"recipe", "ingredient", "simmer", "half-baked", "marinate", "boil", "flavor"},
	"navigation": {"compass", "anchor", "chart a", "navigat", "north star", "harbor", "drift off course"},
}

// checkMetaphorSets flags figurative vocabulary that belongs to a known
// metaphor set not listed in the config. With no configured sets every
// figurative register is acceptable and the check passes.
func checkMetaphorSets(sentences []sentence.Sentence, cfg *schema.StyleConfig) CheckResult {
	out := CheckResult{Check: schema.CheckMetaphorSet, Passed: true}
	if len(cfg.MetaphorSets) == 0 {
		return out
	}
	allowed := make(map[string]bool, len(cfg.MetaphorSets))
	for _, set := range cfg.MetaphorSets {
		allowed[set] = true
	}

	hits := make(map[string]map[int]bool) // set -> sentence indexes
	for _, s := range sentences {
		lower := strings.ToLower(s.Text)
		for set, stems := range metaphorStems {
			if allowed[set] {
				continue
			}
			for _, stem := range stems {
				if strings.Contains(lower, stem) {
					if hits[set] == nil {
						hits[set] = make(map[int]bool)
					}
					hits[set][s.Index] = true
					break
				}
			}
		}
	}

	sets := make([]string, 0, len(hits))
	for set := range hits {
		sets = append(sets, set)
	}
	sort.Strings(sets)
	for _, set := range sets {
		out.Passed = false
		out.Violations = append(out.Violations, schema.Violation{
			Check:    schema.CheckMetaphorSet,
			Severity: schema.SeverityWarn,
			Detail: fmt.Sprintf("figurative language from unconfigured set %q (configured: %s)",
				set, strings.Join(cfg.MetaphorSets, ", ")),
			Sentences: sortedIndexes(hits[set]),
		})
	}
	return out
}

// Claim and evidence markers for the pairing heuristic. A sentence is a
// claim when it asserts without hedging; evidence is citation-shaped
// language or concrete numbers.
var (
	claimMarkers = []string{
		"must", "always", "never", "clearly", "obviously", "proves",
		"the best", "the worst", "essential", "guarantees", "undeniably",
		"everyone knows", "without question",
	}
	evidenceMarkers = []string{
		"according to", "study", "studies", "research", "data", "survey",
		"found that", "reported", "for example", "for instance", "e.g.",
		"source", "measured", "benchmark", "%",
	}
)

// evidenceWindows maps evidence_density to how many following sentences may
// separate a claim from its supporting evidence.
var evidenceWindows = map[string]int{"high": 1, "medium": 2, "low": 3}

// checkEvidencePairing flags claim sentences with no evidence within the
// configured window. An empty evidence_density disables the check.
func checkEvidencePairing(sentences []sentence.Sentence, cfg *schema.StyleConfig) CheckResult {
	out := CheckResult{Check: schema.CheckEvidencePairing, Passed: true}
	window, ok := evidenceWindows[cfg.EvidenceDensity]
	if !ok {
		return out
	}

	isEvidence := make([]bool, len(sentences))
	for i, s := range sentences {
		isEvidence[i] = containsAny(strings.ToLower(s.Text), evidenceMarkers)
	}

	var unpaired []int
	for i, s := range sentences {
		lower := strings.ToLower(s.Text)
		if !containsAny(lower, claimMarkers) || isEvidence[i] {
			continue
		}
		paired := false
		for j := i + 1; j <= i+window && j < len(sentences); j++ {
			if isEvidence[j] {
				paired = true
				break
			}
		}
		if !paired {
			unpaired = append(unpaired, s.Index)
		}
	}
	if len(unpaired) > 0 {
		out.Passed = false
		out.Violations = append(out.Violations, schema.Violation{
			Check:    schema.CheckEvidencePairing,
			Severity: schema.SeverityWarn,
			Detail: fmt.Sprintf("%d claim sentence(s) without evidence within %d sentence(s) (%s density)",
				len(unpaired), window, cfg.EvidenceDensity),
			Sentences: unpaired,
		})
	}
	return out
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// words lowercases and splits a sentence on non-letter boundaries, keeping
// interior apostrophes so contractions stay whole.
func words(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func sortedIndexes(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
