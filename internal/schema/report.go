package schema

import "time"

// Verdict is the overall style-conformance verdict for a validation run.
type Verdict string

const (
	VerdictConformant        Verdict = "CONFORMANT"
	VerdictMinorDeviation    Verdict = "MINOR_DEVIATION"
	VerdictDeviationDetected Verdict = "DEVIATION_DETECTED"
	VerdictOffVoice          Verdict = "OFF_VOICE"
)

// Severity is the severity level of an enforcement violation.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarn     Severity = "WARN"
	SeverityCritical Severity = "CRITICAL"
)

// CheckType identifies which deterministic check produced a violation.
type CheckType string

const (
	CheckTypography      CheckType = "typography"
	CheckSentenceRun     CheckType = "sentence_run"
	CheckPronounDistance CheckType = "pronoun_distance"
	CheckMetaphorSet     CheckType = "metaphor_set"
	CheckEvidencePairing CheckType = "evidence_pairing"
)

// MetricFamily tags a similarity score with the feature space it was
// computed in.
type MetricFamily string

const (
	FamilyLIWCCategories MetricFamily = "liwc_categories"
	FamilyPunctuation    MetricFamily = "punctuation"
)

// Violation is one finding from a deterministic check. Sentences holds
// 0-based sentence indexes where the violation was observed, when the check
// can localize it.
type Violation struct {
	Check     CheckType `json:"check"`
	Severity  Severity  `json:"severity"`
	Detail    string    `json:"detail"`
	Sentences []int     `json:"sentences,omitempty"`
}

// CategoryDeviation compares one category of the generated text against the
// target profile.
type CategoryDeviation struct {
	Category        string  `json:"category"`
	ZGenerated      float64 `json:"z_generated"`
	ZTarget         float64 `json:"z_target"`
	Deviation       float64 `json:"deviation"`
	WithinTolerance bool    `json:"within_tolerance"`
}

// SimilarityScore is one vector-similarity measurement. Score is null on the
// wire when the computation was degenerate (a zero-norm vector); Defined and
// Reason make the condition explicit rather than hiding it inside a
// plausible-range float.
type SimilarityScore struct {
	Family  MetricFamily `json:"family"`
	Score   *float64     `json:"score"`
	Defined bool         `json:"defined"`
	Reason  string       `json:"reason,omitempty"`
}

// ValidationReport is the full diagnostic output of a validation run.
type ValidationReport struct {
	SchemaVersion  string              `json:"schema_version"`
	ReportID       string              `json:"report_id"`
	AuthorID       string              `json:"author_id"`
	CreatedAt      time.Time           `json:"created_at"`
	Verdict        Verdict             `json:"verdict"`
	CategoryReport []CategoryDeviation `json:"category_report"`
	Violations     []Violation         `json:"violations"`
	Similarity     []SimilarityScore   `json:"similarity"`
}
