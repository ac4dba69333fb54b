// Package schema defines all canonical data types shared across the voice
// profiling pipeline: author profiles, baseline adjustments, style configs,
// and validation reports. The style config key set and all enums are closed;
// decoding rejects anything outside them.
package schema

import (
	"encoding/json"
	"fmt"
	"time"
)

// SchemaVersion is written into every exported profile and report so
// downstream consumers can detect incompatible changes.
const SchemaVersion = "1.0"

// CategoryScore holds one linguistic category measurement relative to the
// baseline it was scored against. Mean and Stdev are the baseline reference
// statistics, Raw is the aggregated measured value, and Z is the standardized
// deviation. Stdev is never negative; when Stdev is 0, Z is defined as 0.
type CategoryScore struct {
	Raw   float64 `json:"raw"`
	Mean  float64 `json:"mean"`
	Stdev float64 `json:"stdev"`
	Z     float64 `json:"z"`
}

// SourceGroup records how many samples of one domain contributed to a profile.
type SourceGroup struct {
	DomainID    string `json:"domain_id"`
	SampleCount int    `json:"sample_count"`
}

// Controls are the generation-time defaults carried by a profile. Any of them
// may be overridden at plan time.
type Controls struct {
	Mode            string `json:"mode,omitempty"`
	Audience        string `json:"audience,omitempty"`
	Goal            string `json:"goal,omitempty"`
	CadencePattern  string `json:"cadence_pattern,omitempty"`
	PronounDistance string `json:"pronoun_distance,omitempty"`
}

// Tolerance bounds how far generated text may deviate from the profile
// before the validator flags a category, and how many consecutive long
// sentences the enforcer allows.
type Tolerance struct {
	Categories     map[string]float64 `json:"categories,omitempty"`
	Default        float64            `json:"default"`
	SentenceRunMax int                `json:"sentence_run_max"`
}

// CategoryTolerance returns the tolerance for a category, falling back to
// the default when no per-category value is set.
func (t Tolerance) CategoryTolerance(category string) float64 {
	if v, ok := t.Categories[category]; ok {
		return v
	}
	return t.Default
}

// AuthorProfile is the quantitative voice fingerprint produced by extraction.
// CategoryScores are the empirical record and are never mutated after
// extraction; percentile adjustments live in a separate AdjustmentSet.
type AuthorProfile struct {
	SchemaVersion   string                        `json:"schema_version"`
	AuthorID        string                        `json:"author_id"`
	RunID           string                        `json:"run_id"`
	CreatedAt       time.Time                     `json:"created_at"`
	Sources         []SourceGroup                 `json:"sources"`
	CategoryScores  map[string]CategoryScore      `json:"category_scores"`
	Traits          map[string]map[string]float64 `json:"traits,omitempty"`
	Lexicon         map[string][]string           `json:"lexicon,omitempty"`
	Punctuation     map[string]float64            `json:"punctuation,omitempty"`
	DefaultControls Controls                      `json:"default_controls"`
	Tolerance       Tolerance                     `json:"tolerance"`
}

// AdjustmentSet holds user-specified percentile deltas per category. It is
// global: the same set applies to every output channel. This is a deliberate,
// load-bearing invariant, not an omission — channel variation is expressed
// through domain deltas at plan time instead.
type AdjustmentSet map[string]float64

// MarshalProfile serializes a profile for export, stamping the current
// schema version.
func MarshalProfile(p *AuthorProfile) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("schema: nil profile")
	}
	out := *p
	out.SchemaVersion = SchemaVersion
	b, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("schema: marshal profile: %w", err)
	}
	return b, nil
}

// UnmarshalProfile parses an exported profile and fails closed on a schema
// version this build does not understand.
func UnmarshalProfile(data []byte) (*AuthorProfile, error) {
	var p AuthorProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("schema: unmarshal profile: %w", err)
	}
	if p.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("schema: unsupported profile schema_version %q (want %q)",
			p.SchemaVersion, SchemaVersion)
	}
	return &p, nil
}
