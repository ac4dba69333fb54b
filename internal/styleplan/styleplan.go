// Package styleplan merges profile, adjustments, channel deltas, and caller
// overrides into a single style config plus lexicon-bias hints. Per-category
// targets are the three-term sum baseline_z + adjustment_z + channel_delta_z,
// bucketed into coarse descriptors; the config carries descriptors, never raw
// floats, to keep the downstream generation contract small and stable.
package styleplan

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dshills/voicemark/internal/adjust"
	"github.com/dshills/voicemark/internal/baseline"
	"github.com/dshills/voicemark/internal/schema"
	"github.com/dshills/voicemark/internal/scorer"
)

// ChannelSpec is the metadata of one output channel: the baseline domain it
// standardizes against and its default directive values.
type ChannelSpec struct {
	ID              string
	DomainID        string
	Mode            string
	Audience        string
	Goal            string
	CadencePattern  string
	PronounDistance string
	EvidenceDensity string
}

// builtins is the registry of built-in channels keyed by id.
var builtins = map[string]ChannelSpec{
	"blog": {
		ID:              "blog",
		DomainID:        "blog",
		Mode:            "educate",
		Audience:        "subscribers",
		Goal:            "build-authority",
		CadencePattern:  schema.CadenceVaried,
		PronounDistance: schema.PronounBalanced,
		EvidenceDensity: "medium",
	},
	"tweets": {
		ID:              "tweets",
		DomainID:        "tweets",
		Mode:            "engage",
		Audience:        "followers",
		Goal:            "spark-conversation",
		CadencePattern:  schema.CadencePunchy,
		PronounDistance: schema.PronounClose,
		EvidenceDensity: "low",
	},
	"professional-network": {
		ID:              "professional-network",
		DomainID:        "professional-network",
		Mode:            "inform",
		Audience:        "industry peers",
		Goal:            "professional-credibility",
		CadencePattern:  schema.CadenceVaried,
		PronounDistance: schema.PronounBalanced,
		EvidenceDensity: "high",
	},
}

// Channel returns the named built-in channel or an error if the name is
// unknown.
func Channel(id string) (ChannelSpec, error) {
	c, ok := builtins[id]
	if !ok {
		names := make([]string, 0, len(builtins))
		for n := range builtins {
			names = append(names, n)
		}
		sort.Strings(names)
		return ChannelSpec{}, fmt.Errorf("styleplan: unknown channel %q (available: %v)", id, names)
	}
	return c, nil
}

// Thresholds are the z cut points for descriptor bucketing. They are
// configuration data, not logic: deployments migrating from existing
// reference tables supply their own.
type Thresholds struct {
	High float64
	Low  float64
}

// DefaultThresholds bucket at one standard deviation in either direction.
var DefaultThresholds = Thresholds{High: 1.0, Low: -1.0}

// Bucket reduces a target z to its coarse descriptor.
func (t Thresholds) Bucket(z float64) schema.Descriptor {
	switch {
	case z >= t.High:
		return schema.DescriptorHigh
	case z <= t.Low:
		return schema.DescriptorLow
	case z >= 0:
		return schema.DescriptorMedium
	default:
		return schema.DescriptorMediumLow
	}
}

// LexiconHints are the per-bucket token lists emitted alongside a style
// config. They ride the wire as lexicon_<bucket> keys.
type LexiconHints map[string][]string

// overridableKeys are the wire keys a caller may override. Computed keys
// (liwc_targets, lexicon_*) are not overridable; the three-term target sum is
// authoritative.
var overridableKeys = map[string]bool{
	"mode":             true,
	"audience":         true,
	"goal":             true,
	"cadence_pattern":  true,
	"pronoun_distance": true,
	"evidence_density": true,
	"metaphor_sets":    true,
	"cta_style":        true,
	"empathy_target":   true,
}

// hintVocabularyCap bounds the per-category word list in a lexicon hint.
const hintVocabularyCap = 12

// Planner computes style configs against one baseline store. The zero values
// of Thresholds and Significance select the defaults.
type Planner struct {
	Store *baseline.Store
	// Thresholds for descriptor bucketing.
	Thresholds Thresholds
	// Significance is the |target z| below which a category emits neither a
	// liwc target nor a lexicon hint, to avoid diluting the prompt with
	// noise. Zero selects the default of 0.5.
	Significance float64
}

// Plan resolves channel metadata and overrides (overrides win), computes the
// three-term target sum for every measurable category, buckets targets into
// descriptors, and emits lexicon-bias hints for significant categories. The
// returned config has already passed its own schema validation; the
// validator re-checks it independently downstream.
func (p *Planner) Plan(profile *schema.AuthorProfile, adjustments schema.AdjustmentSet, channelID string, overrides map[string]string) (*schema.StyleConfig, LexiconHints, error) {
	if profile == nil {
		return nil, nil, fmt.Errorf("styleplan: nil profile")
	}
	channel, err := Channel(channelID)
	if err != nil {
		return nil, nil, err
	}
	if err := validateOverrides(overrides); err != nil {
		return nil, nil, err
	}

	thresholds := p.Thresholds
	if thresholds == (Thresholds{}) {
		thresholds = DefaultThresholds
	}
	significance := p.Significance
	if significance == 0 {
		significance = 0.5
	}

	cfg := &schema.StyleConfig{
		Mode:            channel.Mode,
		Audience:        channel.Audience,
		Goal:            channel.Goal,
		CadencePattern:  channel.CadencePattern,
		PronounDistance: channel.PronounDistance,
		EvidenceDensity: channel.EvidenceDensity,
	}
	// The profile's own voice defaults beat channel conventions.
	applyControls(cfg, profile.DefaultControls)
	applyOverrides(cfg, overrides)

	targets := p.Targets(profile, adjustments, channel.DomainID)

	cats := make([]string, 0, len(targets))
	for cat := range targets {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	hints := make(LexiconHints)
	if sig := profile.Lexicon["signature"]; len(sig) > 0 {
		hints["signature"] = append([]string(nil), sig...)
	}
	for _, cat := range cats {
		z := targets[cat]
		if math.Abs(z) < significance {
			continue
		}
		d := thresholds.Bucket(z)
		if cfg.LIWCTargets == nil {
			cfg.LIWCTargets = make(map[string]schema.Descriptor)
		}
		cfg.LIWCTargets[cat] = d

		vocab := scorer.CategoryVocabulary(cat)
		if len(vocab) == 0 {
			continue
		}
		if len(vocab) > hintVocabularyCap {
			vocab = vocab[:hintVocabularyCap]
		}
		switch d {
		case schema.DescriptorHigh, schema.DescriptorMedium:
			hints["prefer_"+cat] = vocab
		default:
			hints["avoid_"+cat] = vocab
		}
	}
	if len(hints) == 0 {
		hints = nil
	}
	cfg.Lexicon = hints

	// Defensive double-check against the closed key set before returning.
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, hints, nil
}

// Targets computes the effective target z per category for a channel: the
// profile z with percentile adjustments applied, plus the channel's domain
// delta in z units. The union of profile, adjustment, and delta categories
// is covered.
func (p *Planner) Targets(profile *schema.AuthorProfile, adjustments schema.AdjustmentSet, domainID string) map[string]float64 {
	view := adjust.Apply(profile, adjustments)
	targets := view.EffectiveZScores()
	for cat, dz := range p.Store.ComputeDeltaZ(domainID) {
		targets[cat] += dz
	}
	return targets
}

// validateOverrides rejects unknown override keys with a schema violation,
// never silently dropping them.
func validateOverrides(overrides map[string]string) error {
	var fields []schema.FieldError
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !overridableKeys[k] {
			fields = append(fields, schema.FieldError{Field: k, Message: "unknown or non-overridable key"})
		}
	}
	if len(fields) > 0 {
		return &schema.SchemaViolationError{Fields: fields}
	}
	return nil
}

// applyControls copies the non-empty control values from a profile onto the
// config.
func applyControls(cfg *schema.StyleConfig, c schema.Controls) {
	if c.Mode != "" {
		cfg.Mode = c.Mode
	}
	if c.Audience != "" {
		cfg.Audience = c.Audience
	}
	if c.Goal != "" {
		cfg.Goal = c.Goal
	}
	if c.CadencePattern != "" {
		cfg.CadencePattern = c.CadencePattern
	}
	if c.PronounDistance != "" {
		cfg.PronounDistance = c.PronounDistance
	}
}

func applyOverrides(cfg *schema.StyleConfig, overrides map[string]string) {
	for k, v := range overrides {
		switch k {
		case "mode":
			cfg.Mode = v
		case "audience":
			cfg.Audience = v
		case "goal":
			cfg.Goal = v
		case "cadence_pattern":
			cfg.CadencePattern = v
		case "pronoun_distance":
			cfg.PronounDistance = v
		case "evidence_density":
			cfg.EvidenceDensity = v
		case "metaphor_sets":
			cfg.MetaphorSets = splitList(v)
		case "cta_style":
			cfg.CTAStyle = v
		case "empathy_target":
			cfg.EmpathyTarget = v
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
