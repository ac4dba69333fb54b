package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Descriptor is the coarse bucket a category target is reduced to before it
// reaches the generation step. The planner emits descriptors, never raw
// floats, to keep the downstream contract small and stable.
type Descriptor string

const (
	DescriptorHigh      Descriptor = "high"
	DescriptorMedium    Descriptor = "medium"
	DescriptorMediumLow Descriptor = "medium_low"
	DescriptorLow       Descriptor = "low"
)

// ValidDescriptor reports whether d is one of the four closed descriptor
// values.
func ValidDescriptor(d Descriptor) bool {
	switch d {
	case DescriptorHigh, DescriptorMedium, DescriptorMediumLow, DescriptorLow:
		return true
	}
	return false
}

// CadencePattern values accepted in a style config.
const (
	CadencePunchy  = "punchy"
	CadenceVaried  = "varied"
	CadenceFlowing = "flowing"
)

// PronounDistance values accepted in a style config.
const (
	PronounClose    = "close"
	PronounBalanced = "balanced"
	PronounDistant  = "distant"
)

// StyleConfig is the closed directive block consumed by the generation step.
// The required keys are always present; optional keys are omitted from the
// wire form when empty. Any wire key outside this set is a schema violation.
type StyleConfig struct {
	// Required.
	Mode            string `json:"mode"`
	Audience        string `json:"audience"`
	Goal            string `json:"goal"`
	CadencePattern  string `json:"cadence_pattern"`
	PronounDistance string `json:"pronoun_distance"`

	// Optional.
	EvidenceDensity string                `json:"evidence_density,omitempty"`
	MetaphorSets    []string              `json:"metaphor_sets,omitempty"`
	CTAStyle        string                `json:"cta_style,omitempty"`
	EmpathyTarget   string                `json:"empathy_target,omitempty"`
	LIWCTargets     map[string]Descriptor `json:"liwc_targets,omitempty"`
	// Lexicon buckets are emitted on the wire as "lexicon_<bucket>".
	Lexicon map[string][]string `json:"lexicon,omitempty"`
}

// RequiredKeys is the ordered set of keys every style config must carry.
var RequiredKeys = []string{"mode", "audience", "goal", "cadence_pattern", "pronoun_distance"}

// lexiconKeyPrefix marks the open family of lexicon bucket keys on the wire;
// every other key belongs to the closed set above.
const lexiconKeyPrefix = "lexicon_"

// FieldError records a single schema failure on a style config field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SchemaViolationError aggregates the field-level failures found while
// validating or decoding a style config. Plan and validate calls fail closed
// when one is returned.
type SchemaViolationError struct {
	Fields []FieldError
}

func (e *SchemaViolationError) Error() string {
	if len(e.Fields) == 0 {
		return "schema: style config violation"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return "schema: style config violation: " + strings.Join(msgs, "; ")
}

// Validate checks that every required key is set and every value belongs to
// its closed value set. Returns nil or a *SchemaViolationError.
func (c *StyleConfig) Validate() error {
	var fields []FieldError

	required := []struct{ key, val string }{
		{"mode", c.Mode},
		{"audience", c.Audience},
		{"goal", c.Goal},
		{"cadence_pattern", c.CadencePattern},
		{"pronoun_distance", c.PronounDistance},
	}
	for _, r := range required {
		if r.val == "" {
			fields = append(fields, FieldError{r.key, "required key is missing"})
		}
	}

	switch c.CadencePattern {
	case "", CadencePunchy, CadenceVaried, CadenceFlowing:
	default:
		fields = append(fields, FieldError{"cadence_pattern",
			fmt.Sprintf("value %q is not valid", c.CadencePattern)})
	}
	switch c.PronounDistance {
	case "", PronounClose, PronounBalanced, PronounDistant:
	default:
		fields = append(fields, FieldError{"pronoun_distance",
			fmt.Sprintf("value %q is not valid", c.PronounDistance)})
	}
	for cat, d := range c.LIWCTargets {
		if !ValidDescriptor(d) {
			fields = append(fields, FieldError{"liwc_targets",
				fmt.Sprintf("category %q has invalid descriptor %q", cat, d)})
		}
	}

	if len(fields) > 0 {
		return &SchemaViolationError{Fields: fields}
	}
	return nil
}

// Wire flattens the config into the flat key/value block of the external
// contract. List values are comma-separated; liwc_targets pairs are
// "category:descriptor". Map iteration is sorted so the output is stable.
func (c *StyleConfig) Wire() map[string]string {
	w := map[string]string{
		"mode":             c.Mode,
		"audience":         c.Audience,
		"goal":             c.Goal,
		"cadence_pattern":  c.CadencePattern,
		"pronoun_distance": c.PronounDistance,
	}
	if c.EvidenceDensity != "" {
		w["evidence_density"] = c.EvidenceDensity
	}
	if len(c.MetaphorSets) > 0 {
		w["metaphor_sets"] = strings.Join(c.MetaphorSets, ",")
	}
	if c.CTAStyle != "" {
		w["cta_style"] = c.CTAStyle
	}
	if c.EmpathyTarget != "" {
		w["empathy_target"] = c.EmpathyTarget
	}
	if len(c.LIWCTargets) > 0 {
		pairs := make([]string, 0, len(c.LIWCTargets))
		for cat, d := range c.LIWCTargets {
			pairs = append(pairs, cat+":"+string(d))
		}
		sort.Strings(pairs)
		w["liwc_targets"] = strings.Join(pairs, ",")
	}
	for bucket, tokens := range c.Lexicon {
		if len(tokens) > 0 {
			w[lexiconKeyPrefix+bucket] = strings.Join(tokens, ",")
		}
	}
	return w
}

// DecodeWire parses a flat key/value block back into a StyleConfig. Unknown
// keys fail closed with a *SchemaViolationError; the decoder never drops a
// key silently.
func DecodeWire(wire map[string]string) (*StyleConfig, error) {
	var fields []FieldError
	c := &StyleConfig{}

	keys := make([]string, 0, len(wire))
	for k := range wire {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := wire[k]
		switch k {
		case "mode":
			c.Mode = v
		case "audience":
			c.Audience = v
		case "goal":
			c.Goal = v
		case "cadence_pattern":
			c.CadencePattern = v
		case "pronoun_distance":
			c.PronounDistance = v
		case "evidence_density":
			c.EvidenceDensity = v
		case "metaphor_sets":
			c.MetaphorSets = splitList(v)
		case "cta_style":
			c.CTAStyle = v
		case "empathy_target":
			c.EmpathyTarget = v
		case "liwc_targets":
			targets, errs := parseLIWCTargets(v)
			fields = append(fields, errs...)
			c.LIWCTargets = targets
		default:
			if bucket, ok := strings.CutPrefix(k, lexiconKeyPrefix); ok && bucket != "" {
				if c.Lexicon == nil {
					c.Lexicon = make(map[string][]string)
				}
				c.Lexicon[bucket] = splitList(v)
				continue
			}
			fields = append(fields, FieldError{k, "unknown style config key"})
		}
	}

	if len(fields) > 0 {
		return nil, &SchemaViolationError{Fields: fields}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// splitList splits a comma-separated wire value, trimming whitespace and
// dropping empty entries.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseLIWCTargets parses "category:descriptor" pairs.
func parseLIWCTargets(v string) (map[string]Descriptor, []FieldError) {
	var fields []FieldError
	targets := make(map[string]Descriptor)
	for _, pair := range splitList(v) {
		cat, desc, ok := strings.Cut(pair, ":")
		if !ok {
			fields = append(fields, FieldError{"liwc_targets",
				fmt.Sprintf("entry %q is not category:descriptor", pair)})
			continue
		}
		d := Descriptor(strings.TrimSpace(desc))
		if !ValidDescriptor(d) {
			fields = append(fields, FieldError{"liwc_targets",
				fmt.Sprintf("category %q has invalid descriptor %q", cat, desc)})
			continue
		}
		targets[strings.TrimSpace(cat)] = d
	}
	if len(targets) == 0 {
		targets = nil
	}
	return targets, fields
}
