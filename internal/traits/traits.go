// Package traits maps aggregated category z-scores onto bounded personality
// sliders. Three independent trait models are supported; each is a static
// interpretation table from discriminative categories to axis weights.
// Mapping is pure: no randomness, no I/O, identical output for identical
// profiles. The tables are configuration data — built-in defaults here,
// replaceable wholesale from a YAML table at startup.
package traits

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/dshills/voicemark/internal/schema"
)

// Weight is one category's signed contribution to an axis.
type Weight struct {
	Category string  `yaml:"category"`
	Coeff    float64 `yaml:"coeff"`
}

// Axis is one bounded slider of a trait model.
type Axis struct {
	Name    string   `yaml:"name"`
	Weights []Weight `yaml:"weights"`
}

// Model is a named trait model.
type Model struct {
	Name string `yaml:"name"`
	Axes []Axis `yaml:"axes"`
}

// zSpan is the z magnitude that saturates a single full-weight category's
// contribution: coeff 1.0 at z = ±4 moves an axis from the midpoint to an
// extreme before clamping.
const zSpan = 4.0

// Map converts a profile's category scores into axis values in [0,1] using
// the default models. Categories absent from the profile contribute nothing,
// so an axis with no measured inputs lands exactly on the 0.5 midpoint.
func Map(scores map[string]schema.CategoryScore) map[string]map[string]float64 {
	return MapWith(DefaultModels(), scores)
}

// MapWith runs the mapping against an explicit model set.
func MapWith(models []Model, scores map[string]schema.CategoryScore) map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(models))
	for _, m := range models {
		axes := make(map[string]float64, len(m.Axes))
		for _, ax := range m.Axes {
			axes[ax.Name] = axisValue(ax, scores)
		}
		out[m.Name] = axes
	}
	return out
}

func axisValue(ax Axis, scores map[string]schema.CategoryScore) float64 {
	if len(ax.Weights) == 0 {
		return 0.5
	}
	sum := 0.0
	for _, w := range ax.Weights {
		cs, ok := scores[w.Category]
		if !ok {
			continue // missing input: neutral contribution
		}
		sum += w.Coeff * cs.Z
	}
	v := 0.5 + sum/(zSpan*float64(len(ax.Weights)))
	return clamp01(v)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// LoadModels parses a YAML model table, replacing the defaults wholesale.
func LoadModels(data []byte) ([]Model, error) {
	var doc struct {
		Models []Model `yaml:"models"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("traits: parse models: %w", err)
	}
	if len(doc.Models) == 0 {
		return nil, fmt.Errorf("traits: model table is empty")
	}
	for _, m := range doc.Models {
		if m.Name == "" {
			return nil, fmt.Errorf("traits: model with no name")
		}
		for _, ax := range m.Axes {
			if ax.Name == "" {
				return nil, fmt.Errorf("traits: model %q has an axis with no name", m.Name)
			}
		}
	}
	return doc.Models, nil
}

// DefaultModels returns the built-in interpretation tables. The category
// lists and coefficients mirror the shipped reference tables; deployments
// migrating existing tables load them via LoadModels instead.
func DefaultModels() []Model {
	return []Model{
		{
			Name: "big_five",
			Axes: []Axis{
				{Name: "openness", Weights: []Weight{
					{"insight", 1.0}, {"cogproc", 0.7}, {"focusfuture", 0.3},
				}},
				{Name: "conscientiousness", Weights: []Weight{
					{"achieve", 1.0}, {"focusfuture", 0.5}, {"informal", -0.5}, {"negemo", -0.3},
				}},
				{Name: "extraversion", Weights: []Weight{
					{"social", 1.0}, {"you", 0.5}, {"posemo", 0.5},
				}},
				{Name: "agreeableness", Weights: []Weight{
					{"posemo", 0.7}, {"we", 0.6}, {"social", 0.4}, {"negemo", -0.8},
				}},
				{Name: "neuroticism", Weights: []Weight{
					{"negemo", 1.0}, {"risk", 0.5}, {"tentat", 0.3}, {"posemo", -0.4},
				}},
			},
		},
		{
			Name: "disc",
			Axes: []Axis{
				{Name: "dominance", Weights: []Weight{
					{"power", 1.0}, {"certain", 0.6}, {"achieve", 0.4},
				}},
				{Name: "influence", Weights: []Weight{
					{"social", 0.8}, {"posemo", 0.7}, {"you", 0.5},
				}},
				{Name: "steadiness", Weights: []Weight{
					{"we", 0.7}, {"tentat", 0.4}, {"focuspresent", 0.3}, {"negemo", -0.4},
				}},
				{Name: "conscientiousness", Weights: []Weight{
					{"cogproc", 0.8}, {"insight", 0.5}, {"informal", -0.6},
				}},
			},
		},
		{
			// mbti axes run from the first pole at 0 to the second pole at 1:
			// ei 1.0 is fully introverted, sn 1.0 fully intuitive, tf 1.0
			// fully feeling, jp 1.0 fully perceiving.
			Name: "mbti",
			Axes: []Axis{
				{Name: "ei", Weights: []Weight{
					{"social", -0.8}, {"you", -0.4}, {"i", 0.3},
				}},
				{Name: "sn", Weights: []Weight{
					{"insight", 0.7}, {"focusfuture", 0.5}, {"focuspast", -0.5},
				}},
				{Name: "tf", Weights: []Weight{
					{"posemo", 0.6}, {"we", 0.4}, {"cogproc", -0.7}, {"certain", -0.3},
				}},
				{Name: "jp", Weights: []Weight{
					{"tentat", 0.7}, {"informal", 0.4}, {"achieve", -0.5}, {"certain", -0.4},
				}},
			},
		},
	}
}
