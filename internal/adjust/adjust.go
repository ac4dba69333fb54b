// Package adjust applies user-specified percentile deltas on top of an
// extracted profile. Adjustments are global by design: one set applies
// identically to every output channel, and channel variation is expressed
// separately through domain deltas at plan time. The raw category scores are
// never touched — an adjusted view layers deltas over the empirical record.
package adjust

import (
	"github.com/dshills/voicemark/internal/schema"
)

// The canonical percentile mapping: z = 0 sits at the 50th percentile and
// each z unit is worth 10 percentile points, so z = +2 reads as the 70th.

// PercentileFromZ converts a z-score to its percentile representation.
func PercentileFromZ(z float64) float64 {
	return 50 + 10*z
}

// ZFromPercentile converts a percentile back to a z-score.
func ZFromPercentile(p float64) float64 {
	return (p - 50) / 10
}

// DeltaZ converts a percentile delta into z units.
func DeltaZ(deltaPercentile float64) float64 {
	return deltaPercentile / 10
}

// View is a profile with an adjustment set layered on top. It holds
// references only; neither the profile nor the set is mutated.
type View struct {
	Profile *schema.AuthorProfile
	Set     schema.AdjustmentSet
}

// Apply pairs a profile with an adjustment set. A nil or empty set yields a
// view that reports the profile's own z-scores unchanged.
func Apply(profile *schema.AuthorProfile, set schema.AdjustmentSet) *View {
	return &View{Profile: profile, Set: set}
}

// EffectiveZ returns the category's z-score with its percentile delta
// applied: original_z + delta_percentile/10. Categories absent from the
// profile report just the delta contribution, so an adjustment on an
// unmeasured category still shifts its target.
func (v *View) EffectiveZ(category string) float64 {
	var z float64
	if cs, ok := v.Profile.CategoryScores[category]; ok {
		z = cs.Z
	}
	if v.Set != nil {
		z += DeltaZ(v.Set[category])
	}
	return z
}

// EffectiveZScores returns the effective z for every category in either the
// profile or the adjustment set.
func (v *View) EffectiveZScores() map[string]float64 {
	out := make(map[string]float64, len(v.Profile.CategoryScores))
	for cat := range v.Profile.CategoryScores {
		out[cat] = v.EffectiveZ(cat)
	}
	for cat := range v.Set {
		if _, ok := out[cat]; !ok {
			out[cat] = v.EffectiveZ(cat)
		}
	}
	return out
}
