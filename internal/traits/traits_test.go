package traits

import (
	"testing"

	"github.com/dshills/voicemark/internal/schema"
)

func scoresWith(z map[string]float64) map[string]schema.CategoryScore {
	out := make(map[string]schema.CategoryScore, len(z))
	for cat, v := range z {
		out[cat] = schema.CategoryScore{Z: v}
	}
	return out
}

func TestMap_Deterministic(t *testing.T) {
	scores := scoresWith(map[string]float64{
		"social": 1.2, "posemo": 0.8, "negemo": -0.5, "achieve": 1.7, "insight": 0.3,
	})
	a := Map(scores)
	b := Map(scores)
	for model, axes := range a {
		for axis, v := range axes {
			if b[model][axis] != v {
				t.Errorf("%s/%s: %v != %v for identical input", model, axis, v, b[model][axis])
			}
		}
	}
}

func TestMap_AllModelsPresent(t *testing.T) {
	got := Map(scoresWith(map[string]float64{"social": 1.0}))
	for _, model := range []string{"big_five", "disc", "mbti"} {
		if _, ok := got[model]; !ok {
			t.Errorf("model %q missing from output", model)
		}
	}
	if len(got["big_five"]) != 5 {
		t.Errorf("big_five has %d axes, want 5", len(got["big_five"]))
	}
	if len(got["disc"]) != 4 {
		t.Errorf("disc has %d axes, want 4", len(got["disc"]))
	}
	if len(got["mbti"]) != 4 {
		t.Errorf("mbti has %d axes, want 4", len(got["mbti"]))
	}
}

func TestMap_MissingInputsAreNeutral(t *testing.T) {
	got := Map(map[string]schema.CategoryScore{})
	for model, axes := range got {
		for axis, v := range axes {
			if v != 0.5 {
				t.Errorf("%s/%s = %v with no inputs, want midpoint 0.5", model, axis, v)
			}
		}
	}
}

func TestMap_Bounded(t *testing.T) {
	// Extreme z-scores must clamp, not overflow the slider range.
	scores := scoresWith(map[string]float64{
		"social": 50, "posemo": 50, "you": 50, "negemo": -50, "achieve": 50,
		"power": 50, "certain": 50, "we": 50, "cogproc": -50, "insight": 50,
	})
	for model, axes := range Map(scores) {
		for axis, v := range axes {
			if v < 0 || v > 1 {
				t.Errorf("%s/%s = %v out of [0,1]", model, axis, v)
			}
		}
	}
}

func TestMap_DirectionOfEffect(t *testing.T) {
	neutral := Map(map[string]schema.CategoryScore{})
	social := Map(scoresWith(map[string]float64{"social": 2.0}))

	if social["big_five"]["extraversion"] <= neutral["big_five"]["extraversion"] {
		t.Error("positive social z did not raise extraversion")
	}
	if social["mbti"]["ei"] >= neutral["mbti"]["ei"] {
		t.Error("positive social z did not lower ei (toward extraversion pole)")
	}
}

func TestLoadModels(t *testing.T) {
	doc := `
models:
  - name: custom
    axes:
      - name: warmth
        weights:
          - {category: posemo, coeff: 1.0}
          - {category: negemo, coeff: -1.0}
`
	models, err := LoadModels([]byte(doc))
	if err != nil {
		t.Fatalf("LoadModels: %v", err)
	}
	got := MapWith(models, scoresWith(map[string]float64{"posemo": 2.0}))
	if len(got) != 1 {
		t.Fatalf("got %d models, want 1", len(got))
	}
	if got["custom"]["warmth"] <= 0.5 {
		t.Errorf("warmth = %v, want above midpoint", got["custom"]["warmth"])
	}
}

func TestLoadModels_Invalid(t *testing.T) {
	cases := []string{
		"",
		"models: []",
		"models:\n  - axes: []\n",
		"models:\n  - name: m\n    axes:\n      - weights: []\n",
	}
	for _, doc := range cases {
		if _, err := LoadModels([]byte(doc)); err == nil {
			t.Errorf("LoadModels(%q): want error, got nil", doc)
		}
	}
}
