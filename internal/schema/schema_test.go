package schema

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validConfig() *StyleConfig {
	return &StyleConfig{
		Mode:            "thought_leadership",
		Audience:        "engineering_leaders",
		Goal:            "educate",
		CadencePattern:  CadenceVaried,
		PronounDistance: PronounBalanced,
		EvidenceDensity: "high",
		MetaphorSets:    []string{"machinery", "navigation"},
		LIWCTargets:     map[string]Descriptor{"Analytic": DescriptorHigh, "i": DescriptorLow},
		Lexicon:         map[string][]string{"prefer": {"leverage", "pipeline"}},
	}
}

func TestStyleConfig_Validate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() on valid config: %v", err)
	}
}

func TestStyleConfig_Validate_MissingRequired(t *testing.T) {
	c := validConfig()
	c.Mode = ""
	c.Goal = ""
	err := c.Validate()
	var sv *SchemaViolationError
	if !errors.As(err, &sv) {
		t.Fatalf("Validate() = %v, want *SchemaViolationError", err)
	}
	if len(sv.Fields) != 2 {
		t.Errorf("got %d field errors, want 2: %v", len(sv.Fields), sv)
	}
}

func TestStyleConfig_Validate_BadEnums(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*StyleConfig)
	}{
		{"cadence", func(c *StyleConfig) { c.CadencePattern = "staccato" }},
		{"pronoun", func(c *StyleConfig) { c.PronounDistance = "very_far" }},
		{"descriptor", func(c *StyleConfig) { c.LIWCTargets = map[string]Descriptor{"Analytic": "extreme"} }},
	}
	for _, c := range cases {
		cfg := validConfig()
		c.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate() = nil, want schema violation", c.name)
		}
	}
}

func TestWire_RoundTrip(t *testing.T) {
	orig := validConfig()
	wire := orig.Wire()

	for _, k := range RequiredKeys {
		if wire[k] == "" {
			t.Errorf("Wire() missing required key %q", k)
		}
	}
	if wire["liwc_targets"] != "Analytic:high,i:low" {
		t.Errorf("liwc_targets wire = %q, want sorted pairs", wire["liwc_targets"])
	}
	if wire["lexicon_prefer"] != "leverage,pipeline" {
		t.Errorf("lexicon_prefer wire = %q", wire["lexicon_prefer"])
	}

	back, err := DecodeWire(wire)
	if err != nil {
		t.Fatalf("DecodeWire: %v", err)
	}
	if back.Mode != orig.Mode || back.CadencePattern != orig.CadencePattern {
		t.Errorf("round trip lost required fields: %+v", back)
	}
	if back.LIWCTargets["Analytic"] != DescriptorHigh || back.LIWCTargets["i"] != DescriptorLow {
		t.Errorf("round trip lost liwc_targets: %+v", back.LIWCTargets)
	}
	if len(back.Lexicon["prefer"]) != 2 {
		t.Errorf("round trip lost lexicon bucket: %+v", back.Lexicon)
	}
}

func TestDecodeWire_UnknownKeyFailsClosed(t *testing.T) {
	wire := validConfig().Wire()
	wire["vibe"] = "mysterious"
	_, err := DecodeWire(wire)
	var sv *SchemaViolationError
	if !errors.As(err, &sv) {
		t.Fatalf("DecodeWire with unknown key = %v, want *SchemaViolationError", err)
	}
	if !strings.Contains(sv.Error(), "vibe") {
		t.Errorf("error does not name the offending key: %v", sv)
	}
}

func TestDecodeWire_LexiconPrefixAccepted(t *testing.T) {
	wire := validConfig().Wire()
	wire["lexicon_avoid"] = "synergy, paradigm"
	c, err := DecodeWire(wire)
	if err != nil {
		t.Fatalf("DecodeWire: %v", err)
	}
	got := c.Lexicon["avoid"]
	if len(got) != 2 || got[0] != "synergy" || got[1] != "paradigm" {
		t.Errorf("lexicon_avoid = %v, want [synergy paradigm]", got)
	}
}

func TestDecodeWire_BareLexiconPrefixRejected(t *testing.T) {
	wire := validConfig().Wire()
	wire["lexicon_"] = "x"
	if _, err := DecodeWire(wire); err == nil {
		t.Fatal("DecodeWire with empty lexicon bucket name: want schema violation")
	}
}

func TestMarshalProfile_RoundTrip(t *testing.T) {
	p := &AuthorProfile{
		AuthorID:  "auth-1",
		RunID:     "run-1",
		CreatedAt: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		Sources:   []SourceGroup{{DomainID: "blog", SampleCount: 4}},
		CategoryScores: map[string]CategoryScore{
			"Analytic": {Raw: 67.2, Mean: 56.1, Stdev: 8.4, Z: 1.32},
		},
		Tolerance: Tolerance{Default: 0.75, SentenceRunMax: 3},
	}
	b, err := MarshalProfile(p)
	if err != nil {
		t.Fatalf("MarshalProfile: %v", err)
	}
	back, err := UnmarshalProfile(b)
	if err != nil {
		t.Fatalf("UnmarshalProfile: %v", err)
	}
	if back.SchemaVersion != SchemaVersion {
		t.Errorf("schema_version = %q, want %q", back.SchemaVersion, SchemaVersion)
	}
	if back.CategoryScores["Analytic"].Z != 1.32 {
		t.Errorf("round trip lost category scores: %+v", back.CategoryScores)
	}
}

func TestUnmarshalProfile_VersionMismatch(t *testing.T) {
	b := []byte(`{"schema_version":"0.9","author_id":"a"}`)
	if _, err := UnmarshalProfile(b); err == nil {
		t.Fatal("UnmarshalProfile with old schema_version: want error, got nil")
	}
}

func TestCategoryTolerance_Fallback(t *testing.T) {
	tol := Tolerance{Categories: map[string]float64{"i": 0.5}, Default: 1.0}
	if got := tol.CategoryTolerance("i"); got != 0.5 {
		t.Errorf("CategoryTolerance(i) = %v, want 0.5", got)
	}
	if got := tol.CategoryTolerance("Analytic"); got != 1.0 {
		t.Errorf("CategoryTolerance(Analytic) = %v, want default 1.0", got)
	}
}
