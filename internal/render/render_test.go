package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dshills/voicemark/internal/schema"
)

func sampleReport() *schema.ValidationReport {
	sim := 0.9137
	return &schema.ValidationReport{
		SchemaVersion: schema.SchemaVersion,
		ReportID:      "r-1",
		AuthorID:      "a-1",
		Verdict:       schema.VerdictDeviationDetected,
		CategoryReport: []schema.CategoryDeviation{
			{Category: "i", ZGenerated: 1.2, ZTarget: 0.1, Deviation: 1.1, WithinTolerance: false},
			{Category: "you", ZGenerated: 0.4, ZTarget: 0.5, Deviation: -0.1, WithinTolerance: true},
		},
		Violations: []schema.Violation{
			{Check: schema.CheckSentenceRun, Severity: schema.SeverityWarn,
				Detail: "4 consecutive sentences exceed 15 words | run", Sentences: []int{2, 3, 4, 5}},
		},
		Similarity: []schema.SimilarityScore{
			{Family: schema.FamilyLIWCCategories, Score: &sim, Defined: true},
			{Family: schema.FamilyPunctuation, Defined: false, Reason: "zero-norm vector"},
		},
	}
}

func TestRenderJSON_RoundTrip(t *testing.T) {
	report := sampleReport()
	b, err := RenderJSON(report)
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	var back schema.ValidationReport
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("round trip unmarshal: %v", err)
	}
	if back.Verdict != report.Verdict || back.ReportID != report.ReportID {
		t.Errorf("round trip lost fields: %+v", back)
	}
	if back.Similarity[1].Score != nil || back.Similarity[1].Defined {
		t.Errorf("undefined similarity not preserved as null: %+v", back.Similarity[1])
	}
}

func TestRenderJSON_Nil(t *testing.T) {
	if _, err := RenderJSON(nil); err == nil {
		t.Fatal("nil report did not error")
	}
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(sampleReport())

	for _, want := range []string{
		"DEVIATION_DETECTED",
		"sentence_run",
		"zero-norm vector",
		"0.9137",
		"| i | 1.20 | 0.10 | +1.10 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	// Within-tolerance categories stay out of the deviation table.
	if strings.Contains(md, "| you |") {
		t.Error("within-tolerance category rendered in deviation table")
	}
	// Pipes in details are escaped so the table survives.
	if strings.Contains(md, "words | run") {
		t.Error("unescaped pipe in rendered detail")
	}
}

func TestRenderMarkdown_Nil(t *testing.T) {
	if got := RenderMarkdown(nil); got != "" {
		t.Errorf("RenderMarkdown(nil) = %q, want empty", got)
	}
}

func TestRenderProfileMarkdown(t *testing.T) {
	p := &schema.AuthorProfile{
		SchemaVersion: schema.SchemaVersion,
		AuthorID:      "a-1",
		RunID:         "run-1",
		Sources: []schema.SourceGroup{
			{DomainID: "", SampleCount: 2},
			{DomainID: "blog", SampleCount: 3},
		},
		Traits: map[string]map[string]float64{
			"big_five": {"openness": 0.62, "extraversion": 0.48},
		},
		DefaultControls: schema.Controls{
			CadencePattern:  schema.CadenceVaried,
			PronounDistance: schema.PronounBalanced,
		},
	}
	md := RenderProfileMarkdown(p)
	for _, want := range []string{
		"a-1", "run-1", "(general)", "| blog | 3 |",
		"| big_five | extraversion | 0.48 |",
		"**Cadence:** varied",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("profile markdown missing %q", want)
		}
	}
}
