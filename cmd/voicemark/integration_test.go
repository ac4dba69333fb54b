//go:build integration

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/voicemark/internal/baseline"
	"github.com/dshills/voicemark/internal/genai"
	"github.com/dshills/voicemark/internal/schema"
	"github.com/dshills/voicemark/internal/styleplan"
	"github.com/dshills/voicemark/internal/validate"
)

// onVoiceResponse echoes the fixture author's register: first person, close
// pronouns, short varied sentences.
const onVoiceResponse = `I shipped the new release today, and I want you to see what changed.
The rough edges are documented, not hidden. I got two of them wrong in the
last version and you told me so; this one fixes both.`

// distantResponse sits firmly at the distant pronoun pole, which the close
// target rejects. In strict mode the violation escalates to CRITICAL.
const distantResponse = `The committee published their findings. Their methodology was described by them at length. One assumes they were thorough.`

// mockMultiProvider returns successive responses from a list.
type mockMultiProvider struct {
	responses []string
	idx       int
}

func (m *mockMultiProvider) Complete(ctx context.Context, system, user string, maxTokens int, temp float64) (string, error) {
	if m.idx >= len(m.responses) {
		return "", fmt.Errorf("mock: no more responses")
	}
	r := m.responses[m.idx]
	m.idx++
	return r, nil
}

// errorProvider always returns an error from Complete.
type errorProvider struct{}

func (e *errorProvider) Complete(ctx context.Context, system, user string, maxTokens int, temp float64) (string, error) {
	return "", fmt.Errorf("simulated API error")
}

func injectMock(t *testing.T, responses []string) {
	t.Helper()
	orig := genai.NewProvider
	genai.NewProvider = func(providerName, model string) (genai.Provider, error) {
		return &mockMultiProvider{responses: responses}, nil
	}
	t.Cleanup(func() { genai.NewProvider = orig })
}

func injectErrProvider(t *testing.T) {
	t.Helper()
	orig := genai.NewProvider
	genai.NewProvider = func(providerName, model string) (genai.Provider, error) {
		return &errorProvider{}, nil
	}
	t.Cleanup(func() { genai.NewProvider = orig })
}

// extractProfile runs the extract command against the fixture corpus and
// returns the profile file path.
func extractProfile(t *testing.T) string {
	t.Helper()
	out := filepath.Join(t.TempDir(), "profile.json")
	err := runExtract("../../testdata/corpus", extractFlags{
		author: "fixture-author",
		out:    out,
		format: "json",
	})
	if code := exitCode(err); code != 0 {
		t.Fatalf("extract: expected exit 0, got %d: %v", code, err)
	}
	return out
}

// planConfig runs the plan command for a channel and returns the config path.
func planConfig(t *testing.T, profile, channel string) string {
	t.Helper()
	out := filepath.Join(t.TempDir(), "config.json")
	err := runPlan(planFlags{profile: profile, channel: channel, out: out})
	if code := exitCode(err); code != 0 {
		t.Fatalf("plan: expected exit 0, got %d: %v", code, err)
	}
	return out
}

func tempOut(t *testing.T) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "vm-out-*")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	name := f.Name()
	f.Close()
	return name
}

func readOutput(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return b
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

func TestIntegration_Extract(t *testing.T) {
	path := extractProfile(t)

	profile, err := schema.UnmarshalProfile(readOutput(t, path))
	if err != nil {
		t.Fatalf("parse profile: %v", err)
	}
	if profile.AuthorID != "fixture-author" {
		t.Errorf("author: got %q, want fixture-author", profile.AuthorID)
	}
	domains := make(map[string]bool)
	for _, s := range profile.Sources {
		domains[s.DomainID] = true
	}
	for _, want := range []string{"", "blog", "tweets"} {
		if !domains[want] {
			t.Errorf("profile missing source domain %q", want)
		}
	}
}

func TestIntegration_Plan(t *testing.T) {
	profile := extractProfile(t)
	config := planConfig(t, profile, "tweets")

	var wire map[string]string
	if err := json.Unmarshal(readOutput(t, config), &wire); err != nil {
		t.Fatalf("parse wire config: %v", err)
	}
	for _, key := range []string{"mode", "audience", "goal", "cadence_pattern", "pronoun_distance"} {
		if wire[key] == "" {
			t.Errorf("wire config missing %q", key)
		}
	}
	if wire["cadence_pattern"] != "punchy" {
		t.Errorf("tweets cadence: got %q, want punchy", wire["cadence_pattern"])
	}
}

func TestIntegration_Plan_PartialThresholdFlags(t *testing.T) {
	store, err := baseline.Default()
	if err != nil {
		t.Fatalf("baseline.Default: %v", err)
	}

	p := newPlanner(store, 0, 2.5, 0)
	if p.Thresholds.High != 2.5 {
		t.Errorf("High = %v, want 2.5", p.Thresholds.High)
	}
	if p.Thresholds.Low != styleplan.DefaultThresholds.Low {
		t.Errorf("Low = %v, want default %v", p.Thresholds.Low, styleplan.DefaultThresholds.Low)
	}

	p = newPlanner(store, 0, 0, -2.0)
	if p.Thresholds.Low != -2.0 {
		t.Errorf("Low = %v, want -2.0", p.Thresholds.Low)
	}
	if p.Thresholds.High != styleplan.DefaultThresholds.High {
		t.Errorf("High = %v, want default %v", p.Thresholds.High, styleplan.DefaultThresholds.High)
	}
}

func TestIntegration_Validate(t *testing.T) {
	profile := extractProfile(t)
	out := tempOut(t)

	err := runValidate([]string{"../../testdata/corpus/blog/process-notes.md"}, validateFlags{
		profile: profile,
		out:     out,
		format:  "json",
	})
	if code := exitCode(err); code != 0 {
		t.Fatalf("validate: expected exit 0, got %d: %v", code, err)
	}

	var report schema.ValidationReport
	if parseErr := json.Unmarshal(readOutput(t, out), &report); parseErr != nil {
		t.Fatalf("parse report: %v", parseErr)
	}
	if validate.VerdictOrdinal(report.Verdict) < 0 {
		t.Errorf("unknown verdict %q", report.Verdict)
	}
	if len(report.Similarity) == 0 {
		t.Error("expected similarity scores in the report")
	}
}

func TestIntegration_Validate_FailOn(t *testing.T) {
	profile := extractProfile(t)

	// CONFORMANT is the lowest ordinal, so any verdict trips the threshold.
	err := runValidate([]string{"../../testdata/corpus/blog/process-notes.md"}, validateFlags{
		profile: profile,
		out:     tempOut(t),
		format:  "json",
		failOn:  "CONFORMANT",
	})
	if code := exitCode(err); code != exitCodeFailOn {
		t.Errorf("expected exit %d (failOn), got %d: %v", exitCodeFailOn, code, err)
	}
}

func TestIntegration_Validate_MissingProfile_ExitsThree(t *testing.T) {
	err := runValidate([]string{"../../testdata/corpus/intro.txt"}, validateFlags{
		profile: filepath.Join(t.TempDir(), "nope.json"),
		out:     tempOut(t),
		format:  "json",
	})
	if code := exitCode(err); code != exitCodeBadInput {
		t.Errorf("expected exit %d (bad input), got %d: %v", exitCodeBadInput, code, err)
	}
}

func TestIntegration_Enforce(t *testing.T) {
	profile := extractProfile(t)
	config := planConfig(t, profile, "blog")
	out := tempOut(t)

	err := runEnforce([]string{"../../testdata/corpus/blog/shipping.md"}, enforceFlags{
		config: config,
		out:    out,
	})
	code := exitCode(err)
	if code != 0 && code != exitCodeFailOn {
		t.Fatalf("enforce: expected exit 0 or %d, got %d: %v", exitCodeFailOn, code, err)
	}

	var result struct {
		Checks []struct {
			Check  string `json:"check"`
			Passed bool   `json:"passed"`
		} `json:"checks"`
	}
	if parseErr := json.Unmarshal(readOutput(t, out), &result); parseErr != nil {
		t.Fatalf("parse result: %v", parseErr)
	}
	if len(result.Checks) == 0 {
		t.Error("expected check results")
	}
}

func TestIntegration_Generate(t *testing.T) {
	injectMock(t, []string{onVoiceResponse})
	profile := extractProfile(t)
	out := tempOut(t)

	err := runGenerate(context.Background(), []string{"../../testdata/brief.txt"}, generateFlags{
		profile:   profile,
		channel:   "blog",
		out:       out,
		reportOut: tempOut(t),
		provider:  "anthropic",
	})
	if code := exitCode(err); code != 0 {
		t.Fatalf("generate: expected exit 0, got %d: %v", code, err)
	}
	if !strings.Contains(string(readOutput(t, out)), "shipped the new release") {
		t.Error("generated text not written to output")
	}
}

func TestIntegration_Generate_ProviderError_ExitsFour(t *testing.T) {
	injectErrProvider(t)
	profile := extractProfile(t)

	err := runGenerate(context.Background(), []string{"../../testdata/brief.txt"}, generateFlags{
		profile:  profile,
		channel:  "blog",
		out:      tempOut(t),
		provider: "anthropic",
	})
	if code := exitCode(err); code != exitCodeAPIError {
		t.Errorf("expected exit %d (API error), got %d: %v", exitCodeAPIError, code, err)
	}
}

func TestIntegration_Generate_OffVoice_ExitsFive(t *testing.T) {
	// Both attempts return distant prose; strict mode escalates the pronoun
	// violation to CRITICAL on each, so the run ends off-voice.
	injectMock(t, []string{distantResponse, distantResponse})
	profile := extractProfile(t)
	out := tempOut(t)
	reportOut := tempOut(t)

	err := runGenerate(context.Background(), []string{"../../testdata/brief.txt"}, generateFlags{
		profile:   profile,
		channel:   "tweets",
		out:       out,
		reportOut: reportOut,
		provider:  "anthropic",
		strict:    true,
	})
	if code := exitCode(err); code != exitCodeBadOutput {
		t.Fatalf("expected exit %d (bad output), got %d: %v", exitCodeBadOutput, code, err)
	}
	// Off-voice still writes the last attempt's artifacts.
	if len(readOutput(t, out)) == 0 {
		t.Error("off-voice run left no text artifact")
	}
	var report schema.ValidationReport
	if parseErr := json.Unmarshal(readOutput(t, reportOut), &report); parseErr != nil {
		t.Fatalf("parse off-voice report: %v", parseErr)
	}
	if report.Verdict != schema.VerdictOffVoice {
		t.Errorf("verdict: got %q, want OFF_VOICE", report.Verdict)
	}
}
