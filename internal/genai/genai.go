// Package genai handles LLM provider communication for voice-conformant
// generation: prompt construction from a style config, the completion call,
// and the single regeneration attempt when the output validates off-voice.
// Everything deterministic lives elsewhere; this package is the only place
// an external model is called.
package genai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dshills/voicemark/internal/baseline"
	"github.com/dshills/voicemark/internal/enforce"
	"github.com/dshills/voicemark/internal/schema"
	"github.com/dshills/voicemark/internal/scorer"
	"github.com/dshills/voicemark/internal/validate"
)

// ErrOffVoice is returned when both the initial and regenerated outputs
// validate as OFF_VOICE or carry a CRITICAL violation. The last text and
// report are still returned so the caller can render the diagnostics.
var ErrOffVoice = errors.New("genai: output still off-voice after regeneration attempt")

// Provider is the interface for LLM backends.
type Provider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error)
}

// NewProvider is the factory for creating LLM providers. It is a package-level
// variable so tests can replace it with a mock without modifying the call site.
// Tests must restore the original value; use t.Cleanup to do so safely.
var NewProvider func(providerName, model string) (Provider, error) = defaultNewProvider

// defaultMaxTokens caps the completion when the caller does not set one.
const defaultMaxTokens = 2048

// Options configures a Generate call.
type Options struct {
	Provider    string
	Model       string
	MaxTokens   int
	Temperature float64
	Debug       bool

	// DomainID and TargetZ are passed through to validation, so the output
	// is judged against the same channel baseline the plan targeted.
	DomainID string
	TargetZ  map[string]float64
	Enforce  enforce.Options
}

// Generate builds the prompts from the style config, calls the provider,
// runs enforcement plus validation, and performs one regeneration attempt
// when hard violations remain. The returned text is the enforced output of
// the last attempt and the report is its validation.
func Generate(
	ctx context.Context,
	brief string,
	cfg *schema.StyleConfig,
	profile *schema.AuthorProfile,
	store *baseline.Store,
	sc scorer.Scorer,
	opts Options,
) (string, *schema.ValidationReport, error) {
	provider, err := NewProvider(opts.Provider, opts.Model)
	if err != nil {
		return "", nil, fmt.Errorf("genai: create provider: %w", err)
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	// The enforcement pass and the validation pass must gate sentence runs on
	// the same allowance; the profile's recorded value fills an unset one.
	if opts.Enforce.SentenceRunMax <= 0 && profile != nil {
		opts.Enforce.SentenceRunMax = profile.Tolerance.SentenceRunMax
	}

	sysPrompt := buildSystemPrompt(cfg)
	userPrompt := buildUserPrompt(brief)

	if opts.Debug {
		fmt.Fprintf(os.Stderr, "=== DEBUG: system prompt ===\n%s\n", sysPrompt)
		fmt.Fprintf(os.Stderr, "=== DEBUG: user prompt ===\n%s\n", userPrompt)
	}

	text, report, err := completeAndValidate(ctx, provider, sysPrompt, userPrompt, cfg, profile, store, sc, opts)
	if err != nil {
		return "", nil, err
	}
	if !hardViolation(report) {
		return text, report, nil
	}

	// One regeneration attempt: include the previous output and its
	// diagnostics so the model has full context.
	regenPrompt := buildRegeneratePrompt(userPrompt, text, report)
	text2, report2, err := completeAndValidate(ctx, provider, sysPrompt, regenPrompt, cfg, profile, store, sc, opts)
	if err != nil {
		return "", nil, err
	}
	if !hardViolation(report2) {
		return text2, report2, nil
	}
	return text2, report2, ErrOffVoice
}

func completeAndValidate(
	ctx context.Context,
	provider Provider,
	sysPrompt, userPrompt string,
	cfg *schema.StyleConfig,
	profile *schema.AuthorProfile,
	store *baseline.Store,
	sc scorer.Scorer,
	opts Options,
) (string, *schema.ValidationReport, error) {
	raw, err := provider.Complete(ctx, sysPrompt, userPrompt, opts.MaxTokens, opts.Temperature)
	if err != nil {
		return "", nil, fmt.Errorf("genai: complete: %w", err)
	}
	text := stripMarkdownFences(raw)

	res := enforce.Run(text, cfg, opts.Enforce)
	text = res.Text

	report, err := validate.Validate(text, profile, store, sc, validate.Options{
		DomainID: opts.DomainID,
		TargetZ:  opts.TargetZ,
		Config:   cfg,
		Enforce:  opts.Enforce,
	})
	if err != nil {
		return "", nil, fmt.Errorf("genai: validate output: %w", err)
	}
	return text, report, nil
}

// hardViolation reports whether the output needs a regeneration attempt:
// an OFF_VOICE verdict or any CRITICAL violation.
func hardViolation(report *schema.ValidationReport) bool {
	if report.Verdict == schema.VerdictOffVoice {
		return true
	}
	for _, v := range report.Violations {
		if v.Severity == schema.SeverityCritical {
			return true
		}
	}
	return false
}

// fenceRe matches a markdown code fence block (``` or ~~~) with an optional
// language tag and captures the content between the fences.
var fenceRe = regexp.MustCompile("(?s)^(?:`{3}|~{3})[^\\n]*\\n(.*?)(?:`{3}|~{3})\\s*$")

// openFenceRe matches only an opening fence line, used to strip orphaned
// opening fences from truncated responses.
var openFenceRe = regexp.MustCompile("^(?:`{3}|~{3})[^\\n]*\\n")

// stripMarkdownFences removes leading/trailing markdown code fences that
// models sometimes wrap around their output.
func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	if loc := openFenceRe.FindStringIndex(s); loc != nil {
		return strings.TrimSpace(s[loc[1]:])
	}
	return s
}

// buildSystemPrompt assembles the ghostwriting system prompt from the style
// config's wire block. Keys are emitted in sorted order so the prompt is
// stable for identical configs.
func buildSystemPrompt(cfg *schema.StyleConfig) string {
	var sb strings.Builder

	sb.WriteString("You are a ghostwriter reproducing one specific author's voice.\n\n")
	sb.WriteString("Write plain prose only. No markdown headings, no code fences, " +
		"no explanation of your process.\n\n")

	sb.WriteString("Follow every directive below. Descriptor values (high, medium, " +
		"medium_low, low) state how strongly a linguistic category should appear " +
		"relative to typical writing in this channel.\n\n")

	wire := cfg.Wire()
	keys := make([]string, 0, len(wire))
	for k := range wire {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sb.WriteString("STYLE DIRECTIVES:\n")
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %s: %s\n", k, wire[k])
	}
	sb.WriteString("\n")

	sb.WriteString("Lexicon directives: lexicon_signature words are the author's " +
		"recurring vocabulary, use them where natural; lexicon_prefer_* words mark " +
		"registers to lean into; lexicon_avoid_* words mark registers to stay out of. " +
		"Never force a listed word where it does not fit.\n")

	return sb.String()
}

// buildUserPrompt assembles the user prompt from the content brief.
func buildUserPrompt(brief string) string {
	var sb strings.Builder
	sb.WriteString("CONTENT BRIEF:\n")
	sb.WriteString(brief)
	sb.WriteString("\n\nWrite the piece now.")
	return sb.String()
}

// buildRegeneratePrompt constructs the regeneration message. It includes the
// original brief, the previous output, and its diagnostics so the model has
// full context.
func buildRegeneratePrompt(originalUserPrompt, previousText string, report *schema.ValidationReport) string {
	var sb strings.Builder
	sb.WriteString(originalUserPrompt)
	sb.WriteString("\n\nYour previous draft was:\n")
	sb.WriteString(previousText)
	sb.WriteString("\n\nThat draft did not conform to the author's voice. Problems:\n")
	for _, v := range report.Violations {
		fmt.Fprintf(&sb, "  - [%s] %s: %s\n", v.Severity, v.Check, v.Detail)
	}
	for _, e := range report.CategoryReport {
		if e.WithinTolerance {
			continue
		}
		direction := "more"
		if e.Deviation > 0 {
			direction = "less"
		}
		fmt.Fprintf(&sb, "  - category %s deviates by %.2f; use %s of this register\n",
			e.Category, e.Deviation, direction)
	}
	sb.WriteString("\nRewrite the piece, fixing every problem listed. Do not mention the problems in the output.")
	return sb.String()
}

// ── Provider dispatch ─────────────────────────────────────────────────────────

// defaultNewProvider dispatches to the appropriate provider implementation.
func defaultNewProvider(providerName, model string) (Provider, error) {
	switch strings.ToLower(providerName) {
	case "anthropic", "":
		return newAnthropicProvider(model)
	case "openai":
		return newOpenAIProvider(model)
	case "google":
		return newGoogleProvider(model)
	default:
		return nil, fmt.Errorf("genai: unknown provider %q", providerName)
	}
}

// ── Anthropic provider ───────────────────────────────────────────────────────

// anthropicProvider implements Provider using the Anthropic SDK.
// anthropic.Client is a value type; the SDK's NewClient returns it by value.
type anthropicProvider struct {
	client anthropic.Client
	model  string
}

func newAnthropicProvider(model string) (Provider, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("genai: ANTHROPIC_API_KEY environment variable not set")
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &anthropicProvider{client: client, model: model}, nil
}

func (p *anthropicProvider) Complete(
	ctx context.Context,
	systemPrompt, userPrompt string,
	maxTokens int,
	temperature float64,
) (string, error) {
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(temperature),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: messages.new: %w", err)
	}

	var parts []string
	for _, block := range msg.Content {
		// "text" is the only content type that carries assistant text output.
		// The SDK does not expose a typed constant for content block types in
		// this version.
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("anthropic: response contained no text content blocks")
	}
	return strings.Join(parts, ""), nil
}
