package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/voicemark/internal/enforce"
	"github.com/dshills/voicemark/internal/genai"
	"github.com/dshills/voicemark/internal/render"
	"github.com/dshills/voicemark/internal/schema"
	"github.com/dshills/voicemark/internal/scorer"
	"github.com/dshills/voicemark/internal/styleplan"
)

type generateFlags struct {
	profile      string
	channel      string
	baseline     string
	out          string
	reportOut    string
	failOn       string
	adjust       []string
	override     []string
	provider     string
	model        string
	maxTokens    int
	temperature  float64
	significance float64
	fix          bool
	strict       bool
	runMax       int
	debug        bool
	verbose      bool
}

func newGenerateCmd() *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate [brief-file]",
		Short: "Generate on-voice text from a brief via an LLM provider",
		Long: `Generate plans a style config for the channel, builds the prompts, calls
the provider, and runs enforcement plus validation on the output. When hard
violations remain it makes one regeneration attempt with full diagnostics.

Reads the brief from stdin when the file is "-" or absent. Exits 4 on
provider errors and 5 when the output is still off-voice after the
regeneration attempt (the last text and report are still written).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.profile, "profile", "", "author profile JSON (required)")
	cmd.Flags().StringVar(&flags.channel, "channel", "", "target channel: blog, tweets, or professional-network (required)")
	cmd.Flags().StringVar(&flags.baseline, "baseline", "", "baseline dataset YAML (default: embedded dataset)")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "output file for the generated text (default: stdout)")
	cmd.Flags().StringVar(&flags.reportOut, "report", "", "write the validation report JSON to this file")
	cmd.Flags().StringVar(&flags.failOn, "fail-on", "", "exit 2 when the verdict reaches this level")
	cmd.Flags().StringArrayVar(&flags.adjust, "adjust", nil, "percentile adjustment category=delta (repeatable)")
	cmd.Flags().StringArrayVar(&flags.override, "override", nil, "directive override key=value (repeatable)")
	cmd.Flags().StringVar(&flags.provider, "provider", "anthropic", "LLM provider: anthropic, openai, or google")
	cmd.Flags().StringVar(&flags.model, "model", "", "model name (provider default when empty)")
	cmd.Flags().IntVar(&flags.maxTokens, "max-tokens", 0, "completion token cap (default 2048)")
	cmd.Flags().Float64Var(&flags.temperature, "temperature", 0, "sampling temperature")
	cmd.Flags().Float64Var(&flags.significance, "significance", 0, "minimum |target z| that emits a liwc target (default 0.5)")
	cmd.Flags().BoolVar(&flags.fix, "fix", false, "rewrite typography in the output")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "escalate violation severities one level")
	cmd.Flags().IntVar(&flags.runMax, "run-max", 0, "consecutive long-sentence allowance (default 3)")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "print the prompts to stderr")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose logging")
	_ = cmd.MarkFlagRequired("profile")
	_ = cmd.MarkFlagRequired("channel")

	return cmd
}

func runGenerate(ctx context.Context, args []string, flags generateFlags) error {
	logger := newLogger(flags.verbose)

	failOn, err := parseFailOn(flags.failOn)
	if err != nil {
		return err
	}
	store, err := loadStore(flags.baseline)
	if err != nil {
		return exitWith(exitCodeBadInput, "load baseline: %v", err)
	}
	profile, err := loadProfile(flags.profile)
	if err != nil {
		return err
	}
	adjustments, err := parseAdjustments(flags.adjust)
	if err != nil {
		return err
	}
	overrides, err := parseOverrides(flags.override)
	if err != nil {
		return err
	}
	brief, err := readInput(args)
	if err != nil {
		return err
	}

	channel, err := styleplan.Channel(flags.channel)
	if err != nil {
		return exitWith(exitCodeBadInput, "%v", err)
	}
	planner := &styleplan.Planner{Store: store, Significance: flags.significance}
	cfg, _, err := planner.Plan(profile, adjustments, flags.channel, overrides)
	if err != nil {
		return exitWith(exitCodeBadInput, "plan: %v", err)
	}
	targets := planner.Targets(profile, adjustments, channel.DomainID)

	logger.Info().Str("channel", flags.channel).Str("provider", flags.provider).Msg("generating")

	text, report, genErr := genai.Generate(ctx, brief, cfg, profile, store, scorer.NewLexicon(), genai.Options{
		Provider:    flags.provider,
		Model:       flags.model,
		MaxTokens:   flags.maxTokens,
		Temperature: flags.temperature,
		Debug:       flags.debug,
		DomainID:    channel.DomainID,
		TargetZ:     targets,
		Enforce: enforce.Options{
			FixTypography:  flags.fix,
			Strict:         flags.strict,
			SentenceRunMax: flags.runMax,
		},
	})
	if genErr != nil && !errors.Is(genErr, genai.ErrOffVoice) {
		return exitWith(exitCodeAPIError, "generate: %v", genErr)
	}

	// Off-voice still produces artifacts: the last attempt's text and report
	// are written before the exit code signals the failure.
	if err := writeOutput(flags.out, []byte(text)); err != nil {
		return err
	}
	if err := writeReport(flags.reportOut, report); err != nil {
		return err
	}

	if errors.Is(genErr, genai.ErrOffVoice) {
		return exitWith(exitCodeBadOutput, "%v", genErr)
	}
	if failOnExceeded(report.Verdict, failOn) {
		return exitWith(exitCodeFailOn, "verdict %s is at or above --fail-on=%s", report.Verdict, failOn)
	}
	return nil
}

// writeReport writes the validation report JSON to path, or a Markdown
// summary to stderr when no path is given.
func writeReport(path string, report *schema.ValidationReport) error {
	if report == nil {
		return nil
	}
	if path == "" {
		fmt.Fprint(os.Stderr, render.RenderMarkdown(report))
		return nil
	}
	b, err := render.RenderJSON(report)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
