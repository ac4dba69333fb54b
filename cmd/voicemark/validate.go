package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/voicemark/internal/adjust"
	"github.com/dshills/voicemark/internal/enforce"
	"github.com/dshills/voicemark/internal/render"
	"github.com/dshills/voicemark/internal/scorer"
	"github.com/dshills/voicemark/internal/styleplan"
	"github.com/dshills/voicemark/internal/validate"
)

type validateFlags struct {
	profile  string
	channel  string
	config   string
	baseline string
	out      string
	format   string
	failOn   string
	adjust   []string
	fix      bool
	strict   bool
	runMax   int
	verbose  bool
}

func newValidateCmd() *cobra.Command {
	var flags validateFlags

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Score a text against an author profile and render the verdict",
		Long: `Validate re-scores a text with the same normalization and baseline tables
used at extraction, compares it to the profile's targets, and renders a full
report. With --channel, the text is judged against that channel's baseline
and the three-term target sum; without it, against the profile's own
z-scores. With --config, the deterministic checks run first and their
violations fold into the report.

Reads stdin when the file is "-" or absent. --fail-on exits 2 when the
verdict is at or above the given threshold.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.profile, "profile", "", "author profile JSON (required)")
	cmd.Flags().StringVar(&flags.channel, "channel", "", "channel whose baseline and targets judge the text")
	cmd.Flags().StringVar(&flags.config, "config", "", "style config JSON; enables the deterministic checks")
	cmd.Flags().StringVar(&flags.baseline, "baseline", "", "baseline dataset YAML (default: embedded dataset)")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&flags.format, "format", "json", "output format: json or markdown")
	cmd.Flags().StringVar(&flags.failOn, "fail-on", "", "exit 2 when the verdict reaches this level (e.g. DEVIATION_DETECTED)")
	cmd.Flags().StringArrayVar(&flags.adjust, "adjust", nil, "percentile adjustment category=delta applied to the target (repeatable)")
	cmd.Flags().BoolVar(&flags.fix, "fix", false, "rewrite typography before scoring")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "escalate violation severities one level")
	cmd.Flags().IntVar(&flags.runMax, "run-max", 0, "consecutive long-sentence allowance (default 3)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose logging")
	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

func runValidate(args []string, flags validateFlags) error {
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
	input, err := readInput(args)
	if err != nil {
		return err
	}

	opts := validate.Options{
		Logger: &logger,
		Enforce: enforce.Options{
			FixTypography:  flags.fix,
			Strict:         flags.strict,
			SentenceRunMax: flags.runMax,
		},
	}
	if flags.channel != "" {
		channel, err := styleplan.Channel(flags.channel)
		if err != nil {
			return exitWith(exitCodeBadInput, "%v", err)
		}
		planner := &styleplan.Planner{Store: store}
		opts.DomainID = channel.DomainID
		opts.TargetZ = planner.Targets(profile, adjustments, channel.DomainID)
	} else if len(adjustments) > 0 {
		// No channel: adjusted profile targets, no domain delta.
		opts.TargetZ = adjust.Apply(profile, adjustments).EffectiveZScores()
	}
	if flags.config != "" {
		cfg, err := loadStyleConfig(flags.config)
		if err != nil {
			return err
		}
		opts.Config = cfg
	}

	report, err := validate.Validate(input, profile, store, scorer.NewLexicon(), opts)
	if err != nil {
		return exitWith(exitCodeBadInput, "validate: %v", err)
	}

	var out []byte
	switch flags.format {
	case "json":
		out, err = render.RenderJSON(report)
		if err != nil {
			return err
		}
	case "markdown":
		out = []byte(render.RenderMarkdown(report))
	default:
		return exitWith(exitCodeBadInput, "unknown format %q (use json or markdown)", flags.format)
	}
	if err := writeOutput(flags.out, out); err != nil {
		return err
	}

	if failOnExceeded(report.Verdict, failOn) {
		return exitWith(exitCodeFailOn, "verdict %s is at or above --fail-on=%s", report.Verdict, failOn)
	}
	return nil
}
