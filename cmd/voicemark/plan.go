package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/voicemark/internal/baseline"
	"github.com/dshills/voicemark/internal/styleplan"
)

type planFlags struct {
	profile      string
	channel      string
	baseline     string
	out          string
	adjust       []string
	override     []string
	significance float64
	highZ        float64
	lowZ         float64
}

func newPlanCmd() *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan a style config for one output channel",
		Long: `Plan combines an author profile, optional percentile adjustments, and a
channel's baseline delta into a flat key=value style config. Directive keys
may be overridden; computed keys (liwc_targets, lexicon_*) may not.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(flags)
		},
	}

	cmd.Flags().StringVar(&flags.profile, "profile", "", "author profile JSON (required)")
	cmd.Flags().StringVar(&flags.channel, "channel", "", "target channel: blog, tweets, or professional-network (required)")
	cmd.Flags().StringVar(&flags.baseline, "baseline", "", "baseline dataset YAML (default: embedded dataset)")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().StringArrayVar(&flags.adjust, "adjust", nil, "percentile adjustment category=delta, e.g. --adjust posemo=+10 (repeatable)")
	cmd.Flags().StringArrayVar(&flags.override, "override", nil, "directive override key=value (repeatable)")
	cmd.Flags().Float64Var(&flags.significance, "significance", 0, "minimum |target z| that emits a liwc target (default 0.5)")
	cmd.Flags().Float64Var(&flags.highZ, "high-z", 0, "descriptor bucketing high threshold (default 1.0)")
	cmd.Flags().Float64Var(&flags.lowZ, "low-z", 0, "descriptor bucketing low threshold (default -1.0)")
	_ = cmd.MarkFlagRequired("profile")
	_ = cmd.MarkFlagRequired("channel")

	return cmd
}

func runPlan(flags planFlags) error {
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

	planner := newPlanner(store, flags.significance, flags.highZ, flags.lowZ)
	cfg, _, err := planner.Plan(profile, adjustments, flags.channel, overrides)
	if err != nil {
		return exitWith(exitCodeBadInput, "plan: %v", err)
	}

	out, err := wireJSON(cfg.Wire())
	if err != nil {
		return err
	}
	return writeOutput(flags.out, out)
}

func newPlanner(store *baseline.Store, significance, highZ, lowZ float64) *styleplan.Planner {
	// Each unset threshold keeps its default, so passing only one flag never
	// collapses the other side of the bucketing to zero.
	th := styleplan.DefaultThresholds
	if highZ != 0 {
		th.High = highZ
	}
	if lowZ != 0 {
		th.Low = lowZ
	}
	return &styleplan.Planner{Store: store, Significance: significance, Thresholds: th}
}
