package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/voicemark/internal/enforce"
)

type enforceFlags struct {
	config string
	out    string
	fix    bool
	strict bool
	runMax int
	text   bool
}

func newEnforceCmd() *cobra.Command {
	var flags enforceFlags

	cmd := &cobra.Command{
		Use:   "enforce [file]",
		Short: "Run the deterministic style checks against a text",
		Long: `Enforce runs the rule-based checks (typography, sentence runs, pronoun
distance, metaphor sets, evidence pairing) against a text, using a planned
style config as the contract. Reads stdin when the file is "-" or absent.

Exits 2 when any check fails.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnforce(args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.config, "config", "", "style config JSON from plan (required)")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&flags.fix, "fix", false, "rewrite typography instead of only reporting it")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "escalate violation severities one level")
	cmd.Flags().IntVar(&flags.runMax, "run-max", 0, "consecutive long-sentence allowance (default 3)")
	cmd.Flags().BoolVar(&flags.text, "text", false, "output the (possibly fixed) text instead of the JSON result")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runEnforce(args []string, flags enforceFlags) error {
	cfg, err := loadStyleConfig(flags.config)
	if err != nil {
		return err
	}
	input, err := readInput(args)
	if err != nil {
		return err
	}

	res := enforce.Run(input, cfg, enforce.Options{
		FixTypography:  flags.fix,
		Strict:         flags.strict,
		SentenceRunMax: flags.runMax,
	})

	var out []byte
	if flags.text {
		out = []byte(res.Text)
	} else {
		out, err = json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
	}
	if err := writeOutput(flags.out, out); err != nil {
		return err
	}

	if !res.Passed() {
		return exitWith(exitCodeFailOn, "%d violation(s)", len(res.Violations))
	}
	return nil
}
