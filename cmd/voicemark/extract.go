package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/voicemark/internal/corpus"
	"github.com/dshills/voicemark/internal/extract"
	"github.com/dshills/voicemark/internal/render"
	"github.com/dshills/voicemark/internal/schema"
	"github.com/dshills/voicemark/internal/scorer"
)

type extractFlags struct {
	author    string
	baseline  string
	out       string
	format    string
	tolerance float64
	runMax    int
	ignore    []string
	summary   bool
	verbose   bool
}

func newExtractCmd() *cobra.Command {
	var flags extractFlags

	cmd := &cobra.Command{
		Use:   "extract [corpus-dir]",
		Short: "Extract an author voice profile from a corpus of writing samples",
		Long: `Extract walks a directory of writing samples (.txt, .md), scores each
sample, and produces a versioned author profile. First-level subdirectories
name the domain a sample belongs to ("blog", "tweets"); files at the root go
into the general bucket.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.author, "author", "", "author identifier recorded on the profile (required)")
	cmd.Flags().StringVar(&flags.baseline, "baseline", "", "baseline dataset YAML (default: embedded dataset)")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&flags.format, "format", "json", "output format: json or markdown")
	cmd.Flags().Float64Var(&flags.tolerance, "tolerance", 0, "per-category z tolerance recorded on the profile (default 0.75)")
	cmd.Flags().IntVar(&flags.runMax, "run-max", 0, "consecutive long-sentence allowance recorded on the profile (default 3)")
	cmd.Flags().StringArrayVar(&flags.ignore, "ignore", nil, "additional directory names to skip (repeatable)")
	cmd.Flags().BoolVar(&flags.summary, "summary", false, "print a corpus inventory to stderr before extracting")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose logging")
	_ = cmd.MarkFlagRequired("author")

	return cmd
}

func runExtract(corpusDir string, flags extractFlags) error {
	logger := newLogger(flags.verbose)

	store, err := loadStore(flags.baseline)
	if err != nil {
		return exitWith(exitCodeBadInput, "load baseline: %v", err)
	}

	c, err := corpus.Load(corpusDir, flags.ignore)
	if err != nil {
		return exitWith(exitCodeBadInput, "load corpus: %v", err)
	}
	if len(c.Entries) == 0 {
		return exitWith(exitCodeBadInput, "no writing samples found under %s", corpusDir)
	}
	if flags.summary {
		fmt.Fprint(os.Stderr, c.Summary())
	}
	logger.Info().Int("samples", len(c.Entries)).Int("domains", len(c.Domains())).Msg("corpus loaded")

	profile, err := extract.Extract(c.Samples(), store, scorer.NewLexicon(), extract.Options{
		AuthorID:         flags.author,
		Logger:           &logger,
		ToleranceDefault: flags.tolerance,
		SentenceRunMax:   flags.runMax,
	})
	if err != nil {
		return exitWith(exitCodeBadInput, "extract: %v", err)
	}

	var out []byte
	switch flags.format {
	case "json":
		out, err = schema.MarshalProfile(profile)
		if err != nil {
			return err
		}
	case "markdown":
		out = []byte(render.RenderProfileMarkdown(profile))
	default:
		return exitWith(exitCodeBadInput, "unknown format %q (use json or markdown)", flags.format)
	}
	return writeOutput(flags.out, out)
}
