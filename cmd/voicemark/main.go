// Command voicemark drives the author voice pipeline: extract a profile from
// writing samples, plan a style config for a channel, enforce and validate
// generated text, or run the full generation loop against an LLM provider.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dshills/voicemark/internal/baseline"
	"github.com/dshills/voicemark/internal/schema"
	"github.com/dshills/voicemark/internal/validate"
)

// Exit codes. 1 is reserved for unexpected internal errors.
const (
	exitCodeFailOn    = 2 // verdict at or above the --fail-on threshold
	exitCodeBadInput  = 3 // missing or invalid input files/flags
	exitCodeAPIError  = 4 // provider communication failure
	exitCodeBadOutput = 5 // output still off-voice after the regeneration attempt
)

// exitError carries a process exit code through cobra's error return.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitWith(code int, format string, args ...any) error {
	return &exitError{code: code, err: fmt.Errorf(format, args...)}
}

func main() {
	root := &cobra.Command{
		Use:           "voicemark",
		Short:         "Author voice profiling and style conformance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newExtractCmd(),
		newPlanCmd(),
		newEnforceCmd(),
		newValidateCmd(),
		newGenerateCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		code := 1
		var ee *exitError
		if errors.As(err, &ee) {
			code = ee.code
		}
		os.Exit(code)
	}
}

// newLogger builds the CLI's stderr logger. Color is enabled only when
// stderr is a terminal.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{
		Out:     colorable.NewColorable(os.Stderr),
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// loadStore loads the baseline dataset from path, or the embedded default
// dataset when path is empty.
func loadStore(path string) (*baseline.Store, error) {
	if path == "" {
		return baseline.Default()
	}
	return baseline.LoadFile(path)
}

// loadProfile reads and version-checks an exported author profile.
func loadProfile(path string) (*schema.AuthorProfile, error) {
	if path == "" {
		return nil, exitWith(exitCodeBadInput, "a profile file is required (--profile)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, exitWith(exitCodeBadInput, "read profile: %v", err)
	}
	p, err := schema.UnmarshalProfile(data)
	if err != nil {
		return nil, exitWith(exitCodeBadInput, "parse profile: %v", err)
	}
	return p, nil
}

// readInput reads a positional input argument: a file path, or stdin when
// the path is "-" or absent.
func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", exitWith(exitCodeBadInput, "read stdin: %v", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", exitWith(exitCodeBadInput, "read input: %v", err)
	}
	return string(data), nil
}

// writeOutput writes b to the --out file, or stdout when out is empty.
func writeOutput(out string, b []byte) error {
	if len(b) > 0 && b[len(b)-1] != '\n' {
		b = append(b, '\n')
	}
	if out == "" {
		_, err := os.Stdout.Write(b)
		return err
	}
	if err := os.WriteFile(out, b, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// parseAdjustments parses repeated "category=delta" flags, where delta is a
// percentile shift like "+10" or "-7.5".
func parseAdjustments(specs []string) (schema.AdjustmentSet, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	set := make(schema.AdjustmentSet, len(specs))
	for _, s := range specs {
		cat, val, ok := strings.Cut(s, "=")
		cat = strings.TrimSpace(cat)
		if !ok || cat == "" {
			return nil, exitWith(exitCodeBadInput, "adjustment %q is not category=delta", s)
		}
		delta, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, exitWith(exitCodeBadInput, "adjustment %q: %v", s, err)
		}
		set[cat] = delta
	}
	return set, nil
}

// parseOverrides parses repeated "key=value" flags into an override map.
func parseOverrides(specs []string) (map[string]string, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(specs))
	for _, s := range specs {
		key, val, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, exitWith(exitCodeBadInput, "override %q is not key=value", s)
		}
		out[key] = strings.TrimSpace(val)
	}
	return out, nil
}

// loadStyleConfig reads a flat wire-format JSON style config, failing closed
// on unknown keys.
func loadStyleConfig(path string) (*schema.StyleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, exitWith(exitCodeBadInput, "read style config: %v", err)
	}
	var wire map[string]string
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, exitWith(exitCodeBadInput, "parse style config: %v", err)
	}
	cfg, err := schema.DecodeWire(wire)
	if err != nil {
		return nil, exitWith(exitCodeBadInput, "style config: %v", err)
	}
	return cfg, nil
}

// wireJSON marshals a wire block. encoding/json sorts map keys, so the output
// is stable across runs.
func wireJSON(wire map[string]string) ([]byte, error) {
	b, err := json.MarshalIndent(wire, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal wire config: %w", err)
	}
	return b, nil
}

// parseFailOn validates a --fail-on verdict threshold.
func parseFailOn(v string) (schema.Verdict, error) {
	if v == "" {
		return "", nil
	}
	verdict := schema.Verdict(strings.ToUpper(strings.TrimSpace(v)))
	if validate.VerdictOrdinal(verdict) < 0 {
		return "", exitWith(exitCodeBadInput,
			"unknown --fail-on verdict %q (use CONFORMANT, MINOR_DEVIATION, DEVIATION_DETECTED, or OFF_VOICE)", v)
	}
	return verdict, nil
}

// failOnExceeded reports whether actual is at or above the threshold verdict.
func failOnExceeded(actual, threshold schema.Verdict) bool {
	if threshold == "" {
		return false
	}
	return validate.VerdictOrdinal(actual) >= validate.VerdictOrdinal(threshold)
}
