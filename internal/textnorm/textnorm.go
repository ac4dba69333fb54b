// Package textnorm provides the canonical text normalization applied before
// any category scoring. Extraction and validation must run the exact same
// normalization or their z-scores are not comparable, so both call into this
// package and nothing else. Normalize is idempotent: applying it to its own
// output returns the input unchanged.
package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// runeFolds maps typographic variants to their canonical forms. Every
// replacement value must itself be a fixed point of the fold table, or
// idempotence breaks.
var runeFolds = map[rune]string{
	'‘':      "'",   // left single quotation mark
	'’':      "'",   // right single quotation mark
	'‚':      "'",   // single low-9 quotation mark
	'“':      `"`,   // left double quotation mark
	'”':      `"`,   // right double quotation mark
	'„':      `"`,   // double low-9 quotation mark
	'–':      "—",   // en dash → em dash
	'―':      "—",   // horizontal bar → em dash
	'−':      "-",   // minus sign → hyphen
	'…':      "...", // ellipsis
	'\u00a0': " ",   // no-break space
	'\u2009': " ",   // thin space
	'\u200b': "",    // zero-width space
	'\ufeff': "",    // byte order mark
}

// Normalize returns the canonical form of text: Unicode NFC, typographic
// punctuation folded to canonical characters, line endings normalized to \n,
// horizontal whitespace runs collapsed to a single space, and blank-line runs
// collapsed to a single blank line.
func Normalize(text string) string {
	text = norm.NFC.String(text)
	text = foldRunes(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = collapseWhitespace(text)
	return strings.TrimSpace(text)
}

// foldRunes applies the runeFolds table and converts double hyphens to an
// em dash. The double-hyphen pass runs after the table so folded dashes are
// not re-folded.
func foldRunes(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if rep, ok := runeFolds[r]; ok {
			sb.WriteString(rep)
			continue
		}
		sb.WriteRune(r)
	}
	return foldHyphenRuns(sb.String())
}

// foldHyphenRuns converts typewriter em dashes ("--" and "---") to a real
// em dash. Runs of four or more hyphens are horizontal rules, not dashes,
// and are left alone.
func foldHyphenRuns(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	i := 0
	for i < len(text) {
		if text[i] != '-' {
			sb.WriteByte(text[i])
			i++
			continue
		}
		j := i
		for j < len(text) && text[j] == '-' {
			j++
		}
		switch run := j - i; run {
		case 2, 3:
			sb.WriteString("—")
		default:
			sb.WriteString(text[i:j])
		}
		i = j
	}
	return sb.String()
}

// collapseWhitespace collapses runs of spaces and tabs to one space, strips
// trailing whitespace from each line, and collapses runs of blank lines to a
// single blank line.
func collapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
