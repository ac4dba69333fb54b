// Package render produces output from a fully assembled validation report or
// author profile.
package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/voicemark/internal/schema"
	"github.com/dshills/voicemark/internal/validate"
)

// RenderJSON produces a pretty-printed JSON representation of the report.
// The output round-trips through json.Unmarshal back to an equal report.
func RenderJSON(report *schema.ValidationReport) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("render: nil report")
	}
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render: json marshal: %w", err)
	}
	return b, nil
}

// RenderMarkdown produces a GitHub-flavoured Markdown summary of the report,
// suitable for PR comments or terminal output. Every violation and every
// out-of-tolerance category present in the report will appear in the output.
func RenderMarkdown(report *schema.ValidationReport) string {
	if report == nil {
		return ""
	}
	var sb strings.Builder

	// Summary section.
	sb.WriteString("## Voice Conformance Report\n\n")
	fmt.Fprintf(&sb, "**Verdict:** %s  \n", report.Verdict)
	critical, warn, info := validate.CountSeverities(report)
	fmt.Fprintf(&sb, "**Critical:** %d | **Warn:** %d | **Info:** %d  \n", critical, warn, info)
	within, beyond := validate.SummarizeDeviations(report.CategoryReport)
	fmt.Fprintf(&sb, "**Categories:** %d within tolerance, %d beyond\n\n", within, beyond)

	// Similarity scores.
	if len(report.Similarity) > 0 {
		sb.WriteString("## Similarity\n\n")
		sb.WriteString("| Family | Score | Note |\n")
		sb.WriteString("|---|---|---|\n")
		for _, s := range report.Similarity {
			if s.Defined {
				fmt.Fprintf(&sb, "| %s | %.4f | |\n", s.Family, *s.Score)
			} else {
				fmt.Fprintf(&sb, "| %s | undefined | %s |\n", s.Family, mdEscape(s.Reason))
			}
		}
		sb.WriteString("\n")
	}

	// Category deviations beyond tolerance.
	if beyond > 0 {
		sb.WriteString("## Category Deviations\n\n")
		sb.WriteString("| Category | z generated | z target | Deviation |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, e := range report.CategoryReport {
			if e.WithinTolerance {
				continue
			}
			fmt.Fprintf(&sb, "| %s | %.2f | %.2f | %+.2f |\n",
				e.Category, e.ZGenerated, e.ZTarget, e.Deviation)
		}
		sb.WriteString("\n")
	}

	// Violations.
	if len(report.Violations) > 0 {
		sb.WriteString("## Violations\n\n")
		for _, v := range report.Violations {
			fmt.Fprintf(&sb, "<details>\n<summary><strong>%s</strong> [%s] — %s</summary>\n\n",
				v.Check, v.Severity, mdEscape(v.Detail))
			if len(v.Sentences) > 0 {
				sb.WriteString("**Sentences:** ")
				for i, idx := range v.Sentences {
					if i > 0 {
						sb.WriteString(", ")
					}
					fmt.Fprintf(&sb, "%d", idx)
				}
				sb.WriteString("\n\n")
			}
			sb.WriteString("</details>\n\n")
		}
	}

	return sb.String()
}

// RenderProfileMarkdown produces a Markdown summary of an author profile:
// trait sliders, the strongest category signals, and the recorded defaults.
func RenderProfileMarkdown(p *schema.AuthorProfile) string {
	if p == nil {
		return ""
	}
	var sb strings.Builder

	sb.WriteString("## Author Voice Profile\n\n")
	fmt.Fprintf(&sb, "**Author:** %s  \n", p.AuthorID)
	fmt.Fprintf(&sb, "**Run:** %s  \n", p.RunID)
	fmt.Fprintf(&sb, "**Schema:** %s\n\n", p.SchemaVersion)

	if len(p.Sources) > 0 {
		sb.WriteString("## Sources\n\n")
		sb.WriteString("| Domain | Samples |\n")
		sb.WriteString("|---|---|\n")
		for _, s := range p.Sources {
			domain := s.DomainID
			if domain == "" {
				domain = "(general)"
			}
			fmt.Fprintf(&sb, "| %s | %d |\n", domain, s.SampleCount)
		}
		sb.WriteString("\n")
	}

	if len(p.Traits) > 0 {
		sb.WriteString("## Traits\n\n")
		sb.WriteString("| Model | Axis | Value |\n")
		sb.WriteString("|---|---|---|\n")
		for _, model := range sortedKeys(p.Traits) {
			axes := p.Traits[model]
			for _, axis := range sortedKeys(axes) {
				fmt.Fprintf(&sb, "| %s | %s | %.2f |\n", model, axis, axes[axis])
			}
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "**Cadence:** %s | **Pronoun distance:** %s\n",
		p.DefaultControls.CadencePattern, p.DefaultControls.PronounDistance)

	return sb.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// mdEscape replaces characters that would break Markdown table cells.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}
