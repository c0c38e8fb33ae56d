package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	lang "golang.org/x/text/language"

	"github.com/codeshield-io/codeshield/internal/analysis"
	"github.com/codeshield-io/codeshield/internal/language"
)

const indent = "  "

// Options control the terminal rendering.
type Options struct {
	Color bool
}

// OptionsFor enables colour only when w is a terminal and NO_COLOR is unset.
func OptionsFor(w io.Writer) Options {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return Options{}
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return Options{}
	}
	return Options{Color: isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())}
}

type palette struct {
	high, medium, low *color.Color
	heading, warn     *color.Color
	ok, faint         *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		high:    color.New(color.FgRed, color.Bold),
		medium:  color.New(color.FgYellow, color.Bold),
		low:     color.New(color.FgCyan),
		heading: color.New(color.Bold),
		warn:    color.New(color.FgMagenta, color.Bold),
		ok:      color.New(color.FgGreen, color.Bold),
		faint:   color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.high, p.medium, p.low, p.heading, p.warn, p.ok, p.faint} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s analysis.Severity) *color.Color {
	switch s {
	case analysis.SeverityHigh:
		return p.high
	case analysis.SeverityLow:
		return p.low
	default:
		return p.medium
	}
}

// displaySeverity turns "high" into "High".
func displaySeverity(s analysis.Severity) string {
	return cases.Title(lang.Und).String(string(s))
}

// Render writes a human readable view of result.
func Render(w io.Writer, result analysis.Result, opts Options) error {
	p := newPalette(opts.Color)
	var b strings.Builder

	if result.Mismatch != nil {
		fmt.Fprintf(&b, "%s %s\n", p.warn.Sprint("Language mismatch:"), result.Mismatch.Message)
		fmt.Fprintf(&b, "%sdetected: %s\n\n", indent, result.Mismatch.DetectedLabel)
	}

	if len(result.Issues) == 0 {
		fmt.Fprintf(&b, "%s\n\n", p.ok.Sprint("No security issues found."))
	} else {
		fmt.Fprintf(&b, "%s\n", p.heading.Sprintf("Issues (%d)", len(result.Issues)))
		for _, issue := range result.Issues {
			label := p.severity(issue.Severity).Sprintf("[%s]", displaySeverity(issue.Severity))
			fmt.Fprintf(&b, "%s%s %s\n", indent, label, issue.Title)
			if desc := strings.TrimSpace(issue.Description); desc != "" {
				writeBlock(&b, indent+indent, desc)
			}
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%s\n", p.heading.Sprint("Explanation"))
	writeBlock(&b, indent, result.Explanation)

	if len(result.SaferPractices) > 0 {
		fmt.Fprintf(&b, "\n%s\n", p.heading.Sprint("Safer practices"))
		for _, practice := range result.SaferPractices {
			fmt.Fprintf(&b, "%s- %s\n", indent, practice)
		}
	}

	if result.SuggestedFix != nil {
		b.WriteString("\n")
		writeFix(&b, p, result.SuggestedFix)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderFix writes a single suggested fix.
func RenderFix(w io.Writer, fix *analysis.SuggestedFix, opts Options) error {
	p := newPalette(opts.Color)
	var b strings.Builder
	if fix == nil {
		fmt.Fprintf(&b, "%s\n", p.faint.Sprint("No suggested fix."))
	} else {
		writeFix(&b, p, fix)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeFix(b *strings.Builder, p palette, fix *analysis.SuggestedFix) {
	fmt.Fprintf(b, "%s %s\n", p.heading.Sprint("Suggested fix:"), fix.VulnerabilityName)
	fmt.Fprintf(b, "%s%s\n", indent, p.faint.Sprint("Why this works:"))
	writeBlock(b, indent+indent, fix.Rationale)
	sections := []struct {
		title string
		code  *string
	}{
		{"Vulnerable code:", fix.VulnerableFragment},
		{"Secure code:", fix.SecureFragment},
		{"Complete fixed code:", fix.CompleteAnnotatedCode},
	}
	for _, s := range sections {
		if s.code == nil {
			continue
		}
		fmt.Fprintf(b, "%s%s\n", indent, p.faint.Sprint(s.title))
		writeBlock(b, indent+indent, *s.code)
	}
}

// RenderDetection writes the classifier verdict, the per-language scores that
// contributed and the mismatch report, if any.
func RenderDetection(w io.Writer, verdict language.Verdict, scores []language.Score, mismatch *analysis.MismatchReport, opts Options) error {
	p := newPalette(opts.Color)
	var b strings.Builder

	if verdict.Detected() {
		fmt.Fprintf(&b, "%s %s (score %d)\n", p.heading.Sprint("Detected:"), verdict.Label, verdict.Score)
	} else {
		fmt.Fprintf(&b, "%s %s\n", p.heading.Sprint("Detected:"), p.faint.Sprint(language.LabelNone))
	}

	var rows []language.Score
	for _, s := range scores {
		if s.Positives > 0 || s.Negatives > 0 {
			rows = append(rows, s)
		}
	}
	if len(rows) > 0 {
		fmt.Fprintf(&b, "\n%s\n", p.heading.Sprint("Scores"))
		for _, s := range rows {
			fmt.Fprintf(&b, "%s%-12s %3d  (+%d / -%d)\n", indent, s.Label, s.Score, s.Positives, s.Negatives)
		}
	}

	if mismatch != nil {
		fmt.Fprintf(&b, "\n%s %s\n", p.warn.Sprint("Language mismatch:"), mismatch.Message)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeBlock(b *strings.Builder, prefix, text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString(prefix + line + "\n")
	}
}
