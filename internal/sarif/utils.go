package sarif

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/codeshield-io/codeshield/internal/analysis"
)

// levelFor maps an issue severity onto a SARIF level.
func levelFor(severity analysis.Severity) string {
	switch severity {
	case analysis.SeverityHigh:
		return "error"
	case analysis.SeverityLow:
		return "note"
	default:
		return "warning"
	}
}

// displaySeverity normalizes SARIF severity levels to more descriptive labels.
func displaySeverity(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "error":
		return "High"
	case "warning":
		return "Medium"
	case "note":
		return "Low"
	case "none":
		return "Info"
	default:
		if normalized == "" {
			return ""
		}
		return cases.Title(language.Und).String(normalized)
	}
}

// ruleIDFor slugs an issue title: "SQL Injection" becomes "sql-injection".
func ruleIDFor(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	if b.Len() == 0 {
		return defaultRuleID
	}
	return b.String()
}

// ruleName renders the title in the PascalCase form SARIF viewers expect for rule names.
func ruleName(title string) string {
	caser := cases.Title(language.Und)
	var b strings.Builder
	for _, word := range strings.FieldsFunc(title, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) {
		b.WriteString(caser.String(word))
	}
	if b.Len() == 0 {
		return "SecurityIssue"
	}
	return b.String()
}

// lineOf returns the 1-based line where the first non-blank line of fragment
// occurs in snippet, or 0 when it does not occur.
func lineOf(snippet, fragment string) int {
	var first string
	for _, l := range strings.Split(fragment, "\n") {
		if first = strings.TrimSpace(l); first != "" {
			break
		}
	}
	if first == "" {
		return 0
	}
	for i, l := range strings.Split(snippet, "\n") {
		if strings.Contains(l, first) {
			return i + 1
		}
	}
	return 0
}
