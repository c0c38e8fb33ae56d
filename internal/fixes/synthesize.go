package fixes

import (
	"strings"

	"github.com/codeshield-io/codeshield/internal/analysis"
)

// DefaultVulnerabilityName names a fix whose issue carried no usable title.
const DefaultVulnerabilityName = "Security Issue"

// Synthesize builds a suggested fix for the issue title against snippet.
// Titles matching no template get the generic rationale and no code.
func Synthesize(title, snippet string) *analysis.SuggestedFix {
	name := strings.TrimSpace(title)
	if name == "" {
		name = DefaultVulnerabilityName
	}

	t := selectTemplate(title)
	if t == nil {
		return &analysis.SuggestedFix{
			VulnerabilityName: name,
			Rationale:         genericRationale,
		}
	}

	d := detectDialect(snippet)
	var fragments Fragments
	ok := false
	if d.renders(t.Class) {
		fragments, ok = t.extract(snippet, d)
	}
	if !ok {
		fragments = t.Illustrative
	}

	fix := &analysis.SuggestedFix{
		VulnerabilityName:  name,
		Rationale:          t.Rationale,
		VulnerableFragment: stringPtr(fragments.Vulnerable),
		SecureFragment:     stringPtr(fragments.Secure),
	}
	if annotated, changes := annotate(t, snippet, d); changes > 0 {
		fix.CompleteAnnotatedCode = stringPtr(annotated)
	}
	return fix
}

// Annotate applies the template selected by title to the whole snippet and
// reports how many edits were made. The snippet is returned unchanged when
// the title selects no template, the snippet's language has no rendering of
// the fix, or nothing matched.
func Annotate(title, snippet string) (string, int) {
	t := selectTemplate(title)
	if t == nil {
		return snippet, 0
	}
	return annotate(t, snippet, detectDialect(snippet))
}

func annotate(t *Template, snippet string, d dialect) (string, int) {
	if !d.renders(t.Class) {
		return snippet, 0
	}
	e := newEditor(snippet, d)
	support := t.apply(e, snippet)
	if e.changes == 0 {
		return snippet, 0
	}
	return e.render(support), e.changes
}

func stringPtr(s string) *string {
	return &s
}
