package analysis

import (
	"errors"
	"strings"
)

// Severity ranks a security issue.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// ParseSeverity lower-cases raw and falls back to SeverityMedium outside the enum.
func ParseSeverity(raw string) Severity {
	switch s := Severity(strings.ToLower(strings.TrimSpace(raw))); s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return s
	default:
		return SeverityMedium
	}
}

// SecurityIssue is one finding reported for a snippet.
type SecurityIssue struct {
	Title       string   `json:"title"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// SuggestedFix is a remediation for the most relevant issue.
type SuggestedFix struct {
	VulnerabilityName     string  `json:"vulnerabilityName"`
	Rationale             string  `json:"whyThisWorks"`
	VulnerableFragment    *string `json:"vulnerableCode"`
	SecureFragment        *string `json:"secureCode"`
	CompleteAnnotatedCode *string `json:"completeFixedCode"`
}

// WellFormed reports whether a model supplied fix can be used as is.
func (f *SuggestedFix) WellFormed() bool {
	return f != nil && strings.TrimSpace(f.VulnerabilityName) != "" && strings.TrimSpace(f.Rationale) != ""
}

// MismatchReport tells the caller the declared language disagrees with the code.
type MismatchReport struct {
	DetectedLabel string `json:"detected"`
	Message       string `json:"message"`
}

// Result is the final, validated analysis returned to callers.
type Result struct {
	Issues         []SecurityIssue `json:"issues"`
	Explanation    string          `json:"explanation"`
	SaferPractices []string        `json:"saferPractices"`
	SuggestedFix   *SuggestedFix   `json:"suggestedFix"`
	Mismatch       *MismatchReport `json:"languageMismatch"`
}

// Validate checks the invariants every assembled result must hold.
func (r Result) Validate() error {
	if r.Mismatch != nil && r.SuggestedFix != nil {
		return errors.New("result carries both a language mismatch and a suggested fix")
	}
	if r.SuggestedFix != nil && len(r.Issues) == 0 {
		return errors.New("result carries a suggested fix without issues")
	}
	if strings.TrimSpace(r.Explanation) == "" {
		return errors.New("result explanation is empty")
	}
	if r.Issues == nil || r.SaferPractices == nil {
		return errors.New("result lists must not be nil")
	}
	return nil
}

// ModelOutput is the decoded, untrusted answer of the hosted model.
type ModelOutput struct {
	Issues         []SecurityIssue
	Explanation    string
	SaferPractices []string
	SuggestedFix   *SuggestedFix
	Mismatch       *MismatchReport
}
