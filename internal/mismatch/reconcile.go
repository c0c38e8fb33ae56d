package mismatch

import (
	"fmt"

	"github.com/codeshield-io/codeshield/internal/analysis"
	"github.com/codeshield-io/codeshield/internal/language"
)

const messageFormat = "The code appears to be written in %s, not %s. Please select %s for more accurate analysis."

// Reconcile reports a mismatch when both the declared language and the
// classifier verdict resolve to known, different labels. An absent or
// unrecognised declaration never produces a report.
func Reconcile(declared *string, snippet string) *analysis.MismatchReport {
	if declared == nil {
		return nil
	}
	label := language.Normalize(*declared)
	if !language.Known(label) {
		return nil
	}

	verdict := language.Classify(snippet)
	if !verdict.Detected() || verdict.Label == label {
		return nil
	}

	return &analysis.MismatchReport{
		DetectedLabel: verdict.Label,
		Message:       fmt.Sprintf(messageFormat, verdict.Label, label, verdict.Label),
	}
}
