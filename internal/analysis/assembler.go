package analysis

import (
	"strings"

	"github.com/hashicorp/go-hclog"
)

// DefaultExplanation stands in for a missing model explanation.
const DefaultExplanation = "No explanation provided."

// Reconciler compares the declared language with the code itself.
type Reconciler func(declared *string, snippet string) *MismatchReport

// Synthesizer builds a fix for an issue title when the model gave none.
type Synthesizer func(title, snippet string) *SuggestedFix

type assembler struct {
	reconcile  Reconciler
	synthesize Synthesizer
	logger     hclog.Logger
}

// Option configures Assemble.
type Option func(*assembler)

func WithReconciler(r Reconciler) Option {
	return func(a *assembler) { a.reconcile = r }
}

func WithSynthesizer(s Synthesizer) Option {
	return func(a *assembler) { a.synthesize = s }
}

func WithLogger(l hclog.Logger) Option {
	return func(a *assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// Assemble merges the model output with the local language check and fix
// synthesis. A detected mismatch always removes the fix; a well-formed model
// fix wins over a synthesized one; no issues means no fix.
func Assemble(out ModelOutput, snippet string, declared *string, opts ...Option) Result {
	a := assembler{logger: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(&a)
	}

	result := Result{
		Issues:         append([]SecurityIssue{}, out.Issues...),
		Explanation:    strings.TrimSpace(out.Explanation),
		SaferPractices: append([]string{}, out.SaferPractices...),
	}
	if result.Explanation == "" {
		result.Explanation = DefaultExplanation
	}

	if out.Mismatch != nil {
		a.logger.Debug("discarding model language mismatch claim", "claimed", out.Mismatch.DetectedLabel)
	}
	if a.reconcile != nil {
		if report := a.reconcile(declared, snippet); report != nil {
			a.logger.Debug("language mismatch detected, suggested fix suppressed", "detected", report.DetectedLabel)
			result.Mismatch = report
			return result
		}
	}

	if len(result.Issues) == 0 {
		return result
	}

	if out.SuggestedFix.WellFormed() {
		fix := *out.SuggestedFix
		a.logger.Debug("using model supplied fix", "vulnerability", fix.VulnerabilityName)
		if fix.CompleteAnnotatedCode == nil && a.synthesize != nil {
			if local := a.synthesize(fix.VulnerabilityName, snippet); local != nil {
				fix.CompleteAnnotatedCode = local.CompleteAnnotatedCode
			}
		}
		result.SuggestedFix = &fix
		return result
	}

	if a.synthesize != nil {
		title := result.Issues[0].Title
		a.logger.Debug("synthesizing fix", "title", title)
		result.SuggestedFix = a.synthesize(title, snippet)
	}
	return result
}
