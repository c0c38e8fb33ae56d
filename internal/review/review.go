package review

import (
	"context"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/codeshield-io/codeshield/internal/analysis"
	"github.com/codeshield-io/codeshield/internal/fixes"
	"github.com/codeshield-io/codeshield/internal/mismatch"
	"github.com/codeshield-io/codeshield/pkg/shared/errors"
)

// Analyzer asks the hosted model for a raw analysis of a snippet.
type Analyzer interface {
	Analyze(ctx context.Context, code, language string) (map[string]interface{}, error)
}

// Request is one snippet submitted for review. Language is the free-text
// language the caller declared, nil when none was given.
type Request struct {
	Code     string
	Language *string
}

// Validate rejects requests that must not reach the model.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return errors.NewValidationError("code", "must be a non-empty string")
	}
	return nil
}

// Run validates the request, queries the model and assembles the final result.
func Run(ctx context.Context, analyzer Analyzer, req Request, logger hclog.Logger) (analysis.Result, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if err := req.Validate(); err != nil {
		return analysis.Result{}, err
	}

	var language string
	if req.Language != nil {
		language = *req.Language
	}
	raw, err := analyzer.Analyze(ctx, req.Code, language)
	if err != nil {
		return analysis.Result{}, err
	}

	return Assemble(analysis.DecodeModelOutput(raw), req, logger), nil
}

// Assemble applies local language checking and fix synthesis to a decoded model answer.
func Assemble(out analysis.ModelOutput, req Request, logger hclog.Logger) analysis.Result {
	result := analysis.Assemble(out, req.Code, req.Language,
		analysis.WithReconciler(mismatch.Reconcile),
		analysis.WithSynthesizer(fixes.Synthesize),
		analysis.WithLogger(logger),
	)
	logger.Info("analysis assembled",
		"issues", len(result.Issues),
		"mismatch", result.Mismatch != nil,
		"fix", result.SuggestedFix != nil,
	)
	return result
}
