package sarif

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/codeshield-io/codeshield/internal/analysis"
	"github.com/codeshield-io/codeshield/internal/fixes"
)

const (
	ToolName       = "CodeShield"
	InformationURI = "https://github.com/codeshield-io/codeshield"

	// DefaultArtifactURI names the analysed code when it did not come from a file.
	DefaultArtifactURI = "snippet"
	defaultRuleID      = "security-issue"
)

// Report wraps a SARIF report built from one analysis result.
type Report struct {
	*sarif.Report
	logger hclog.Logger
}

// Metadata describes where the analysed snippet came from.
type Metadata struct {
	ArtifactURI string
	Version     string
	Language    *string
}

// Build converts an analysis result into a single-run SARIF report.
// Each distinct issue title becomes a rule; the suggested fix is attached to
// the first issue, which is the one it was produced for.
func Build(result analysis.Result, snippet string, meta Metadata, logger hclog.Logger) (*Report, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	uri := strings.TrimSpace(meta.ArtifactURI)
	if uri == "" {
		uri = DefaultArtifactURI
	}

	run := sarif.NewRunWithInformationURI(ToolName, InformationURI)
	if meta.Version != "" {
		run.Tool.Driver.WithSemanticVersion(meta.Version)
	}
	run.WithAutomationDetails(sarif.NewRunAutomationDetails().WithGUID(uuid.NewString()))
	run.Properties = runProperties(result, meta)

	rules := make(map[string]bool)
	for i, issue := range result.Issues {
		ruleID := ruleIDFor(issue.Title)
		level := levelFor(issue.Severity)
		if !rules[ruleID] {
			rules[ruleID] = true
			run.AddRule(ruleID).
				WithName(ruleName(issue.Title)).
				WithShortDescription(sarif.NewMultiformatMessageString(issue.Title)).
				WithDescription(issue.Description).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: level}).
				WithProperties(sarif.Properties{
					"fixClass": fixes.Select(issue.Title).String(),
				})
		}

		message := issue.Description
		if strings.TrimSpace(message) == "" {
			message = issue.Title
		}

		res := sarif.NewRuleResult(ruleID).
			WithMessage(sarif.NewTextMessage(message)).
			WithLevel(level).
			WithLocations([]*sarif.Location{location(uri, snippet, i, result.SuggestedFix)})
		res.Properties = sarif.Properties{
			"Level":    level,
			"Severity": displaySeverity(level),
			"Title":    issue.Title,
		}
		if i == 0 && result.SuggestedFix != nil {
			res.Properties["suggestedFix"] = result.SuggestedFix
			if fix := sarifFix(uri, snippet, result.SuggestedFix); fix != nil {
				res.AddFix(fix)
			}
		}
		run.AddResult(res)
	}

	report.AddRun(run)
	logger.Debug("built SARIF report", "rules", len(rules), "results", len(result.Issues), "artifact", uri)

	r := &Report{Report: report, logger: logger}
	r.SortResultsByLevel()
	return r, nil
}

// Write renders the report as indented JSON.
func (r *Report) Write(w io.Writer) error {
	if err := r.PrettyWrite(w); err != nil {
		return fmt.Errorf("failed to write SARIF report: %w", err)
	}
	return nil
}

// CollectSeverityInfo counts results per display severity, plus the total.
func (r *Report) CollectSeverityInfo() map[string]int {
	severityInfo := map[string]int{
		"low":    0,
		"medium": 0,
		"high":   0,
		"total":  0,
	}

	for _, run := range r.Runs {
		for _, result := range run.Results {
			level, _ := result.Properties["Level"].(string)
			switch level {
			case "error":
				severityInfo["high"]++
			case "warning":
				severityInfo["medium"]++
			default:
				severityInfo["low"]++
			}
			severityInfo["total"]++
		}
	}

	return severityInfo
}

// SortResultsByLevel orders results error, warning, note, none; ties keep their order.
func (r *Report) SortResultsByLevel() {
	levelOrder := map[string]int{
		"error":   0,
		"warning": 1,
		"note":    2,
		"none":    3,
	}

	for _, run := range r.Runs {
		rank := func(res *sarif.Result) int {
			level, _ := res.Properties["Level"].(string)
			if order, ok := levelOrder[level]; ok {
				return order
			}
			return len(levelOrder)
		}
		sort.SliceStable(run.Results, func(i, j int) bool {
			return rank(run.Results[i]) < rank(run.Results[j])
		})
	}
}

func runProperties(result analysis.Result, meta Metadata) sarif.Properties {
	props := sarif.Properties{
		"explanation":    result.Explanation,
		"saferPractices": result.SaferPractices,
	}
	if meta.Language != nil {
		props["declaredLanguage"] = *meta.Language
	}
	if result.Mismatch != nil {
		props["languageMismatch"] = result.Mismatch
	}
	return props
}

func location(uri, snippet string, index int, fix *analysis.SuggestedFix) *sarif.Location {
	physical := sarif.NewPhysicalLocation().
		WithArtifactLocation(sarif.NewSimpleArtifactLocation(uri))
	if index == 0 && fix != nil && fix.VulnerableFragment != nil {
		if line := lineOf(snippet, *fix.VulnerableFragment); line > 0 {
			physical.WithRegion(sarif.NewRegion().WithStartLine(line))
		}
	}
	return sarif.NewLocation().WithPhysicalLocation(physical)
}

// sarifFix expresses the annotated rewrite as a whole-artifact replacement.
func sarifFix(uri, snippet string, fix *analysis.SuggestedFix) *sarif.Fix {
	if fix.CompleteAnnotatedCode == nil || snippet == "" {
		return nil
	}
	lines := strings.Count(snippet, "\n") + 1
	change := sarif.NewArtifactChange(sarif.NewSimpleArtifactLocation(uri)).
		WithReplacement(sarif.NewReplacement(sarif.NewSimpleRegion(1, lines)).
			WithInsertedContent(sarif.NewArtifactContent().WithText(*fix.CompleteAnnotatedCode)))
	return sarif.NewFix().
		WithDescriptionText(fix.Rationale).
		WithArtifactChanges([]*sarif.ArtifactChange{change})
}
