package sarif

import (
	"bytes"
	"encoding/json"
	"testing"

	gosarif "github.com/owenrumney/go-sarif/v2/sarif"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeshield-io/codeshield/internal/analysis"
)

func strPtr(s string) *string {
	return &s
}

const sqlSnippet = "function getUser(userId) {\n  const query = \"SELECT * FROM users WHERE id = \" + userId;\n  db.query(query, cb);\n}"

func sampleResult() analysis.Result {
	return analysis.Result{
		Issues: []analysis.SecurityIssue{
			{Title: "SQL Injection", Severity: analysis.SeverityHigh, Description: "User input is concatenated into SQL."},
			{Title: "Missing rate limiting", Severity: analysis.SeverityLow, Description: "No throttling."},
			{Title: "SQL Injection", Severity: analysis.SeverityMedium, Description: ""},
		},
		Explanation:    "The query is built from user input.",
		SaferPractices: []string{"Use parameterized queries"},
		SuggestedFix: &analysis.SuggestedFix{
			VulnerabilityName:     "SQL Injection",
			Rationale:             "Parameters keep data out of the query text.",
			VulnerableFragment:    strPtr(`"SELECT * FROM users WHERE id = " + userId`),
			SecureFragment:        strPtr(`"SELECT * FROM users WHERE id = ?", [userId]`),
			CompleteAnnotatedCode: strPtr("// fixed\n" + sqlSnippet),
		},
	}
}

func TestBuildRulesAndResults(t *testing.T) {
	report, err := Build(sampleResult(), sqlSnippet, Metadata{ArtifactURI: "handlers/user.js", Version: "1.2.0"}, nil)
	require.NoError(t, err)
	require.Len(t, report.Runs, 1)

	run := report.Runs[0]
	assert.Equal(t, ToolName, run.Tool.Driver.Name)
	require.NotNil(t, run.Tool.Driver.SemanticVersion)
	assert.Equal(t, "1.2.0", *run.Tool.Driver.SemanticVersion)
	require.NotNil(t, run.AutomationDetails)
	require.NotNil(t, run.AutomationDetails.GUID)
	assert.NotEmpty(t, *run.AutomationDetails.GUID)

	require.Len(t, run.Tool.Driver.Rules, 2)
	sqlRule := run.Tool.Driver.Rules[0]
	assert.Equal(t, "sql-injection", sqlRule.ID)
	require.NotNil(t, sqlRule.Name)
	assert.Equal(t, "SqlInjection", *sqlRule.Name)
	assert.Equal(t, "error", sqlRule.DefaultConfiguration.Level)
	assert.Equal(t, "sql-injection", sqlRule.Properties["fixClass"])
	assert.Equal(t, "missing-rate-limiting", run.Tool.Driver.Rules[1].ID)
	assert.Equal(t, "generic", run.Tool.Driver.Rules[1].Properties["fixClass"])

	require.Len(t, run.Results, 3)
	levels := make([]string, 0, len(run.Results))
	for _, res := range run.Results {
		levels = append(levels, *res.Level)
	}
	assert.Equal(t, []string{"error", "warning", "note"}, levels)

	first := run.Results[0]
	assert.Equal(t, "High", first.Properties["Severity"])
	assert.Equal(t, "SQL Injection", first.Properties["Title"])
	require.NotNil(t, first.Locations[0].PhysicalLocation.Region)
	assert.Equal(t, 2, *first.Locations[0].PhysicalLocation.Region.StartLine)
	assert.Equal(t, "handlers/user.js", *first.Locations[0].PhysicalLocation.ArtifactLocation.URI)
	require.Len(t, first.Fixes, 1)
	assert.Equal(t, "Parameters keep data out of the query text.", *first.Fixes[0].Description.Text)
	assert.NotNil(t, first.Properties["suggestedFix"])

	// an empty description falls back to the title
	assert.Equal(t, "SQL Injection", *run.Results[1].Message.Text)
	assert.Nil(t, run.Results[1].Locations[0].PhysicalLocation.Region)
	assert.Empty(t, run.Results[1].Fixes)
}

func TestBuildMismatch(t *testing.T) {
	result := analysis.Result{
		Issues:         []analysis.SecurityIssue{},
		Explanation:    "Wrong language.",
		SaferPractices: []string{},
		Mismatch: &analysis.MismatchReport{
			DetectedLabel: "Python",
			Message:       "The code appears to be written in Python, not JavaScript. Please select Python for more accurate analysis.",
		},
	}

	report, err := Build(result, "def f():\n    pass", Metadata{Language: strPtr("JavaScript")}, nil)
	require.NoError(t, err)

	run := report.Runs[0]
	assert.Empty(t, run.Results)
	assert.Equal(t, "JavaScript", run.Properties["declaredLanguage"])
	assert.Equal(t, result.Mismatch, run.Properties["languageMismatch"])
	assert.Equal(t, map[string]int{"low": 0, "medium": 0, "high": 0, "total": 0}, report.CollectSeverityInfo())
}

func TestBuildDefaultsArtifactURI(t *testing.T) {
	result := analysis.Result{
		Issues:         []analysis.SecurityIssue{{Title: "XSS", Severity: analysis.SeverityMedium, Description: "Reflected."}},
		Explanation:    "x",
		SaferPractices: []string{},
	}
	report, err := Build(result, "res.send(x)", Metadata{ArtifactURI: "  "}, nil)
	require.NoError(t, err)

	res := report.Runs[0].Results[0]
	assert.Equal(t, DefaultArtifactURI, *res.Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Nil(t, res.Locations[0].PhysicalLocation.Region)
}

func TestCollectSeverityInfo(t *testing.T) {
	report, err := Build(sampleResult(), sqlSnippet, Metadata{}, nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"low": 1, "medium": 1, "high": 1, "total": 3}, report.CollectSeverityInfo())
}

func TestSortResultsByLevelIsStable(t *testing.T) {
	mk := func(id, level string) *gosarif.Result {
		res := gosarif.NewRuleResult(id).WithLevel(level)
		res.Properties = gosarif.Properties{"Level": level}
		return res
	}
	report := &Report{Report: &gosarif.Report{
		Runs: []*gosarif.Run{{Results: []*gosarif.Result{
			mk("a", "note"), mk("b", "error"), mk("c", "note"), mk("d", "unknown"), mk("e", "warning"),
		}}},
	}}

	report.SortResultsByLevel()

	var ids []string
	for _, res := range report.Runs[0].Results {
		ids = append(ids, *res.RuleID)
	}
	assert.Equal(t, []string{"b", "e", "a", "c", "d"}, ids)
}

func TestWrite(t *testing.T) {
	report, err := Build(sampleResult(), sqlSnippet, Metadata{ArtifactURI: "user.js"}, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "2.1.0", decoded["version"])
	assert.Contains(t, buf.String(), `"ruleId": "sql-injection"`)
	assert.Contains(t, buf.String(), `"whyThisWorks": "Parameters keep data out of the query text."`)
}

func TestRuleIDFor(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"SQL Injection", "sql-injection"},
		{"  Cross-Site Scripting (XSS) ", "cross-site-scripting-xss"},
		{"Path/Directory Traversal", "path-directory-traversal"},
		{"CWE-79", "cwe-79"},
		{"", defaultRuleID},
		{"!!!", defaultRuleID},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ruleIDFor(tt.title), tt.title)
	}
}

func TestRuleName(t *testing.T) {
	assert.Equal(t, "SqlInjection", ruleName("SQL Injection"))
	assert.Equal(t, "CrossSiteScripting", ruleName("cross-site scripting"))
	assert.Equal(t, "SecurityIssue", ruleName("--"))
}

func TestDisplaySeverity(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"error", "High"},
		{" WARNING ", "Medium"},
		{"note", "Low"},
		{"none", "Info"},
		{"", ""},
		{"critical", "Critical"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, displaySeverity(tt.level))
	}
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, "error", levelFor(analysis.SeverityHigh))
	assert.Equal(t, "warning", levelFor(analysis.SeverityMedium))
	assert.Equal(t, "note", levelFor(analysis.SeverityLow))
	assert.Equal(t, "warning", levelFor(analysis.Severity("bogus")))
}

func TestLineOf(t *testing.T) {
	snippet := "a := 1\nb := query + id\nc := 3"
	assert.Equal(t, 2, lineOf(snippet, "\n  query + id\n"))
	assert.Equal(t, 0, lineOf(snippet, "missing"))
	assert.Equal(t, 0, lineOf(snippet, "  \n "))
}
