package analyse

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeshield-io/codeshield/internal/analysis"
	"github.com/codeshield-io/codeshield/pkg/shared/errors"
)

type stubAnalyzer struct {
	raw map[string]interface{}
	err error
}

func (s stubAnalyzer) Analyze(_ context.Context, _, _ string) (map[string]interface{}, error) {
	return s.raw, s.err
}

const jsSnippet = `const query = "SELECT * FROM users WHERE id = " + userId; db.query(query, cb);`

func sqlAnswer() map[string]interface{} {
	return map[string]interface{}{
		"issues": []interface{}{
			map[string]interface{}{"title": "SQL Injection", "severity": "high", "description": "User input in SQL."},
		},
		"explanation":    "Concatenated query.",
		"saferPractices": []interface{}{"Use parameterized queries"},
	}
}

func TestValidateAnalyseArgs(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "snippet.js")
	require.NoError(t, os.WriteFile(tmpFile, []byte(jsSnippet), 0o644))

	tests := []struct {
		name    string
		options RunOptionsAnalyse
		args    []string
		wantErr string
	}{
		{
			name:    "Valid target path",
			options: RunOptionsAnalyse{Format: FormatJSON},
			args:    []string{tmpFile},
		},
		{
			name:    "Valid input file from stdin",
			options: RunOptionsAnalyse{Format: FormatText, InputFile: "-"},
		},
		{
			name:    "Unsupported format",
			options: RunOptionsAnalyse{Format: "html"},
			args:    []string{tmpFile},
			wantErr: `unsupported format "html": use json, sarif or text`,
		},
		{
			name:    "No target",
			options: RunOptionsAnalyse{Format: FormatJSON},
			wantErr: "either 'input-file' flag or a target path must be specified",
		},
		{
			name:    "Both input file and target path",
			options: RunOptionsAnalyse{Format: FormatJSON, InputFile: tmpFile},
			args:    []string{tmpFile},
			wantErr: "you cannot use an 'input-file' flag and a target path at the same time",
		},
		{
			name:    "Missing target path",
			options: RunOptionsAnalyse{Format: FormatJSON},
			args:    []string{filepath.Join(t.TempDir(), "nope.js")},
			wantErr: "the target path does not exist",
		},
		{
			name:    "Too many targets",
			options: RunOptionsAnalyse{Format: FormatJSON},
			args:    []string{tmpFile, tmpFile},
			wantErr: "only one target path can be specified",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAnalyseArgs(&tt.options, tt.args)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAnalyseJSON(t *testing.T) {
	var out bytes.Buffer
	err := analyse(context.Background(), stubAnalyzer{raw: sqlAnswer()}, RunOptionsAnalyse{Format: FormatJSON}, "user.js", jsSnippet, &out, hclog.NewNullLogger())
	require.NoError(t, err)

	var result analysis.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	require.Len(t, result.Issues, 1)
	require.NotNil(t, result.SuggestedFix)
	assert.Equal(t, "SQL Injection", result.SuggestedFix.VulnerabilityName)
	assert.Nil(t, result.Mismatch)
}

func TestAnalyseSARIF(t *testing.T) {
	var out bytes.Buffer
	err := analyse(context.Background(), stubAnalyzer{raw: sqlAnswer()}, RunOptionsAnalyse{Format: FormatSARIF}, "src/user.js", jsSnippet, &out, hclog.NewNullLogger())
	require.NoError(t, err)

	assert.Contains(t, out.String(), `"version": "2.1.0"`)
	assert.Contains(t, out.String(), `"uri": "src/user.js"`)
	assert.Contains(t, out.String(), `"ruleId": "sql-injection"`)
}

func TestAnalyseMismatchExitCode(t *testing.T) {
	var out bytes.Buffer
	opts := RunOptionsAnalyse{Format: FormatText, Language: "python"}
	err := analyse(context.Background(), stubAnalyzer{raw: sqlAnswer()}, opts, "-", jsSnippet, &out, hclog.NewNullLogger())

	var cmdErr *errors.CommandError
	require.True(t, stderrors.As(err, &cmdErr))
	assert.Equal(t, ExitMismatch, cmdErr.ExitCode)
	assert.Contains(t, out.String(), "Language mismatch: The code appears to be written in JavaScript, not Python.")
	assert.NotContains(t, out.String(), "Suggested fix")
}

func TestAnalyseUpstreamError(t *testing.T) {
	var out bytes.Buffer
	upstream := errors.NewUpstreamError(429, "slow down", nil)
	err := analyse(context.Background(), stubAnalyzer{err: upstream}, RunOptionsAnalyse{Format: FormatJSON}, "a.js", jsSnippet, &out, hclog.NewNullLogger())

	var cmdErr *errors.CommandError
	require.True(t, stderrors.As(err, &cmdErr))
	assert.Equal(t, 1, cmdErr.ExitCode)
	assert.Contains(t, cmdErr.Error(), "Rate limit exceeded")
	assert.Empty(t, out.String())
}

func TestAnalyseEmptyCode(t *testing.T) {
	var out bytes.Buffer
	err := analyse(context.Background(), stubAnalyzer{raw: sqlAnswer()}, RunOptionsAnalyse{Format: FormatJSON}, "a.js", "   \n", &out, hclog.NewNullLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Code is required")
}

func TestAnalyseWritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	opts := RunOptionsAnalyse{Format: FormatSARIF, OutputPath: dir}
	err := analyse(context.Background(), stubAnalyzer{raw: sqlAnswer()}, opts, "user.js", jsSnippet, &out, hclog.NewNullLogger())
	require.NoError(t, err)

	path := filepath.Join(dir, "codeshield-report.sarif")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "CodeShield"`)
	assert.Equal(t, "Results saved to "+path+"\n", out.String())
}

func TestArtifactURI(t *testing.T) {
	assert.Equal(t, "snippet", artifactURI("-"))
	assert.Equal(t, "src/app.py", artifactURI("src/app.py"))
}

func TestDefaultReportName(t *testing.T) {
	assert.Equal(t, "codeshield-report.json", defaultReportName(FormatJSON))
	assert.Equal(t, "codeshield-report.sarif", defaultReportName(FormatSARIF))
	assert.Equal(t, "codeshield-report.txt", defaultReportName(FormatText))
}
