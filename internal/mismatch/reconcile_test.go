package mismatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name     string
		declared *string
		snippet  string
		detected string
	}{
		{
			name:     "javascript declared as python",
			declared: strPtr("Python"),
			snippet:  "const x = 1; console.log(x);",
			detected: "JavaScript",
		},
		{
			name:     "alias is normalised",
			declared: strPtr("  py "),
			snippet:  "const x = 1; console.log(x);",
			detected: "JavaScript",
		},
		{
			name:     "python declared as go",
			declared: strPtr("golang"),
			snippet:  "def main():\n    print('hi')\n",
			detected: "Python",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Reconcile(tt.declared, tt.snippet)
			require.NotNil(t, report)
			assert.Equal(t, tt.detected, report.DetectedLabel)
			assert.Contains(t, report.Message, "written in "+tt.detected)
		})
	}
}

func TestReconcileMessage(t *testing.T) {
	report := Reconcile(strPtr("kotlin"), "const x = 1; console.log(x);")
	require.NotNil(t, report)
	assert.Equal(t,
		"The code appears to be written in JavaScript, not Kotlin. Please select JavaScript for more accurate analysis.",
		report.Message)
}

func TestReconcileNoReport(t *testing.T) {
	snippet := "const x = 1; console.log(x);"

	tests := []struct {
		name     string
		declared *string
		snippet  string
	}{
		{"absent declaration", nil, snippet},
		{"unknown declaration", strPtr("Klingon"), snippet},
		{"empty declaration", strPtr(""), snippet},
		{"matching declaration", strPtr("JavaScript"), snippet},
		{"matching alias", strPtr("JS"), snippet},
		{"undetected language", strPtr("Python"), "hello world"},
		{"empty snippet", strPtr("Go"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, Reconcile(tt.declared, tt.snippet))
		})
	}
}
