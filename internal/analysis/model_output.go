package analysis

import (
	"strings"

	"github.com/mitchellh/mapstructure"
)

// DefaultIssueTitle replaces a missing or blank issue title.
const DefaultIssueTitle = "Security Issue"

type rawIssue struct {
	Title       string `mapstructure:"title"`
	Severity    string `mapstructure:"severity"`
	Description string `mapstructure:"description"`
}

type rawFix struct {
	VulnerabilityName string `mapstructure:"vulnerabilityName"`
	WhyThisWorks      string `mapstructure:"whyThisWorks"`
	VulnerableCode    string `mapstructure:"vulnerableCode"`
	SecureCode        string `mapstructure:"secureCode"`
	CompleteFixedCode string `mapstructure:"completeFixedCode"`
}

type rawMismatch struct {
	Detected string `mapstructure:"detected"`
	Message  string `mapstructure:"message"`
}

// DecodeModelOutput turns the loosely typed JSON object answered by the model
// into a ModelOutput. Malformed fields fall back to their zero value and
// malformed issues are skipped; decoding never fails.
func DecodeModelOutput(raw map[string]interface{}) ModelOutput {
	return ModelOutput{
		Issues:         decodeIssues(raw["issues"]),
		Explanation:    decodeString(raw["explanation"]),
		SaferPractices: decodeStrings(raw["saferPractices"]),
		SuggestedFix:   decodeFix(raw["suggestedFix"]),
		Mismatch:       decodeMismatch(raw["languageMismatch"]),
	}
}

func decodeIssues(v interface{}) []SecurityIssue {
	items, ok := v.([]interface{})
	if !ok {
		return []SecurityIssue{}
	}

	issues := make([]SecurityIssue, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		var ri rawIssue
		if err := mapstructure.WeakDecode(obj, &ri); err != nil {
			continue
		}
		title := strings.TrimSpace(ri.Title)
		description := strings.TrimSpace(ri.Description)
		if title == "" && description == "" {
			continue
		}
		if title == "" {
			title = DefaultIssueTitle
		}
		issues = append(issues, SecurityIssue{
			Title:       title,
			Severity:    ParseSeverity(ri.Severity),
			Description: description,
		})
	}
	return issues
}

func decodeString(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func decodeStrings(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := decodeString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func decodeFix(v interface{}) *SuggestedFix {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	var rf rawFix
	if err := mapstructure.WeakDecode(obj, &rf); err != nil {
		return nil
	}
	return &SuggestedFix{
		VulnerabilityName:     strings.TrimSpace(rf.VulnerabilityName),
		Rationale:             strings.TrimSpace(rf.WhyThisWorks),
		VulnerableFragment:    optional(rf.VulnerableCode),
		SecureFragment:        optional(rf.SecureCode),
		CompleteAnnotatedCode: optional(rf.CompleteFixedCode),
	}
}

func decodeMismatch(v interface{}) *MismatchReport {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	var rm rawMismatch
	if err := mapstructure.WeakDecode(obj, &rm); err != nil || strings.TrimSpace(rm.Detected) == "" {
		return nil
	}
	return &MismatchReport{
		DetectedLabel: strings.TrimSpace(rm.Detected),
		Message:       strings.TrimSpace(rm.Message),
	}
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
