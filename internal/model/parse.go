package model

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/codeshield-io/codeshield/pkg/shared/errors"
)

var fenceRe = regexp.MustCompile("```(?:json)?\\n?|\\n?```")

// ParseContent decodes the model answer into a loosely typed object.
// Markdown code fences around the JSON are tolerated.
func ParseContent(content string) (map[string]interface{}, error) {
	clean := strings.TrimSpace(fenceRe.ReplaceAllString(content, ""))

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &raw); err != nil {
		return nil, &errors.ParseError{Content: content, Err: err}
	}
	if raw == nil {
		return nil, &errors.ParseError{Content: content, Err: fmt.Errorf("analysis is not a JSON object")}
	}
	return raw, nil
}
