package language

import "strings"

var aliases = map[string]string{
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"python":     "Python",
	"py":         "Python",
	"kotlin":     "Kotlin",
	"java":       "Java",
	"c#":         "C#",
	"csharp":     "C#",
	"c++":        "C++",
	"cpp":        "C++",
	"c":          "C",
	"go":         "Go",
	"golang":     "Go",
	"rust":       "Rust",
	"ruby":       "Ruby",
	"php":        "PHP",
	"swift":      "Swift",
}

// Normalize maps a free-text language name onto a canonical label.
// Unrecognised input is returned unchanged.
func Normalize(raw string) string {
	if label, ok := aliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return label
	}
	return raw
}
