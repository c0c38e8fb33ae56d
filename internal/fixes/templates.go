package fixes

import "strings"

// Class identifies a vulnerability class with its own fix template.
type Class int

const (
	ClassSQLInjection Class = iota
	ClassXSS
	ClassCommandInjection
	ClassPathTraversal
	ClassGeneric
)

func (c Class) String() string {
	switch c {
	case ClassSQLInjection:
		return "sql-injection"
	case ClassXSS:
		return "cross-site-scripting"
	case ClassCommandInjection:
		return "command-injection"
	case ClassPathTraversal:
		return "path-traversal"
	default:
		return "generic"
	}
}

// MarkerPrefix starts every inline comment the annotated rewrite adds.
const MarkerPrefix = "SECURITY FIX:"

// BaseDirectory is the sandbox root used by path traversal fixes.
const BaseDirectory = "/srv/app/files"

// Fragments is a vulnerable/secure pair of code lines.
type Fragments struct {
	Vulnerable string
	Secure     string
}

// Template is the fix rule set of one vulnerability class.
type Template struct {
	Class        Class
	Cues         []string
	Rationale    string
	Marker       string
	Illustrative Fragments

	extract func(snippet string, d dialect) (Fragments, bool)
	apply   func(e *editor, snippet string) []string
}

const (
	sqlMarker     = "parameterized query keeps user input out of the SQL text"
	xssMarker     = "escape user input before writing it to the response"
	commandMarker = "only run commands from an allow-list"
	pathMarker    = "resolve the path inside the base directory and reject escapes"
	supportMarker = "declarations used by the fixes below"
)

const genericRationale = "Review the identified vulnerability and apply the appropriate security control. " +
	"Common mitigations include input validation, parameterized queries, output encoding, or access control " +
	"depending on the vulnerability type."

// templates are tested in order; the first template with a matching cue wins.
var templates = []Template{
	{
		Class: ClassSQLInjection,
		Cues:  []string{"sql", "injection"},
		Rationale: "This fix uses a parameterized SQL query, which ensures user input is treated strictly as data " +
			"rather than executable SQL. This prevents attackers from modifying the query logic through crafted input.",
		Marker: sqlMarker,
		Illustrative: Fragments{
			Vulnerable: "const query = \"SELECT * FROM users WHERE id = \" + userId;\ndb.query(query, callback);",
			Secure:     "const query = \"SELECT * FROM users WHERE id = ?\";\ndb.query(query, [userId], callback);",
		},
		extract: extractSQL,
		apply:   applySQL,
	},
	{
		Class: ClassXSS,
		Cues:  []string{"xss", "cross-site", "reflected"},
		Rationale: "This fix applies HTML encoding to user input before inserting it into the response. " +
			"Encoding converts special characters (like <, >, &) into safe HTML entities, preventing browsers " +
			"from interpreting user data as executable code.",
		Marker: xssMarker,
		Illustrative: Fragments{
			Vulnerable: `res.send("Hello " + name);`,
			Secure:     `res.send("Hello " + escapeHtml(name));`,
		},
		extract: extractXSS,
		apply:   applyXSS,
	},
	{
		Class: ClassCommandInjection,
		Cues:  []string{"command", "exec", "os"},
		Rationale: "This fix uses an allowlist to restrict which commands can be executed. By only permitting " +
			"pre-approved operations, user input cannot be used to run arbitrary system commands.",
		Marker: commandMarker,
		Illustrative: Fragments{
			Vulnerable: "exec(userCommand);",
			Secure: "const allowedCommands = [\"list\", \"status\", \"info\"];\n" +
				"if (!allowedCommands.includes(userCommand)) {\n" +
				"  throw new Error(\"Command not allowed\");\n" +
				"}\n" +
				"exec(userCommand);",
		},
		extract: extractCommand,
		apply:   applyCommand,
	},
	{
		Class: ClassPathTraversal,
		Cues:  []string{"path", "traversal", "directory"},
		Rationale: "This fix validates and normalizes file paths to ensure they stay within the allowed directory. " +
			"Resolving the path against a fixed base directory and checking the prefix prevents attackers from " +
			"accessing files outside the intended scope.",
		Marker: pathMarker,
		Illustrative: Fragments{
			Vulnerable: "fs.readFile(userPath, callback);",
			Secure: "const safePath = path.resolve(BASE_DIR, userPath);\n" +
				"if (!safePath.startsWith(BASE_DIR + path.sep)) {\n" +
				"  throw new Error(\"Access denied: path traversal detected\");\n" +
				"}\n" +
				"fs.readFile(safePath, callback);",
		},
		extract: extractPath,
		apply:   applyPath,
	},
}

// Templates returns the ordered template list.
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// Select returns the class whose cues first match title, case-insensitively.
func Select(title string) Class {
	if t := selectTemplate(title); t != nil {
		return t.Class
	}
	return ClassGeneric
}

func selectTemplate(title string) *Template {
	lowered := strings.ToLower(title)
	for i := range templates {
		for _, cue := range templates[i].Cues {
			if strings.Contains(lowered, cue) {
				return &templates[i]
			}
		}
	}
	return nil
}
