package fixes

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/codeshield-io/codeshield/internal/language"
)

// dialect decides how secure replacements and marker comments are spelled.
type dialect struct {
	kind    string
	comment string
}

const (
	dialectJS     = "js"
	dialectPython = "python"
	dialectPHP    = "php"
	dialectGo     = "go"
	dialectRuby   = "ruby"
	// dialectNone has no renderings; fixes fall back to the illustrative fragments.
	dialectNone   = "none"
)

func detectDialect(snippet string) dialect {
	switch language.Classify(snippet).Label {
	case "Python":
		return dialect{kind: dialectPython, comment: "#"}
	case "Ruby":
		return dialect{kind: dialectRuby, comment: "#"}
	case "PHP":
		return dialect{kind: dialectPHP, comment: "//"}
	case "Go":
		return dialect{kind: dialectGo, comment: "//"}
	case "JavaScript", "TypeScript", language.LabelNone:
		return dialect{kind: dialectJS, comment: "//"}
	default:
		return dialect{kind: dialectNone, comment: "//"}
	}
}

// renders reports whether the dialect can spell the fix of class c in place.
// Go snippets only get the expression-level rewrites.
func (d dialect) renders(c Class) bool {
	switch d.kind {
	case dialectNone:
		return false
	case dialectGo:
		return c == ClassSQLInjection || c == ClassXSS
	default:
		return true
	}
}

func (d dialect) marker(indent, text string) string {
	return fmt.Sprintf("%s%s %s %s", indent, d.comment, MarkerPrefix, text)
}

// boundParams renders the separate parameter list of a parameterized query.
func (d dialect) boundParams(param string) string {
	switch d.kind {
	case dialectPython:
		return "(" + param + ",)"
	case dialectGo:
		return param
	default:
		return "[" + param + "]"
	}
}

func (d dialect) escape(expr string) string {
	switch d.kind {
	case dialectPython:
		return "html.escape(" + expr + ")"
	case dialectPHP:
		return "htmlspecialchars(" + expr + ", ENT_QUOTES, 'UTF-8')"
	case dialectGo:
		return "html.EscapeString(" + expr + ")"
	case dialectRuby:
		return "ERB::Util.html_escape(" + expr + ")"
	default:
		return "escapeHtml(" + expr + ")"
	}
}

func (d dialect) allowListDecl() string {
	switch d.kind {
	case dialectPython:
		return `ALLOWED_COMMANDS = {"list", "status", "info"}`
	case dialectPHP:
		return `$allowedCommands = ['list', 'status', 'info'];`
	case dialectRuby:
		return `allowed_commands = %w[list status info]`
	default:
		return `const allowedCommands = ["list", "status", "info"];`
	}
}

func (d dialect) allowListDeclared(snippet string) bool {
	switch d.kind {
	case dialectPython:
		return strings.Contains(snippet, "ALLOWED_COMMANDS =")
	case dialectPHP:
		return strings.Contains(snippet, "$allowedCommands =")
	case dialectRuby:
		return strings.Contains(snippet, "allowed_commands =")
	default:
		return strings.Contains(snippet, "allowedCommands =")
	}
}

func (d dialect) commandGuarded(snippet, arg string) bool {
	switch d.kind {
	case dialectPython:
		return strings.Contains(snippet, arg+" not in ALLOWED_COMMANDS")
	case dialectPHP:
		return strings.Contains(snippet, "in_array("+arg+", $allowedCommands")
	case dialectRuby:
		return strings.Contains(snippet, "allowed_commands.include?("+arg+")")
	default:
		return strings.Contains(snippet, "allowedCommands.includes("+arg+")")
	}
}

// commandGuard returns the allow-list check placed before a command invocation.
func (d dialect) commandGuard(indent, arg string) []string {
	switch d.kind {
	case dialectPython:
		return []string{
			indent + "if " + arg + " not in ALLOWED_COMMANDS:",
			indent + `    raise ValueError("Command not allowed")`,
		}
	case dialectPHP:
		return []string{
			indent + "if (!in_array(" + arg + ", $allowedCommands, true)) {",
			indent + "    throw new Exception('Command not allowed');",
			indent + "}",
		}
	case dialectRuby:
		return []string{
			indent + `raise ArgumentError, "Command not allowed" unless allowed_commands.include?(` + arg + ")",
		}
	default:
		return []string{
			indent + "if (!allowedCommands.includes(" + arg + ")) {",
			indent + `  throw new Error("Command not allowed");`,
			indent + "}",
		}
	}
}

func (d dialect) safePathVar(n int) string {
	var base string
	switch d.kind {
	case dialectPython, dialectRuby:
		base = "safe_path"
	case dialectPHP:
		base = "$safePath"
	default:
		base = "safePath"
	}
	if n > 1 {
		return fmt.Sprintf("%s%d", base, n)
	}
	return base
}

var safePathVarRe = regexp.MustCompile(`^\$?safe_?[Pp]ath\d*$`)

func isSafePathVar(name string) bool {
	return safePathVarRe.MatchString(name)
}

// pathGuard resolves arg against the base directory into safe and rejects escapes.
func (d dialect) pathGuard(indent, arg, safe string, declareBase bool) []string {
	switch d.kind {
	case dialectPython:
		return []string{
			indent + safe + " = os.path.realpath(os.path.join(BASE_DIR, " + arg + "))",
			indent + "if not " + safe + ".startswith(BASE_DIR + os.sep):",
			indent + `    raise PermissionError("Access denied: path traversal detected")`,
		}
	case dialectPHP:
		var lines []string
		if declareBase {
			lines = append(lines, indent+"$baseDir = realpath('"+BaseDirectory+"');")
		}
		return append(lines,
			indent+safe+" = realpath($baseDir . DIRECTORY_SEPARATOR . "+arg+");",
			indent+"if ("+safe+" === false || strpos("+safe+", $baseDir . DIRECTORY_SEPARATOR) !== 0) {",
			indent+"    throw new Exception('Access denied: path traversal detected');",
			indent+"}",
		)
	case dialectRuby:
		return []string{
			indent + safe + " = File.expand_path(" + arg + ", BASE_DIR)",
			indent + `raise SecurityError, "Access denied: path traversal detected" unless ` + safe + ".start_with?(BASE_DIR + File::SEPARATOR)",
		}
	default:
		return []string{
			indent + "const " + safe + " = path.resolve(BASE_DIR, " + arg + ");",
			indent + "if (!" + safe + ".startsWith(BASE_DIR + path.sep)) {",
			indent + `  throw new Error("Access denied: path traversal detected");`,
			indent + "}",
		}
	}
}

var (
	esImportRe       = regexp.MustCompile(`(?m)^\s*import\s+.*\s+from\s+['"]`)
	jsPathModuleRe   = regexp.MustCompile(`require\(\s*['"]path['"]\s*\)|from\s+['"]path['"]`)
	jsEscapeHelperRe = regexp.MustCompile(`\bescapeHtml\b`)
	pyImportOSRe     = regexp.MustCompile(`(?m)^\s*import\s+os\b`)
	pyImportHTMLRe   = regexp.MustCompile(`(?m)^\s*import\s+html\b`)
	rbRequireERBRe   = regexp.MustCompile(`\brequire\s*\(?\s*['"]erb['"]`)
	baseDirDeclRe    = regexp.MustCompile(`\bBASE_DIR\s*=`)
)

// escapeSupport returns the declarations needed by escape, if any are missing.
func (d dialect) escapeSupport(snippet string) []string {
	switch d.kind {
	case dialectPython:
		if !pyImportHTMLRe.MatchString(snippet) {
			return []string{"import html"}
		}
	case dialectRuby:
		if !rbRequireERBRe.MatchString(snippet) {
			return []string{`require "erb"`}
		}
	case dialectJS:
		if jsEscapeHelperRe.MatchString(snippet) {
			return nil
		}
		if esImportRe.MatchString(snippet) {
			return []string{`import escapeHtml from "escape-html";`}
		}
		return []string{`const escapeHtml = require("escape-html");`}
	}
	return nil
}

// pathSupport returns the declarations needed by pathGuard, if any are missing.
// PHP declares its base directory inline with the first guard.
func (d dialect) pathSupport(snippet string) []string {
	var decls []string
	switch d.kind {
	case dialectPython:
		if !pyImportOSRe.MatchString(snippet) {
			decls = append(decls, "import os")
		}
		if !baseDirDeclRe.MatchString(snippet) {
			decls = append(decls, `BASE_DIR = os.path.realpath("`+BaseDirectory+`")`)
		}
	case dialectRuby:
		if !baseDirDeclRe.MatchString(snippet) {
			decls = append(decls, `BASE_DIR = File.expand_path("`+BaseDirectory+`")`)
		}
	case dialectJS:
		if !jsPathModuleRe.MatchString(snippet) {
			if esImportRe.MatchString(snippet) {
				decls = append(decls, `import path from "path";`)
			} else {
				decls = append(decls, `const path = require("path");`)
			}
		}
		if !baseDirDeclRe.MatchString(snippet) {
			decls = append(decls, `const BASE_DIR = path.resolve("`+BaseDirectory+`");`)
		}
	}
	return decls
}
