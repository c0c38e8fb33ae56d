package fixes

import (
	"regexp"
	"sort"
	"strings"
)

const (
	literalAlternatives = `"[^"\n]*"|'[^'\n]*'|` + "`[^`\\n]*`"
	sqlVerb             = `(?i:select|insert|update|delete)\b`
	// a variable followed by member, property or index accesses, e.g. req.query['id'] or $user->id
	operandExpr         = `[A-Za-z_]\w*(?:\.[A-Za-z_]\w*|->[A-Za-z_]\w*|\[[^\[\]\n]*\])*`
)

var (
	// literal, concatenated value, optional closing "'" and a trailing operator that disqualifies the hit
	sqlConcatRe = regexp.MustCompile(
		`("` + sqlVerb + `[^"\n]*"|'` + sqlVerb + `[^'\n]*'|` + "`" + sqlVerb + "[^`\\n]*`" + `)` +
			`\s*[+.]\s*(\$?` + operandExpr + `(?:\([^()\n]*\))?)` +
			`(\s*[+.]\s*"'")?(\s*[+.])?`)
	sqlAssignRe = regexp.MustCompile(`(?:^|[\s;({,])(?:(?:const|let|var)\s+)?(\$?[A-Za-z_]\w*)\s*:?=\s*$`)

	xssCallRe = regexp.MustCompile(
		`((?:res|response)\.(?:send|write|end)|document\.write(?:ln)?|make_response|render_template_string|HttpResponse)` +
			`\(\s*(?:` + literalAlternatives + `)\s*\+\s*(` + operandExpr + `)(\s*\()?`)
	xssEchoRe = regexp.MustCompile(`\b(?:echo|print)\s+(?:"[^"\n]*"|'[^'\n]*')\s*\.\s*(\$` + operandExpr + `)`)

	commandCallRe = regexp.MustCompile(
		`(?:^|[^\w.$])((?:(?:child_process|cp|os)\.)?(?:execSync|execFileSync|execFile|exec|spawnSync|spawn|system|popen|shell_exec|passthru)` +
			`|subprocess\.(?:run|call|Popen|check_output|check_call))\(\s*(\$?` + operandExpr + `)\s*[,)]`)
	pathCallRe = regexp.MustCompile(
		`(?:^|[^\w.$])((?:fs\.promises|fsp|fs)\.(?:readFileSync|readFile|writeFileSync|writeFile|appendFileSync|appendFile|createReadStream|createWriteStream|unlinkSync|unlink|readdirSync|readdir|existsSync|statSync|stat)` +
			`|(?:res|response)\.(?:sendFile|download)|send_file|open|os\.remove|os\.listdir|file_get_contents|fopen|unlink|readfile)` +
			`\(\s*(\$?` + operandExpr + `)\s*[,)]`)

	constantNameRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
)

type sqlHit struct {
	start, end int
	literal    string
	param      string
	quoted     bool
}

// placeholder returns the query literal with the concatenated value replaced by "?".
func (h sqlHit) placeholder() string {
	quote := h.literal[:1]
	body := h.literal[1 : len(h.literal)-1]
	if h.quoted {
		body = strings.TrimSuffix(body, "'")
	}
	if body != "" && !strings.HasSuffix(body, " ") {
		body += " "
	}
	return quote + body + "?" + quote
}

func findSQL(line string) []sqlHit {
	var hits []sqlHit
	for _, m := range sqlConcatRe.FindAllStringSubmatchIndex(line, -1) {
		if m[8] >= 0 || continuesOperand(line, m[5]) {
			continue
		}
		hit := sqlHit{
			start:   m[0],
			end:     m[5],
			literal: line[m[2]:m[3]],
			param:   line[m[4]:m[5]],
		}
		if m[6] >= 0 {
			hit.end = m[7]
			hit.quoted = true
		}
		hits = append(hits, hit)
	}
	return hits
}

// continuesOperand reports whether the expression ending at end goes on past
// what the operand grammar captured, e.g. a nested index or a chained call.
func continuesOperand(line string, end int) bool {
	rest := line[end:]
	return strings.HasPrefix(rest, "[") || strings.HasPrefix(rest, "(") || strings.HasPrefix(rest, "->")
}

type span struct {
	start, end int
}

func findXSS(line string) []span {
	var spans []span
	for _, m := range xssCallRe.FindAllStringSubmatchIndex(line, -1) {
		// the value is already passed through a call, e.g. an escaping helper
		if m[6] >= 0 || continuesOperand(line, m[5]) {
			continue
		}
		spans = append(spans, span{m[4], m[5]})
	}
	for _, m := range xssEchoRe.FindAllStringSubmatchIndex(line, -1) {
		if continuesOperand(line, m[3]) {
			continue
		}
		spans = append(spans, span{m[2], m[3]})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	return spans
}

type callHit struct {
	name string
	arg  string
	span span
}

func findCalls(re *regexp.Regexp, line string) []callHit {
	var hits []callHit
	for _, m := range re.FindAllStringSubmatchIndex(line, -1) {
		hits = append(hits, callHit{
			name: line[m[2]:m[3]],
			arg:  line[m[4]:m[5]],
			span: span{m[4], m[5]},
		})
	}
	return hits
}

func findCommands(line string) []callHit {
	return findCalls(commandCallRe, line)
}

// findPaths skips arguments that are already sandboxed or are constants.
func findPaths(line string) []callHit {
	var hits []callHit
	for _, h := range findCalls(pathCallRe, line) {
		if isSafePathVar(h.arg) || h.arg == "__dirname" || constantNameRe.MatchString(h.arg) {
			continue
		}
		hits = append(hits, h)
	}
	return hits
}

func extractSQL(snippet string, d dialect) (Fragments, bool) {
	for _, line := range strings.Split(snippet, "\n") {
		hits := findSQL(line)
		if len(hits) == 0 {
			continue
		}
		h := hits[0]
		return Fragments{
			Vulnerable: line[h.start:h.end],
			Secure:     h.placeholder() + ", " + d.boundParams(h.param),
		}, true
	}
	return Fragments{}, false
}

func extractXSS(snippet string, d dialect) (Fragments, bool) {
	return extractStatement(snippet, d, applyXSS)
}

func extractCommand(snippet string, d dialect) (Fragments, bool) {
	return extractStatement(snippet, d, applyCommand)
}

func extractPath(snippet string, d dialect) (Fragments, bool) {
	return extractStatement(snippet, d, applyPath)
}

// extractStatement quotes the first line the rule changes and renders its fix
// without markers or support declarations.
func extractStatement(snippet string, d dialect, apply func(*editor, string) []string) (Fragments, bool) {
	for _, line := range strings.Split(snippet, "\n") {
		stmt := strings.TrimSpace(line)
		if stmt == "" {
			continue
		}
		e := newEditor(stmt, d)
		apply(e, stmt)
		if e.changes == 0 {
			continue
		}
		return Fragments{Vulnerable: stmt, Secure: e.plain()}, true
	}
	return Fragments{}, false
}
