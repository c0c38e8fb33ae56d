package fixes

import (
	"regexp"
	"strings"
)

// editor accumulates line-level edits over a snippet. Inserted lines and
// markers are kept apart from the original lines so offsets stay valid.
type editor struct {
	d       dialect
	lines   []string
	notes   map[int]string
	before  map[int][]string
	changes int
}

func newEditor(snippet string, d dialect) *editor {
	return &editor{
		d:      d,
		lines:  strings.Split(snippet, "\n"),
		notes:  make(map[int]string),
		before: make(map[int][]string),
	}
}

// mark records the marker comment for line i; the first note wins.
func (e *editor) mark(i int, note string) {
	if _, ok := e.notes[i]; !ok {
		e.notes[i] = note
	}
}

func (e *editor) insert(i int, lines ...string) {
	e.before[i] = append(e.before[i], lines...)
	e.changes++
}

func (e *editor) replace(i, start, end int, text string) {
	line := e.lines[i]
	e.lines[i] = line[:start] + text + line[end:]
	e.changes++
}

func (e *editor) render(support []string) string {
	headerAt := 0
	if len(e.lines) > 1 && (strings.HasPrefix(e.lines[0], "#!") || strings.HasPrefix(strings.TrimSpace(e.lines[0]), "<?php")) {
		headerAt = 1
	}

	out := make([]string, 0, len(e.lines)+len(support)+len(e.before)+len(e.notes))
	for i, line := range e.lines {
		if i == headerAt && len(support) > 0 {
			out = append(out, e.d.marker("", supportMarker))
			out = append(out, support...)
		}
		if note, ok := e.notes[i]; ok {
			out = append(out, e.d.marker(indentOf(line), note))
		}
		out = append(out, e.before[i]...)
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// plain renders the edits without marker comments.
func (e *editor) plain() string {
	var out []string
	for i, line := range e.lines {
		out = append(out, e.before[i]...)
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func indentOf(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

func sqlExecRe(queryVar string) *regexp.Regexp {
	return regexp.MustCompile(`((?:\.|->)(?:query|execute|executemany|run|all|get|exec|Query|QueryRow|QueryContext|Exec)\(\s*)` +
		regexp.QuoteMeta(queryVar) + `(\s*[,)])`)
}

func applySQL(e *editor, _ string) []string {
	bound := make(map[string]string)
	var order []string

	for i, line := range e.lines {
		hits := findSQL(line)
		for j := len(hits) - 1; j >= 0; j-- {
			h := hits[j]
			params := e.d.boundParams(h.param)
			if m := sqlAssignRe.FindStringSubmatch(line[:h.start]); m != nil {
				if _, seen := bound[m[1]]; !seen {
					order = append(order, m[1])
				}
				bound[m[1]] = params
				e.replace(i, h.start, h.end, h.placeholder())
				continue
			}
			e.replace(i, h.start, h.end, h.placeholder()+", "+params)
		}
		if len(hits) > 0 {
			e.mark(i, sqlMarker)
		}
	}

	// pass the bound values wherever an assigned query is executed
	for _, name := range order {
		re := sqlExecRe(name)
		for i, line := range e.lines {
			matches := re.FindAllStringSubmatchIndex(line, -1)
			for j := len(matches) - 1; j >= 0; j-- {
				m := matches[j]
				e.replace(i, m[3], m[4], name+", "+bound[name])
			}
			if len(matches) > 0 {
				e.mark(i, sqlMarker)
			}
		}
	}
	return nil
}

func applyXSS(e *editor, snippet string) []string {
	for i, line := range e.lines {
		spans := findXSS(line)
		for j := len(spans) - 1; j >= 0; j-- {
			s := spans[j]
			e.replace(i, s.start, s.end, e.d.escape(line[s.start:s.end]))
		}
		if len(spans) > 0 {
			e.mark(i, xssMarker)
		}
	}
	return e.d.escapeSupport(snippet)
}

func applyCommand(e *editor, snippet string) []string {
	declared := e.d.allowListDeclared(snippet)
	for i, line := range e.lines {
		indent := indentOf(line)
		for _, h := range findCommands(line) {
			if e.d.commandGuarded(snippet, h.arg) {
				continue
			}
			e.mark(i, commandMarker)
			if !declared {
				e.insert(i, indent+e.d.allowListDecl())
				declared = true
			}
			e.insert(i, e.d.commandGuard(indent, h.arg)...)
		}
	}
	return nil
}

func applyPath(e *editor, snippet string) []string {
	n := 0
	declareBase := e.d.kind == dialectPHP && !strings.Contains(snippet, "$baseDir =")
	for i, line := range e.lines {
		hits := findPaths(line)
		if len(hits) == 0 {
			continue
		}
		e.mark(i, pathMarker)
		indent := indentOf(line)
		safe := make([]string, len(hits))
		for j, h := range hits {
			n++
			safe[j] = e.d.safePathVar(n)
			e.insert(i, e.d.pathGuard(indent, h.arg, safe[j], declareBase)...)
			declareBase = false
		}
		for j := len(hits) - 1; j >= 0; j-- {
			e.replace(i, hits[j].span.start, hits[j].span.end, safe[j])
		}
	}
	return e.d.pathSupport(snippet)
}
