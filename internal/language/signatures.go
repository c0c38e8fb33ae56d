package language

import "regexp"

// Signature holds the confirming and disqualifying patterns of one language.
type Signature struct {
	Name     string
	Positive []*regexp.Regexp
	Negative []*regexp.Regexp
}

func patterns(exprs ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		compiled = append(compiled, regexp.MustCompile(expr))
	}
	return compiled
}

// signatures is the registry consulted by Classify. Declaration order is the
// tie-break order: on equal scores the earlier entry wins.
var signatures = []Signature{
	{
		Name: "TypeScript",
		Positive: patterns(
			`:\s*(string|number|boolean|any|void|never)\b`,
			`interface\s+\w+\s*\{`,
			`type\s+\w+\s*=`,
			`<\w+>`,
			`as\s+(string|number|boolean|any)`,
		),
		Negative: patterns(`(?m)^#include`),
	},
	{
		Name: "JavaScript",
		Positive: patterns(
			`\bconst\s+\w+\s*=`,
			`\blet\s+\w+\s*=`,
			`\bvar\s+\w+\s*=`,
			`=>\s*\{`,
			`console\.(log|error|warn)`,
			`function\s+\w+\s*\(`,
			`document\.(getElementById|querySelector)`,
			`window\.`,
			`\.forEach\s*\(`,
			`\.map\s*\(`,
			`\.filter\s*\(`,
			`require\s*\(`,
			`module\.exports`,
			`export\s+(default|const|function)`,
			`import\s+.*\s+from\s+['"]`,
		),
		Negative: patterns(
			`:\s*(string|number|boolean)\b`,
			`(?m)^package\s+\w+`,
		),
	},
	{
		Name: "Python",
		Positive: patterns(
			`(?m)^def\s+\w+\s*\(`,
			`(?m)^class\s+\w+.*:`,
			`(?m)^import\s+\w+`,
			`(?m)^from\s+\w+\s+import`,
			`print\s*\(`,
			`if\s+__name__\s*==\s*['"]__main__['"]`,
			`self\.`,
			`(?m):\s*$`,
			`(?m)^\s+pass\s*$`,
			`elif\s+`,
		),
	},
	{
		Name: "Kotlin",
		Positive: patterns(
			`\bfun\s+\w+\s*\(`,
			`\bval\s+\w+`,
			`\bvar\s+\w+`,
			`println\s*\(`,
			`package\s+\w+(\.\w+)*`,
			`:\s*\w+\s*\?`,
			`when\s*\{`,
			`data\s+class`,
			`companion\s+object`,
		),
	},
	{
		Name: "Java",
		Positive: patterns(
			`public\s+(static\s+)?void\s+main`,
			`public\s+class\s+\w+`,
			`private\s+(final\s+)?\w+\s+\w+`,
			`System\.out\.println`,
			`new\s+\w+\s*\(`,
			`@Override`,
			`extends\s+\w+`,
			`implements\s+\w+`,
		),
		Negative: patterns(
			`\bfun\s+`,
			`\bval\s+`,
			`\bvar\s+\w+\s*:`,
		),
	},
	{
		Name: "C#",
		Positive: patterns(
			`using\s+System`,
			`namespace\s+\w+`,
			`public\s+class\s+\w+`,
			`Console\.(WriteLine|ReadLine)`,
			`static\s+void\s+Main`,
			`\[\w+\]`,
			`async\s+Task`,
			`await\s+`,
		),
	},
	{
		Name: "C++",
		Positive: patterns(
			`#include\s*<\w+>`,
			`std::`,
			`cout\s*<<`,
			`cin\s*>>`,
			`int\s+main\s*\(`,
			`nullptr`,
			`::\w+`,
			`template\s*<`,
		),
	},
	{
		Name: "C",
		Positive: patterns(
			`#include\s*<stdio\.h>`,
			`#include\s*<stdlib\.h>`,
			`printf\s*\(`,
			`scanf\s*\(`,
			`int\s+main\s*\(`,
			`malloc\s*\(`,
			`free\s*\(`,
		),
		Negative: patterns(
			`std::`,
			`cout`,
			`cin`,
			`class\s+\w+`,
		),
	},
	{
		Name: "Go",
		Positive: patterns(
			`(?m)^package\s+main`,
			`func\s+\w+\s*\(`,
			`fmt\.(Print|Println|Printf)`,
			`:=\s*`,
			`import\s*\(`,
			`go\s+func`,
			`chan\s+\w+`,
		),
	},
	{
		Name: "Rust",
		Positive: patterns(
			`fn\s+\w+\s*\(`,
			`let\s+mut\s+`,
			`println!\s*\(`,
			`impl\s+\w+`,
			`pub\s+fn`,
			`use\s+std::`,
			`->.*\{`,
			`&mut\s+`,
		),
	},
	{
		Name: "Ruby",
		Positive: patterns(
			`(?m)^def\s+\w+`,
			`(?m)^end\s*$`,
			`puts\s+`,
			`\.each\s+do`,
			`require\s+['"]`,
			`attr_(accessor|reader|writer)`,
			`class\s+\w+\s*<`,
		),
		// Python definitions carry parentheses.
		Negative: patterns(`(?m)^def\s+\w+\s*\(`),
	},
	{
		Name: "PHP",
		Positive: patterns(
			`<\?php`,
			`\$\w+\s*=`,
			`echo\s+`,
			`function\s+\w+\s*\(`,
			`->(\w+)`,
			`::`,
		),
	},
	{
		Name: "Swift",
		Positive: patterns(
			`\bfunc\s+\w+\s*\(`,
			`\bvar\s+\w+\s*:`,
			`\blet\s+\w+\s*:`,
			`print\s*\(`,
			`guard\s+let`,
			`if\s+let`,
			`@IBOutlet`,
			`@IBAction`,
		),
		Negative: patterns(
			`console\.log`,
			`println\(`,
		),
	},
}

var knownLabels = func() map[string]struct{} {
	known := make(map[string]struct{}, len(signatures))
	for _, sig := range signatures {
		known[sig.Name] = struct{}{}
	}
	return known
}()

// Signatures returns the registered signatures in declaration order.
// The returned slice is a copy; the compiled patterns are shared and read-only.
func Signatures() []Signature {
	out := make([]Signature, len(signatures))
	copy(out, signatures)
	return out
}

// Labels returns the canonical language labels in declaration order.
func Labels() []string {
	labels := make([]string, 0, len(signatures))
	for _, sig := range signatures {
		labels = append(labels, sig.Name)
	}
	return labels
}

// Known reports whether label is a canonical label of the signature table.
func Known(label string) bool {
	_, ok := knownLabels[label]
	return ok
}
