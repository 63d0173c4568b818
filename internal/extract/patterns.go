package extract

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// pattern is one compiled text pattern. When the expression defines a
// capture group, group 1 is the reference and group 0 the raw snippet.
type pattern struct {
	name string
	re   *regexp2.Regexp
}

const (
	docExts  = `md|sh|js|yaml|yml|json|py|txt`
	pathBody = `[a-zA-Z0-9_\-/]+\.[a-zA-Z]{1,5}`
)

// compilePatterns builds the ordered pattern list. Order matters: earlier
// patterns win the first-edge-per-pair race downstream.
func compilePatterns(opts Options) []pattern {
	ns := regexp2.Escape(opts.NamespacePrefix)

	exprs := []struct{ name, expr string }{
		{"namespace-path", ns + pathBody},
		{"at-path", `@` + ns + pathBody},
		{"bare-filename", `(?<![/\w])([a-zA-Z][a-zA-Z0-9_\-]+\.(?:` + docExts + `|xsd))\b`},
	}
	if opts.HomePrefix != "" {
		exprs = append(exprs, struct{ name, expr string }{"home-path", regexp2.Escape(opts.HomePrefix) + pathBody})
	}
	for _, s := range opts.SentinelFiles {
		exprs = append(exprs, struct{ name, expr string }{"sentinel", `\b` + regexp2.Escape(s) + `\b`})
	}
	if len(opts.SubtreePrefixes) > 0 {
		alts := make([]string, len(opts.SubtreePrefixes))
		for i, p := range opts.SubtreePrefixes {
			alts[i] = regexp2.Escape(p)
		}
		exprs = append(exprs, struct{ name, expr string }{"subtree-path", `(?:` + strings.Join(alts, "|") + `)` + pathBody})
	}
	exprs = append(exprs, []struct{ name, expr string }{
		{"link-target", `\]\(([a-zA-Z0-9_\-./]+\.(?:` + docExts + `))\)`},
		{"key-field", `(?:file|script|hook|command|skill):\s*["']?(\.` + pathBody + `)`},
		{"dot-relative", `(?<!\w)\./` + pathBody},
		{"bare-dir", `(?<![.\w])([a-zA-Z][a-zA-Z0-9_\-]+)/(?=\s|$|\n|\|)`},
		{"table-dir", "[|`]\\s*([a-zA-Z][a-zA-Z0-9_\\-]+)/\\s*[|`]"},
		{"tree-dir", `[├└─│]\s*([a-zA-Z][a-zA-Z0-9_\-]+)/`},
		{"link-dir", `\]\(([a-zA-Z0-9_\-./]+)/\)`},
		{"skill-link", `\]\(([a-zA-Z0-9_\-]+/SKILL\.md)\)`},
	}...)

	out := make([]pattern, 0, len(exprs))
	for _, e := range exprs {
		re := regexp2.MustCompile(e.expr, regexp2.None)
		re.MatchTimeout = opts.MatchTimeout
		out = append(out, pattern{name: e.name, re: re})
	}
	return out
}

// compileHookPath matches script paths inside hook command strings.
func compileHookPath(timeout time.Duration) pattern {
	re := regexp2.MustCompile(`[a-zA-Z0-9_\-./]+\.(?:js|sh|py)`, regexp2.None)
	re.MatchTimeout = timeout
	return pattern{name: "hook-command", re: re}
}

// each calls fn(raw, ref) for every match of p in text. A match timeout ends
// the scan for this pattern only.
func (p pattern) each(text []rune, fn func(raw, ref string) bool) bool {
	m, err := p.re.FindRunesMatch(text)
	for err == nil && m != nil {
		raw := m.String()
		ref := raw
		if m.GroupCount() > 1 {
			ref = m.GroupByNumber(1).String()
		}
		if !fn(raw, ref) {
			return false
		}
		m, err = p.re.FindNextMatch(m)
	}
	return true
}

// scanPatterns runs every pattern in order over text.
func (e *Extractor) scanPatterns(text string, fn func(raw, ref string) bool) bool {
	runes := []rune(text)
	for _, p := range e.patterns {
		if !p.each(runes, fn) {
			return false
		}
	}
	return true
}
