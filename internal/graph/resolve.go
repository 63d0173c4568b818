package graph

import (
	"path"
	"strings"
	"unicode/utf8"

	"github.com/dusk-indust/filegraph/internal/config"
	"github.com/dusk-indust/filegraph/internal/index"
)

// ResolveOptions holds the namespace conventions the cascade relies on.
type ResolveOptions struct {
	NamespacePrefix string   // primary namespace, e.g. ".claude/"
	HomePrefix      string   // home-relative form of the namespace, e.g. "~/.claude/"
	SubtreePrefixes []string // prefixes that already name a top-level subtree
	IndexFiles      []string // files that stand for their directory, in preference order
	DirPrefixes     []string // namespaces probed for bare directory mentions
}

// ResolveOptionsFromConfig extracts resolver options from the pipeline config.
func ResolveOptionsFromConfig(cfg *config.Config) ResolveOptions {
	return ResolveOptions{
		NamespacePrefix: cfg.NamespacePrefix,
		HomePrefix:      cfg.HomePrefix,
		SubtreePrefixes: cfg.SubtreePrefixes,
		IndexFiles:      cfg.IndexFiles,
		DirPrefixes:     cfg.DirPrefixes,
	}
}

// Resolution is a successful resolution and the strategy that produced it.
type Resolution struct {
	Target   string
	Strategy string
}

// strategy is one step of the cascade. Strategies are pure: they only probe
// the in-memory index.
type strategy struct {
	name string
	fn   func(r *Resolver, ref, source string) (string, bool)
}

// Resolver maps raw reference strings to canonical nodes. It is built once
// from the index and is safe for concurrent use.
type Resolver struct {
	ix         *index.Index
	opts       ResolveOptions
	strategies []strategy
}

// NewResolver creates a Resolver over ix.
func NewResolver(ix *index.Index, opts ResolveOptions) *Resolver {
	return &Resolver{
		ix:   ix,
		opts: opts,
		strategies: []strategy{
			{"exact", (*Resolver).exact},
			{"dot-slash", (*Resolver).dotSlash},
			{"home", (*Resolver).home},
			{"relative", (*Resolver).relative},
			{"namespace", (*Resolver).namespace},
			{"directory", (*Resolver).directory},
			{"basename", (*Resolver).basename},
		},
	}
}

// StrategyNames lists the cascade in evaluation order.
func (r *Resolver) StrategyNames() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.name
	}
	return names
}

// CleanRef strips the "@" marker, surrounding whitespace and quotes.
func CleanRef(ref string) string {
	ref = strings.TrimLeft(ref, "@")
	ref = strings.TrimSpace(ref)
	ref = strings.Trim(ref, `"`)
	return strings.Trim(ref, `'`)
}

// Resolve returns the node ref points to from source. The first strategy
// with a hit wins; a hit on the source itself is unresolved rather than
// passed on to later strategies.
func (r *Resolver) Resolve(ref, source string) (Resolution, bool) {
	ref = CleanRef(ref)
	if ref == "" || ref == source {
		return Resolution{}, false
	}
	for _, s := range r.strategies {
		target, ok := s.fn(r, ref, source)
		if !ok {
			continue
		}
		if target == source {
			return Resolution{}, false
		}
		return Resolution{Target: target, Strategy: s.name}, true
	}
	return Resolution{}, false
}

// --- Strategies ---

func (r *Resolver) exact(ref, _ string) (string, bool) {
	return ref, r.ix.Has(ref)
}

func (r *Resolver) dotSlash(ref, _ string) (string, bool) {
	clean := ref
	for {
		next := strings.TrimPrefix(strings.TrimLeft(clean, "/"), "./")
		if next == clean {
			break
		}
		clean = next
	}
	if clean == ref {
		return "", false
	}
	return clean, r.ix.Has(clean)
}

func (r *Resolver) home(ref, _ string) (string, bool) {
	if r.opts.HomePrefix == "" || !strings.HasPrefix(ref, r.opts.HomePrefix) {
		return "", false
	}
	p := r.opts.NamespacePrefix + strings.TrimPrefix(ref, r.opts.HomePrefix)
	return p, r.ix.Has(p)
}

// relative joins ref to the source directory, then to each ancestor of it up
// to the project root.
func (r *Resolver) relative(ref, source string) (string, bool) {
	if !strings.Contains(ref, "/") {
		return "", false
	}
	for dir := dirOf(source); ; dir = dirOf(dir) {
		if p := path.Join(dir, ref); r.ix.Has(p) {
			return p, true
		}
		if dir == "" {
			return "", false
		}
	}
}

func (r *Resolver) namespace(ref, _ string) (string, bool) {
	if strings.HasPrefix(ref, ".") || hasAnyPrefix(ref, r.opts.SubtreePrefixes) {
		return "", false
	}
	p := r.opts.NamespacePrefix + ref
	return p, r.ix.Has(p)
}

// directory resolves a directory mention to that directory's index file.
func (r *Resolver) directory(ref, source string) (string, bool) {
	base := ref[strings.LastIndex(ref, "/")+1:]
	isDir := strings.HasSuffix(ref, "/") || (!strings.Contains(base, ".") && utf8.RuneCountInString(ref) > 2)
	dir := strings.TrimRight(ref, "/")
	if !isDir || dir == "" {
		return "", false
	}

	for _, idx := range r.opts.IndexFiles {
		if p := dir + "/" + idx; r.ix.Has(p) {
			return p, true
		}
	}
	for _, prefix := range r.opts.DirPrefixes {
		for _, idx := range r.opts.IndexFiles {
			if p := prefix + dir + "/" + idx; r.ix.Has(p) {
				return p, true
			}
		}
	}
	for src := dirOf(source); src != ""; src = dirOf(src) {
		for _, idx := range r.opts.IndexFiles {
			if p := path.Join(src, dir, idx); r.ix.Has(p) {
				return p, true
			}
		}
	}
	for _, idx := range r.opts.IndexFiles {
		for _, cand := range r.ix.ByBasename(idx) {
			if strings.Contains(cand, "/"+dir+"/") || strings.HasPrefix(cand, dir+"/") {
				return cand, true
			}
		}
	}
	return "", false
}

func (r *Resolver) basename(ref, source string) (string, bool) {
	candidates := r.ix.ByBasename(ref[strings.LastIndex(ref, "/")+1:])
	switch len(candidates) {
	case 0:
		return "", false
	case 1:
		return candidates[0], true
	}
	return rankCandidates(ref, dirOf(source), candidates), true
}

// rankCandidates picks among nodes sharing a basename. Candidates in the
// source directory rank first, then candidates below it, then the rest by
// the number of reference segments they share (only when ref has a
// directory part). Ties keep collection order.
func rankCandidates(ref, sourceDir string, candidates []string) string {
	var refParts []string
	if strings.Contains(ref, "/") {
		refParts = strings.Split(ref, "/")
	}

	best, bestTier, bestScore := candidates[0], 0, -1
	for _, c := range candidates {
		tier, score := 1, 0
		switch {
		case dirOf(c) == sourceDir:
			tier = 3
		case sourceDir == "" || strings.HasPrefix(c, sourceDir+"/"):
			tier = 2
		default:
			score = sharedSegments(refParts, c)
		}
		if tier > bestTier || (tier == bestTier && score > bestScore) {
			best, bestTier, bestScore = c, tier, score
		}
	}
	return best
}

// sharedSegments counts reference segments that also appear in candidate.
func sharedSegments(refParts []string, candidate string) int {
	if len(refParts) == 0 {
		return 0
	}
	segs := make(map[string]struct{})
	for _, s := range strings.Split(candidate, "/") {
		segs[s] = struct{}{}
	}
	n := 0
	for _, p := range refParts {
		if _, ok := segs[p]; ok {
			n++
		}
	}
	return n
}

// dirOf is path.Dir with the project root spelled "".
func dirOf(p string) string {
	d := path.Dir(p)
	if d == "." || d == "/" {
		return ""
	}
	return d
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
