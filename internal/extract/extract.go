// Package extract turns one file's content into raw reference strings. Three
// channels feed the sequence: text patterns over the raw content, a walk of
// parsed YAML/JSON documents, and (optionally) string literals in code files.
// De-duplication happens downstream.
package extract

import (
	"iter"
	"path"
	"strings"
	"time"

	"github.com/dusk-indust/filegraph/internal/config"
)

// RawSnippetLimit bounds the literal snippet kept with each reference.
const RawSnippetLimit = 80

// Channel names the extraction channel that produced a reference.
type Channel string

const (
	ChannelPattern    Channel = "pattern"
	ChannelStructured Channel = "structured"
	ChannelCode       Channel = "code"
)

// RawReference is one extracted reference candidate.
type RawReference struct {
	Source  string  // project-relative path of the file it was found in
	Ref     string  // the reference string handed to the resolver
	Raw     string  // literal snippet, truncated to RawSnippetLimit runes
	Channel Channel // channel that produced it
}

// Options configures an Extractor.
type Options struct {
	NamespacePrefix string
	HomePrefix      string
	SubtreePrefixes []string
	SentinelFiles   []string
	TextExtensions  []string
	IsSettingsFile  func(rel string) bool
	CodeLiterals    bool
	MatchTimeout    time.Duration

	// OnParseError is called when a structured document fails to parse and
	// the file falls back to pattern results. It must be safe for concurrent use.
	OnParseError func(source string, err error)
}

// OptionsFromConfig derives extractor options from the pipeline config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		NamespacePrefix: cfg.NamespacePrefix,
		HomePrefix:      cfg.HomePrefix,
		SubtreePrefixes: cfg.SubtreePrefixes,
		SentinelFiles:   cfg.SentinelFiles,
		TextExtensions:  cfg.TextExtensions,
		IsSettingsFile:  cfg.IsSettingsFile,
		CodeLiterals:    cfg.CodeLiterals,
	}
}

// Extractor is safe for concurrent use once built.
type Extractor struct {
	opts     Options
	patterns []pattern
	hookPath pattern
	textExt  map[string]struct{}
	literals literalScanner
}

// New compiles the pattern list for opts.
func New(opts Options) *Extractor {
	if opts.MatchTimeout <= 0 {
		opts.MatchTimeout = 5 * time.Second
	}
	e := &Extractor{
		opts:     opts,
		patterns: compilePatterns(opts),
		hookPath: compileHookPath(opts.MatchTimeout),
		textExt:  make(map[string]struct{}, len(opts.TextExtensions)),
	}
	for _, ext := range opts.TextExtensions {
		e.textExt[strings.ToLower(ext)] = struct{}{}
	}
	if opts.CodeLiterals {
		e.literals = newLiteralScanner()
	}
	return e
}

// Scannable reports whether files with this path's extension are read at all.
func (e *Extractor) Scannable(rel string) bool {
	_, ok := e.textExt[strings.ToLower(path.Ext(rel))]
	return ok
}

// Extract returns the references found in content, lazily. Files whose
// extension is not on the allow-list yield nothing.
func (e *Extractor) Extract(source string, content []byte) iter.Seq[RawReference] {
	return func(yield func(RawReference) bool) {
		if !e.Scannable(source) {
			return
		}
		text := strings.ToValidUTF8(string(content), "\uFFFD")
		emit := func(ch Channel) func(raw, ref string) bool {
			return func(raw, ref string) bool {
				return yield(RawReference{Source: source, Ref: ref, Raw: truncate(raw), Channel: ch})
			}
		}

		if !e.scanPatterns(text, emit(ChannelPattern)) {
			return
		}

		ext := strings.ToLower(path.Ext(source))
		var structured []RawReference
		collect := func(raw, ref string) {
			structured = append(structured, RawReference{Source: source, Ref: ref, Raw: truncate(raw), Channel: ChannelStructured})
		}
		switch ext {
		case ".yaml", ".yml":
			if err := scanYAML(content, collect); err != nil {
				structured = nil
				e.parseError(source, err)
			}
		case ".json":
			doc, err := decodeJSON(content)
			if err != nil {
				e.parseError(source, err)
				break
			}
			walkJSON(doc, e.opts.NamespacePrefix, collect)
			if e.opts.IsSettingsFile != nil && e.opts.IsSettingsFile(source) {
				e.scanHooks(doc, collect)
			}
		}
		for _, r := range structured {
			if !yield(r) {
				return
			}
		}

		if e.literals != nil && e.literals.Supports(ext) {
			lits, err := e.literals.Literals(ext, content)
			if err != nil {
				return
			}
			out := emit(ChannelCode)
			for _, lit := range lits {
				if e.looksLikePath(lit) && !out(lit, lit) {
					return
				}
			}
		}
	}
}

// Collect drains Extract into a slice.
func (e *Extractor) Collect(source string, content []byte) []RawReference {
	var out []RawReference
	for r := range e.Extract(source, content) {
		out = append(out, r)
	}
	return out
}

func (e *Extractor) parseError(source string, err error) {
	if e.opts.OnParseError != nil {
		e.opts.OnParseError(source, err)
	}
}

// looksLikePath filters code string literals down to path-shaped values.
func (e *Extractor) looksLikePath(s string) bool {
	if len(s) < 3 || len(s) > 256 || strings.ContainsAny(s, " \t\r\n{}$*?<>") {
		return false
	}
	if _, ok := e.textExt[strings.ToLower(path.Ext(s))]; ok {
		return true
	}
	return strings.Contains(s, "/") && strings.Contains(path.Base(s), ".")
}

// truncate keeps at most RawSnippetLimit runes.
func truncate(s string) string {
	n := 0
	for i := range s {
		if n == RawSnippetLimit {
			return s[:i]
		}
		n++
	}
	return s
}
