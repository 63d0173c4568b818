//go:build cgo

package extract

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// grammar pairs a tree-sitter language with the node kinds that hold
// string literals in it.
type grammar struct {
	lang  *tree_sitter.Language
	kinds map[string]bool
}

// treeSitterLiterals collects string literals from code files. A new parser
// is created per call, so one instance may be shared across goroutines.
type treeSitterLiterals struct {
	grammars map[string]grammar
}

func newLiteralScanner() literalScanner {
	js := grammar{
		lang:  tree_sitter.NewLanguage(tree_sitter_javascript.Language()),
		kinds: map[string]bool{"string": true, "template_string": true},
	}
	return &treeSitterLiterals{grammars: map[string]grammar{
		".py": {
			lang:  tree_sitter.NewLanguage(tree_sitter_python.Language()),
			kinds: map[string]bool{"string": true},
		},
		".js":  js,
		".mjs": js,
		".cjs": js,
		".ts": {
			lang:  tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			kinds: map[string]bool{"string": true, "template_string": true},
		},
		".go": {
			lang:  tree_sitter.NewLanguage(tree_sitter_go.Language()),
			kinds: map[string]bool{"interpreted_string_literal": true, "raw_string_literal": true},
		},
		".rs": {
			lang:  tree_sitter.NewLanguage(tree_sitter_rust.Language()),
			kinds: map[string]bool{"string_literal": true, "raw_string_literal": true},
		},
	}}
}

func (t *treeSitterLiterals) Supports(ext string) bool {
	_, ok := t.grammars[ext]
	return ok
}

// Literals returns the unquoted text of every string literal in source
// order.
func (t *treeSitterLiterals) Literals(ext string, source []byte) ([]string, error) {
	g, ok := t.grammars[ext]
	if !ok {
		return nil, fmt.Errorf("no grammar for %s", ext)
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(g.lang); err != nil {
		return nil, fmt.Errorf("set language %s: %w", ext, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned nil tree for %s source", ext)
	}
	defer tree.Close()

	cursor := tree.RootNode().Walk()
	defer cursor.Close()

	var out []string
	walkLiterals(cursor, source, g.kinds, &out)
	return out, nil
}

func walkLiterals(cursor *tree_sitter.TreeCursor, source []byte, kinds map[string]bool, out *[]string) {
	node := cursor.Node()
	if kinds[node.Kind()] {
		if s := unquote(node.Utf8Text(source)); s != "" {
			*out = append(*out, s)
		}
		return
	}
	if cursor.GotoFirstChild() {
		walkLiterals(cursor, source, kinds, out)
		for cursor.GotoNextSibling() {
			walkLiterals(cursor, source, kinds, out)
		}
		cursor.GotoParent()
	}
}

// unquote strips string prefixes (r, b, f, u) and the surrounding quotes.
func unquote(s string) string {
	s = strings.TrimLeft(s, "rRbBuUfF")
	s = strings.Trim(s, "#")
	for _, q := range []string{`"""`, `'''`, `"`, `'`, "`"} {
		if len(s) >= 2*len(q) && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	return ""
}
