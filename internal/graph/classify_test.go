package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyReference(t *testing.T) {
	tests := []struct {
		raw, source, target string
		want                EdgeKind
	}{
		{"@b.md", "a.sh", "b.md", EdgeKindAtReference},
		{"@lib.js", "a.md", "lib.js", EdgeKindAtReference},
		{"lib.js", "a.sh", "lib.js", EdgeKindCodeDependency},
		{"run.py", "hook.js", "run.py", EdgeKindCodeDependency},
		{"cfg.yaml", "a.py", "cfg.yaml", EdgeKindReadsFrom},
		{"notes.md", "a.js", "notes.md", EdgeKindReadsFrom},
		{"cfg.yml", "a.py", "cfg.yml", EdgeKindReference},
		{"b.md", "a.md", "b.md", EdgeKindDocReference},
		{"run.sh", "a.md", "run.sh", EdgeKindReferencesCode},
		{"b.md", "x.yaml", "b.md", EdgeKindConfigReference},
		{"b.md", "x.yml", "b.md", EdgeKindConfigReference},
		{"hook.js", ".mcp.json", "hook.js", EdgeKindConfigReference},
		{"b.md", "notes.txt", "b.md", EdgeKindReference},
		{"cfg.yaml", "a.md", "cfg.yaml", EdgeKindReference},
	}
	for _, tt := range tests {
		t.Run(tt.source+"->"+tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyReference(tt.raw, tt.source, tt.target))
		})
	}
}

func TestExt(t *testing.T) {
	tests := map[string]string{
		"a/b.md":        ".md",
		".mcp.json":     ".json",
		".gitignore":    "",
		"Makefile":      "",
		"x/y.tar.gz":    ".gz",
		"dir.d/VERSION": "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Ext(in), "Ext(%q)", in)
	}
}
