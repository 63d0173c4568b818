//go:build cgo

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/filegraph/internal/config"
)

func TestLiterals_Python(t *testing.T) {
	scanner := newLiteralScanner()
	require.True(t, scanner.Supports(".py"))

	src := []byte("import json\nCONFIG = \".claude/data/x.json\"\nname = 'hello world'\nraw = r'tools/run.sh'\n")
	lits, err := scanner.Literals(".py", src)
	require.NoError(t, err)

	assert.Equal(t, []string{".claude/data/x.json", "hello world", "tools/run.sh"}, lits)
}

func TestLiterals_JavaScript(t *testing.T) {
	scanner := newLiteralScanner()

	src := []byte("const p = require('./lib/util.js');\nconst t = `hooks/${name}.sh`;\n")
	lits, err := scanner.Literals(".js", src)
	require.NoError(t, err)

	assert.Equal(t, []string{"./lib/util.js", "hooks/${name}.sh"}, lits)
}

func TestLiterals_Go(t *testing.T) {
	scanner := newLiteralScanner()

	src := []byte("package main\n\nconst a = \"docs/guide.md\"\nconst b = `raw/path.txt`\n")
	lits, err := scanner.Literals(".go", src)
	require.NoError(t, err)

	assert.Equal(t, []string{"docs/guide.md", "raw/path.txt"}, lits)
}

func TestExtract_CodeLiteralChannel(t *testing.T) {
	cfg := config.Default("/tmp/project")
	cfg.CodeLiterals = true
	e := New(OptionsFromConfig(cfg))

	src := []byte("path = \"lib/loader.py\"\ngreeting = \"hi there\"\n")
	got := refs(e.Collect("tool.py", src), ChannelCode)

	assert.Equal(t, []string{"lib/loader.py"}, got)
}

func TestExtract_CodeLiteralsOffByDefault(t *testing.T) {
	e := newTestExtractor(t)

	got := refs(e.Collect("tool.py", []byte("path = \"lib/loader.py\"\n")), ChannelCode)

	assert.Empty(t, got)
}

func TestUnquote(t *testing.T) {
	tests := map[string]string{
		`"a/b.md"`:     "a/b.md",
		`'a/b.md'`:     "a/b.md",
		"`a/b.md`":     "a/b.md",
		`f"x/{y}.md"`:  "x/{y}.md",
		`"""doc"""`:    "doc",
		`r#"raw.md"#`:  "raw.md",
		`unterminated`: "",
	}
	for in, want := range tests {
		assert.Equal(t, want, unquote(in), in)
	}
}
