package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/filegraph/internal/config"
	"github.com/dusk-indust/filegraph/internal/extract"
	"github.com/dusk-indust/filegraph/internal/logging"
)

// writeProject creates files with the given contents under a temp dir.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func newExtractor(root string) *extract.Extractor {
	return extract.New(extract.OptionsFromConfig(config.Default(root)))
}

func TestFanOut_KeepsInputOrder(t *testing.T) {
	files := map[string]string{}
	var order []string
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		rel := ".claude/context/" + name + ".md"
		files[rel] = "see .claude/context/target-" + name + ".md\n"
		order = append(order, rel)
	}
	root := writeProject(t, files)

	got, err := NewFanOut(root, newExtractor(root), 3, logging.Discard()).Run(context.Background(), order)
	require.NoError(t, err)
	require.Len(t, got, len(order))
	for i, f := range got {
		assert.Equal(t, order[i], f.Source)
		assert.NoError(t, f.Err)
		require.NotEmpty(t, f.Refs, f.Source)
		assert.Equal(t, f.Source, f.Refs[0].Source)
	}
}

func TestFanOut_ReadErrorDoesNotStopOthers(t *testing.T) {
	root := writeProject(t, map[string]string{
		"docs/ok.md": "see CLAUDE.md\n",
	})

	got, err := NewFanOut(root, newExtractor(root), 2, nil).Run(context.Background(),
		[]string{"docs/missing.md", "docs/ok.md"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Error(t, got[0].Err)
	assert.Empty(t, got[0].Refs)
	assert.NoError(t, got[1].Err)
	assert.NotEmpty(t, got[1].Refs)
}

func TestFanOut_SkipsUnscannableExtensions(t *testing.T) {
	root := writeProject(t, map[string]string{
		"img/logo.png": "CLAUDE.md",
	})

	got, err := NewFanOut(root, newExtractor(root), 0, nil).Run(context.Background(), []string{"img/logo.png"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NoError(t, got[0].Err)
	assert.Empty(t, got[0].Refs)
}

func TestFanOut_Canceled(t *testing.T) {
	root := writeProject(t, map[string]string{"a.md": "CLAUDE.md\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFanOut(root, newExtractor(root), 1, nil).Run(ctx, []string{"a.md"})
	assert.ErrorIs(t, err, context.Canceled)
}
