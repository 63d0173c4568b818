//go:build e2e

package e2e

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/filegraph/internal/config"
	"github.com/dusk-indust/filegraph/internal/logging"
	"github.com/dusk-indust/filegraph/internal/orchestrator"
)

var fixedTime = time.Date(2025, 1, 2, 3, 4, 0, 0, time.UTC)

func fixtureDir() string {
	return filepath.Join("..", "..", "testdata", "fixtures", "filespace")
}

// copyFixture copies the fixture tree into a temp dir so runs never write
// into testdata.
func copyFixture(t *testing.T) string {
	t.Helper()
	dst := t.TempDir()
	require.NoError(t, os.CopyFS(dst, os.DirFS(fixtureDir())))
	return dst
}

// runFixture runs scan and analyze over a fresh copy of the fixture.
func runFixture(t *testing.T) (*config.Config, *orchestrator.RunResult) {
	t.Helper()
	root := copyFixture(t)
	cfg, err := config.Load(root)
	require.NoError(t, err)

	p := orchestrator.NewPipeline(cfg,
		orchestrator.WithLogger(logging.Discard()),
		orchestrator.WithClock(func() time.Time { return fixedTime }),
		orchestrator.WithVersion("e2e"),
	)
	progressCh := p.Progress()
	drainDone := make(chan struct{})
	go func() {
		defer close(drainDone)
		for range progressCh {
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := p.Run(ctx)
	require.NoError(t, err)

	p.Close()
	<-drainDone
	return cfg, res
}
