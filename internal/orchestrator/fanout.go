package orchestrator

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/filegraph/internal/extract"
	"github.com/dusk-indust/filegraph/internal/logging"
)

// FileRefs holds the extraction outcome of one file.
type FileRefs struct {
	Source string
	Refs   []extract.RawReference
	Err    error // read failure; Refs is empty
}

// FanOut reads and extracts files in parallel with bounded concurrency.
// Results are stored by input position, so callers see them in input order
// regardless of completion order.
type FanOut struct {
	root    string
	ex      *extract.Extractor
	workers int
	logger  *slog.Logger
}

// NewFanOut creates a FanOut reading files below root.
func NewFanOut(root string, ex *extract.Extractor, workers int, logger *slog.Logger) *FanOut {
	if workers <= 0 {
		workers = 1
	}
	return &FanOut{root: root, ex: ex, workers: workers, logger: logging.OrDefault(logger)}
}

// Run extracts every file in files. A file that cannot be read records its
// error and does not stop the others; only cancellation of ctx is returned.
func (f *FanOut) Run(ctx context.Context, files []string) ([]FileRefs, error) {
	results := make([]FileRefs, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	for i, rel := range files {
		results[i].Source = rel
		if !f.ex.Scannable(rel) {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(rel)))
			if err != nil {
				f.logger.Debug("skipping unreadable file", "path", rel, "err", err)
				results[i].Err = err
				return nil
			}
			results[i].Refs = f.ex.Collect(rel, content)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
