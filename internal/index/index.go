// Package index walks the configured scan directories and produces the
// canonical node set: every eligible project-relative file path, plus a
// basename lookup used by the resolver.
package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/dusk-indust/filegraph/internal/config"
	"github.com/dusk-indust/filegraph/internal/logging"
)

// Index is the immutable node set of one run.
type Index struct {
	files  []string
	set    map[string]struct{}
	byBase map[string][]string
}

// New builds an Index from an explicit list of project-relative slash paths.
// Duplicates are dropped and Files is sorted. Basename lists keep the order
// paths were given in, so the first collected copy of a name stays first.
func New(paths []string) *Index {
	set := make(map[string]struct{}, len(paths))
	files := make([]string, 0, len(paths))
	byBase := make(map[string][]string)
	for _, p := range paths {
		if _, ok := set[p]; ok {
			continue
		}
		set[p] = struct{}{}
		files = append(files, p)
		b := path.Base(p)
		byBase[b] = append(byBase[b], p)
	}
	slices.Sort(files)
	return &Index{files: files, set: set, byBase: byBase}
}

// Files returns the sorted node paths. Callers must not modify the slice.
func (ix *Index) Files() []string { return ix.files }

// Len returns the number of nodes.
func (ix *Index) Len() int { return len(ix.files) }

// Has reports whether p is a node.
func (ix *Index) Has(p string) bool {
	_, ok := ix.set[p]
	return ok
}

// ByBasename returns every node whose final path element is base, in
// collection order.
func (ix *Index) ByBasename(base string) []string { return ix.byBase[base] }

// AmbiguousBasenames counts basenames shared by more than one node.
func (ix *Index) AmbiguousBasenames() int {
	n := 0
	for _, paths := range ix.byBase {
		if len(paths) > 1 {
			n++
		}
	}
	return n
}

// Build walks cfg.ScanDirs and the project root's loose files. Every file in a
// scan dir becomes a node whatever its extension; the extension allow-list
// only gates extraction. Scan dirs that do not exist are ignored and
// unreadable subdirectories are skipped.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Index, error) {
	logger = logging.OrDefault(logger)
	root := cfg.ProjectDir
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("project dir: %w", err)
	}

	w := &walker{
		cfg:      cfg,
		logger:   logger,
		excluded: cfg.Excluded(),
	}
	if cfg.RespectGitignore {
		gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
		if err == nil {
			w.gitignore = gi
		} else if !errors.Is(err, fs.ErrNotExist) {
			logger.Debug("gitignore unreadable", "err", err)
		}
	}

	var paths []string
	for _, dir := range cfg.ScanDirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		paths = append(paths, w.walk(root, dir)...)
	}
	paths = append(paths, w.rootFiles(root)...)

	ix := New(paths)
	logger.Debug("index built", "files", ix.Len(), "ambiguous_basenames", ix.AmbiguousBasenames())
	return ix, nil
}

type walker struct {
	cfg       *config.Config
	logger    *slog.Logger
	excluded  map[string]struct{}
	gitignore *ignore.GitIgnore
}

func (w *walker) walk(root, dir string) []string {
	start := filepath.Join(root, filepath.FromSlash(dir))
	info, err := os.Stat(start)
	if err != nil || !info.IsDir() {
		return nil
	}
	var out []string
	w.walkDir(root, start, &out)
	return out
}

// walkDir collects a directory's own files before descending into its
// subdirectories, each group in name order.
func (w *walker) walkDir(root, dir string, out *[]string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Debug("skipping unreadable path", "path", dir, "err", err)
	}

	var subdirs []string
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		rel, err := filepath.Rel(root, p)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)

		if e.IsDir() {
			if !w.skipped(rel) && !w.dirExcluded(rel) && !w.ignored(rel, true) {
				subdirs = append(subdirs, p)
			}
			continue
		}
		if !regularFile(p, e) {
			continue
		}
		if w.skipped(rel) || w.dirExcluded(rel) || w.ignored(rel, false) {
			continue
		}
		if _, ok := w.excluded[rel]; ok || w.cfg.IsOutput(rel) {
			continue
		}
		*out = append(*out, rel)
	}
	for _, sub := range subdirs {
		w.walkDir(root, sub, out)
	}
}

// regularFile reports whether e is a regular file or a symlink to one.
// Symlinked directories are neither followed nor indexed.
func regularFile(p string, e fs.DirEntry) bool {
	switch {
	case e.Type().IsRegular():
		return true
	case e.Type()&fs.ModeSymlink != 0:
		fi, err := os.Stat(p)
		return err == nil && fi.Mode().IsRegular()
	default:
		return false
	}
}

// rootFiles lists loose files directly in the project root.
func (w *walker) rootFiles(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		w.logger.Debug("project root unreadable", "err", err)
		return nil
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if !regularFile(filepath.Join(root, name), e) {
			continue
		}
		if !hasAnySuffix(name, w.cfg.RootExtensions) {
			continue
		}
		if _, ok := w.excluded[name]; ok || w.cfg.IsOutput(name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

func (w *walker) skipped(rel string) bool {
	for _, s := range w.cfg.SkipPatterns {
		if strings.Contains(rel, s) {
			return true
		}
	}
	return false
}

func (w *walker) dirExcluded(rel string) bool {
	for _, d := range w.cfg.ExcludeDirs {
		if rel == d || strings.HasPrefix(rel, d+"/") || strings.Contains(rel, "/"+d+"/") {
			return true
		}
	}
	return false
}

func (w *walker) ignored(rel string, dir bool) bool {
	if w.gitignore == nil {
		return false
	}
	if dir {
		return w.gitignore.MatchesPath(rel + "/")
	}
	return w.gitignore.MatchesPath(rel)
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
