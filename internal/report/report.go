// Package report reads and writes the pipeline's flat-file artifacts: the
// graph file, the orphans list, the analysis file and the markdown report.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dusk-indust/filegraph/internal/analysis"
	"github.com/dusk-indust/filegraph/internal/graph"
)

// ErrGraphNotFound is returned by ReadGraph when no graph file exists.
var ErrGraphNotFound = errors.New("graph file not found")

// ErrAnalysisNotFound is returned by ReadAnalysis when no analysis file exists.
var ErrAnalysisNotFound = errors.New("analysis file not found")

// WriteGraph writes g as indented JSON.
func WriteGraph(path string, g *graph.Graph) error {
	data, err := encodeJSON(g)
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return writeFile(path, data)
}

// ReadGraph loads a graph file.
func ReadGraph(path string) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrGraphNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}
	var g graph.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode graph %s: %w", path, err)
	}
	return &g, nil
}

// WriteAnalysis writes the analysis result as indented JSON.
func WriteAnalysis(path string, res *analysis.Result) error {
	data, err := encodeJSON(res)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	return writeFile(path, data)
}

// ReadAnalysis loads an analysis file.
func ReadAnalysis(path string) (*analysis.Result, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrAnalysisNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read analysis: %w", err)
	}
	var res analysis.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", path, err)
	}
	return &res, nil
}

// FormatOrphans renders the orphans list: a header with the orphan share
// and the entry points used, then one annotated path per line.
func FormatOrphans(r *graph.Reachability, totalFiles int) string {
	var sb strings.Builder
	sb.WriteString("# Filespace Orphans - unreachable from entry points\n")
	fmt.Fprintf(&sb, "# Total: %d / %d files\n", len(r.Orphans), totalFiles)
	fmt.Fprintf(&sb, "# Entry points: %s\n\n", strings.Join(r.EntryPoints, ", "))
	for _, o := range r.Orphans {
		marker := " (has edges but unreachable)"
		if o.Kind == graph.OrphanIsolated {
			marker = " (isolated)"
		}
		sb.WriteString(o.Path + marker + "\n")
	}
	return sb.String()
}

// WriteOrphans writes the orphans list.
func WriteOrphans(path string, r *graph.Reachability, totalFiles int) error {
	return writeFile(path, []byte(FormatOrphans(r, totalFiles)))
}

// WriteMarkdown renders and writes the markdown report.
func WriteMarkdown(path string, res *analysis.Result, opts MarkdownOptions) error {
	return writeFile(path, []byte(Markdown(res, opts)))
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeFile replaces path atomically via a temp file in the same directory,
// creating directories as needed.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
