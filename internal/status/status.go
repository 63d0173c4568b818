// Package status reports which pipeline artifacts exist for a project and
// what to run next.
package status

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/dusk-indust/filegraph/internal/config"
	"github.com/dusk-indust/filegraph/internal/graph"
	"github.com/dusk-indust/filegraph/internal/report"
)

// Artifact kinds, in pipeline order.
const (
	ArtifactGraph    = "graph"
	ArtifactOrphans  = "orphans"
	ArtifactAnalysis = "analysis"
	ArtifactReport   = "report"
)

// Recommended next steps.
const (
	NextScan    = "scan"
	NextAnalyze = "analyze"
	NextNone    = ""
)

// ArtifactInfo describes one output file.
type ArtifactInfo struct {
	Kind    string    `json:"kind"`
	Path    string    `json:"path"`
	Present bool      `json:"present"`
	Size    int64     `json:"size,omitempty"`
	ModTime time.Time `json:"modTime,omitzero"`
}

// ProjectStatus is the artifact inventory for one project.
type ProjectStatus struct {
	ProjectDir    string         `json:"projectDir"`
	Artifacts     []ArtifactInfo `json:"artifacts"`
	AnalysisStale bool           `json:"analysisStale"` // analysis older than the graph file
	Next          string         `json:"next"`

	// Graph metadata, when the graph file is present and readable.
	GeneratedAt string       `json:"generatedAt,omitempty"`
	Stats       *graph.Stats `json:"stats,omitempty"`
	GraphError  string       `json:"graphError,omitempty"`
}

var artifactFiles = [...]struct{ kind, file string }{
	{ArtifactGraph, config.GraphFile},
	{ArtifactOrphans, config.OrphansFile},
	{ArtifactAnalysis, config.AnalysisFile},
	{ArtifactReport, config.ReportFile},
}

// Inspect stats every output file of cfg and derives the next step.
func Inspect(cfg *config.Config) ProjectStatus {
	ps := ProjectStatus{ProjectDir: cfg.ProjectDir}
	byKind := make(map[string]ArtifactInfo, len(artifactFiles))
	for _, a := range artifactFiles {
		info := ArtifactInfo{Kind: a.kind, Path: cfg.OutputPath(a.file)}
		if fi, err := os.Stat(info.Path); err == nil && !fi.IsDir() {
			info.Present = true
			info.Size = fi.Size()
			info.ModTime = fi.ModTime()
		}
		byKind[a.kind] = info
		ps.Artifacts = append(ps.Artifacts, info)
	}

	g, an, md := byKind[ArtifactGraph], byKind[ArtifactAnalysis], byKind[ArtifactReport]
	if g.Present {
		if gf, err := report.ReadGraph(g.Path); err == nil {
			ps.GeneratedAt = gf.Metadata.GeneratedAt
			ps.Stats = &gf.Metadata.Stats
		} else if !errors.Is(err, fs.ErrNotExist) {
			ps.GraphError = err.Error()
		}
	}
	ps.AnalysisStale = g.Present && an.Present && an.ModTime.Before(g.ModTime)

	switch {
	case !g.Present || ps.GraphError != "":
		ps.Next = NextScan
	case !an.Present || !md.Present || ps.AnalysisStale:
		ps.Next = NextAnalyze
	default:
		ps.Next = NextNone
	}
	return ps
}

// Artifact returns the entry for kind.
func (ps ProjectStatus) Artifact(kind string) (ArtifactInfo, bool) {
	for _, a := range ps.Artifacts {
		if a.Kind == kind {
			return a, true
		}
	}
	return ArtifactInfo{}, false
}

// Recommendation renders the next step as a sentence.
func (ps ProjectStatus) Recommendation() string {
	switch ps.Next {
	case NextScan:
		if ps.GraphError != "" {
			return "Graph file is unreadable. Run 'filegraph scan' to rebuild it."
		}
		return "No graph file yet. Run 'filegraph scan'."
	case NextAnalyze:
		if ps.AnalysisStale {
			return "Analysis is older than the graph. Run 'filegraph analyze'."
		}
		return "Graph is ready. Run 'filegraph analyze'."
	default:
		return "All artifacts are up to date."
	}
}
