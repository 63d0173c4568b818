package mcptools

import (
	"github.com/dusk-indust/filegraph/internal/analysis"
	"github.com/dusk-indust/filegraph/internal/graph"
)

// --- MCP Tool Input/Output Types ---
// The MCP Go SDK derives each tool's JSON schema from these struct tags.

// ScanInput is the input for the scan MCP tool.
type ScanInput struct{}

// ScanOutput is the result of the scan MCP tool.
type ScanOutput struct {
	GraphPath   string      `json:"graphPath"`
	OrphansPath string      `json:"orphansPath"`
	Digest      string      `json:"digest"`
	Stats       graph.Stats `json:"stats"`
}

// AnalyzeInput is the input for the analyze MCP tool.
type AnalyzeInput struct {
	Top int `json:"top,omitempty" jsonschema:"rows per ranking to return (default: 10)"`
}

// RankedFile is one row of a ranking.
type RankedFile struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// AnalyzeOutput is the result of the analyze MCP tool.
type AnalyzeOutput struct {
	AnalysisPath   string              `json:"analysisPath"`
	ReportPath     string              `json:"reportPath"`
	Summary        analysis.Summary    `json:"summary"`
	TopPageRank    []RankedFile        `json:"topPageRank"`
	TopBetweenness []RankedFile        `json:"topBetweenness"`
	TopInDegree    []RankedFile        `json:"topInDegree"`
	Degraded       []analysis.Degraded `json:"degraded"`
}

// OrphansInput is the input for the orphans MCP tool.
type OrphansInput struct {
	Kind string `json:"kind,omitempty" jsonschema:"only return orphans of this kind: isolated or unreachable"`
}

// OrphansOutput is the result of the orphans MCP tool.
type OrphansOutput struct {
	EntryPoints []string       `json:"entryPoints"`
	Orphans     []graph.Orphan `json:"orphans"`
	Total       int            `json:"total"`
	TotalFiles  int            `json:"totalFiles"`
}

// DependenciesInput is the input for the dependencies MCP tool.
type DependenciesInput struct {
	Path      string `json:"path" jsonschema:"project-relative file path"`
	Direction string `json:"direction,omitempty" jsonschema:"downstream (files it references) or upstream (files referencing it). Default: downstream"`
	MaxDepth  int    `json:"maxDepth,omitempty" jsonschema:"maximum traversal depth (default: 10)"`
}

// DependenciesOutput is the result of the dependencies MCP tool.
type DependenciesOutput struct {
	Chains []graph.DependencyChain `json:"chains"`
}

// ImpactInput is the input for the impact MCP tool.
type ImpactInput struct {
	ChangedFiles []string `json:"changedFiles" jsonschema:"project-relative paths of the files that will change"`
}

// ImpactOutput is the result of the impact MCP tool.
type ImpactOutput struct {
	Impact graph.ImpactResult `json:"impact"`
}

// StatusInput is the input for the status MCP tool.
type StatusInput struct{}

// ArtifactOutput describes one output file.
type ArtifactOutput struct {
	Kind    string `json:"kind"`
	Path    string `json:"path"`
	Present bool   `json:"present"`
	Size    int64  `json:"size"`
	ModTime string `json:"modTime,omitempty"`
}

// StatusOutput is the result of the status MCP tool.
type StatusOutput struct {
	Artifacts      []ArtifactOutput `json:"artifacts"`
	AnalysisStale  bool             `json:"analysisStale"`
	Next           string           `json:"next"`
	Recommendation string           `json:"recommendation"`
	GeneratedAt    string           `json:"generatedAt,omitempty"`
}
