package mcptools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/filegraph/internal/analysis"
	"github.com/dusk-indust/filegraph/internal/config"
	"github.com/dusk-indust/filegraph/internal/graph"
	"github.com/dusk-indust/filegraph/internal/logging"
	"github.com/dusk-indust/filegraph/internal/orchestrator"
	"github.com/dusk-indust/filegraph/internal/report"
	"github.com/dusk-indust/filegraph/internal/status"
)

// StoreFactory opens an empty graph store.
type StoreFactory func() (graph.Store, error)

// Service handles MCP tool calls for one project.
type Service struct {
	cfg      *config.Config
	logger   *slog.Logger
	version  string
	newStore StoreFactory
}

// NewService creates a Service. A nil newStore selects the in-memory store.
func NewService(cfg *config.Config, logger *slog.Logger, newStore StoreFactory) *Service {
	if newStore == nil {
		newStore = func() (graph.Store, error) { return graph.NewMemStore(), nil }
	}
	return &Service{cfg: cfg, logger: logging.OrDefault(logger), version: version, newStore: newStore}
}

func (s *Service) pipeline() *orchestrator.Pipeline {
	return orchestrator.NewPipeline(s.cfg, orchestrator.WithLogger(s.logger), orchestrator.WithVersion(s.version))
}

// Scan rebuilds the graph and orphans files.
func (s *Service) Scan(ctx context.Context, _ *mcp.CallToolRequest, _ ScanInput) (*mcp.CallToolResult, ScanOutput, error) {
	p := s.pipeline()
	defer p.Close()

	res, err := p.Scan(ctx)
	if err != nil {
		return nil, ScanOutput{}, err
	}
	return nil, ScanOutput{
		GraphPath:   res.GraphPath,
		OrphansPath: res.OrphansPath,
		Digest:      res.Graph.Metadata.Digest,
		Stats:       res.Graph.Metadata.Stats,
	}, nil
}

// Analyze computes metrics over the current graph file.
func (s *Service) Analyze(ctx context.Context, _ *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, AnalyzeOutput, error) {
	top := input.Top
	if top <= 0 {
		top = 10
	}
	p := s.pipeline()
	defer p.Close()

	res, err := p.Analyze(ctx)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}
	r := res.Result
	return nil, AnalyzeOutput{
		AnalysisPath:   res.AnalysisPath,
		ReportPath:     res.ReportPath,
		Summary:        r.Summary,
		TopPageRank:    ranked(r.TopPageRank, top),
		TopBetweenness: ranked(r.TopBetweenness, top),
		TopInDegree:    ranked(r.TopInDegree, top),
		Degraded:       r.Degraded,
	}, nil
}

func ranked(scores []analysis.Score, n int) []RankedFile {
	scores = analysis.Head(scores, n)
	out := make([]RankedFile, len(scores))
	for i, sc := range scores {
		out[i] = RankedFile{Path: sc.Node, Score: sc.Value}
	}
	return out
}

// Orphans lists files no entry point reaches in the current graph file.
func (s *Service) Orphans(_ context.Context, _ *mcp.CallToolRequest, input OrphansInput) (*mcp.CallToolResult, OrphansOutput, error) {
	kind := graph.OrphanKind(input.Kind)
	if kind != "" && kind != graph.OrphanIsolated && kind != graph.OrphanUnreachable {
		return nil, OrphansOutput{}, fmt.Errorf("kind must be %q or %q, got %q", graph.OrphanIsolated, graph.OrphanUnreachable, input.Kind)
	}
	g, err := report.ReadGraph(s.cfg.OutputPath(config.GraphFile))
	if err != nil {
		return nil, OrphansOutput{}, err
	}

	r := graph.Reach(g, s.cfg.EntryPoints)
	out := OrphansOutput{
		EntryPoints: append([]string{}, r.EntryPoints...),
		Orphans:     []graph.Orphan{},
		Total:       len(r.Orphans),
		TotalFiles:  len(g.Nodes),
	}
	for _, o := range r.Orphans {
		if kind == "" || o.Kind == kind {
			out.Orphans = append(out.Orphans, o)
		}
	}
	return nil, out, nil
}

// Dependencies walks reference chains from a file.
func (s *Service) Dependencies(ctx context.Context, _ *mcp.CallToolRequest, input DependenciesInput) (*mcp.CallToolResult, DependenciesOutput, error) {
	if input.Path == "" {
		return nil, DependenciesOutput{}, fmt.Errorf("path is required")
	}
	dir := graph.DirectionDownstream
	if input.Direction != "" {
		dir = graph.Direction(input.Direction)
	}

	store, err := s.loadStore(ctx)
	if err != nil {
		return nil, DependenciesOutput{}, err
	}
	defer store.Close()

	chains, err := store.GetDependencies(ctx, input.Path, dir, input.MaxDepth)
	if err != nil {
		return nil, DependenciesOutput{}, err
	}
	if chains == nil {
		chains = []graph.DependencyChain{}
	}
	return nil, DependenciesOutput{Chains: chains}, nil
}

// Impact computes the referrer closure of a set of changed files.
func (s *Service) Impact(ctx context.Context, _ *mcp.CallToolRequest, input ImpactInput) (*mcp.CallToolResult, ImpactOutput, error) {
	if len(input.ChangedFiles) == 0 {
		return nil, ImpactOutput{}, fmt.Errorf("changedFiles is required")
	}
	store, err := s.loadStore(ctx)
	if err != nil {
		return nil, ImpactOutput{}, err
	}
	defer store.Close()

	impact, err := store.AssessImpact(ctx, input.ChangedFiles)
	if err != nil {
		return nil, ImpactOutput{}, err
	}
	return nil, ImpactOutput{Impact: *impact}, nil
}

// Status reports the artifact inventory and the next step.
func (s *Service) Status(_ context.Context, _ *mcp.CallToolRequest, _ StatusInput) (*mcp.CallToolResult, StatusOutput, error) {
	ps := status.Inspect(s.cfg)
	out := StatusOutput{
		AnalysisStale:  ps.AnalysisStale,
		Next:           ps.Next,
		Recommendation: ps.Recommendation(),
		GeneratedAt:    ps.GeneratedAt,
	}
	for _, a := range ps.Artifacts {
		ao := ArtifactOutput{Kind: a.Kind, Path: a.Path, Present: a.Present, Size: a.Size}
		if a.Present {
			ao.ModTime = a.ModTime.UTC().Format(time.RFC3339)
		}
		out.Artifacts = append(out.Artifacts, ao)
	}
	return nil, out, nil
}

// loadStore reads the graph file into a fresh store.
func (s *Service) loadStore(ctx context.Context) (graph.Store, error) {
	g, err := report.ReadGraph(s.cfg.OutputPath(config.GraphFile))
	if err != nil {
		return nil, err
	}
	store, err := s.newStore()
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := graph.LoadStore(ctx, store, g, s.cfg); err != nil {
		store.Close()
		return nil, fmt.Errorf("load store: %w", err)
	}
	return store, nil
}
