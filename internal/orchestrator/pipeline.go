package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dusk-indust/filegraph/internal/analysis"
	"github.com/dusk-indust/filegraph/internal/config"
	"github.com/dusk-indust/filegraph/internal/extract"
	"github.com/dusk-indust/filegraph/internal/graph"
	"github.com/dusk-indust/filegraph/internal/index"
	"github.com/dusk-indust/filegraph/internal/logging"
	"github.com/dusk-indust/filegraph/internal/report"
	"github.com/dusk-indust/filegraph/internal/telemetry"
)

// ScannerName identifies this tool in graph file metadata.
const ScannerName = "filegraph"

var tracer = otel.Tracer("filegraph.orchestrator")

// Pipeline runs the scan and analysis stages for one project. Each entry
// point reads its inputs from disk or the config and writes its artifacts
// before returning; nothing is shared between calls.
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder *telemetry.Recorder
	progress *ProgressReporter
	version  string
	now      func() time.Time
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logging.OrDefault(l) }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r *telemetry.Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithVersion sets the version recorded in graph metadata.
func WithVersion(v string) Option {
	return func(p *Pipeline) { p.version = v }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a Pipeline for cfg.
func NewPipeline(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		logger:   slog.Default(),
		progress: NewProgressReporter(),
		version:  "dev",
		now:      time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Progress returns a channel that emits progress events.
func (p *Pipeline) Progress() <-chan ProgressEvent {
	return p.progress.Subscribe()
}

// Close shuts down the progress reporter.
func (p *Pipeline) Close() {
	p.progress.Close()
}

// Run scans the project and analyzes the resulting graph.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	scan, err := p.Scan(ctx)
	if err != nil {
		return nil, err
	}
	an, err := p.Analyze(ctx)
	if err != nil {
		return nil, err
	}
	return &RunResult{Scan: scan, Analysis: an}, nil
}

// scanState carries the extraction counters between scan stages.
type scanState struct {
	ix         *index.Index
	asm        *graph.Assembler
	raw        int
	unresolved int
	readErrors int
	fallbacks  atomic.Int64
}

// Scan indexes the project, extracts and resolves every reference, and
// writes the graph and orphans files.
func (p *Pipeline) Scan(ctx context.Context) (*ScanResult, error) {
	st := &scanState{asm: graph.NewAssembler()}
	res := &ScanResult{
		GraphPath:   p.cfg.OutputPath(config.GraphFile),
		OrphansPath: p.cfg.OutputPath(config.OrphansFile),
	}

	err := p.stage(ctx, StageIndex, func(ctx context.Context) (string, error) {
		ix, err := index.Build(ctx, p.cfg, p.logger)
		if err != nil {
			return "", err
		}
		st.ix = ix
		p.recorder.FilesIndexed(ix.Len())
		p.logger.Info("index complete", "files", ix.Len(), "ambiguous_basenames", ix.AmbiguousBasenames())
		return strconv.Itoa(ix.Len()) + " files", nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, StageExtract, func(ctx context.Context) (string, error) {
		return p.extract(ctx, st)
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, StageAssemble, func(context.Context) (string, error) {
		g := st.asm.Graph(st.ix.Files(), p.cfg.EntryPoints)
		g.Metadata.Scanner = ScannerName
		g.Metadata.Version = p.version
		g.Metadata.ProjectDir = p.cfg.ProjectDir
		g.Metadata.GeneratedAt = p.now().UTC().Format(time.RFC3339)
		g.Metadata.RunID = uuid.NewString()
		g.Metadata.Digest = graph.Digest(g)

		s := &g.Metadata.Stats
		s.AmbiguousBasenames = st.ix.AmbiguousBasenames()
		s.RawReferences = st.raw
		s.Unresolved = st.unresolved
		s.ReadErrors = st.readErrors
		s.ParseFallbacks = int(st.fallbacks.Load())
		for kind, n := range s.EdgeTypes {
			p.recorder.Edges(string(kind), n)
		}
		res.Graph = g
		p.logger.Info("assemble complete",
			"nodes", len(g.Nodes),
			"edges", len(g.Edges),
			"duplicates_dropped", st.asm.Dropped())
		return fmt.Sprintf("%d nodes, %d edges", len(g.Nodes), len(g.Edges)), nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, StageReach, func(context.Context) (string, error) {
		r := graph.Reach(res.Graph, p.cfg.EntryPoints)
		r.Apply(&res.Graph.Metadata.Stats)
		res.Reachability = r
		p.logger.Info("reach complete",
			"entry_points", len(r.EntryPoints),
			"reachable", len(r.Reachable),
			"orphans", len(r.Orphans))
		return fmt.Sprintf("%d reachable, %d orphans", len(r.Reachable), len(r.Orphans)), nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, StageWrite, func(context.Context) (string, error) {
		if err := report.WriteGraph(res.GraphPath, res.Graph); err != nil {
			return "", err
		}
		if err := report.WriteOrphans(res.OrphansPath, res.Reachability, len(res.Graph.Nodes)); err != nil {
			return "", err
		}
		p.logger.Info("scan written", "graph", res.GraphPath, "orphans", res.OrphansPath)
		return res.GraphPath, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// extract reads files in parallel, then resolves and classifies their
// references sequentially in sorted file order so that the first edge kept
// for a pair does not depend on read timing.
func (p *Pipeline) extract(ctx context.Context, st *scanState) (string, error) {
	opts := extract.OptionsFromConfig(p.cfg)
	opts.OnParseError = func(source string, err error) {
		st.fallbacks.Add(1)
		p.recorder.ParseFallback()
		p.logger.Debug("structured parse failed, using pattern results", "path", source, "err", err)
	}
	if p.cfg.CodeLiterals && !extract.CodeLiteralsAvailable() {
		p.logger.Warn("code literal extraction needs a cgo build, skipping")
	}
	ex := extract.New(opts)
	resolver := graph.NewResolver(st.ix, graph.ResolveOptionsFromConfig(p.cfg))

	files, err := NewFanOut(p.cfg.ProjectDir, ex, p.cfg.Workers, p.logger).Run(ctx, st.ix.Files())
	if err != nil {
		return "", err
	}

	for _, f := range files {
		if f.Err != nil {
			st.readErrors++
			p.recorder.ReadError()
			continue
		}
		for _, ref := range f.Refs {
			st.raw++
			p.recorder.Extracted(string(ref.Channel))
			hit, ok := resolver.Resolve(ref.Ref, f.Source)
			if !ok {
				st.unresolved++
				p.recorder.Unresolved()
				continue
			}
			p.recorder.Resolved(hit.Strategy)
			st.asm.Add(graph.Edge{
				Source: f.Source,
				Target: hit.Target,
				Kind:   graph.ClassifyReference(ref.Raw, f.Source, hit.Target),
				RawRef: ref.Raw,
			})
		}
	}

	p.logger.Info("extract complete",
		"raw_references", st.raw,
		"unresolved", st.unresolved,
		"read_errors", st.readErrors,
		"parse_fallbacks", st.fallbacks.Load())
	return fmt.Sprintf("%d references, %d unresolved", st.raw, st.unresolved), nil
}

// Analyze computes metrics over the graph file written by Scan and writes
// the analysis file and markdown report. A missing graph file is fatal and
// matches report.ErrGraphNotFound.
func (p *Pipeline) Analyze(ctx context.Context) (*AnalyzeResult, error) {
	out := &AnalyzeResult{
		AnalysisPath: p.cfg.OutputPath(config.AnalysisFile),
		ReportPath:   p.cfg.OutputPath(config.ReportFile),
	}
	var (
		g     *graph.Graph
		arena *analysis.Graph
	)

	err := p.stage(ctx, StageLoad, func(context.Context) (string, error) {
		var err error
		g, err = report.ReadGraph(p.cfg.OutputPath(config.GraphFile))
		if err != nil {
			return "", err
		}
		arena = analysis.FromGraph(g, p.cfg)
		return fmt.Sprintf("%d nodes, %d edges", arena.N(), arena.M()), nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, StageMetrics, func(ctx context.Context) (string, error) {
		res, err := analysis.Analyze(ctx, arena, p.cfg.Analysis, p.logger)
		if err != nil {
			return "", err
		}
		for _, d := range res.Degraded {
			p.recorder.MetricFailed(d.Metric)
		}
		out.Result = res
		if len(res.Degraded) > 0 {
			return fmt.Sprintf("%d degraded", len(res.Degraded)), nil
		}
		return "", nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, StageReport, func(context.Context) (string, error) {
		if err := report.WriteAnalysis(out.AnalysisPath, out.Result); err != nil {
			return "", err
		}
		scanner := g.Metadata.Scanner
		if g.Metadata.Version != "" {
			scanner += " " + g.Metadata.Version
		}
		md := report.MarkdownOptions{
			Generated: p.now(),
			Scanner:   scanner,
			TopN:      p.cfg.Analysis.ReportTopN,
		}
		if err := report.WriteMarkdown(out.ReportPath, out.Result, md); err != nil {
			return "", err
		}
		p.logger.Info("analysis written", "analysis", out.AnalysisPath, "report", out.ReportPath)
		return out.AnalysisPath, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// stage runs fn inside a span, times it and reports progress. The string fn
// returns becomes the completion message.
func (p *Pipeline) stage(ctx context.Context, s Stage, fn func(context.Context) (string, error)) error {
	p.progress.Emit(ProgressEvent{Stage: s, Section: s.String(), Status: ProgressWorking})
	ctx, span := tracer.Start(ctx, "filegraph."+s.Phase()+"."+s.String(),
		trace.WithAttributes(
			attribute.String("filegraph.project_dir", p.cfg.ProjectDir),
			attribute.Int("filegraph.stage", int(s)),
		))
	defer span.End()

	start := time.Now()
	msg, err := fn(ctx)
	elapsed := time.Since(start)
	p.recorder.ObserveStage(s.String(), elapsed)
	span.SetAttributes(attribute.Int64("duration_ms", elapsed.Milliseconds()))

	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.progress.Emit(ProgressEvent{Stage: s, Section: s.String(), Status: ProgressFailed, Message: err.Error()})
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%s: %w", s, err)
	}
	p.progress.Emit(ProgressEvent{Stage: s, Section: s.String(), Status: ProgressComplete, Message: msg})
	return nil
}
