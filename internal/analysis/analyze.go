package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/filegraph/internal/config"
	"github.com/dusk-indust/filegraph/internal/logging"
)

var tracer = otel.Tracer("filegraph.analysis")

// Metric names, as recorded in degraded entries and span names.
const (
	MetricDegree      = "degree"
	MetricPageRank    = "pagerank"
	MetricBetweenness = "betweenness"
	MetricHITS        = "hits"
	MetricComponents  = "components"
	MetricClustering  = "clustering"
	MetricBridges     = "bridges"
)

// Analyze computes every metric over g. Metrics run concurrently and share
// nothing but the read-only arena; a metric that fails or panics is listed
// in Result.Degraded and leaves its tables empty. Only cancellation of ctx
// is returned as an error.
func Analyze(ctx context.Context, g *Graph, opts config.AnalysisConfig, logger *slog.Logger) (*Result, error) {
	logger = logging.OrDefault(logger)
	ctx, span := tracer.Start(ctx, "filegraph.analysis")
	defer span.End()
	span.SetAttributes(attribute.Int("node_count", g.N()), attribute.Int("edge_count", g.M()))

	res := newResult()
	res.Summary.Nodes = g.N()
	res.Summary.Edges = g.M()
	res.Summary.Density = Density(g)
	res.LayerDistribution = LayerDistribution(g)
	res.EdgeTypeDistribution = EdgeTypeDistribution(g)
	if iso := Isolates(g); iso != nil {
		res.IsolatedNodes = iso
	}
	res.Summary.IsolatedCount = len(res.IsolatedNodes)

	topN := opts.TopN
	metrics := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{MetricDegree, func(context.Context) error {
			in, out := Degrees(g)
			res.TopInDegree = Top(g, in, topN)
			res.TopOutDegree = Top(g, out, topN)
			res.TopInCentrality = Top(g, DegreeCentrality(g, in), topN)
			res.TopOutCentrality = Top(g, DegreeCentrality(g, out), topN)
			return nil
		}},
		{MetricPageRank, func(context.Context) error {
			pr, err := PageRank(g, opts.Damping, opts.MaxIterations, opts.PageRankTolerance)
			if err != nil {
				return err
			}
			res.TopPageRank = Top(g, pr, topN)
			return nil
		}},
		{MetricBetweenness, func(ctx context.Context) error {
			cb, err := Betweenness(ctx, g, BetweennessOptions{
				ExactLimit: opts.ExactBetweennessLimit,
				Samples:    opts.BetweennessSamples,
				Seed:       opts.SampleSeed,
			})
			if err != nil {
				return err
			}
			res.TopBetweenness = Top(g, cb, topN)
			return nil
		}},
		{MetricHITS, func(context.Context) error {
			hubs, auths, err := HITS(g, opts.MaxIterations, opts.HITSTolerance)
			if err != nil {
				return err
			}
			res.TopHubs = Top(g, hubs, topN)
			res.TopAuthorities = Top(g, auths, topN)
			return nil
		}},
		{MetricComponents, func(context.Context) error {
			wcc, scc := Components(g)
			wccSizes, sccSizes := make([]int, 0, len(wcc)), make([]int, 0, len(scc))
			wccMembers, nontrivial := make(map[string][]string), make(map[string][]string)
			for i, c := range wcc {
				wccSizes = append(wccSizes, len(c))
				wccMembers[fmt.Sprintf("wcc_%d", i)] = c
			}
			for i, c := range scc {
				sccSizes = append(sccSizes, len(c))
				if len(c) > 1 {
					nontrivial[fmt.Sprintf("scc_%d", i)] = c
				}
			}
			res.WCCSizes, res.WCCMembers = wccSizes, wccMembers
			res.SCCSizes, res.SCCNontrivial = sccSizes, nontrivial
			res.Summary.WeaklyConnectedComponents = len(wcc)
			res.Summary.StronglyConnectedComponents = len(scc)
			res.Summary.NontrivialSCCCount = len(res.SCCNontrivial)
			return nil
		}},
		{MetricClustering, func(context.Context) error {
			res.Summary.AvgClustering = AverageClustering(g)
			return nil
		}},
		{MetricBridges, func(context.Context) error {
			all := Bridges(g)
			res.Summary.BridgesCount = len(all)
			if all != nil {
				res.Bridges = Head(all, opts.BridgeLimit)
				res.BridgesSample = Head(res.Bridges, opts.BridgeSample)
			}
			return nil
		}},
	}

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	for _, m := range metrics {
		eg.Go(func() error {
			err := runMetric(egCtx, m.name, m.fn)
			if err == nil {
				return nil
			}
			if egCtx.Err() != nil {
				return egCtx.Err()
			}
			logger.Warn("metric degraded", "metric", m.name, "reason", err.Error())
			mu.Lock()
			res.Degraded = append(res.Degraded, Degraded{Metric: m.name, Reason: err.Error()})
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(res.Degraded, func(a, b Degraded) int {
		switch {
		case a.Metric < b.Metric:
			return -1
		case a.Metric > b.Metric:
			return 1
		}
		return 0
	})
	logger.Info("analysis complete",
		"nodes", res.Summary.Nodes,
		"edges", res.Summary.Edges,
		"degraded", len(res.Degraded))
	return res, nil
}

// runMetric runs fn in its own span and converts a panic into an error.
func runMetric(ctx context.Context, name string, fn func(context.Context) error) (err error) {
	ctx, span := tracer.Start(ctx, "filegraph.analysis."+name)
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()
	return fn(ctx)
}
