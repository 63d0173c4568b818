package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/network"

	"github.com/dusk-indust/filegraph/internal/config"
	"github.com/dusk-indust/filegraph/internal/graph"
	"github.com/dusk-indust/filegraph/internal/logging"
)

type prefixLayers struct{}

func (prefixLayers) LayerOf(p string) string {
	if p == "a" || p == "b" {
		return "front"
	}
	return "back"
}

// build creates an arena from "src->dst" edge strings over the given nodes.
func build(t *testing.T, nodes []string, edges ...string) *Graph {
	t.Helper()
	g := &graph.Graph{Nodes: nodes}
	for _, e := range edges {
		src, dst, ok := strings.Cut(e, " -> ")
		require.True(t, ok, e)
		g.Edges = append(g.Edges, graph.Edge{Source: src, Target: dst, Kind: graph.EdgeKindDocReference})
	}
	return FromGraph(g, prefixLayers{})
}

func scoresOf(g *Graph, values []float64) map[string]float64 {
	out := make(map[string]float64, len(values))
	for i, v := range values {
		out[g.Name(i)] = v
	}
	return out
}

func defaults() config.AnalysisConfig {
	return config.Default("/tmp/project").Analysis
}

func TestFromGraph(t *testing.T) {
	g := FromGraph(&graph.Graph{
		Nodes: []string{"a", "b", "c"},
		Edges: []graph.Edge{
			{Source: "a", Target: "b", Kind: graph.EdgeKindDocReference},
			{Source: "a", Target: "b", Kind: graph.EdgeKindAtReference},
			{Source: "b", Target: "b", Kind: graph.EdgeKindDocReference},
			{Source: "b", Target: "x", Kind: graph.EdgeKindReference},
		},
	}, prefixLayers{})

	assert.Equal(t, 4, g.N())
	assert.Equal(t, 2, g.M())
	assert.Equal(t, "x", g.Name(3))
	assert.Equal(t, map[string]int{"front": 2, "back": 1, UnknownLayer: 1}, LayerDistribution(g))
	assert.Equal(t, map[string]int{"doc_reference": 1, "reference": 1}, EdgeTypeDistribution(g))

	b, ok := g.Index("b")
	require.True(t, ok)
	assert.Equal(t, []int{0}, g.Predecessors(b))
	assert.Equal(t, []int{3}, g.Successors(b))
}

func TestDegrees_SumToEdgeCount(t *testing.T) {
	g := build(t, []string{"a", "b", "c", "d"}, "a -> b", "a -> c", "b -> c", "c -> a")
	in, out := Degrees(g)

	sumIn, sumOut := 0.0, 0.0
	for i := range in {
		sumIn += in[i]
		sumOut += out[i]
	}
	assert.Equal(t, float64(g.M()), sumIn)
	assert.Equal(t, float64(g.M()), sumOut)

	cent := scoresOf(g, DegreeCentrality(g, out))
	assert.InDelta(t, 2.0/3.0, cent["a"], 1e-12)
	assert.Zero(t, cent["d"])
}

func TestPageRank(t *testing.T) {
	t.Run("cycle is uniform", func(t *testing.T) {
		g := build(t, []string{"a", "b", "c"}, "a -> b", "b -> c", "c -> a")
		pr, err := PageRank(g, 0.85, 200, 1e-6)
		require.NoError(t, err)
		for _, v := range pr {
			assert.InDelta(t, 1.0/3.0, v, 1e-9)
		}
	})

	t.Run("chain with dangling sink", func(t *testing.T) {
		g := build(t, []string{"a", "b", "c"}, "a -> b", "b -> c")
		pr, err := PageRank(g, 0.85, 200, 1e-6)
		require.NoError(t, err)

		sum := 0.0
		for _, v := range pr {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-6)
		s := scoresOf(g, pr)
		assert.Greater(t, s["c"], s["b"])
		assert.Greater(t, s["b"], s["a"])
	})

	t.Run("iteration cap", func(t *testing.T) {
		g := build(t, []string{"a", "b", "c"}, "a -> b", "b -> c")
		_, err := PageRank(g, 0.85, 1, 1e-12)
		assert.ErrorIs(t, err, ErrNotConverged)
	})

	t.Run("empty graph", func(t *testing.T) {
		pr, err := PageRank(build(t, nil), 0.85, 200, 1e-6)
		require.NoError(t, err)
		assert.Empty(t, pr)
	})
}

func TestHITS(t *testing.T) {
	t.Run("star", func(t *testing.T) {
		g := build(t, []string{"h", "a", "b", "c"}, "h -> a", "h -> b", "h -> c")
		hubs, auths, err := HITS(g, 200, 1e-8)
		require.NoError(t, err)

		assert.Equal(t, map[string]float64{"h": 1, "a": 0, "b": 0, "c": 0}, scoresOf(g, hubs))
		a := scoresOf(g, auths)
		assert.Zero(t, a["h"])
		for _, n := range []string{"a", "b", "c"} {
			assert.InDelta(t, 1.0/3.0, a[n], 1e-12)
		}
	})

	t.Run("no edges", func(t *testing.T) {
		_, _, err := HITS(build(t, []string{"a", "b"}), 200, 1e-8)
		assert.ErrorIs(t, err, ErrDegenerate)
	})
}

func TestBetweenness_Chain(t *testing.T) {
	g := build(t, []string{"a", "b", "c"}, "a -> b", "b -> c")
	cb, err := Betweenness(context.Background(), g, BetweennessOptions{ExactLimit: 200, Samples: 100})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"a": 0, "b": 0.5, "c": 0}, scoresOf(g, cb))
}

func TestBetweenness_MatchesGonum(t *testing.T) {
	nodes := []string{"n0", "n1", "n2", "n3", "n4", "n5", "n6", "n7"}
	g := build(t, nodes,
		"n0 -> n1", "n0 -> n2", "n1 -> n3", "n2 -> n3", "n3 -> n4",
		"n4 -> n5", "n4 -> n6", "n5 -> n7", "n6 -> n7", "n7 -> n0", "n2 -> n5")

	cb, err := Betweenness(context.Background(), g, BetweennessOptions{ExactLimit: 200, Samples: 100})
	require.NoError(t, err)

	directed, _ := gonumGraphs(g)
	oracle := network.Betweenness(directed)
	n := float64(g.N())
	for i := range g.N() {
		want := oracle[int64(i)] / ((n - 1) * (n - 2))
		assert.InDelta(t, want, cb[i], 1e-9, g.Name(i))
	}
}

func TestBetweenness_SampledIsDeterministic(t *testing.T) {
	nodes := make([]string, 300)
	var edges []string
	for i := range nodes {
		nodes[i] = fmt.Sprintf("f%03d", i)
		if i > 0 {
			edges = append(edges, nodes[i-1]+" -> "+nodes[i])
		}
	}
	g := build(t, nodes, edges...)
	opts := BetweennessOptions{ExactLimit: 200, Samples: 100, Seed: 42}

	first, err := Betweenness(context.Background(), g, opts)
	require.NoError(t, err)
	second, err := Betweenness(context.Background(), g, opts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	for _, v := range first {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestBetweenness_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Betweenness(ctx, build(t, []string{"a", "b"}, "a -> b"), BetweennessOptions{ExactLimit: 200})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComponents(t *testing.T) {
	g := build(t, []string{"a", "b", "c", "d", "e", "f"}, "a -> b", "b -> a", "b -> c", "e -> f")
	wcc, scc := Components(g)

	assert.Equal(t, [][]string{{"a", "b", "c"}, {"e", "f"}, {"d"}}, wcc)
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}, {"d"}, {"e"}, {"f"}}, scc)
	assert.InDelta(t, 4.0/30.0, Density(g), 1e-12)
	assert.Equal(t, []string{"d"}, Isolates(g))
}

func TestClusteringAndBridges(t *testing.T) {
	g := build(t, []string{"a", "b", "c", "d", "e", "f"}, "a -> b", "b -> c", "a -> c", "d -> a", "e -> f")

	// a: 1/3, b: 1, c: 1, d, e, f: 0.
	assert.InDelta(t, (1.0/3.0+2)/6.0, AverageClustering(g), 1e-12)
	assert.Equal(t, [][2]string{{"a", "d"}, {"e", "f"}}, Bridges(g))
}

func TestAverageClustering_Empty(t *testing.T) {
	assert.Zero(t, AverageClustering(build(t, nil)))
	assert.Zero(t, Density(build(t, []string{"a"})))
}

func TestTop_TiesByPath(t *testing.T) {
	g := build(t, []string{"c", "a", "b"})
	top := Top(g, []float64{1, 1, 2}, 2)
	assert.Equal(t, []Score{{Node: "b", Value: 2}, {Node: "a", Value: 1}}, top)
}

func TestScore_JSON(t *testing.T) {
	data, err := json.Marshal([]Score{{Node: "a.md", Value: 0.5}, {Node: "b.md", Value: 3}})
	require.NoError(t, err)
	assert.JSONEq(t, `[["a.md",0.5],["b.md",3]]`, string(data))

	var back []Score
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "b.md", back[1].Node)
	assert.Equal(t, 3.0, back[1].Value)

	var bad Score
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &bad))
}

func TestAnalyze(t *testing.T) {
	g := build(t, []string{"a", "b", "c", "d"}, "a -> b", "b -> c", "c -> a", "c -> d")
	res, err := Analyze(context.Background(), g, defaults(), logging.Discard())
	require.NoError(t, err)

	assert.Empty(t, res.Degraded)
	assert.Equal(t, 4, res.Summary.Nodes)
	assert.Equal(t, 4, res.Summary.Edges)
	assert.Equal(t, 1, res.Summary.WeaklyConnectedComponents)
	assert.Equal(t, 2, res.Summary.StronglyConnectedComponents)
	assert.Equal(t, 1, res.Summary.NontrivialSCCCount)
	assert.Equal(t, map[string][]string{"scc_0": {"a", "b", "c"}}, res.SCCNontrivial)
	assert.Equal(t, 1, res.Summary.BridgesCount)
	assert.Equal(t, [][2]string{{"c", "d"}}, res.BridgesSample)
	assert.Len(t, res.TopPageRank, 4)
	assert.Len(t, res.TopHubs, 4)
	assert.Equal(t, "c", res.TopOutDegree[0].Node)

	sum := 0.0
	for _, s := range res.TopPageRank {
		sum += s.Value
	}
	assert.InDelta(t, 1.0, sum, 1e-6)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"top_pagerank":[[`)
	assert.NotContains(t, string(data), "null")
}

func TestAnalyze_DegradesIndividualMetrics(t *testing.T) {
	t.Run("no edges", func(t *testing.T) {
		res, err := Analyze(context.Background(), build(t, []string{"a", "b"}), defaults(), logging.Discard())
		require.NoError(t, err)

		require.Len(t, res.Degraded, 1)
		assert.Equal(t, MetricHITS, res.Degraded[0].Metric)
		assert.Empty(t, res.TopHubs)
		assert.Len(t, res.TopPageRank, 2)
		assert.Equal(t, []string{"a", "b"}, res.IsolatedNodes)
	})

	t.Run("iteration cap", func(t *testing.T) {
		opts := defaults()
		opts.MaxIterations = 1
		opts.PageRankTolerance = 1e-12
		g := build(t, []string{"a", "b", "c"}, "a -> b", "b -> c")

		res, err := Analyze(context.Background(), g, opts, logging.Discard())
		require.NoError(t, err)

		var names []string
		for _, d := range res.Degraded {
			names = append(names, d.Metric)
		}
		assert.Equal(t, []string{MetricHITS, MetricPageRank}, names)
		assert.Empty(t, res.TopPageRank)
		assert.NotEmpty(t, res.TopBetweenness)
	})
}

func TestAnalyze_Deterministic(t *testing.T) {
	g := build(t, []string{"a", "b", "c", "d", "e"}, "a -> b", "b -> c", "c -> a", "d -> e", "a -> d")
	first, err := Analyze(context.Background(), g, defaults(), logging.Discard())
	require.NoError(t, err)
	second, err := Analyze(context.Background(), g, defaults(), logging.Discard())
	require.NoError(t, err)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	assert.Equal(t, string(a), string(b))
}

func TestAnalyze_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Analyze(ctx, build(t, []string{"a", "b"}, "a -> b"), defaults(), logging.Discard())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunMetric_RecoversPanic(t *testing.T) {
	err := runMetric(context.Background(), "boom", func(context.Context) error {
		var m map[string]int
		m["x"] = 1
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")

	sentinel := errors.New("failed")
	err = runMetric(context.Background(), "plain", func(context.Context) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
}
