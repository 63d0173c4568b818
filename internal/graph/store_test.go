package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedLayers map[string]string

func (f fixedLayers) LayerOf(p string) string { return f[p] }

// storeFixture is a.md -> b.md -> c.md, d.md -> b.md and an isolated e.md.
func storeFixture() *Graph {
	return &Graph{
		Nodes: []string{"a.md", "b.md", "c.md", "d.md", "e.md"},
		Edges: []Edge{
			{Source: "a.md", Target: "b.md", Kind: EdgeKindDocReference, RawRef: "b.md"},
			{Source: "b.md", Target: "c.md", Kind: EdgeKindDocReference, RawRef: "c.md"},
			{Source: "d.md", Target: "b.md", Kind: EdgeKindAtReference, RawRef: "@b.md"},
		},
	}
}

// runStoreSuite exercises the Store contract against a fresh store per test.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	load := func(t *testing.T) Store {
		t.Helper()
		s := newStore(t)
		require.NoError(t, LoadStore(ctx, s, storeFixture(), fixedLayers{"a.md": "root"}))
		return s
	}

	t.Run("stats", func(t *testing.T) {
		s := load(t)
		st, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, st.FileCount)
		assert.Equal(t, 3, st.EdgeCount)
	})

	t.Run("get file", func(t *testing.T) {
		s := load(t)
		f, err := s.GetFile(ctx, "a.md")
		require.NoError(t, err)
		assert.Equal(t, FileNode{Path: "a.md", Layer: "root", Sublayer: "a.md"}, *f)

		_, err = s.GetFile(ctx, "missing.md")
		assert.ErrorIs(t, err, ErrNodeNotFound)
	})

	t.Run("all edges", func(t *testing.T) {
		s := load(t)
		edges, err := s.GetAllEdges(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, storeFixture().Edges, edges)
	})

	t.Run("edge to unknown file", func(t *testing.T) {
		s := load(t)
		err := s.AddEdge(ctx, Edge{Source: "a.md", Target: "nope.md", Kind: EdgeKindReference})
		assert.ErrorIs(t, err, ErrNodeNotFound)
	})

	t.Run("downstream", func(t *testing.T) {
		s := load(t)
		chains, err := s.GetDependencies(ctx, "a.md", DirectionDownstream, 0)
		require.NoError(t, err)
		assert.Equal(t, []DependencyChain{
			{Nodes: []string{"a.md", "b.md"}, Depth: 1},
			{Nodes: []string{"a.md", "b.md", "c.md"}, Depth: 2},
		}, chains)
	})

	t.Run("downstream depth limit", func(t *testing.T) {
		s := load(t)
		chains, err := s.GetDependencies(ctx, "a.md", DirectionDownstream, 1)
		require.NoError(t, err)
		assert.Equal(t, []DependencyChain{{Nodes: []string{"a.md", "b.md"}, Depth: 1}}, chains)
	})

	t.Run("upstream", func(t *testing.T) {
		s := load(t)
		chains, err := s.GetDependencies(ctx, "c.md", DirectionUpstream, 5)
		require.NoError(t, err)
		assert.Equal(t, []DependencyChain{
			{Nodes: []string{"c.md", "b.md"}, Depth: 1},
			{Nodes: []string{"c.md", "b.md", "a.md"}, Depth: 2},
			{Nodes: []string{"c.md", "b.md", "d.md"}, Depth: 2},
		}, chains)
	})

	t.Run("isolated file has no dependencies", func(t *testing.T) {
		s := load(t)
		chains, err := s.GetDependencies(ctx, "e.md", DirectionDownstream, 3)
		require.NoError(t, err)
		assert.Empty(t, chains)
	})

	t.Run("unknown file", func(t *testing.T) {
		s := load(t)
		_, err := s.GetDependencies(ctx, "missing.md", DirectionUpstream, 3)
		assert.ErrorIs(t, err, ErrNodeNotFound)
	})

	t.Run("impact", func(t *testing.T) {
		s := load(t)
		res, err := s.AssessImpact(ctx, []string{"c.md"})
		require.NoError(t, err)
		assert.Equal(t, []string{"b.md"}, res.DirectlyAffected)
		assert.Equal(t, []string{"a.md", "b.md", "d.md"}, res.TransitivelyAffected)
		assert.InDelta(t, 0.6, res.RiskScore, 1e-9)
	})

	t.Run("impact excludes changed files", func(t *testing.T) {
		s := load(t)
		res, err := s.AssessImpact(ctx, []string{"b.md", "c.md"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a.md", "d.md"}, res.DirectlyAffected)
		assert.Equal(t, []string{"a.md", "d.md"}, res.TransitivelyAffected)
	})

	t.Run("impact of unreferenced file", func(t *testing.T) {
		s := load(t)
		res, err := s.AssessImpact(ctx, []string{"e.md"})
		require.NoError(t, err)
		assert.Empty(t, res.TransitivelyAffected)
		assert.Zero(t, res.RiskScore)
	})
}

func TestMemStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		return NewMemStore()
	})
}

func TestMemStore_UnknownDirection(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	require.NoError(t, s.AddFile(ctx, FileNode{Path: "a.md"}))
	_, err := s.GetDependencies(ctx, "a.md", Direction("sideways"), 1)
	assert.Error(t, err)
}

func TestLoadStore_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := LoadStore(ctx, NewMemStore(), storeFixture(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
