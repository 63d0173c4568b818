package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReach_Chain(t *testing.T) {
	g := &Graph{
		Nodes: []string{"a.md", "b.md", "c.md"},
		Edges: []Edge{
			{Source: "a.md", Target: "b.md"},
			{Source: "b.md", Target: "c.md"},
		},
	}

	r := Reach(g, []string{"a.md"})
	assert.Equal(t, []string{"a.md"}, r.EntryPoints)
	assert.Equal(t, []string{"a.md", "b.md", "c.md"}, r.Reachable)
	assert.Empty(t, r.Orphans)
	assert.Equal(t, 0, r.NoIncoming)
	assert.Equal(t, 1, r.NoOutgoing)
}

func TestReach_IsolatedAndUnreachable(t *testing.T) {
	g := &Graph{
		Nodes: []string{"a.md", "b.md", "c.md", "d.md"},
		Edges: []Edge{
			{Source: "a.md", Target: "b.md"},
			{Source: "c.md", Target: "b.md"},
		},
	}

	r := Reach(g, []string{"a.md", "missing.md", "a.md"})
	assert.Equal(t, []string{"a.md"}, r.EntryPoints)
	assert.Equal(t, []string{"a.md", "b.md"}, r.Reachable)
	assert.Equal(t, []Orphan{
		{Path: "c.md", Kind: OrphanUnreachable},
		{Path: "d.md", Kind: OrphanIsolated},
	}, r.Orphans)
	assert.Equal(t, 2, r.NoIncoming)
	assert.Equal(t, 2, r.NoOutgoing)

	var st Stats
	r.Apply(&st)
	assert.Equal(t, 2, st.Reachable)
	assert.Equal(t, 2, st.Orphans)
	assert.Equal(t, 2, st.NoIncoming)
	assert.Equal(t, 2, st.NoOutgoing)
}

func TestReach_NoEntryPoints(t *testing.T) {
	g := &Graph{Nodes: []string{"a.md", "b.md"}, Edges: []Edge{{Source: "a.md", Target: "b.md"}}}

	r := Reach(g, nil)
	assert.Empty(t, r.Reachable)
	assert.Len(t, r.Orphans, 2)
	assert.Equal(t, 1, r.NoIncoming)
}

func TestReach_Cycle(t *testing.T) {
	g := &Graph{
		Nodes: []string{"a.md", "b.md", "c.md"},
		Edges: []Edge{
			{Source: "b.md", Target: "c.md"},
			{Source: "c.md", Target: "b.md"},
		},
	}

	r := Reach(g, []string{"a.md"})
	assert.Equal(t, []string{"a.md"}, r.Reachable)
	assert.Equal(t, []Orphan{
		{Path: "b.md", Kind: OrphanUnreachable},
		{Path: "c.md", Kind: OrphanUnreachable},
	}, r.Orphans)
}
