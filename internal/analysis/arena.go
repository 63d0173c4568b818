// Package analysis computes centrality and structural metrics over an
// assembled reference graph. Algorithms run over an integer-indexed arena;
// paths only reappear when results are tabulated.
package analysis

import (
	"slices"

	"github.com/dusk-indust/filegraph/internal/graph"
)

// UnknownLayer labels nodes that only appear as edge endpoints.
const UnknownLayer = "unknown"

// Graph is an immutable directed graph with int node indices. Node order is
// the order of the graph file's node list, followed by any endpoint-only
// nodes in edge order.
type Graph struct {
	names     []string
	index     map[string]int
	layers    []string
	out       [][]int
	in        [][]int
	und       [][]int // direction-collapsed neighbors, ascending
	edgeTypes map[string]int
	m         int
}

// FromGraph builds the arena from a graph file. Self-loops and repeated
// (source, target) pairs are dropped. A nil Layerer leaves every listed node
// in the unknown layer.
func FromGraph(g *graph.Graph, layers graph.Layerer) *Graph {
	a := &Graph{
		index:     make(map[string]int, len(g.Nodes)),
		edgeTypes: make(map[string]int),
	}
	for _, p := range g.Nodes {
		layer := UnknownLayer
		if layers != nil {
			layer = layers.LayerOf(p)
		}
		a.add(p, layer)
	}

	seen := make(map[[2]int]struct{}, len(g.Edges))
	for _, e := range g.Edges {
		s := a.add(e.Source, UnknownLayer)
		t := a.add(e.Target, UnknownLayer)
		if s == t {
			continue
		}
		key := [2]int{s, t}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		a.out[s] = append(a.out[s], t)
		a.in[t] = append(a.in[t], s)
		kind := string(e.Kind)
		if kind == "" {
			kind = UnknownLayer
		}
		a.edgeTypes[kind]++
		a.m++
	}

	a.und = make([][]int, len(a.names))
	for v := range a.names {
		nb := slices.Concat(a.out[v], a.in[v])
		slices.Sort(nb)
		a.und[v] = slices.Compact(nb)
	}
	return a
}

// add returns the index of p, appending it when new.
func (a *Graph) add(p, layer string) int {
	if i, ok := a.index[p]; ok {
		return i
	}
	i := len(a.names)
	a.index[p] = i
	a.names = append(a.names, p)
	a.layers = append(a.layers, layer)
	a.out = append(a.out, nil)
	a.in = append(a.in, nil)
	return i
}

// N returns the node count.
func (a *Graph) N() int { return len(a.names) }

// M returns the directed edge count.
func (a *Graph) M() int { return a.m }

// Name returns the path of node i.
func (a *Graph) Name(i int) string { return a.names[i] }

// Index returns the node index of p.
func (a *Graph) Index(p string) (int, bool) {
	i, ok := a.index[p]
	return i, ok
}

// Successors returns the targets of node i's outgoing edges.
func (a *Graph) Successors(i int) []int { return a.out[i] }

// Predecessors returns the sources of node i's incoming edges.
func (a *Graph) Predecessors(i int) []int { return a.in[i] }
