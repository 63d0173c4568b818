package analysis

import (
	"cmp"
	"maps"
	"slices"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// gonumGraphs converts the arena into gonum directed and undirected graphs
// whose node IDs are arena indices.
func gonumGraphs(g *Graph) (*simple.DirectedGraph, *simple.UndirectedGraph) {
	directed := simple.NewDirectedGraph()
	undirected := simple.NewUndirectedGraph()
	for v := range g.N() {
		directed.AddNode(simple.Node(v))
		undirected.AddNode(simple.Node(v))
	}
	for v := range g.N() {
		for _, w := range g.out[v] {
			directed.SetEdge(simple.Edge{F: simple.Node(v), T: simple.Node(w)})
			if !undirected.HasEdgeBetween(int64(v), int64(w)) {
				undirected.SetEdge(simple.Edge{F: simple.Node(v), T: simple.Node(w)})
			}
		}
	}
	return directed, undirected
}

// Components returns weakly and strongly connected components as sorted
// member lists, largest first, ties broken by first member.
func Components(g *Graph) (wcc, scc [][]string) {
	directed, undirected := gonumGraphs(g)
	return g.memberLists(topo.ConnectedComponents(undirected)), g.memberLists(topo.TarjanSCC(directed))
}

func (g *Graph) memberLists(comps [][]gonum.Node) [][]string {
	out := make([][]string, 0, len(comps))
	for _, c := range comps {
		members := make([]string, 0, len(c))
		for _, n := range c {
			members = append(members, g.names[n.ID()])
		}
		slices.Sort(members)
		out = append(out, members)
	}
	slices.SortFunc(out, func(a, b []string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return cmp.Compare(a[0], b[0])
	})
	return out
}

// Density is m / (n(n-1)) for the directed graph, 0 when n <= 1.
func Density(g *Graph) float64 {
	n := g.N()
	if n <= 1 {
		return 0
	}
	return float64(g.M()) / float64(n*(n-1))
}

// AverageClustering averages the local clustering coefficient over every
// node of the direction-collapsed graph. Nodes with fewer than two
// neighbors contribute 0.
func AverageClustering(g *Graph) float64 {
	n := g.N()
	if n == 0 {
		return 0
	}
	mark := make([]bool, n)
	total := 0.0
	for v := range n {
		nb := g.und[v]
		k := len(nb)
		if k < 2 {
			continue
		}
		for _, u := range nb {
			mark[u] = true
		}
		links := 0
		for _, u := range nb {
			for _, w := range g.und[u] {
				if w > u && mark[w] {
					links++
				}
			}
		}
		for _, u := range nb {
			mark[u] = false
		}
		total += 2 * float64(links) / float64(k*(k-1))
	}
	return total / float64(n)
}

// Isolates returns nodes with no edges, in arena order.
func Isolates(g *Graph) []string {
	var out []string
	for v := range g.N() {
		if len(g.und[v]) == 0 {
			out = append(out, g.names[v])
		}
	}
	return out
}

// Bridges returns every cut edge of the direction-collapsed graph, ordered
// by discovery in a depth-first search that visits roots and neighbors in
// index order. Each bridge is reported as (parent, child) of that search.
func Bridges(g *Graph) [][2]string {
	n := g.N()
	disc := make([]int, n)
	low := make([]int, n)
	for i := range disc {
		disc[i] = -1
	}

	type frame struct {
		v, parent, next int
	}
	var out [][2]string
	timer := 0
	for root := range n {
		if disc[root] >= 0 {
			continue
		}
		disc[root], low[root] = timer, timer
		timer++
		stack := []frame{{v: root, parent: -1}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(g.und[top.v]) {
				w := g.und[top.v][top.next]
				top.next++
				switch {
				case w == top.parent:
				case disc[w] < 0:
					disc[w], low[w] = timer, timer
					timer++
					stack = append(stack, frame{v: w, parent: top.v})
				default:
					low[top.v] = min(low[top.v], disc[w])
				}
				continue
			}
			v, parent := top.v, top.parent
			stack = stack[:len(stack)-1]
			if parent >= 0 {
				low[parent] = min(low[parent], low[v])
				if low[v] > disc[parent] {
					out = append(out, [2]string{g.names[parent], g.names[v]})
				}
			}
		}
	}
	return out
}

// LayerDistribution counts nodes per layer.
func LayerDistribution(g *Graph) map[string]int {
	out := make(map[string]int)
	for _, l := range g.layers {
		out[l]++
	}
	return out
}

// EdgeTypeDistribution counts edges per type label.
func EdgeTypeDistribution(g *Graph) map[string]int {
	return maps.Clone(g.edgeTypes)
}
