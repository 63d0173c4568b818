package graph

import (
	"encoding/hex"
	"slices"
	"strings"

	"github.com/zeebo/xxh3"
)

// Assembler collects the edge stream of a scan. The first edge seen for a
// (source, target) pair is kept; later duplicates are dropped. Feed edges in
// sorted source order for a deterministic result.
type Assembler struct {
	seen    map[[2]string]struct{}
	edges   []Edge
	dropped int
}

// NewAssembler creates an empty Assembler.
func NewAssembler() *Assembler {
	return &Assembler{seen: make(map[[2]string]struct{})}
}

// Add records e unless its pair was already seen. Self edges are rejected.
func (a *Assembler) Add(e Edge) bool {
	if e.Source == e.Target {
		a.dropped++
		return false
	}
	key := [2]string{e.Source, e.Target}
	if _, ok := a.seen[key]; ok {
		a.dropped++
		return false
	}
	a.seen[key] = struct{}{}
	a.edges = append(a.edges, e)
	return true
}

// Dropped returns the number of rejected duplicate or self edges.
func (a *Assembler) Dropped() int { return a.dropped }

// Graph packages nodes and the kept edges. Nodes are sorted; edges are
// ordered by source, keeping discovery order within a source. Only the
// counts derivable from nodes and edges are filled in.
func (a *Assembler) Graph(nodes []string, entryPoints []string) *Graph {
	sorted := slices.Clone(nodes)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	edges := slices.Clone(a.edges)
	slices.SortStableFunc(edges, func(x, y Edge) int {
		return strings.Compare(x.Source, y.Source)
	})

	present := make(map[string]bool, len(sorted))
	for _, n := range sorted {
		present[n] = true
	}
	var found []string
	for _, ep := range entryPoints {
		if present[ep] {
			found = append(found, ep)
		}
	}

	types := make(map[EdgeKind]int)
	for _, e := range edges {
		types[e.Kind]++
	}

	return &Graph{
		Metadata: Metadata{
			Stats: Stats{
				TotalFiles:       len(sorted),
				TotalEdges:       len(edges),
				EntryPointsFound: len(found),
				EdgeTypes:        types,
			},
			EntryPoints: found,
		},
		Nodes: sorted,
		Edges: edges,
	}
}

// Digest hashes the node and edge lists. Two graphs with the same digest
// have identical nodes and edges regardless of run metadata.
func Digest(g *Graph) string {
	h := xxh3.New()
	for _, n := range g.Nodes {
		h.Write([]byte(n + "\n"))
	}
	for _, e := range g.Edges {
		h.Write([]byte(e.Source + "\x00" + e.Target + "\x00" + string(e.Kind) + "\x00" + e.RawRef + "\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}
