package graph

import "slices"

// Orphan is a node no entry point reaches.
type Orphan struct {
	Path string     `json:"path"`
	Kind OrphanKind `json:"kind"`
}

// Reachability partitions the node set by BFS from the entry points.
type Reachability struct {
	EntryPoints []string `json:"entryPoints"` // entry points present in the graph, in configured order
	Reachable   []string `json:"reachable"`   // sorted
	Orphans     []Orphan `json:"orphans"`     // sorted by path
	NoIncoming  int      `json:"noIncoming"`  // in-degree 0, excluding entry points
	NoOutgoing  int      `json:"noOutgoing"`  // out-degree 0
}

// Reach runs a breadth-first traversal along edge direction from every
// entry point present in g.
func Reach(g *Graph, entryPoints []string) *Reachability {
	nodes := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes[n] = true
	}
	adj := make(map[string][]string)
	inDeg := make(map[string]int)
	outDeg := make(map[string]int)
	for _, e := range g.Edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
		outDeg[e.Source]++
		inDeg[e.Target]++
	}

	r := &Reachability{}
	visited := make(map[string]bool)
	var queue []string
	isEntry := make(map[string]bool, len(entryPoints))
	for _, ep := range entryPoints {
		isEntry[ep] = true
		if !nodes[ep] || visited[ep] {
			continue
		}
		r.EntryPoints = append(r.EntryPoints, ep)
		visited[ep] = true
		queue = append(queue, ep)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range adj[cur] {
			if !visited[nb] {
				visited[nb] = true
				queue = append(queue, nb)
			}
		}
	}

	for _, n := range g.Nodes {
		switch {
		case visited[n]:
			r.Reachable = append(r.Reachable, n)
		case inDeg[n] == 0 && outDeg[n] == 0:
			r.Orphans = append(r.Orphans, Orphan{Path: n, Kind: OrphanIsolated})
		default:
			r.Orphans = append(r.Orphans, Orphan{Path: n, Kind: OrphanUnreachable})
		}
		if inDeg[n] == 0 && !isEntry[n] {
			r.NoIncoming++
		}
		if outDeg[n] == 0 {
			r.NoOutgoing++
		}
	}
	slices.Sort(r.Reachable)
	slices.SortFunc(r.Orphans, func(a, b Orphan) int {
		switch {
		case a.Path < b.Path:
			return -1
		case a.Path > b.Path:
			return 1
		}
		return 0
	})
	return r
}

// Apply copies the reachability counts into the graph stats.
func (r *Reachability) Apply(s *Stats) {
	s.Reachable = len(r.Reachable)
	s.Orphans = len(r.Orphans)
	s.NoIncoming = r.NoIncoming
	s.NoOutgoing = r.NoOutgoing
}
