package graph

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/dusk-indust/filegraph/internal/config"
)

// DefaultMaxDepth bounds dependency walks when the caller passes no depth.
const DefaultMaxDepth = 10

// neighborFunc returns the files one hop away from a path.
type neighborFunc func(path string) ([]string, error)

// walkChains runs a breadth-first walk from start. Each newly reached file
// yields the chain that first reached it. Neighbors are visited in sorted
// order so the result does not depend on storage order.
func walkChains(start string, maxDepth int, next neighborFunc) ([]DependencyChain, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	visited := map[string]bool{start: true}
	queue := [][]string{{start}}
	var chains []DependencyChain

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var nextQueue [][]string
		for _, chain := range queue {
			nbs, err := next(chain[len(chain)-1])
			if err != nil {
				return nil, err
			}
			nbs = slices.Clone(nbs)
			slices.Sort(nbs)
			for _, nb := range slices.Compact(nbs) {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				ext := make([]string, len(chain), len(chain)+1)
				copy(ext, chain)
				ext = append(ext, nb)
				chains = append(chains, DependencyChain{Nodes: ext, Depth: len(ext) - 1})
				nextQueue = append(nextQueue, ext)
			}
		}
		queue = nextQueue
	}
	return chains, nil
}

// assessImpact expands the referrer closure of changed. Changed files are
// excluded from both result sets; the risk score is the closure's share of
// total files.
func assessImpact(changed []string, total int, referrers neighborFunc) (*ImpactResult, error) {
	changedSet := make(map[string]bool, len(changed))
	for _, f := range changed {
		changedSet[f] = true
	}

	direct := make(map[string]bool)
	all := make(map[string]bool)
	frontier := slices.Clone(changed)
	for round := 0; len(frontier) > 0; round++ {
		var next []string
		for _, f := range frontier {
			refs, err := referrers(f)
			if err != nil {
				return nil, err
			}
			for _, r := range refs {
				if changedSet[r] || all[r] {
					continue
				}
				all[r] = true
				if round == 0 {
					direct[r] = true
				}
				next = append(next, r)
			}
		}
		frontier = next
	}

	res := &ImpactResult{
		DirectlyAffected:     sortedKeys(direct),
		TransitivelyAffected: sortedKeys(all),
	}
	if total > 0 {
		res.RiskScore = math.Min(1.0, float64(len(all))/float64(total))
	}
	return res, nil
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// LoadStore writes every node and edge of g into s. The schema is
// initialized first.
func LoadStore(ctx context.Context, s Store, g *Graph, layers Layerer) error {
	if err := s.InitSchema(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	for _, p := range g.Nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		node := FileNode{Path: p, Sublayer: config.SublayerOf(p)}
		if layers != nil {
			node.Layer = layers.LayerOf(p)
		}
		if err := s.AddFile(ctx, node); err != nil {
			return fmt.Errorf("add file %s: %w", p, err)
		}
	}
	for _, e := range g.Edges {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.AddEdge(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
