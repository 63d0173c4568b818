package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

var (
	// ErrNotConverged is returned when an iterative metric exhausts its
	// iteration budget.
	ErrNotConverged = errors.New("did not converge")

	// ErrDegenerate is returned when a metric is undefined for the graph.
	ErrDegenerate = errors.New("degenerate graph")
)

// Degrees returns raw in- and out-degree per node.
func Degrees(g *Graph) (in, out []float64) {
	in = make([]float64, g.N())
	out = make([]float64, g.N())
	for v := range g.N() {
		in[v] = float64(len(g.in[v]))
		out[v] = float64(len(g.out[v]))
	}
	return in, out
}

// DegreeCentrality divides each degree by n-1. With at most one node the
// raw degrees are returned unchanged.
func DegreeCentrality(g *Graph, deg []float64) []float64 {
	n := g.N()
	if n <= 1 {
		return deg
	}
	out := make([]float64, n)
	for i, d := range deg {
		out[i] = d / float64(n-1)
	}
	return out
}

// PageRank runs power iteration with uniform teleport and dangling mass
// spread uniformly. Iteration stops once the L1 change drops below n*tol.
func PageRank(g *Graph, damping float64, maxIter int, tol float64) ([]float64, error) {
	n := g.N()
	if n == 0 {
		return nil, nil
	}
	uniform := 1.0 / float64(n)
	x := make([]float64, n)
	next := make([]float64, n)
	for i := range x {
		x[i] = uniform
	}

	for range maxIter {
		dangling := 0.0
		for v := range n {
			if len(g.out[v]) == 0 {
				dangling += x[v]
			}
		}
		base := damping*dangling*uniform + (1-damping)*uniform
		for i := range next {
			next[i] = base
		}
		for v := range n {
			if d := len(g.out[v]); d > 0 {
				share := damping * x[v] / float64(d)
				for _, w := range g.out[v] {
					next[w] += share
				}
			}
		}

		diff := 0.0
		for i := range x {
			diff += math.Abs(next[i] - x[i])
		}
		x, next = next, x
		if diff < float64(n)*tol {
			return x, nil
		}
	}
	return nil, fmt.Errorf("pagerank after %d iterations: %w", maxIter, ErrNotConverged)
}

// HITS computes hub and authority scores by mutual reinforcement. Each step
// scales both vectors by their maximum; the results are scaled to sum 1.
func HITS(g *Graph, maxIter int, tol float64) (hubs, auths []float64, err error) {
	n := g.N()
	if n == 0 {
		return nil, nil, nil
	}
	if g.M() == 0 {
		return nil, nil, fmt.Errorf("hits: no edges: %w", ErrDegenerate)
	}

	h := make([]float64, n)
	for i := range h {
		h[i] = 1.0 / float64(n)
	}
	a := make([]float64, n)
	last := make([]float64, n)

	converged := false
	for range maxIter {
		copy(last, h)
		clear(h)
		clear(a)
		for v := range n {
			for _, w := range g.out[v] {
				a[w] += last[v]
			}
		}
		for v := range n {
			for _, w := range g.out[v] {
				h[v] += a[w]
			}
		}
		scaleByMax(h)
		scaleByMax(a)

		diff := 0.0
		for i := range h {
			diff += math.Abs(h[i] - last[i])
		}
		if diff < tol {
			converged = true
			break
		}
	}
	if !converged {
		return nil, nil, fmt.Errorf("hits after %d iterations: %w", maxIter, ErrNotConverged)
	}
	scaleBySum(h)
	scaleBySum(a)
	return h, a, nil
}

func scaleByMax(v []float64) {
	m := 0.0
	for _, x := range v {
		m = max(m, x)
	}
	if m == 0 {
		return
	}
	for i := range v {
		v[i] /= m
	}
}

func scaleBySum(v []float64) {
	s := 0.0
	for _, x := range v {
		s += x
	}
	if s == 0 {
		return
	}
	for i := range v {
		v[i] /= s
	}
}

// BetweennessOptions controls source sampling.
type BetweennessOptions struct {
	ExactLimit int    // graphs with more nodes are sampled
	Samples    int    // sampled source count
	Seed       uint64 // sampling seed
}

// Betweenness computes normalized directed betweenness centrality with
// Brandes' algorithm. Above ExactLimit nodes, Samples sources are drawn with
// a seeded permutation and the result is extrapolated. Scores are clamped to
// [0,1].
func Betweenness(ctx context.Context, g *Graph, opts BetweennessOptions) ([]float64, error) {
	n := g.N()
	cb := make([]float64, n)
	if n == 0 {
		return cb, nil
	}

	sources := make([]int, n)
	for i := range sources {
		sources[i] = i
	}
	sampled := n > opts.ExactLimit && opts.Samples < n
	if sampled {
		rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
		sources = rng.Perm(n)[:opts.Samples]
	}

	b := newBrandes(n)
	for _, s := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b.accumulate(g, s, cb)
	}

	if n > 2 {
		scale := 1.0 / float64((n-1)*(n-2))
		if sampled {
			scale *= float64(n) / float64(len(sources))
		}
		for i := range cb {
			cb[i] = min(1, max(0, cb[i]*scale))
		}
	}
	return cb, nil
}

// brandes holds per-source scratch space reused across sources.
type brandes struct {
	stack []int
	queue []int
	preds [][]int
	sigma []float64
	dist  []int
	delta []float64
}

func newBrandes(n int) *brandes {
	return &brandes{
		stack: make([]int, 0, n),
		queue: make([]int, 0, n),
		preds: make([][]int, n),
		sigma: make([]float64, n),
		dist:  make([]int, n),
		delta: make([]float64, n),
	}
}

// accumulate adds the dependencies of source s to cb.
func (b *brandes) accumulate(g *Graph, s int, cb []float64) {
	b.stack = b.stack[:0]
	b.queue = b.queue[:0]
	for i := range b.preds {
		b.preds[i] = b.preds[i][:0]
		b.sigma[i] = 0
		b.dist[i] = -1
		b.delta[i] = 0
	}
	b.sigma[s] = 1
	b.dist[s] = 0
	b.queue = append(b.queue, s)

	for head := 0; head < len(b.queue); head++ {
		v := b.queue[head]
		b.stack = append(b.stack, v)
		for _, w := range g.out[v] {
			if b.dist[w] < 0 {
				b.dist[w] = b.dist[v] + 1
				b.queue = append(b.queue, w)
			}
			if b.dist[w] == b.dist[v]+1 {
				b.sigma[w] += b.sigma[v]
				b.preds[w] = append(b.preds[w], v)
			}
		}
	}

	for i := len(b.stack) - 1; i >= 0; i-- {
		w := b.stack[i]
		coeff := (1 + b.delta[w]) / b.sigma[w]
		for _, v := range b.preds[w] {
			b.delta[v] += b.sigma[v] * coeff
		}
		if w != s {
			cb[w] += b.delta[w]
		}
	}
}
