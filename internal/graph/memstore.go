package graph

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu    sync.RWMutex
	files map[string]FileNode
	edges []Edge
	out   map[string][]string // source -> targets, insertion order
	in    map[string][]string // target -> sources, insertion order
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		files: make(map[string]FileNode),
		out:   make(map[string][]string),
		in:    make(map[string][]string),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// AddFile stores a file node keyed by its path.
func (m *MemStore) AddFile(_ context.Context, node FileNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[node.Path] = node
	return nil
}

// AddEdge records a reference. Both endpoints must already be stored.
func (m *MemStore) AddEdge(_ context.Context, edge Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range []string{edge.Source, edge.Target} {
		if _, ok := m.files[p]; !ok {
			return fmt.Errorf("add edge %s -> %s: %w: %s", edge.Source, edge.Target, ErrNodeNotFound, p)
		}
	}
	m.edges = append(m.edges, edge)
	m.out[edge.Source] = append(m.out[edge.Source], edge.Target)
	m.in[edge.Target] = append(m.in[edge.Target], edge.Source)
	return nil
}

// GetFile returns the file node for the given path.
func (m *MemStore) GetFile(_ context.Context, path string) (*FileNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, path)
	}
	return &f, nil
}

// GetDependencies walks references from path in the given direction, up to
// maxDepth hops. It returns one DependencyChain per reachable file.
func (m *MemStore) GetDependencies(_ context.Context, path string, direction Direction, maxDepth int) ([]DependencyChain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.files[path]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, path)
	}
	return walkChains(path, maxDepth, func(p string) ([]string, error) {
		return m.neighbors(p, direction)
	})
}

// neighbors returns files one hop away from p along the given direction.
func (m *MemStore) neighbors(p string, direction Direction) ([]string, error) {
	switch direction {
	case DirectionDownstream:
		return m.out[p], nil
	case DirectionUpstream:
		return m.in[p], nil
	default:
		return nil, fmt.Errorf("unknown direction: %q", direction)
	}
}

// AssessImpact computes which files are affected by changing the given files.
func (m *MemStore) AssessImpact(_ context.Context, changedFiles []string) (*ImpactResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return assessImpact(changedFiles, len(m.files), func(p string) ([]string, error) {
		return m.in[p], nil
	})
}

// GetAllEdges returns a copy of all edges in the store.
func (m *MemStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.edges), nil
}

// Stats returns the node and edge counts.
func (m *MemStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &GraphStats{
		FileCount: len(m.files),
		EdgeCount: len(m.edges),
	}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
