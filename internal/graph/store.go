package graph

import (
	"context"
	"errors"
	"io"
)

// ErrNodeNotFound is returned by Store lookups for unknown paths.
var ErrNodeNotFound = errors.New("node not found")

// Store answers dependency and impact queries over a loaded graph.
// Implementations: KuzuStore (cgo), MemStore.
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations.
	AddFile(ctx context.Context, node FileNode) error
	AddEdge(ctx context.Context, edge Edge) error

	// Read operations.
	GetFile(ctx context.Context, path string) (*FileNode, error)
	GetAllEdges(ctx context.Context) ([]Edge, error)

	// Graph traversal.
	GetDependencies(ctx context.Context, path string, direction Direction, maxDepth int) ([]DependencyChain, error)
	AssessImpact(ctx context.Context, changedFiles []string) (*ImpactResult, error)

	// Stats.
	Stats(ctx context.Context) (*GraphStats, error)
}

// Direction controls dependency traversal direction.
type Direction string

const (
	DirectionUpstream   Direction = "upstream"   // files that reference this one
	DirectionDownstream Direction = "downstream" // files this one references
)

// Layerer derives node attributes from a path.
type Layerer interface {
	LayerOf(path string) string
}
