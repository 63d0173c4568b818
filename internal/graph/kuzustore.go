//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given directory path. KuzuDB creates the leaf directory itself.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(dbPath string) (*KuzuStore, error) {
	db, err := kuzu.OpenDatabase(dbPath, kuzu.DefaultSystemConfig())
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Order matters: node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS File(
		path STRING,
		layer STRING,
		sublayer STRING,
		PRIMARY KEY(path)
	)`,
	`CREATE REL TABLE IF NOT EXISTS REFERENCES(FROM File TO File, type STRING, raw_ref STRING)`,
}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddFile inserts a File node.
func (s *KuzuStore) AddFile(_ context.Context, node FileNode) error {
	return s.exec(
		"CREATE (f:File {path: $path, layer: $layer, sublayer: $sublayer})",
		map[string]any{
			"path":     node.Path,
			"layer":    node.Layer,
			"sublayer": node.Sublayer,
		},
	)
}

// AddEdge inserts a REFERENCES relationship between two existing files.
func (s *KuzuStore) AddEdge(ctx context.Context, edge Edge) error {
	for _, p := range []string{edge.Source, edge.Target} {
		if _, err := s.GetFile(ctx, p); err != nil {
			return fmt.Errorf("add edge %s -> %s: %w", edge.Source, edge.Target, err)
		}
	}
	return s.exec(
		`MATCH (a:File {path: $src}), (b:File {path: $dst})
		 CREATE (a)-[:REFERENCES {type: $type, raw_ref: $raw}]->(b)`,
		map[string]any{
			"src":  edge.Source,
			"dst":  edge.Target,
			"type": string(edge.Kind),
			"raw":  edge.RawRef,
		},
	)
}

// ---------- Read operations ----------

// GetFile retrieves a single File node by path.
func (s *KuzuStore) GetFile(_ context.Context, path string) (*FileNode, error) {
	rows, err := s.query(
		"MATCH (f:File {path: $path}) RETURN f.path, f.layer, f.sublayer",
		map[string]any{"path": path},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, path)
	}
	r := rows[0]
	return &FileNode{
		Path:     toString(r[0]),
		Layer:    toString(r[1]),
		Sublayer: toString(r[2]),
	}, nil
}

// GetAllEdges returns every REFERENCES relationship ordered by source.
func (s *KuzuStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	rows, err := s.query(
		`MATCH (a:File)-[r:REFERENCES]->(b:File)
		 RETURN a.path, b.path, r.type, r.raw_ref
		 ORDER BY a.path, b.path`,
		nil,
	)
	if err != nil {
		return nil, err
	}
	edges := make([]Edge, 0, len(rows))
	for _, r := range rows {
		edges = append(edges, Edge{
			Source: toString(r[0]),
			Target: toString(r[1]),
			Kind:   EdgeKind(toString(r[2])),
			RawRef: toString(r[3]),
		})
	}
	return edges, nil
}

// ---------- Graph traversal ----------

// GetDependencies walks REFERENCES edges from path. It returns one
// DependencyChain per reachable file.
func (s *KuzuStore) GetDependencies(ctx context.Context, path string, dir Direction, maxDepth int) ([]DependencyChain, error) {
	if _, err := s.GetFile(ctx, path); err != nil {
		return nil, err
	}
	return walkChains(path, maxDepth, func(p string) ([]string, error) {
		return s.fileNeighbors(p, dir)
	})
}

// fileNeighbors returns immediate file neighbors along REFERENCES edges.
func (s *KuzuStore) fileNeighbors(path string, dir Direction) ([]string, error) {
	var cypher string
	switch dir {
	case DirectionDownstream:
		cypher = "MATCH (a:File {path: $path})-[:REFERENCES]->(b:File) RETURN b.path"
	case DirectionUpstream:
		cypher = "MATCH (a:File)-[:REFERENCES]->(b:File {path: $path}) RETURN a.path"
	default:
		return nil, fmt.Errorf("kuzu: unknown direction: %q", dir)
	}
	rows, err := s.query(cypher, map[string]any{"path": path})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, toString(r[0]))
	}
	return out, nil
}

// AssessImpact computes which files are affected by changing the given files
// by walking REFERENCES edges against their direction.
func (s *KuzuStore) AssessImpact(_ context.Context, changedFiles []string) (*ImpactResult, error) {
	total, err := s.count("MATCH (n:File) RETURN count(n)")
	if err != nil {
		return nil, err
	}
	return assessImpact(changedFiles, total, func(p string) ([]string, error) {
		return s.fileNeighbors(p, DirectionUpstream)
	})
}

// ---------- Stats ----------

// Stats returns the File node and REFERENCES edge counts.
func (s *KuzuStore) Stats(_ context.Context) (*GraphStats, error) {
	files, err := s.count("MATCH (n:File) RETURN count(n)")
	if err != nil {
		return nil, err
	}
	edges, err := s.count("MATCH ()-[r:REFERENCES]->() RETURN count(r)")
	if err != nil {
		return nil, err
	}
	return &GraphStats{FileCount: files, EdgeCount: edges}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// count runs a single-value count query.
func (s *KuzuStore) count(cypher string) (int, error) {
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
