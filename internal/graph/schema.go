package graph

// --- Enums ---

// EdgeKind labels the semantic relationship between two files.
type EdgeKind string

const (
	EdgeKindAtReference     EdgeKind = "at_reference"     // "@path" inclusion
	EdgeKindCodeDependency  EdgeKind = "code_dependency"  // code -> code
	EdgeKindReadsFrom       EdgeKind = "reads_from"       // code -> doc/data
	EdgeKindDocReference    EdgeKind = "doc_reference"    // doc -> doc
	EdgeKindReferencesCode  EdgeKind = "references_code"  // doc -> code
	EdgeKindConfigReference EdgeKind = "config_reference" // yaml/json -> anything
	EdgeKindReference       EdgeKind = "reference"
)

// EdgeKinds lists every label in classification order.
var EdgeKinds = []EdgeKind{
	EdgeKindAtReference,
	EdgeKindCodeDependency,
	EdgeKindReadsFrom,
	EdgeKindDocReference,
	EdgeKindReferencesCode,
	EdgeKindConfigReference,
	EdgeKindReference,
}

// OrphanKind distinguishes the two kinds of unreachable node.
type OrphanKind string

const (
	OrphanIsolated    OrphanKind = "isolated"    // no edges in either direction
	OrphanUnreachable OrphanKind = "unreachable" // has edges, none reachable from an entry point
)

// --- Models ---

// FileNode is a canonical file with the attributes derived from its path.
type FileNode struct {
	Path     string `json:"path"`
	Layer    string `json:"layer"`
	Sublayer string `json:"sublayer"`
}

// Edge is a resolved reference from one file to another.
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"type"`
	RawRef string   `json:"raw_ref"`
}

// Stats are the summary counts recorded in the graph file metadata.
type Stats struct {
	TotalFiles         int              `json:"total_files"`
	TotalEdges         int              `json:"total_edges"`
	Reachable          int              `json:"reachable"`
	Orphans            int              `json:"orphans"`
	NoIncoming         int              `json:"no_incoming"`
	NoOutgoing         int              `json:"no_outgoing"`
	AmbiguousBasenames int              `json:"ambiguous_basenames"`
	EntryPointsFound   int              `json:"entry_points_found"`
	RawReferences      int              `json:"raw_references"`
	Unresolved         int              `json:"unresolved_references"`
	ReadErrors         int              `json:"read_errors"`
	ParseFallbacks     int              `json:"parse_fallbacks"`
	EdgeTypes          map[EdgeKind]int `json:"edge_types"`
}

// Metadata describes one scan run.
type Metadata struct {
	Scanner     string   `json:"scanner"`
	Version     string   `json:"version"`
	ProjectDir  string   `json:"project_dir"`
	GeneratedAt string   `json:"generated_at"`
	RunID       string   `json:"run_id"`
	Digest      string   `json:"digest"`
	Stats       Stats    `json:"stats"`
	EntryPoints []string `json:"entry_points"`
}

// Graph is the serialized output of a scan: sorted nodes, deduplicated edges.
type Graph struct {
	Metadata Metadata `json:"metadata"`
	Nodes    []string `json:"nodes"`
	Edges    []Edge   `json:"edges"`
}

// GraphStats summarizes the contents of a Store.
type GraphStats struct {
	FileCount int `json:"fileCount"`
	EdgeCount int `json:"edgeCount"`
}

// DependencyChain is an ordered sequence of files joined by references.
type DependencyChain struct {
	Nodes []string `json:"nodes"`
	Depth int      `json:"depth"`
}

// ImpactResult describes which files reference a set of changed files.
type ImpactResult struct {
	DirectlyAffected     []string `json:"directlyAffected"`     // files referencing a changed file
	TransitivelyAffected []string `json:"transitivelyAffected"` // full referrer closure
	RiskScore            float64  `json:"riskScore"`            // 0.0-1.0, transitive share of all files
}
