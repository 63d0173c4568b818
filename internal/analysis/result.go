package analysis

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
)

// Score is one row of a top-N table. It serializes as [node, value].
type Score struct {
	Node  string
	Value float64
}

// MarshalJSON encodes the score as a two-element array.
func (s Score) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{s.Node, s.Value})
}

// UnmarshalJSON decodes a two-element [node, value] array.
func (s *Score) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("score: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &s.Node); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &s.Value)
}

// Summary holds the headline counts of an analysis.
type Summary struct {
	Nodes                       int     `json:"nodes"`
	Edges                       int     `json:"edges"`
	Density                     float64 `json:"density"`
	AvgClustering               float64 `json:"avg_clustering"`
	WeaklyConnectedComponents   int     `json:"weakly_connected_components"`
	StronglyConnectedComponents int     `json:"strongly_connected_components"`
	NontrivialSCCCount          int     `json:"nontrivial_scc_count"`
	IsolatedCount               int     `json:"isolated_count"`
	BridgesCount                int     `json:"bridges_count"`
}

// Degraded records a metric that could not be computed.
type Degraded struct {
	Metric string `json:"metric"`
	Reason string `json:"reason"`
}

// Result is the analysis file.
type Result struct {
	Summary              Summary             `json:"summary"`
	LayerDistribution    map[string]int      `json:"layer_distribution"`
	EdgeTypeDistribution map[string]int      `json:"edge_type_distribution"`
	TopPageRank          []Score             `json:"top_pagerank"`
	TopInDegree          []Score             `json:"top_in_degree"`
	TopOutDegree         []Score             `json:"top_out_degree"`
	TopInCentrality      []Score             `json:"top_in_degree_centrality"`
	TopOutCentrality     []Score             `json:"top_out_degree_centrality"`
	TopBetweenness       []Score             `json:"top_betweenness"`
	TopHubs              []Score             `json:"top_hub_scores"`
	TopAuthorities       []Score             `json:"top_authority_scores"`
	WCCSizes             []int               `json:"wcc_sizes"`
	WCCMembers           map[string][]string `json:"wcc_members"`
	SCCSizes             []int               `json:"scc_sizes"`
	SCCNontrivial        map[string][]string `json:"scc_nontrivial"`
	IsolatedNodes        []string            `json:"isolated_nodes"`
	BridgesSample        [][2]string         `json:"bridges_sample"`
	Degraded             []Degraded          `json:"degraded"`

	// Bridges holds up to the configured bridge limit; only the sample is
	// serialized.
	Bridges [][2]string `json:"-"`
}

// newResult returns a Result whose collections encode as empty rather than
// null.
func newResult() *Result {
	return &Result{
		LayerDistribution:    map[string]int{},
		EdgeTypeDistribution: map[string]int{},
		TopPageRank:          []Score{},
		TopInDegree:          []Score{},
		TopOutDegree:         []Score{},
		TopInCentrality:      []Score{},
		TopOutCentrality:     []Score{},
		TopBetweenness:       []Score{},
		TopHubs:              []Score{},
		TopAuthorities:       []Score{},
		WCCSizes:             []int{},
		WCCMembers:           map[string][]string{},
		SCCSizes:             []int{},
		SCCNontrivial:        map[string][]string{},
		IsolatedNodes:        []string{},
		BridgesSample:        [][2]string{},
		Degraded:             []Degraded{},
	}
}

// Top returns the n highest scores, ties ordered by path. A negative n keeps
// every row.
func Top(g *Graph, values []float64, n int) []Score {
	out := make([]Score, 0, len(values))
	for i, v := range values {
		out = append(out, Score{Node: g.Name(i), Value: v})
	}
	slices.SortFunc(out, func(a, b Score) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Node, b.Node)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Head returns the first n entries of rows, or all of them when shorter.
func Head[T any](rows []T, n int) []T {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}
