package report

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dusk-indust/filegraph/internal/analysis"
)

// MarkdownOptions controls the markdown report header and table sizes.
type MarkdownOptions struct {
	Generated time.Time
	Scanner   string
	TopN      int
}

// Markdown renders the human-readable analysis report.
func Markdown(res *analysis.Result, opts MarkdownOptions) string {
	var sb strings.Builder
	w := func(format string, args ...any) {
		fmt.Fprintf(&sb, format, args...)
		sb.WriteByte('\n')
	}
	s := res.Summary

	w("# Filespace Network Analysis Report\n")
	w("**Generated**: %s\n", opts.Generated.Format("2006-01-02 15:04"))
	if opts.Scanner != "" {
		w("**Scanner**: %s\n", opts.Scanner)
	}
	w("")

	w("## Summary\n")
	w("| Metric | Value |")
	w("|--------|-------|")
	w("| Nodes | %d |", s.Nodes)
	w("| Edges | %d |", s.Edges)
	w("| Density | %.4f |", s.Density)
	w("| Avg Clustering | %.4f |", s.AvgClustering)
	w("| Weakly Connected Components | %d |", s.WeaklyConnectedComponents)
	w("| Strongly Connected Components | %d |", s.StronglyConnectedComponents)
	w("| Non-trivial SCCs (mutual refs) | %d |", s.NontrivialSCCCount)
	w("| Isolated nodes | %d |", s.IsolatedCount)
	w("| Bridges | %d |", s.BridgesCount)
	w("")

	distribution(w, "Layer Distribution", "Layer", "Files", res.LayerDistribution, s.Nodes)
	distribution(w, "Edge Type Distribution", "Type", "Count", res.EdgeTypeDistribution, s.Edges)

	n := opts.TopN
	scoreTable(w, "Top %d Files by PageRank (most important)", "PageRank", analysis.Head(res.TopPageRank, n), "%.6f")
	scoreTable(w, "Top %d Files by In-Degree (most referenced)", "In-Degree", analysis.Head(res.TopInDegree, n), "%.0f")
	scoreTable(w, "Top %d Files by Out-Degree (most outgoing references)", "Out-Degree", analysis.Head(res.TopOutDegree, n), "%.0f")
	scoreTable(w, "Top %d Files by Betweenness Centrality (bridge/bottleneck files)", "Betweenness", analysis.Head(res.TopBetweenness, n), "%.6f")
	scoreTable(w, "Top %d Hub Files (link to many important files)", "Hub Score", analysis.Head(res.TopHubs, n), "%.6f")
	scoreTable(w, "Top %d Authority Files (referenced by many important files)", "Authority Score", analysis.Head(res.TopAuthorities, n), "%.6f")

	w("## Weakly Connected Components\n")
	w("Total: %d components\n", s.WeaklyConnectedComponents)
	w("| Component | Size | Sample Members |")
	w("|-----------|------|----------------|")
	const shownComponents = 11
	for i := range min(len(res.WCCSizes), shownComponents) {
		id := fmt.Sprintf("wcc_%d", i)
		members := res.WCCMembers[id]
		suffix := ""
		if len(members) > 3 {
			suffix = fmt.Sprintf("... +%d", len(members)-3)
		}
		w("| %s | %d | %s %s |", id, len(members), ticked(analysis.Head(members, 3), ", "), suffix)
	}
	if rest := len(res.WCCSizes) - shownComponents; rest > 0 {
		w("| ... | ... | %d more components |", rest)
	}
	w("")

	w("## Strongly Connected Components (Mutual Reference Clusters)\n")
	w("Total non-trivial SCCs: %d\n", s.NontrivialSCCCount)
	for i := range res.SCCSizes {
		id := fmt.Sprintf("scc_%d", i)
		members, ok := res.SCCNontrivial[id]
		if !ok {
			continue
		}
		w("### %s (%d files)\n", id, len(members))
		for _, m := range analysis.Head(members, 10) {
			w("- `%s`", m)
		}
		if len(members) > 10 {
			w("- ... +%d more", len(members)-10)
		}
		w("")
	}

	if len(res.IsolatedNodes) > 0 {
		w("## Isolated Nodes (no edges)\n")
		for _, node := range res.IsolatedNodes {
			w("- `%s`", node)
		}
		w("")
	}

	bridges := res.Bridges
	if bridges == nil {
		bridges = res.BridgesSample
	}
	if len(bridges) > 0 {
		w("## Bridge Edges\n")
		for _, b := range bridges {
			w("- `%s` -- `%s`", b[0], b[1])
		}
		if more := s.BridgesCount - len(bridges); more > 0 {
			w("- ... +%d more", more)
		}
		w("")
	}

	if len(res.Degraded) > 0 {
		w("## Degraded Metrics\n")
		w("| Metric | Reason |")
		w("|--------|--------|")
		for _, d := range res.Degraded {
			w("| %s | %s |", d.Metric, d.Reason)
		}
		w("")
	}

	return sb.String()
}

func distribution(w func(string, ...any), title, label, unit string, counts map[string]int, total int) {
	type row struct {
		key string
		n   int
	}
	rows := make([]row, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, row{k, n})
	}
	slices.SortFunc(rows, func(a, b row) int {
		if c := cmp.Compare(b.n, a.n); c != 0 {
			return c
		}
		return cmp.Compare(a.key, b.key)
	})

	w("## %s\n", title)
	w("| %s | %s | Share |", label, unit)
	w("|%s|%s|-------|", strings.Repeat("-", len(label)+2), strings.Repeat("-", len(unit)+2))
	for _, r := range rows {
		share := 0.0
		if total > 0 {
			share = 100 * float64(r.n) / float64(total)
		}
		w("| %s | %d | %.1f%% |", r.key, r.n, share)
	}
	w("")
}

func scoreTable(w func(string, ...any), title, column string, rows []analysis.Score, valueFormat string) {
	w("## "+title+"\n", len(rows))
	w("| Rank | File | %s |", column)
	w("|------|------|%s|", strings.Repeat("-", len(column)+2))
	for i, r := range rows {
		w("| %d | `%s` | "+valueFormat+" |", i+1, r.Node, r.Value)
	}
	w("")
}

func ticked(items []string, sep string) string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = "`" + s + "`"
	}
	return strings.Join(out, sep)
}
