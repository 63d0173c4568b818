package main

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/filegraph/internal/orchestrator"
	"github.com/dusk-indust/filegraph/internal/report"
)

func (a *app) scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Build the graph and orphans files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withPipeline(func(p *orchestrator.Pipeline) error {
				res, err := p.Scan(cmd.Context())
				if err != nil {
					return err
				}
				a.printScan(res)
				return nil
			})
		},
	}
}

func (a *app) analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Compute metrics over the graph file and write the analysis and report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withPipeline(func(p *orchestrator.Pipeline) error {
				res, err := p.Analyze(cmd.Context())
				if err != nil {
					return nothingToDo(err)
				}
				a.printAnalysis(res)
				return nil
			})
		},
	}
}

func (a *app) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Scan, then analyze",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withPipeline(func(p *orchestrator.Pipeline) error {
				res, err := p.Run(cmd.Context())
				if err != nil {
					return err
				}
				a.printScan(res.Scan)
				fmt.Fprintln(a.stdout)
				a.printAnalysis(res.Analysis)
				return nil
			})
		},
	}
}

// nothingToDo rewords a missing graph file into a hint.
func nothingToDo(err error) error {
	if errors.Is(err, report.ErrGraphNotFound) {
		return fmt.Errorf("nothing to analyze, run 'filegraph scan' first: %w", err)
	}
	return err
}

func (a *app) printScan(res *orchestrator.ScanResult) {
	s := res.Graph.Metadata.Stats
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(a.stdout, "%s %s\n", bold("Scanned"), a.cfg.ProjectDir)
	fmt.Fprintf(a.stdout, "  files:        %d\n", s.TotalFiles)
	fmt.Fprintf(a.stdout, "  edges:        %d\n", s.TotalEdges)
	for _, kind := range slices.Sorted(maps.Keys(s.EdgeTypes)) {
		fmt.Fprintf(a.stdout, "    %-18s %d\n", kind, s.EdgeTypes[kind])
	}
	fmt.Fprintf(a.stdout, "  references:   %d (%d unresolved)\n", s.RawReferences, s.Unresolved)
	fmt.Fprintf(a.stdout, "  entry points: %d\n", s.EntryPointsFound)
	fmt.Fprintf(a.stdout, "  reachable:    %d\n", s.Reachable)
	fmt.Fprintf(a.stdout, "  orphans:      %d\n", s.Orphans)
	if s.ReadErrors > 0 || s.ParseFallbacks > 0 {
		fmt.Fprintf(a.stdout, "  skipped:      %d unreadable, %d unparseable\n", s.ReadErrors, s.ParseFallbacks)
	}
	fmt.Fprintf(a.stdout, "  wrote %s, %s\n", a.relPath(res.GraphPath), a.relPath(res.OrphansPath))
}

func (a *app) printAnalysis(res *orchestrator.AnalyzeResult) {
	r := res.Result
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(a.stdout, "%s %d nodes, %d edges\n", bold("Analyzed"), r.Summary.Nodes, r.Summary.Edges)
	fmt.Fprintf(a.stdout, "  density:      %.4f\n", r.Summary.Density)
	fmt.Fprintf(a.stdout, "  components:   %d weak, %d strong (%d mutual clusters)\n",
		r.Summary.WeaklyConnectedComponents, r.Summary.StronglyConnectedComponents, r.Summary.NontrivialSCCCount)
	fmt.Fprintf(a.stdout, "  bridges:      %d\n", r.Summary.BridgesCount)
	if len(r.TopPageRank) > 0 {
		fmt.Fprintf(a.stdout, "  top pagerank: %s\n", r.TopPageRank[0].Node)
	}
	fmt.Fprintf(a.stdout, "  wrote %s, %s\n", a.relPath(res.AnalysisPath), a.relPath(res.ReportPath))

	if len(r.Degraded) > 0 {
		names := make([]string, len(r.Degraded))
		for i, d := range r.Degraded {
			names[i] = d.Metric
		}
		color.New(color.FgYellow).Fprintf(a.stderr, "warning: degraded metrics: %s\n", strings.Join(names, ", "))
	}
}
