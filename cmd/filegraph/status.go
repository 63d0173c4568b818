package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/filegraph/internal/status"
)

func (a *app) statusCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which artifacts exist and what to run next",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			ps := status.Inspect(a.cfg)
			if asJSON {
				return a.printJSON(ps)
			}
			a.printStatus(ps)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (a *app) printStatus(ps status.ProjectStatus) {
	green := color.New(color.FgGreen).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(a.stdout, "Project: %s\n\n", ps.ProjectDir)
	for _, art := range ps.Artifacts {
		marker, label := faint("  "), faint("missing")
		if art.Present {
			marker, label = green("ok"), fmt.Sprintf("%d bytes, %s", art.Size, art.ModTime.Format("2006-01-02 15:04"))
		}
		if art.Kind == status.ArtifactAnalysis && ps.AnalysisStale {
			marker, label = yellow("!!"), yellow("stale")
		}
		fmt.Fprintf(a.stdout, "  %s %-9s %-40s [%s]\n", marker, art.Kind, a.relPath(art.Path), label)
	}

	if ps.Stats != nil {
		fmt.Fprintf(a.stdout, "\nLast scan %s: %d files, %d edges, %d orphans\n",
			ps.GeneratedAt, ps.Stats.TotalFiles, ps.Stats.TotalEdges, ps.Stats.Orphans)
	}
	if ps.GraphError != "" {
		fmt.Fprintf(a.stdout, "\n%s %s\n", yellow("graph:"), ps.GraphError)
	}
	fmt.Fprintf(a.stdout, "\n%s\n", ps.Recommendation())
}
