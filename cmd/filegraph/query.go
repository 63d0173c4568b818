package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/filegraph/internal/config"
	"github.com/dusk-indust/filegraph/internal/graph"
	"github.com/dusk-indust/filegraph/internal/mcptools"
	"github.com/dusk-indust/filegraph/internal/report"
)

func (a *app) service(backend string) (*mcptools.Service, error) {
	factory, err := storeFactory(backend)
	if err != nil {
		return nil, err
	}
	return mcptools.NewService(a.cfg, a.logger, factory), nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) orphansCmd() *cobra.Command {
	var kind string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "orphans",
		Short: "List files no entry point reaches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if asJSON || kind != "" {
				svc, err := a.service("")
				if err != nil {
					return err
				}
				_, out, err := svc.Orphans(cmd.Context(), nil, mcptools.OrphansInput{Kind: kind})
				if err != nil {
					return nothingToDo(err)
				}
				if asJSON {
					return a.printJSON(out)
				}
				for _, o := range out.Orphans {
					fmt.Fprintln(a.stdout, o.Path)
				}
				return nil
			}

			g, err := report.ReadGraph(a.cfg.OutputPath(config.GraphFile))
			if err != nil {
				return nothingToDo(err)
			}
			r := graph.Reach(g, a.cfg.EntryPoints)
			fmt.Fprint(a.stdout, report.FormatOrphans(r, len(g.Nodes)))
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only list orphans of this kind: isolated or unreachable")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (a *app) depsCmd() *cobra.Command {
	var (
		upstream bool
		depth    int
		backend  string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "deps <path>",
		Short: "Show reference chains from a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(backend)
			if err != nil {
				return err
			}
			in := mcptools.DependenciesInput{Path: args[0], MaxDepth: depth}
			if upstream {
				in.Direction = string(graph.DirectionUpstream)
			}
			_, out, err := svc.Dependencies(cmd.Context(), nil, in)
			if err != nil {
				return nothingToDo(err)
			}
			if asJSON {
				return a.printJSON(out)
			}
			if len(out.Chains) == 0 {
				fmt.Fprintf(a.stdout, "%s has no %s references\n", args[0], direction(upstream))
				return nil
			}
			arrow := " -> "
			if upstream {
				arrow = " <- "
			}
			for _, c := range out.Chains {
				fmt.Fprintln(a.stdout, strings.Join(c.Nodes, arrow))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&upstream, "upstream", false, "follow files that reference <path> instead")
	f.IntVar(&depth, "depth", 0, "maximum chain depth (default 10)")
	f.StringVar(&backend, "backend", "mem", "graph store: mem or kuzu")
	f.BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func direction(upstream bool) string {
	if upstream {
		return string(graph.DirectionUpstream)
	}
	return string(graph.DirectionDownstream)
}

func (a *app) impactCmd() *cobra.Command {
	var (
		backend string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "impact <path>...",
		Short: "Show which files reference the given files, directly or transitively",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(backend)
			if err != nil {
				return err
			}
			_, out, err := svc.Impact(cmd.Context(), nil, mcptools.ImpactInput{ChangedFiles: args})
			if err != nil {
				return nothingToDo(err)
			}
			if asJSON {
				return a.printJSON(out)
			}

			im := out.Impact
			risk := color.New(color.FgGreen)
			switch {
			case im.RiskScore >= 0.5:
				risk = color.New(color.FgRed)
			case im.RiskScore >= 0.2:
				risk = color.New(color.FgYellow)
			}
			risk.Fprintf(a.stdout, "risk: %.2f\n", im.RiskScore)
			fmt.Fprintf(a.stdout, "directly affected (%d):\n", len(im.DirectlyAffected))
			for _, p := range im.DirectlyAffected {
				fmt.Fprintf(a.stdout, "  %s\n", p)
			}
			fmt.Fprintf(a.stdout, "transitively affected (%d):\n", len(im.TransitivelyAffected))
			for _, p := range im.TransitivelyAffected {
				fmt.Fprintf(a.stdout, "  %s\n", p)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&backend, "backend", "mem", "graph store: mem or kuzu")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
