package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/filegraph/internal/mcptools"
)

func (a *app) serveMCPCmd() *cobra.Command {
	var backend string
	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve the filegraph tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(backend)
			if err != nil {
				return err
			}
			a.logger.Info("serving MCP on stdio", "project_dir", a.cfg.ProjectDir, "backend", backend)
			return mcptools.RunStdio(cmd.Context(), mcptools.NewServer(svc))
		},
	}
	cmd.Flags().StringVar(&backend, "backend", "mem", "graph store for dependency and impact queries: mem or kuzu")
	return cmd
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(*cobra.Command, []string) error {
			fmt.Fprintf(a.stdout, "filegraph %s\n", version)
			return nil
		},
	}
}
