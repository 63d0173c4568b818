package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/filegraph/internal/templates"
)

// mcpEntryName is the server key written into .mcp.json.
const mcpEntryName = "filegraph"

var filegraphMCPEntry = json.RawMessage(`{
  "type": "stdio",
  "command": "filegraph",
  "args": ["serve-mcp"]
}`)

func (a *app) initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter filegraph.yml and register the MCP server in .mcp.json",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			root := a.cfg.ProjectDir
			if err := a.writeConfigTemplate(filepath.Join(root, templates.ConfigFile), force); err != nil {
				return err
			}
			if err := a.mergeMCPConfig(filepath.Join(root, ".mcp.json"), force); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "\nSetup complete. Run 'filegraph run' to build the graph and report.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files and entries")
	return cmd
}

func (a *app) writeConfigTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(a.stdout, "  skipped %s (exists, use --force to overwrite)\n", templates.ConfigFile)
			return nil
		}
	}
	if err := os.WriteFile(path, templates.DefaultConfig, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(a.stdout, "  created %s\n", templates.ConfigFile)
	return nil
}

// mergeMCPConfig creates or merges the filegraph entry into .mcp.json,
// keeping every other key and server entry.
func (a *app) mergeMCPConfig(mcpPath string, force bool) error {
	doc := map[string]json.RawMessage{}
	servers := map[string]json.RawMessage{}

	data, err := os.ReadFile(mcpPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing %s: %w", mcpPath, err)
		}
		if raw, ok := doc["mcpServers"]; ok {
			if err := json.Unmarshal(raw, &servers); err != nil {
				return fmt.Errorf("parsing %s mcpServers: %w", mcpPath, err)
			}
		}
	case errors.Is(err, fs.ErrNotExist):
		data = nil
	default:
		return fmt.Errorf("reading %s: %w", mcpPath, err)
	}
	if doc == nil {
		doc = map[string]json.RawMessage{}
	}
	if servers == nil {
		servers = map[string]json.RawMessage{}
	}

	if _, exists := servers[mcpEntryName]; exists && !force {
		fmt.Fprintln(a.stdout, "  skipped .mcp.json filegraph entry (exists, use --force to overwrite)")
		return nil
	}
	servers[mcpEntryName] = filegraphMCPEntry

	rawServers, err := json.Marshal(servers)
	if err != nil {
		return fmt.Errorf("marshaling mcpServers: %w", err)
	}
	doc["mcpServers"] = rawServers

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling .mcp.json: %w", err)
	}
	if err := os.WriteFile(mcpPath, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", mcpPath, err)
	}

	action := "created"
	if data != nil {
		action = "updated"
	}
	fmt.Fprintf(a.stdout, "  %s .mcp.json with filegraph MCP server\n", action)
	return nil
}
