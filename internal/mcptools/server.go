// Package mcptools exposes the scan and analysis pipeline and the graph
// queries as MCP tools.
package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewServer creates an MCP server with the six filegraph tools registered.
func NewServer(svc *Service) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "filegraph",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scan",
		Description: "Index the project, resolve file references and write the graph and orphans files. Returns run stats.",
	}, svc.Scan)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze",
		Description: "Compute centrality and structural metrics over the graph file and write the analysis file and markdown report.",
	}, svc.Analyze)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "orphans",
		Description: "List files unreachable from the entry points, marked isolated or has-edges-but-unreachable.",
	}, svc.Orphans)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dependencies",
		Description: "Walk reference chains downstream (files it references) or upstream (files referencing it) from a file.",
	}, svc.Dependencies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "impact",
		Description: "Compute which files reference a set of changed files, directly and transitively, with a risk score.",
	}, svc.Impact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "status",
		Description: "Report which filegraph artifacts exist, whether the analysis is stale, and what to run next.",
	}, svc.Status)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
