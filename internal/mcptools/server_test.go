package mcptools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/filegraph/internal/config"
	"github.com/dusk-indust/filegraph/internal/graph"
	"github.com/dusk-indust/filegraph/internal/logging"
	"github.com/dusk-indust/filegraph/internal/report"
	"github.com/dusk-indust/filegraph/internal/status"
)

// newProject writes a small .claude tree: CLAUDE.md references the session
// state, which references a hook; the hook reads the session state back.
// lonely.md is isolated.
func newProject(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"CLAUDE.md":                        "Start with .claude/context/session-state.md\n",
		".claude/context/session-state.md": "Run .claude/hooks/check.sh\n",
		".claude/hooks/check.sh":           "cat .claude/context/session-state.md\n",
		".claude/context/lonely.md":        "nothing\n",
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return config.Default(root)
}

// setupServerClient wires an MCP server and client together using in-memory
// transports.
func setupServerClient(t *testing.T, cfg *config.Config) *mcp.ClientSession {
	t.Helper()

	server := NewServer(NewService(cfg, logging.Discard(), nil))
	st, ct := mcp.NewInMemoryTransports()
	ctx := context.Background()

	_, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

// callTool invokes a tool and decodes its structured output into out.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args any, out any) {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.False(t, result.IsError, "%s returned an error: %+v", name, result.Content)
	require.NotNil(t, result.StructuredContent)

	raw, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestMCPListTools(t *testing.T) {
	session := setupServerClient(t, newProject(t))

	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		names[i] = tool.Name
	}
	sort.Strings(names)
	assert.Equal(t, []string{"analyze", "dependencies", "impact", "orphans", "scan", "status"}, names)
}

func TestMCPScanThenQuery(t *testing.T) {
	cfg := newProject(t)
	session := setupServerClient(t, cfg)

	var scan ScanOutput
	callTool(t, session, "scan", ScanInput{}, &scan)
	assert.Equal(t, 4, scan.Stats.TotalFiles)
	assert.Equal(t, 3, scan.Stats.TotalEdges)
	assert.Equal(t, 1, scan.Stats.Orphans)
	assert.NotEmpty(t, scan.Digest)

	var deps DependenciesOutput
	callTool(t, session, "dependencies", DependenciesInput{Path: "CLAUDE.md"}, &deps)
	require.Len(t, deps.Chains, 2)
	assert.Equal(t, []string{"CLAUDE.md", ".claude/context/session-state.md"}, deps.Chains[0].Nodes)
	assert.Equal(t, []string{"CLAUDE.md", ".claude/context/session-state.md", ".claude/hooks/check.sh"}, deps.Chains[1].Nodes)
	assert.Equal(t, 2, deps.Chains[1].Depth)

	var impact ImpactOutput
	callTool(t, session, "impact", ImpactInput{ChangedFiles: []string{".claude/hooks/check.sh"}}, &impact)
	assert.Equal(t, []string{".claude/context/session-state.md"}, impact.Impact.DirectlyAffected)
	assert.Equal(t, []string{".claude/context/session-state.md", "CLAUDE.md"}, impact.Impact.TransitivelyAffected)
	assert.InDelta(t, 0.5, impact.Impact.RiskScore, 1e-9)

	var orphans OrphansOutput
	callTool(t, session, "orphans", OrphansInput{Kind: "isolated"}, &orphans)
	assert.Equal(t, 1, orphans.Total)
	assert.Equal(t, 4, orphans.TotalFiles)
	assert.Equal(t, []graph.Orphan{{Path: ".claude/context/lonely.md", Kind: graph.OrphanIsolated}}, orphans.Orphans)

	var st StatusOutput
	callTool(t, session, "status", StatusInput{}, &st)
	assert.Equal(t, status.NextAnalyze, st.Next)

	var an AnalyzeOutput
	callTool(t, session, "analyze", AnalyzeInput{Top: 2}, &an)
	assert.Equal(t, 4, an.Summary.Nodes)
	assert.Len(t, an.TopPageRank, 2)
	assert.Empty(t, an.Degraded)

	callTool(t, session, "status", StatusInput{}, &st)
	assert.Equal(t, status.NextNone, st.Next)
}

func TestService_ErrorsWithoutGraph(t *testing.T) {
	svc := NewService(newProject(t), logging.Discard(), nil)
	ctx := context.Background()

	_, _, err := svc.Analyze(ctx, nil, AnalyzeInput{})
	assert.ErrorIs(t, err, report.ErrGraphNotFound)

	_, _, err = svc.Dependencies(ctx, nil, DependenciesInput{Path: "CLAUDE.md"})
	assert.ErrorIs(t, err, report.ErrGraphNotFound)

	_, _, err = svc.Orphans(ctx, nil, OrphansInput{})
	assert.ErrorIs(t, err, report.ErrGraphNotFound)
}

func TestService_InputValidation(t *testing.T) {
	cfg := newProject(t)
	svc := NewService(cfg, logging.Discard(), nil)
	ctx := context.Background()
	_, _, err := svc.Scan(ctx, nil, ScanInput{})
	require.NoError(t, err)

	_, _, err = svc.Dependencies(ctx, nil, DependenciesInput{})
	assert.Error(t, err)

	_, _, err = svc.Dependencies(ctx, nil, DependenciesInput{Path: "missing.md"})
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)

	_, _, err = svc.Dependencies(ctx, nil, DependenciesInput{Path: "CLAUDE.md", Direction: "sideways"})
	assert.Error(t, err)

	_, _, err = svc.Impact(ctx, nil, ImpactInput{})
	assert.Error(t, err)

	_, _, err = svc.Orphans(ctx, nil, OrphansInput{Kind: "lost"})
	assert.Error(t, err)
}

func TestMCPCallUnknownTool(t *testing.T) {
	session := setupServerClient(t, newProject(t))

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "nonexistent_tool",
		Arguments: map[string]any{},
	})
	if err != nil {
		return
	}
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}
