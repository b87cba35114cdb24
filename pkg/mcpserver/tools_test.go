package mcpserver_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"
	"github.com/syre-project/engine/pkg/config"
	"github.com/syre-project/engine/pkg/identity"
	"github.com/syre-project/engine/pkg/mcpserver"
	"github.com/syre-project/engine/pkg/publisher"
	"github.com/syre-project/engine/pkg/rawevent"
	"github.com/syre-project/engine/pkg/state"
	"github.com/syre-project/engine/pkg/supervisor"
)

func writeTestJSON(t *testing.T, path string, v any) {
	t.Helper()
	content, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

func runningConfig(t *testing.T, projectRoot string) mcpserver.Config {
	t.Helper()
	manifestDir := t.TempDir()
	projectsPath := filepath.Join(manifestDir, "projects.json")
	var paths []string
	if projectRoot != "" {
		paths = []string{projectRoot}
	}
	writeTestJSON(t, projectsPath, paths)

	appState := supervisor.Bootstrap(filepath.Join(manifestDir, "users.json"), projectsPath)

	resolver := identity.NewResolver()
	source, err := rawevent.NewSource(rawevent.Options{Resolver: resolver, DebounceInterval: 10 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = source.Close() })

	pub := publisher.New(appState)
	sup := supervisor.New(appState, pub, resolver, source, nil)

	s := server.NewMCPServer("test-syre-engine", "v0.0.0", server.WithToolCapabilities(false))
	notifier := mcpserver.NewNotifier(s, pub)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	notifier.Start(ctx)
	go sup.Run(ctx)

	return mcpserver.Config{Supervisor: sup, Publisher: pub, Notifier: notifier}
}

func callTool(t *testing.T, name string, tool func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) string {
	t.Helper()
	req := mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}}
	resp, err := tool(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Content, 1)
	text, ok := resp.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", resp.Content[0])
	return text.Text
}

func TestWatchAndUnwatchTool(t *testing.T) {
	dir := t.TempDir()
	cfg := runningConfig(t, "")

	out := callTool(t, "watch", mcpserver.WatchTool(cfg), map[string]interface{}{"path": dir})
	var watchResp mcpserver.WatchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &watchResp))
	require.Equal(t, dir, watchResp.Path)

	out = callTool(t, "unwatch", mcpserver.UnwatchTool(cfg), map[string]interface{}{"path": dir})
	require.NoError(t, json.Unmarshal([]byte(out), &watchResp))
	require.Equal(t, dir, watchResp.Path)
}

func TestFinalPathToolUnknownPathNotFound(t *testing.T) {
	cfg := runningConfig(t, "")
	out := callTool(t, "final_path", mcpserver.FinalPathTool(cfg), map[string]interface{}{"path": "/never/seen"})

	var resp mcpserver.FinalPathResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.False(t, resp.Found)
}

func TestQueryToolContainerByPath(t *testing.T) {
	projectRoot := t.TempDir()
	dataRoot := filepath.Join(projectRoot, "data")
	require.NoError(t, os.MkdirAll(dataRoot, 0o755))
	writeTestJSON(t, filepath.Join(projectRoot, config.ResourceConfigDirectory, config.ProjectPropertiesFile),
		state.ProjectProperties{Name: "proj", DataRoot: "data"})

	cfg := runningConfig(t, projectRoot)

	out := callTool(t, "query", mcpserver.QueryTool(cfg), map[string]interface{}{
		"kind":        "container_by_path",
		"projectPath": projectRoot,
	})

	var resp mcpserver.QueryResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Container)
}

func TestQueryToolSearchWithoutIndexErrors(t *testing.T) {
	cfg := runningConfig(t, "")
	req := mcp.CallToolRequest{Params: mcp.CallToolParams{Name: "query", Arguments: map[string]interface{}{
		"kind": "search",
		"text": "anything",
	}}}

	resp, err := mcpserver.QueryTool(cfg)(context.Background(), req)
	require.NoError(t, err)
	require.True(t, resp.IsError)
}
