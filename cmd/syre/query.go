package main

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
	"github.com/syre-project/engine/pkg/identity"
	"github.com/syre-project/engine/pkg/manifest"
	"github.com/syre-project/engine/pkg/mcpserver"
	"github.com/syre-project/engine/pkg/publisher"
	"github.com/syre-project/engine/pkg/rawevent"
	"github.com/syre-project/engine/pkg/supervisor"
)

var (
	queryContainerProjectPath string
	queryAbsGraphPath         string
	queryProjectPath          string
	queryResourceID           string
	querySearchText           string
	querySearchLimit          int
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run one read request against a freshly-crawled engine and print the JSON result",
	Long: `query boots a transient engine from the project manifest (no filesystem
watching, just the initial crawl), runs one read request, prints its JSON
result, and exits. It is the one-shot counterpart to the "query" MCP tool
served by "syre serve" — use that instead for anything that needs to
stay current as files change.

Exactly one of --container, --project, --project-id, or --search selects
the kind of request.`,
	Args: cobra.NoArgs,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryContainerProjectPath, "container", "", "project path, to query a container by its graph path")
	queryCmd.Flags().StringVar(&queryAbsGraphPath, "path", "/", "absolute graph path within the project (used with --container)")
	queryCmd.Flags().StringVar(&queryProjectPath, "project", "", "project path, to query a project by path")
	queryCmd.Flags().StringVar(&queryResourceID, "project-id", "", "project resource id, to query a project by id")
	queryCmd.Flags().StringVar(&querySearchText, "search", "", "search text, to query the search index")
	queryCmd.Flags().IntVar(&querySearchLimit, "limit", 20, "maximum search hits to return (used with --search)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	var request mcp.CallToolRequest
	switch {
	case queryResourceID != "":
		request = mcp.CallToolRequest{Params: mcp.CallToolParams{Name: "query", Arguments: map[string]interface{}{
			"kind": "project_by_id", "resourceId": queryResourceID,
		}}}
	case queryProjectPath != "":
		request = mcp.CallToolRequest{Params: mcp.CallToolParams{Name: "query", Arguments: map[string]interface{}{
			"kind": "project_by_path", "projectPath": queryProjectPath,
		}}}
	case queryContainerProjectPath != "":
		request = mcp.CallToolRequest{Params: mcp.CallToolParams{Name: "query", Arguments: map[string]interface{}{
			"kind": "container_by_path", "projectPath": queryContainerProjectPath, "absGraphPath": queryAbsGraphPath,
		}}}
	case querySearchText != "":
		request = mcp.CallToolRequest{Params: mcp.CallToolParams{Name: "query", Arguments: map[string]interface{}{
			"kind": "search", "text": querySearchText, "limit": float64(querySearchLimit),
		}}}
	default:
		return fmt.Errorf("one of --container, --project, --project-id, or --search is required")
	}

	cfg, cancel, err := bootTransientEngine()
	if err != nil {
		return err
	}
	defer cancel()

	resp, err := mcpserver.QueryTool(cfg)(context.Background(), request)
	if err != nil {
		return err
	}
	text, ok := resp.Content[0].(mcp.TextContent)
	if !ok {
		return fmt.Errorf("unexpected MCP content type %T", resp.Content[0])
	}
	if resp.IsError {
		return fmt.Errorf("%s", text.Text)
	}
	fmt.Println(text.Text)
	return nil
}

// bootTransientEngine bootstraps a full engine (manifests, resolver, raw
// event source, supervisor) scoped to the lifetime of a single CLI
// invocation: Bootstrap's initial crawl populates state from disk, but
// no path is watched and nothing lives past the returned cancel.
func bootTransientEngine() (mcpserver.Config, context.CancelFunc, error) {
	userManifestPath, err := manifest.UserManifestPath()
	if err != nil {
		return mcpserver.Config{}, nil, err
	}
	projectManifestPath, err := manifest.ProjectManifestPath()
	if err != nil {
		return mcpserver.Config{}, nil, err
	}

	appState := supervisor.Bootstrap(userManifestPath, projectManifestPath)
	resolver := identity.NewResolver()
	source, err := rawevent.NewSource(rawevent.Options{Resolver: resolver, DebounceInterval: 300 * time.Millisecond})
	if err != nil {
		return mcpserver.Config{}, nil, err
	}

	pub := publisher.New(appState)
	sup := supervisor.New(appState, pub, resolver, source, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go sup.Run(ctx)

	cleanup := func() {
		cancel()
		source.Close()
	}
	return mcpserver.Config{Supervisor: sup, Publisher: pub}, cleanup, nil
}
