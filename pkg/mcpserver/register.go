package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterAll registers the engine's four client-command tools with s,
// the way the teacher's pkg/mcp/register.go registers its tools:
// mcp.NewTool(...) followed by s.AddTool(tool, handlerFunc).
func RegisterAll(s *server.MCPServer, config Config) error {
	watchTool := mcp.NewTool("watch",
		mcp.WithDescription(`Start watching a project or data-root path for filesystem changes. Once watched, changes under path are coalesced into application events, applied to the engine's in-memory state, and published as update notifications on the appropriate topic. Response: {path}`),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path to watch")),
	)
	s.AddTool(watchTool, WatchTool(config))

	unwatchTool := mcp.NewTool("unwatch",
		mcp.WithDescription(`Stop watching a previously-watched path (and everything beneath it). Response: {path}`),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path to stop watching")),
	)
	s.AddTool(unwatchTool, UnwatchTool(config))

	finalPathTool := mcp.NewTool("final_path",
		mcp.WithDescription(`Resolve a possibly-stale path to the current path of whatever identity used to live there — useful after a rename/move the caller hasn't seen yet. Response: {path?,found}`),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to resolve")),
	)
	s.AddTool(finalPathTool, FinalPathTool(config))

	queryTool := mcp.NewTool("query",
		mcp.WithDescription(`Run one read request against the engine's live state. kind selects the request:
- project_by_id: requires resourceId. Returns {project}.
- project_by_path: requires projectPath. Returns {project}.
- container_by_path: requires projectPath, optional absGraphPath (defaults to the project root, "/"). Returns {container}.
- search: requires text, optional limit. Returns {hits} ranked by the search index (name/kind/description/tags/metadata/asset-path).`),
		mcp.WithString("kind", mcp.Required(), mcp.Description("One of: project_by_id, project_by_path, container_by_path, search")),
		mcp.WithString("resourceId", mcp.Description("Resource id, required for kind=project_by_id")),
		mcp.WithString("projectPath", mcp.Description("Project path, required for kind=project_by_path and kind=container_by_path")),
		mcp.WithString("absGraphPath", mcp.Description("Absolute graph path within the project, for kind=container_by_path (default \"/\")")),
		mcp.WithString("text", mcp.Description("Search text, required for kind=search")),
		mcp.WithNumber("limit", mcp.Description("Maximum search hits to return"), mcp.Min(1)),
	)
	s.AddTool(queryTool, QueryTool(config))

	return nil
}
