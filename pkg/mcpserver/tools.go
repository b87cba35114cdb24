package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/syre-project/engine/pkg/state"
	"github.com/syre-project/engine/pkg/supervisor"
)

// WatchResponse is the structured payload for the watch tool.
type WatchResponse struct {
	Path string `json:"path"`
}

// FinalPathResponse is the structured payload for the final_path tool.
type FinalPathResponse struct {
	Path  string `json:"path,omitempty"`
	Found bool   `json:"found"`
}

// ProjectPayload flattens state.ProjectState to a JSON-friendly shape —
// its FolderResource/Data fields carry unexported presence flags that
// don't marshal meaningfully on their own.
type ProjectPayload struct {
	Path      string            `json:"path"`
	Present   bool              `json:"present"`
	Name      string            `json:"name,omitempty"`
	DataRoot  string            `json:"dataRoot,omitempty"`
	Analyses  []AnalysisPayload `json:"analyses,omitempty"`
	Root      *ContainerPayload `json:"root,omitempty"`
	Settings  map[string]any    `json:"settings,omitempty"`
	LoadError string            `json:"loadError,omitempty"`
}

// ContainerPayload flattens state.ContainerNode to a JSON-friendly
// shape.
type ContainerPayload struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Kind        string         `json:"kind,omitempty"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Assets      []AssetPayload `json:"assets,omitempty"`
	LoadError   string         `json:"loadError,omitempty"`
}

// AssetPayload flattens state.Asset to a JSON-friendly shape.
type AssetPayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Path    string `json:"path"`
	Present bool   `json:"present"`
}

// AnalysisPayload flattens state.Analysis to a JSON-friendly shape.
type AnalysisPayload struct {
	ID      string `json:"id"`
	Path    string `json:"path"`
	Present bool   `json:"present"`
}

// SearchHitPayload flattens searchindex.Hit to a JSON-friendly shape.
type SearchHitPayload struct {
	ID    string  `json:"id"`
	Kind  string  `json:"kind"`
	Score float64 `json:"score"`
}

// QueryResponse wraps whichever arm of the query result is populated.
type QueryResponse struct {
	Project   *ProjectPayload    `json:"project,omitempty"`
	Container *ContainerPayload  `json:"container,omitempty"`
	Hits      []SearchHitPayload `json:"hits,omitempty"`
}

func containerPayload(node *state.ContainerNode) ContainerPayload {
	p := ContainerPayload{ID: node.ID().String(), Name: node.Name}
	if props, ok := node.Properties.Get(); ok {
		p.Kind = props.Kind
		p.Description = props.Description
		p.Tags = props.Tags
		p.Metadata = props.Metadata
	} else if loadErr := node.Properties.Error(); loadErr != nil {
		p.LoadError = loadErr.Error()
	}
	if assets, ok := node.Assets.Get(); ok {
		for _, a := range assets {
			p.Assets = append(p.Assets, AssetPayload{
				ID:      a.Properties.ID.String(),
				Name:    a.Properties.Name,
				Path:    a.Path,
				Present: a.FsResource == state.FilePresent,
			})
		}
	}
	return p
}

func projectPayload(proj *state.ProjectState) ProjectPayload {
	p := ProjectPayload{Path: proj.Path}
	body, present := proj.FsResource.Get()
	p.Present = present
	if !present {
		return p
	}
	if props, ok := body.Properties.Get(); ok {
		p.Name = props.Name
		p.DataRoot = props.DataRoot
	} else if loadErr := body.Properties.Error(); loadErr != nil {
		p.LoadError = loadErr.Error()
	}
	if settings, ok := body.Settings.Get(); ok {
		p.Settings = settings.Metadata
	}
	if analyses, ok := body.Analyses.Get(); ok {
		for _, a := range analyses {
			p.Analyses = append(p.Analyses, AnalysisPayload{
				ID:      a.Descriptor.ID().String(),
				Path:    a.Descriptor.Path(),
				Present: a.FsResource == state.FilePresent,
			})
		}
	}
	if g, ok := body.Graph.Get(); ok {
		if root, ok := g.Node(g.Root()); ok {
			rp := containerPayload(root)
			p.Root = &rp
		}
	}
	return p
}

// WatchTool implements the watch MCP tool: register path as a new
// watched root.
func WatchTool(config Config) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		path, ok := args["path"].(string)
		if !ok || path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}

		if err := config.Supervisor.Watch(ctx, path); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("watch failed: %s", err)), nil
		}

		encoded, err := json.Marshal(WatchResponse{Path: path})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("error marshaling response: %s", err)), nil
		}
		return mcp.NewToolResultText(string(encoded)), nil
	}
}

// UnwatchTool implements the unwatch MCP tool: stop watching path and
// every watch beneath it.
func UnwatchTool(config Config) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		path, ok := args["path"].(string)
		if !ok || path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}

		if err := config.Supervisor.Unwatch(ctx, path); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("unwatch failed: %s", err)), nil
		}

		encoded, err := json.Marshal(WatchResponse{Path: path})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("error marshaling response: %s", err)), nil
		}
		return mcp.NewToolResultText(string(encoded)), nil
	}
}

// FinalPathTool implements the final_path MCP tool: resolve path's
// identity to whatever path it currently lives at.
func FinalPathTool(config Config) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		path, ok := args["path"].(string)
		if !ok || path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}

		current, found := config.Supervisor.FinalPath(ctx, path)
		encoded, err := json.Marshal(FinalPathResponse{Path: current, Found: found})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("error marshaling response: %s", err)), nil
		}
		return mcp.NewToolResultText(string(encoded)), nil
	}
}

// QueryTool implements the query MCP tool, the tagged union of
// project-by-id, project-by-path, container-by-path, and search read
// requests.
func QueryTool(config Config) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		kind, _ := args["kind"].(string)

		var q supervisor.Query
		switch kind {
		case "project_by_id":
			id, ok := args["resourceId"].(string)
			if !ok || id == "" {
				return mcp.NewToolResultError("resourceId is required for kind=project_by_id"), nil
			}
			var rid state.ResourceId
			if err := rid.UnmarshalText([]byte(id)); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid resourceId: %s", err)), nil
			}
			q = supervisor.Query{Kind: supervisor.QueryProjectByID, ResourceID: rid}

		case "project_by_path":
			projectPath, _ := args["projectPath"].(string)
			if projectPath == "" {
				return mcp.NewToolResultError("projectPath is required for kind=project_by_path"), nil
			}
			q = supervisor.Query{Kind: supervisor.QueryProjectByPath, ProjectPath: projectPath}

		case "container_by_path":
			projectPath, _ := args["projectPath"].(string)
			absGraphPath, _ := args["absGraphPath"].(string)
			if projectPath == "" {
				return mcp.NewToolResultError("projectPath is required for kind=container_by_path"), nil
			}
			q = supervisor.Query{Kind: supervisor.QueryContainerByPath, ProjectPath: projectPath, AbsGraphPath: absGraphPath}

		case "search":
			text, _ := args["text"].(string)
			if text == "" {
				return mcp.NewToolResultError("text is required for kind=search"), nil
			}
			limit := 0
			if v, ok := args["limit"].(float64); ok {
				limit = int(v)
			}
			q = supervisor.Query{Kind: supervisor.QuerySearch, SearchText: text, SearchLimit: limit}

		default:
			return mcp.NewToolResultError("kind must be one of project_by_id, project_by_path, container_by_path, search"), nil
		}

		result := config.Supervisor.Query(ctx, q)
		if result.Err != nil {
			return mcp.NewToolResultError(result.Err.Error()), nil
		}
		if q.Kind == supervisor.QueryProjectByID && config.Notifier != nil {
			config.Notifier.EnsureProjectTopic(ctx, q.ResourceID)
		}

		var resp QueryResponse
		if result.Project != nil {
			p := projectPayload(result.Project)
			resp.Project = &p
			if q.Kind == supervisor.QueryProjectByPath && config.Notifier != nil {
				if body, ok := result.Project.FsResource.Get(); ok {
					if g, ok := body.Graph.Get(); ok {
						if root, ok := g.Node(g.Root()); ok {
							if props, ok := root.Properties.Get(); ok {
								config.Notifier.EnsureProjectTopic(ctx, props.ID)
							}
						}
					}
				}
			}
		}
		if result.Container != nil {
			c := containerPayload(result.Container)
			resp.Container = &c
		}
		for _, h := range result.Hits {
			resp.Hits = append(resp.Hits, SearchHitPayload{ID: h.ID.String(), Kind: string(h.Kind), Score: h.Score})
		}

		encoded, err := json.Marshal(resp)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("error marshaling response: %s", err)), nil
		}
		return mcp.NewToolResultText(string(encoded)), nil
	}
}
