// Package supervisor implements the single-writer event loop that ties
// the rest of the pipeline together: it drains raw batches, coalesces
// and lifts them, translates the result into reducer actions, applies
// them to the one AppState, and publishes the effects. This file is the
// translation layer — appevent.Event in, state.AppAction out — grounded
// on original_source's thot_event_processor.rs "ensure resources loaded
// then apply" shape: rather than trust a notification's kind, it
// re-reads whatever on-disk resource file the event concerns.
package supervisor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/syre-project/engine/pkg/appevent"
	"github.com/syre-project/engine/pkg/state"
)

// translate converts one lifted application event into the reducer
// actions that realize it. Most events produce exactly one action; a
// move that also renames produces two, applied in order. Events that
// are informational only (FileAppeared, AnalysisCreated/Removed/Moved)
// return a nil slice and nil error — they change no state, so no
// update is published for them; registering them is a judgment call
// left to the caller (see pkg/appevent's own doc comments).
func translate(appState *state.AppState, ev appevent.Event) ([]state.AppAction, error) {
	switch ev.Kind {
	case appevent.ProjectRemoved:
		// The project's root folder vanished on disk, but it is still
		// registered in the project manifest — mark its fs_resource
		// absent rather than delisting it. Manifest delisting flows
		// through syncProjectsToManifest instead.
		return []state.AppAction{state.ProjectScopedAction{
			Path:   ev.ProjectPath,
			Action: state.RemoveFolderAction{},
		}}, nil

	case appevent.ProjectMoved:
		return []state.AppAction{state.SetProjectPathAction{Old: ev.From, New: ev.To}}, nil

	case appevent.ConfigChanged:
		action, err := translateConfigChanged(appState, ev)
		if err != nil {
			return nil, err
		}
		return []state.AppAction{action}, nil

	case appevent.GraphInserted:
		action, err := translateGraphInserted(ev)
		if err != nil {
			return nil, err
		}
		return []state.AppAction{action}, nil

	case appevent.GraphRemoved:
		return []state.AppAction{wrapContainer(ev.ProjectPath, ev.AbsGraphPath, state.RemoveSubtreeAction{})}, nil

	case appevent.GraphMoved:
		return translateGraphMoved(ev), nil

	case appevent.AssetMoved:
		return translateAssetMoved(appState, ev)

	case appevent.AssetRemoved:
		return translateAssetPresence(appState, ev, false)

	case appevent.AssetReappeared:
		return translateAssetPresence(appState, ev, true)

	default:
		return nil, nil
	}
}

func wrapContainer(projectPath, absGraphPath string, action state.ContainerAction) state.AppAction {
	return state.ProjectScopedAction{
		Path: projectPath,
		Action: state.ContainerScopedAction{
			AbsGraphPath: absGraphPath,
			Action:       action,
		},
	}
}

// splitGraphPath separates an absolute-graph-path into its parent path
// and final component name. "/" has no parent distinct from itself and
// an empty name.
func splitGraphPath(absGraphPath string) (parent, name string) {
	trimmed := strings.Trim(absGraphPath, "/")
	if trimmed == "" {
		return "/", ""
	}
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return "/", trimmed
	}
	return "/" + trimmed[:idx], trimmed[idx+1:]
}

func joinGraphPath(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}

func translateGraphInserted(ev appevent.Event) (state.AppAction, error) {
	parentPath, name := splitGraphPath(ev.AbsGraphPath)
	if name == "" {
		return nil, fmt.Errorf("graph inserted: empty container name at %s", ev.AbsGraphPath)
	}
	node := state.NewContainerNode(name)
	subgraph := state.NewGraph(node)
	return wrapContainer(ev.ProjectPath, parentPath, state.InsertSubgraphAction{Subgraph: subgraph}), nil
}

// translateGraphMoved emits a MoveSubtreeAction when the parent
// changed, a RenameContainerAction when the name changed, both in
// order when a single filesystem rename did both at once.
func translateGraphMoved(ev appevent.Event) []state.AppAction {
	fromParent, fromName := splitGraphPath(ev.FromAbsGraphPath)
	toParent, toName := splitGraphPath(ev.AbsGraphPath)

	var actions []state.AppAction
	cur := ev.FromAbsGraphPath
	if fromParent != toParent {
		actions = append(actions, wrapContainer(ev.ProjectPath, cur, state.MoveSubtreeAction{ToParent: toParent}))
		cur = joinGraphPath(toParent, fromName)
	}
	if fromName != toName {
		actions = append(actions, wrapContainer(ev.ProjectPath, cur, state.RenameContainerAction{NewName: toName}))
	}
	return actions
}

func projectGraph(appState *state.AppState, projectPath string) (*state.Graph, error) {
	proj, ok := appState.Project(projectPath)
	if !ok {
		return nil, fmt.Errorf("unknown project %s", projectPath)
	}
	body, ok := proj.FsResource.Get()
	if !ok {
		return nil, fmt.Errorf("project %s has no loaded body", projectPath)
	}
	g, ok := body.Graph.Get()
	if !ok {
		return nil, fmt.Errorf("project %s has no loaded graph", projectPath)
	}
	return g, nil
}

func containerAssets(g *state.Graph, absGraphPath string) ([]state.Asset, error) {
	id, ok := g.Find(absGraphPath)
	if !ok {
		return nil, fmt.Errorf("container %s not found", absGraphPath)
	}
	node, ok := g.Node(id)
	if !ok {
		return nil, fmt.Errorf("container node %s missing", absGraphPath)
	}
	assets, ok := node.Assets.Get()
	if !ok {
		return nil, fmt.Errorf("container %s has no loaded assets", absGraphPath)
	}
	return assets, nil
}

// translateAssetMoved resolves the moved asset's stable id from the
// source container's loaded asset list, then emits a MoveAssetAction
// (if the container changed) and/or a SetAssetPathAction (if the
// basename changed).
func translateAssetMoved(appState *state.AppState, ev appevent.Event) ([]state.AppAction, error) {
	g, err := projectGraph(appState, ev.ProjectPath)
	if err != nil {
		return nil, fmt.Errorf("asset moved: %w", err)
	}
	assets, err := containerAssets(g, ev.FromAbsGraphPath)
	if err != nil {
		return nil, fmt.Errorf("asset moved: %w", err)
	}

	fromName := filepath.Base(ev.From)
	toName := filepath.Base(ev.To)

	var assetID state.ResourceId
	found := false
	for _, a := range assets {
		if a.Path == fromName {
			assetID, found = a.Properties.ID, true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("asset moved: %s not tracked under %s", fromName, ev.FromAbsGraphPath)
	}

	var actions []state.AppAction
	dest := ev.FromAbsGraphPath
	if ev.FromAbsGraphPath != ev.AbsGraphPath {
		actions = append(actions, wrapContainer(ev.ProjectPath, ev.FromAbsGraphPath, state.MoveAssetAction{ID: assetID, ToContainer: ev.AbsGraphPath}))
		dest = ev.AbsGraphPath
	}
	if fromName != toName {
		actions = append(actions, wrapContainer(ev.ProjectPath, dest, state.SetAssetPathAction{ID: assetID, NewRel: toName}))
	}
	return actions, nil
}

// translateAssetPresence resolves the asset at ev.Path's basename
// within the addressed container and flips its FsResource flag.
func translateAssetPresence(appState *state.AppState, ev appevent.Event, present bool) ([]state.AppAction, error) {
	g, err := projectGraph(appState, ev.ProjectPath)
	if err != nil {
		return nil, fmt.Errorf("asset presence: %w", err)
	}
	assets, err := containerAssets(g, ev.AbsGraphPath)
	if err != nil {
		return nil, fmt.Errorf("asset presence: %w", err)
	}

	name := filepath.Base(ev.Path)
	for _, a := range assets {
		if a.Path == name {
			return []state.AppAction{
				wrapContainer(ev.ProjectPath, ev.AbsGraphPath, state.SetAssetFsResourceAction{ID: a.Properties.ID, Present: present}),
			}, nil
		}
	}
	return nil, fmt.Errorf("asset presence: %s not tracked under %s", name, ev.AbsGraphPath)
}

// translateConfigChanged re-reads the on-disk resource file ev.Path
// names (ev.ConfigTarget says which) and builds the Set*Action that
// brings state in line with it. A missing file becomes a
// NotFoundError, a malformed one a ParseError — both absorbed into the
// corresponding Data field rather than failing the translation, per
// pkg/state's load-error handling.
func translateConfigChanged(appState *state.AppState, ev appevent.Event) (state.AppAction, error) {
	switch ev.ConfigTarget {
	case appevent.ProjectProperties:
		return state.ProjectScopedAction{Path: ev.ProjectPath, Action: state.SetPropertiesAction{Properties: loadProjectProperties(ev.Path)}}, nil

	case appevent.ProjectSettings:
		return state.ProjectScopedAction{Path: ev.ProjectPath, Action: state.SetSettingsAction{Settings: loadProjectSettings(ev.Path)}}, nil

	case appevent.ProjectAnalysesManifest:
		return state.ProjectScopedAction{Path: ev.ProjectPath, Action: state.SetAnalysesAction{Analyses: loadAnalysesManifest(appState, ev)}}, nil

	case appevent.ContainerProperties:
		return wrapContainer(ev.ProjectPath, ev.AbsGraphPath, state.SetContainerPropertiesAction{Properties: loadContainerProperties(ev.Path)}), nil

	case appevent.ContainerSettings:
		return wrapContainer(ev.ProjectPath, ev.AbsGraphPath, state.SetContainerSettingsAction{Settings: loadContainerSettings(ev.Path)}), nil

	case appevent.ContainerAssetsManifest:
		return wrapContainer(ev.ProjectPath, ev.AbsGraphPath, state.SetAssetsAction{Assets: loadAssetsManifest(ev.Path)}), nil

	default:
		return nil, fmt.Errorf("config changed: unrecognized target %s", ev.ConfigTarget.String())
	}
}

func loadProjectProperties(path string) state.Data[state.ProjectProperties] {
	var v state.ProjectProperties
	if loadErr, ok := readJSON(path, &v); !ok {
		return state.Err[state.ProjectProperties](loadErr)
	}
	return state.Ok(v)
}

func loadProjectSettings(path string) state.Data[state.ProjectSettings] {
	var v state.ProjectSettings
	if loadErr, ok := readJSON(path, &v); !ok {
		return state.Err[state.ProjectSettings](loadErr)
	}
	return state.Ok(v)
}

func loadContainerProperties(path string) state.Data[state.ContainerProperties] {
	var v state.ContainerProperties
	if loadErr, ok := readJSON(path, &v); !ok {
		return state.Err[state.ContainerProperties](loadErr)
	}
	return state.Ok(v)
}

func loadContainerSettings(path string) state.Data[state.ContainerSettings] {
	var v state.ContainerSettings
	if loadErr, ok := readJSON(path, &v); !ok {
		return state.Err[state.ContainerSettings](loadErr)
	}
	return state.Ok(v)
}

// readJSON reads and unmarshals the file at path into dst. ok is false
// if the file is missing or malformed, in which case loadErr says
// which.
func readJSON(path string, dst any) (loadErr state.LoadError, ok bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return state.NotFoundError(), false
		}
		return state.ParseError(err), false
	}
	if err := json.Unmarshal(content, dst); err != nil {
		return state.ParseError(err), false
	}
	return state.LoadError{}, true
}

// analysisManifestEntry is the on-disk shape of one analyses.json
// element; Kind selects which AnalysisDescriptor it decodes to.
type analysisManifestEntry struct {
	ID   state.ResourceId `json:"id"`
	Kind string           `json:"kind"`
	Path string           `json:"path"`
	Name string           `json:"name"`
}

func loadAnalysesManifest(appState *state.AppState, ev appevent.Event) state.Data[[]state.Analysis] {
	analysisRoot := ev.ProjectPath
	if proj, ok := appState.Project(ev.ProjectPath); ok {
		if body, ok := proj.FsResource.Get(); ok {
			if props, ok := body.Properties.Get(); ok && props.AnalysisRoot != "" {
				analysisRoot = filepath.Join(ev.ProjectPath, props.AnalysisRoot)
			}
		}
	}
	return loadAnalysesManifestAt(ev.Path, analysisRoot)
}

// loadAnalysesManifestAt reads manifestPath (a project's analyses.json)
// and resolves each entry's presence against analysisRoot, the absolute
// directory analysis paths are relative to. Split out from
// loadAnalysesManifest so the boot-time crawl, which hasn't inserted
// the project into AppState yet, can call it directly.
func loadAnalysesManifestAt(manifestPath, analysisRoot string) state.Data[[]state.Analysis] {
	content, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return state.Err[[]state.Analysis](state.NotFoundError())
		}
		return state.Err[[]state.Analysis](state.ParseError(err))
	}
	var entries []analysisManifestEntry
	if err := json.Unmarshal(content, &entries); err != nil {
		return state.Err[[]state.Analysis](state.ParseError(err))
	}

	out := make([]state.Analysis, 0, len(entries))
	for _, e := range entries {
		var descriptor state.AnalysisDescriptor
		switch e.Kind {
		case "excel_template":
			descriptor = state.ExcelTemplateAnalysis{AnalysisID: e.ID, RelativePath: e.Path, Name: e.Name}
		default:
			descriptor = state.ScriptAnalysis{AnalysisID: e.ID, RelativePath: e.Path, Name: e.Name}
		}
		if _, err := os.Stat(filepath.Join(analysisRoot, e.Path)); err == nil {
			out = append(out, state.PresentAnalysis(descriptor))
		} else {
			out = append(out, state.AbsentAnalysis(descriptor))
		}
	}
	return state.Ok(out)
}

// assetManifestEntry is the on-disk shape of one assets.json element.
type assetManifestEntry struct {
	Properties state.AssetProperties `json:"properties"`
	Path       string                `json:"path"`
}

func loadAssetsManifest(path string) state.Data[[]state.Asset] {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return state.Err[[]state.Asset](state.NotFoundError())
		}
		return state.Err[[]state.Asset](state.ParseError(err))
	}
	var entries []assetManifestEntry
	if err := json.Unmarshal(content, &entries); err != nil {
		return state.Err[[]state.Asset](state.ParseError(err))
	}

	// The assets manifest lives at <container>/.syre/assets.json; asset
	// paths are relative to the container folder, one level up.
	containerDir := filepath.Dir(filepath.Dir(path))

	out := make([]state.Asset, 0, len(entries))
	for _, e := range entries {
		resource := state.FileAbsent
		if _, err := os.Stat(filepath.Join(containerDir, e.Path)); err == nil {
			resource = state.FilePresent
		}
		out = append(out, state.Asset{Properties: e.Properties, Path: e.Path, FsResource: resource})
	}
	return state.Ok(out)
}
