package appevent

import (
	"path/filepath"
	"strings"

	"github.com/syre-project/engine/pkg/config"
	"github.com/syre-project/engine/pkg/fsevent"
	"github.com/syre-project/engine/pkg/state"
)

// recognizedAnalysisExtensions are the file extensions the analysis
// root recognizes as an analysis entity. Case-insensitive.
var recognizedAnalysisExtensions = map[string]struct{}{
	".py":    {},
	".r":     {},
	".m":     {},
	".jl":    {},
	".ipynb": {},
	".xlsx":  {},
}

// Lift classifies a list of coalesced file-system events against the
// current application state, producing the application-level events
// the reducer's callers act on. Events under an unknown project, or
// that resolve to no application meaning, are dropped — Lift's output
// is always a subset (by count) of its input.
func Lift(appState *state.AppState, events []fsevent.Event, batchID uint64) []Event {
	var out []Event
	for _, e := range events {
		if ev, ok := liftOne(appState, e, batchID); ok {
			out = append(out, ev)
		}
	}
	return out
}

func liftOne(appState *state.AppState, e fsevent.Event, batchID uint64) (Event, bool) {
	primaryPath := e.Path
	if primaryPath == "" {
		primaryPath = e.From
	}

	// A project's own root disappearing or moving takes priority over
	// the ordinary project-owns-this-path routing below: findProject
	// would otherwise treat the root as "found" (a project trivially
	// owns its own path) and hand it to a function with nothing to
	// match it against.
	if ev, ok := liftProjectRootEvent(appState, e, batchID); ok {
		return ev, true
	}

	projectPath, proj, found := findProject(appState, primaryPath)
	if !found {
		return Event{}, false
	}

	body, ok := proj.FsResource.Get()
	if !ok {
		return Event{}, false
	}

	switch e.Kind {
	case fsevent.FolderRenamed, fsevent.FolderMoved:
		return liftFolderRenameOrMove(projectPath, body, e, batchID)
	case fsevent.FileRenamed, fsevent.FileMoved:
		return liftFileRenameOrMove(projectPath, body, e, batchID)
	default:
		return liftSinglePath(projectPath, body, primaryPath, e, batchID)
	}
}

// liftProjectRootEvent handles a project's own root directory
// disappearing or being renamed/relocated on disk.
func liftProjectRootEvent(appState *state.AppState, e fsevent.Event, batchID uint64) (Event, bool) {
	switch e.Kind {
	case fsevent.AnyRemoved, fsevent.FolderRemoved:
		if _, exists := appState.Projects[e.Path]; exists {
			return Event{Kind: ProjectRemoved, ProjectPath: e.Path, Path: e.Path, Time: e.Time, BatchID: batchID}, true
		}
	case fsevent.FolderRenamed, fsevent.FolderMoved:
		if _, exists := appState.Projects[e.From]; exists {
			return Event{Kind: ProjectMoved, ProjectPath: e.To, From: e.From, To: e.To, Time: e.Time, BatchID: batchID}, true
		}
	}
	return Event{}, false
}

// findProject returns the longest project path that is a prefix of
// path, i.e. the project path owns it.
func findProject(appState *state.AppState, path string) (string, *state.ProjectState, bool) {
	var bestPath string
	var best *state.ProjectState
	for p, proj := range appState.Projects {
		if path != p && !isWithinDir(p, path) {
			continue
		}
		if best == nil || len(p) > len(bestPath) {
			bestPath, best = p, proj
		}
	}
	if best == nil {
		return "", nil, false
	}
	return bestPath, best, true
}

// graphPath converts a data-root-relative filesystem path into an
// absolute-graph-path ("/" for the root, "/" + slash-joined components
// otherwise).
func graphPath(rel string) string {
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == "" {
		return "/"
	}
	return "/" + rel
}

func isWithinDir(ancestor, path string) bool {
	rel, err := filepath.Rel(ancestor, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// liftSinglePath handles every single-path fsevent kind (everything
// except the Renamed/Moved pair kinds, which carry both an old and a
// new path and are handled by their own functions).
func liftSinglePath(projectPath string, body state.ProjectBody, path string, e fsevent.Event, batchID uint64) (Event, bool) {
	if ev, ok := liftConfigPath(projectPath, body, path, e, batchID); ok {
		return ev, true
	}
	if ev, ok := liftAnalysisPath(projectPath, body, path, e, batchID); ok {
		return ev, true
	}
	return liftDataPath(projectPath, body, path, e, batchID)
}

// configContext reports whether rel (a path relative to the project
// root) is the project's own resource config directory, or a
// container's — determined by whether the config directory sits
// directly at the project root or nested under the data root.
func configContext(properties state.ProjectProperties, rel string) (absGraphPath string, isContainer bool, ok bool) {
	components := strings.Split(filepath.ToSlash(rel), "/")

	idx := -1
	for i, c := range components {
		if c == config.ResourceConfigDirectory {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", false, false
	}

	containerPath := strings.Join(components[:idx], "/")
	if containerPath == "" {
		return "", false, true
	}

	dataRoot := filepath.ToSlash(properties.DataRoot)
	if dataRoot != "" && (containerPath == dataRoot || strings.HasPrefix(containerPath, dataRoot+"/")) {
		absGraphPath := strings.TrimPrefix(containerPath, dataRoot)
		absGraphPath = strings.Trim(absGraphPath, "/")
		return "/" + absGraphPath, true, true
	}

	// A config directory nested anywhere else in the project (not under
	// the data root) does not correspond to a container; ignore it.
	return "", false, false
}

func configTargetForFile(name string, isContainer bool) (ConfigTarget, bool) {
	switch name {
	case config.ProjectPropertiesFile:
		if isContainer {
			return 0, false
		}
		return ProjectProperties, true
	case config.ProjectSettingsFile:
		if isContainer {
			return 0, false
		}
		return ProjectSettings, true
	case config.AnalysesManifestFile:
		if isContainer {
			return 0, false
		}
		return ProjectAnalysesManifest, true
	case config.ContainerPropertiesFile:
		if !isContainer {
			return 0, false
		}
		return ContainerProperties, true
	case config.ContainerSettingsFile:
		if !isContainer {
			return 0, false
		}
		return ContainerSettings, true
	case config.AssetsManifestFile:
		if !isContainer {
			return 0, false
		}
		return ContainerAssetsManifest, true
	default:
		return 0, false
	}
}

func liftConfigPath(projectPath string, body state.ProjectBody, path string, e fsevent.Event, batchID uint64) (Event, bool) {
	rel, err := filepath.Rel(projectPath, path)
	if err != nil {
		return Event{}, false
	}
	rel = filepath.ToSlash(rel)
	if !strings.Contains(rel, config.ResourceConfigDirectory) {
		return Event{}, false
	}

	properties, _ := body.Properties.Get()
	absGraphPath, isContainer, ok := configContext(properties, rel)
	if !ok {
		return Event{}, false
	}

	name := filepath.Base(path)
	target, ok := configTargetForFile(name, isContainer)
	if !ok {
		return Event{}, false
	}

	return Event{
		Kind:         ConfigChanged,
		ProjectPath:  projectPath,
		AbsGraphPath: absGraphPath,
		ConfigTarget: target,
		Path:         path,
		Time:         e.Time,
		BatchID:      batchID,
	}, true
}

func liftAnalysisPath(projectPath string, body state.ProjectBody, path string, e fsevent.Event, batchID uint64) (Event, bool) {
	properties, ok := body.Properties.Get()
	if !ok || properties.AnalysisRoot == "" {
		return Event{}, false
	}
	analysisRoot := filepath.Join(projectPath, properties.AnalysisRoot)
	if path != analysisRoot && !isWithinDir(analysisRoot, path) {
		return Event{}, false
	}

	ext := strings.ToLower(filepath.Ext(path))
	if _, recognized := recognizedAnalysisExtensions[ext]; !recognized {
		return Event{}, false
	}

	var kind Kind
	switch e.Kind {
	case fsevent.FileCreated, fsevent.FolderCreated:
		kind = AnalysisCreated
	case fsevent.FileRemoved, fsevent.FolderRemoved, fsevent.AnyRemoved:
		kind = AnalysisRemoved
	default:
		return Event{}, false
	}

	return Event{Kind: kind, ProjectPath: projectPath, Path: path, Time: e.Time, BatchID: batchID}, true
}

func liftDataPath(projectPath string, body state.ProjectBody, path string, e fsevent.Event, batchID uint64) (Event, bool) {
	properties, ok := body.Properties.Get()
	if !ok || properties.DataRoot == "" {
		return Event{}, false
	}
	dataRoot := filepath.Join(projectPath, properties.DataRoot)
	if path != dataRoot && !isWithinDir(dataRoot, path) {
		return Event{}, false
	}

	g, ok := body.Graph.Get()
	if !ok {
		return Event{}, false
	}

	rel, err := filepath.Rel(dataRoot, path)
	if err != nil {
		return Event{}, false
	}
	if rel == "." {
		return Event{}, false
	}
	for _, c := range strings.Split(filepath.ToSlash(rel), "/") {
		if c == config.ResourceConfigDirectory {
			return Event{}, false
		}
	}
	absGraphPath := graphPath(rel)
	parentGraphPath := graphPath(filepath.Dir(rel))

	switch e.Kind {
	case fsevent.FolderCreated:
		if _, known := g.Find(absGraphPath); known {
			return Event{}, false
		}
		return Event{Kind: GraphInserted, ProjectPath: projectPath, AbsGraphPath: absGraphPath, Path: path, Time: e.Time, BatchID: batchID}, true

	case fsevent.FolderRemoved, fsevent.AnyRemoved:
		if _, known := g.Find(absGraphPath); known {
			return Event{Kind: GraphRemoved, ProjectPath: projectPath, AbsGraphPath: absGraphPath, Path: path, Time: e.Time, BatchID: batchID}, true
		}
		return liftAssetRemoval(projectPath, g, parentGraphPath, filepath.Base(rel), path, e, batchID)

	case fsevent.FileCreated:
		parentID, known := g.Find(parentGraphPath)
		if known {
			if node, ok := g.Node(parentID); ok {
				if assets, ok := node.Assets.Get(); ok {
					for _, a := range assets {
						if a.Path == filepath.Base(rel) {
							return Event{Kind: AssetReappeared, ProjectPath: projectPath, AbsGraphPath: parentGraphPath, Path: path, Time: e.Time, BatchID: batchID}, true
						}
					}
				}
			}
		}
		return Event{Kind: FileAppeared, ProjectPath: projectPath, AbsGraphPath: parentGraphPath, Path: path, Time: e.Time, BatchID: batchID}, true

	case fsevent.FileRemoved:
		return liftAssetRemoval(projectPath, g, parentGraphPath, filepath.Base(rel), path, e, batchID)

	default:
		return Event{}, false
	}
}

func liftAssetRemoval(projectPath string, g *state.Graph, parentGraphPath, name, path string, e fsevent.Event, batchID uint64) (Event, bool) {
	parentID, known := g.Find(parentGraphPath)
	if !known {
		return Event{}, false
	}
	node, ok := g.Node(parentID)
	if !ok {
		return Event{}, false
	}
	assets, ok := node.Assets.Get()
	if !ok {
		return Event{}, false
	}
	for _, a := range assets {
		if a.Path == name {
			return Event{Kind: AssetRemoved, ProjectPath: projectPath, AbsGraphPath: parentGraphPath, Path: path, Time: e.Time, BatchID: batchID}, true
		}
	}
	return Event{}, false
}

func liftFolderRenameOrMove(projectPath string, body state.ProjectBody, e fsevent.Event, batchID uint64) (Event, bool) {
	properties, ok := body.Properties.Get()
	if !ok || properties.DataRoot == "" {
		return Event{}, false
	}
	dataRoot := filepath.Join(projectPath, properties.DataRoot)
	if !isWithinDir(dataRoot, e.From) {
		return Event{}, false
	}
	g, ok := body.Graph.Get()
	if !ok {
		return Event{}, false
	}

	relFrom, err := filepath.Rel(dataRoot, e.From)
	if err != nil {
		return Event{}, false
	}
	fromGraphPath := graphPath(relFrom)

	if _, known := g.Find(fromGraphPath); !known {
		return Event{}, false
	}

	toGraphPath := fromGraphPath
	if e.To != "" && isWithinDir(dataRoot, e.To) {
		relTo, err := filepath.Rel(dataRoot, e.To)
		if err == nil {
			toGraphPath = graphPath(relTo)
		}
	}

	return Event{
		Kind:             GraphMoved,
		ProjectPath:      projectPath,
		AbsGraphPath:     toGraphPath,
		FromAbsGraphPath: fromGraphPath,
		From:             e.From,
		To:               e.To,
		Time:             e.Time,
		BatchID:          batchID,
	}, true
}

func liftFileRenameOrMove(projectPath string, body state.ProjectBody, e fsevent.Event, batchID uint64) (Event, bool) {
	properties, ok := body.Properties.Get()
	if !ok {
		return Event{}, false
	}
	if properties.AnalysisRoot != "" && isWithinDir(filepath.Join(projectPath, properties.AnalysisRoot), e.From) {
		if _, recognized := recognizedAnalysisExtensions[strings.ToLower(filepath.Ext(e.From))]; !recognized {
			return Event{}, false
		}
		return Event{Kind: AnalysisMoved, ProjectPath: projectPath, From: e.From, To: e.To, Time: e.Time, BatchID: batchID}, true
	}
	if properties.DataRoot == "" {
		return Event{}, false
	}
	dataRoot := filepath.Join(projectPath, properties.DataRoot)
	if !isWithinDir(dataRoot, e.From) {
		return Event{}, false
	}
	g, ok := body.Graph.Get()
	if !ok {
		return Event{}, false
	}

	relFrom, err := filepath.Rel(dataRoot, e.From)
	if err != nil {
		return Event{}, false
	}
	fromParentGraphPath := graphPath(filepath.Dir(relFrom))
	fromName := filepath.Base(relFrom)

	parentID, known := g.Find(fromParentGraphPath)
	if !known {
		return Event{}, false
	}
	node, ok := g.Node(parentID)
	if !ok {
		return Event{}, false
	}
	assets, ok := node.Assets.Get()
	if !ok {
		return Event{}, false
	}
	for _, a := range assets {
		if a.Path != fromName {
			continue
		}

		toGraphPath := fromParentGraphPath
		if e.To != "" && isWithinDir(dataRoot, e.To) {
			if relTo, err := filepath.Rel(dataRoot, e.To); err == nil {
				toGraphPath = graphPath(filepath.Dir(relTo))
			}
		}

		return Event{
			Kind:             AssetMoved,
			ProjectPath:      projectPath,
			AbsGraphPath:     toGraphPath,
			FromAbsGraphPath: fromParentGraphPath,
			From:             e.From,
			To:               e.To,
			Time:             e.Time,
			BatchID:          batchID,
		}, true
	}

	return Event{}, false
}
