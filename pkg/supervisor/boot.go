package supervisor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/syre-project/engine/pkg/config"
	"github.com/syre-project/engine/pkg/manifest"
	"github.com/syre-project/engine/pkg/state"
)

// Bootstrap builds the initial AppState the way pkg/cache/service.go's
// EnsureReady builds its initial file/tag index: a one-time full crawl,
// read before the watcher goes live, so the first batch the watcher
// sees only has to describe what changed since boot rather than
// reconstruct everything from scratch.
func Bootstrap(userManifestPath, projectManifestPath string) *state.AppState {
	appState := state.NewAppState()
	appState.UserManifest = manifest.LoadUserManifest(userManifestPath)
	appState.ProjectManifest = manifest.LoadProjectManifest(projectManifestPath)

	paths, ok := appState.ProjectManifest.Get()
	if !ok {
		return appState
	}
	for _, p := range paths {
		appState.Projects[p] = loadProjectState(p)
	}
	return appState
}

func loadProjectState(path string) *state.ProjectState {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		ps := state.NewAbsentProject(path)
		return &ps
	}

	body := state.NewProjectBody()
	cfgDir := filepath.Join(path, config.ResourceConfigDirectory)
	body.Properties = loadProjectProperties(filepath.Join(cfgDir, config.ProjectPropertiesFile))
	body.Settings = loadProjectSettings(filepath.Join(cfgDir, config.ProjectSettingsFile))

	if props, ok := body.Properties.Get(); ok && props.AnalysisRoot != "" {
		analysisRoot := filepath.Join(path, props.AnalysisRoot)
		analysesManifest := filepath.Join(cfgDir, config.AnalysesManifestFile)
		body.Analyses = loadAnalysesManifestAt(analysesManifest, analysisRoot)
	}

	if props, ok := body.Properties.Get(); ok && props.DataRoot != "" {
		dataRoot := filepath.Join(path, props.DataRoot)
		if g, err := crawlGraph(dataRoot); err == nil {
			body.Graph = state.Present(g)
		}
	}

	return &state.ProjectState{Path: path, FsResource: state.Present(body)}
}

// crawlGraph walks dir depth-first, turning every subdirectory
// (skipping the resource config directory itself) into a ContainerNode
// and grafting it under its parent, mirroring the on-disk tree
// directly. Each node's properties/settings/assets are read the same
// way translateConfigChanged re-reads them after a later change.
func crawlGraph(dir string) (*state.Graph, error) {
	node := state.NewContainerNode(filepath.Base(dir))
	loadContainerInto(dir, node)
	g := state.NewGraph(node)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == config.ResourceConfigDirectory {
			continue
		}
		childDir := filepath.Join(dir, entry.Name())
		childGraph, err := crawlGraph(childDir)
		if err != nil {
			return nil, err
		}
		if err := g.Insert(g.Root(), childGraph); err != nil {
			return nil, fmt.Errorf("insert %s: %w", childDir, err)
		}
	}
	return g, nil
}

func loadContainerInto(dir string, node *state.ContainerNode) {
	cfgDir := filepath.Join(dir, config.ResourceConfigDirectory)
	node.Properties = loadContainerProperties(filepath.Join(cfgDir, config.ContainerPropertiesFile))
	node.Settings = loadContainerSettings(filepath.Join(cfgDir, config.ContainerSettingsFile))
	node.Assets = loadAssetsManifest(filepath.Join(cfgDir, config.AssetsManifestFile))
}
