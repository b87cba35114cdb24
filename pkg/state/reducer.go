package state

import (
	"fmt"

	"github.com/syre-project/engine/pkg/syreerr"
)

// TryReduce is the only way AppState may be mutated. It applies one
// action, enforces every state invariant, and returns the
// semantic effects of a successful application. On invariant violation
// it returns syreerr.ErrInvalidTransition and leaves state unchanged.
func (s *AppState) TryReduce(action AppAction) (EffectLog, error) {
	switch a := action.(type) {
	case UserManifestAction:
		updated, err := applyManifest(s.UserManifest, a.Action)
		if err != nil {
			return nil, err
		}
		s.UserManifest = updated
		return EffectLog{{Kind: UpdateUserManifestChanged}}, nil

	case ProjectManifestAction:
		updated, err := applyManifest(s.ProjectManifest, a.Action)
		if err != nil {
			return nil, err
		}
		if paths, ok := updated.Get(); ok {
			s.syncProjectsToManifest(paths)
		}
		s.ProjectManifest = updated
		return EffectLog{{Kind: UpdateProjectManifestChanged}}, nil

	case InsertProjectAction:
		if _, exists := s.Projects[a.Path]; exists {
			return nil, fmt.Errorf("%w: project already exists at %s", syreerr.ErrInvalidTransition, a.Path)
		}
		body := a.Body
		s.Projects[a.Path] = &body
		return EffectLog{{Kind: UpdateProjectInserted, ProjectPath: a.Path}}, nil

	case RemoveProjectAction:
		if _, exists := s.Projects[a.Path]; !exists {
			return nil, fmt.Errorf("%w: project not found at %s", syreerr.ErrInvalidTransition, a.Path)
		}
		delete(s.Projects, a.Path)
		return EffectLog{{Kind: UpdateProjectRemoved, ProjectPath: a.Path}}, nil

	case SetProjectPathAction:
		proj, exists := s.Projects[a.Old]
		if !exists {
			return nil, fmt.Errorf("%w: project not found at %s", syreerr.ErrInvalidTransition, a.Old)
		}
		if _, collide := s.Projects[a.New]; collide {
			return nil, fmt.Errorf("%w: project already exists at %s", syreerr.ErrInvalidTransition, a.New)
		}
		proj.Path = a.New
		delete(s.Projects, a.Old)
		s.Projects[a.New] = proj
		return EffectLog{{Kind: UpdateProjectPathChanged, ProjectPath: a.New}}, nil

	case ProjectScopedAction:
		proj, exists := s.Projects[a.Path]
		if !exists {
			return nil, fmt.Errorf("%w: project not found at %s", syreerr.ErrInvalidTransition, a.Path)
		}
		return reduceProject(a.Path, proj, a.Action)

	default:
		return nil, fmt.Errorf("%w: unknown action type %T", syreerr.ErrInvalidTransition, action)
	}
}

// applyManifest applies one ManifestAction to a Data[[]T]-shaped
// manifest, never mutating the slice backing d in place.
func applyManifest[T any](d Data[[]T], act ManifestAction[T]) (Data[[]T], error) {
	switch act.Op {
	case ManifestAddItem:
		items, _ := d.Get()
		out := append(append([]T(nil), items...), act.Item)
		return Ok(out), nil

	case ManifestRemoveItem:
		items, ok := d.Get()
		if !ok || act.Index < 0 || act.Index >= len(items) {
			return d, fmt.Errorf("%w: manifest index out of range", syreerr.ErrInvalidTransition)
		}
		out := append(append([]T(nil), items[:act.Index]...), items[act.Index+1:]...)
		return Ok(out), nil

	case ManifestReplaceAll:
		return Ok(append([]T(nil), act.Items...)), nil

	case ManifestSetError:
		return Err[[]T](act.LoadErr), nil

	case ManifestSetOk:
		return Ok(append([]T(nil), act.Items...)), nil

	default:
		return d, fmt.Errorf("%w: unknown manifest op", syreerr.ErrInvalidTransition)
	}
}

// syncProjectsToManifest keeps invariant 1 (every manifest path has a
// projects entry and vice versa) after a project_manifest update:
// newly-listed paths get an absent placeholder, delisted paths are
// dropped along with whatever body they held.
func (s *AppState) syncProjectsToManifest(paths []string) {
	wanted := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		wanted[p] = struct{}{}
		if _, exists := s.Projects[p]; !exists {
			proj := NewAbsentProject(p)
			s.Projects[p] = &proj
		}
	}
	for p := range s.Projects {
		if _, ok := wanted[p]; !ok {
			delete(s.Projects, p)
		}
	}
}

func reduceProject(path string, proj *ProjectState, action ProjectAction) (EffectLog, error) {
	switch a := action.(type) {
	case RemoveFolderAction:
		proj.FsResource = Absent[ProjectBody]()
		return EffectLog{{Kind: UpdateProjectFolderChanged, ProjectPath: path}}, nil

	case CreateFolderAction:
		proj.FsResource = Present(a.Body)
		return EffectLog{{Kind: UpdateProjectFolderChanged, ProjectPath: path}}, nil

	case RemoveConfigAction:
		body, ok := proj.FsResource.Get()
		if !ok {
			return nil, fmt.Errorf("%w: project folder absent at %s", syreerr.ErrInvalidTransition, path)
		}
		body.Properties = Err[ProjectProperties](NotFoundError())
		body.Settings = Err[ProjectSettings](NotFoundError())
		body.Analyses = Err[[]Analysis](NotFoundError())
		body.Graph = Absent[*Graph]()
		proj.FsResource = Present(body)
		return EffectLog{{Kind: UpdateProjectFolderChanged, ProjectPath: path}}, nil

	case SetPropertiesAction:
		body, ok := proj.FsResource.Get()
		if !ok {
			return nil, fmt.Errorf("%w: project folder absent at %s", syreerr.ErrInvalidTransition, path)
		}
		body.Properties = a.Properties
		proj.FsResource = Present(body)
		return EffectLog{{Kind: UpdateProjectPropertiesChanged, ProjectPath: path}}, nil

	case SetSettingsAction:
		body, ok := proj.FsResource.Get()
		if !ok {
			return nil, fmt.Errorf("%w: project folder absent at %s", syreerr.ErrInvalidTransition, path)
		}
		body.Settings = a.Settings
		proj.FsResource = Present(body)
		return EffectLog{{Kind: UpdateProjectSettingsChanged, ProjectPath: path}}, nil

	case SetAnalysesAction:
		body, ok := proj.FsResource.Get()
		if !ok {
			return nil, fmt.Errorf("%w: project folder absent at %s", syreerr.ErrInvalidTransition, path)
		}
		body.Analyses = a.Analyses
		proj.FsResource = Present(body)
		return EffectLog{{Kind: UpdateProjectAnalysesChanged, ProjectPath: path}}, nil

	case SetAnalysesAbsentAction:
		body, ok := proj.FsResource.Get()
		if !ok {
			return nil, fmt.Errorf("%w: project folder absent at %s", syreerr.ErrInvalidTransition, path)
		}
		body.Analyses = Err[[]Analysis](NotFoundError())
		proj.FsResource = Present(body)
		return EffectLog{{Kind: UpdateProjectAnalysesChanged, ProjectPath: path}}, nil

	case SetGraphAction:
		body, ok := proj.FsResource.Get()
		if !ok {
			return nil, fmt.Errorf("%w: project folder absent at %s", syreerr.ErrInvalidTransition, path)
		}
		if a.Graph.IsPresent() {
			if _, propsOK := body.Properties.Get(); !propsOK {
				return nil, fmt.Errorf("%w: graph requires Ok properties at %s", syreerr.ErrInvalidTransition, path)
			}
		}
		body.Graph = a.Graph
		proj.FsResource = Present(body)
		return EffectLog{{Kind: UpdateProjectGraphChanged, ProjectPath: path}}, nil

	case ContainerScopedAction:
		body, ok := proj.FsResource.Get()
		if !ok {
			return nil, fmt.Errorf("%w: project folder absent at %s", syreerr.ErrInvalidTransition, path)
		}
		g, present := body.Graph.Get()
		if !present {
			return nil, fmt.Errorf("%w: graph absent at %s", syreerr.ErrInvalidTransition, path)
		}
		nodeID, found := g.Find(a.AbsGraphPath)
		if !found {
			return nil, fmt.Errorf("%w: container not found at %s", syreerr.ErrInvalidTransition, a.AbsGraphPath)
		}
		effects, err := reduceContainer(path, a.AbsGraphPath, g, nodeID, a.Action)
		if err != nil {
			return nil, err
		}
		body.Graph = Present(g)
		proj.FsResource = Present(body)
		return effects, nil

	default:
		return nil, fmt.Errorf("%w: unknown project action %T", syreerr.ErrInvalidTransition, action)
	}
}

func reduceContainer(projectPath, absGraphPath string, g *Graph, nodeID NodeID, action ContainerAction) (EffectLog, error) {
	node, _ := g.Node(nodeID)

	switch a := action.(type) {
	case SetContainerPropertiesAction:
		node.Properties = a.Properties
		return EffectLog{{Kind: UpdateContainerPropertiesChanged, ProjectPath: projectPath, AbsGraphPath: absGraphPath, ResourceID: nodeID}}, nil

	case SetContainerSettingsAction:
		node.Settings = a.Settings
		return EffectLog{{Kind: UpdateContainerSettingsChanged, ProjectPath: projectPath, AbsGraphPath: absGraphPath, ResourceID: nodeID}}, nil

	case SetAssetsAction:
		if assets, ok := a.Assets.Get(); ok {
			if dup, path := firstDuplicatePath(assets); dup {
				return nil, fmt.Errorf("%w: duplicate asset path %s", syreerr.ErrInvalidTransition, path)
			}
		}
		node.Assets = a.Assets
		return EffectLog{{Kind: UpdateContainerAssetsChanged, ProjectPath: projectPath, AbsGraphPath: absGraphPath, ResourceID: nodeID}}, nil

	case ContainerRemoveConfigAction:
		node.Properties = Err[ContainerProperties](NotFoundError())
		node.Settings = Err[ContainerSettings](NotFoundError())
		node.Assets = Err[[]Asset](NotFoundError())
		return EffectLog{{Kind: UpdateContainerPropertiesChanged, ProjectPath: projectPath, AbsGraphPath: absGraphPath, ResourceID: nodeID}}, nil

	case InsertSubgraphAction:
		if err := g.Insert(nodeID, a.Subgraph); err != nil {
			return nil, fmt.Errorf("%w: %v", syreerr.ErrInvalidTransition, err)
		}
		return EffectLog{{Kind: UpdateSubgraphInserted, ProjectPath: projectPath, AbsGraphPath: absGraphPath, ResourceID: a.Subgraph.Root()}}, nil

	case RemoveSubtreeAction:
		if err := g.Remove(nodeID); err != nil {
			return nil, fmt.Errorf("%w: %v", syreerr.ErrInvalidTransition, err)
		}
		return EffectLog{{Kind: UpdateSubtreeRemoved, ProjectPath: projectPath, AbsGraphPath: absGraphPath, ResourceID: nodeID}}, nil

	case MoveSubtreeAction:
		newParent, found := g.Find(a.ToParent)
		if !found {
			return nil, fmt.Errorf("%w: move target parent not found: %s", syreerr.ErrInvalidTransition, a.ToParent)
		}
		if err := g.Move(nodeID, newParent); err != nil {
			return nil, fmt.Errorf("%w: %v", syreerr.ErrInvalidTransition, err)
		}
		return EffectLog{{Kind: UpdateSubtreeMoved, ProjectPath: projectPath, AbsGraphPath: a.ToParent, ResourceID: nodeID}}, nil

	case RenameContainerAction:
		if err := g.Rename(nodeID, a.NewName); err != nil {
			return nil, fmt.Errorf("%w: %v", syreerr.ErrInvalidTransition, err)
		}
		return EffectLog{{Kind: UpdateContainerRenamed, ProjectPath: projectPath, AbsGraphPath: absGraphPath, ResourceID: nodeID}}, nil

	case AddAssetAction:
		assets, _ := node.Assets.Get()
		for _, existing := range assets {
			if existing.Path == a.Asset.Path {
				return nil, fmt.Errorf("%w: duplicate asset path %s", syreerr.ErrInvalidTransition, a.Asset.Path)
			}
		}
		node.Assets = Ok(append(append([]Asset(nil), assets...), a.Asset))
		return EffectLog{{Kind: UpdateAssetAdded, ProjectPath: projectPath, AbsGraphPath: absGraphPath, ResourceID: a.Asset.Properties.ID}}, nil

	case RemoveAssetAction:
		assets, ok := node.Assets.Get()
		if !ok {
			return nil, fmt.Errorf("%w: no assets at %s", syreerr.ErrInvalidTransition, absGraphPath)
		}
		idx := indexOfAsset(assets, a.ID)
		if idx < 0 {
			return nil, fmt.Errorf("%w: asset not found", syreerr.ErrInvalidTransition)
		}
		node.Assets = Ok(append(append([]Asset(nil), assets[:idx]...), assets[idx+1:]...))
		return EffectLog{{Kind: UpdateAssetRemoved, ProjectPath: projectPath, AbsGraphPath: absGraphPath, ResourceID: a.ID}}, nil

	case SetAssetPathAction:
		assets, ok := node.Assets.Get()
		if !ok {
			return nil, fmt.Errorf("%w: no assets at %s", syreerr.ErrInvalidTransition, absGraphPath)
		}
		for _, asset := range assets {
			if asset.Path == a.NewRel && asset.Properties.ID != a.ID {
				return nil, fmt.Errorf("%w: duplicate asset path %s", syreerr.ErrInvalidTransition, a.NewRel)
			}
		}
		idx := indexOfAsset(assets, a.ID)
		if idx < 0 {
			return nil, fmt.Errorf("%w: asset not found", syreerr.ErrInvalidTransition)
		}
		updated := append([]Asset(nil), assets...)
		updated[idx].Path = a.NewRel
		node.Assets = Ok(updated)
		return EffectLog{{Kind: UpdateAssetPathChanged, ProjectPath: projectPath, AbsGraphPath: absGraphPath, ResourceID: a.ID}}, nil

	case MoveAssetAction:
		targetID, found := g.Find(a.ToContainer)
		if !found {
			return nil, fmt.Errorf("%w: move target container not found: %s", syreerr.ErrInvalidTransition, a.ToContainer)
		}
		targetNode, _ := g.Node(targetID)

		assets, ok := node.Assets.Get()
		if !ok {
			return nil, fmt.Errorf("%w: no assets at %s", syreerr.ErrInvalidTransition, absGraphPath)
		}
		idx := indexOfAsset(assets, a.ID)
		if idx < 0 {
			return nil, fmt.Errorf("%w: asset not found", syreerr.ErrInvalidTransition)
		}
		moved := assets[idx]

		targetAssets, _ := targetNode.Assets.Get()
		for _, existing := range targetAssets {
			if existing.Path == moved.Path {
				return nil, fmt.Errorf("%w: duplicate asset path %s at move target", syreerr.ErrInvalidTransition, moved.Path)
			}
		}

		node.Assets = Ok(append(append([]Asset(nil), assets[:idx]...), assets[idx+1:]...))
		targetNode.Assets = Ok(append(append([]Asset(nil), targetAssets...), moved))
		return EffectLog{{Kind: UpdateAssetMoved, ProjectPath: projectPath, AbsGraphPath: absGraphPath, ResourceID: a.ID}}, nil

	case SetAssetFsResourceAction:
		assets, ok := node.Assets.Get()
		if !ok {
			return nil, fmt.Errorf("%w: no assets at %s", syreerr.ErrInvalidTransition, absGraphPath)
		}
		idx := indexOfAsset(assets, a.ID)
		if idx < 0 {
			return nil, fmt.Errorf("%w: asset not found", syreerr.ErrInvalidTransition)
		}
		updated := append([]Asset(nil), assets...)
		if a.Present {
			updated[idx].FsResource = FilePresent
		} else {
			updated[idx].FsResource = FileAbsent
		}
		node.Assets = Ok(updated)
		return EffectLog{{Kind: UpdateAssetFsResourceChanged, ProjectPath: projectPath, AbsGraphPath: absGraphPath, ResourceID: a.ID}}, nil

	default:
		return nil, fmt.Errorf("%w: unknown container action %T", syreerr.ErrInvalidTransition, action)
	}
}

func indexOfAsset(assets []Asset, id ResourceId) int {
	for i, asset := range assets {
		if asset.Properties.ID == id {
			return i
		}
	}
	return -1
}

func firstDuplicatePath(assets []Asset) (bool, string) {
	seen := make(map[string]struct{}, len(assets))
	for _, asset := range assets {
		if _, dup := seen[asset.Path]; dup {
			return true, asset.Path
		}
		seen[asset.Path] = struct{}{}
	}
	return false, ""
}
