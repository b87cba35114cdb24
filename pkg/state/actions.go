package state

// AppAction is the root of the reducer's action hierarchy, sealed to the
// types in this file via the unexported isAppAction marker — the Go
// substitute for the closed Action enum of
// local/database/src/server/state/action.rs.
type AppAction interface {
	isAppAction()
}

// ManifestOp enumerates the operations available on a flat manifest
// (user_manifest or project_manifest).
type ManifestOp int

const (
	ManifestAddItem ManifestOp = iota
	ManifestRemoveItem
	ManifestReplaceAll
	ManifestSetError
	ManifestSetOk
)

// ManifestAction mutates one Data[[]T]-shaped manifest. T is UserRecord
// for the user manifest, string (an absolute project path) for the
// project manifest.
type ManifestAction[T any] struct {
	Op      ManifestOp
	Item    T
	Index   int
	Items   []T
	LoadErr LoadError
}

type UserManifestAction struct{ Action ManifestAction[UserRecord] }

func (UserManifestAction) isAppAction() {}

type ProjectManifestAction struct{ Action ManifestAction[string] }

func (ProjectManifestAction) isAppAction() {}

// InsertProjectAction adds a new project at Path. Rejected if Path is
// already present (invariant 1).
type InsertProjectAction struct {
	Path string
	Body ProjectState
}

func (InsertProjectAction) isAppAction() {}

// RemoveProjectAction drops the project at Path entirely.
type RemoveProjectAction struct{ Path string }

func (RemoveProjectAction) isAppAction() {}

// SetProjectPathAction renames a project's own path without touching
// its body.
type SetProjectPathAction struct{ Old, New string }

func (SetProjectPathAction) isAppAction() {}

// ProjectScopedAction routes a ProjectAction to the project at Path.
type ProjectScopedAction struct {
	Path   string
	Action ProjectAction
}

func (ProjectScopedAction) isAppAction() {}

// ProjectAction is the sealed hierarchy of mutations on one ProjectState.
type ProjectAction interface {
	isProjectAction()
}

type RemoveFolderAction struct{}

func (RemoveFolderAction) isProjectAction() {}

type CreateFolderAction struct{ Body ProjectBody }

func (CreateFolderAction) isProjectAction() {}

// RemoveConfigAction clears a project's loaded properties/settings/
// analyses/graph back to NotFound, without changing fs_resource.
type RemoveConfigAction struct{}

func (RemoveConfigAction) isProjectAction() {}

type SetPropertiesAction struct{ Properties Data[ProjectProperties] }

func (SetPropertiesAction) isProjectAction() {}

type SetSettingsAction struct{ Settings Data[ProjectSettings] }

func (SetSettingsAction) isProjectAction() {}

type SetAnalysesAction struct{ Analyses Data[[]Analysis] }

func (SetAnalysesAction) isProjectAction() {}

type SetAnalysesAbsentAction struct{}

func (SetAnalysesAbsentAction) isProjectAction() {}

// SetGraphAction sets or clears a project's graph. Setting Present
// requires properties already Ok (invariant 2).
type SetGraphAction struct{ Graph FolderResource[*Graph] }

func (SetGraphAction) isProjectAction() {}

// ContainerScopedAction routes a ContainerAction to the container found
// at AbsGraphPath within the project's graph.
type ContainerScopedAction struct {
	AbsGraphPath string
	Action       ContainerAction
}

func (ContainerScopedAction) isProjectAction() {}

// ContainerAction is the sealed hierarchy of mutations on one
// ContainerNode.
type ContainerAction interface {
	isContainerAction()
}

type SetContainerPropertiesAction struct{ Properties Data[ContainerProperties] }

func (SetContainerPropertiesAction) isContainerAction() {}

type SetContainerSettingsAction struct{ Settings Data[ContainerSettings] }

func (SetContainerSettingsAction) isContainerAction() {}

type SetAssetsAction struct{ Assets Data[[]Asset] }

func (SetAssetsAction) isContainerAction() {}

// ContainerRemoveConfigAction clears a container's loaded properties/
// settings/assets back to NotFound.
type ContainerRemoveConfigAction struct{}

func (ContainerRemoveConfigAction) isContainerAction() {}

// InsertSubgraphAction grafts Subgraph as a new child of the addressed
// container.
type InsertSubgraphAction struct{ Subgraph *Graph }

func (InsertSubgraphAction) isContainerAction() {}

// RemoveSubtreeAction removes the addressed container and its entire
// descendant subtree.
type RemoveSubtreeAction struct{}

func (RemoveSubtreeAction) isContainerAction() {}

// MoveSubtreeAction relocates the addressed container to be a child of
// the container found at ToParent.
type MoveSubtreeAction struct{ ToParent string }

func (MoveSubtreeAction) isContainerAction() {}

// RenameContainerAction changes the addressed container's on-disk name,
// not its id.
type RenameContainerAction struct{ NewName string }

func (RenameContainerAction) isContainerAction() {}

type AddAssetAction struct{ Asset Asset }

func (AddAssetAction) isContainerAction() {}

type RemoveAssetAction struct{ ID ResourceId }

func (RemoveAssetAction) isContainerAction() {}

type SetAssetPathAction struct {
	ID     ResourceId
	NewRel string
}

func (SetAssetPathAction) isContainerAction() {}

// SetAssetFsResourceAction flips one asset's backing-file presence flag
// without touching its identity, properties, or path — the action
// behind Open Question decision 2: a disappeared asset's file is marked
// Absent, never removed, and a later reappearance flips it back to
// Present by the same mechanism.
type SetAssetFsResourceAction struct {
	ID      ResourceId
	Present bool
}

func (SetAssetFsResourceAction) isContainerAction() {}

// MoveAssetAction relocates one asset from the addressed container to
// the container found at ToContainer, preserving the asset's id.
type MoveAssetAction struct {
	ID          ResourceId
	ToContainer string
}

func (MoveAssetAction) isContainerAction() {}
