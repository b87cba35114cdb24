package state

// UpdateKind classifies one semantic effect of a successful TryReduce.
type UpdateKind int

const (
	UpdateUserManifestChanged UpdateKind = iota
	UpdateProjectManifestChanged
	UpdateProjectInserted
	UpdateProjectRemoved
	UpdateProjectPathChanged
	UpdateProjectFolderChanged
	UpdateProjectPropertiesChanged
	UpdateProjectSettingsChanged
	UpdateProjectAnalysesChanged
	UpdateProjectGraphChanged
	UpdateContainerPropertiesChanged
	UpdateContainerSettingsChanged
	UpdateContainerAssetsChanged
	UpdateSubgraphInserted
	UpdateSubtreeRemoved
	UpdateSubtreeMoved
	UpdateContainerRenamed
	UpdateAssetAdded
	UpdateAssetRemoved
	UpdateAssetPathChanged
	UpdateAssetMoved
	UpdateAssetFsResourceChanged
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateUserManifestChanged:
		return "user_manifest_changed"
	case UpdateProjectManifestChanged:
		return "project_manifest_changed"
	case UpdateProjectInserted:
		return "project_inserted"
	case UpdateProjectRemoved:
		return "project_removed"
	case UpdateProjectPathChanged:
		return "project_path_changed"
	case UpdateProjectFolderChanged:
		return "project_folder_changed"
	case UpdateProjectPropertiesChanged:
		return "project_properties_changed"
	case UpdateProjectSettingsChanged:
		return "project_settings_changed"
	case UpdateProjectAnalysesChanged:
		return "project_analyses_changed"
	case UpdateProjectGraphChanged:
		return "project_graph_changed"
	case UpdateContainerPropertiesChanged:
		return "container_properties_changed"
	case UpdateContainerSettingsChanged:
		return "container_settings_changed"
	case UpdateContainerAssetsChanged:
		return "container_assets_changed"
	case UpdateSubgraphInserted:
		return "subgraph_inserted"
	case UpdateSubtreeRemoved:
		return "subtree_removed"
	case UpdateSubtreeMoved:
		return "subtree_moved"
	case UpdateContainerRenamed:
		return "container_renamed"
	case UpdateAssetAdded:
		return "asset_added"
	case UpdateAssetRemoved:
		return "asset_removed"
	case UpdateAssetPathChanged:
		return "asset_path_changed"
	case UpdateAssetMoved:
		return "asset_moved"
	case UpdateAssetFsResourceChanged:
		return "asset_fs_resource_changed"
	default:
		return "unknown"
	}
}

// Update is one semantic effect of a successful TryReduce call, carrying
// just enough to let the publisher and the optional search index
// refresh without re-reading the whole state.
type Update struct {
	Kind         UpdateKind
	ProjectPath  string
	AbsGraphPath string
	ResourceID   ResourceId
}

// EffectLog is the ordered list of Updates produced by one TryReduce
// call, in the order the reducer applied them.
type EffectLog []Update
