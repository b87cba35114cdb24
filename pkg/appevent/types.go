// Package appevent implements the app-event lifter (component D): it
// classifies each semantic file-system event against the current
// state, turning "folder appeared under a project's data root" into
// "container inserted at path P" and similar.
package appevent

import "time"

// ConfigTarget names which on-disk resource file a ConfigChanged event
// concerns. Only meaningful when Event.Kind is ConfigChanged.
type ConfigTarget int

const (
	ProjectProperties ConfigTarget = iota
	ProjectSettings
	ProjectAnalysesManifest
	ContainerProperties
	ContainerSettings
	ContainerAssetsManifest
)

func (t ConfigTarget) String() string {
	switch t {
	case ProjectProperties:
		return "project_properties"
	case ProjectSettings:
		return "project_settings"
	case ProjectAnalysesManifest:
		return "project_analyses_manifest"
	case ContainerProperties:
		return "container_properties"
	case ContainerSettings:
		return "container_settings"
	case ContainerAssetsManifest:
		return "container_assets_manifest"
	default:
		return "unknown_config_target"
	}
}

// Kind is the classified application-level meaning of a file-system event.
type Kind int

const (
	// ProjectRemoved fires when a project's root directory disappears.
	ProjectRemoved Kind = iota
	// ProjectMoved fires when a project's root directory is renamed or
	// relocated on disk.
	ProjectMoved
	// ConfigChanged fires for any create/modify/remove under a project's
	// or container's resource config directory; ConfigTarget says which
	// file, Kind of underlying fsevent says whether it appeared, changed,
	// or disappeared.
	ConfigChanged
	// GraphInserted fires when an unregistered container folder appears
	// under the data root.
	GraphInserted
	// GraphRemoved fires when a known container's folder disappears.
	GraphRemoved
	// GraphMoved fires when a known container's folder is renamed or
	// relocated within the data root.
	GraphMoved
	// AnalysisCreated/Removed/Moved fire for analysis-root files whose
	// extension is in the recognized analysis-language set.
	AnalysisCreated
	AnalysisRemoved
	AnalysisMoved
	// FileAppeared fires when an untracked file shows up under the data
	// root, outside any config directory — a candidate the caller may
	// choose to register as a new Asset via AddAssetAction.
	FileAppeared
	// AssetRemoved fires when a known asset's backing file disappears.
	AssetRemoved
	// AssetMoved fires when a known asset's backing file is renamed or
	// moved within its container (or to a different container, in which
	// case FromAbsGraphPath differs from AbsGraphPath).
	AssetMoved
	// AssetReappeared fires when a file is created at the exact tracked
	// path of an asset whose backing file was previously marked absent —
	// the asset's FsResource flips back to present without touching its
	// identity or properties.
	AssetReappeared
)

func (k Kind) String() string {
	switch k {
	case ProjectRemoved:
		return "project_removed"
	case ProjectMoved:
		return "project_moved"
	case ConfigChanged:
		return "config_changed"
	case GraphInserted:
		return "graph_inserted"
	case GraphRemoved:
		return "graph_removed"
	case GraphMoved:
		return "graph_moved"
	case AnalysisCreated:
		return "analysis_created"
	case AnalysisRemoved:
		return "analysis_removed"
	case AnalysisMoved:
		return "analysis_moved"
	case FileAppeared:
		return "file_appeared"
	case AssetRemoved:
		return "asset_removed"
	case AssetMoved:
		return "asset_moved"
	case AssetReappeared:
		return "asset_reappeared"
	default:
		return "unknown"
	}
}

// Event is one application-level event lifted from a semantic
// file-system event. Fields not relevant to Kind are left zero.
type Event struct {
	Kind Kind

	ProjectPath string
	// AbsGraphPath is the container the event concerns (its current
	// location for GraphMoved/AssetMoved's "to" side).
	AbsGraphPath string
	// FromAbsGraphPath is set alongside AbsGraphPath for GraphMoved and
	// AssetMoved, carrying the prior location (equal to AbsGraphPath for
	// an AssetMoved within one container).
	FromAbsGraphPath string

	ConfigTarget ConfigTarget

	// Path/From/To mirror the originating fsevent.Event's path fields.
	Path string
	From string
	To   string

	Time time.Time
	// BatchID traces the event back to the raw batch it was lifted from.
	BatchID uint64
}
