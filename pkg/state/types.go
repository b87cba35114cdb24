package state

import "time"

// UserRecord is one entry of the app-level user manifest.
type UserRecord struct {
	ID    ResourceId `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
}

// ProjectProperties are a project's own JSON-backed properties.
type ProjectProperties struct {
	Name         string `json:"name"`
	DataRoot     string `json:"data_root"`
	AnalysisRoot string `json:"analysis_root"`
	Description  string `json:"description,omitempty"`
}

// ProjectSettings are a project's own JSON-backed settings.
type ProjectSettings struct {
	// Metadata holds arbitrary project-level key/value settings.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ContainerProperties are a container's own JSON-backed properties.
type ContainerProperties struct {
	ID          ResourceId     `json:"rid"`
	Name        string         `json:"name"`
	Kind        string         `json:"kind,omitempty"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ContainerSettings are a container's own JSON-backed settings.
type ContainerSettings struct {
	Metadata map[string]any `json:"metadata,omitempty"`
}

// AnalysisAssociation links a container to an analysis by id, with an
// autorun flag and an execution priority.
type AnalysisAssociation struct {
	AnalysisID ResourceId `json:"analysis_id"`
	Autorun    bool       `json:"autorun"`
	Priority   int        `json:"priority"`
}

// AssetProperties are an asset's own JSON-backed properties.
type AssetProperties struct {
	ID          ResourceId     `json:"rid"`
	Name        string         `json:"name"`
	Kind        string         `json:"kind,omitempty"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	Creator     string         `json:"creator,omitempty"`
}

// Asset is a tracked file inside a container.
type Asset struct {
	Properties AssetProperties
	// Path is relative to the owning container's folder.
	Path       string
	FsResource FileResource
}

// AnalysisDescriptor is the capability set shared by every analysis
// kind (script or template).
type AnalysisDescriptor interface {
	Path() string
	ID() ResourceId
}

// ScriptAnalysis is an analysis backed by a script file.
type ScriptAnalysis struct {
	AnalysisID   ResourceId
	RelativePath string
	Name         string
}

func (s ScriptAnalysis) Path() string   { return s.RelativePath }
func (s ScriptAnalysis) ID() ResourceId { return s.AnalysisID }

// ExcelTemplateAnalysis is an analysis backed by an Excel template file.
type ExcelTemplateAnalysis struct {
	AnalysisID   ResourceId
	RelativePath string
	Name         string
}

func (e ExcelTemplateAnalysis) Path() string   { return e.RelativePath }
func (e ExcelTemplateAnalysis) ID() ResourceId { return e.AnalysisID }

// Analysis is a descriptor plus a presence flag derived from whether its
// file exists under the project's analysis root.
type Analysis struct {
	Descriptor AnalysisDescriptor
	FsResource FileResource
}

func PresentAnalysis(d AnalysisDescriptor) Analysis {
	return Analysis{Descriptor: d, FsResource: FilePresent}
}

func AbsentAnalysis(d AnalysisDescriptor) Analysis {
	return Analysis{Descriptor: d, FsResource: FileAbsent}
}
