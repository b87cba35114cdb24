package state

// AppState is the process-wide singleton authoritative model: the two
// app-level manifests plus every known project, keyed by absolute
// project path. Constructed once at boot and mutated only through
// TryReduce.
type AppState struct {
	UserManifest    Data[[]UserRecord]
	ProjectManifest Data[[]string]
	Projects        map[string]*ProjectState
}

// NewAppState returns an AppState with both manifests unloaded and no
// known projects, as it exists before the initial boot load completes.
func NewAppState() *AppState {
	return &AppState{
		UserManifest:    Err[[]UserRecord](NotFoundError()),
		ProjectManifest: Err[[]string](NotFoundError()),
		Projects:        map[string]*ProjectState{},
	}
}

// Project returns the project state at path, if known.
func (s *AppState) Project(path string) (*ProjectState, bool) {
	p, ok := s.Projects[path]
	return p, ok
}

// ProjectResourceID returns the identity a project is published under:
// its graph root container's own ResourceId. A project whose folder,
// config, or graph hasn't loaded yet has no resource id — callers fall
// back to the "unknown" topic in that case.
func (s *AppState) ProjectResourceID(path string) (ResourceId, bool) {
	proj, ok := s.Projects[path]
	if !ok {
		return ResourceId{}, false
	}
	body, ok := proj.FsResource.Get()
	if !ok {
		return ResourceId{}, false
	}
	g, ok := body.Graph.Get()
	if !ok {
		return ResourceId{}, false
	}
	root, ok := g.Node(g.Root())
	if !ok {
		return ResourceId{}, false
	}
	props, ok := root.Properties.Get()
	if !ok {
		return ResourceId{}, false
	}
	return props.ID, true
}
