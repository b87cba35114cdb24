package state

// ProjectState is one project's presence on disk plus its loaded body.
type ProjectState struct {
	Path       string
	FsResource FolderResource[ProjectBody]
}

// NewAbsentProject constructs a ProjectState for a manifest path whose
// directory has not (yet) been observed present.
func NewAbsentProject(path string) ProjectState {
	return ProjectState{Path: path, FsResource: Absent[ProjectBody]()}
}

// Clone returns a point-in-time copy of p that shares no mutable state
// with it — in particular its graph, whose nodes and edge maps the
// reducer mutates in place. Callers that hand a *ProjectState across a
// goroutine boundary (the supervisor replying to a query) must clone it
// first; reading the live pointer's fields concurrently with the next
// reduce is a data race.
func (p *ProjectState) Clone() *ProjectState {
	cp := *p
	if body, present := cp.FsResource.Get(); present {
		if g, ok := body.Graph.Get(); ok {
			body.Graph = Present(g.Snapshot())
		}
		if analyses, ok := body.Analyses.Get(); ok {
			body.Analyses = Ok(append([]Analysis(nil), analyses...))
		}
		cp.FsResource = Present(body)
	}
	return &cp
}

// ProjectBody holds everything loaded from a present project directory,
// each field independently Ok/Err.
type ProjectBody struct {
	Properties Data[ProjectProperties]
	Settings   Data[ProjectSettings]
	Analyses   Data[[]Analysis]
	Graph      FolderResource[*Graph]
}

// NewProjectBody is the state of a project folder that has just been
// observed present but whose config directory has not yet been read.
func NewProjectBody() ProjectBody {
	return ProjectBody{
		Properties: Err[ProjectProperties](NotFoundError()),
		Settings:   Err[ProjectSettings](NotFoundError()),
		Analyses:   Err[[]Analysis](NotFoundError()),
		Graph:      Absent[*Graph](),
	}
}
