package appevent_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syre-project/engine/pkg/appevent"
	"github.com/syre-project/engine/pkg/fsevent"
	"github.com/syre-project/engine/pkg/state"
)

func newProjectAppState(projectPath string, properties state.ProjectProperties, g *state.Graph) *state.AppState {
	appState := state.NewAppState()
	appState.Projects[projectPath] = &state.ProjectState{
		Path: projectPath,
		FsResource: state.Present(state.ProjectBody{
			Properties: state.Ok(properties),
			Settings:   state.Ok(state.ProjectSettings{}),
			Analyses:   state.Ok[[]state.Analysis](nil),
			Graph:      state.Present(g),
		}),
	}
	return appState
}

func TestLiftDropsEventsOutsideAnyProject(t *testing.T) {
	g := state.NewGraph(state.NewContainerNode(""))
	appState := newProjectAppState("/proj", state.ProjectProperties{Name: "proj", DataRoot: "data"}, g)

	out := appevent.Lift(appState, []fsevent.Event{
		{Kind: fsevent.FileCreated, Path: "/elsewhere/file.txt", Time: time.Now()},
	}, 1)
	assert.Empty(t, out)
}

func TestLiftProjectRootDisappearingIsProjectRemoved(t *testing.T) {
	g := state.NewGraph(state.NewContainerNode(""))
	appState := newProjectAppState("/proj", state.ProjectProperties{Name: "proj", DataRoot: "data"}, g)

	out := appevent.Lift(appState, []fsevent.Event{
		{Kind: fsevent.AnyRemoved, Path: "/proj", Time: time.Now()},
	}, 1)
	require.Len(t, out, 1)
	assert.Equal(t, appevent.ProjectRemoved, out[0].Kind)
	assert.Equal(t, "/proj", out[0].ProjectPath)
}

func TestLiftProjectRootRenameIsProjectMoved(t *testing.T) {
	g := state.NewGraph(state.NewContainerNode(""))
	appState := newProjectAppState("/proj", state.ProjectProperties{Name: "proj", DataRoot: "data"}, g)

	out := appevent.Lift(appState, []fsevent.Event{
		{Kind: fsevent.FolderRenamed, From: "/proj", To: "/renamed-proj", Time: time.Now()},
	}, 1)
	require.Len(t, out, 1)
	assert.Equal(t, appevent.ProjectMoved, out[0].Kind)
	assert.Equal(t, "/renamed-proj", out[0].ProjectPath)
	assert.Equal(t, "/proj", out[0].From)
	assert.Equal(t, "/renamed-proj", out[0].To)
}

func TestLiftConfigPathAtProjectRootIsProjectProperties(t *testing.T) {
	g := state.NewGraph(state.NewContainerNode(""))
	appState := newProjectAppState("/proj", state.ProjectProperties{Name: "proj", DataRoot: "data"}, g)

	out := appevent.Lift(appState, []fsevent.Event{
		{Kind: fsevent.FileDataModified, Path: "/proj/.syre/project.json", Time: time.Now()},
	}, 1)
	require.Len(t, out, 1)
	assert.Equal(t, appevent.ConfigChanged, out[0].Kind)
	assert.Equal(t, appevent.ProjectProperties, out[0].ConfigTarget)
	assert.Equal(t, "/proj", out[0].ProjectPath)
}

func TestLiftConfigPathUnderContainerIsContainerProperties(t *testing.T) {
	g := state.NewGraph(state.NewContainerNode(""))
	child := state.NewContainerNode("sub")
	require.NoError(t, g.Insert(g.Root(), state.NewGraph(child)))
	appState := newProjectAppState("/proj", state.ProjectProperties{Name: "proj", DataRoot: "data"}, g)

	out := appevent.Lift(appState, []fsevent.Event{
		{Kind: fsevent.FileDataModified, Path: "/proj/data/sub/.syre/container.json", Time: time.Now()},
	}, 1)
	require.Len(t, out, 1)
	assert.Equal(t, appevent.ConfigChanged, out[0].Kind)
	assert.Equal(t, appevent.ContainerProperties, out[0].ConfigTarget)
	assert.Equal(t, "/sub", out[0].AbsGraphPath)
}

func TestLiftConfigPathOutsideDataRootIsIgnored(t *testing.T) {
	g := state.NewGraph(state.NewContainerNode(""))
	appState := newProjectAppState("/proj", state.ProjectProperties{Name: "proj", DataRoot: "data", AnalysisRoot: "analysis"}, g)

	out := appevent.Lift(appState, []fsevent.Event{
		{Kind: fsevent.FileDataModified, Path: "/proj/analysis/.syre/container.json", Time: time.Now()},
	}, 1)
	assert.Empty(t, out)
}

func TestLiftRecognizedAnalysisExtensionIsAnalysisCreated(t *testing.T) {
	g := state.NewGraph(state.NewContainerNode(""))
	appState := newProjectAppState("/proj", state.ProjectProperties{Name: "proj", DataRoot: "data", AnalysisRoot: "analysis"}, g)

	out := appevent.Lift(appState, []fsevent.Event{
		{Kind: fsevent.FileCreated, Path: "/proj/analysis/run.py", Time: time.Now()},
	}, 1)
	require.Len(t, out, 1)
	assert.Equal(t, appevent.AnalysisCreated, out[0].Kind)
}

func TestLiftUnrecognizedAnalysisExtensionIsDropped(t *testing.T) {
	g := state.NewGraph(state.NewContainerNode(""))
	appState := newProjectAppState("/proj", state.ProjectProperties{Name: "proj", DataRoot: "data", AnalysisRoot: "analysis"}, g)

	out := appevent.Lift(appState, []fsevent.Event{
		{Kind: fsevent.FileCreated, Path: "/proj/analysis/notes.txt", Time: time.Now()},
	}, 1)
	assert.Empty(t, out)
}

func TestLiftUnknownFolderUnderDataRootIsGraphInserted(t *testing.T) {
	g := state.NewGraph(state.NewContainerNode(""))
	appState := newProjectAppState("/proj", state.ProjectProperties{Name: "proj", DataRoot: "data"}, g)

	out := appevent.Lift(appState, []fsevent.Event{
		{Kind: fsevent.FolderCreated, Path: "/proj/data/newsub", Time: time.Now()},
	}, 1)
	require.Len(t, out, 1)
	assert.Equal(t, appevent.GraphInserted, out[0].Kind)
	assert.Equal(t, "/newsub", out[0].AbsGraphPath)
}

func TestLiftKnownContainerFolderRemovedIsGraphRemoved(t *testing.T) {
	g := state.NewGraph(state.NewContainerNode(""))
	child := state.NewContainerNode("sub")
	require.NoError(t, g.Insert(g.Root(), state.NewGraph(child)))
	appState := newProjectAppState("/proj", state.ProjectProperties{Name: "proj", DataRoot: "data"}, g)

	out := appevent.Lift(appState, []fsevent.Event{
		{Kind: fsevent.FolderRemoved, Path: "/proj/data/sub", Time: time.Now()},
	}, 1)
	require.Len(t, out, 1)
	assert.Equal(t, appevent.GraphRemoved, out[0].Kind)
	assert.Equal(t, "/sub", out[0].AbsGraphPath)
}

func TestLiftUntrackedFileUnderDataRootIsFileAppeared(t *testing.T) {
	g := state.NewGraph(state.NewContainerNode(""))
	appState := newProjectAppState("/proj", state.ProjectProperties{Name: "proj", DataRoot: "data"}, g)

	out := appevent.Lift(appState, []fsevent.Event{
		{Kind: fsevent.FileCreated, Path: "/proj/data/raw.csv", Time: time.Now()},
	}, 1)
	require.Len(t, out, 1)
	assert.Equal(t, appevent.FileAppeared, out[0].Kind)
	assert.Equal(t, "/", out[0].AbsGraphPath)
}

func TestLiftTrackedAssetFileRemovedIsAssetRemoved(t *testing.T) {
	root := state.NewContainerNode("")
	root.Assets = state.Ok([]state.Asset{{Path: "raw.csv"}})
	g := state.NewGraph(root)
	appState := newProjectAppState("/proj", state.ProjectProperties{Name: "proj", DataRoot: "data"}, g)

	out := appevent.Lift(appState, []fsevent.Event{
		{Kind: fsevent.FileRemoved, Path: "/proj/data/raw.csv", Time: time.Now()},
	}, 1)
	require.Len(t, out, 1)
	assert.Equal(t, appevent.AssetRemoved, out[0].Kind)
	assert.Equal(t, "/", out[0].AbsGraphPath)
}

func TestLiftUntrackedFileRemovedProducesNothing(t *testing.T) {
	g := state.NewGraph(state.NewContainerNode(""))
	appState := newProjectAppState("/proj", state.ProjectProperties{Name: "proj", DataRoot: "data"}, g)

	out := appevent.Lift(appState, []fsevent.Event{
		{Kind: fsevent.FileRemoved, Path: "/proj/data/raw.csv", Time: time.Now()},
	}, 1)
	assert.Empty(t, out)
}

func TestLiftContainerFolderRenameIsGraphMoved(t *testing.T) {
	root := state.NewContainerNode("")
	child := state.NewContainerNode("sub")
	g := state.NewGraph(root)
	require.NoError(t, g.Insert(g.Root(), state.NewGraph(child)))
	appState := newProjectAppState("/proj", state.ProjectProperties{Name: "proj", DataRoot: "data"}, g)

	out := appevent.Lift(appState, []fsevent.Event{
		{Kind: fsevent.FolderRenamed, From: "/proj/data/sub", To: "/proj/data/renamed", Time: time.Now()},
	}, 1)
	require.Len(t, out, 1)
	assert.Equal(t, appevent.GraphMoved, out[0].Kind)
	assert.Equal(t, "/sub", out[0].FromAbsGraphPath)
	assert.Equal(t, "/renamed", out[0].AbsGraphPath)
}

func TestLiftAssetFileMoveToDifferentContainerCarriesBothPaths(t *testing.T) {
	root := state.NewContainerNode("")
	root.Assets = state.Ok([]state.Asset{{Path: "raw.csv"}})
	child := state.NewContainerNode("archive")
	g := state.NewGraph(root)
	require.NoError(t, g.Insert(g.Root(), state.NewGraph(child)))
	appState := newProjectAppState("/proj", state.ProjectProperties{Name: "proj", DataRoot: "data"}, g)

	out := appevent.Lift(appState, []fsevent.Event{
		{Kind: fsevent.FileMoved, From: "/proj/data/raw.csv", To: "/proj/data/archive/raw.csv", Time: time.Now()},
	}, 1)
	require.Len(t, out, 1)
	assert.Equal(t, appevent.AssetMoved, out[0].Kind)
	assert.Equal(t, "/", out[0].FromAbsGraphPath)
	assert.Equal(t, "/archive", out[0].AbsGraphPath)
}

func TestLiftFileCreatedAtTrackedAssetPathIsAssetReappeared(t *testing.T) {
	root := state.NewContainerNode("")
	root.Assets = state.Ok([]state.Asset{{Path: "raw.csv", FsResource: state.FileAbsent}})
	g := state.NewGraph(root)
	appState := newProjectAppState("/proj", state.ProjectProperties{Name: "proj", DataRoot: "data"}, g)

	out := appevent.Lift(appState, []fsevent.Event{
		{Kind: fsevent.FileCreated, Path: "/proj/data/raw.csv", Time: time.Now()},
	}, 1)
	require.Len(t, out, 1)
	assert.Equal(t, appevent.AssetReappeared, out[0].Kind)
	assert.Equal(t, "/", out[0].AbsGraphPath)
}

func TestLiftUntrackedAssetMoveProducesNothing(t *testing.T) {
	g := state.NewGraph(state.NewContainerNode(""))
	appState := newProjectAppState("/proj", state.ProjectProperties{Name: "proj", DataRoot: "data"}, g)

	out := appevent.Lift(appState, []fsevent.Event{
		{Kind: fsevent.FileMoved, From: "/proj/data/raw.csv", To: "/proj/data/archive/raw.csv", Time: time.Now()},
	}, 1)
	assert.Empty(t, out)
}
