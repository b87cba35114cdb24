package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syre-project/engine/pkg/state"
	"github.com/syre-project/engine/pkg/syreerr"
)

func TestTryReduceProjectManifestSyncsProjects(t *testing.T) {
	s := state.NewAppState()

	_, err := s.TryReduce(state.ProjectManifestAction{
		Action: state.ManifestAction[string]{
			Op:    state.ManifestSetOk,
			Items: []string{"/data/a", "/data/b"},
		},
	})
	require.NoError(t, err)

	_, ok := s.Project("/data/a")
	assert.True(t, ok)
	_, ok = s.Project("/data/b")
	assert.True(t, ok)

	_, err = s.TryReduce(state.ProjectManifestAction{
		Action: state.ManifestAction[string]{
			Op:    state.ManifestSetOk,
			Items: []string{"/data/a"},
		},
	})
	require.NoError(t, err)

	_, ok = s.Project("/data/b")
	assert.False(t, ok)
}

func TestTryReduceInsertProjectRejectsDuplicate(t *testing.T) {
	s := state.NewAppState()

	_, err := s.TryReduce(state.InsertProjectAction{
		Path: "/data/a",
		Body: state.NewAbsentProject("/data/a"),
	})
	require.NoError(t, err)

	_, err = s.TryReduce(state.InsertProjectAction{
		Path: "/data/a",
		Body: state.NewAbsentProject("/data/a"),
	})
	assert.ErrorIs(t, err, syreerr.ErrInvalidTransition)
}

func TestTryReduceCreateFolderThenSetGraphRequiresProperties(t *testing.T) {
	s := state.NewAppState()
	require.NoError(t, insertAbsentProject(s, "/data/proj"))

	_, err := s.TryReduce(state.ProjectScopedAction{
		Path:   "/data/proj",
		Action: state.CreateFolderAction{Body: state.NewProjectBody()},
	})
	require.NoError(t, err)

	root := state.NewContainerNode("data")
	g := state.NewGraph(root)

	_, err = s.TryReduce(state.ProjectScopedAction{
		Path:   "/data/proj",
		Action: state.SetGraphAction{Graph: state.Present(g)},
	})
	assert.ErrorIs(t, err, syreerr.ErrInvalidTransition)

	_, err = s.TryReduce(state.ProjectScopedAction{
		Path: "/data/proj",
		Action: state.SetPropertiesAction{
			Properties: state.Ok(state.ProjectProperties{Name: "proj", DataRoot: "data"}),
		},
	})
	require.NoError(t, err)

	_, err = s.TryReduce(state.ProjectScopedAction{
		Path:   "/data/proj",
		Action: state.SetGraphAction{Graph: state.Present(g)},
	})
	assert.NoError(t, err)
}

func TestTryReduceContainerActionsRoundTrip(t *testing.T) {
	s := state.NewAppState()
	require.NoError(t, insertAbsentProject(s, "/data/proj"))
	_, err := s.TryReduce(state.ProjectScopedAction{
		Path:   "/data/proj",
		Action: state.CreateFolderAction{Body: state.NewProjectBody()},
	})
	require.NoError(t, err)
	_, err = s.TryReduce(state.ProjectScopedAction{
		Path: "/data/proj",
		Action: state.SetPropertiesAction{
			Properties: state.Ok(state.ProjectProperties{Name: "proj", DataRoot: "data"}),
		},
	})
	require.NoError(t, err)

	root := state.NewContainerNode("data")
	g := state.NewGraph(root)
	_, err = s.TryReduce(state.ProjectScopedAction{
		Path:   "/data/proj",
		Action: state.SetGraphAction{Graph: state.Present(g)},
	})
	require.NoError(t, err)

	child := state.NewContainerNode("child")
	sub := state.NewGraph(child)
	_, err = s.TryReduce(state.ProjectScopedAction{
		Path: "/data/proj",
		Action: state.ContainerScopedAction{
			AbsGraphPath: "/",
			Action:       state.InsertSubgraphAction{Subgraph: sub},
		},
	})
	require.NoError(t, err)

	asset := state.Asset{
		Properties: state.AssetProperties{ID: state.NewResourceId(), Name: "a.csv"},
		Path:       "a.csv",
		FsResource: state.FilePresent,
	}
	_, err = s.TryReduce(state.ProjectScopedAction{
		Path: "/data/proj",
		Action: state.ContainerScopedAction{
			AbsGraphPath: "/child",
			Action:       state.AddAssetAction{Asset: asset},
		},
	})
	require.NoError(t, err)

	_, err = s.TryReduce(state.ProjectScopedAction{
		Path: "/data/proj",
		Action: state.ContainerScopedAction{
			AbsGraphPath: "/child",
			Action:       state.AddAssetAction{Asset: asset},
		},
	})
	assert.ErrorIs(t, err, syreerr.ErrInvalidTransition)

	_, err = s.TryReduce(state.ProjectScopedAction{
		Path: "/data/proj",
		Action: state.ContainerScopedAction{
			AbsGraphPath: "/child",
			Action:       state.RemoveAssetAction{ID: asset.Properties.ID},
		},
	})
	require.NoError(t, err)
}

func TestTryReduceSetAssetFsResourceTogglesPresence(t *testing.T) {
	s := state.NewAppState()
	require.NoError(t, insertAbsentProject(s, "/data/proj"))
	_, err := s.TryReduce(state.ProjectScopedAction{
		Path:   "/data/proj",
		Action: state.CreateFolderAction{Body: state.NewProjectBody()},
	})
	require.NoError(t, err)
	_, err = s.TryReduce(state.ProjectScopedAction{
		Path: "/data/proj",
		Action: state.SetPropertiesAction{
			Properties: state.Ok(state.ProjectProperties{Name: "proj", DataRoot: "data"}),
		},
	})
	require.NoError(t, err)

	root := state.NewContainerNode("data")
	g := state.NewGraph(root)
	_, err = s.TryReduce(state.ProjectScopedAction{
		Path:   "/data/proj",
		Action: state.SetGraphAction{Graph: state.Present(g)},
	})
	require.NoError(t, err)

	asset := state.Asset{
		Properties: state.AssetProperties{ID: state.NewResourceId(), Name: "a.csv"},
		Path:       "a.csv",
		FsResource: state.FilePresent,
	}
	_, err = s.TryReduce(state.ProjectScopedAction{
		Path: "/data/proj",
		Action: state.ContainerScopedAction{
			AbsGraphPath: "/",
			Action:       state.AddAssetAction{Asset: asset},
		},
	})
	require.NoError(t, err)

	_, err = s.TryReduce(state.ProjectScopedAction{
		Path: "/data/proj",
		Action: state.ContainerScopedAction{
			AbsGraphPath: "/",
			Action:       state.SetAssetFsResourceAction{ID: asset.Properties.ID, Present: false},
		},
	})
	require.NoError(t, err)

	proj, _ := s.Project("/data/proj")
	body, _ := proj.FsResource.Get()
	graph, _ := body.Graph.Get()
	root2, _ := graph.Node(graph.Root())
	assets, _ := root2.Assets.Get()
	require.Len(t, assets, 1)
	assert.Equal(t, state.FileAbsent, assets[0].FsResource)

	_, err = s.TryReduce(state.ProjectScopedAction{
		Path: "/data/proj",
		Action: state.ContainerScopedAction{
			AbsGraphPath: "/",
			Action:       state.SetAssetFsResourceAction{ID: asset.Properties.ID, Present: true},
		},
	})
	require.NoError(t, err)
	assets, _ = root2.Assets.Get()
	require.Len(t, assets, 1)
	assert.Equal(t, state.FilePresent, assets[0].FsResource)
}

func insertAbsentProject(s *state.AppState, path string) error {
	_, err := s.TryReduce(state.InsertProjectAction{
		Path: path,
		Body: state.NewAbsentProject(path),
	})
	return err
}
