package main

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"
	"github.com/syre-project/engine/pkg/manifest"
	"github.com/syre-project/engine/pkg/state"
	"github.com/syre-project/engine/pkg/supervisor"
)

// finder abstracts go-fuzzyfinder's package-level Find so tests can
// substitute a scripted selection instead of driving a real terminal
// picker — the same shape as the teacher's own pkg/obsidian.
// FuzzyFinderManager interface (and mocks.MockFuzzyFinder, its
// testify/mock implementation), generalized from notes to arbitrary
// string items.
type finder interface {
	Find(slice interface{}, itemFunc func(i int) string, opts ...interface{}) (int, error)
}

type realFinder struct{}

func (realFinder) Find(slice interface{}, itemFunc func(i int) string, opts ...interface{}) (int, error) {
	return fuzzyfinder.Find(slice, itemFunc)
}

var activeFinder finder = realFinder{}

// choose runs items through activeFinder and returns the selected one.
func choose(items []string) (string, error) {
	if len(items) == 0 {
		return "", errors.New("nothing to choose from")
	}
	idx, err := activeFinder.Find(items, func(i int) string { return items[i] })
	if err != nil {
		return "", err
	}
	return items[idx], nil
}

var pickProjectPath string

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Interactively pick a project (or a container within one) and print its path",
	Long: `pick opens an interactive fuzzy finder, grounded on the same
go-fuzzyfinder usage the teacher's own note picker uses.

With no flags, it lists every project in the project manifest. With
--project, it instead crawls that project and lists every container in
its graph by absolute graph path.`,
	Args: cobra.NoArgs,
	RunE: runPick,
}

func init() {
	pickCmd.Flags().StringVar(&pickProjectPath, "project", "", "project path to pick a container from, instead of picking a project")
	rootCmd.AddCommand(pickCmd)
}

func runPick(cmd *cobra.Command, args []string) error {
	if pickProjectPath == "" {
		return pickProject()
	}
	return pickContainer(pickProjectPath)
}

func pickProject() error {
	projectManifestPath, err := manifest.ProjectManifestPath()
	if err != nil {
		return err
	}
	data := manifest.LoadProjectManifest(projectManifestPath)
	paths, ok := data.Get()
	if !ok || len(paths) == 0 {
		return errors.New("no projects registered in the project manifest")
	}
	sort.Strings(paths)

	choice, err := choose(paths)
	if err != nil {
		return err
	}
	fmt.Println(choice)
	return nil
}

func pickContainer(projectPath string) error {
	cfg, cancel, err := bootTransientEngine()
	if err != nil {
		return err
	}
	defer cancel()

	result := cfg.Supervisor.Query(context.Background(), supervisor.Query{
		Kind:        supervisor.QueryProjectByPath,
		ProjectPath: projectPath,
	})
	if result.Err != nil {
		return result.Err
	}

	paths, err := containerGraphPaths(result.Project)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("project %s has no containers", projectPath)
	}
	sort.Strings(paths)

	choice, err := choose(paths)
	if err != nil {
		return err
	}
	fmt.Println(choice)
	return nil
}

// containerGraphPaths lists every container in proj's graph by absolute
// graph path, breadth-first from the root.
func containerGraphPaths(proj *state.ProjectState) ([]string, error) {
	body, ok := proj.FsResource.Get()
	if !ok {
		return nil, fmt.Errorf("project %s has not loaded", proj.Path)
	}
	g, ok := body.Graph.Get()
	if !ok {
		return nil, fmt.Errorf("project %s has no data root graph", proj.Path)
	}

	type node struct {
		id      state.NodeID
		absPath string
	}
	queue := []node{{id: g.Root(), absPath: "/"}}
	var out []string

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, cur.absPath)

		children, ok := g.Children(cur.id)
		if !ok {
			continue
		}
		for _, childID := range children {
			childNode, ok := g.Node(childID)
			if !ok {
				continue
			}
			childPath := cur.absPath + childNode.Name
			if cur.absPath != "/" {
				childPath = cur.absPath + "/" + childNode.Name
			}
			queue = append(queue, node{id: childID, absPath: childPath})
		}
	}
	return out, nil
}
