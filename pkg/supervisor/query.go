package supervisor

import (
	"context"
	"fmt"
)

func (s *Supervisor) handleQuery(ctx context.Context, q Query) Result {
	switch q.Kind {
	case QueryProjectByID:
		for path, proj := range s.appState.Projects {
			id, ok := s.appState.ProjectResourceID(path)
			if ok && id == q.ResourceID {
				return Result{Project: proj.Clone()}
			}
		}
		return Result{Err: fmt.Errorf("project %s not found", q.ResourceID)}

	case QueryProjectByPath:
		proj, ok := s.appState.Project(q.ProjectPath)
		if !ok {
			return Result{Err: fmt.Errorf("project %s not found", q.ProjectPath)}
		}
		return Result{Project: proj.Clone()}

	case QueryContainerByPath:
		g, err := projectGraph(s.appState, q.ProjectPath)
		if err != nil {
			return Result{Err: fmt.Errorf("container by path: %w", err)}
		}
		id, ok := g.Find(q.AbsGraphPath)
		if !ok {
			return Result{Err: fmt.Errorf("container %s not found in %s", q.AbsGraphPath, q.ProjectPath)}
		}
		node, ok := g.Node(id)
		if !ok {
			return Result{Err: fmt.Errorf("container node %s missing", id)}
		}
		return Result{Container: node.Clone()}

	case QuerySearch:
		if s.searchIndex == nil {
			return Result{Err: fmt.Errorf("search index not configured")}
		}
		hits, err := s.searchIndex.Search(ctx, q.SearchText, q.SearchLimit)
		if err != nil {
			return Result{Err: fmt.Errorf("search: %w", err)}
		}
		return Result{Hits: hits}

	default:
		return Result{Err: fmt.Errorf("unknown query kind %d", q.Kind)}
	}
}
