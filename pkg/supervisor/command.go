package supervisor

import (
	"context"

	"github.com/syre-project/engine/pkg/searchindex"
	"github.com/syre-project/engine/pkg/state"
)

// CommandKind selects which of the engine's four client verbs a
// Command carries: watch(path), unwatch(path), final_path(path), and
// the tagged-union query verb.
type CommandKind int

const (
	CommandWatch CommandKind = iota
	CommandUnwatch
	CommandFinalPath
	CommandQuery
)

// Command is one client request delivered over the supervisor's
// command channel, the standard Go request/response-over-channel
// idiom: the sender builds Reply itself and receives exactly one
// Result on it.
type Command struct {
	Kind  CommandKind
	Path  string
	Query Query
	Reply chan Result
}

// QueryKind selects one arm of the query verb's tagged union of read
// requests.
type QueryKind int

const (
	QueryProjectByID QueryKind = iota
	QueryProjectByPath
	QueryContainerByPath
	QuerySearch
)

// Query carries the fields relevant to whichever QueryKind it names;
// fields outside that kind's concern are left zero.
type Query struct {
	Kind QueryKind

	ResourceID state.ResourceId

	ProjectPath  string
	AbsGraphPath string

	SearchText  string
	SearchLimit int
}

// Result is a command's response. Only the fields relevant to the
// originating command's kind are populated.
type Result struct {
	Err error

	FinalPath      string
	FinalPathFound bool

	Project   *state.ProjectState
	Container *state.ContainerNode
	Hits      []searchindex.Hit
}

func (s *Supervisor) handleCommand(ctx context.Context, cmd Command) {
	var result Result
	switch cmd.Kind {
	case CommandWatch:
		result.Err = s.source.Watch(cmd.Path)
	case CommandUnwatch:
		result.Err = s.source.Unwatch(cmd.Path)
	case CommandFinalPath:
		result.FinalPath, result.FinalPathFound = s.finalPath(cmd.Path)
	case CommandQuery:
		result = s.handleQuery(ctx, cmd.Query)
	}
	if cmd.Reply != nil {
		cmd.Reply <- result
	}
}

// finalPath answers "what path does the identity currently at path
// live at" — a client holding a possibly-stale path asks whether the
// resolver has since learned the underlying file moved.
func (s *Supervisor) finalPath(path string) (string, bool) {
	id, ok := s.resolver.Identity(path)
	if !ok {
		return "", false
	}
	current, found, err := s.resolver.PathOf(id)
	if err != nil || !found {
		return "", false
	}
	return current, true
}

// do sends cmd on the command channel and blocks for its reply, both
// steps cancellable by ctx. Exported convenience methods below are
// thin wrappers over this.
func (s *Supervisor) do(ctx context.Context, cmd Command) Result {
	cmd.Reply = make(chan Result, 1)
	select {
	case s.commands <- cmd:
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	}
	select {
	case r := <-cmd.Reply:
		return r
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	}
}

// Watch registers path as a new watched root.
func (s *Supervisor) Watch(ctx context.Context, path string) error {
	return s.do(ctx, Command{Kind: CommandWatch, Path: path}).Err
}

// Unwatch removes path and every watch beneath it.
func (s *Supervisor) Unwatch(ctx context.Context, path string) error {
	return s.do(ctx, Command{Kind: CommandUnwatch, Path: path}).Err
}

// FinalPath resolves path's identity to its current canonical path.
func (s *Supervisor) FinalPath(ctx context.Context, path string) (string, bool) {
	r := s.do(ctx, Command{Kind: CommandFinalPath, Path: path})
	return r.FinalPath, r.FinalPathFound
}

// Query runs one read request against the live state, serialized
// behind whichever batch the supervisor is currently applying.
func (s *Supervisor) Query(ctx context.Context, q Query) Result {
	return s.do(ctx, Command{Kind: CommandQuery, Query: q})
}
