package supervisor

import (
	"context"
	"fmt"
	"log"

	"github.com/syre-project/engine/pkg/appevent"
	"github.com/syre-project/engine/pkg/fsevent"
	"github.com/syre-project/engine/pkg/identity"
	"github.com/syre-project/engine/pkg/publisher"
	"github.com/syre-project/engine/pkg/rawevent"
	"github.com/syre-project/engine/pkg/searchindex"
	"github.com/syre-project/engine/pkg/state"
	"github.com/syre-project/engine/pkg/syreerr"
)

// commandBufferSize bounds how many pending client commands (watch,
// unwatch, final-path, query) the supervisor will queue before a
// sender blocks — commands are rare relative to batches, so a small
// buffer is enough to avoid callers serializing on the event loop.
const commandBufferSize = 8

// Supervisor is the single-writer event loop: it owns the only
// *state.AppState mutator in the process, grounded on the teacher's
// watchLoop goroutine + ctx-based cancellation in pkg/cache/service.go,
// generalized from "one vault, one watcher" to "many projects, one
// raw-event source, one command channel".
type Supervisor struct {
	appState    *state.AppState
	publisher   *publisher.Publisher
	resolver    *identity.Resolver
	source      *rawevent.Source
	searchIndex *searchindex.Index // nil disables indexing; search becomes unavailable

	commands chan Command
	batchSeq uint64
}

// New constructs a Supervisor. searchIndex may be nil — the spec calls
// the search index optional, and its failures must never block the
// main pipeline.
func New(appState *state.AppState, pub *publisher.Publisher, resolver *identity.Resolver, source *rawevent.Source, searchIndex *searchindex.Index) *Supervisor {
	return &Supervisor{
		appState:    appState,
		publisher:   pub,
		resolver:    resolver,
		source:      source,
		searchIndex: searchIndex,
		commands:    make(chan Command, commandBufferSize),
	}
}

// Run drives the event loop until ctx is cancelled or the raw-event
// source's channels close. It is the only goroutine that calls
// AppState.TryReduce — every other access (queries, final-path lookups)
// goes through the command channel so it serializes behind whichever
// batch is currently being applied.
func (s *Supervisor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case batch, ok := <-s.source.Batches():
			if !ok {
				return
			}
			s.handleBatch(ctx, batch)

		case errBatch, ok := <-s.source.Errors():
			if !ok {
				continue
			}
			s.handleErrors(errBatch)

		case cmd, ok := <-s.commands:
			if !ok {
				continue
			}
			s.handleCommand(ctx, cmd)
		}
	}
}

func (s *Supervisor) handleBatch(ctx context.Context, batch rawevent.Batch) {
	s.batchSeq++
	id := s.batchSeq

	events, errs := fsevent.Coalesce(batch, s.resolver, id)
	for _, err := range errs {
		log.Printf("supervisor: %v", fmt.Errorf("%w: %v", syreerr.ErrProcessing, err))
	}

	appEvents := appevent.Lift(s.appState, events, id)

	var full state.EffectLog
	for _, ev := range appEvents {
		actions, err := translate(s.appState, ev)
		if err != nil {
			log.Printf("supervisor: translate %s: %v", ev.Kind, err)
			continue
		}
		for _, action := range actions {
			effects, err := s.appState.TryReduce(action)
			if err != nil {
				log.Printf("supervisor: reduce %T: %v", action, err)
				continue
			}
			full = append(full, effects...)
		}
	}

	s.publisher.Publish(id, full)
	s.indexEffects(ctx, full)
}

func (s *Supervisor) handleErrors(batch rawevent.ErrorBatch) {
	for _, e := range batch.Errors {
		log.Printf("supervisor: %v", fmt.Errorf("%w: %v", syreerr.ErrWatch, e.Err))
	}
}
