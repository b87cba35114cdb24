package rawevent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/syre-project/engine/pkg/identity"
)

// Options configures a Source.
type Options struct {
	// Watcher overrides the backend, for tests. If nil, a real fsnotify
	// watcher is created.
	Watcher Watcher
	// DebounceInterval is how long the source waits after the last raw
	// notification before flushing a batch. Defaults to 300ms.
	DebounceInterval time.Duration
	// BatchBufferSize bounds the batch channel. Sends block once full —
	// dropping a raw batch is a correctness violation.
	BatchBufferSize int
	// Resolver backs the "watched root vanished" rule: after a
	// synthetic root removal, the source asks the resolver whether the
	// same identity now lives elsewhere.
	Resolver *identity.Resolver
}

// Source wraps an OS recursive-directory watcher (fsnotify does not
// natively recurse, so Source walks and adds one watch per directory)
// and emits debounced, time-ordered batches.
type Source struct {
	watcher  Watcher
	debounce time.Duration
	resolver *identity.Resolver

	mu          sync.Mutex
	roots       map[string]struct{}
	watchedDirs map[string]struct{}
	pending     []Event

	batches chan Batch
	errors  chan ErrorBatch

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSource constructs a Source. Callers must call Close when done.
func NewSource(opts Options) (*Source, error) {
	w := opts.Watcher
	if w == nil {
		var err error
		w, err = newFsNotifyWatcher()
		if err != nil {
			return nil, fmt.Errorf("create watcher: %w", err)
		}
	}

	debounce := opts.DebounceInterval
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	bufSize := opts.BatchBufferSize
	if bufSize <= 0 {
		bufSize = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Source{
		watcher:     w,
		debounce:    debounce,
		resolver:    opts.Resolver,
		roots:       make(map[string]struct{}),
		watchedDirs: make(map[string]struct{}),
		batches:     make(chan Batch, bufSize),
		errors:      make(chan ErrorBatch, bufSize),
		ctx:         ctx,
		cancel:      cancel,
	}

	s.wg.Add(1)
	go s.loop()
	return s, nil
}

// Batches is the channel of debounced raw-event batches, in arrival
// order.
func (s *Source) Batches() <-chan Batch { return s.batches }

// Errors is the channel of watcher-level error batches.
func (s *Source) Errors() <-chan ErrorBatch { return s.errors }

// Close stops the watcher and the debounce loop.
func (s *Source) Close() error {
	s.cancel()
	s.wg.Wait()
	return s.watcher.Close()
}

// Watch adds root (and recursively every directory beneath it) as a
// watched root.
func (s *Source) Watch(root string) error {
	s.mu.Lock()
	s.roots[root] = struct{}{}
	s.mu.Unlock()
	return s.addTree(root)
}

// Unwatch removes root and every watch beneath it.
func (s *Source) Unwatch(root string) error {
	s.mu.Lock()
	delete(s.roots, root)
	var toRemove []string
	for dir := range s.watchedDirs {
		if dir == root || isWithinDir(root, dir) {
			toRemove = append(toRemove, dir)
		}
	}
	for _, dir := range toRemove {
		delete(s.watchedDirs, dir)
	}
	s.mu.Unlock()

	var firstErr error
	for _, dir := range toRemove {
		if err := s.watcher.Remove(dir); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Source) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		s.addWatch(path)
		return nil
	})
}

func (s *Source) addWatch(dir string) {
	s.mu.Lock()
	if _, ok := s.watchedDirs[dir]; ok {
		s.mu.Unlock()
		return
	}
	s.watchedDirs[dir] = struct{}{}
	s.mu.Unlock()

	if err := s.watcher.Add(dir); err != nil {
		log.Printf("rawevent: watch %s: %v", dir, err)
	}
}

func (s *Source) isWatchedRoot(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.roots[path]
	return ok
}

// loop translates fsnotify notifications into debounced batches. It is
// the only goroutine that touches s.pending.
func (s *Source) loop() {
	defer s.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time

	armTimer := func() {
		if timer == nil {
			timer = time.NewTimer(s.debounce)
		} else {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(s.debounce)
		}
		timerC = timer.C
	}

	for {
		select {
		case <-s.ctx.Done():
			return

		case evt, ok := <-s.watcher.Events():
			if !ok {
				return
			}
			s.handleFsEvent(evt)
			armTimer()

		case err, ok := <-s.watcher.Errors():
			if !ok {
				return
			}
			s.handleWatchError(err)

		case <-timerC:
			s.flush()
			timerC = nil
		}
	}
}

func (s *Source) handleFsEvent(evt fsnotify.Event) {
	now := time.Now()

	switch {
	case evt.Op&fsnotify.Create == fsnotify.Create:
		s.mu.Lock()
		s.pending = append(s.pending, Event{Kind: Create, Path: evt.Name, Time: now})
		s.mu.Unlock()

		if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
			s.addWatch(evt.Name)
			s.synthesizeNestedCreates(evt.Name, now)
		}

	case evt.Op&fsnotify.Write == fsnotify.Write:
		s.appendPending(Event{Kind: ModifyData, Path: evt.Name, Time: now})

	case evt.Op&fsnotify.Remove == fsnotify.Remove:
		s.appendPending(Event{Kind: Remove, Path: evt.Name, Time: now})
		s.forgetWatch(evt.Name)

		if s.isWatchedRoot(evt.Name) {
			s.handleRootVanished(evt.Name, now)
		}

	case evt.Op&fsnotify.Rename == fsnotify.Rename:
		// fsnotify reports a bare Rename on the old path; the OS gives
		// no "to" half directly, so this surfaces as RenameAny and the
		// coalescer reconciles it against any paired Create it can find
		// in the same batch.
		s.appendPending(Event{Kind: RenameAny, Path: evt.Name, Time: now})
		s.forgetWatch(evt.Name)

	case evt.Op&fsnotify.Chmod == fsnotify.Chmod:
		s.appendPending(Event{Kind: ModifyAny, Path: evt.Name, Time: now})
	}
}

func (s *Source) appendPending(e Event) {
	s.mu.Lock()
	s.pending = append(s.pending, e)
	s.mu.Unlock()
}

func (s *Source) forgetWatch(path string) {
	s.mu.Lock()
	delete(s.watchedDirs, path)
	s.mu.Unlock()
}

// synthesizeNestedCreates walks a newly-created directory and emits a
// Create event for every file/subdirectory it already contains — the
// contents of a directory created by a single bulk copy or `mkdir -p`
// are never individually reported by the OS watcher once the directory
// itself already existed at watch-add time.
func (s *Source) synthesizeNestedCreates(dir string, at time.Time) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		s.appendPending(Event{Kind: Create, Path: path, Time: at})
		if entry.IsDir() {
			s.addWatch(path)
			s.synthesizeNestedCreates(path, at)
		}
	}
}

// handleRootVanished implements the synthetic-create rule for a
// vanished watch root: its removal is reported as Remove, and iff the
// resolver can still find the same identity living at another path
// outside the system trash, a synthetic Create follows at that new
// path.
func (s *Source) handleRootVanished(root string, at time.Time) {
	if s.resolver == nil {
		return
	}
	id, ok := s.resolver.Identity(root)
	if !ok {
		return
	}
	newPath, found, err := s.resolver.PathOf(id)
	if err != nil || !found || newPath == root || isInSystemTrash(newPath) {
		return
	}
	s.appendPending(Event{Kind: Create, Path: newPath, Time: at})
}

func (s *Source) handleWatchError(err error) {
	we := WatchError{Err: err}
	if errors.Is(err, fsnotify.ErrEventOverflow) {
		log.Printf("rawevent: watcher event queue overflowed: %v", err)
	}
	select {
	case s.errors <- ErrorBatch{Errors: []WatchError{we}, Time: time.Now()}:
	case <-s.ctx.Done():
	}
}

// flush drains pending into a Batch and sends it, blocking until
// accepted — this channel must never drop a batch.
func (s *Source) flush() {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return
	}
	events := s.pending
	s.pending = nil
	s.mu.Unlock()

	batch := Batch{Events: events, Time: time.Now()}
	select {
	case s.batches <- batch:
	case <-s.ctx.Done():
	}
}

func isWithinDir(root, dir string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	return rel != ".." && !filepath.IsAbs(rel) && rel != "."
}

func isInSystemTrash(path string) bool {
	base := filepath.Base(filepath.Dir(path))
	switch base {
	case ".Trash", ".local/share/Trash", "$RECYCLE.BIN", ".Trashes":
		return true
	default:
		return false
	}
}
