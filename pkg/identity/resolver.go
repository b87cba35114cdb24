// Package identity implements the path-identity resolver (component A):
// the only component permitted to ask the OS for a file's identity. It
// maintains a bidirectional path<->FileID cache, seeded lazily as raw
// events arrive and kept current by the coalescer at the end of every
// batch.
package identity

import (
	"fmt"
	"os"
	"sync"
)

// Resolver is the bidirectional path<->FileID cache. Safe for
// concurrent use; the coalescer is its only writer, but rawevent.Source
// also reads it from its own goroutine when a watched root vanishes.
type Resolver struct {
	mu       sync.RWMutex
	pathToID map[string]FileID
	idToPath map[FileID]string
}

// NewResolver returns an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{
		pathToID: make(map[string]FileID),
		idToPath: make(map[FileID]string),
	}
}

// Identity returns the OS-level identity currently cached for path, or
// false if path is not presently known to be live. It never touches the
// filesystem itself — Stat (below) does that and populates the cache.
func (r *Resolver) Identity(absPath string) (FileID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.pathToID[absPath]
	return id, ok
}

// PathOf returns the current canonical path of a previously-seen
// identity. found is false if the identity is no longer known (it may
// have since been removed from the cache); err is non-nil only if the
// lookup mechanism itself failed, which this in-memory implementation
// never does.
func (r *Resolver) PathOf(id FileID) (path string, found bool, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.idToPath[id]
	return p, ok, nil
}

// Stat resolves path's live identity from the OS and caches it. Returns
// false if the path does not currently exist.
func (r *Resolver) Stat(absPath string) (FileID, bool, error) {
	info, err := os.Lstat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return FileID{}, false, nil
		}
		return FileID{}, false, fmt.Errorf("stat %s: %w", absPath, err)
	}
	id, ok := fileIDFromInfo(info)
	if !ok {
		return FileID{}, false, nil
	}
	r.add(absPath, id)
	return id, true, nil
}

func (r *Resolver) add(path string, id FileID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if oldPath, ok := r.idToPath[id]; ok && oldPath != path {
		delete(r.pathToID, oldPath)
	}
	r.pathToID[path] = id
	r.idToPath[id] = path
}

// OnCreate records that path now exists.
func (r *Resolver) OnCreate(path string) {
	if _, ok, err := r.Stat(path); err != nil || !ok {
		return
	}
}

// OnRemove drops path from the cache.
func (r *Resolver) OnRemove(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.pathToID[path]
	if !ok {
		return
	}
	delete(r.pathToID, path)
	if r.idToPath[id] == path {
		delete(r.idToPath, id)
	}
}

// OnRename drops from and adds to, for a Rename(from->to) event.
func (r *Resolver) OnRename(from, to string) {
	r.OnRemove(from)
	r.OnCreate(to)
}

// EnsureCached stats path if it is not already cached, for a Modify
// event that doesn't change existence.
func (r *Resolver) EnsureCached(path string) {
	if _, ok := r.Identity(path); ok {
		return
	}
	_, _, _ = r.Stat(path)
}

// Forget removes every cache entry at or beneath root — used when a
// watched root vanishes, so stale identities under it are not confused
// with identities later created at the same path.
func (r *Resolver) Forget(root string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for path, id := range r.pathToID {
		if path == root || isWithin(root, path) {
			delete(r.pathToID, path)
			delete(r.idToPath, id)
		}
	}
}

func isWithin(root, path string) bool {
	if len(path) <= len(root) {
		return false
	}
	return path[:len(root)] == root && path[len(root)] == os.PathSeparator
}
