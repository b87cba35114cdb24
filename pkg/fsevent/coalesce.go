package fsevent

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/syre-project/engine/pkg/identity"
	"github.com/syre-project/engine/pkg/rawevent"
	"github.com/syre-project/engine/pkg/syreerr"
)

// Coalesce turns one raw batch into semantic events: it drops noise
// paths, suppresses nested bulk create/remove events, groups
// rename/move pairs by file identity, and converts whatever is left
// one event at a time. The resolver's cache reflects every event in
// the batch by the time Coalesce returns. batchID is stamped onto
// every returned Event so callers can trace it back to the raw batch.
func Coalesce(batch rawevent.Batch, resolver *identity.Resolver, batchID uint64) ([]Event, []error) {
	filtered := filterNested(filterNoise(batch.Events))

	grouped, remaining := groupByIdentity(filtered, resolver)
	reduced, stillRemaining := reduceGroups(grouped, batchID)
	remaining = append(remaining, stillRemaining...)

	converted, errs := convertAll(remaining, batchID)
	converted = append(converted, reduced...)

	updateIdentityCache(resolver, filtered)
	return converted, errs
}

func filterNoise(events []rawevent.Event) []rawevent.Event {
	out := make([]rawevent.Event, 0, len(events))
	for _, e := range events {
		if isNoisePath(e.Path) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func isNoisePath(path string) bool {
	name := filepath.Base(path)
	if name == ".DS_Store" {
		return true
	}
	return isLockFileName(name)
}

// isLockFileName matches the ".~<name>#" pattern used by office-suite
// lock files.
func isLockFileName(name string) bool {
	return strings.HasPrefix(name, ".~") && strings.HasSuffix(name, "#")
}

// filterNested drops Create (or Remove) events whose path is a
// descendant of another Create (or Remove) event's path in the same
// batch — a directory created or removed in bulk reports an event per
// child, but one synthetic event for the common ancestor is enough.
func filterNested(events []rawevent.Event) []rawevent.Event {
	events = suppressNestedOfKind(events, rawevent.Create)
	events = suppressNestedOfKind(events, rawevent.Remove)
	return events
}

func suppressNestedOfKind(events []rawevent.Event, kind rawevent.Kind) []rawevent.Event {
	var ofKind []string
	for _, e := range events {
		if e.Kind == kind {
			ofKind = append(ofKind, e.Path)
		}
	}
	if len(ofKind) < 2 {
		return events
	}

	nested := make(map[string]struct{})
	for _, a := range ofKind {
		for _, b := range ofKind {
			if a != b && isWithinDir(a, b) {
				nested[b] = struct{}{}
			}
		}
	}
	if len(nested) == 0 {
		return events
	}

	out := make([]rawevent.Event, 0, len(events))
	for _, e := range events {
		if e.Kind == kind {
			if _, drop := nested[e.Path]; drop {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

func isWithinDir(ancestor, path string) bool {
	rel, err := filepath.Rel(ancestor, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// groupByIdentity buckets events whose path resolves to a known
// identity, so a rename's "from" half and "to" half land in the same
// bucket even though they carry different paths. RenameFrom and Remove
// key off the cached (pre-event) identity; RenameTo and Create key off
// the live identity the OS reports now. RenameAny — fsnotify's bare,
// unpaired rename — uses the live identity if the path still exists,
// otherwise falls back to whatever was last cached for it.
func groupByIdentity(events []rawevent.Event, resolver *identity.Resolver) (map[identity.FileID][]rawevent.Event, []rawevent.Event) {
	grouped := make(map[identity.FileID][]rawevent.Event)
	var remaining []rawevent.Event

	for _, e := range events {
		switch e.Kind {
		case rawevent.RenameFrom, rawevent.Remove:
			id, ok := resolver.Identity(e.Path)
			if !ok {
				remaining = append(remaining, e)
				continue
			}
			grouped[id] = append(grouped[id], e)

		case rawevent.RenameTo, rawevent.Create:
			id, ok, err := resolver.Stat(e.Path)
			if err != nil || !ok {
				remaining = append(remaining, e)
				continue
			}
			grouped[id] = append(grouped[id], e)

		case rawevent.RenameAny:
			if id, ok, err := resolver.Stat(e.Path); err == nil && ok {
				grouped[id] = append(grouped[id], e)
				continue
			}
			if id, ok := resolver.Identity(e.Path); ok {
				grouped[id] = append(grouped[id], e)
				continue
			}
			remaining = append(remaining, e)

		default:
			remaining = append(remaining, e)
		}
	}
	return grouped, remaining
}

// reduceGroups turns each two-event identity group into one Renamed or
// Moved event. Groups of any other size go back to remaining for
// one-by-one conversion — a lone half of a rename whose partner landed
// in a different batch, or a same-identity coincidence that isn't
// actually a paired rename.
func reduceGroups(grouped map[identity.FileID][]rawevent.Event, batchID uint64) ([]Event, []rawevent.Event) {
	var converted []Event
	var remaining []rawevent.Event

	for _, events := range grouped {
		sort.Slice(events, func(i, j int) bool { return events[i].Time.Before(events[j].Time) })

		if len(events) != 2 {
			remaining = append(remaining, events...)
			continue
		}

		if ev, ok := reducePair(events[0], events[1], batchID); ok {
			converted = append(converted, ev)
		} else {
			remaining = append(remaining, events[0], events[1])
		}
	}
	return converted, remaining
}

func reducePair(e1, e2 rawevent.Event, batchID uint64) (Event, bool) {
	isRenamePair := (e1.Kind == rawevent.RenameFrom && e2.Kind == rawevent.RenameTo) ||
		(e1.Kind == rawevent.RenameAny && e2.Kind == rawevent.RenameAny)
	isMovePair := e1.Kind == rawevent.Remove && e2.Kind == rawevent.Create

	if !isRenamePair && !isMovePair {
		return Event{}, false
	}

	isDir, exists := statIsDir(e2.Path)
	if !exists {
		return Event{}, false
	}

	sameParent := filepath.Dir(e1.Path) == filepath.Dir(e2.Path)
	var kind Kind
	switch {
	case isDir && sameParent:
		kind = FolderRenamed
	case isDir && !sameParent:
		kind = FolderMoved
	case !isDir && sameParent:
		kind = FileRenamed
	default:
		kind = FileMoved
	}

	return Event{Kind: kind, From: e1.Path, To: e2.Path, Time: e2.Time, BatchID: batchID}, true
}

func convertAll(events []rawevent.Event, batchID uint64) ([]Event, []error) {
	var converted []Event
	var errs []error
	for _, e := range events {
		ev, err := convertOne(e, batchID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ev != nil {
			converted = append(converted, *ev)
		}
	}
	return converted, errs
}

func convertOne(e rawevent.Event, batchID uint64) (*Event, error) {
	switch e.Kind {
	case rawevent.Create:
		isDir, exists := statIsDir(e.Path)
		if !exists {
			return nil, fmt.Errorf("%w: created path vanished before it could be classified: %s", syreerr.ErrProcessing, e.Path)
		}
		return &Event{Kind: createdKind(isDir), Path: e.Path, Time: e.Time, BatchID: batchID}, nil

	case rawevent.RenameFrom:
		// fsnotify's "from" half reports even when the path has already
		// moved on; if it still exists under this name, nothing actually
		// left — treat it as a create of whatever is there now.
		isDir, exists := statIsDir(e.Path)
		if !exists {
			return &Event{Kind: AnyRemoved, Path: e.Path, Time: e.Time, BatchID: batchID}, nil
		}
		return &Event{Kind: createdKind(isDir), Path: e.Path, Time: e.Time, BatchID: batchID}, nil

	case rawevent.RenameTo:
		isDir, exists := statIsDir(e.Path)
		if !exists {
			return nil, fmt.Errorf("%w: renamed-to path vanished before it could be classified: %s", syreerr.ErrProcessing, e.Path)
		}
		return &Event{Kind: createdKind(isDir), Path: e.Path, Time: e.Time, BatchID: batchID}, nil

	case rawevent.RenameAny:
		isDir, exists := statIsDir(e.Path)
		if !exists {
			return &Event{Kind: AnyRemoved, Path: e.Path, Time: e.Time, BatchID: batchID}, nil
		}
		return &Event{Kind: otherKind(isDir), Path: e.Path, Time: e.Time, BatchID: batchID}, nil

	case rawevent.ModifyData:
		isDir, exists := statIsDir(e.Path)
		if !exists {
			return nil, fmt.Errorf("%w: modified path not found: %s", syreerr.ErrProcessing, e.Path)
		}
		if isDir {
			return nil, nil
		}
		return &Event{Kind: FileDataModified, Path: e.Path, Time: e.Time, BatchID: batchID}, nil

	case rawevent.ModifyAny:
		isDir, exists := statIsDir(e.Path)
		if !exists {
			return nil, fmt.Errorf("%w: modified path not found: %s", syreerr.ErrProcessing, e.Path)
		}
		return &Event{Kind: otherKind(isDir), Path: e.Path, Time: e.Time, BatchID: batchID}, nil

	case rawevent.Remove:
		// The path is already gone, so the OS can no longer say whether
		// it was a file or a folder.
		return &Event{Kind: AnyRemoved, Path: e.Path, Time: e.Time, BatchID: batchID}, nil

	default:
		return nil, fmt.Errorf("%w: unhandled raw event kind %v", syreerr.ErrProcessing, e.Kind)
	}
}

func createdKind(isDir bool) Kind {
	if isDir {
		return FolderCreated
	}
	return FileCreated
}

func otherKind(isDir bool) Kind {
	if isDir {
		return FolderOther
	}
	return FileOther
}

func statIsDir(path string) (isDir, exists bool) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, false
	}
	return info.IsDir(), true
}

// updateIdentityCache applies the resolver cache-update rule for every
// event actually processed this batch, independent of whether it ended
// up grouped, reduced, or converted singly.
func updateIdentityCache(resolver *identity.Resolver, events []rawevent.Event) {
	for _, e := range events {
		switch e.Kind {
		case rawevent.Create:
			resolver.OnCreate(e.Path)
		case rawevent.Remove:
			resolver.OnRemove(e.Path)
		case rawevent.RenameFrom:
			resolver.OnRemove(e.Path)
		case rawevent.RenameTo:
			resolver.OnCreate(e.Path)
		case rawevent.RenameAny:
			if _, exists := statIsDir(e.Path); exists {
				resolver.OnCreate(e.Path)
			} else {
				resolver.OnRemove(e.Path)
			}
		case rawevent.ModifyData, rawevent.ModifyAny:
			resolver.EnsureCached(e.Path)
		}
	}
}
