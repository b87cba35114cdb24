// Package rawevent wraps an OS recursive-directory watcher behind a
// small testable interface and turns its notifications into debounced,
// time-ordered batches (component B of the pipeline).
package rawevent

import "time"

// Kind is the raw notification kind fsnotify (or any other backend)
// reports for one path.
type Kind int

const (
	Create Kind = iota
	Remove
	RenameFrom
	RenameTo
	RenameAny
	ModifyData
	ModifyAny
)

func (k Kind) String() string {
	switch k {
	case Create:
		return "create"
	case Remove:
		return "remove"
	case RenameFrom:
		return "rename_from"
	case RenameTo:
		return "rename_to"
	case RenameAny:
		return "rename_any"
	case ModifyData:
		return "modify_data"
	case ModifyAny:
		return "modify_any"
	default:
		return "unknown"
	}
}

// Event is one raw, unfiltered notification for a single path.
type Event struct {
	Kind Kind
	Path string
	Time time.Time
}

// Batch is a time-ordered run of raw events collected within one
// debounce window.
type Batch struct {
	Events []Event
	Time   time.Time
}

// WatchError carries one watcher-level failure reported on the
// underlying fsnotify.Watcher's Errors channel (queue overflow and
// similar), which is not path-scoped. A watched root's own
// disappearance is handled separately and inline, via the synthetic
// remove/create rule in source.go's handleRootVanished.
type WatchError struct {
	Err error
}

// ErrorBatch carries watcher errors on their own channel, apart from
// the raw batches. Source sends one ErrorBatch per error as it arrives,
// and the supervisor logs each one; a watched root's disappearance
// does not come through here (see WatchError).
type ErrorBatch struct {
	Errors []WatchError
	Time   time.Time
}
