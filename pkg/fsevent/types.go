// Package fsevent implements the event coalescer (component C): it
// turns one rawevent.Batch into a list of semantic file-system events,
// filtering noise, suppressing nested bulk-create/remove events, and
// grouping rename/move pairs by file identity.
package fsevent

import "time"

// Kind is a semantic (post-coalescing) file-system event kind.
type Kind int

const (
	FileCreated Kind = iota
	FileRemoved
	FileDataModified
	FileOther
	FileRenamed
	FileMoved
	FolderCreated
	FolderRemoved
	FolderOther
	FolderRenamed
	FolderMoved
	AnyRemoved
)

func (k Kind) String() string {
	switch k {
	case FileCreated:
		return "file_created"
	case FileRemoved:
		return "file_removed"
	case FileDataModified:
		return "file_data_modified"
	case FileOther:
		return "file_other"
	case FileRenamed:
		return "file_renamed"
	case FileMoved:
		return "file_moved"
	case FolderCreated:
		return "folder_created"
	case FolderRemoved:
		return "folder_removed"
	case FolderOther:
		return "folder_other"
	case FolderRenamed:
		return "folder_renamed"
	case FolderMoved:
		return "folder_moved"
	case AnyRemoved:
		return "any_removed"
	default:
		return "unknown"
	}
}

// Event is one semantic file-system event, the coalescer's output.
// Path carries the single-path kinds (Created/Removed/DataModified/
// Other/AnyRemoved); From/To carry the paired kinds (Renamed/Moved).
type Event struct {
	Kind Kind
	Path string
	From string
	To   string
	Time time.Time
	// BatchID traces the event back to the rawevent.Batch it was
	// coalesced from.
	BatchID uint64
}
