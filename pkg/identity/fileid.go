package identity

// FileID is the OS-level identity of an inode/file-record: stable
// across a rename or move on the same volume, distinct after a
// delete-and-recreate at the same path. Comparable, so it is usable
// directly as a map key.
type FileID struct {
	device uint64
	inode  uint64
}

// Valid reports whether id was derived from a real stat, as opposed to
// the zero value.
func (id FileID) Valid() bool { return id.device != 0 || id.inode != 0 }
