// Package state implements the authoritative project-tree model and its
// reducer (component E of the pipeline): AppState, ProjectState, Graph,
// ContainerNode, Asset, Analysis, and the TryReduce transition function
// that is the only way any of it may be mutated.
package state

import (
	"fmt"

	"github.com/google/uuid"
)

// ResourceId is a stable identifier for a container, asset, or user
// record. It never changes for the life of the resource, even across
// rename/move.
type ResourceId struct {
	id uuid.UUID
}

// NewResourceId generates a fresh, random ResourceId.
func NewResourceId() ResourceId {
	return ResourceId{id: uuid.New()}
}

func (r ResourceId) String() string { return r.id.String() }

func (r ResourceId) MarshalText() ([]byte, error) { return []byte(r.id.String()), nil }

func (r *ResourceId) UnmarshalText(text []byte) error {
	id, err := uuid.ParseBytes(text)
	if err != nil {
		return fmt.Errorf("parse resource id: %w", err)
	}
	r.id = id
	return nil
}

// LoadErrorKind distinguishes why an on-disk resource failed to load.
type LoadErrorKind int

const (
	// LoadErrorNotFound means the file does not exist.
	LoadErrorNotFound LoadErrorKind = iota
	// LoadErrorParse means the file exists but failed to parse.
	LoadErrorParse
)

func (k LoadErrorKind) String() string {
	switch k {
	case LoadErrorNotFound:
		return "not_found"
	case LoadErrorParse:
		return "parse"
	default:
		return "unknown"
	}
}

// LoadError is the failure mode carried by Data when a resource file is
// missing or malformed.
type LoadError struct {
	Kind LoadErrorKind
	Err  error
}

func (e LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func NotFoundError() LoadError { return LoadError{Kind: LoadErrorNotFound} }

func ParseError(err error) LoadError { return LoadError{Kind: LoadErrorParse, Err: err} }

// Data is Ok(T) | Err(LoadError), mirroring the Rust Data<T> the original
// reducer carries for every loaded resource (properties, settings,
// analyses, assets, ...).
type Data[T any] struct {
	value T
	err   *LoadError
	ok    bool
}

// Ok wraps a successfully-loaded value.
func Ok[T any](v T) Data[T] { return Data[T]{value: v, ok: true} }

// Err wraps a load failure.
func Err[T any](err LoadError) Data[T] { return Data[T]{err: &err} }

// Get returns the value and true if Ok, else the zero value and false.
func (d Data[T]) Get() (T, bool) { return d.value, d.ok }

// Error returns the load error, or nil if Ok.
func (d Data[T]) Error() *LoadError { return d.err }

// FolderResource is Absent | Present(T), used for any directory-backed
// resource whose presence depends on the directory existing on disk
// (a project's folder, a project's graph).
type FolderResource[T any] struct {
	value   T
	present bool
}

func Absent[T any]() FolderResource[T] { return FolderResource[T]{} }

func Present[T any](v T) FolderResource[T] { return FolderResource[T]{value: v, present: true} }

func (f FolderResource[T]) IsPresent() bool { return f.present }

func (f FolderResource[T]) Get() (T, bool) { return f.value, f.present }

// FileResource is Present | Absent for a tracked file (an asset or an
// analysis script) whose underlying file may disappear without the
// tracked resource itself being deleted from state.
type FileResource int

const (
	FileAbsent FileResource = iota
	FilePresent
)
