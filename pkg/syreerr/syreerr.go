// Package syreerr defines the sentinel error kinds shared across the
// pipeline.
package syreerr

import "errors"

var (
	// ErrWatch marks an OS watcher failure for a path (I/O or
	// watcher-capacity). Reported upward; does not stop the pipeline.
	ErrWatch = errors.New("watch error")

	// ErrProcessing marks a raw event the coalescer could not
	// classify. The supervisor logs it and the event is dropped; it is
	// not kept for a later batch.
	ErrProcessing = errors.New("processing error")

	// ErrLoad marks a configuration file that is missing or malformed.
	// Absorbed into state as Data.Err; cleared by a later successful
	// load.
	ErrLoad = errors.New("load error")

	// ErrInvalidTransition marks a reducer action that violates an
	// invariant. The state is left unchanged.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrResolverFailure marks an identity lookup that failed. During
	// coalescing this downgrades the affected group to individual
	// events.
	ErrResolverFailure = errors.New("resolver failure")
)
