package rawevent

import "github.com/fsnotify/fsnotify"

// Watcher abstracts the underlying OS notification mechanism so Source
// can be driven by a fake in tests.
type Watcher interface {
	Add(name string) error
	Remove(name string) error
	Close() error
	Events() <-chan fsnotify.Event
	Errors() <-chan error
}

type fsNotifyWatcher struct {
	*fsnotify.Watcher
}

func newFsNotifyWatcher() (Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &fsNotifyWatcher{Watcher: w}, nil
}

func (f *fsNotifyWatcher) Events() <-chan fsnotify.Event { return f.Watcher.Events }

func (f *fsNotifyWatcher) Errors() <-chan error { return f.Watcher.Errors }
