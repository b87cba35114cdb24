package rawevent_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syre-project/engine/pkg/rawevent"
)

type fakeWatcher struct {
	added   []string
	removed []string
	events  chan fsnotify.Event
	errs    chan error
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{
		events: make(chan fsnotify.Event, 16),
		errs:   make(chan error, 16),
	}
}

func (f *fakeWatcher) Add(name string) error         { f.added = append(f.added, name); return nil }
func (f *fakeWatcher) Remove(name string) error      { f.removed = append(f.removed, name); return nil }
func (f *fakeWatcher) Close() error                  { close(f.events); close(f.errs); return nil }
func (f *fakeWatcher) Events() <-chan fsnotify.Event { return f.events }
func (f *fakeWatcher) Errors() <-chan error          { return f.errs }

func TestSourceWatchAddsDirectoryTree(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "child"), 0o755))

	fw := newFakeWatcher()
	src, err := rawevent.NewSource(rawevent.Options{Watcher: fw, DebounceInterval: 10 * time.Millisecond})
	require.NoError(t, err)
	defer src.Close()

	require.NoError(t, src.Watch(root))
	assert.Contains(t, fw.added, root)
	assert.Contains(t, fw.added, filepath.Join(root, "child"))
}

func TestSourceFlushesDebouncedBatch(t *testing.T) {
	fw := newFakeWatcher()
	src, err := rawevent.NewSource(rawevent.Options{Watcher: fw, DebounceInterval: 20 * time.Millisecond})
	require.NoError(t, err)
	defer src.Close()

	fw.events <- fsnotify.Event{Name: "/tmp/a.txt", Op: fsnotify.Create}
	fw.events <- fsnotify.Event{Name: "/tmp/a.txt", Op: fsnotify.Write}

	select {
	case batch := <-src.Batches():
		require.Len(t, batch.Events, 2)
		assert.Equal(t, rawevent.Create, batch.Events[0].Kind)
		assert.Equal(t, rawevent.ModifyData, batch.Events[1].Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for batch")
	}
}

func TestSourceUnwatchRemovesSubtree(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "child"), 0o755))

	fw := newFakeWatcher()
	src, err := rawevent.NewSource(rawevent.Options{Watcher: fw, DebounceInterval: 10 * time.Millisecond})
	require.NoError(t, err)
	defer src.Close()

	require.NoError(t, src.Watch(root))
	require.NoError(t, src.Unwatch(root))

	assert.Contains(t, fw.removed, root)
	assert.Contains(t, fw.removed, filepath.Join(root, "child"))
}
