package fsevent_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syre-project/engine/pkg/fsevent"
	"github.com/syre-project/engine/pkg/identity"
	"github.com/syre-project/engine/pkg/rawevent"
)

func TestCoalesceFiltersDSStoreAndLockFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	batch := rawevent.Batch{
		Time: now,
		Events: []rawevent.Event{
			{Kind: rawevent.Create, Path: filepath.Join(dir, ".DS_Store"), Time: now},
			{Kind: rawevent.Create, Path: filepath.Join(dir, ".~lock.doc#"), Time: now},
		},
	}

	events, errs := fsevent.Coalesce(batch, identity.NewResolver(), 1)
	assert.Empty(t, errs)
	assert.Empty(t, events)
}

func TestCoalesceSuppressesNestedCreatesUnderNewFolder(t *testing.T) {
	dir := t.TempDir()
	folder := filepath.Join(dir, "new-folder")
	child := filepath.Join(folder, "child.txt")
	require.NoError(t, os.MkdirAll(folder, 0o755))
	require.NoError(t, os.WriteFile(child, []byte("hi"), 0o644))
	now := time.Now()

	batch := rawevent.Batch{
		Time: now,
		Events: []rawevent.Event{
			{Kind: rawevent.Create, Path: folder, Time: now},
			{Kind: rawevent.Create, Path: child, Time: now.Add(time.Millisecond)},
		},
	}

	events, errs := fsevent.Coalesce(batch, identity.NewResolver(), 1)
	require.Empty(t, errs)
	require.Len(t, events, 1)
	assert.Equal(t, fsevent.FolderCreated, events[0].Kind)
	assert.Equal(t, folder, events[0].Path)
}

func TestCoalesceGroupsRenamePairIntoRenamed(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "old.txt")
	to := filepath.Join(dir, "new.txt")
	require.NoError(t, os.WriteFile(from, []byte("hi"), 0o644))

	resolver := identity.NewResolver()
	_, ok, err := resolver.Stat(from)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, os.Rename(from, to))
	now := time.Now()

	batch := rawevent.Batch{
		Time: now,
		Events: []rawevent.Event{
			{Kind: rawevent.RenameFrom, Path: from, Time: now},
			{Kind: rawevent.RenameTo, Path: to, Time: now.Add(time.Millisecond)},
		},
	}

	events, errs := fsevent.Coalesce(batch, resolver, 7)
	require.Empty(t, errs)
	require.Len(t, events, 1)
	assert.Equal(t, fsevent.FileRenamed, events[0].Kind)
	assert.Equal(t, from, events[0].From)
	assert.Equal(t, to, events[0].To)
	assert.Equal(t, uint64(7), events[0].BatchID)

	_, stillCached := resolver.Identity(from)
	assert.False(t, stillCached)
	_, nowCached := resolver.Identity(to)
	assert.True(t, nowCached)
}

func TestCoalesceGroupsRemoveCreatePairIntoMoved(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	from := filepath.Join(srcDir, "report.txt")
	to := filepath.Join(dstDir, "report.txt")
	require.NoError(t, os.WriteFile(from, []byte("hi"), 0o644))

	resolver := identity.NewResolver()
	_, ok, err := resolver.Stat(from)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, os.Rename(from, to))
	now := time.Now()

	batch := rawevent.Batch{
		Time: now,
		Events: []rawevent.Event{
			{Kind: rawevent.Remove, Path: from, Time: now},
			{Kind: rawevent.Create, Path: to, Time: now.Add(time.Millisecond)},
		},
	}

	events, errs := fsevent.Coalesce(batch, resolver, 3)
	require.Empty(t, errs)
	require.Len(t, events, 1)
	assert.Equal(t, fsevent.FileMoved, events[0].Kind)
	assert.Equal(t, from, events[0].From)
	assert.Equal(t, to, events[0].To)
}

func TestCoalesceUngroupedRemoveBecomesAnyRemoved(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.txt")
	now := time.Now()

	batch := rawevent.Batch{
		Time: now,
		Events: []rawevent.Event{
			{Kind: rawevent.Remove, Path: path, Time: now},
		},
	}

	events, errs := fsevent.Coalesce(batch, identity.NewResolver(), 1)
	require.Empty(t, errs)
	require.Len(t, events, 1)
	assert.Equal(t, fsevent.AnyRemoved, events[0].Kind)
}

func TestCoalesceDataModifyOnMissingPathIsProcessingError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.txt")
	now := time.Now()

	batch := rawevent.Batch{
		Time: now,
		Events: []rawevent.Event{
			{Kind: rawevent.ModifyData, Path: path, Time: now},
		},
	}

	events, errs := fsevent.Coalesce(batch, identity.NewResolver(), 1)
	assert.Empty(t, events)
	require.Len(t, errs, 1)
}

func TestCoalesceDataModifyOnFileEmitsDataModified(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))
	now := time.Now()

	batch := rawevent.Batch{
		Time: now,
		Events: []rawevent.Event{
			{Kind: rawevent.ModifyData, Path: path, Time: now},
		},
	}

	events, errs := fsevent.Coalesce(batch, identity.NewResolver(), 1)
	require.Empty(t, errs)
	require.Len(t, events, 1)
	assert.Equal(t, fsevent.FileDataModified, events[0].Kind)
}
