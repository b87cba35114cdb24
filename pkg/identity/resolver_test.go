package identity_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syre-project/engine/pkg/identity"
)

func TestResolverStatCachesIdentity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))

	r := identity.NewResolver()
	id, ok, err := r.Stat(path)
	require.NoError(t, err)
	require.True(t, ok)

	cached, ok := r.Identity(path)
	require.True(t, ok)
	assert.Equal(t, id, cached)
}

func TestResolverStatMissingPathReturnsNotFound(t *testing.T) {
	r := identity.NewResolver()
	_, ok, err := r.Stat(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolverOnRenameMovesCacheEntry(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "from.txt")
	to := filepath.Join(dir, "to.txt")
	require.NoError(t, os.WriteFile(from, []byte("hi"), 0o644))

	r := identity.NewResolver()
	id, ok, err := r.Stat(from)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, os.Rename(from, to))
	r.OnRename(from, to)

	_, ok = r.Identity(from)
	assert.False(t, ok)

	gotID, ok := r.Identity(to)
	require.True(t, ok)
	assert.Equal(t, id, gotID)

	path, found, err := r.PathOf(id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, to, path)
}

func TestResolverOnRemoveDropsEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))

	r := identity.NewResolver()
	_, ok, err := r.Stat(path)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, os.Remove(path))
	r.OnRemove(path)

	_, ok = r.Identity(path)
	assert.False(t, ok)
}
