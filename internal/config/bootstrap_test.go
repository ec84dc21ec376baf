package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func snapshotTree(t *testing.T, root string) map[string]fs.FileMode {
	t.Helper()

	tree := map[string]fs.FileMode{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		tree[rel] = info.Mode()
		return nil
	})
	require.NoError(t, err)
	return tree
}

func TestEnsureDirectoriesCreatesEveryRole(t *testing.T) {
	layout := NewPathLayout(filepath.Join(t.TempDir(), "vesta"))

	require.NoError(t, EnsureDirectories(layout))

	for _, dir := range layout.Directories() {
		info, err := os.Stat(dir.Path)
		require.NoError(t, err, dir.Role)
		require.True(t, info.IsDir(), dir.Role)
	}
}

func TestEnsureDirectoriesIsIdempotent(t *testing.T) {
	base := t.TempDir()
	layout := NewPathLayout(base)

	require.NoError(t, EnsureDirectories(layout))
	first := snapshotTree(t, base)

	require.NoError(t, EnsureDirectories(layout))
	require.Equal(t, first, snapshotTree(t, base))
}

func TestEnsureDirectoriesKeepsExistingContents(t *testing.T) {
	layout := NewPathLayout(t.TempDir())
	require.NoError(t, os.MkdirAll(layout.CacheDir, 0o700))
	cached := filepath.Join(layout.CacheDir, "reply.json")
	require.NoError(t, os.WriteFile(cached, []byte("{}"), 0o600))

	require.NoError(t, EnsureDirectories(layout))

	contents, err := os.ReadFile(cached)
	require.NoError(t, err)
	require.Equal(t, "{}", string(contents))
}

func TestEnsureDirectoriesFailsWhenComponentIsFile(t *testing.T) {
	layout := NewPathLayout(t.TempDir())
	dataDir := filepath.Dir(layout.CacheDir)
	require.NoError(t, os.WriteFile(dataDir, []byte("not a dir"), 0o600))

	err := EnsureDirectories(layout)
	require.Error(t, err)

	var bootErr *BootstrapError
	require.True(t, errors.As(err, &bootErr))
	require.Equal(t, "cache_dir", bootErr.Role)
	require.Equal(t, layout.CacheDir, bootErr.Path)
	require.Contains(t, err.Error(), layout.CacheDir)
}

func TestEnsureDirectoriesFailsWhenRoleIsFile(t *testing.T) {
	layout := NewPathLayout(t.TempDir())
	require.NoError(t, os.WriteFile(layout.ConfigDir, nil, 0o600))

	var bootErr *BootstrapError
	require.ErrorAs(t, EnsureDirectories(layout), &bootErr)
	require.Equal(t, "config_dir", bootErr.Role)
}

func TestEnsureDirectoriesSurfacesPermissionError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses directory permissions")
	}

	base := t.TempDir()
	require.NoError(t, os.Chmod(base, 0o500))
	t.Cleanup(func() { _ = os.Chmod(base, 0o700) })

	err := EnsureDirectories(NewPathLayout(base))
	require.Error(t, err)
	require.ErrorIs(t, err, fs.ErrPermission)
}
