package fsutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	src := "/bower/requirejs/require.js"
	dst := "/vendor/require.js"

	require.NoError(t, afero.WriteFile(fs, src, []byte("var requirejs;"), 0o640))
	mtime := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, fs.Chtimes(src, mtime, mtime))

	require.NoError(t, CopyFile(fs, src, dst))

	content, err := afero.ReadFile(fs, dst)
	require.NoError(t, err)
	assert.Equal(t, "var requirejs;", string(content))

	info, err := fs.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(mtime), "modification time should be preserved")

	// No temp files left behind
	entries, err := afero.ReadDir(fs, "/vendor")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCopyFile_MissingSource(t *testing.T) {
	fs := afero.NewMemMapFs()

	err := CopyFile(fs, "/missing.js", "/vendor/missing.js")
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))

	exists, _ := afero.Exists(fs, "/vendor/missing.js")
	assert.False(t, exists)
}

func TestWriteFile_OnDisk(t *testing.T) {
	fs := afero.NewOsFs()
	path := filepath.Join(t.TempDir(), "public", "stylesheets", "app.css")

	require.NoError(t, WriteFile(fs, path, []byte("body{color:red}"), 0o644))
	require.NoError(t, WriteFile(fs, path, []byte("p{color:blue}"), 0o644))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "p{color:blue}", string(content))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should be renamed away")
}

func TestHashFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/a", []byte("same"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/b", []byte("same"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/c", []byte("different"), 0o644))

	a, err := HashFile(fs, "/a")
	require.NoError(t, err)
	b, err := HashFile(fs, "/b")
	require.NoError(t, err)
	c, err := HashFile(fs, "/c")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, HashBytes([]byte("same")), a)

	_, err = HashFile(fs, "/missing")
	assert.Error(t, err)
}
