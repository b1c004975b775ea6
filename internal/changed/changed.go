// Package changed decides whether a destination copy of a file is stale.
package changed

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/Norgate-AV/assetpipe/internal/fsutil"
	"github.com/spf13/afero"
)

// Comparison modes
const (
	CompareMtime  = "mtime"
	CompareSHA256 = "sha256"
)

// Meta is what the gate knows about one file
type Meta struct {
	Path    string
	Exists  bool
	Size    int64
	ModTime time.Time

	// Hex sha256 of the contents; empty when not computed
	Digest string
}

// NeedsUpdate reports whether dst must be rewritten from src.
//
// A missing or differently sized destination always needs an update.
// When both digests are known they decide; otherwise a source newer
// than the destination does.
func NeedsUpdate(src, dst Meta) bool {
	if !dst.Exists {
		return true
	}

	if src.Size != dst.Size {
		return true
	}

	if src.Digest != "" && dst.Digest != "" {
		return src.Digest != dst.Digest
	}

	return src.ModTime.After(dst.ModTime)
}

// Stat collects Meta for path. A missing file is not an error.
func Stat(fsys afero.Fs, path string, digest bool) (Meta, error) {
	m := Meta{Path: path}

	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return m, nil
		}

		return m, err
	}

	if info.IsDir() {
		return m, fmt.Errorf("%s is a directory", path)
	}

	m.Exists = true
	m.Size = info.Size()
	m.ModTime = info.ModTime()

	if digest {
		sum, err := fsutil.HashFile(fsys, path)
		if err != nil {
			return m, err
		}

		m.Digest = sum
	}

	return m, nil
}

// Gate compares a source file with its namesake in a destination directory
type Gate struct {
	Fs      afero.Fs
	Compare string
}

// NewGate creates a gate; an empty compare mode means sha256
func NewGate(fsys afero.Fs, compare string) *Gate {
	if compare == "" {
		compare = CompareSHA256
	}

	return &Gate{Fs: fsys, Compare: compare}
}

// Destination returns where src lands inside destDir
func Destination(src, destDir string) string {
	return filepath.Join(destDir, filepath.Base(src))
}

// Check returns the source Meta and whether destDir needs a fresh copy of src
func (g *Gate) Check(src, destDir string) (Meta, bool, error) {
	srcMeta, err := Stat(g.Fs, src, false)
	if err != nil {
		return srcMeta, false, err
	}

	if !srcMeta.Exists {
		return srcMeta, false, fmt.Errorf("%s: %w", src, fs.ErrNotExist)
	}

	dstMeta, err := Stat(g.Fs, Destination(src, destDir), false)
	if err != nil {
		return srcMeta, false, err
	}

	// Digests only matter when the cheap checks cannot decide
	if g.Compare == CompareSHA256 && dstMeta.Exists && srcMeta.Size == dstMeta.Size {
		if srcMeta.Digest, err = fsutil.HashFile(g.Fs, srcMeta.Path); err != nil {
			return srcMeta, false, err
		}

		if dstMeta.Digest, err = fsutil.HashFile(g.Fs, dstMeta.Path); err != nil {
			return srcMeta, false, err
		}
	}

	return srcMeta, NeedsUpdate(srcMeta, dstMeta), nil
}
