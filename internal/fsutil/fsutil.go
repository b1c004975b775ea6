// Package fsutil holds the file operations shared by tasks and the build cache.
package fsutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// CopyFile copies src to dst, keeping the file mode and modification time.
// dst is replaced atomically.
func CopyFile(fs afero.Fs, src, dst string) error {
	srcFile, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	if err := writeAtomic(fs, dst, srcInfo.Mode().Perm(), func(w io.Writer) error {
		_, err := io.Copy(w, srcFile)
		return err
	}); err != nil {
		return err
	}

	return fs.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime())
}

// WriteFile writes data to path atomically, creating parent directories
func WriteFile(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	return writeAtomic(fs, path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// writeAtomic writes through a temp file in the target directory and renames it into place
func writeAtomic(fs afero.Fs, path string, perm os.FileMode, write func(io.Writer) error) error {
	dir := filepath.Dir(path)

	// Create parent directory if needed
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}

	tmpName := tmp.Name()
	cleanup := func() {
		_ = fs.Remove(tmpName)
	}

	if err := write(tmp); err != nil {
		tmp.Close()
		cleanup()
		return err
	}

	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}

	if err := fs.Chmod(tmpName, perm); err != nil {
		cleanup()
		return err
	}

	if err := fs.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to move %s into place: %w", filepath.Base(path), err)
	}

	return nil
}

// HashFile creates a hash of a file's content
func HashFile(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes returns the hex sha256 of data
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
