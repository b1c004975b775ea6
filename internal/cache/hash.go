package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// HashInputs creates a unique hash for a task build.
// The hash is based on:
// - Task name
// - Each input path and its content, in the given order
// - Options, in the given order
func HashInputs(fsys afero.Fs, task string, files []string, options ...string) (string, error) {
	h := sha256.New()

	writeField(h, task)

	for _, file := range files {
		writeField(h, file)

		f, err := fsys.Open(file)
		if err != nil {
			return "", fmt.Errorf("failed to open input file: %w", err)
		}

		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("failed to hash input file: %w", err)
		}

		h.Write([]byte{0})
	}

	for _, opt := range options {
		writeField(h, opt)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// writeField writes s followed by a separator so adjacent fields cannot run together
func writeField(w io.Writer, s string) {
	io.WriteString(w, s)
	w.Write([]byte{0})
}
