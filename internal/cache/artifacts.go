package cache

import (
	"fmt"
	"path/filepath"

	"github.com/Norgate-AV/assetpipe/internal/fsutil"
	"github.com/spf13/afero"
)

// CopyArtifacts copies built outputs from sourceDir into the cache
func CopyArtifacts(fsys afero.Fs, sourceDir, destDir string, outputs []string) error {
	if err := fsys.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	for _, output := range outputs {
		src := filepath.Join(sourceDir, output)
		dst := filepath.Join(destDir, output)

		if err := fsutil.CopyFile(fsys, src, dst); err != nil {
			return fmt.Errorf("failed to copy %s: %w", output, err)
		}
	}

	return nil
}

// RestoreArtifacts copies cached outputs back to the output directory
func RestoreArtifacts(fsys afero.Fs, cacheDir, destDir string, outputs []string) error {
	if err := fsys.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, output := range outputs {
		src := filepath.Join(cacheDir, output)
		dst := filepath.Join(destDir, output)

		if err := fsutil.CopyFile(fsys, src, dst); err != nil {
			return fmt.Errorf("failed to restore %s: %w", output, err)
		}
	}

	return nil
}
