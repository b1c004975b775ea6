package pipeline

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Norgate-AV/assetpipe/internal/codes"
	"github.com/Norgate-AV/assetpipe/internal/fsutil"
	"github.com/Norgate-AV/assetpipe/internal/utils"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
	"github.com/spf13/afero"
)

// Glob expands patterns relative to root into absolute file paths.
//
// Matches are sorted per pattern and patterns are applied in order, so the
// result order is deterministic. Patterns starting with "!" exclude.
func Glob(fsys afero.Fs, root string, patterns []string) ([]string, error) {
	include, exclude := utils.SplitPatterns(patterns)

	excluders := make([]glob.Glob, 0, len(exclude))
	for _, p := range exclude {
		rel, err := relativePattern(root, p)
		if err != nil {
			return nil, err
		}

		// "**/" may also match zero directories
		variants := []string{rel}
		if strings.Contains(rel, "**/") {
			variants = append(variants, strings.ReplaceAll(rel, "**/", ""))
		}

		for _, v := range variants {
			g, err := glob.Compile(v, '/')
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
			}

			excluders = append(excluders, g)
		}
	}

	rootFS := afero.NewIOFS(afero.NewBasePathFs(fsys, root))
	seen := make(map[string]bool)
	var files []string

	for _, p := range include {
		rel, err := relativePattern(root, p)
		if err != nil {
			return nil, err
		}

		matches, err := doublestar.Glob(rootFS, rel, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}

		sort.Strings(matches)

		for _, m := range matches {
			if seen[m] || excluded(excluders, m) {
				continue
			}

			seen[m] = true
			files = append(files, filepath.Join(root, filepath.FromSlash(m)))
		}
	}

	return files, nil
}

func excluded(excluders []glob.Glob, path string) bool {
	for _, g := range excluders {
		if g.Match(path) {
			return true
		}
	}

	return false
}

// relativePattern turns p into a slash-separated pattern under root
func relativePattern(root, p string) (string, error) {
	if !filepath.IsAbs(p) {
		return filepath.ToSlash(filepath.Clean(p)), nil
	}

	rel, err := filepath.Rel(root, p)
	if err != nil || !fs.ValidPath(filepath.ToSlash(rel)) {
		return "", fmt.Errorf("pattern %q is outside %s", p, root)
	}

	return filepath.ToSlash(rel), nil
}

// Src reads files into artifacts with paths relative to base
func Src(fsys afero.Fs, base string, files []string) ([]Artifact, error) {
	artifacts := make([]Artifact, 0, len(files))

	for _, f := range files {
		data, err := afero.ReadFile(fsys, f)
		if err != nil {
			return nil, codes.Wrap(codes.KindRead, "read", f, err)
		}

		rel, err := filepath.Rel(base, f)
		if err != nil {
			rel = filepath.Base(f)
		}

		artifacts = append(artifacts, Artifact{
			Path:     filepath.ToSlash(rel),
			Base:     base,
			Contents: data,
		})
	}

	return artifacts, nil
}

// Dest writes a into dir, creating it if needed, and returns the written path
func Dest(fsys afero.Fs, dir string, a Artifact) (string, error) {
	path := filepath.Join(dir, filepath.FromSlash(a.Path))

	if err := fsutil.WriteFile(fsys, path, a.Contents, 0o644); err != nil {
		return "", codes.Wrap(codes.KindWrite, "write", path, err)
	}

	return path, nil
}
