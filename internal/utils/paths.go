package utils

import (
	"path/filepath"
	"strings"
)

// ResolvePath makes p absolute, treating relative paths as relative to root
func ResolvePath(root, p string) string {
	if p == "" {
		return ""
	}

	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}

	return filepath.Join(root, p)
}

// ResolvePaths resolves every non-empty entry of paths against root
func ResolvePaths(root string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}

	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}

		resolved = append(resolved, ResolvePath(root, p))
	}

	return resolved
}

// SplitPatterns separates include patterns from "!"-prefixed exclusions.
// The leading "!" is stripped from exclusions.
func SplitPatterns(patterns []string) (include, exclude []string) {
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(p, "!") {
			exclude = append(exclude, strings.TrimPrefix(p, "!"))
			continue
		}

		include = append(include, p)
	}

	return include, exclude
}

// DisplayPath returns p relative to root for log output, or p itself when it lies outside root
func DisplayPath(root, p string) string {
	if root == "" {
		return p
	}

	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}

	return filepath.ToSlash(rel)
}
