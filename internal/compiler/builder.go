package compiler

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/bep/godartsass/v2"
)

// BuildArgs builds the transpiler arguments for one input
func BuildArgs(opts Options, in Input) godartsass.Args {
	// The file's own directory comes first so relative imports resolve
	includePaths := make([]string, 0, len(opts.IncludePaths)+1)
	if in.Path != "" {
		includePaths = append(includePaths, filepath.Dir(in.Path))
	}

	for _, p := range opts.IncludePaths {
		if p != "" {
			includePaths = append(includePaths, p)
		}
	}

	args := godartsass.Args{
		Source:       in.Source,
		OutputStyle:  godartsass.ParseOutputStyle(opts.OutputStyle),
		SourceSyntax: SyntaxFor(in.Path),
		IncludePaths: includePaths,
	}

	if in.Path != "" {
		args.URL = FileURL(in.Path)
	}

	if in.SourceMap {
		args.EnableSourceMap = true
		args.SourceMapIncludeSources = true
	}

	return args
}

// SyntaxFor picks the source syntax from the file extension
func SyntaxFor(path string) godartsass.SourceSyntax {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sass":
		return godartsass.SourceSyntaxSASS
	case ".css":
		return godartsass.SourceSyntaxCSS
	default:
		return godartsass.SourceSyntaxSCSS
	}
}

// FileURL returns the file:// URL for an absolute path
func FileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		// Windows drive letters
		p = "/" + p
	}

	return (&url.URL{Scheme: "file", Path: p}).String()
}
