// Package compiler turns Sass sources into CSS.
package compiler

import (
	"context"
	"time"
)

// Input is one stylesheet to compile
type Input struct {
	// Absolute path of the source file
	Path string

	Source string

	// Request a source map in the result
	SourceMap bool
}

// Result holds the compiled CSS and, when requested, its JSON source map
type Result struct {
	CSS       string
	SourceMap string
}

// Compiler compiles stylesheets; implementations must be safe for concurrent use
type Compiler interface {
	Compile(ctx context.Context, in Input) (Result, error)
	Close() error
}

// Options configure compilation
type Options struct {
	// Path to the dart-sass executable
	Binary string

	// "expanded" or "compressed"
	OutputStyle string

	// Extra load paths for @use and @import
	IncludePaths []string

	// Per-file compile timeout
	Timeout time.Duration
}
