// Package pipeline runs in-memory file artifacts through ordered transform stages.
//
// A Pipeline is an ordered list of named stages folded over an Artifact by
// a single sequential reducer. Several artifacts may travel through the same
// pipeline at once (RunAll); a Reducer such as Concat then joins them in
// their original order.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/Norgate-AV/assetpipe/internal/sourcemap"
	"golang.org/x/sync/errgroup"
)

// Artifact is one file's content as it moves through the stages
type Artifact struct {
	// Path relative to Base
	Path string

	// Directory the artifact was read from
	Base string

	Contents []byte

	// Nil when source maps are not being tracked
	SourceMap *sourcemap.Map

	// Absolute paths of the files the contents were built from, when known
	Deps []string
}

// Transform turns one artifact into the next
type Transform func(ctx context.Context, a Artifact) (Artifact, error)

// Stage is a named transform
type Stage struct {
	Name      string
	Transform Transform
}

// StageError records which stage failed on which file
type StageError struct {
	Stage string
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Path, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type Pipeline struct {
	stages []Stage
}

// New creates a pipeline applying stages in the given order
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Stages returns the stage names in order
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name
	}

	return names
}

// Run applies every stage to a in order, stopping at the first failure
func (p *Pipeline) Run(ctx context.Context, a Artifact) (Artifact, error) {
	for _, s := range p.stages {
		if err := ctx.Err(); err != nil {
			return Artifact{}, err
		}

		next, err := s.Transform(ctx, a)
		if err != nil {
			return Artifact{}, &StageError{Stage: s.Name, Path: a.Path, Err: err}
		}

		a = next
	}

	return a, nil
}

// RunAll runs every artifact through the pipeline with at most workers in flight.
// Results keep the input order. The first failure cancels the remaining work.
func (p *Pipeline) RunAll(ctx context.Context, in []Artifact, workers int) ([]Artifact, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	out := make([]Artifact, len(in))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range in {
		g.Go(func() error {
			a, err := p.Run(ctx, in[i])
			if err != nil {
				return err
			}

			out[i] = a
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// Reducer merges processed artifacts into one
type Reducer func(in []Artifact) (Artifact, error)

// ErrNoArtifacts is returned when a reducer has nothing to merge
var ErrNoArtifacts = errors.New("no artifacts to merge")

// Concat joins the contents of every artifact, in order, into one named file.
//
// When the artifacts carry source maps, each file's trailing map comment is
// dropped and the maps are merged at their offsets in the bundle, which then
// ends with a single inline map.
func Concat(name, sep string) Reducer {
	return func(in []Artifact) (Artifact, error) {
		if len(in) == 0 {
			return Artifact{}, ErrNoArtifacts
		}

		out := Artifact{
			Path: name,
			Base: in[0].Base,
			Deps: mergeDeps(in),
		}

		if !hasSourceMaps(in) {
			out.Contents = joinContents(in, sep)
			return out, nil
		}

		var buf bytes.Buffer
		var sections []sourcemap.Section
		var line, col int

		advance := func(b []byte) {
			buf.Write(b)

			if n := bytes.Count(b, []byte("\n")); n > 0 {
				line += n
				col = len(b) - bytes.LastIndexByte(b, '\n') - 1
			} else {
				col += len(b)
			}
		}

		for i, a := range in {
			if i > 0 {
				advance([]byte(sep))
			}

			body, _ := sourcemap.SplitComment(a.Contents)
			sections = append(sections, sourcemap.Section{
				Line:   line,
				Column: col,
				Lines:  bytes.Count(body, []byte("\n")) + 1,
				Map:    a.SourceMap,
			})

			advance(body)
		}

		m, err := sourcemap.Merge(name, sections)
		if err != nil {
			return Artifact{}, fmt.Errorf("failed to merge source maps: %w", err)
		}

		comment, err := sourcemap.Inline(m)
		if err != nil {
			return Artifact{}, fmt.Errorf("failed to encode source map: %w", err)
		}

		buf.WriteByte('\n')
		buf.WriteString(comment)

		out.Contents = buf.Bytes()
		out.SourceMap = m

		return out, nil
	}
}

func hasSourceMaps(in []Artifact) bool {
	for _, a := range in {
		if a.SourceMap != nil {
			return true
		}
	}

	return false
}

func joinContents(in []Artifact, sep string) []byte {
	size := len(sep) * (len(in) - 1)
	for _, a := range in {
		size += len(a.Contents)
	}

	contents := make([]byte, 0, size)
	for i, a := range in {
		if i > 0 {
			contents = append(contents, sep...)
		}

		contents = append(contents, a.Contents...)
	}

	return contents
}

// mergeDeps returns every artifact's deps once, in first-seen order
func mergeDeps(in []Artifact) []string {
	seen := make(map[string]bool)
	var deps []string

	for _, a := range in {
		for _, d := range a.Deps {
			if !seen[d] {
				seen[d] = true
				deps = append(deps, d)
			}
		}
	}

	return deps
}
