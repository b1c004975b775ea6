package tasks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Norgate-AV/assetpipe/internal/cache"
	"github.com/Norgate-AV/assetpipe/internal/codes"
	"github.com/Norgate-AV/assetpipe/internal/compiler"
	"github.com/Norgate-AV/assetpipe/internal/config"
	"github.com/Norgate-AV/assetpipe/internal/cssmin"
	"github.com/Norgate-AV/assetpipe/internal/fsutil"
	"github.com/Norgate-AV/assetpipe/internal/pipeline"
	"github.com/Norgate-AV/assetpipe/internal/prefixer"
	"github.com/Norgate-AV/assetpipe/internal/sourcemap"
	"github.com/Norgate-AV/assetpipe/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// StylesheetsTaskName is the name the stylesheet build registers under
const StylesheetsTaskName = "stylesheets"

// Pipeline stage names
const (
	StageSourceMapsInit  = "sourcemaps.init"
	StageSass            = "sass"
	StageAutoprefixer    = "autoprefixer"
	StageSourceMapsWrite = "sourcemaps.write"
	StageMinify          = "minify"
)

// bundleSeparator goes between concatenated files
const bundleSeparator = "\n"

// StylesheetsTask compiles, prefixes and minifies every matched stylesheet into one bundle
type StylesheetsTask struct {
	cfg  config.StylesheetsConfig
	root string

	fs       afero.Fs
	log      logrus.FieldLogger
	compiler compiler.Compiler
	prefixer *prefixer.Prefixer
	minifier *cssmin.Minifier

	// Nil disables the build cache
	cache *cache.Cache
}

// NewStylesheetsTask creates the stylesheet build; an invalid browser list is a config error
func NewStylesheetsTask(cfg *config.Config, deps Deps) (*StylesheetsTask, error) {
	s := cfg.Stylesheets

	p, err := prefixer.New(prefixer.Options{
		Browsers: s.Autoprefixer.Browsers,
		Remove:   s.Autoprefixer.Remove,
	})
	if err != nil {
		return nil, codes.Wrap(codes.KindConfig, "stylesheets.autoprefixer", "", err)
	}

	return &StylesheetsTask{
		cfg:      s,
		root:     cfg.Root,
		fs:       deps.Fs,
		log:      deps.Log,
		compiler: deps.Compiler,
		prefixer: p,
		minifier: cssmin.New(cssmin.Options{
			Precision: s.Minify.Precision,
			KeepCSS2:  s.Minify.KeepCSS2,
		}),
		cache: deps.Cache,
	}, nil
}

func (t *StylesheetsTask) Name() string {
	return StylesheetsTaskName
}

// Pipeline returns the per-file stages in the order they run
func (t *StylesheetsTask) Pipeline() *pipeline.Pipeline {
	var stages []pipeline.Stage

	if t.cfg.SourceMaps {
		stages = append(stages, pipeline.Stage{Name: StageSourceMapsInit, Transform: t.initSourceMap})
	}

	stages = append(stages,
		pipeline.Stage{Name: StageSass, Transform: t.compile},
		pipeline.Stage{Name: StageAutoprefixer, Transform: t.autoprefix},
	)

	if t.cfg.SourceMaps {
		stages = append(stages, pipeline.Stage{Name: StageSourceMapsWrite, Transform: t.writeSourceMap})
	}

	stages = append(stages, pipeline.Stage{Name: StageMinify, Transform: t.minify})

	return pipeline.New(stages...)
}

func (t *StylesheetsTask) Run(ctx context.Context) error {
	matches, err := t.matches()
	if err != nil {
		return err
	}

	files := entryPoints(matches)
	if len(files) == 0 {
		t.log.Warnf("No stylesheets matched %s", strings.Join(t.cfg.Src, ", "))
		return nil
	}

	var key string
	var inputs []string
	if t.cache != nil {
		inputs, err = t.cacheInputs(matches)
		if err != nil {
			return err
		}

		key, err = cache.HashInputs(t.fs, StylesheetsTaskName, inputs, t.cacheOptions()...)
		if err != nil {
			return codes.Wrap(codes.KindRead, "hash inputs", "", err)
		}

		if done := t.fromCache(key); done {
			return nil
		}
	}

	in, err := pipeline.Src(t.fs, t.root, files)
	if err != nil {
		return err
	}

	out, err := t.Pipeline().RunAll(ctx, in, t.cfg.Workers)
	if err != nil {
		return err
	}

	bundle, err := pipeline.Concat(t.cfg.Name, bundleSeparator)(out)
	if err != nil {
		return codes.Wrap(codes.KindUnknown, "concat", t.cfg.Name, err)
	}

	written, err := pipeline.Dest(t.fs, t.cfg.Dest, bundle)
	if err != nil {
		return err
	}

	t.log.Infof("Wrote %s (%d files)", utils.DisplayPath(t.root, written), len(files))

	if t.cache != nil {
		t.store(key, inputs, in, bundle, written)
	}

	return nil
}

// matches returns every file the source patterns match, partials included
func (t *StylesheetsTask) matches() ([]string, error) {
	matches, err := pipeline.Glob(t.fs, t.root, t.cfg.Src)
	if err != nil {
		return nil, codes.Wrap(codes.KindConfig, "stylesheets.src", "", err)
	}

	return matches, nil
}

// entryPoints leaves out partials, which are only compiled through imports
func entryPoints(matches []string) []string {
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		if isPartial(m) {
			continue
		}

		files = append(files, m)
	}

	return files
}

func isPartial(p string) bool {
	return strings.HasPrefix(filepath.Base(p), "_")
}

// cacheInputs lists the files hashed into the cache key: every match,
// then every stylesheet under the include paths
func (t *StylesheetsTask) cacheInputs(matches []string) ([]string, error) {
	inputs := append([]string{}, matches...)
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		seen[m] = true
	}

	for _, dir := range t.cfg.Sass.IncludePaths {
		var found []string

		err := afero.Walk(t.fs, dir, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				if p == dir && os.IsNotExist(err) {
					return nil
				}

				return err
			}

			if info.Mode().IsRegular() && isStylesheet(p) && !seen[p] {
				seen[p] = true
				found = append(found, p)
			}

			return nil
		})
		if err != nil {
			return nil, codes.Wrap(codes.KindRead, "scan include path", dir, err)
		}

		sort.Strings(found)
		inputs = append(inputs, found...)
	}

	return inputs, nil
}

func isStylesheet(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".scss", ".sass", ".css":
		return true
	default:
		return false
	}
}

// fromCache reports whether the bundle on disk is current or was restored from the cache
func (t *StylesheetsTask) fromCache(key string) bool {
	entry, err := t.cache.Get(key)
	if err != nil {
		t.log.Warnf("Failed to read build cache: %v", err)
		return false
	}

	if entry == nil || !entry.Success || entry.Output != t.cfg.Name {
		return false
	}

	if changed := t.changedDep(entry); changed != "" {
		t.log.WithField("file", utils.DisplayPath(t.root, changed)).Debug("Dependency changed")
		return false
	}

	output := filepath.Join(t.cfg.Dest, t.cfg.Name)
	display := utils.DisplayPath(t.root, output)

	if hash, err := fsutil.HashFile(t.fs, output); err == nil && hash == entry.OutputHash {
		t.log.WithField("file", display).Debug("Up to date")
		return true
	}

	if _, err := t.cache.Restore(entry, t.cfg.Dest); err != nil {
		t.log.Warnf("Failed to restore %s from cache: %v", display, err)
		return false
	}

	t.log.Infof("Restored %s from cache", display)

	return true
}

// changedDep returns the first recorded dependency that is missing or differs, or ""
func (t *StylesheetsTask) changedDep(entry *cache.Entry) string {
	paths := make([]string, 0, len(entry.Deps))
	for p := range entry.Deps {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	for _, p := range paths {
		if hash, err := fsutil.HashFile(t.fs, p); err != nil || hash != entry.Deps[p] {
			return p
		}
	}

	return ""
}

// store records the build. Dependencies reported by the compiler outside the
// key's inputs are hashed into the entry; one that cannot be read skips caching.
func (t *StylesheetsTask) store(key string, inputs []string, in []pipeline.Artifact, bundle pipeline.Artifact, written string) {
	hashed := make(map[string]bool, len(inputs))
	for _, p := range inputs {
		hashed[p] = true
	}

	deps := make(map[string]string, len(bundle.Deps))
	for _, d := range bundle.Deps {
		if hashed[d] {
			continue
		}

		hash, err := fsutil.HashFile(t.fs, d)
		if err != nil {
			t.log.Debugf("Not caching %s: %v", t.cfg.Name, err)
			return
		}

		deps[d] = hash
	}

	entry := cache.Entry{
		Hash:       key,
		Task:       StylesheetsTaskName,
		Inputs:     relativeInputs(in),
		Deps:       deps,
		OutputHash: fsutil.HashBytes(bundle.Contents),
		Success:    true,
	}

	if err := t.cache.Store(entry, written); err != nil {
		t.log.Warnf("Failed to cache %s: %v", t.cfg.Name, err)
	}
}

// cacheOptions lists every setting that changes the bundle's bytes
func (t *StylesheetsTask) cacheOptions() []string {
	s := t.cfg

	return []string{
		"name=" + s.Name,
		fmt.Sprintf("sourcemaps=%t", s.SourceMaps),
		"sass_binary=" + s.Sass.Binary,
		"output_style=" + s.Sass.OutputStyle,
		"include_paths=" + strings.Join(s.Sass.IncludePaths, "|"),
		fmt.Sprintf("vendors=%v", t.prefixer.Vendors()),
		fmt.Sprintf("remove=%t", s.Autoprefixer.Remove),
		fmt.Sprintf("precision=%d", s.Minify.Precision),
		fmt.Sprintf("keep_css2=%t", s.Minify.KeepCSS2),
	}
}

func (t *StylesheetsTask) initSourceMap(_ context.Context, a pipeline.Artifact) (pipeline.Artifact, error) {
	a.SourceMap = sourcemap.Identity(a.Path, string(a.Contents))
	return a, nil
}

func (t *StylesheetsTask) compile(ctx context.Context, a pipeline.Artifact) (pipeline.Artifact, error) {
	file := filepath.Join(a.Base, filepath.FromSlash(a.Path))

	// The cache needs the compiler's source list even when maps are not written
	res, err := t.compiler.Compile(ctx, compiler.Input{
		Path:      file,
		Source:    string(a.Contents),
		SourceMap: a.SourceMap != nil || t.cache != nil,
	})
	if err != nil {
		return pipeline.Artifact{}, codes.Wrap(codes.KindCompile, "", "", err)
	}

	a.Path = strings.TrimSuffix(a.Path, path.Ext(a.Path)) + ".css"
	a.Contents = []byte(res.CSS)
	a.Deps = []string{file}

	if res.SourceMap == "" {
		if a.SourceMap != nil {
			a.SourceMap.File = a.Path
		}

		return a, nil
	}

	m, err := sourcemap.Parse([]byte(res.SourceMap))
	if err != nil {
		return pipeline.Artifact{}, codes.Wrap(codes.KindCompile, "read source map", "", err)
	}

	for _, dep := range m.SourcePaths(filepath.Dir(file)) {
		if dep != file {
			a.Deps = append(a.Deps, dep)
		}
	}

	if a.SourceMap != nil {
		m.RelativeSources(a.Base)
		m.File = a.Path
		a.SourceMap = m
	}

	return a, nil
}

func (t *StylesheetsTask) autoprefix(_ context.Context, a pipeline.Artifact) (pipeline.Artifact, error) {
	out, err := t.prefixer.Process(a.Contents)
	if err != nil {
		return pipeline.Artifact{}, codes.Wrap(codes.KindCompile, "", "", err)
	}

	a.Contents = out
	return a, nil
}

func (t *StylesheetsTask) writeSourceMap(_ context.Context, a pipeline.Artifact) (pipeline.Artifact, error) {
	comment, err := sourcemap.Inline(a.SourceMap)
	if err != nil {
		return pipeline.Artifact{}, codes.Wrap(codes.KindUnknown, "encode source map", "", err)
	}

	var buf bytes.Buffer
	buf.Write(bytes.TrimRight(a.Contents, "\n"))
	buf.WriteString("\n\n")
	buf.WriteString(comment)
	buf.WriteByte('\n')

	a.Contents = buf.Bytes()
	return a, nil
}

func (t *StylesheetsTask) minify(_ context.Context, a pipeline.Artifact) (pipeline.Artifact, error) {
	out, err := t.minifier.Minify(a.Contents)
	if err != nil {
		return pipeline.Artifact{}, codes.Wrap(codes.KindCompile, "", "", err)
	}

	a.Contents = out
	return a, nil
}

func relativeInputs(in []pipeline.Artifact) []string {
	paths := make([]string, len(in))
	for i, a := range in {
		paths[i] = a.Path
	}

	return paths
}
