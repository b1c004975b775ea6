package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Norgate-AV/assetpipe/internal/utils"
	"github.com/spf13/viper"
)

// Default configuration values
const (
	DefaultBower       = "bower_components"
	DefaultVendor      = "assets/vendor"
	DefaultCompare     = CompareSHA256
	DefaultStyleSrc    = "assets/stylesheets/*.scss"
	DefaultStyleDest   = "public/stylesheets"
	DefaultStyleName   = "app.css"
	DefaultSourceMaps  = true
	DefaultOutputStyle = "expanded"
	DefaultSassBinary  = "sass"
	DefaultSassTimeout = 30 * time.Second
	DefaultBrowsers    = "last 2 versions"
	DefaultRemove      = true
	DefaultCacheDir    = ".assetpipe-cache"
	DefaultCache       = true
	DefaultVerbose     = false
)

// Comparison modes for the change-detection gate
const (
	CompareMtime  = "mtime"
	CompareSHA256 = "sha256"
)

// DefaultPlugins maps vendor plugin task names to their path under the bower root
func DefaultPlugins() map[string]string {
	return map[string]string{
		"requirejs": "requirejs/require.js",
	}
}

// Holds the configuration options for assetpipe
type Config struct {
	// Project root; relative paths are resolved against it
	Root string

	Assets      AssetsConfig
	Changed     ChangedConfig
	Stylesheets StylesheetsConfig
	Cache       CacheConfig

	// Enable verbose output
	Verbose bool
}

// AssetsConfig describes vendor files copied out of the bower root
type AssetsConfig struct {
	// Vendor source root
	Bower string

	// Vendor destination root
	Vendor string

	// Plugin task name -> file path relative to Bower
	Plugins map[string]string
}

// ChangedConfig selects how the sync gate compares files
type ChangedConfig struct {
	Compare string
}

type StylesheetsConfig struct {
	// Glob patterns; a leading "!" excludes
	Src []string

	// Output directory
	Dest string

	// Concatenated output filename
	Name string

	SourceMaps bool

	// Files compiled at once; 0 means runtime.NumCPU
	Workers int

	Sass         SassConfig
	Autoprefixer AutoprefixerConfig
	Minify       MinifyConfig
}

type SassConfig struct {
	OutputStyle  string
	IncludePaths []string
	Binary       string
	Timeout      time.Duration
}

type AutoprefixerConfig struct {
	Browsers []string
	Remove   bool
}

type MinifyConfig struct {
	Precision int
	KeepCSS2  bool
}

type CacheConfig struct {
	Enabled bool
	Dir     string
}

// SyncTarget is one resolved vendor copy
type SyncTarget struct {
	Name string
	Src  string
	Dest string
}

func Load() (*Config, error) {
	cfg := &Config{
		Root: viper.GetString("root"),
		Assets: AssetsConfig{
			Bower:   viper.GetString("assets.bower"),
			Vendor:  viper.GetString("assets.vendor"),
			Plugins: viper.GetStringMapString("assets.plugins"),
		},
		Changed: ChangedConfig{
			Compare: viper.GetString("changed.compare"),
		},
		Stylesheets: StylesheetsConfig{
			Src:        viper.GetStringSlice("stylesheets.src"),
			Dest:       viper.GetString("stylesheets.dest"),
			Name:       viper.GetString("stylesheets.name"),
			SourceMaps: viper.GetBool("stylesheets.sourcemaps"),
			Workers:    viper.GetInt("stylesheets.workers"),
			Sass: SassConfig{
				OutputStyle:  viper.GetString("stylesheets.libsass.output_style"),
				IncludePaths: viper.GetStringSlice("stylesheets.libsass.include_paths"),
				Binary:       viper.GetString("stylesheets.libsass.binary"),
				Timeout:      viper.GetDuration("stylesheets.libsass.timeout"),
			},
			Autoprefixer: AutoprefixerConfig{
				Browsers: viper.GetStringSlice("stylesheets.autoprefixer.browsers"),
				Remove:   viper.GetBool("stylesheets.autoprefixer.remove"),
			},
			Minify: MinifyConfig{
				Precision: viper.GetInt("stylesheets.minify.precision"),
				KeepCSS2:  viper.GetBool("stylesheets.minify.keep_css2"),
			},
		},
		Cache: CacheConfig{
			Enabled: viper.GetBool("cache.enabled"),
			Dir:     viper.GetString("cache.dir"),
		},
		Verbose: viper.GetBool("verbose"),
	}

	// Apply defaults if not set
	if cfg.Root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}

		cfg.Root = cwd
	}

	if cfg.Changed.Compare == "" {
		cfg.Changed.Compare = DefaultCompare
	}

	if cfg.Stylesheets.Sass.OutputStyle == "" {
		cfg.Stylesheets.Sass.OutputStyle = DefaultOutputStyle
	}

	if cfg.Stylesheets.Sass.Binary == "" {
		cfg.Stylesheets.Sass.Binary = DefaultSassBinary
	}

	if cfg.Stylesheets.Sass.Timeout <= 0 {
		cfg.Stylesheets.Sass.Timeout = DefaultSassTimeout
	}

	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = DefaultCacheDir
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("project root not specified")
	}

	root, err := filepath.Abs(c.Root)
	if err != nil {
		return fmt.Errorf("invalid project root: %v", err)
	}

	c.Root = root

	// Validate stylesheet options
	s := &c.Stylesheets
	if len(s.Src) == 0 {
		return fmt.Errorf("stylesheets.src must name at least one pattern")
	}

	if s.Dest == "" {
		return fmt.Errorf("stylesheets.dest not specified")
	}

	if s.Name == "" {
		return fmt.Errorf("stylesheets.name not specified")
	}

	if strings.ContainsAny(s.Name, `/\`) {
		return fmt.Errorf("invalid stylesheets.name %q: must be a file name", s.Name)
	}

	if s.Workers < 0 {
		return fmt.Errorf("invalid stylesheets.workers: %d", s.Workers)
	}

	if !isValidOutputStyle(s.Sass.OutputStyle) {
		return fmt.Errorf("invalid output style: %s", s.Sass.OutputStyle)
	}

	if !isValidCompare(c.Changed.Compare) {
		return fmt.Errorf("invalid compare mode: %s", c.Changed.Compare)
	}

	// Resolve paths
	c.Assets.Bower = utils.ResolvePath(root, c.Assets.Bower)
	c.Assets.Vendor = utils.ResolvePath(root, c.Assets.Vendor)
	s.Dest = utils.ResolvePath(root, s.Dest)
	s.Sass.IncludePaths = utils.ResolvePaths(root, s.Sass.IncludePaths)
	c.Cache.Dir = utils.ResolvePath(root, c.Cache.Dir)

	for name, p := range c.Assets.Plugins {
		if p == "" {
			return fmt.Errorf("plugin %q has no source path", name)
		}
	}

	if len(c.Assets.Plugins) > 0 && (c.Assets.Bower == "" || c.Assets.Vendor == "") {
		return fmt.Errorf("assets.bower and assets.vendor are required for plugins")
	}

	return nil
}

// SyncTargets returns the vendor copies in name order
func (c *Config) SyncTargets() []SyncTarget {
	names := make([]string, 0, len(c.Assets.Plugins))
	for name := range c.Assets.Plugins {
		names = append(names, name)
	}

	sort.Strings(names)

	targets := make([]SyncTarget, 0, len(names))
	for _, name := range names {
		targets = append(targets, SyncTarget{
			Name: name,
			Src:  utils.ResolvePath(c.Assets.Bower, c.Assets.Plugins[name]),
			Dest: c.Assets.Vendor,
		})
	}

	return targets
}

func isValidOutputStyle(style string) bool {
	return style == "expanded" || style == "compressed"
}

func isValidCompare(mode string) bool {
	return mode == CompareMtime || mode == CompareSHA256
}
