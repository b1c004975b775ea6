package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Loader handles configuration loading from various sources
type Loader struct {
	// Overrides the local config lookup when set
	ConfigFile string

	// Where the local config lookup starts; defaults to the working directory
	WorkDir string

	// Where the global config is read from; defaults to <UserConfigDir>/assetpipe
	GlobalDir string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadForRun loads configuration for task runs
func (l *Loader) LoadForRun(cmd *cobra.Command) (*Config, error) {
	l.setupViperDefaults()
	l.loadGlobalConfig()

	if err := l.loadLocalConfig(); err != nil {
		return nil, err
	}

	l.bindCommandFlags(cmd)

	return Load()
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	viper.SetDefault("assets.bower", DefaultBower)
	viper.SetDefault("assets.vendor", DefaultVendor)
	viper.SetDefault("assets.plugins", DefaultPlugins())
	viper.SetDefault("changed.compare", DefaultCompare)
	viper.SetDefault("stylesheets.src", []string{DefaultStyleSrc})
	viper.SetDefault("stylesheets.dest", DefaultStyleDest)
	viper.SetDefault("stylesheets.name", DefaultStyleName)
	viper.SetDefault("stylesheets.sourcemaps", DefaultSourceMaps)
	viper.SetDefault("stylesheets.workers", 0)
	viper.SetDefault("stylesheets.libsass.output_style", DefaultOutputStyle)
	viper.SetDefault("stylesheets.libsass.binary", DefaultSassBinary)
	viper.SetDefault("stylesheets.libsass.timeout", DefaultSassTimeout)
	viper.SetDefault("stylesheets.autoprefixer.browsers", []string{DefaultBrowsers})
	viper.SetDefault("stylesheets.autoprefixer.remove", DefaultRemove)
	viper.SetDefault("cache.enabled", DefaultCache)
	viper.SetDefault("cache.dir", DefaultCacheDir)
	viper.SetDefault("verbose", DefaultVerbose)
}

// loadGlobalConfig loads the per-user configuration file
func (l *Loader) loadGlobalConfig() {
	dir := l.GlobalDir
	if dir == "" {
		userDir, err := os.UserConfigDir()
		if err != nil {
			return
		}

		dir = filepath.Join(userDir, "assetpipe")
	}

	if path := FindGlobalConfig(dir); path != "" {
		viper.SetConfigFile(path)
		_ = viper.MergeInConfig()
	}
}

// loadLocalConfig loads the project configuration and fixes the project root
func (l *Loader) loadLocalConfig() error {
	workDir := l.WorkDir
	if workDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}

		workDir = cwd
	}

	localPath := l.ConfigFile
	if localPath == "" {
		localPath = FindLocalConfig(workDir)
	}

	if localPath == "" {
		viper.Set("root", workDir)
		return nil
	}

	absPath, err := filepath.Abs(localPath)
	if err != nil {
		return fmt.Errorf("invalid config path: %v", err)
	}

	viper.SetConfigFile(absPath)
	if err := viper.MergeInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", absPath, err)
	}

	viper.Set("root", filepath.Dir(absPath))

	return nil
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	if f := cmd.Flags().Lookup("verbose"); f != nil {
		_ = viper.BindPFlag("verbose", f)
	}

	// --no-cache only turns the cache off; --no-cache=false leaves the configured value
	if f := cmd.Flags().Lookup("no-cache"); f != nil && f.Changed && f.Value.String() == "true" {
		viper.Set("cache.enabled", false)
	}
}
