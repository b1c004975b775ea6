package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	cmd.Flags().Bool("no-cache", false, "Disable build cache")
	return cmd
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	assert.NotNil(t, loader)
}

func TestLoader_SetupViperDefaults(t *testing.T) {
	viper.Reset()
	loader := NewLoader()
	loader.setupViperDefaults()

	assert.Equal(t, DefaultBower, viper.GetString("assets.bower"))
	assert.Equal(t, DefaultVendor, viper.GetString("assets.vendor"))
	assert.Equal(t, "requirejs/require.js", viper.GetStringMapString("assets.plugins")["requirejs"])
	assert.Equal(t, DefaultStyleName, viper.GetString("stylesheets.name"))
	assert.Equal(t, true, viper.GetBool("stylesheets.sourcemaps"))
	assert.Equal(t, true, viper.GetBool("cache.enabled"))
	assert.Equal(t, false, viper.GetBool("verbose"))
}

func TestLoader_LoadGlobalConfig(t *testing.T) {
	globalDir := t.TempDir()

	t.Run("loads yaml config", func(t *testing.T) {
		viper.Reset()
		configPath := filepath.Join(globalDir, "config.yml")
		configContent := `verbose: true
stylesheets:
  autoprefixer:
    browsers: ["ie 10"]`
		err := os.WriteFile(configPath, []byte(configContent), 0o644)
		require.NoError(t, err)
		defer os.Remove(configPath)

		loader := &Loader{GlobalDir: globalDir}
		loader.loadGlobalConfig()

		assert.Equal(t, true, viper.GetBool("verbose"))
		assert.Equal(t, []string{"ie 10"}, viper.GetStringSlice("stylesheets.autoprefixer.browsers"))
	})

	t.Run("loads json config", func(t *testing.T) {
		viper.Reset()
		configPath := filepath.Join(globalDir, "config.json")
		configContent := `{
  "cache": {"enabled": false}
}`
		err := os.WriteFile(configPath, []byte(configContent), 0o644)
		require.NoError(t, err)
		defer os.Remove(configPath)

		loader := &Loader{GlobalDir: globalDir}
		loader.loadGlobalConfig()

		assert.True(t, viper.IsSet("cache.enabled"))
		assert.Equal(t, false, viper.GetBool("cache.enabled"))
	})

	t.Run("missing global config is ignored", func(t *testing.T) {
		viper.Reset()

		loader := &Loader{GlobalDir: filepath.Join(globalDir, "nope")}
		loader.loadGlobalConfig()

		assert.False(t, viper.IsSet("verbose"))
	})
}

func TestLoader_LoadLocalConfig(t *testing.T) {
	t.Run("finds config in parent directory", func(t *testing.T) {
		viper.Reset()
		projectDir := t.TempDir()
		nested := filepath.Join(projectDir, "assets", "stylesheets")
		require.NoError(t, os.MkdirAll(nested, 0o755))

		configPath := filepath.Join(projectDir, ".assetpipe.yml")
		err := os.WriteFile(configPath, []byte("stylesheets:\n  name: site.css\n"), 0o644)
		require.NoError(t, err)

		loader := &Loader{WorkDir: nested}
		require.NoError(t, loader.loadLocalConfig())

		assert.Equal(t, "site.css", viper.GetString("stylesheets.name"))
		assert.Equal(t, projectDir, viper.GetString("root"))
	})

	t.Run("no config uses work dir as root", func(t *testing.T) {
		viper.Reset()
		workDir := t.TempDir()

		loader := &Loader{WorkDir: workDir}
		require.NoError(t, loader.loadLocalConfig())

		assert.Equal(t, workDir, viper.GetString("root"))
	})

	t.Run("explicit config file", func(t *testing.T) {
		viper.Reset()
		dir := t.TempDir()
		configPath := filepath.Join(dir, "pipeline.toml")
		err := os.WriteFile(configPath, []byte("[assets]\nvendor = \"public/js/vendor\"\n"), 0o644)
		require.NoError(t, err)

		loader := &Loader{ConfigFile: configPath, WorkDir: t.TempDir()}
		require.NoError(t, loader.loadLocalConfig())

		assert.Equal(t, "public/js/vendor", viper.GetString("assets.vendor"))
		assert.Equal(t, dir, viper.GetString("root"))
	})

	t.Run("explicit config file that does not exist", func(t *testing.T) {
		viper.Reset()

		loader := &Loader{ConfigFile: filepath.Join(t.TempDir(), "missing.yml")}
		err := loader.loadLocalConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config")
	})
}

func TestLoader_BindCommandFlags(t *testing.T) {
	viper.Reset()
	cmd := newTestCommand()
	require.NoError(t, cmd.Flags().Set("verbose", "true"))
	require.NoError(t, cmd.Flags().Set("no-cache", "true"))

	loader := NewLoader()
	loader.setupViperDefaults()
	loader.bindCommandFlags(cmd)

	assert.Equal(t, true, viper.GetBool("verbose"))
	assert.Equal(t, false, viper.GetBool("cache.enabled"))
}

func TestLoader_BindCommandFlags_NoCacheFalseKeepsConfig(t *testing.T) {
	viper.Reset()
	cmd := newTestCommand()
	require.NoError(t, cmd.Flags().Set("no-cache", "false"))

	loader := NewLoader()
	loader.setupViperDefaults()

	viper.SetConfigType("yaml")
	require.NoError(t, viper.ReadConfig(strings.NewReader("cache:\n  enabled: false\n")))

	loader.bindCommandFlags(cmd)

	assert.Equal(t, false, viper.GetBool("cache.enabled"))
}

func TestLoader_LoadForRun_Integration(t *testing.T) {
	viper.Reset()
	projectDir := t.TempDir()
	configContent := `assets:
  bower: lib
  vendor: public/vendor
stylesheets:
  src:
    - scss/*.scss
  dest: public/css
  name: bundle.css
`
	err := os.WriteFile(filepath.Join(projectDir, ".assetpipe.yaml"), []byte(configContent), 0o644)
	require.NoError(t, err)

	loader := &Loader{WorkDir: projectDir, GlobalDir: t.TempDir()}
	cfg, err := loader.LoadForRun(newTestCommand())
	require.NoError(t, err)

	assert.Equal(t, projectDir, cfg.Root)
	assert.Equal(t, filepath.Join(projectDir, "lib"), cfg.Assets.Bower)
	assert.Equal(t, filepath.Join(projectDir, "public", "vendor"), cfg.Assets.Vendor)
	assert.Equal(t, []string{"scss/*.scss"}, cfg.Stylesheets.Src)
	assert.Equal(t, filepath.Join(projectDir, "public", "css"), cfg.Stylesheets.Dest)
	assert.Equal(t, "bundle.css", cfg.Stylesheets.Name)
	assert.True(t, cfg.Cache.Enabled)
}
