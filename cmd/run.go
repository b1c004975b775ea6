package cmd

import (
	"github.com/Norgate-AV/assetpipe/internal/cache"
	"github.com/Norgate-AV/assetpipe/internal/codes"
	"github.com/Norgate-AV/assetpipe/internal/compiler"
	"github.com/Norgate-AV/assetpipe/internal/config"
	"github.com/Norgate-AV/assetpipe/internal/logging"
	"github.com/Norgate-AV/assetpipe/internal/report"
	"github.com/Norgate-AV/assetpipe/internal/tasks"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [task...]",
	Short: "Run tasks",
	Long:  `Run the named tasks in order, or every task when none are named.`,
	RunE:  runTasks,
	Args:  cobra.ArbitraryArgs,
}

func runTasks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logging.New(cmd.OutOrStdout(), cfg.Verbose)
	fs := afero.NewOsFs()

	comp := newCompiler(compilerOptions(cfg), log)
	defer comp.Close()

	deps := tasks.Deps{
		Fs:       fs,
		Log:      log,
		Compiler: comp,
	}

	if cfg.Cache.Enabled {
		c, err := cache.New(cfg.Cache.Dir, fs)
		if err != nil {
			log.Warnf("Build cache disabled: %v", err)
		} else {
			defer c.Close()
			deps.Cache = c
		}
	}

	registry, err := tasks.NewRegistry(cfg, deps)
	if err != nil {
		return codes.Wrap(codes.KindConfig, "register tasks", "", err)
	}

	if cfg.Verbose {
		log.WithFields(logrus.Fields{
			"root":  cfg.Root,
			"tasks": registry.Names(),
		}).Debug("Loaded configuration")
	}

	handler := report.NewLogHandler(log)

	if err := tasks.NewRunner(registry, log, handler).Run(cmd.Context(), args...); err != nil {
		if handler.Count() > 0 {
			return reportedError{err}
		}

		return err
	}

	return nil
}

func compilerOptions(cfg *config.Config) compiler.Options {
	return compiler.Options{
		Binary:       cfg.Stylesheets.Sass.Binary,
		OutputStyle:  cfg.Stylesheets.Sass.OutputStyle,
		IncludePaths: cfg.Stylesheets.Sass.IncludePaths,
		Timeout:      cfg.Stylesheets.Sass.Timeout,
	}
}
