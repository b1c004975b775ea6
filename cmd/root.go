package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Norgate-AV/assetpipe/internal/codes"
	"github.com/Norgate-AV/assetpipe/internal/compiler"
	"github.com/Norgate-AV/assetpipe/internal/config"
	"github.com/Norgate-AV/assetpipe/internal/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "assetpipe [task...]",
	Short: "Front-end asset build tasks",
	Long: `Copies vendor files into the project and builds the stylesheet bundle.

With no arguments every task runs: one sync task per vendor plugin,
then "stylesheets".`,
	RunE:          runTasks,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.ArbitraryArgs,
}

// newLoader and newCompiler are replaced in tests
var (
	newLoader = config.NewLoader

	newCompiler = func(opts compiler.Options, log logrus.FieldLogger) compiler.Compiler {
		return compiler.NewDartSass(opts, log)
	}
)

// reportedError marks a failure the error handler has already logged
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error {
	return e.error
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

		os.Exit(codes.ExitCode(err))
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default: nearest .assetpipe.{yml,yaml,json,toml})")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Disable build cache")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(cacheCmd)
}

// loadConfig loads configuration for cmd, honouring --config
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	loader := newLoader()

	if f := cmd.Flags().Lookup("config"); f != nil {
		loader.ConfigFile = f.Value.String()
	}

	cfg, err := loader.LoadForRun(cmd)
	if err != nil {
		return nil, codes.Wrap(codes.KindConfig, "load config", "", err)
	}

	return cfg, nil
}
