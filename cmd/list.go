package cmd

import (
	"fmt"
	"io"

	"github.com/Norgate-AV/assetpipe/internal/codes"
	"github.com/Norgate-AV/assetpipe/internal/logging"
	"github.com/Norgate-AV/assetpipe/internal/tasks"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long:  `Print the name of every task in the order they run.`,
	RunE:  runList,
	Args:  cobra.NoArgs,
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logging.New(io.Discard, false)

	// The compiler is never started just to list tasks
	comp := newCompiler(compilerOptions(cfg), log)
	defer comp.Close()

	registry, err := tasks.NewRegistry(cfg, tasks.Deps{
		Fs:       afero.NewOsFs(),
		Log:      log,
		Compiler: comp,
	})
	if err != nil {
		return codes.Wrap(codes.KindConfig, "register tasks", "", err)
	}

	for _, name := range registry.Names() {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}

	return nil
}
