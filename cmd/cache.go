package cmd

import (
	"fmt"

	"github.com/Norgate-AV/assetpipe/internal/cache"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the build cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show build cache statistics",
	RunE:  runCacheStats,
	Args:  cobra.NoArgs,
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove every cached build",
	RunE:  runCacheClean,
	Args:  cobra.NoArgs,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheCleanCmd)
}

func openCache(cmd *cobra.Command) (*cache.Cache, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	return cache.New(cfg.Cache.Dir, afero.NewOsFs())
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	c, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	count, size, err := c.Stats()
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Cache: %s\n", c.Dir())
	fmt.Fprintf(out, "Entries: %d\n", count)
	fmt.Fprintf(out, "Size: %s\n", humanize.Bytes(uint64(size)))

	return nil
}

func runCacheClean(cmd *cobra.Command, args []string) error {
	c, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")

	return nil
}
