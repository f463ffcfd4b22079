package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/witview/pkg/cache"
	"github.com/matzehuels/witview/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the projection cache",
	}

	cmd.AddCommand(c.cacheInfoCommand())
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheInfoCommand creates the "cache info" subcommand.
func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the configured cache backend and its size",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			printKeyValue(c.Out, "backend", cfg.Cache.Backend)
			printKeyValue(c.Out, "ttl", cfg.Cache.TTL.String())
			switch cfg.Cache.Backend {
			case cache.BackendMemory:
				printKeyValue(c.Out, "size", fmt.Sprintf("%d entries max", cfg.Cache.Size))
			case cache.BackendRedis:
				printKeyValue(c.Out, "redis", fmt.Sprintf("%s db %d", cfg.Cache.RedisAddr, cfg.Cache.RedisDB))
			case cache.BackendFile:
				fc, err := fileCache(cfg)
				if err != nil {
					return err
				}
				entries, size, err := fc.Stats()
				if err != nil {
					return fmt.Errorf("scan cache: %w", err)
				}
				printKeyValue(c.Out, "dir", fc.Dir())
				printKeyValue(c.Out, "entries", fmt.Sprintf("%d (%s)", entries, formatBytes(size)))
			}
			return nil
		},
	}
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached projections",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Cache.Backend != cache.BackendFile {
				printWarning(c.Out, "Only the file cache can be cleared; the %s backend expires entries on its own", cfg.Cache.Backend)
				return nil
			}
			fc, err := fileCache(cfg)
			if err != nil {
				return err
			}
			entries, _, err := fc.Stats()
			if err != nil {
				return fmt.Errorf("scan cache: %w", err)
			}
			if entries == 0 {
				printInfo(c.Out, "Cache is empty")
				return nil
			}
			if err := fc.Clear(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess(c.Out, "Cleared %d cached projections", entries)
			printDetail(c.Out, "Directory: %s", fc.Dir())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			dir := cfg.Cache.Dir
			if dir == "" {
				if dir, err = cache.DefaultDir(); err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
			}
			fmt.Fprintln(c.Out, dir)
			return nil
		},
	}
}

// fileCache opens the file cache named by cfg.
func fileCache(cfg *config.Options) (*cache.FileCache, error) {
	ch, err := cache.NewFileCache(cfg.Cache.Dir)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	fc, ok := ch.(*cache.FileCache)
	if !ok {
		return nil, fmt.Errorf("open cache: unexpected backend %T", ch)
	}
	return fc, nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
