package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"media-catalog/internal/logging"
	"media-catalog/internal/memory"
)

type rootOptions struct {
	configPath  string
	logLevel    string
	metricsAddr string
	json        bool

	memory memory.ConfigResult
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "media-catalog",
		Short: "Browse, search and tag local media folders",
		Long: `media-catalog lists media directories, searches them, remembers the last
listing of every directory it has seen and keeps named collections of tagged
files and folders.

Run "media-catalog browse" for the interactive browser.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.logLevel != "" {
				logging.SetLevel(logging.ParseLevel(opts.logLevel))
			}
			if fc, ok := logging.FileConfigFromEnv(); ok {
				if err := logging.EnableFile(fc, os.Stderr); err != nil {
					return err
				}
			}
			opts.memory = memory.ConfigureFromEnv()
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default: config.yaml in the search paths)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	flags.BoolVar(&opts.json, "json", false, "print JSON instead of columns")

	root.AddCommand(
		newListCommand(opts),
		newSearchCommand(opts),
		newTagsCommand(opts),
		newCacheCommand(opts),
		newGalleryCommand(opts),
		newFixTimesCommand(opts),
		newBrowseCommand(opts),
		newVersionCommand(opts),
	)
	return root
}

// Execute runs the command tree until it finishes or the process receives
// SIGINT or SIGTERM, and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := NewRootCommand().ExecuteContext(ctx)
	if cerr := logging.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return 1
	}
	return 0
}
