package cli

import (
	"github.com/spf13/cobra"

	"media-catalog/internal/startup"
)

func newVersionCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := startup.GetBuildInfo()
			p := newPrinter(cmd, opts)
			if p.json {
				return p.JSON(info)
			}
			p.Linef("media-catalog %s (%s, built %s, %s %s/%s)",
				info.Version, info.Commit, info.BuildTime, info.GoVersion, info.OS, info.Arch)
			return nil
		},
	}
}
