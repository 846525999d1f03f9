package cli

import (
	"github.com/spf13/cobra"

	"media-catalog/internal/filesystem"
	"media-catalog/internal/logging"
)

func newFixTimesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fix-times [dir]",
		Short: "Set folder times to the time of their newest file",
		Long: `Walk every folder below dir (default: the storage root) and set its
modification time to that of the newest file directly inside it, so folders sort
by their contents. Folders without files keep their time. The snapshot of dir is
dropped so the next listing rescans it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				dir := a.dirArg(args)
				n, err := filesystem.FixDirTimes(cmd.Context(), dir)
				if err != nil {
					return err
				}
				if err := a.cache.Clear(cmd.Context(), dir); err != nil {
					logging.Warn("Failed to drop snapshot for %s: %v", dir, err)
				}

				p := newPrinter(cmd, opts)
				if p.json {
					return p.JSON(map[string]any{"directory": dir, "updated": n})
				}
				p.Linef("%d folders updated", n)
				return nil
			})
		},
	}
}
