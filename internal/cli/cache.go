package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newCacheCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear cached directory snapshots",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show [dir]",
			Short: "Show the cached snapshot of a directory, or every cached directory",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), opts, func(a *app) error {
					ctx := cmd.Context()
					p := newPrinter(cmd, opts)

					if len(args) == 0 {
						paths, err := a.cache.Paths(ctx)
						if err != nil {
							return err
						}
						if p.json {
							return p.JSON(paths)
						}
						rows := make([][]string, 0, len(paths))
						for _, path := range paths {
							rows = append(rows, []string{path})
						}
						return p.Table([]string{"DIRECTORY"}, rows)
					}

					dir := a.dirArg(args)
					entry, err := a.cache.Lookup(ctx, dir)
					if err != nil {
						return err
					}
					if entry == nil {
						return fmt.Errorf("no snapshot for %s", dir)
					}
					if p.json {
						return p.JSON(entry)
					}
					p.Linef("%s: %d items, updated %s", entry.Path, len(entry.Items),
						entry.UpdatedAt.Local().Format(time.DateTime))
					return p.Items(annotate(a, entry.Items))
				})
			},
		},
		newCacheClearCommand(opts),
	)
	return cmd
}

func newCacheClearCommand(opts *rootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clear [dir]",
		Short: "Drop the snapshot of a directory, or of every directory with --all",
		Long: `Drop the cached snapshot of dir (default: the storage root). With --all every
snapshot is dropped and the database file is compacted afterwards.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return fmt.Errorf("--all does not take a directory")
			}
			return withApp(cmd.Context(), opts, func(a *app) error {
				ctx := cmd.Context()
				p := newPrinter(cmd, opts)

				if all {
					n, err := a.cache.ClearAll(ctx)
					if err != nil {
						return err
					}
					if err := a.db.Vacuum(ctx); err != nil {
						return fmt.Errorf("failed to compact database: %w", err)
					}
					p.Linef("%d snapshots removed", n)
					return nil
				}
				return a.cache.Clear(ctx, a.dirArg(args))
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "remove every snapshot")
	return cmd
}
