package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"media-catalog/internal/logging"
	"media-catalog/internal/model"
)

func newListCommand(opts *rootOptions) *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:   "list [dir]",
		Short: "List the media and folders in a directory",
		Long: `List a directory the way the browser shows it: folders first, then files,
each newest first. Hidden entries, empty folders, reserved directories and files
with unknown extensions are left out.

The listing is stored as the directory's cached snapshot. With --cached the
snapshot is printed instead of scanning, if there is one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				dir := a.dirArg(args)
				ctx := cmd.Context()

				if cached {
					items, ok, err := a.cache.Get(ctx, dir)
					if err != nil {
						return err
					}
					if ok {
						return newPrinter(cmd, opts).Items(annotate(a, items))
					}
					logging.Debug("No snapshot for %s, scanning", dir)
				}

				items, err := a.scanner.List(ctx, dir)
				if err != nil {
					return err
				}
				if err := a.cache.Put(ctx, dir, items); err != nil {
					logging.Warn("Failed to store snapshot for %s: %v", dir, err)
				}
				return newPrinter(cmd, opts).Items(items)
			})
		},
	}

	cmd.Flags().BoolVar(&cached, "cached", false, "print the cached snapshot when one exists")
	return cmd
}

func newSearchCommand(opts *rootOptions) *cobra.Command {
	var (
		root  string
		local bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find entries whose names contain a query",
		Long: `Search every directory below --root (default: the storage root) for entries
whose names contain the query, ignoring case. With --local only the direct
contents of --root are filtered.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				dir := a.dirArg([]string{root})
				query := strings.TrimSpace(args[0])
				ctx := cmd.Context()

				if local {
					items, err := a.scanner.List(ctx, dir)
					if err != nil {
						return err
					}
					return newPrinter(cmd, opts).Items(filterByName(items, query))
				}

				items, err := a.scanner.Search(ctx, dir, query)
				if err != nil {
					return err
				}
				return newPrinter(cmd, opts).Items(items)
			})
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "directory to search below")
	cmd.Flags().BoolVar(&local, "local", false, "only filter the direct contents of --root")
	return cmd
}

// dirArg returns the optional directory argument as a clean absolute path,
// or the storage root when it is missing.
func (a *app) dirArg(args []string) string {
	if len(args) == 0 || args[0] == "" {
		return a.cfg.StorageRoot
	}
	dir := args[0]
	if !filepath.IsAbs(dir) {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
	}
	return filepath.Clean(dir)
}

// annotate refreshes tag marks on a cached snapshot.
func annotate(a *app, items []model.FileItem) []model.FileItem {
	for i := range items {
		items[i].HasTag = a.tags.IsTagged(items[i].Path)
	}
	return items
}

func filterByName(items []model.FileItem, query string) []model.FileItem {
	q := strings.ToLower(query)
	out := make([]model.FileItem, 0)
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), q) {
			out = append(out, it)
		}
	}
	return out
}
