package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"media-catalog/internal/filesystem"
	"media-catalog/internal/mediatypes"
	"media-catalog/internal/model"
)

func newTagsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage tag owners and tagged paths",
		Long: `Tags group files and folders under named owners. A path belongs to at most
one owner at a time; tagging it again moves it. Commands take an owner by id or
by name; a name shared by several owners means the oldest one.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "owners",
			Short: "List tag owners with their entry counts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd.Context(), opts, func(a *app) error {
					owners, err := a.tags.Owners(cmd.Context())
					if err != nil {
						return err
					}
					p := newPrinter(cmd, opts)
					if p.json {
						return p.JSON(owners)
					}
					rows := make([][]string, 0, len(owners))
					for _, o := range owners {
						rows = append(rows, []string{strconv.FormatInt(o.ID, 10), strconv.Itoa(o.Count), o.Name})
					}
					return p.Table([]string{"ID", "ENTRIES", "NAME"}, rows)
				})
			},
		},
		&cobra.Command{
			Use:   "add-owner <name>",
			Short: "Create a tag owner",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), opts, func(a *app) error {
					id, err := a.tags.AddOwner(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					p := newPrinter(cmd, opts)
					if p.json {
						return p.JSON(model.TagOwner{ID: id, Name: args[0]})
					}
					p.Linef("%d", id)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "rm-owner <owner>",
			Short: "Delete a tag owner and all of its entries",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), opts, func(a *app) error {
					o, err := a.tags.ResolveOwner(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					return a.tags.RemoveOwner(cmd.Context(), o.ID)
				})
			},
		},
		&cobra.Command{
			Use:   "rename-owner <owner> <name>",
			Short: "Rename a tag owner",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), opts, func(a *app) error {
					o, err := a.tags.ResolveOwner(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					return a.tags.RenameOwner(cmd.Context(), o.ID, args[1])
				})
			},
		},
		&cobra.Command{
			Use:   "tag <owner> <path>",
			Short: "Tag a file or folder for an owner",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), opts, func(a *app) error {
					o, err := a.tags.ResolveOwner(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					item, err := itemForPath(a.cfg.Extensions, args[1])
					if err != nil {
						return err
					}
					entry, err := a.tags.Tag(cmd.Context(), o.ID, item)
					if err != nil {
						return err
					}
					p := newPrinter(cmd, opts)
					if p.json {
						return p.JSON(entry)
					}
					p.Linef("%d\t%s", entry.ID, entry.Path)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "untag <path>",
			Short: "Remove the tag from a path",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), opts, func(a *app) error {
					path, err := filepath.Abs(args[0])
					if err != nil {
						return err
					}
					removed, err := a.tags.Untag(cmd.Context(), path)
					if err != nil {
						return err
					}
					if !removed {
						return fmt.Errorf("%s is not tagged", path)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "rm-entry <entry-id>",
			Short: "Remove a tagged entry by the id shown by \"tags dirs\"",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return withApp(cmd.Context(), opts, func(a *app) error {
					return a.tags.RemoveEntry(cmd.Context(), id)
				})
			},
		},
		newTagDirsCommand(opts),
		newTagOpenCommand(opts),
		&cobra.Command{
			Use:   "export [file]",
			Short: "Write every owner and entry as a JSON backup",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), opts, func(a *app) error {
					if len(args) == 0 || args[0] == "-" {
						return a.tags.ExportJSON(cmd.Context(), cmd.OutOrStdout())
					}
					f, err := os.Create(args[0])
					if err != nil {
						return fmt.Errorf("failed to create backup: %w", err)
					}
					if err := a.tags.ExportJSON(cmd.Context(), f); err != nil {
						_ = f.Close()
						return err
					}
					return f.Close()
				})
			},
		},
		&cobra.Command{
			Use:   "import <file>",
			Short: "Merge a JSON backup into the tag store",
			Long: `Merge a backup written by "tags export". Owners are matched by name and
created when missing. Entries replace any existing entry for the same path.`,
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), opts, func(a *app) error {
					var r io.Reader = cmd.InOrStdin()
					if args[0] != "-" {
						f, err := os.Open(args[0])
						if err != nil {
							return fmt.Errorf("failed to open backup: %w", err)
						}
						defer f.Close()
						r = f
					}
					res, err := a.tags.ImportJSON(cmd.Context(), r)
					if err != nil {
						return err
					}
					p := newPrinter(cmd, opts)
					if p.json {
						return p.JSON(res)
					}
					p.Linef("%d owners created, %d entries stored", res.OwnersCreated, res.EntriesStored)
					return nil
				})
			},
		},
	)
	return cmd
}

func newTagDirsCommand(opts *rootOptions) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "dirs <owner>",
		Short: "List the entries tagged for an owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				o, err := a.tags.ResolveOwner(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				entries, err := a.tags.DirsFor(cmd.Context(), o.ID, filter)
				if err != nil {
					return err
				}
				p := newPrinter(cmd, opts)
				if p.json {
					return p.JSON(entries)
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{strconv.FormatInt(e.ID, 10), e.Kind.String(), e.Path})
				}
				return p.Table([]string{"ID", "KIND", "PATH"}, rows)
			})
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "only entries whose name contains this text")
	return cmd
}

func newTagOpenCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "open <owner> <path>",
		Short: "Open a tagged file the way the tag list hands it to a viewer",
		Long: `Open a tagged photo, video or audio file. A photo opens a gallery over every
photo and video tagged for the owner, an audio file opens a playlist of the
owner's tracks and a video opens on its own. The hand-off is received as a
viewer would and summarized.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), opts, func(a *app) error {
				o, err := a.tags.ResolveOwner(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				entries, err := a.tags.DirsFor(cmd.Context(), o.ID, "")
				if err != nil {
					return err
				}
				i := slices.IndexFunc(entries, func(e model.TagDirEntry) bool { return e.Path == path })
				if i < 0 {
					return fmt.Errorf("%s is not tagged for %s", path, o.Name)
				}

				ctrl, err := a.controller(false)
				if err != nil {
					return err
				}
				defer func() { _ = ctrl.Close() }()

				v, err := ctrl.OpenTagViewer(o.ID, entries[i])
				if err != nil {
					return err
				}
				sum, err := receiveViewer(a, ctrl, path, v)
				if err != nil {
					return err
				}
				return printHandoff(newPrinter(cmd, opts), sum)
			})
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// itemForPath stats path and builds the item the scanner would produce for it.
func itemForPath(exts mediatypes.ExtensionSets, path string) (model.FileItem, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return model.FileItem{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return model.FileItem{}, err
	}

	isDir := info.IsDir()
	kind := exts.Normalize().Classify(info.Name(), isDir)
	if kind == mediatypes.KindUnknown {
		return model.FileItem{}, fmt.Errorf("%s is not a media file", abs)
	}

	size := info.Size()
	if isDir {
		size = filesystem.CountEntries(abs)
	}
	return model.NewFileItem(kind, abs, info.ModTime(), size, filesystem.CanRead(abs, isDir)), nil
}
