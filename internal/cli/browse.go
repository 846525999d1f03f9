package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"media-catalog/internal/logging"
	"media-catalog/internal/startup"
	"media-catalog/internal/tui"
)

func newBrowseCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse [dir]",
		Short: "Browse the catalog interactively",
		Long: `Open the interactive browser at dir (default: the storage root).

Keys: enter opens a folder or media file, backspace goes up or leaves a search,
/ filters the current folder, ? searches every folder below, r rescans, o picks
the tag owner, t tags or untags the selected entry, F fixes folder times and q
quits. Log output goes to LOG_FILE while the browser is open.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("browse needs an interactive terminal")
			}

			startup.LogBanner()
			return withApp(cmd.Context(), opts, func(a *app) error {
				owners, err := a.tags.Owners(cmd.Context())
				if err != nil {
					return err
				}

				ctrl, err := a.controller(a.cfg.Watch)
				if err != nil {
					return err
				}

				logging.SetOutput(io.Discard)
				defer logging.SetOutput(os.Stderr)

				start := ""
				if len(args) > 0 {
					start = a.dirArg(args)
				}
				return tui.Run(cmd.Context(), ctrl, tui.Options{Start: start, Owners: owners})
			})
		},
	}
}
