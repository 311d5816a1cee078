package cli

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/tessro/tubeq/internal/browser"
	"github.com/tessro/tubeq/internal/core"
	tqerrors "github.com/tessro/tubeq/internal/errors"
	"github.com/tessro/tubeq/internal/wizard"
	"github.com/tessro/tubeq/internal/ytid"
)

var openCopy bool

var openCmd = &cobra.Command{
	Use:   "open [position]",
	Short: "Open a queued video on YouTube",
	Long: `Open the watch page of the video at position in the default browser.
Without a position, pick one interactively.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOpen,
}

func init() {
	openCmd.Flags().BoolVar(&openCopy, "copy", false, "Copy the URL to the clipboard instead")
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	return withQueue(func(s *session) (bool, error) {
		items := s.ctrl.Items()
		var i int
		if len(args) == 1 {
			var err error
			if i, err = parsePosition(args[0], len(items)); err != nil {
				return false, err
			}
		} else {
			picked, err := wizard.NewInteractive().PromptItem(items)
			if err != nil {
				return false, err
			}
			if picked == core.NoIndex {
				return false, tqerrors.ErrNoSelection
			}
			i = picked
		}

		url := ytid.WatchURL(items[i].ID)
		if openCopy {
			if err := clipboard.WriteAll(url); err != nil {
				return false, fmt.Errorf("failed to copy: %w", err)
			}
			return false, report("copied", map[string]any{"url": url}, "Copied "+url)
		}
		if err := browser.Open(url); err != nil {
			return false, err
		}
		return false, report("opened", map[string]any{"url": url}, "Opened "+url)
	})
}
