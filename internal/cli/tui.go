package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/tubeq/internal/tui"
)

var tuiRefresh int

var tuiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive player",
	Long: `Launch the interactive terminal player.

The dashboard shows the current video, the queue and recent activity.
The queue is saved to the playlist file on exit.

Keyboard shortcuts:
  g            Play/Pause
  s / k        Previous / next
  f / h        Seek back / forward
  1-5, 6-0     Jump back / forward
  a            Add a video or playlist
  /            Search the queue
  L (hold)     Lock or unlock controls
  ?            All shortcuts
  Ctrl+C       Quit`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVar(&tuiRefresh, "refresh", 0, "Refresh interval in milliseconds (default from config)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	refresh := cfg.TUI.RefreshInterval
	if tuiRefresh > 0 {
		refresh = tuiRefresh
	}

	s, err := openSession(sessionOptions{realPlayer: true})
	if err != nil {
		return err
	}
	defer s.Close()

	runErr := tui.Run(tui.Options{
		Controller:   s.ctrl,
		Player:       s.player,
		Events:       s.events,
		File:         s.file,
		RefreshRate:  time.Duration(refresh) * time.Millisecond,
		HoldDuration: time.Duration(cfg.Lock.HoldMS) * time.Millisecond,
		Theme:        cfg.TUI.Theme,
		Logger:       s.logger,
	})

	if err := s.save(); err != nil {
		if runErr != nil {
			fmt.Fprintln(os.Stderr, err)
			return runErr
		}
		return err
	}
	return runErr
}
