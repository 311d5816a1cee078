package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tessro/tubeq/internal/core"
)

var (
	playLoop    bool
	playShuffle bool
)

var playCmd = &cobra.Command{
	Use:   "play [position]",
	Short: "Play the queue without the dashboard",
	Long: `Play the saved queue through mpv, starting at position (default 1).
Playback advances on its own and stops at the end of the queue unless
--loop is set. Play counts are written back to the playlist file on exit.

Examples:
  tubeq play
  tubeq play 5 --shuffle
  tubeq play --loop`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&playLoop, "loop", false, "Start over after the last video")
	playCmd.Flags().BoolVar(&playShuffle, "shuffle", false, "Pick the next video at random")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	if cfg.Player.Backend == "none" {
		return fmt.Errorf("play needs a player; set player.backend = \"mpv\"")
	}

	s, err := openSession(sessionOptions{realPlayer: true, echo: os.Stdout})
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	items := s.ctrl.Items()
	if len(items) == 0 {
		return fmt.Errorf("queue is empty; add videos with 'tubeq queue add'")
	}

	start := 0
	if len(args) == 1 {
		if start, err = parsePosition(args[0], len(items)); err != nil {
			return err
		}
	}

	snap := s.ctrl.Snapshot()
	if playLoop != snap.Mode.Loop {
		if _, err := s.ctrl.ToggleLoop(); err != nil {
			return err
		}
	}
	if playShuffle != snap.Mode.Shuffle {
		if _, err := s.ctrl.ToggleShuffle(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := playUntilDone(ctx, s, start)
	if err := s.save(); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// playUntilDone starts at index start and follows the player's end
// notifications until the queue runs out or ctx is cancelled.
func playUntilDone(ctx context.Context, s *session, start int) error {
	if err := s.ctrl.PlayIndex(ctx, start); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			_ = s.ctrl.Stop(context.Background())
			return nil
		case <-s.player.Ended():
			if err := s.ctrl.OnEnded(ctx); err != nil {
				s.logger.Warn("advance failed", "err", err)
			}
			if s.ctrl.Snapshot().State == core.StateStopped {
				return nil
			}
		}
	}
}
