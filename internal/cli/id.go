package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	tqerrors "github.com/tessro/tubeq/internal/errors"
	"github.com/tessro/tubeq/internal/ytid"
)

var idCmd = &cobra.Command{
	Use:   "id <url-or-id>...",
	Short: "Print the video and playlist ids in URLs",
	Long: `Extract the 11-character video id and any playlist id from each argument.

Examples:
  tubeq id https://youtu.be/dQw4w9WgXcQ
  tubeq id "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PLabc"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runID,
}

func init() {
	rootCmd.AddCommand(idCmd)
}

type idResult struct {
	Input    string `json:"input"`
	ID       string `json:"id,omitempty"`
	Kind     string `json:"kind"`
	Playlist string `json:"playlist,omitempty"`
}

func extractIDs(args []string) []idResult {
	out := make([]idResult, len(args))
	for i, raw := range args {
		id, kind := ytid.ExtractID(raw)
		out[i] = idResult{
			Input:    raw,
			ID:       id,
			Kind:     kind.String(),
			Playlist: ytid.ExtractPlaylistID(raw),
		}
	}
	return out
}

func runID(cmd *cobra.Command, args []string) error {
	results := extractIDs(args)
	if JSONOutput() {
		return printJSON(results)
	}

	var failed int
	for _, r := range results {
		switch {
		case r.ID != "" && r.Playlist != "":
			fmt.Printf("%s\t%s\tlist=%s\n", r.ID, r.Kind, r.Playlist)
		case r.ID != "":
			fmt.Printf("%s\t%s\n", r.ID, r.Kind)
		case r.Playlist != "":
			fmt.Printf("-\tplaylist\tlist=%s\n", r.Playlist)
		default:
			failed++
			fmt.Printf("-\t%s\t%s\n", r.Kind, r.Input)
		}
	}
	if failed == len(results) {
		return tqerrors.ErrInvalidInput
	}
	return nil
}
