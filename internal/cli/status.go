package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/tubeq/internal/core"
	"github.com/tessro/tubeq/internal/playlistfile"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize the saved queue",
	Long:  `Shows the playlist file, how full the queue is, and what gets played most.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusResult struct {
	File         string     `json:"file"`
	Count        int        `json:"count"`
	Capacity     int        `json:"capacity"`
	Unique       int        `json:"unique"`
	TotalPlays   int        `json:"totalPlays"`
	MostPlayed   *itemJSON  `json:"mostPlayed,omitempty"`
	LastAdded    *time.Time `json:"lastAdded,omitempty"`
	Fingerprint  string     `json:"fingerprint"`
	Placeholders int        `json:"placeholders"`
}

func summarize(file string, capacity int, items []core.Item) statusResult {
	res := statusResult{
		File:        file,
		Count:       len(items),
		Capacity:    capacity,
		Fingerprint: fmt.Sprintf("%016x", playlistfile.Fingerprint(items)),
	}

	seen := make(map[string]bool, len(items))
	best := -1
	for i := range items {
		it := &items[i]
		if !seen[it.ID] {
			seen[it.ID] = true
			res.Unique++
		}
		res.TotalPlays += it.PlayCount
		if it.IsPlaceholder() {
			res.Placeholders++
		}
		if best < 0 || it.PlayCount > items[best].PlayCount {
			best = i
		}
		if res.LastAdded == nil || it.AddedAt.After(*res.LastAdded) {
			t := it.AddedAt
			res.LastAdded = &t
		}
	}
	if best >= 0 && items[best].PlayCount > 0 {
		j := toItemJSON(best, items[best])
		res.MostPlayed = &j
	}
	return res
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withQueue(func(s *session) (bool, error) {
		res := summarize(s.file, cfg.Queue.Capacity, s.ctrl.Items())
		if JSONOutput() {
			return false, printJSON(res)
		}

		fmt.Printf("File:      %s\n", res.File)
		fmt.Printf("Videos:    %s / %s (%d unique)\n",
			humanize.Comma(int64(res.Count)), humanize.Comma(int64(res.Capacity)), res.Unique)
		fmt.Printf("Plays:     %s\n", humanize.Comma(int64(res.TotalPlays)))
		if res.MostPlayed != nil {
			fmt.Printf("Top:       %s — %s (%d plays)\n",
				TruncateString(res.MostPlayed.Title, 40), res.MostPlayed.Author, res.MostPlayed.PlayCount)
		}
		if res.LastAdded != nil {
			fmt.Printf("Added:     %s\n", RelativeTime(*res.LastAdded))
		}
		if res.Placeholders > 0 {
			fmt.Printf("Pending:   %d without metadata\n", res.Placeholders)
		}
		if Verbose() {
			fmt.Printf("Hash:      %s\n", res.Fingerprint)
		}
		return false, nil
	})
}
