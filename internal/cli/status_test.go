package cli

import (
	"testing"
	"time"

	"github.com/tessro/tubeq/internal/core"
)

func TestSummarize(t *testing.T) {
	t0 := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	items := []core.Item{
		core.NewItem("aaaaaaaaaaa", "A", "x", t0),
		core.NewItem("bbbbbbbbbbb", "B", "y", t0.Add(time.Hour)),
		core.NewItem("aaaaaaaaaaa", core.PlaceholderTitle, core.PlaceholderAuthor, t0.Add(time.Minute)),
	}
	items[1].PlayCount = 4
	items[0].PlayCount = 1

	res := summarize("/tmp/p.txt", 100, items)

	if res.Count != 3 || res.Unique != 2 {
		t.Errorf("Count, Unique = %d, %d, want 3, 2", res.Count, res.Unique)
	}
	if res.TotalPlays != 5 {
		t.Errorf("TotalPlays = %d, want 5", res.TotalPlays)
	}
	if res.MostPlayed == nil || res.MostPlayed.ID != "bbbbbbbbbbb" || res.MostPlayed.Position != 2 {
		t.Errorf("MostPlayed = %+v, want bbbbbbbbbbb at 2", res.MostPlayed)
	}
	if res.LastAdded == nil || !res.LastAdded.Equal(t0.Add(time.Hour)) {
		t.Errorf("LastAdded = %v", res.LastAdded)
	}
	if res.Placeholders != 1 {
		t.Errorf("Placeholders = %d, want 1", res.Placeholders)
	}
}

func TestSummarize_Empty(t *testing.T) {
	res := summarize("f", 10, nil)
	if res.Count != 0 || res.MostPlayed != nil || res.LastAdded != nil {
		t.Errorf("summarize(nil) = %+v", res)
	}
}
