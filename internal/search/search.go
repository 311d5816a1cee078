// Package search fuzzy-matches queue items against a query using fzf's
// matching algorithm.
package search

import (
	"sort"
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"

	"github.com/tessro/tubeq/internal/core"
)

// Score thresholds, in raw fzf score units.
const (
	ScoreThresholdStrict     = 70
	ScoreThresholdNormal     = 30
	ScoreThresholdPermissive = 1
)

var initOnce sync.Once

// Match is one matching queue position.
type Match struct {
	Index     int
	Score     int
	Positions []int
}

// Searcher matches items against a query.
type Searcher struct {
	minScore      int
	caseSensitive bool
	slab          *util.Slab
}

// New creates a case-insensitive searcher with the normal threshold.
func New() *Searcher {
	initOnce.Do(func() { algo.Init("default") })
	return &Searcher{
		minScore: ScoreThresholdNormal,
		slab:     util.MakeSlab(16384, 1024),
	}
}

// SetMinScore sets the minimum accepted score.
func (s *Searcher) SetMinScore(score int) {
	s.minScore = score
}

// Score returns the fzf score of text against query and the matched rune
// positions, or -1 when there is no match.
func (s *Searcher) Score(query, text string) (int, []int) {
	if !s.caseSensitive {
		query = strings.ToLower(query)
		text = strings.ToLower(text)
	}
	chars := util.ToChars([]byte(text))
	result, pos := algo.FuzzyMatchV2(s.caseSensitive, false, true, &chars, []rune(query), true, s.slab)
	if result.Start < 0 {
		return -1, nil
	}
	var positions []int
	if pos != nil {
		positions = make([]int, len(*pos))
		copy(positions, *pos)
		sort.Ints(positions)
	}
	return result.Score, positions
}

// Text is the searchable text of an item.
func Text(it core.Item) string {
	return it.Title + " " + it.Author
}

// Items returns the matches for query, best first. Ties keep queue order.
// An empty query matches nothing.
func (s *Searcher) Items(query string, items []core.Item) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	var matches []Match
	for i, it := range items {
		score, pos := s.Score(query, Text(it))
		if score < 0 || score < s.minScore {
			continue
		}
		matches = append(matches, Match{Index: i, Score: score, Positions: pos})
	}
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})
	return matches
}
