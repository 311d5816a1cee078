package core

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	tqerrors "github.com/tessro/tubeq/internal/errors"
)

// MaxCapacity is the authoritative upper bound on queue length.
const MaxCapacity = 32767

// NoIndex marks an unset cursor.
const NoIndex = -1

// SortKey selects the field used by Sort.
type SortKey string

const (
	SortByPlayCount   SortKey = "plays"
	SortByAddedAt     SortKey = "added"
	SortByPublishedAt SortKey = "published"
)

// ParseSortKey converts user input into a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case SortByPlayCount, SortByAddedAt, SortByPublishedAt:
		return SortKey(s), nil
	case "playCount", "play_count", "count":
		return SortByPlayCount, nil
	case "addedAt", "added_at":
		return SortByAddedAt, nil
	case "publishedAt", "published_at":
		return SortByPublishedAt, nil
	}
	return "", fmt.Errorf("invalid sort key: %s (must be plays, added, or published)", s)
}

// Queue is an ordered, capacity-bounded list of items with a playback
// cursor and an independent selection cursor.
type Queue struct {
	items    []Item
	current  int
	selected int
	capacity int
}

// NewQueue creates an empty queue. Capacities outside (0, MaxCapacity] are
// clamped to MaxCapacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 || capacity > MaxCapacity {
		capacity = MaxCapacity
	}
	return &Queue{
		current:  NoIndex,
		selected: NoIndex,
		capacity: capacity,
	}
}

// Len returns the number of items in the queue.
func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// IsEmpty returns true if the queue has no items.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Capacity returns the maximum number of items.
func (q *Queue) Capacity() int {
	return q.capacity
}

// Remaining returns how many more items fit.
func (q *Queue) Remaining() int {
	return q.capacity - len(q.items)
}

// Full reports whether the queue is at capacity.
func (q *Queue) Full() bool {
	return len(q.items) >= q.capacity
}

// CurrentIndex returns the playback cursor, or NoIndex.
func (q *Queue) CurrentIndex() int {
	return q.current
}

// SelectedIndex returns the selection cursor, or NoIndex.
func (q *Queue) SelectedIndex() int {
	return q.selected
}

// Current returns the item under the playback cursor, or nil.
func (q *Queue) Current() *Item {
	if q == nil || q.current < 0 || q.current >= len(q.items) {
		return nil
	}
	return &q.items[q.current]
}

// At returns the item at index i, or nil when out of range.
func (q *Queue) At(i int) *Item {
	if i < 0 || i >= len(q.items) {
		return nil
	}
	return &q.items[i]
}

// Items returns a copy of the queue contents in order.
func (q *Queue) Items() []Item {
	out := make([]Item, len(q.items))
	copy(out, q.items)
	return out
}

// IndexOf returns the position of the item carrying token, or NoIndex.
func (q *Queue) IndexOf(token string) int {
	if token == "" {
		return NoIndex
	}
	for i := range q.items {
		if q.items[i].Token == token {
			return i
		}
	}
	return NoIndex
}

// Find returns the item carrying token, or nil.
func (q *Queue) Find(token string) *Item {
	return q.At(q.IndexOf(token))
}

// Append adds items to the end of the queue up to the remaining capacity
// and returns how many were added. Items without a token get one.
func (q *Queue) Append(items ...Item) (int, error) {
	if len(items) > 0 && q.Full() {
		return 0, tqerrors.QueueFull(q.capacity)
	}
	n := 0
	for _, it := range items {
		if q.Full() {
			break
		}
		if it.Token == "" {
			it.Token = NewToken()
		}
		q.items = append(q.items, it)
		n++
	}
	return n, nil
}

// Select sets the selection cursor. NoIndex clears it.
func (q *Queue) Select(i int) error {
	if i == NoIndex {
		q.selected = NoIndex
		return nil
	}
	if i < 0 || i >= len(q.items) {
		return fmt.Errorf("%w: %d", tqerrors.ErrIndexOutOfRange, i)
	}
	q.selected = i
	return nil
}

// SetCurrent moves the playback cursor to i and counts a play.
func (q *Queue) SetCurrent(i int) error {
	if i < 0 || i >= len(q.items) {
		return fmt.Errorf("%w: %d", tqerrors.ErrIndexOutOfRange, i)
	}
	q.current = i
	q.items[i].PlayCount++
	return nil
}

// EditAt replaces the title and author of the item at i.
func (q *Queue) EditAt(i int, title, author string) error {
	it := q.At(i)
	if it == nil {
		return fmt.Errorf("%w: %d", tqerrors.ErrIndexOutOfRange, i)
	}
	it.Title = title
	it.Author = author
	return nil
}

// EditCurrent replaces the title and author of the current item.
func (q *Queue) EditCurrent(title, author string) error {
	return q.EditAt(q.current, title, author)
}

// RemoveAt deletes the item at i.
//
// If i was the playback cursor, the cursor stays on the item that now
// occupies that position, clamped to the new last index, or becomes NoIndex
// when the queue empties. A cursor after i shifts down so it keeps pointing
// at the same item. The selection is always cleared.
func (q *Queue) RemoveAt(i int) (Item, error) {
	if i < 0 || i >= len(q.items) {
		return Item{}, fmt.Errorf("%w: %d", tqerrors.ErrIndexOutOfRange, i)
	}
	removed := q.items[i]
	q.items = append(q.items[:i], q.items[i+1:]...)

	switch {
	case q.current == i:
		if len(q.items) == 0 {
			q.current = NoIndex
		} else if q.current >= len(q.items) {
			q.current = len(q.items) - 1
		}
	case q.current > i:
		q.current--
	}
	q.selected = NoIndex
	return removed, nil
}

// RemoveSelected deletes the selected item.
func (q *Queue) RemoveSelected() (Item, error) {
	if q.selected == NoIndex {
		return Item{}, tqerrors.ErrNoSelection
	}
	return q.RemoveAt(q.selected)
}

// RemoveToken deletes the item carrying token. It reports false when no
// such item exists any more.
func (q *Queue) RemoveToken(token string) (Item, bool) {
	i := q.IndexOf(token)
	if i == NoIndex {
		return Item{}, false
	}
	selected := q.selected
	it, _ := q.RemoveAt(i)
	switch {
	case selected == i:
		q.selected = NoIndex
	case selected > i:
		q.selected = selected - 1
	default:
		q.selected = selected
	}
	return it, true
}

// DuplicateSelected inserts a copy of the selected item directly after it.
func (q *Queue) DuplicateSelected(now time.Time) (Item, error) {
	if q.selected == NoIndex {
		return Item{}, tqerrors.ErrNoSelection
	}
	if q.Full() {
		return Item{}, tqerrors.QueueFull(q.capacity)
	}
	at := q.selected + 1
	dup := q.items[q.selected].Clone(now)

	q.items = append(q.items, Item{})
	copy(q.items[at+1:], q.items[at:])
	q.items[at] = dup

	if q.current >= at {
		q.current++
	}
	return dup, nil
}

// Move relocates the item at from to position to.
func (q *Queue) Move(from, to int) error {
	if from < 0 || from >= len(q.items) {
		return fmt.Errorf("%w: %d", tqerrors.ErrIndexOutOfRange, from)
	}
	if to < 0 || to >= len(q.items) {
		return fmt.Errorf("%w: %d", tqerrors.ErrIndexOutOfRange, to)
	}
	if from == to {
		return nil
	}
	restore := q.remember()

	it := q.items[from]
	q.items = append(q.items[:from], q.items[from+1:]...)
	q.items = append(q.items, Item{})
	copy(q.items[to+1:], q.items[to:])
	q.items[to] = it

	restore()
	return nil
}

// Dedupe keeps the first occurrence of each video id in list order and
// returns how many entries were removed. The playback cursor re-locates the
// previously current video id, or becomes NoIndex if it is gone.
func (q *Queue) Dedupe() int {
	currentID := ""
	if cur := q.Current(); cur != nil {
		currentID = cur.ID
	}

	seen := make(map[string]struct{}, len(q.items))
	kept := q.items[:0]
	for _, it := range q.items {
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		kept = append(kept, it)
	}
	removed := len(q.items) - len(kept)
	clear(q.items[len(kept):])
	q.items = kept

	q.current = NoIndex
	if currentID != "" {
		for i := range q.items {
			if q.items[i].ID == currentID {
				q.current = i
				break
			}
		}
	}
	if removed > 0 {
		q.selected = NoIndex
	}
	return removed
}

// Sort stably reorders the queue in descending order of key. The playback
// cursor follows the current item.
func (q *Queue) Sort(key SortKey) error {
	var less func(a, b *Item) bool
	switch key {
	case SortByPlayCount:
		less = func(a, b *Item) bool { return a.PlayCount > b.PlayCount }
	case SortByAddedAt:
		less = func(a, b *Item) bool { return a.AddedAt.After(b.AddedAt) }
	case SortByPublishedAt:
		less = func(a, b *Item) bool {
			if a.PublishedAt == nil || b.PublishedAt == nil {
				return a.PublishedAt != nil && b.PublishedAt == nil
			}
			return a.PublishedAt.After(*b.PublishedAt)
		}
	default:
		return fmt.Errorf("invalid sort key: %s", key)
	}

	restore := q.remember()
	sort.SliceStable(q.items, func(i, j int) bool {
		return less(&q.items[i], &q.items[j])
	})
	restore()
	return nil
}

// Shuffle randomly reorders the whole queue. The playback cursor follows
// the current item.
func (q *Queue) Shuffle(rng *rand.Rand) {
	restore := q.remember()
	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(q.items), func(i, j int) {
		q.items[i], q.items[j] = q.items[j], q.items[i]
	})
	restore()
}

// Clear empties the queue and resets both cursors.
func (q *Queue) Clear() {
	q.items = nil
	q.current = NoIndex
	q.selected = NoIndex
}

// Replace swaps the whole queue for items, truncated to capacity, and
// resets both cursors. It returns the number of items kept.
func (q *Queue) Replace(items []Item) int {
	if len(items) > q.capacity {
		items = items[:q.capacity]
	}
	q.items = make([]Item, len(items))
	copy(q.items, items)
	for i := range q.items {
		if q.items[i].Token == "" {
			q.items[i].Token = NewToken()
		}
	}
	q.current = NoIndex
	q.selected = NoIndex
	return len(q.items)
}

// remember captures the tokens under both cursors and returns a func that
// re-locates them after a reorder.
func (q *Queue) remember() func() {
	var curTok, selTok string
	if it := q.At(q.current); it != nil {
		curTok = it.Token
	}
	if it := q.At(q.selected); it != nil {
		selTok = it.Token
	}
	return func() {
		q.current = q.IndexOf(curTok)
		q.selected = q.IndexOf(selTok)
	}
}
