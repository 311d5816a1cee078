package controller

import (
	"context"
	"fmt"
	"io"

	"github.com/tessro/tubeq/internal/core"
	tqerrors "github.com/tessro/tubeq/internal/errors"
	"github.com/tessro/tubeq/internal/events"
	"github.com/tessro/tubeq/internal/playlistfile"
)

// DedupeNotice is the message shown after removing duplicates.
func DedupeNotice(n int) string {
	return fmt.Sprintf("%d件の重複を除去", n)
}

// Select sets the selection cursor. core.NoIndex clears it.
func (c *Controller) Select(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return tqerrors.ErrLocked
	}
	return c.queue.Select(i)
}

// MoveSelection moves the selection by delta, clamped to the queue. With
// no selection it starts from the playback cursor, or the top.
func (c *Controller) MoveSelection(delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return tqerrors.ErrLocked
	}
	n := c.queue.Len()
	if n == 0 {
		return nil
	}
	i := c.queue.SelectedIndex()
	if i == core.NoIndex {
		i = max(c.queue.CurrentIndex(), 0)
	} else {
		i += delta
	}
	return c.queue.Select(min(max(i, 0), n-1))
}

// afterRemoveLocked reloads the player when the current item was removed.
func (c *Controller) afterRemoveLocked(wasCurrent bool) {
	if !wasCurrent {
		return
	}
	if c.queue.IsEmpty() {
		c.stopLocked()
	} else {
		c.loadCurrentLocked()
	}
}

// RemoveSelected deletes the selected item.
func (c *Controller) RemoveSelected(ctx context.Context) (core.Item, error) {
	c.mu.Lock()
	if c.locked {
		c.mu.Unlock()
		return core.Item{}, tqerrors.ErrLocked
	}
	i := c.queue.SelectedIndex()
	if i == core.NoIndex {
		c.mu.Unlock()
		return core.Item{}, tqerrors.ErrNoSelection
	}
	removed, err := c.removeLocked(i)
	c.settle(ctx, "player update after removal failed")
	return removed, err
}

// Remove deletes the item at i.
func (c *Controller) Remove(ctx context.Context, i int) (core.Item, error) {
	c.mu.Lock()
	if c.locked {
		c.mu.Unlock()
		return core.Item{}, tqerrors.ErrLocked
	}
	removed, err := c.removeLocked(i)
	c.settle(ctx, "player update after removal failed")
	return removed, err
}

func (c *Controller) removeLocked(i int) (core.Item, error) {
	wasCurrent := c.queue.CurrentIndex() == i
	removed, err := c.queue.RemoveAt(i)
	if err != nil {
		return core.Item{}, err
	}
	c.emit(events.Event{Type: events.EventRemoved, Item: &removed, Index: i})
	c.afterRemoveLocked(wasCurrent)
	return removed, nil
}

// DuplicateSelected inserts a copy of the selected item after it.
func (c *Controller) DuplicateSelected() (core.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return core.Item{}, tqerrors.ErrLocked
	}
	dup, err := c.queue.DuplicateSelected(c.now())
	if err != nil {
		return core.Item{}, err
	}
	c.emit(events.Event{Type: events.EventAdded, Item: itemCopy(&dup), Index: c.queue.IndexOf(dup.Token)})
	return dup, nil
}

// Dedupe removes repeated video ids and returns how many were removed.
func (c *Controller) Dedupe() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return 0, tqerrors.ErrLocked
	}
	n := c.queue.Dedupe()
	c.emit(events.Event{Type: events.EventDeduped, Count: n, Message: DedupeNotice(n)})
	return n, nil
}

// Sort reorders the queue by key, descending.
func (c *Controller) Sort(key core.SortKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return tqerrors.ErrLocked
	}
	if err := c.queue.Sort(key); err != nil {
		return err
	}
	c.emit(events.Event{Type: events.EventSorted, Message: string(key)})
	return nil
}

// ShuffleQueue randomly reorders the whole queue once.
func (c *Controller) ShuffleQueue() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return tqerrors.ErrLocked
	}
	c.queue.Shuffle(c.rng)
	c.emit(events.Event{Type: events.EventShuffled, Count: c.queue.Len()})
	return nil
}

// Move relocates the item at from to position to.
func (c *Controller) Move(from, to int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return tqerrors.ErrLocked
	}
	return c.queue.Move(from, to)
}

// Clear empties the queue and stops playback.
func (c *Controller) Clear(ctx context.Context) error {
	return c.act(ctx, func() error {
		if c.locked {
			return tqerrors.ErrLocked
		}
		n := c.queue.Len()
		c.queue.Clear()
		c.emit(events.Event{Type: events.EventCleared, Count: n})
		c.queueOp(c.player.Stop)
		return nil
	})
}

// EditAt replaces the title and author of the item at i.
func (c *Controller) EditAt(i int, title, author string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return tqerrors.ErrLocked
	}
	return c.queue.EditAt(i, title, author)
}

// EditCurrent replaces the title and author of the current item.
func (c *Controller) EditCurrent(title, author string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return tqerrors.ErrLocked
	}
	if c.queue.CurrentIndex() == core.NoIndex {
		return tqerrors.ErrNoSelection
	}
	return c.queue.EditCurrent(title, author)
}

// Load replaces the queue with items without starting playback. It is
// used to restore a saved queue at startup.
func (c *Controller) Load(items []core.Item) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Replace(items)
}

// Import replaces the queue with the playlist read from r and starts
// playing the first item. A malformed payload leaves the queue untouched.
func (c *Controller) Import(ctx context.Context, r io.Reader) (int, error) {
	items, err := playlistfile.Decode(r)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	if c.locked {
		c.mu.Unlock()
		return 0, tqerrors.ErrLocked
	}
	n := c.queue.Replace(items)
	c.emit(events.Event{Type: events.EventImported, Count: n})
	if n > 0 && c.autoplay {
		if err := c.playLocked(0); err != nil {
			c.logger.Warn("autoplay after import failed", "err", err)
		}
	} else {
		c.stopLocked()
	}
	c.settle(ctx, "player update after import failed")
	return n, nil
}

// Export writes the queue to w in the playlist file format.
func (c *Controller) Export(w io.Writer) (int, error) {
	c.mu.Lock()
	items := c.queue.Items()
	c.mu.Unlock()

	if err := playlistfile.Encode(w, items); err != nil {
		return 0, err
	}
	c.mu.Lock()
	c.emit(events.Event{Type: events.EventExported, Count: len(items)})
	c.mu.Unlock()
	return len(items), nil
}

// Items returns a copy of the queue contents.
func (c *Controller) Items() []core.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Items()
}
