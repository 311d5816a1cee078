package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/tessro/tubeq/internal/core"
	tqerrors "github.com/tessro/tubeq/internal/errors"
	"github.com/tessro/tubeq/internal/events"
)

// PlayIndex moves the playback cursor to i, counts a play and loads the
// item into the player.
func (c *Controller) PlayIndex(ctx context.Context, i int) error {
	return c.act(ctx, func() error {
		if c.locked {
			return tqerrors.ErrLocked
		}
		return c.playLocked(i)
	})
}

func (c *Controller) playLocked(i int) error {
	if err := c.queue.SetCurrent(i); err != nil {
		return err
	}
	c.loadCurrentLocked()
	return nil
}

// loadCurrentLocked queues a load of the current item without counting a
// play.
func (c *Controller) loadCurrentLocked() {
	it := c.queue.Current()
	if it == nil {
		return
	}
	id := it.ID
	c.emit(events.Event{Type: events.EventPlay, Item: itemCopy(it), Index: c.queue.CurrentIndex()})
	c.queueOp(func(ctx context.Context) error {
		if err := c.player.Load(ctx, id); err != nil {
			c.logger.Warn("player load failed", "id", id, "err", err)
			return fmt.Errorf("load %s: %w", id, err)
		}
		return nil
	})
}

func (c *Controller) stopLocked() {
	c.emit(events.Event{Type: events.EventStop, Index: c.queue.CurrentIndex()})
	c.queueOp(c.player.Stop)
}

// Next advances according to the loop and shuffle modes. At the end of
// the queue playback stops and the cursor stays put.
func (c *Controller) Next(ctx context.Context) error {
	return c.act(ctx, func() error {
		if c.locked {
			return tqerrors.ErrLocked
		}
		return c.nextLocked()
	})
}

func (c *Controller) nextLocked() error {
	if c.queue.IsEmpty() {
		return nil
	}
	i, ok := core.NextIndex(c.queue, c.mode, c.rng)
	if !ok {
		c.stopLocked()
		return nil
	}
	return c.playLocked(i)
}

// OnEnded reacts to the player finishing the current item. It runs even
// while controls are locked.
func (c *Controller) OnEnded(ctx context.Context) error {
	return c.act(ctx, func() error {
		c.emit(events.Event{Type: events.EventEnded, Item: itemCopy(c.queue.Current()), Index: c.queue.CurrentIndex()})
		return c.nextLocked()
	})
}

// Prev moves back one item, or restarts the current item at the start of
// the queue.
func (c *Controller) Prev(ctx context.Context) error {
	return c.act(ctx, func() error {
		if c.locked {
			return tqerrors.ErrLocked
		}
		if c.queue.IsEmpty() {
			return nil
		}
		if i, ok := core.PrevIndex(c.queue); ok {
			return c.playLocked(i)
		}
		if c.queue.CurrentIndex() == core.NoIndex {
			return c.playLocked(0)
		}
		c.queueOp(func(ctx context.Context) error {
			return c.player.Seek(ctx, 0)
		})
		return nil
	})
}

// First plays the first item.
func (c *Controller) First(ctx context.Context) error {
	return c.act(ctx, func() error {
		if c.locked {
			return tqerrors.ErrLocked
		}
		if i, ok := core.FirstIndex(c.queue); ok {
			return c.playLocked(i)
		}
		return nil
	})
}

// Last plays the last item.
func (c *Controller) Last(ctx context.Context) error {
	return c.act(ctx, func() error {
		if c.locked {
			return tqerrors.ErrLocked
		}
		if i, ok := core.LastIndex(c.queue); ok {
			return c.playLocked(i)
		}
		return nil
	})
}

// Jump plays the item delta positions from the cursor. Out-of-range jumps
// are ignored.
func (c *Controller) Jump(ctx context.Context, delta int) error {
	return c.act(ctx, func() error {
		if c.locked {
			return tqerrors.ErrLocked
		}
		if i, ok := core.JumpTarget(c.queue, delta); ok {
			return c.playLocked(i)
		}
		return nil
	})
}

// TogglePause pauses while playing and resumes otherwise. With nothing
// loaded it starts the first item.
func (c *Controller) TogglePause(ctx context.Context) error {
	return c.act(ctx, func() error {
		if c.locked {
			return tqerrors.ErrLocked
		}
		if c.queue.CurrentIndex() == core.NoIndex {
			if c.queue.IsEmpty() {
				return nil
			}
			return c.playLocked(0)
		}
		it := itemCopy(c.queue.Current())
		c.queueOp(func(ctx context.Context) error {
			return c.togglePlayer(ctx, it)
		})
		return nil
	})
}

// togglePlayer runs with c.io held, so the state it reads is not raced
// by other player calls.
func (c *Controller) togglePlayer(ctx context.Context, it *core.Item) error {
	state, err := c.player.State(ctx)
	if err != nil {
		return err
	}
	typ, toggle := events.EventResume, c.player.Play
	if state == core.StatePlaying {
		typ, toggle = events.EventPause, c.player.Pause
	}

	c.mu.Lock()
	c.emit(events.Event{Type: typ, Item: it})
	c.mu.Unlock()
	return toggle(ctx)
}

// Stop stops playback. The cursor is kept.
func (c *Controller) Stop(ctx context.Context) error {
	return c.act(ctx, func() error {
		if c.locked {
			return tqerrors.ErrLocked
		}
		c.stopLocked()
		return nil
	})
}

// Seek moves the playback position by steps seek steps, clamped at zero.
func (c *Controller) Seek(ctx context.Context, steps int) error {
	d := time.Duration(steps) * c.seekStep
	return c.act(ctx, func() error {
		if c.locked {
			return tqerrors.ErrLocked
		}
		if c.queue.CurrentIndex() == core.NoIndex {
			return nil
		}
		c.queueOp(func(ctx context.Context) error {
			pos, err := c.player.Position(ctx)
			if err != nil {
				return err
			}
			return c.player.Seek(ctx, max(pos+d, 0))
		})
		return nil
	})
}

// SeekStep returns the configured seek step.
func (c *Controller) SeekStep() time.Duration {
	return c.seekStep
}
