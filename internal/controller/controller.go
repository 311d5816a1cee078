// Package controller owns the queue and drives the player. Every user
// action on the queue or playback goes through a Controller, which keeps
// the two cursors consistent and reports state changes as events.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/tessro/tubeq/internal/core"
	tqerrors "github.com/tessro/tubeq/internal/errors"
	"github.com/tessro/tubeq/internal/events"
)

// DefaultSeekStep is the relative seek distance.
const DefaultSeekStep = 2 * time.Second

// Options configures a Controller.
type Options struct {
	Capacity int
	SeekStep time.Duration
	Mode     core.Mode
	Sink     events.Sink
	Logger   *slog.Logger
	// DisableAutoplay keeps adds and imports from starting playback.
	DisableAutoplay bool
	// Now and Rand are overridable for tests.
	Now  func() time.Time
	Rand *rand.Rand
}

// Controller is the single owner of queue and playback state. It is safe
// for concurrent use; lookups and player calls never run while its lock
// is held.
type Controller struct {
	mu sync.Mutex
	// ops holds player calls queued under mu. unlock runs them.
	ops    []playerOp
	issued uint64
	// io serializes player calls; applied is guarded by it.
	io      sync.Mutex
	applied uint64

	queue    *core.Queue
	player   core.Player
	lookup   core.Lookup
	mode     core.Mode
	locked   bool
	autoplay bool
	seekStep time.Duration
	sink     events.Sink
	logger   *slog.Logger
	now      func() time.Time
	rng      *rand.Rand
}

// New creates a controller over player and lookup. lookup may be nil, in
// which case added items keep the metadata they were given.
func New(player core.Player, lookup core.Lookup, opts Options) *Controller {
	c := &Controller{
		queue:    core.NewQueue(opts.Capacity),
		player:   player,
		lookup:   lookup,
		mode:     opts.Mode,
		autoplay: !opts.DisableAutoplay,
		seekStep: opts.SeekStep,
		sink:     opts.Sink,
		logger:   opts.Logger,
		now:      opts.Now,
		rng:      opts.Rand,
	}
	if c.seekStep <= 0 {
		c.seekStep = DefaultSeekStep
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Snapshot is an immutable view of controller state for rendering.
type Snapshot struct {
	Items    []core.Item
	Current  int
	Selected int
	Mode     core.Mode
	Locked   bool
	Capacity int
	State    core.PlayerState
}

// CurrentItem returns the item under the playback cursor, or nil.
func (s Snapshot) CurrentItem() *core.Item {
	if s.Current < 0 || s.Current >= len(s.Items) {
		return nil
	}
	return &s.Items[s.Current]
}

// Snapshot copies the current state. It does not wait for player calls
// in flight.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	snap := Snapshot{
		Items:    c.queue.Items(),
		Current:  c.queue.CurrentIndex(),
		Selected: c.queue.SelectedIndex(),
		Mode:     c.mode,
		Locked:   c.locked,
		Capacity: c.queue.Capacity(),
	}
	c.mu.Unlock()

	state, err := c.player.State(context.Background())
	if err != nil {
		state = core.StateUnstarted
	}
	snap.State = state
	return snap
}

type playerOp func(ctx context.Context) error

// queueOp defers a player call until mu is released. Callers hold c.mu.
func (c *Controller) queueOp(op playerOp) {
	c.ops = append(c.ops, op)
}

// unlock releases c.mu and runs the player calls queued while it was
// held. A batch is dropped when a newer one already reached the player,
// so the player ends up following the latest queue state.
func (c *Controller) unlock(ctx context.Context) error {
	ops := c.ops
	c.ops = nil
	var gen uint64
	if len(ops) > 0 {
		c.issued++
		gen = c.issued
	}
	c.mu.Unlock()
	if len(ops) == 0 {
		return nil
	}

	c.io.Lock()
	defer c.io.Unlock()
	if gen < c.applied {
		c.logger.Debug("dropping stale player calls", "gen", gen, "applied", c.applied)
		return nil
	}
	c.applied = gen

	var errs []error
	for _, op := range ops {
		if err := op(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// act runs fn under c.mu and then the player calls it queued.
func (c *Controller) act(ctx context.Context, fn func() error) error {
	c.mu.Lock()
	err := fn()
	if perr := c.unlock(ctx); err == nil {
		err = perr
	}
	return err
}

// settle is unlock for callers whose result does not depend on the player.
func (c *Controller) settle(ctx context.Context, msg string) {
	if err := c.unlock(ctx); err != nil {
		c.logger.Warn(msg, "err", err)
	}
}

// Locked reports whether controls are locked.
func (c *Controller) Locked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked
}

// ToggleLock flips the control lock and returns the new state.
func (c *Controller) ToggleLock() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locked = !c.locked
	if c.locked {
		c.emit(events.Event{Type: events.EventLocked})
	} else {
		c.emit(events.Event{Type: events.EventUnlocked})
	}
	return c.locked
}

// ToggleLoop flips loop mode.
func (c *Controller) ToggleLoop() (core.Mode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return c.mode, tqerrors.ErrLocked
	}
	c.mode.Loop = !c.mode.Loop
	c.emit(events.Event{Type: events.EventModeChanged, Mode: c.mode})
	return c.mode, nil
}

// ToggleShuffle flips shuffle mode.
func (c *Controller) ToggleShuffle() (core.Mode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return c.mode, tqerrors.ErrLocked
	}
	c.mode.Shuffle = !c.mode.Shuffle
	c.emit(events.Event{Type: events.EventModeChanged, Mode: c.mode})
	return c.mode, nil
}

// emit stamps and forwards e. Callers hold c.mu.
func (c *Controller) emit(e events.Event) {
	if c.sink == nil {
		return
	}
	e.Timestamp = c.now()
	c.sink(e)
}

// notice emits a user-facing message.
func (c *Controller) notice(msg string) {
	c.emit(events.Event{Type: events.EventNotice, Message: msg})
}

func itemCopy(it *core.Item) *core.Item {
	if it == nil {
		return nil
	}
	cp := *it
	return &cp
}
