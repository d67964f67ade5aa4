// package playback implements the playback controller: foreground single-track play and background
// playlist traversals with cooperative cancellation.
package playback

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/fishstation/internal/models"
	"github.com/desertthunder/fishstation/internal/shared"
)

// Surface is the playback half of a music source.
type Surface interface {
	Play(ctx context.Context, url string) (bool, error)
	GoHome(ctx context.Context) error
}

// State of the [Controller]
type State int

const (
	Idle State = iota
	PlayingSingle
	PlayingPlaylist
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PlayingSingle:
		return "playing_single"
	case PlayingPlaylist:
		return "playing_playlist"
	case Stopped:
		return "stopped"
	default:
		return ""
	}
}

// Mode selects the traversal order of a playlist.
type Mode int

const (
	Sequential Mode = iota
	Shuffled
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ShuffleFunc returns a permutation of [0, n).
type ShuffleFunc func(n int) []int

// Option configures a [Controller].
type Option func(*Controller)

// WithSleep replaces the timer used to wait out a track's duration.
func WithSleep(f SleepFunc) Option {
	return func(c *Controller) { c.sleep = f }
}

// WithShuffle replaces the permutation source for [Shuffled] traversals.
func WithShuffle(f ShuffleFunc) Option {
	return func(c *Controller) { c.shuffle = f }
}

// WithEventBuffer sets the capacity of the event channel.
func WithEventBuffer(n int) Option {
	return func(c *Controller) { c.events = make(chan Event, n) }
}

// traversal is the handle of one background playlist run.
type traversal struct {
	cont atomic.Bool
	done chan struct{}
}

// Controller drives a [Surface]. At most one playlist traversal exists at a time, and a stopped
// traversal keeps that slot until its goroutine returns after the track in progress.
//
// Every call on the surface goes through surfaceMu, so foreground and background playback never overlap.
type Controller struct {
	surface Surface
	logger  *log.Logger
	sleep   SleepFunc
	shuffle ShuffleFunc
	events  chan Event

	mu    sync.Mutex // guards state and run
	state State
	run   *traversal

	surfaceMu sync.Mutex
}

// New creates an idle Controller for surface.
func New(surface Surface, logger *log.Logger, opts ...Option) *Controller {
	c := &Controller{
		surface: surface,
		logger:  shared.WithLogger(logger, "component", "playback"),
		sleep:   sleepContext,
		shuffle: rand.Perm,
		events:  make(chan Event, 16),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Events returns the traversal event stream.
func (c *Controller) Events() <-chan Event {
	return c.events
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Active reports whether a traversal goroutine is still running, stopped or not.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.run != nil
}

// PlayTrack plays t in the foreground, blocking for its duration when playback starts.
// A started track is announced on the event stream with position -1.
//
// It returns whether playback started. A cancelled ctx during the wait is treated as [Controller.Stop].
func (c *Controller) PlayTrack(ctx context.Context, t models.Track) (bool, error) {
	c.mu.Lock()
	if c.run != nil {
		c.mu.Unlock()
		return false, shared.ErrTraversalActive
	}
	c.state = PlayingSingle
	c.mu.Unlock()

	ok, err := c.play(ctx, t.TrueURL)
	if err != nil || !ok {
		c.setState(PlayingSingle, Idle)
		return false, err
	}

	c.logger.Info("playing track", "track", t.Label(), "duration", t.Duration)
	c.sendEvent(trackStartedEvent(-1, t))
	if err := c.sleep(ctx, seconds(t.Duration)); err != nil {
		c.logger.Info("foreground playback interrupted", "track", t.Label())
		return true, c.Stop(context.WithoutCancel(ctx))
	}

	c.setState(PlayingSingle, Idle)
	return true, nil
}

// PlayPlaylist starts a background traversal of tracks and returns without waiting for it.
//
// onTrack, if set, is called with each track and its position in tracks before it is played.
// A second traversal is rejected with [shared.ErrTraversalActive] while one exists.
func (c *Controller) PlayPlaylist(ctx context.Context, tracks []models.Track, mode Mode, onTrack func(pos int, t models.Track)) error {
	if len(tracks) == 0 {
		return fmt.Errorf("%w: playlist has no tracks", shared.ErrInvalidInput)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.run != nil {
		return shared.ErrTraversalActive
	}

	order := make([]int, len(tracks))
	for i := range order {
		order[i] = i
	}
	if mode == Shuffled {
		order = c.shuffle(len(tracks))
	}

	run := &traversal{done: make(chan struct{})}
	run.cont.Store(true)
	c.run = run
	c.state = PlayingPlaylist

	queue := append([]models.Track(nil), tracks...)
	go c.traverse(ctx, run, queue, order, onTrack)

	c.logger.Info("playlist traversal started", "tracks", len(tracks), "shuffled", mode == Shuffled)
	return nil
}

// Stop clears the continue signal of any traversal and returns the surface to the home page.
//
// A track already playing is not interrupted; the traversal ends at its next track boundary.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	active := c.run != nil || c.state == PlayingSingle || c.state == PlayingPlaylist
	if c.run != nil {
		c.run.cont.Store(false)
	}
	c.state = Stopped
	c.mu.Unlock()

	if !active {
		return nil
	}

	c.surfaceMu.Lock()
	defer c.surfaceMu.Unlock()
	return c.surface.GoHome(ctx)
}

// Wait blocks until the current traversal, if any, has returned.
func (c *Controller) Wait() {
	c.mu.Lock()
	run := c.run
	c.mu.Unlock()

	if run != nil {
		<-run.done
	}
}

func (c *Controller) traverse(ctx context.Context, run *traversal, tracks []models.Track, order []int, onTrack func(int, models.Track)) {
	defer close(run.done)
	defer c.finish(run)

	for step, pos := range order {
		if !run.cont.Load() {
			c.sendEvent(traversalStoppedEvent(step, len(order)))
			return
		}

		t := tracks[pos]
		if onTrack != nil {
			onTrack(pos, t)
		}

		ok, err := c.play(ctx, t.TrueURL)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("track failed", "track", t.Label(), "err", err)
			c.sendEvent(trackFailedEvent(pos, t, err))
			continue
		case !ok:
			c.sendEvent(trackRefusedEvent(pos, t))
			continue
		}

		c.sendEvent(trackStartedEvent(pos, t))
		if err := c.sleep(ctx, seconds(t.Duration)); err != nil {
			c.logger.Debug("traversal context done", "err", err)
			return
		}
	}

	c.sendEvent(traversalDoneEvent(len(order)))
}

// finish releases the traversal slot held by run.
func (c *Controller) finish(run *traversal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.run != run {
		return
	}
	c.run = nil
	if c.state == PlayingPlaylist {
		c.state = Idle
	}
}

func (c *Controller) play(ctx context.Context, url string) (bool, error) {
	c.surfaceMu.Lock()
	defer c.surfaceMu.Unlock()
	return c.surface.Play(ctx, url)
}

// setState moves to next only if the controller is still in from.
func (c *Controller) setState(from, next State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == from {
		c.state = next
	}
}

// sendEvent sends an event through the channel without blocking.
func (c *Controller) sendEvent(e Event) {
	select {
	case c.events <- e:
	default:
		c.logger.Debug("dropped playback event", "kind", e.Kind)
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
