package playback

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/lyra/internal/domain/track"
)

// ErrInvalidTransition marks every error returned for a command that is illegal in the
// current state. No engine call is made in that case.
var ErrInvalidTransition = errors.New("invalid playback transition")

// Errors
var (
	ErrNotPlaying = errors.Mark(errors.New("not playing"), ErrInvalidTransition)
	ErrNotPaused  = errors.Mark(errors.New("not paused"), ErrInvalidTransition)
	ErrIdle       = errors.Mark(errors.New("nothing loaded"), ErrInvalidTransition)
	ErrClosed     = errors.New("playback controller closed")
)

// Controller owns the single playback state and the engine it describes.
//
// Every command runs as one critical section: the state read, the resolver and engine
// calls that depend on it, and the state write. Waiting for the critical section honours
// ctx. Snapshot never observes a half-applied transition.
type Controller struct {
	// sem is held for the whole duration of a command.
	sem chan struct{}

	// mu guards the fields below for readers that do not hold sem.
	mu      sync.RWMutex
	state   State
	current *track.Track
	closed  bool

	engine   Engine
	resolver Resolver

	eventCh chan Event
}

// NewController creates a new playback controller in the idle state.
func NewController(engine Engine, resolver Resolver) *Controller {
	return &Controller{
		sem:      make(chan struct{}, 1),
		state:    StateIdle,
		engine:   engine,
		resolver: resolver,
		eventCh:  make(chan Event, 10),
	}
}

// Events returns the event channel. It is closed by Close.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// Snapshot returns the current state and track.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{State: c.state, Track: c.current}
}

// Play resolves query and plays the result, replacing whatever is loaded.
// Legal from any state; no explicit stop is issued for the previous track.
func (c *Controller) Play(ctx context.Context, query string) (*track.Track, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	return c.playLocked(ctx, query)
}

// Pause pauses the playing track.
func (c *Controller) Pause(ctx context.Context) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()

	if c.state != StatePlaying {
		return ErrNotPlaying
	}

	if err := c.engine.Pause(ctx); err != nil {
		return &EngineError{Op: "pause", Err: err}
	}

	c.commitLocked(StatePaused, c.current, EventStateChanged)
	return nil
}

// Resume resumes the paused track.
func (c *Controller) Resume(ctx context.Context) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()

	if c.state != StatePaused {
		return ErrNotPaused
	}

	if err := c.engine.Play(ctx); err != nil {
		return &EngineError{Op: "play", Err: err}
	}

	c.commitLocked(StatePlaying, c.current, EventStateChanged)
	return nil
}

// Stop stops playback and returns to idle.
func (c *Controller) Stop(ctx context.Context) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()

	if !c.state.IsActive() {
		return ErrIdle
	}

	return c.stopLocked(ctx)
}

// Restart stops the loaded track, if any, then resolves query and plays the result.
func (c *Controller) Restart(ctx context.Context, query string) (*track.Track, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	if c.state.IsActive() {
		if err := c.stopLocked(ctx); err != nil {
			return nil, err
		}
	}

	return c.playLocked(ctx, query)
}

// Close closes the event channel. Commands issued afterwards fail with ErrClosed.
func (c *Controller) Close() {
	c.sem <- struct{}{}
	defer c.release()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.eventCh)
}

// acquire enters the critical section.
func (c *Controller) acquire(ctx context.Context) error {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for playback device")
	}

	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		c.release()
		return ErrClosed
	}
	return nil
}

func (c *Controller) release() {
	<-c.sem
}

// playLocked resolves query, loads and plays it.
// Must be called inside the critical section.
func (c *Controller) playLocked(ctx context.Context, query string) (*track.Track, error) {
	t, err := c.resolver.ResolveTrack(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %q", query)
	}
	if t == nil {
		return nil, errors.Wrapf(track.ErrNotFound, "failed to resolve %q", query)
	}

	if err := c.engine.Load(ctx, t.URI); err != nil {
		return nil, &EngineError{Op: "load", Err: err}
	}

	if err := c.engine.Play(ctx); err != nil {
		// The previous track is no longer loaded in the engine.
		if c.state.IsActive() {
			c.commitLocked(StateIdle, nil, EventStopped)
		}
		return nil, &EngineError{Op: "play", Err: err}
	}

	zlog.Debug().Msgf("playback: playing track=%q uri=%s", t.Title(), t.URI)
	c.commitLocked(StatePlaying, t, EventTrackStarted)
	return t, nil
}

// stopLocked stops the engine and commits the idle state.
// Must be called inside the critical section.
func (c *Controller) stopLocked(ctx context.Context) error {
	if err := c.engine.Stop(ctx); err != nil {
		return &EngineError{Op: "stop", Err: err}
	}
	c.commitLocked(StateIdle, nil, EventStopped)
	return nil
}

// commitLocked applies a transition and emits its event.
// Must be called inside the critical section.
func (c *Controller) commitLocked(state State, t *track.Track, eventType EventType) {
	c.mu.Lock()
	c.state = state
	c.current = t
	c.mu.Unlock()

	select {
	case c.eventCh <- Event{Type: eventType, Track: t, State: state}:
	default:
		// Channel full, drop event
	}
}
