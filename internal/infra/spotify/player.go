package spotify

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/zmb3/spotify/v2"
)

// Player drives a Spotify Connect device. It implements the playback engine:
// Load only remembers the URI, the next Play starts it.
type Player struct {
	client   *spotify.Client
	deviceID *spotify.ID

	mu      sync.Mutex
	pending spotify.URI
	// paused is set once the device has been paused by this player. The Web API
	// rejects pausing a device that is already paused.
	paused bool
}

// NewPlayer returns a player bound to deviceID, or to the user's active device
// when deviceID is empty.
func NewPlayer(c *Client, deviceID string) *Player {
	p := &Player{client: c.client}
	if deviceID != "" {
		id := spotify.ID(deviceID)
		p.deviceID = &id
	}
	return p
}

// Load sets the URI started by the next Play.
func (p *Player) Load(ctx context.Context, uri string) error {
	if uri == "" {
		return errors.New("media URI is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = spotify.URI(uri)
	return nil
}

// Play starts the loaded URI from the beginning, or resumes the current one
// when nothing new was loaded.
func (p *Player) Play(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	opt := &spotify.PlayOptions{DeviceID: p.deviceID}
	if p.pending != "" {
		opt.URIs = []spotify.URI{p.pending}
	}

	if err := p.client.PlayOpt(ctx, opt); err != nil {
		return errors.Wrap(err, "failed to start playback")
	}

	p.paused = false
	if p.pending != "" {
		zlog.Debug().Msgf("spotify: playing %s", p.pending)
		p.pending = ""
	}
	return nil
}

// Pause pauses playback.
func (p *Player) Pause(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.client.PauseOpt(ctx, &spotify.PlayOptions{DeviceID: p.deviceID}); err != nil {
		return errors.Wrap(err, "failed to pause playback")
	}
	p.paused = true
	return nil
}

// Stop pauses playback, unless already paused, and rewinds to the start.
// Spotify Connect has no stop.
func (p *Player) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	opt := &spotify.PlayOptions{DeviceID: p.deviceID}
	if !p.paused {
		if err := p.client.PauseOpt(ctx, opt); err != nil {
			return errors.Wrap(err, "failed to stop playback")
		}
		p.paused = true
	}
	if err := p.client.SeekOpt(ctx, 0, opt); err != nil {
		return errors.Wrap(err, "failed to rewind playback")
	}
	return nil
}
