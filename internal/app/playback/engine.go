package playback

import (
	"context"
	"fmt"

	"github.com/osa030/lyra/internal/domain/track"
)

// Engine is the single logical media-playback device.
type Engine interface {
	// Load prepares the media at uri; it does not start playback.
	Load(ctx context.Context, uri string) error
	// Play starts the loaded media, or continues it after Pause.
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Resolver resolves a free-text song name to a playable track.
// Implementations return track.ErrNotFound when the query matches nothing.
type Resolver interface {
	ResolveTrack(ctx context.Context, query string) (*track.Track, error)
}

// EngineError reports a failed engine command.
type EngineError struct {
	Op  string // "load", "play", "pause" or "stop"
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("playback engine %s failed: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}
