package playback

import (
	"context"
	"net/url"
	"strings"
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/lyra/internal/domain/track"
)

// LogEngine is an Engine that only records and logs the commands it receives.
// It is used when no real playback device is configured.
type LogEngine struct {
	mu       sync.Mutex
	commands []string
	loaded   string
}

// NewLogEngine creates a new LogEngine.
func NewLogEngine() *LogEngine {
	return &LogEngine{}
}

func (e *LogEngine) Load(ctx context.Context, uri string) error {
	e.record("load " + uri)
	e.mu.Lock()
	e.loaded = uri
	e.mu.Unlock()
	return nil
}

func (e *LogEngine) Play(ctx context.Context) error {
	e.record("play")
	return nil
}

func (e *LogEngine) Pause(ctx context.Context) error {
	e.record("pause")
	return nil
}

func (e *LogEngine) Stop(ctx context.Context) error {
	e.record("stop")
	return nil
}

// Commands returns a copy of the commands received so far.
func (e *LogEngine) Commands() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := make([]string, len(e.commands))
	copy(result, e.commands)
	return result
}

// Loaded returns the URI of the last loaded media.
func (e *LogEngine) Loaded() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

func (e *LogEngine) record(cmd string) {
	e.mu.Lock()
	e.commands = append(e.commands, cmd)
	e.mu.Unlock()
	zlog.Info().Msgf("engine: %s", cmd)
}

// EchoResolver resolves every query to a track named after it. It pairs with
// LogEngine for local runs without a media provider.
type EchoResolver struct{}

func (EchoResolver) ResolveTrack(ctx context.Context, query string) (*track.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, track.ErrNotFound
	}
	return &track.Track{ID: query, Name: query, URI: "echo:" + url.PathEscape(query)}, nil
}
