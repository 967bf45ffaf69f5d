package assistant

import (
	"context"
	"time"

	"github.com/osa030/lyra/internal/domain/track"
	"github.com/osa030/lyra/internal/infra/wikipedia"
)

// Player is the playback state machine. *playback.Controller implements it.
type Player interface {
	Play(ctx context.Context, query string) (*track.Track, error)
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Stop(ctx context.Context) error
	Restart(ctx context.Context, query string) (*track.Track, error)
}

// Encyclopedia summarizes a topic.
type Encyclopedia interface {
	Summarize(ctx context.Context, topic string, maxSentences int) wikipedia.Summary
}

// Weather reports the current temperature of a city.
// Implementations return openweather.ErrCityNotFound for unknown cities.
type Weather interface {
	CurrentCelsius(ctx context.Context, city string) (float64, error)
}

// Places extracts a place name from an utterance.
type Places interface {
	ExtractPlace(text string) (string, bool)
}

// Jokes provides jokes.
type Jokes interface {
	Joke(ctx context.Context) (string, error)
}

// Speaker vocalizes responses.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Clock returns the current time.
type Clock func() time.Time
