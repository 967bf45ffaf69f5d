// Package assistant routes classified utterances to their handlers and turns
// every outcome into a response text.
package assistant

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/osa030/lyra/internal/app/classifier"
	"github.com/osa030/lyra/internal/app/playback"
	"github.com/osa030/lyra/internal/domain/intent"
	"github.com/osa030/lyra/internal/domain/track"
	"github.com/osa030/lyra/internal/infra/config"
	"github.com/osa030/lyra/internal/infra/openweather"
	"github.com/osa030/lyra/internal/infra/wikipedia"
)

// Errors
var (
	ErrMissingMedia         = errors.New("no song name given")
	ErrEntityNotFound       = errors.New("no entity found in utterance")
	ErrWeatherNotConfigured = errors.New("weather provider not configured")
)

// handlerFunc handles one intent. text is the raw utterance.
type handlerFunc func(ctx context.Context, text string) Result

// Deps are the collaborators of a Dispatcher. Weather may be nil when no
// provider is configured; Clock defaults to time.Now.
type Deps struct {
	Classifier   classifier.Classifier
	Player       Player
	Encyclopedia Encyclopedia
	Weather      Weather
	Places       Places
	Jokes        Jokes
	Clock        Clock
}

// Dispatcher classifies an utterance and runs the handler of its intent.
type Dispatcher struct {
	deps         Deps
	messages     config.MessagesConfig
	timeout      time.Duration
	maxSentences int

	handlers map[intent.Label]handlerFunc
}

// NewDispatcher creates a dispatcher. It fails when a collaborator is missing
// or an intent has no handler.
func NewDispatcher(cfg *config.Config, deps Deps) (*Dispatcher, error) {
	switch {
	case deps.Classifier == nil:
		return nil, errors.New("classifier is required")
	case deps.Player == nil:
		return nil, errors.New("player is required")
	case deps.Encyclopedia == nil:
		return nil, errors.New("encyclopedia is required")
	case deps.Places == nil:
		return nil, errors.New("place extractor is required")
	case deps.Jokes == nil:
		return nil, errors.New("joke provider is required")
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	d := &Dispatcher{
		deps:         deps,
		messages:     cfg.Messages,
		timeout:      cfg.Timeout(),
		maxSentences: cfg.Wikipedia.MaxSentences,
	}
	d.handlers = map[intent.Label]handlerFunc{
		intent.Play:       d.handlePlay,
		intent.Pause:      d.handlePause,
		intent.Resume:     d.handleResume,
		intent.Stop:       d.handleStop,
		intent.Restart:    d.handleRestart,
		intent.FetchInfo:  d.handleFetchInfo,
		intent.TellJoke:   d.handleTellJoke,
		intent.GetTime:    d.handleGetTime,
		intent.GetWeather: d.handleGetWeather,
		intent.ThankYou:   d.say(cfg.Messages.ThankYou),
		intent.ShutDown:   d.say(cfg.Messages.Goodbye),
		intent.Unknown:    d.say(cfg.Messages.NotUnderstood),
	}

	for _, l := range intent.All() {
		if _, ok := d.handlers[l]; !ok {
			return nil, errors.Newf("no handler for intent %s", l)
		}
	}

	return d, nil
}

// Dispatch classifies text and handles it. It never fails: every error is
// converted into a response text.
func (d *Dispatcher) Dispatch(ctx context.Context, text string) Result {
	log := zerolog.Ctx(ctx)

	classifyCtx, cancel := d.withTimeout(ctx)
	label := d.deps.Classifier.Classify(classifyCtx, text)
	cancel()

	handler, ok := d.handlers[label]
	if !ok {
		// Classifier returned a label outside the closed set.
		label = intent.Unknown
		handler = d.handlers[intent.Unknown]
	}

	res := handler(ctx, text)
	res.Intent = label

	switch res.Kind {
	case KindFailed:
		log.Warn().Err(res.Err).Msgf("dispatch: intent=%s kind=%s text=%q", label, res.Kind, res.Text)
	default:
		log.Info().Msgf("dispatch: intent=%s kind=%s text=%q", label, res.Kind, res.Text)
	}
	return res
}

func (d *Dispatcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.timeout)
}

func (d *Dispatcher) say(text string) handlerFunc {
	return func(context.Context, string) Result {
		return spoken(text)
	}
}

// Playback handlers

func (d *Dispatcher) handlePlay(ctx context.Context, text string) Result {
	name := stripPrefix(text, classifier.Verbs(intent.Play)...)
	if name == "" {
		return failed(d.messages.MissingSong, ErrMissingMedia)
	}

	callCtx, cancel := d.withTimeout(ctx)
	defer cancel()

	if _, err := d.deps.Player.Play(callCtx, name); err != nil {
		return d.playbackFailure(err)
	}
	return spoken(fmt.Sprintf(d.messages.PlayingFormat, name))
}

func (d *Dispatcher) handlePause(ctx context.Context, _ string) Result {
	callCtx, cancel := d.withTimeout(ctx)
	defer cancel()

	if err := d.deps.Player.Pause(callCtx); err != nil {
		if errors.Is(err, playback.ErrInvalidTransition) {
			return ignored(d.messages.NothingToPause, err)
		}
		return d.playbackFailure(err)
	}
	return spoken(d.messages.Pausing)
}

func (d *Dispatcher) handleResume(ctx context.Context, _ string) Result {
	callCtx, cancel := d.withTimeout(ctx)
	defer cancel()

	if err := d.deps.Player.Resume(callCtx); err != nil {
		if errors.Is(err, playback.ErrInvalidTransition) {
			return ignored(d.messages.NothingToResume, err)
		}
		return d.playbackFailure(err)
	}
	return spoken(d.messages.Resuming)
}

func (d *Dispatcher) handleStop(ctx context.Context, _ string) Result {
	callCtx, cancel := d.withTimeout(ctx)
	defer cancel()

	if err := d.deps.Player.Stop(callCtx); err != nil {
		if errors.Is(err, playback.ErrInvalidTransition) {
			return ignored(d.messages.NothingToStop, err)
		}
		return d.playbackFailure(err)
	}
	return spoken(d.messages.Stopping)
}

func (d *Dispatcher) handleRestart(ctx context.Context, text string) Result {
	name := stripPrefix(text, classifier.Verbs(intent.Restart)...)
	if name == "" {
		return failed(d.messages.MissingSong, ErrMissingMedia)
	}

	callCtx, cancel := d.withTimeout(ctx)
	defer cancel()

	if _, err := d.deps.Player.Restart(callCtx, name); err != nil {
		return d.playbackFailure(err)
	}
	return spoken(d.messages.Restarting)
}

// playbackFailure maps a player error to a response.
func (d *Dispatcher) playbackFailure(err error) Result {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return failed(d.messages.TimedOut, err)
	case errors.Is(err, track.ErrNotFound):
		return failed(d.messages.SongNotFound, err)
	default:
		return failed(d.messages.PlaybackFailed, err)
	}
}

// Information handlers

func (d *Dispatcher) handleFetchInfo(ctx context.Context, text string) Result {
	topic := stripPrefix(text, classifier.Verbs(intent.FetchInfo)...)
	topic = strings.TrimRight(topic, "?!. ")
	if topic == "" {
		return failed(d.messages.InfoNotFound, ErrEntityNotFound)
	}

	callCtx, cancel := d.withTimeout(ctx)
	defer cancel()

	summary := d.deps.Encyclopedia.Summarize(callCtx, topic, d.maxSentences)
	switch summary.Kind {
	case wikipedia.KindFound:
		return spoken(summary.Text)
	case wikipedia.KindAmbiguous:
		if len(summary.Candidates) == 0 {
			return failed(d.messages.InfoNotFound, ErrEntityNotFound)
		}
		return spoken(fmt.Sprintf(d.messages.AmbiguousFormat, strings.Join(summary.Candidates, ", ")))
	case wikipedia.KindNotFound:
		return failed(d.messages.InfoNotFound, ErrEntityNotFound)
	default:
		if errors.Is(summary.Err, context.DeadlineExceeded) {
			return failed(d.messages.TimedOut, summary.Err)
		}
		return failed(d.messages.InfoFailed, summary.Err)
	}
}

func (d *Dispatcher) handleTellJoke(ctx context.Context, _ string) Result {
	callCtx, cancel := d.withTimeout(ctx)
	defer cancel()

	joke, err := d.deps.Jokes.Joke(callCtx)
	if err != nil {
		return failed(d.messages.JokeFailed, err)
	}
	return spoken(joke)
}

func (d *Dispatcher) handleGetTime(context.Context, string) Result {
	return spoken(d.deps.Clock().Format(d.messages.TimeFormat))
}

func (d *Dispatcher) handleGetWeather(ctx context.Context, text string) Result {
	city, ok := d.deps.Places.ExtractPlace(text)
	if !ok {
		return failed(d.messages.CityUnknown, ErrEntityNotFound)
	}
	if d.deps.Weather == nil {
		return failed(d.messages.WeatherFailed, ErrWeatherNotConfigured)
	}

	callCtx, cancel := d.withTimeout(ctx)
	defer cancel()

	celsius, err := d.deps.Weather.CurrentCelsius(callCtx, city)
	switch {
	case err == nil:
		value := strconv.FormatFloat(celsius, 'f', -1, 64)
		return spoken(fmt.Sprintf(d.messages.TemperatureFormat, city, value))
	case errors.Is(err, openweather.ErrCityNotFound):
		return failed(d.messages.CityNotFound, err)
	case errors.Is(err, context.DeadlineExceeded):
		return failed(d.messages.TimedOut, err)
	default:
		return failed(d.messages.WeatherFailed, err)
	}
}

// stripPrefix removes the first matching leading phrase from text,
// case-insensitively and on a word boundary, and trims the spaces and
// separators that follow it.
func stripPrefix(text string, prefixes ...string) string {
	text = strings.TrimSpace(text)
	for _, p := range prefixes {
		if len(text) < len(p) || !strings.EqualFold(text[:len(p)], p) {
			continue
		}
		rest := text[len(p):]
		if rest == "" || !isWordByte(rest[0]) {
			return strings.TrimLeft(rest, argumentSeparators)
		}
	}
	return text
}

// argumentSeparators may sit between a verb and its argument.
const argumentSeparators = " \t:;,.!?-"

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b >= 0x80
}
