package assistant

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/lyra/internal/app/classifier"
	"github.com/osa030/lyra/internal/app/playback"
	"github.com/osa030/lyra/internal/domain/intent"
	"github.com/osa030/lyra/internal/domain/track"
	"github.com/osa030/lyra/internal/infra/config"
	"github.com/osa030/lyra/internal/infra/openweather"
	"github.com/osa030/lyra/internal/infra/places"
	"github.com/osa030/lyra/internal/infra/wikipedia"
)

// fakeResolver resolves every query to a track whose URI is "uri:<query>".
type fakeResolver struct {
	mu      sync.Mutex
	queries []string
	missing map[string]bool
	block   bool
}

func (r *fakeResolver) ResolveTrack(ctx context.Context, query string) (*track.Track, error) {
	r.mu.Lock()
	r.queries = append(r.queries, query)
	r.mu.Unlock()

	if r.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if r.missing[query] {
		return nil, track.ErrNotFound
	}
	return &track.Track{ID: query, Name: query, URI: "uri:" + query}, nil
}

func (r *fakeResolver) Queries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queries...)
}

type fakeEncyclopedia struct {
	summary wikipedia.Summary
	topics  []string
}

func (e *fakeEncyclopedia) Summarize(ctx context.Context, topic string, maxSentences int) wikipedia.Summary {
	e.topics = append(e.topics, topic)
	return e.summary
}

type fakeWeather struct {
	celsius float64
	err     error
	cities  []string
}

func (w *fakeWeather) CurrentCelsius(ctx context.Context, city string) (float64, error) {
	w.cities = append(w.cities, city)
	return w.celsius, w.err
}

type fakeJokes struct {
	joke string
	err  error
}

func (j *fakeJokes) Joke(ctx context.Context) (string, error) {
	return j.joke, j.err
}

type fixedClassifier intent.Label

func (c fixedClassifier) Classify(context.Context, string) intent.Label {
	return intent.Label(c)
}

type fixture struct {
	dispatcher   *Dispatcher
	controller   *playback.Controller
	engine       *playback.LogEngine
	resolver     *fakeResolver
	encyclopedia *fakeEncyclopedia
	weather      *fakeWeather
	jokes        *fakeJokes
	cfg          *config.Config
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte("{}"))
	require.NoError(t, err)
	return cfg
}

func newFixture(t *testing.T, opts ...func(*Deps)) *fixture {
	t.Helper()
	f := &fixture{
		engine:       playback.NewLogEngine(),
		resolver:     &fakeResolver{missing: map[string]bool{}},
		encyclopedia: &fakeEncyclopedia{},
		weather:      &fakeWeather{},
		jokes:        &fakeJokes{joke: "To understand recursion, you must first understand recursion."},
		cfg:          testConfig(t),
	}
	f.controller = playback.NewController(f.engine, f.resolver)
	t.Cleanup(f.controller.Close)

	deps := Deps{
		Classifier:   classifier.NewKeywordClassifier(),
		Player:       f.controller,
		Encyclopedia: f.encyclopedia,
		Weather:      f.weather,
		Places:       places.New(),
		Jokes:        f.jokes,
		Clock:        func() time.Time { return time.Date(2024, 3, 1, 15, 4, 0, 0, time.UTC) },
	}
	for _, o := range opts {
		o(&deps)
	}

	d, err := NewDispatcher(f.cfg, deps)
	require.NoError(t, err)
	f.dispatcher = d
	return f
}

func (f *fixture) dispatch(text string) Result {
	return f.dispatcher.Dispatch(context.Background(), text)
}

func (f *fixture) count(cmd string) int {
	n := 0
	for _, c := range f.engine.Commands() {
		if c == cmd {
			n++
		}
	}
	return n
}

func TestDispatch_PlayScenario(t *testing.T) {
	f := newFixture(t)

	res := f.dispatch("play shape of you")

	assert.Equal(t, intent.Play, res.Intent)
	assert.Equal(t, KindSpoken, res.Kind)
	assert.Equal(t, "Playing shape of you", res.Text)
	assert.Equal(t, []string{"shape of you"}, f.resolver.Queries())

	snap := f.controller.Snapshot()
	assert.Equal(t, playback.StatePlaying, snap.State)
	require.NotNil(t, snap.Track)
	assert.Equal(t, "uri:shape of you", snap.Track.URI)
}

func TestDispatch_PlayReplacesTrack(t *testing.T) {
	f := newFixture(t)

	f.dispatch("play song a")
	res := f.dispatch("Play song b")

	assert.Equal(t, "Playing song b", res.Text)
	assert.Equal(t, playback.StatePlaying, f.controller.Snapshot().State)
	assert.Equal(t, "uri:song b", f.controller.Snapshot().Track.URI)
	assert.Equal(t, 1, f.count("load uri:song b"))
	assert.Equal(t, 0, f.count("stop"))
}

func TestDispatch_PauseTwice(t *testing.T) {
	f := newFixture(t)
	f.dispatch("play song a")

	first := f.dispatch("pause")
	assert.Equal(t, KindSpoken, first.Kind)
	assert.Equal(t, "Pausing the song", first.Text)

	second := f.dispatch("pause")
	assert.Equal(t, intent.Pause, second.Intent)
	assert.Equal(t, KindIgnored, second.Kind)
	assert.Equal(t, "There is no song playing to pause", second.Text)
	assert.True(t, errors.Is(second.Err, playback.ErrInvalidTransition))

	assert.Equal(t, playback.StatePaused, f.controller.Snapshot().State)
	assert.Equal(t, 1, f.count("pause"))
}

func TestDispatch_IllegalTransitionsFromIdle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"pause", "There is no song playing to pause"},
		{"resume", "There is no paused song to resume"},
		{"stop", "There is no song to stop"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f := newFixture(t)

			res := f.dispatch(tt.input)

			assert.Equal(t, KindIgnored, res.Kind)
			assert.Equal(t, tt.expected, res.Text)
			assert.Equal(t, playback.StateIdle, f.controller.Snapshot().State)
			assert.Empty(t, f.engine.Commands())
		})
	}
}

func TestDispatch_PauseResumeStop(t *testing.T) {
	f := newFixture(t)
	f.dispatch("play song a")

	assert.Equal(t, "Pausing the song", f.dispatch("pause").Text)
	assert.Equal(t, "Resuming the song", f.dispatch("resume").Text)
	assert.Equal(t, playback.StatePlaying, f.controller.Snapshot().State)

	assert.Equal(t, "Stopping the song", f.dispatch("stop").Text)
	assert.Equal(t, playback.StateIdle, f.controller.Snapshot().State)

	// Idempotent from idle
	res := f.dispatch("stop")
	assert.Equal(t, KindIgnored, res.Kind)
	assert.Equal(t, 1, f.count("stop"))
}

func TestDispatch_StopFromPaused(t *testing.T) {
	f := newFixture(t)
	f.dispatch("play song a")
	f.dispatch("pause")

	assert.Equal(t, "Stopping the song", f.dispatch("stop").Text)
	assert.Equal(t, playback.StateIdle, f.controller.Snapshot().State)
	assert.Nil(t, f.controller.Snapshot().Track)
}

func TestDispatch_Restart(t *testing.T) {
	tests := []struct {
		name      string
		setup     []string
		wantStops int
	}{
		{name: "from idle", setup: nil, wantStops: 0},
		{name: "from playing", setup: []string{"play song a"}, wantStops: 1},
		{name: "from paused", setup: []string{"play song a", "pause"}, wantStops: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			for _, s := range tt.setup {
				f.dispatch(s)
			}

			res := f.dispatch("restart song b")

			assert.Equal(t, intent.Restart, res.Intent)
			assert.Equal(t, "Playing the song from the beginning", res.Text)
			assert.Equal(t, playback.StatePlaying, f.controller.Snapshot().State)
			assert.Equal(t, "uri:song b", f.controller.Snapshot().Track.URI)
			assert.Equal(t, tt.wantStops, f.count("stop"))
		})
	}
}

func TestDispatch_PlayFailures(t *testing.T) {
	f := newFixture(t)
	f.resolver.missing["nothing like this"] = true
	f.dispatch("play song a")

	res := f.dispatch("play nothing like this")
	assert.Equal(t, KindFailed, res.Kind)
	assert.Equal(t, "Sorry, I couldn't find that song", res.Text)
	assert.True(t, errors.Is(res.Err, track.ErrNotFound))
	assert.Equal(t, "uri:song a", f.controller.Snapshot().Track.URI, "state must be unchanged")

	res = f.dispatch("play")
	assert.Equal(t, KindFailed, res.Kind)
	assert.Equal(t, "Please tell me which song to play", res.Text)
	assert.True(t, errors.Is(res.Err, ErrMissingMedia))

	res = f.dispatch("restart   ")
	assert.Equal(t, "Please tell me which song to play", res.Text)
	assert.Equal(t, playback.StatePlaying, f.controller.Snapshot().State)
}

func TestDispatch_PlayTimesOut(t *testing.T) {
	f := newFixture(t)
	f.resolver.block = true
	f.dispatcher.timeout = 20 * time.Millisecond

	res := f.dispatch("play shape of you")

	assert.Equal(t, KindFailed, res.Kind)
	assert.Equal(t, "Sorry, that took too long. Please try again.", res.Text)
	assert.Equal(t, playback.StateIdle, f.controller.Snapshot().State)
}

func TestDispatch_UnknownLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	f.dispatch("play song a")
	before := f.engine.Commands()

	res := f.dispatch("blargh")

	assert.Equal(t, intent.Unknown, res.Intent)
	assert.Equal(t, KindSpoken, res.Kind)
	assert.Equal(t, "I could not hear you properly", res.Text)
	assert.Equal(t, playback.StatePlaying, f.controller.Snapshot().State)
	assert.Equal(t, before, f.engine.Commands())
}

func TestDispatch_LabelOutsideClosedSet(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.Classifier = fixedClassifier(99) })

	res := f.dispatch("anything")

	assert.Equal(t, intent.Unknown, res.Intent)
	assert.Equal(t, "I could not hear you properly", res.Text)
}

func TestDispatch_FetchInfo(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		summary  wikipedia.Summary
		topic    string
		kind     Kind
		expected string
	}{
		{
			name:     "found",
			input:    "who is Alan Turing",
			summary:  wikipedia.Found("Alan Turing", "Alan Turing was an English mathematician."),
			topic:    "Alan Turing",
			kind:     KindSpoken,
			expected: "Alan Turing was an English mathematician.",
		},
		{
			name:     "ambiguous",
			input:    "What is mercury?",
			summary:  wikipedia.Ambiguous([]string{"Mercury (planet)", "Mercury (element)", "Freddie Mercury"}),
			topic:    "mercury",
			kind:     KindSpoken,
			expected: "The term is ambiguous. Did you mean one of the following? Mercury (planet), Mercury (element), Freddie Mercury",
		},
		{
			name:     "not found",
			input:    "what is xyzzy",
			summary:  wikipedia.NotFound(),
			topic:    "xyzzy",
			kind:     KindFailed,
			expected: "Sorry, I couldn't find any information on that topic.",
		},
		{
			name:     "error",
			input:    "who is Ada Lovelace",
			summary:  wikipedia.Failed(errors.New("connection refused")),
			topic:    "Ada Lovelace",
			kind:     KindFailed,
			expected: "Sorry, an error occurred while looking that up.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.encyclopedia.summary = tt.summary

			res := f.dispatch(tt.input)

			assert.Equal(t, intent.FetchInfo, res.Intent)
			assert.Equal(t, tt.kind, res.Kind)
			assert.Equal(t, tt.expected, res.Text)
			assert.Equal(t, []string{tt.topic}, f.encyclopedia.topics)
		})
	}
}

func TestDispatch_EveryVerbStripsToArgument(t *testing.T) {
	tests := []struct {
		label  intent.Label
		format string
		arg    string
	}{
		{intent.Play, "%s shape of you", "shape of you"},
		{intent.Restart, "%s shape of you", "shape of you"},
		{intent.FetchInfo, "%s albert einstein", "albert einstein"},
	}

	for _, tt := range tests {
		for _, verb := range classifier.Verbs(tt.label) {
			input := fmt.Sprintf(tt.format, verb)
			t.Run(input, func(t *testing.T) {
				f := newFixture(t)
				f.encyclopedia.summary = wikipedia.Found("Albert Einstein", "Albert Einstein was a physicist.")

				res := f.dispatch(input)

				assert.Equal(t, tt.label, res.Intent)
				assert.Equal(t, KindSpoken, res.Kind)
				if tt.label == intent.FetchInfo {
					assert.Equal(t, []string{tt.arg}, f.encyclopedia.topics)
				} else {
					assert.Equal(t, []string{tt.arg}, f.resolver.Queries())
				}
			})
		}
	}
}

func TestDispatch_AmbiguousWithoutCandidates(t *testing.T) {
	f := newFixture(t)
	f.encyclopedia.summary = wikipedia.Ambiguous(nil)

	res := f.dispatch("what is mercury")

	assert.Equal(t, KindFailed, res.Kind)
	assert.Equal(t, "Sorry, I couldn't find any information on that topic.", res.Text)
	assert.ErrorIs(t, res.Err, ErrEntityNotFound)
}

func TestDispatch_FetchInfoEmptyTopic(t *testing.T) {
	f := newFixture(t)

	res := f.dispatch("who is?")

	assert.Equal(t, "Sorry, I couldn't find any information on that topic.", res.Text)
	assert.Empty(t, f.encyclopedia.topics)
}

func newWeatherServer(t *testing.T, body string) *openweather.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)

	client, err := openweather.New(openweather.Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)
	return client
}

func TestDispatch_Weather(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		input    string
		kind     Kind
		expected string
	}{
		{
			name:     "temperature",
			body:     `{"cod":200,"main":{"temp":300.00}}`,
			input:    "what is the weather in London",
			kind:     KindSpoken,
			expected: "The current temperature in London is 26.85 degrees Celsius",
		},
		{
			name:     "city not found",
			body:     `{"cod":"404","message":"city not found"}`,
			input:    "weather in paris",
			kind:     KindFailed,
			expected: "City not found",
		},
		{
			name:     "provider failure",
			body:     `{"cod":401,"message":"Invalid API key"}`,
			input:    "weather in paris",
			kind:     KindFailed,
			expected: "Sorry, I couldn't reach the weather service.",
		},
		{
			name:     "no city",
			body:     `{"cod":200,"main":{"temp":300.00}}`,
			input:    "what is the weather like",
			kind:     KindFailed,
			expected: "Sorry, I couldn't determine the city.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newWeatherServer(t, tt.body)
			f := newFixture(t, func(d *Deps) { d.Weather = client })

			res := f.dispatch(tt.input)

			assert.Equal(t, intent.GetWeather, res.Intent)
			assert.Equal(t, tt.kind, res.Kind)
			assert.Equal(t, tt.expected, res.Text)
			assert.Equal(t, playback.StateIdle, f.controller.Snapshot().State)
		})
	}
}

func TestDispatch_WeatherNotConfigured(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.Weather = nil })

	res := f.dispatch("weather in Tokyo")

	assert.Equal(t, "Sorry, I couldn't reach the weather service.", res.Text)
	assert.True(t, errors.Is(res.Err, ErrWeatherNotConfigured))
}

func TestDispatch_WeatherFormatsValue(t *testing.T) {
	f := newFixture(t)
	f.weather.celsius = -3.5

	res := f.dispatch("temperature in New York")

	assert.Equal(t, "The current temperature in New York is -3.5 degrees Celsius", res.Text)
	assert.Equal(t, []string{"New York"}, f.weather.cities)
}

func TestDispatch_SmallTalk(t *testing.T) {
	tests := []struct {
		input    string
		label    intent.Label
		expected string
	}{
		{"what time is it", intent.GetTime, "03:04 PM"},
		{"tell me a joke", intent.TellJoke, "To understand recursion, you must first understand recursion."},
		{"thank you", intent.ThankYou, "You are welcome"},
		{"goodbye", intent.ShutDown, "Goodbye!"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f := newFixture(t)

			res := f.dispatch(tt.input)

			assert.Equal(t, tt.label, res.Intent)
			assert.Equal(t, KindSpoken, res.Kind)
			assert.Equal(t, tt.expected, res.Text)
		})
	}
}

func TestDispatch_JokeFailure(t *testing.T) {
	f := newFixture(t)
	f.jokes.err = errors.New("empty")

	res := f.dispatch("tell me a joke")

	assert.Equal(t, KindFailed, res.Kind)
	assert.Equal(t, "Sorry, I'm out of jokes right now.", res.Text)
}

func TestDispatch_CustomMessages(t *testing.T) {
	cfg := testConfig(t)
	cfg.Messages.NothingToPause = "Nothing is playing."
	cfg.Messages.TimeFormat = "15:04"

	f := newFixture(t)
	d, err := NewDispatcher(cfg, f.dispatcher.deps)
	require.NoError(t, err)

	assert.Equal(t, "Nothing is playing.", d.Dispatch(context.Background(), "pause").Text)
	assert.Equal(t, "15:04", d.Dispatch(context.Background(), "what time is it").Text)
}

func TestNewDispatcher_HandlesEveryIntent(t *testing.T) {
	f := newFixture(t)

	for _, l := range intent.All() {
		_, ok := f.dispatcher.handlers[l]
		assert.True(t, ok, "no handler for %s", l)
	}
}

func TestNewDispatcher_RequiresCollaborators(t *testing.T) {
	cfg := testConfig(t)
	full := newFixture(t).dispatcher.deps

	tests := []struct {
		name  string
		apply func(*Deps)
	}{
		{"classifier", func(d *Deps) { d.Classifier = nil }},
		{"player", func(d *Deps) { d.Player = nil }},
		{"encyclopedia", func(d *Deps) { d.Encyclopedia = nil }},
		{"places", func(d *Deps) { d.Places = nil }},
		{"jokes", func(d *Deps) { d.Jokes = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := full
			tt.apply(&deps)
			_, err := NewDispatcher(cfg, deps)
			assert.Error(t, err)
		})
	}
}

func TestStripPrefix(t *testing.T) {
	tests := []struct {
		text     string
		prefixes []string
		expected string
	}{
		{"play shape of you", []string{"play"}, "shape of you"},
		{"  PLAY   Shape of You ", []string{"play"}, "Shape of You"},
		{"play", []string{"play"}, ""},
		{"playlist rock", []string{"play"}, "playlist rock"},
		{"could you play jazz", []string{"play"}, "could you play jazz"},
		{"What is love", []string{"who is", "what is"}, "love"},
		{"who is who", []string{"who is", "what is"}, "who"},
		{"play: shape of you", []string{"play"}, "shape of you"},
		{"play - shape of you", []string{"play"}, "shape of you"},
		{"what's love", classifier.Verbs(intent.FetchInfo), "love"},
		{"Tell me about, Rome", classifier.Verbs(intent.FetchInfo), "Rome"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripPrefix(tt.text, tt.prefixes...))
		})
	}
}
