// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Playback engine types.
const (
	EngineSpotify = "spotify"
	EngineLog     = "log"
)

// Classifier types.
const (
	ClassifierKeyword = "keyword"
	ClassifierOpenAI  = "openai"
)

// Config represents the application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Assistant  AssistantConfig  `yaml:"assistant"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Playback   PlaybackConfig   `yaml:"playback"`
	Spotify    SpotifyConfig    `yaml:"spotify"`
	Weather    WeatherConfig    `yaml:"weather"`
	Wikipedia  WikipediaConfig  `yaml:"wikipedia"`
	Places     PlacesConfig     `yaml:"places"`
	Speech     SpeechConfig     `yaml:"speech"`
	Messages   MessagesConfig   `yaml:"messages"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr  string `yaml:"addr" default:":8000"`
	Token string `yaml:"token"` // optional shared token required from clients
}

// AssistantConfig represents dispatcher configuration.
type AssistantConfig struct {
	Name      string `yaml:"name" default:"Lyra"`
	TimeoutMs int    `yaml:"timeout_ms" default:"8000" validate:"gte=100,lte=60000"`
}

// ClassifierConfig selects and configures the utterance classifier.
type ClassifierConfig struct {
	Type     string         `yaml:"type" default:"keyword" validate:"oneof=keyword openai"`
	Settings map[string]any `yaml:"settings"`
}

// PlaybackConfig represents playback engine configuration.
type PlaybackConfig struct {
	Engine string `yaml:"engine" default:"log" validate:"oneof=spotify log"`
}

// SpotifyConfig represents Spotify API configuration.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RefreshToken string `yaml:"refresh_token"`
	DeviceID     string `yaml:"device_id"`
	Market       string `yaml:"market" validate:"omitempty,len=2" default:"US"`
}

// WeatherConfig represents OpenWeatherMap configuration.
type WeatherConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url" default:"https://api.openweathermap.org/data/2.5/weather" validate:"url"`
}

// WikipediaConfig represents encyclopedia lookup configuration.
type WikipediaConfig struct {
	Language     string `yaml:"language" default:"en" validate:"min=2,max=12"`
	MaxSentences int    `yaml:"max_sentences" default:"2" validate:"gte=1,lte=10"`
	MaxOptions   int    `yaml:"max_options" default:"5" validate:"gte=1,lte=20"`
}

// PlacesConfig represents place extraction configuration.
type PlacesConfig struct {
	Extra          []string `yaml:"extra"`
	FuzzyThreshold float64  `yaml:"fuzzy_threshold" default:"0.92" validate:"gt=0,lte=1"`
}

// SpeechConfig represents speech synthesis configuration.
type SpeechConfig struct {
	Enabled bool     `yaml:"enabled"`
	Command string   `yaml:"command" default:"espeak"`
	Args    []string `yaml:"args"`
}

// MessagesConfig represents user-facing responses.
// Fields ending in Format are fmt formats.
type MessagesConfig struct {
	GreetingFormat    string `yaml:"greeting_format" default:"Hi, I'm your voice assistant %s. What can I do for you?"`
	PlayingFormat     string `yaml:"playing_format" default:"Playing %s"`
	Pausing           string `yaml:"pausing" default:"Pausing the song"`
	Resuming          string `yaml:"resuming" default:"Resuming the song"`
	Stopping          string `yaml:"stopping" default:"Stopping the song"`
	Restarting        string `yaml:"restarting" default:"Playing the song from the beginning"`
	NothingToPause    string `yaml:"nothing_to_pause" default:"There is no song playing to pause"`
	NothingToResume   string `yaml:"nothing_to_resume" default:"There is no paused song to resume"`
	NothingToStop     string `yaml:"nothing_to_stop" default:"There is no song to stop"`
	MissingSong       string `yaml:"missing_song" default:"Please tell me which song to play"`
	SongNotFound      string `yaml:"song_not_found" default:"Sorry, I couldn't find that song"`
	PlaybackFailed    string `yaml:"playback_failed" default:"Sorry, the player is not responding"`
	AmbiguousFormat   string `yaml:"ambiguous_format" default:"The term is ambiguous. Did you mean one of the following? %s"`
	InfoNotFound      string `yaml:"info_not_found" default:"Sorry, I couldn't find any information on that topic."`
	InfoFailed        string `yaml:"info_failed" default:"Sorry, an error occurred while looking that up."`
	TemperatureFormat string `yaml:"temperature_format" default:"The current temperature in %s is %s degrees Celsius"`
	CityNotFound      string `yaml:"city_not_found" default:"City not found"`
	CityUnknown       string `yaml:"city_unknown" default:"Sorry, I couldn't determine the city."`
	WeatherFailed     string `yaml:"weather_failed" default:"Sorry, I couldn't reach the weather service."`
	JokeFailed        string `yaml:"joke_failed" default:"Sorry, I'm out of jokes right now."`
	TimeFormat        string `yaml:"time_format" default:"03:04 PM"`
	ThankYou          string `yaml:"thank_you" default:"You are welcome"`
	Goodbye           string `yaml:"goodbye" default:"Goodbye!"`
	NotUnderstood     string `yaml:"not_understood" default:"I could not hear you properly"`
	TimedOut          string `yaml:"timed_out" default:"Sorry, that took too long. Please try again."`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	return Parse(data)
}

// Parse parses configuration from YAML bytes, then applies environment overrides,
// defaults and validation.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REFRESH_TOKEN"); v != "" {
		c.Spotify.RefreshToken = v
	}
	if v := os.Getenv("SPOTIFY_DEVICE_ID"); v != "" {
		c.Spotify.DeviceID = v
	}
	if v := os.Getenv("OPENWEATHER_API_KEY"); v != "" {
		c.Weather.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.Classifier.Type == ClassifierOpenAI {
		if c.Classifier.Settings == nil {
			c.Classifier.Settings = make(map[string]any)
		}
		c.Classifier.Settings["api_key"] = v
	}
	if v := os.Getenv("LYRA_API_TOKEN"); v != "" {
		c.Server.Token = v
	}
}

// Timeout returns the per-collaborator call timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Assistant.TimeoutMs) * time.Millisecond
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if err := c.validateSpotify(); err != nil {
		return err
	}

	return nil
}

// validateSpotify checks that Spotify credentials exist when the Spotify engine is selected.
func (c *Config) validateSpotify() error {
	if c.Playback.Engine != EngineSpotify {
		return nil
	}

	var missing []string
	if c.Spotify.ClientID == "" {
		missing = append(missing, "ClientID")
	}
	if c.Spotify.ClientSecret == "" {
		missing = append(missing, "ClientSecret")
	}
	if c.Spotify.RefreshToken == "" {
		missing = append(missing, "RefreshToken")
	}
	if len(missing) > 0 {
		return errors.Newf("spotify engine requires %v", missing)
	}

	return nil
}
