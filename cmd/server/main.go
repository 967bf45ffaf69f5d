// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apiconnect "github.com/osa030/lyra/internal/api/connect"
	"github.com/osa030/lyra/internal/app/assistant"
	"github.com/osa030/lyra/internal/app/classifier"
	"github.com/osa030/lyra/internal/app/playback"
	"github.com/osa030/lyra/internal/domain/intent"
	"github.com/osa030/lyra/internal/infra/config"
	"github.com/osa030/lyra/internal/infra/jokes"
	"github.com/osa030/lyra/internal/infra/logger"
	"github.com/osa030/lyra/internal/infra/openweather"
	"github.com/osa030/lyra/internal/infra/places"
	"github.com/osa030/lyra/internal/infra/speech"
	"github.com/osa030/lyra/internal/infra/spotify"
	"github.com/osa030/lyra/internal/infra/wikipedia"
)

var (
	app        = kingpin.New("lyra-server", "Lyra voice assistant server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()
	jsonLogs   = app.Flag("json", "Write JSON log lines").Bool()

	// list-intents command
	listIntentsCmd = app.Command("list-intents", "List supported intents and exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Handle list-intents command
	if command == listIntentsCmd.FullCommand() {
		printIntents()
		return
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
		JSON:   *jsonLogs,
	}
	// Override with command-line flags if specified
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	logCloser, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logCloser.Close()

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx := context.Background()

	// Create playback controller
	engine, resolver, err := newPlayback(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "failed to create playback engine")
	}
	controller := playback.NewController(engine, resolver)
	go logEvents(controller.Events())

	// Create classifier
	cls, err := classifier.NewFromConfig(cfg.Classifier)
	if err != nil {
		return errors.Wrap(err, "failed to create classifier")
	}

	// Create information providers
	var weather assistant.Weather
	if cfg.Weather.APIKey != "" {
		client, err := openweather.New(openweather.Config{
			APIKey:  cfg.Weather.APIKey,
			BaseURL: cfg.Weather.BaseURL,
		})
		if err != nil {
			return errors.Wrap(err, "failed to create weather client")
		}
		weather = client
	} else {
		zlog.Warn().Msg("Weather API key not configured, weather requests will fail")
	}

	dispatcher, err := assistant.NewDispatcher(cfg, assistant.Deps{
		Classifier: cls,
		Player:     controller,
		Encyclopedia: wikipedia.New(wikipedia.Config{
			Language:   cfg.Wikipedia.Language,
			MaxOptions: cfg.Wikipedia.MaxOptions,
		}),
		Weather: weather,
		Places: places.New(
			places.WithPlaces(cfg.Places.Extra...),
			places.WithFuzzyThreshold(cfg.Places.FuzzyThreshold),
		),
		Jokes: jokes.New(),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create dispatcher")
	}

	lyra := assistant.New(cfg, dispatcher, newSpeaker(cfg))

	// Create HTTP mux
	mux := http.NewServeMux()

	// Register services
	path, handler := apiconnect.NewAssistantServiceHandler(
		apiconnect.NewAssistantService(lyra),
		connect.WithInterceptors(apiconnect.NewTokenInterceptor(cfg.Server.Token)),
	)
	mux.Handle(path, handler)

	// Determine server address
	serverAddr := cfg.Server.Addr
	// Create server with h2c (HTTP/2 cleartext) support
	server := &http.Server{
		Addr:    serverAddr,
		Handler: h2c.NewHandler(mux, &http2.Server{}),
	}

	// Channel to capture server errors
	serverErrCh := make(chan error, 1)

	// Start server
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s engine=%s classifier=%s", serverAddr, cfg.Playback.Engine, cfg.Classifier.Type)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		return errors.Wrap(err, "server error")
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	// Leave the device silent
	if err := controller.Stop(shutdownCtx); err != nil && !errors.Is(err, playback.ErrInvalidTransition) {
		zlog.Error().Msgf("Failed to stop playback: %v", err)
	}
	controller.Close()

	zlog.Info().Msg("Server stopped")
	return nil
}

// newPlayback creates the playback engine and media resolver. Spotify is used for
// search whenever credentials exist; the log engine only replaces the device.
func newPlayback(ctx context.Context, cfg *config.Config) (playback.Engine, playback.Resolver, error) {
	hasCredentials := cfg.Spotify.ClientID != "" && cfg.Spotify.ClientSecret != "" && cfg.Spotify.RefreshToken != ""

	if !hasCredentials {
		zlog.Warn().Msg("Spotify credentials not configured, using log engine with echo resolver")
		return playback.NewLogEngine(), playback.EchoResolver{}, nil
	}

	client, err := spotify.New(ctx, spotify.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RefreshToken: cfg.Spotify.RefreshToken,
		Market:       cfg.Spotify.Market,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create Spotify client")
	}

	switch cfg.Playback.Engine {
	case config.EngineSpotify:
		zlog.Info().Msgf("Using Spotify Connect engine: device=%q", cfg.Spotify.DeviceID)
		return spotify.NewPlayer(client, cfg.Spotify.DeviceID), client, nil
	default:
		zlog.Info().Msg("Using log engine with Spotify resolver")
		return playback.NewLogEngine(), client, nil
	}
}

// newSpeaker creates the speech synthesizer, falling back to the no-op speaker.
func newSpeaker(cfg *config.Config) assistant.Speaker {
	if !cfg.Speech.Enabled {
		return speech.Noop{}
	}

	speaker, err := speech.NewCommand(cfg.Speech.Command, cfg.Speech.Args...)
	if err != nil {
		zlog.Warn().Msgf("Speech disabled: %v", err)
		return speech.Noop{}
	}
	return speaker
}

// logEvents logs playback events until the controller is closed.
func logEvents(events <-chan playback.Event) {
	for ev := range events {
		title := ""
		if ev.Track != nil {
			title = ev.Track.Title()
		}
		zlog.Info().Msgf("Playback %s: state=%s track=%q", ev.Type, ev.State, title)
	}
}

// printIntents prints the supported intents.
func printIntents() {
	fmt.Println("Supported Intents:")
	for _, l := range intent.All() {
		kind := "info"
		if l.IsPlayback() {
			kind = "playback"
		}
		fmt.Printf("  %-12s - %s\n", l, kind)
	}
}
