package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/lyra/internal/domain/intent"
	"github.com/osa030/lyra/internal/infra/config"
)

// ErrEmptyCommand is returned for a missing or blank command. It is the only
// error HandleCommand returns.
var ErrEmptyCommand = errors.New("command is required")

// Response is the answer to one request.
type Response struct {
	RequestID string
	Intent    intent.Label
	Text      string
}

// Assistant is the upward interface: one call per utterance plus a greeting.
type Assistant struct {
	dispatcher *Dispatcher
	speaker    Speaker
	greeting   string
}

// New creates an assistant. speaker may be nil.
func New(cfg *config.Config, dispatcher *Dispatcher, speaker Speaker) *Assistant {
	return &Assistant{
		dispatcher: dispatcher,
		speaker:    speaker,
		greeting:   fmt.Sprintf(cfg.Messages.GreetingFormat, cfg.Assistant.Name),
	}
}

// HandleCommand dispatches text and speaks the response.
func (a *Assistant) HandleCommand(ctx context.Context, text string) (Response, error) {
	if strings.TrimSpace(text) == "" {
		return Response{}, ErrEmptyCommand
	}

	requestID := uuid.NewString()
	logger := zlog.With().Str("request_id", requestID).Logger()
	ctx = logger.WithContext(ctx)

	logger.Debug().Msgf("command received: %q", text)
	res := a.dispatcher.Dispatch(ctx, text)
	a.speak(ctx, res.Text)

	return Response{RequestID: requestID, Intent: res.Intent, Text: res.Text}, nil
}

// Greet returns and speaks the session greeting.
func (a *Assistant) Greet(ctx context.Context) Response {
	requestID := uuid.NewString()
	logger := zlog.With().Str("request_id", requestID).Logger()
	ctx = logger.WithContext(ctx)

	a.speak(ctx, a.greeting)
	return Response{RequestID: requestID, Intent: intent.Unknown, Text: a.greeting}
}

// speak vocalizes text. Failures are only logged: the response text is still returned.
func (a *Assistant) speak(ctx context.Context, text string) {
	if a.speaker == nil {
		return
	}
	if err := a.speaker.Speak(ctx, text); err != nil {
		zlog.Ctx(ctx).Warn().Err(err).Msg("failed to speak response")
	}
}
