package classifier

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/lyra/internal/domain/intent"
)

// Compile-time interface check.
var _ Classifier = (*OpenAIClassifier)(nil)

// OpenAIConfig is the settings block of an "openai" classifier.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key" mapstructure:"api_key" validate:"required"`
	Model   string `yaml:"model" mapstructure:"model" default:"gpt-4o-mini" validate:"required"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
}

const systemPrompt = `
You are the intent classifier of a voice assistant.
Your ONLY job is to label the user's utterance.

RULES:
1. Do NOT converse.
2. Do NOT answer the question.
3. Output ONLY JSON. No markdown.

OUTPUT FORMAT:
{"intent": "<label>"}

LABELS:
- "play"        play a song, e.g. "play shape of you"
- "pause"       pause the current song
- "resume"      resume a paused song
- "stop"        stop the music
- "restart"     play a song again from the beginning, e.g. "restart bohemian rhapsody"
- "fetch_info"  who/what questions about a person or thing
- "tell_joke"   tell a joke
- "get_time"    current time
- "get_weather" current weather or temperature in a city
- "thank_you"   thanks
- "shut_down"   goodbye, shut down
- "unknown"     anything else

If the meaning is unclear, the label is "unknown".
`

// OpenAIClassifier labels utterances with a chat completion model.
type OpenAIClassifier struct {
	client openai.Client
	model  string
}

// NewOpenAIClassifier creates an OpenAI-backed classifier.
func NewOpenAIClassifier(cfg OpenAIConfig) (*OpenAIClassifier, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClassifier{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

// Classify asks the model for a label. Any failure is logged and yields intent.Unknown.
func (c *OpenAIClassifier) Classify(ctx context.Context, text string) intent.Label {
	text = strings.TrimSpace(text)
	if text == "" {
		return intent.Unknown
	}

	label, err := c.classify(ctx, text)
	if err != nil {
		zlog.Warn().Err(err).Msgf("openai classifier failed for %q", text)
		return intent.Unknown
	}
	return label
}

func (c *OpenAIClassifier) classify(ctx context.Context, text string) (intent.Label, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(text),
		},
		Model: openai.ChatModel(c.model),
	})
	if err != nil {
		return intent.Unknown, errors.Wrap(err, "chat completion")
	}

	if len(resp.Choices) == 0 {
		return intent.Unknown, errors.New("no choices in response")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return intent.Unknown, errors.New("empty message content")
	}

	zlog.Debug().Msgf("openai classifier raw: %s", content)
	return parseLabel(content)
}

// parseLabel reads {"intent": "..."} from content, tolerating code fences and a
// bare label.
func parseLabel(content string) (intent.Label, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if !strings.HasPrefix(content, "{") {
		return intent.Parse(strings.Trim(content, `"'.`)), nil
	}

	var out struct {
		Intent string `json:"intent"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return intent.Unknown, errors.Wrapf(err, "unmarshal classifier result (raw: %s)", content)
	}
	return intent.Parse(out.Intent), nil
}
