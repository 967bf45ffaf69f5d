package classifier

import (
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/lyra/internal/infra/config"
)

// NewFromConfig creates the classifier selected by configuration.
func NewFromConfig(cfg config.ClassifierConfig) (Classifier, error) {
	zlog.Debug().Msgf("creating classifier: type=%s", cfg.Type)

	switch cfg.Type {
	case config.ClassifierKeyword, "":
		return NewKeywordClassifier(), nil

	case config.ClassifierOpenAI:
		var settings OpenAIConfig
		if err := mapstructure.Decode(cfg.Settings, &settings); err != nil {
			return nil, errors.Wrap(err, "failed to decode settings")
		}
		if err := defaults.Set(&settings); err != nil {
			return nil, errors.Wrap(err, "failed to set defaults")
		}
		if err := validator.New().Struct(settings); err != nil {
			return nil, errors.Wrap(err, "validation failed")
		}
		return NewOpenAIClassifier(settings)

	default:
		return nil, errors.Newf("unsupported classifier type: %s", cfg.Type)
	}
}
