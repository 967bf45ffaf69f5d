// Package classifier maps utterances to intent labels.
package classifier

import (
	"context"
	"regexp"
	"strings"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/lyra/internal/domain/intent"
)

// Classifier labels an utterance. Implementations are total: anything they
// cannot classify, including their own failures, is intent.Unknown.
type Classifier interface {
	Classify(ctx context.Context, text string) intent.Label
}

// Compile-time interface check.
var _ Classifier = (*KeywordClassifier)(nil)

// KeywordClassifier matches utterances against ordered keyword patterns.
// The first matching rule wins.
type KeywordClassifier struct {
	rules []rule
}

type rule struct {
	regex *regexp.Regexp
	label intent.Label
}

// leadingVerbs are the phrases that open an utterance of an intent carrying
// an argument. The rest of the utterance is the argument.
var leadingVerbs = map[intent.Label][]string{
	intent.Play:    {"play"},
	intent.Restart: {"restart", "replay", "start over"},
	intent.FetchInfo: {
		"who is", "who was", "who are", "who were", "who's",
		"what is", "what was", "what are", "what were", "what's",
		"tell me about",
	},
}

// Verbs returns the leading phrases the keyword classifier recognizes for l.
// Handlers strip them to get the argument. It is nil for intents without one.
func Verbs(l intent.Label) []string {
	return append([]string(nil), leadingVerbs[l]...)
}

// leadingRule matches an utterance that starts with one of the verbs of l.
func leadingRule(l intent.Label) rule {
	quoted := make([]string, len(leadingVerbs[l]))
	for i, v := range leadingVerbs[l] {
		quoted[i] = regexp.QuoteMeta(v)
	}
	return rule{regexp.MustCompile(`^(` + strings.Join(quoted, "|") + `)\b`), l}
}

// NewKeywordClassifier creates a keyword-based classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{rules: []rule{
		{regexp.MustCompile(`^(shut ?down|power off|good ?bye|bye|see you|exit|quit)\b`), intent.ShutDown},
		{regexp.MustCompile(`\b(thanks|thank you|thank u|cheers|much appreciated)\b`), intent.ThankYou},
		leadingRule(intent.Restart),
		leadingRule(intent.Play),
		{regexp.MustCompile(`\b(pause|hold on)\b`), intent.Pause},
		{regexp.MustCompile(`\b(resume|unpause|continue)\b`), intent.Resume},
		{regexp.MustCompile(`\bstop\b`), intent.Stop},
		{regexp.MustCompile(`\b(weather|temperature|forecast|how (hot|cold|warm))\b`), intent.GetWeather},
		{regexp.MustCompile(`\b(what time|time is it|the time|current time|clock)\b`), intent.GetTime},
		{regexp.MustCompile(`\b(joke|jokes|funny|make me laugh)\b`), intent.TellJoke},
		leadingRule(intent.FetchInfo),
	}}
}

// Classify returns the label of the first matching rule, or intent.Unknown.
func (c *KeywordClassifier) Classify(ctx context.Context, text string) intent.Label {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return intent.Unknown
	}

	for _, r := range c.rules {
		if r.regex.MatchString(normalized) {
			zlog.Debug().Msgf("keyword classifier: %q -> %s", normalized, r.label)
			return r.label
		}
	}
	return intent.Unknown
}
