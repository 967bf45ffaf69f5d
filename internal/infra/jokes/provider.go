// Package jokes provides an offline joke provider backed by an embedded list.
package jokes

import (
	"context"
	_ "embed"
	"math/rand/v2"
	"strings"

	"github.com/cockroachdb/errors"
)

//go:embed jokes.txt
var embedded string

// ErrNoJokes is returned when the provider has nothing to tell.
var ErrNoJokes = errors.New("no jokes available")

// Provider picks a random joke. Randomness uses math/rand/v2, which is safe for
// concurrent use with the global source.
type Provider struct {
	jokes []string
	pick  func(n int) int
}

// New returns a Provider over the embedded joke list.
func New() *Provider {
	return &Provider{jokes: parse(embedded), pick: rand.IntN}
}

// NewWithJokes returns a Provider over the given jokes.
func NewWithJokes(jokes []string) *Provider {
	return &Provider{jokes: parse(strings.Join(jokes, "\n")), pick: rand.IntN}
}

// Joke returns a random joke.
func (p *Provider) Joke(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(p.jokes) == 0 {
		return "", ErrNoJokes
	}
	return p.jokes[p.pick(len(p.jokes))], nil
}

// Len returns the number of jokes.
func (p *Provider) Len() int {
	return len(p.jokes)
}

func parse(text string) []string {
	var jokes []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		jokes = append(jokes, line)
	}
	return jokes
}
