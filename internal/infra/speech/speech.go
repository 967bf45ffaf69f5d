// Package speech provides text-to-speech speakers.
package speech

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// Command speaks text by running an external synthesizer such as espeak,
// passing the text as the last argument. Only one utterance plays at a time.
type Command struct {
	mu   sync.Mutex
	path string
	args []string
}

// NewCommand returns a speaker running name with args. The binary is looked up
// in PATH once.
func NewCommand(name string, args ...string) (*Command, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, errors.Wrapf(err, "speech command %q not found", name)
	}
	return &Command{path: path, args: args}, nil
}

// Speak runs the synthesizer and waits for it to finish.
func (c *Command) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	args := append(append([]string{}, c.args...), text)
	cmd := exec.CommandContext(ctx, c.path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "speech command failed: %s", strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Noop is a speaker that only logs. Used when speech is disabled.
type Noop struct{}

// Speak logs the text at debug level.
func (Noop) Speak(ctx context.Context, text string) error {
	zlog.Debug().Msgf("speech disabled, would say %q", text)
	return nil
}
