// Package track provides the Track domain entity.
package track

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrNotFound is returned by resolvers when a query matches no media.
var ErrNotFound = errors.New("no media found for query")

// Track is an opaque handle to a resolved media item.
// The playback engine only ever sees URI; Name and Artists are for display.
type Track struct {
	ID       string        // Provider-specific ID
	Name     string        // Track name
	Artists  []string      // Artist names
	URI      string        // Playable media URI handed to the engine
	URL      string        // Human-facing URL
	Duration time.Duration // Track duration
}

// Title returns "Name - Artist1, Artist2", or just the name when no artist is known.
func (t *Track) Title() string {
	if len(t.Artists) == 0 {
		return t.Name
	}
	return t.Name + " - " + strings.Join(t.Artists, ", ")
}
