// Package playback provides the single playback state machine and its collaborator ports.
package playback

import "github.com/osa030/lyra/internal/domain/track"

// State represents the playback state.
type State int

const (
	StateIdle    State = iota // Nothing loaded, or stopped
	StatePlaying              // Track is playing
	StatePaused               // Track is paused
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// IsActive reports whether a track is loaded (playing or paused).
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

// Snapshot is a consistent view of the playback state.
// Track is nil when State is StateIdle.
type Snapshot struct {
	State State
	Track *track.Track
}
