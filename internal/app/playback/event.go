package playback

import "github.com/osa030/lyra/internal/domain/track"

// EventType represents a playback event type.
type EventType int

const (
	EventTrackStarted EventType = iota // A new track was loaded and started
	EventStateChanged                  // Pause or resume
	EventStopped                       // Playback stopped, state is idle
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackStarted:
		return "track_started"
	case EventStateChanged:
		return "state_changed"
	case EventStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Event represents a committed playback transition.
type Event struct {
	Type  EventType
	Track *track.Track // Track involved (nil for EventStopped after idle)
	State State        // State after the transition
}
