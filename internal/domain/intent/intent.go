// Package intent provides the closed set of intent labels an utterance can be classified into.
package intent

import "strings"

// Label represents the classified purpose of an utterance.
type Label int

const (
	Unknown    Label = iota // Utterance could not be classified
	Play                    // Play a song by name
	Pause                   // Pause the current song
	Resume                  // Resume the paused song
	Stop                    // Stop playback
	Restart                 // Play a song from the beginning
	FetchInfo               // Encyclopedia lookup ("who is", "what is")
	TellJoke                // Tell a joke
	GetTime                 // Tell the current time
	GetWeather              // Tell the current temperature of a city
	ThankYou                // Small talk: thanks
	ShutDown                // Small talk: goodbye
)

// String returns the wire name of the label.
func (l Label) String() string {
	switch l {
	case Play:
		return "play"
	case Pause:
		return "pause"
	case Resume:
		return "resume"
	case Stop:
		return "stop"
	case Restart:
		return "restart"
	case FetchInfo:
		return "fetch_info"
	case TellJoke:
		return "tell_joke"
	case GetTime:
		return "get_time"
	case GetWeather:
		return "get_weather"
	case ThankYou:
		return "thank_you"
	case ShutDown:
		return "shut_down"
	default:
		return "unknown"
	}
}

// IsPlayback reports whether the label drives the playback state machine.
func (l Label) IsPlayback() bool {
	switch l {
	case Play, Pause, Resume, Stop, Restart:
		return true
	default:
		return false
	}
}

// names maps wire names, including the legacy "*_song" and "time" labels, to labels.
var names = map[string]Label{
	"play":         Play,
	"play_song":    Play,
	"pause":        Pause,
	"pause_song":   Pause,
	"resume":       Resume,
	"resume_song":  Resume,
	"stop":         Stop,
	"stop_song":    Stop,
	"restart":      Restart,
	"restart_song": Restart,
	"fetch_info":   FetchInfo,
	"tell_joke":    TellJoke,
	"get_time":     GetTime,
	"time":         GetTime,
	"get_weather":  GetWeather,
	"thank_you":    ThankYou,
	"shut_down":    ShutDown,
	"unknown":      Unknown,
}

// Parse converts a label name to a Label.
// Returns Unknown for unrecognized names.
func Parse(name string) Label {
	if l, ok := names[strings.ToLower(strings.TrimSpace(name))]; ok {
		return l
	}
	return Unknown
}

// All returns every label, Unknown included.
func All() []Label {
	return []Label{
		Unknown, Play, Pause, Resume, Stop, Restart,
		FetchInfo, TellJoke, GetTime, GetWeather, ThankYou, ShutDown,
	}
}
