package assistant

import "github.com/osa030/lyra/internal/domain/intent"

// Kind classifies how a command was handled.
type Kind int

const (
	KindSpoken  Kind = iota // Handled, Text is the answer
	KindFailed              // A collaborator failed, Text explains the problem
	KindIgnored             // Illegal in the current playback state, nothing changed
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindSpoken:
		return "spoken"
	case KindFailed:
		return "failed"
	case KindIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// Result is the outcome of one dispatched command. Text is always set.
type Result struct {
	Intent intent.Label
	Kind   Kind
	Text   string
	Err    error // cause of a failed or ignored command
}

func spoken(text string) Result {
	return Result{Kind: KindSpoken, Text: text}
}

func failed(text string, err error) Result {
	return Result{Kind: KindFailed, Text: text, Err: err}
}

func ignored(text string, err error) Result {
	return Result{Kind: KindIgnored, Text: text, Err: err}
}
