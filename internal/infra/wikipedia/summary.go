package wikipedia

// Kind distinguishes the outcomes of a summary lookup.
type Kind int

const (
	KindFound     Kind = iota // Article found, Text holds the summary
	KindAmbiguous             // Disambiguation page, Candidates holds options
	KindNotFound              // No matching article
	KindError                 // Lookup failed, Err holds the cause
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindFound:
		return "found"
	case KindAmbiguous:
		return "ambiguous"
	case KindNotFound:
		return "not_found"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Summary is the result of a lookup. Only the fields belonging to Kind are set.
type Summary struct {
	Kind       Kind
	Title      string
	Text       string
	Candidates []string
	Err        error
}

// Found returns a summary for an article.
func Found(title, text string) Summary {
	return Summary{Kind: KindFound, Title: title, Text: text}
}

// Ambiguous returns a summary for a disambiguation page.
func Ambiguous(candidates []string) Summary {
	return Summary{Kind: KindAmbiguous, Candidates: candidates}
}

// NotFound returns a summary for a topic without article.
func NotFound() Summary {
	return Summary{Kind: KindNotFound}
}

// Failed returns a summary for a failed lookup.
func Failed(err error) Summary {
	return Summary{Kind: KindError, Err: err}
}
