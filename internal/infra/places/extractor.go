// Package places extracts place names from free text using a gazetteer.
//
// Candidates are the word n-grams of the input. An exact, case-insensitive
// gazetteer hit wins, longest n-gram first. Otherwise every n-gram is scored
// against every entry with Jaro-Winkler and the best score at or above the
// fuzzy threshold wins.
package places

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
)

const (
	defaultFuzzyThreshold = 0.92

	// minFuzzyLength keeps short words such as "in" or "the" out of fuzzy matching.
	minFuzzyLength = 4
)

// Option is a functional option for configuring an [Extractor].
type Option func(*Extractor)

// WithPlaces adds place names to the built-in gazetteer.
func WithPlaces(names ...string) Option {
	return func(e *Extractor) {
		for _, n := range names {
			e.add(n)
		}
	}
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score for a fuzzy match.
// Default: 0.92.
func WithFuzzyThreshold(threshold float64) Option {
	return func(e *Extractor) {
		if threshold > 0 {
			e.fuzzyThreshold = threshold
		}
	}
}

// Extractor finds place names in text. It is read-only after construction and
// safe for concurrent use.
type Extractor struct {
	canonical      map[string]string // normalized -> canonical name
	keys           []string
	maxWords       int
	fuzzyThreshold float64
}

// New returns an Extractor over the built-in gazetteer plus any configured places.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		canonical:      make(map[string]string, len(gazetteer)),
		fuzzyThreshold: defaultFuzzyThreshold,
	}
	for _, n := range gazetteer {
		e.add(n)
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Extractor) add(name string) {
	key := normalize(name)
	if key == "" {
		return
	}
	if _, ok := e.canonical[key]; !ok {
		e.keys = append(e.keys, key)
	}
	e.canonical[key] = strings.TrimSpace(name)
	if n := len(strings.Fields(key)); n > e.maxWords {
		e.maxWords = n
	}
}

// ExtractPlace returns the canonical name of the first place mentioned in text.
func (e *Extractor) ExtractPlace(text string) (string, bool) {
	words := strings.Fields(normalize(text))
	if len(words) == 0 {
		return "", false
	}

	// Exact match, longest n-gram first, leftmost first.
	for n := min(e.maxWords, len(words)); n > 0; n-- {
		for i := 0; i+n <= len(words); i++ {
			if name, ok := e.canonical[strings.Join(words[i:i+n], " ")]; ok {
				return name, true
			}
		}
	}

	// Fuzzy match.
	bestScore := 0.0
	bestKey := ""
	for n := min(e.maxWords, len(words)); n > 0; n-- {
		for i := 0; i+n <= len(words); i++ {
			gram := strings.Join(words[i:i+n], " ")
			if len(gram) < minFuzzyLength {
				continue
			}
			for _, key := range e.keys {
				if s := matchr.JaroWinkler(gram, key, false); s > bestScore {
					bestScore = s
					bestKey = key
				}
			}
		}
	}
	if bestKey != "" && bestScore >= e.fuzzyThreshold {
		return e.canonical[bestKey], true
	}
	return "", false
}

// normalize lowercases s and replaces punctuation with spaces, keeping
// apostrophes and hyphens inside names.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '\'', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
