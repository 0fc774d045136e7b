package analysis

import (
	"fmt"
	"strings"

	"github.com/kljensen/snowball/english"
	"github.com/kljensen/snowball/spanish"
)

// LowercaseFilter folds every token to lowercase. Casing is locale-invariant
// (strings.ToLower), matching how terms are compared at query time.
type LowercaseFilter struct{}

func (LowercaseFilter) Filter(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = strings.ToLower(t)
	}
	return out
}

// StopWordFilter drops tokens found in a language-specific stopword set. The
// set is built once at construction and never mutated.
type StopWordFilter struct {
	stopWords map[string]struct{}
}

// NewStopWordFilter loads the stopword set for the given language.
func NewStopWordFilter(language string) (StopWordFilter, error) {
	words, ok := stopWordsByLanguage[language]
	if !ok {
		return StopWordFilter{}, fmt.Errorf("no stopword set for language %q", language)
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return StopWordFilter{stopWords: set}, nil
}

func (f StopWordFilter) Filter(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, stop := f.stopWords[t]; !stop {
			out = append(out, t)
		}
	}
	return out
}

// SnowballStemFilter reduces each token to its Snowball stem, independently
// and order-preserving. The stem is re-applied until it stops changing, so an
// already-stemmed token always maps to itself and index terms line up with
// query terms no matter how often a value passes through analysis.
type SnowballStemFilter struct {
	stem func(string, bool) string
}

// NewSnowballStemFilter selects the Snowball algorithm for the language.
func NewSnowballStemFilter(language string) (SnowballStemFilter, error) {
	switch language {
	case "spanish":
		return SnowballStemFilter{stem: spanish.Stem}, nil
	case "english":
		return SnowballStemFilter{stem: english.Stem}, nil
	default:
		return SnowballStemFilter{}, fmt.Errorf("no stemmer for language %q", language)
	}
}

func (f SnowballStemFilter) Filter(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = f.stemFixed(t)
	}
	return out
}

// stemFixed iterates the stemmer to a fixed point. Snowball output can itself
// carry a strippable suffix (spanish "humedad" stems to "humed", which stems
// again to "hum"); one pass would leave a term that analyses differently on
// the next round trip. Each productive pass shortens the token, so the loop
// terminates.
func (f SnowballStemFilter) stemFixed(t string) string {
	for {
		s := f.stem(t, false)
		if s == t || len(s) >= len(t) {
			return s
		}
		t = s
	}
}
