// Package analysis turns raw field text into the normalised term stream the
// index is built from and queries are matched against. The same Analyzer
// instance must be used at build time and query time or terms will not line
// up.
package analysis

import "fmt"

// Analyzer converts raw text into normalised terms. Implementations hold
// only read-only configuration and are safe for concurrent use. Empty or
// malformed input yields an empty slice, never an error.
type Analyzer interface {
	Analyze(text string) []string
}

// Tokenizer splits raw text into candidate tokens.
type Tokenizer interface {
	Tokenize(text string) []string
}

// TokenFilter transforms a token stream, dropping or rewriting tokens while
// preserving order.
type TokenFilter interface {
	Filter(tokens []string) []string
}

// Chain applies a tokenizer followed by a fixed sequence of filters.
type Chain struct {
	tokenizer Tokenizer
	filters   []TokenFilter
}

// NewChain builds an analyzer from a tokenizer and filters, applied in order.
func NewChain(tokenizer Tokenizer, filters ...TokenFilter) Chain {
	return Chain{
		tokenizer: tokenizer,
		filters:   filters,
	}
}

// Analyze runs the full pipeline on one input string.
func (c Chain) Analyze(text string) []string {
	tokens := c.tokenizer.Tokenize(text)
	for _, f := range c.filters {
		tokens = f.Filter(tokens)
	}
	return tokens
}

// NewLanguage returns the full pipeline for the given language: word
// tokenizer, lowercase, stopword removal, Snowball stemming.
func NewLanguage(language string) (Analyzer, error) {
	stop, err := NewStopWordFilter(language)
	if err != nil {
		return nil, err
	}
	stem, err := NewSnowballStemFilter(language)
	if err != nil {
		return nil, err
	}
	return NewChain(WordTokenizer{}, LowercaseFilter{}, stop, stem), nil
}

// NewSimple returns the minimal pipeline: word tokenizer plus lowercasing,
// with no stopword removal or stemming.
func NewSimple() Analyzer {
	return NewChain(WordTokenizer{}, LowercaseFilter{})
}

// New selects an analyzer variant by name ("chain" or "simple").
func New(variant, language string) (Analyzer, error) {
	switch variant {
	case "", "chain":
		return NewLanguage(language)
	case "simple":
		return NewSimple(), nil
	default:
		return nil, fmt.Errorf("unknown analyzer variant %q", variant)
	}
}
