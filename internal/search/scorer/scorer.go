// Package scorer assigns relevance scores to candidate documents. The
// scoring model is a capability chosen at construction time; the executor
// never knows which one is active.
package scorer

import (
	"fmt"
	"math"
)

// Stats is the read-only corpus view a scorer needs. *index.Store satisfies
// it.
type Stats interface {
	DocumentCount() int
	DocFreq(field, term string) int
	DocLength(doc int) int
	AvgDocLength() float64
}

// TermMatch is one matched (field, term) pair with the term's frequency in
// the candidate document's field.
type TermMatch struct {
	Field string
	Term  string
	Freq  int
}

// Scorer computes a non-negative relevance score for one candidate given its
// matched query terms. Implementations are stateless beyond corpus stats and
// safe for concurrent use.
type Scorer interface {
	Score(doc int, matches []TermMatch) float64
}

// New selects a scoring model by name.
func New(model string, stats Stats) (Scorer, error) {
	switch model {
	case "", "tfidf":
		return TFIDF{stats: stats}, nil
	case "bm25":
		return BM25{stats: stats, k1: 1.2, b: 0.75}, nil
	default:
		return nil, fmt.Errorf("unknown scoring model %q", model)
	}
}

// TFIDF sums, over all matched (field, term) pairs,
// termFrequency × log(totalDocuments / documentsContainingTerm).
type TFIDF struct {
	stats Stats
}

func (s TFIDF) Score(doc int, matches []TermMatch) float64 {
	total := float64(s.stats.DocumentCount())
	var sum float64
	for _, m := range matches {
		df := s.stats.DocFreq(m.Field, m.Term)
		if df == 0 {
			continue
		}
		sum += float64(m.Freq) * math.Log(total/float64(df))
	}
	return sum
}

// BM25 is the probabilistic alternative, with the usual saturation (k1) and
// length-normalisation (b) parameters.
type BM25 struct {
	stats Stats
	k1    float64
	b     float64
}

func (s BM25) Score(doc int, matches []TermMatch) float64 {
	total := float64(s.stats.DocumentCount())
	docLen := float64(s.stats.DocLength(doc))
	avgLen := s.stats.AvgDocLength()
	var sum float64
	for _, m := range matches {
		df := float64(s.stats.DocFreq(m.Field, m.Term))
		if df == 0 {
			continue
		}
		idf := math.Log((total-df+0.5)/(df+0.5) + 1)
		tf := float64(m.Freq)
		var norm float64
		if avgLen > 0 {
			norm = s.k1 * (1 - s.b + s.b*docLen/avgLen)
		} else {
			norm = s.k1
		}
		sum += idf * tf * (s.k1 + 1) / (tf + norm)
	}
	return sum
}
