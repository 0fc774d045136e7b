// Package executor runs parsed queries against a committed index: candidate
// gathering per the boolean structure, relevance scoring, spatial
// filtering, and deterministic ranking.
package executor

import (
	"log/slog"
	"sort"

	"github.com/geodoc-io/geodoc/internal/index"
	"github.com/geodoc-io/geodoc/internal/search/parser"
	"github.com/geodoc-io/geodoc/internal/search/scorer"
	"github.com/geodoc-io/geodoc/internal/search/spatial"
)

// NoLimit returns every candidate, bounded only by memory.
const NoLimit = 0

// Result is one ranked hit. Score 0 means no text relevance contribution
// (e.g. a pure spatial match).
type Result struct {
	Path  string  `json:"doc_id"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// Executor is safe for concurrent use: it only reads the immutable store.
type Executor struct {
	store   *index.Store
	scorer  scorer.Scorer
	idField string
	logger  *slog.Logger
}

// New wires an executor to a committed store and a scoring model.
func New(store *index.Store, sc scorer.Scorer) *Executor {
	return &Executor{
		store:   store,
		scorer:  sc,
		idField: store.Schema().IdentifierField().Name,
		logger:  slog.Default().With("component", "query-executor"),
	}
}

// candidates maps document ordinals to the query terms matched in them. A
// document present with no matches was retrieved by a non-text clause and
// carries no text relevance.
type candidates map[int][]scorer.TermMatch

// Execute runs one parsed query and returns results ordered by descending
// score, ties broken by ascending document ordinal. limit <= 0 means no
// limit.
//
// When both a spatial box and a text tree are present the combination is
// disjunctive: a document qualifies through either branch. Documents
// lacking a complete bounding box can only qualify through the text branch;
// a spatial-only query therefore never returns them.
func (e *Executor) Execute(q *parser.Query, limit int) []Result {
	if q == nil || q.IsEmpty() {
		return nil
	}

	cands := candidates{}
	if q.Root != nil {
		cands = e.evaluate(q.Root)
	}
	if q.Spatial != nil {
		for _, doc := range e.spatialMatches(*q.Spatial) {
			if _, ok := cands[doc]; !ok {
				cands[doc] = nil
			}
		}
	}

	results := make([]Result, 0, len(cands))
	ordinals := make([]int, 0, len(cands))
	for doc := range cands {
		ordinals = append(ordinals, doc)
	}
	sort.Ints(ordinals)
	for _, doc := range ordinals {
		path, _ := e.store.StoredValue(e.idField, doc)
		if path == "" {
			e.logger.Warn("matched document without identifier, dropped", "ordinal", doc)
			continue
		}
		results = append(results, Result{
			Path:  path,
			Score: e.scorer.Score(doc, dedupe(cands[doc])),
		})
	}

	// Ordinals are ascending going in, and the sort is stable, so equal
	// scores stay in ascending ordinal order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

// evaluate walks the query tree bottom-up, producing the candidate set for
// each node.
func (e *Executor) evaluate(node parser.Node) candidates {
	switch n := node.(type) {
	case parser.Term:
		c := candidates{}
		for _, p := range e.store.PostingsFor(n.Field, n.Term) {
			c[p.Doc] = append(c[p.Doc], scorer.TermMatch{Field: n.Field, Term: n.Term, Freq: p.Freq})
		}
		return c
	case parser.NumericRange:
		c := candidates{}
		for _, doc := range e.store.RangeScan(n.Field, n.Low, n.High) {
			c[doc] = nil
		}
		return c
	case parser.Or:
		c := candidates{}
		for _, child := range n.Children {
			for doc, matches := range e.evaluate(child) {
				if existing, ok := c[doc]; ok {
					c[doc] = append(existing, matches...)
				} else {
					c[doc] = matches
				}
			}
		}
		return c
	case parser.And:
		var c candidates
		for _, child := range n.Children {
			next := e.evaluate(child)
			if c == nil {
				c = next
				continue
			}
			for doc, matches := range c {
				childMatches, ok := next[doc]
				if !ok {
					delete(c, doc)
					continue
				}
				c[doc] = append(matches, childMatches...)
			}
		}
		if c == nil {
			c = candidates{}
		}
		return c
	default:
		return candidates{}
	}
}

// spatialMatches returns the ordinals of documents whose stored bounding box
// is complete and intersects the query box, ascending. Documents missing any
// of the four bounds never match here.
func (e *Executor) spatialMatches(query spatial.Box) []int {
	var docs []int
	for doc := 0; doc < e.store.DocumentCount(); doc++ {
		box, ok := e.documentBox(doc)
		if !ok {
			continue
		}
		if spatial.Intersects(query, box) {
			docs = append(docs, doc)
		}
	}
	return docs
}

func (e *Executor) documentBox(doc int) (spatial.Box, bool) {
	west, okW := e.store.NumericValue("west", doc)
	east, okE := e.store.NumericValue("east", doc)
	south, okS := e.store.NumericValue("south", doc)
	north, okN := e.store.NumericValue("north", doc)
	if !okW || !okE || !okS || !okN {
		return spatial.Box{}, false
	}
	return spatial.Box{West: west, East: east, South: south, North: north}, true
}

// dedupe collapses repeated (field, term) matches so a term written twice in
// the query does not double a document's score.
func dedupe(matches []scorer.TermMatch) []scorer.TermMatch {
	if len(matches) < 2 {
		return matches
	}
	type key struct{ field, term string }
	seen := make(map[key]struct{}, len(matches))
	out := matches[:0]
	for _, m := range matches {
		k := key{m.Field, m.Term}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, m)
	}
	return out
}
