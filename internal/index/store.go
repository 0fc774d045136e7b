package index

import (
	"sort"

	"github.com/geodoc-io/geodoc/internal/schema"
)

// Store is the committed index: read-only, side-effect-free lookups over the
// postings, numeric, and stored tables. A Store is immutable after
// construction, so any number of queries may read it concurrently without
// locking.
type Store struct {
	schema     *schema.Schema
	postings   map[string]map[string]PostingList
	numeric    map[string]map[int]float64
	stored     map[string][]string
	docLengths []int
	termCounts map[string]int
	docCount   int
}

// Tables is the raw committed state, used by the segment codec to persist
// and reopen a Store without replaying the build.
type Tables struct {
	Postings   map[string]map[string]PostingList `json:"postings"`
	Numeric    map[string]map[int]float64        `json:"numeric"`
	Stored     map[string][]string               `json:"stored"`
	DocLengths []int                             `json:"docLengths"`
	TermCounts map[string]int                    `json:"termCounts"`
}

// NewStore reconstructs a committed Store from its raw tables.
func NewStore(s *schema.Schema, t Tables) *Store {
	return &Store{
		schema:     s,
		postings:   t.Postings,
		numeric:    t.Numeric,
		stored:     t.Stored,
		docLengths: t.DocLengths,
		termCounts: t.TermCounts,
		docCount:   len(t.DocLengths),
	}
}

// Tables exposes the raw state for persistence.
func (s *Store) Tables() Tables {
	return Tables{
		Postings:   s.postings,
		Numeric:    s.numeric,
		Stored:     s.stored,
		DocLengths: s.docLengths,
		TermCounts: s.termCounts,
	}
}

// Schema returns the schema the index was created with.
func (s *Store) Schema() *schema.Schema {
	return s.schema
}

// PostingsFor returns the postings list for (field, term), ordered by
// ascending document ordinal. A term or field with no postings yields nil.
func (s *Store) PostingsFor(field, term string) PostingList {
	terms, ok := s.postings[field]
	if !ok {
		return nil
	}
	return terms[term]
}

// DocFreq returns the number of documents containing term in field.
func (s *Store) DocFreq(field, term string) int {
	return len(s.PostingsFor(field, term))
}

// NumericValue returns the indexed numeric value of field for the document,
// and whether one is present.
func (s *Store) NumericValue(field string, doc int) (float64, bool) {
	values, ok := s.numeric[field]
	if !ok {
		return 0, false
	}
	v, ok := values[doc]
	return v, ok
}

// StoredValue returns the stored value of field for the document, and
// whether the field is stored at all. An absent source value is the empty
// string, never an error.
func (s *Store) StoredValue(field string, doc int) (string, bool) {
	col, ok := s.stored[field]
	if !ok || doc < 0 || doc >= len(col) {
		return "", false
	}
	return col[doc], true
}

// DocumentCount returns the number of committed documents.
func (s *Store) DocumentCount() int {
	return s.docCount
}

// TotalTermCount returns the total number of term occurrences indexed into
// field, used for scoring normalisation.
func (s *Store) TotalTermCount(field string) int {
	return s.termCounts[field]
}

// TermCount returns the number of distinct (field, term) pairs indexed.
func (s *Store) TermCount() int {
	n := 0
	for _, terms := range s.postings {
		n += len(terms)
	}
	return n
}

// DocLength returns the total analysed term count of one document across all
// text fields.
func (s *Store) DocLength(doc int) int {
	if doc < 0 || doc >= len(s.docLengths) {
		return 0
	}
	return s.docLengths[doc]
}

// AvgDocLength returns the mean analysed document length.
func (s *Store) AvgDocLength() float64 {
	if s.docCount == 0 {
		return 0
	}
	total := 0
	for _, n := range s.docLengths {
		total += n
	}
	return float64(total) / float64(s.docCount)
}

// RangeScan returns the ordinals of documents whose value for the numeric
// field lies within [low, high], in ascending ordinal order. A nil bound is
// open. Documents with no value for the field never match a range.
func (s *Store) RangeScan(field string, low, high *float64) []int {
	values, ok := s.numeric[field]
	if !ok {
		return nil
	}
	var docs []int
	for doc, v := range values {
		if low != nil && v < *low {
			continue
		}
		if high != nil && v > *high {
			continue
		}
		docs = append(docs, doc)
	}
	sort.Ints(docs)
	return docs
}
