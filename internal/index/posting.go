// Package index builds and serves the inverted index: per-field postings
// lists plus numeric and stored value tables, keyed by a dense document
// ordinal assigned at indexing time. The ordinal never leaves the package
// boundary except as a handle back into the same committed Store.
package index

// Posting associates one document with a term's frequency in one field of
// that document.
type Posting struct {
	Doc  int `json:"d"` // internal ordinal, ascending within a list
	Freq int `json:"f"`
}

// PostingList is a term's postings ordered by ascending document ordinal.
// The ordering is what makes score tie-breaks deterministic.
type PostingList []Posting
