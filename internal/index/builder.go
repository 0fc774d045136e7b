package index

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/geodoc-io/geodoc/internal/analysis"
	"github.com/geodoc-io/geodoc/internal/schema"
	gderrors "github.com/geodoc-io/geodoc/pkg/errors"
)

// Builder accumulates documents into in-memory tables and freezes them into
// an immutable Store on Commit. It is a single-writer, append-only handle:
// nothing it holds is observable by readers until Commit returns, and the
// handle rejects writes afterwards.
type Builder struct {
	schema   *schema.Schema
	analyzer analysis.Analyzer

	postings   map[string]map[string]PostingList
	numeric    map[string]map[int]float64
	stored     map[string][]string
	docLengths []int
	termCounts map[string]int
	docCount   int
	committed  bool

	logger *slog.Logger
}

// NewBuilder opens a builder for the given schema. The analyzer is applied
// to every text field at add time; the same analyzer must be used for query
// terms later.
func NewBuilder(s *schema.Schema, analyzer analysis.Analyzer) *Builder {
	b := &Builder{
		schema:     s,
		analyzer:   analyzer,
		postings:   make(map[string]map[string]PostingList),
		numeric:    make(map[string]map[int]float64),
		stored:     make(map[string][]string),
		termCounts: make(map[string]int),
		logger:     slog.Default().With("component", "index-builder"),
	}
	for _, name := range s.TextFields() {
		b.postings[name] = make(map[string]PostingList)
	}
	for _, name := range s.NumericFields() {
		b.numeric[name] = make(map[int]float64)
	}
	for _, name := range s.StoredFields() {
		b.stored[name] = nil
	}
	return b
}

// AddDocument indexes one record. A record without its identifier value is
// rejected with ErrSchemaViolation and leaves the builder untouched; any
// other missing field degrades to an empty or default value.
func (b *Builder) AddDocument(rec schema.Record) error {
	if b.committed {
		return fmt.Errorf("add after commit")
	}

	idField := b.schema.IdentifierField()
	id := strings.TrimSpace(rec.Fields[idField.Name])
	if id == "" {
		return fmt.Errorf("%w: record has no %s value", gderrors.ErrSchemaViolation, idField.Name)
	}

	doc := b.docCount
	docLen := 0

	for _, field := range b.schema.Fields() {
		raw := rec.Fields[field.Name]
		switch field.Type {
		case schema.Text:
			terms := b.analyzer.Analyze(raw)
			freqs := make(map[string]int, len(terms))
			for _, t := range terms {
				freqs[t]++
			}
			for term, freq := range freqs {
				b.postings[field.Name][term] = append(b.postings[field.Name][term], Posting{Doc: doc, Freq: freq})
			}
			b.termCounts[field.Name] += len(terms)
			docLen += len(terms)
		case schema.Numeric:
			value, ok := parseNumeric(raw)
			if !ok && field.Default != nil {
				value, ok = *field.Default, true
			}
			if ok {
				b.numeric[field.Name][doc] = value
			}
			if raw != "" && !ok {
				b.logger.Warn("unparseable numeric value, treated as absent",
					"doc", id, "field", field.Name, "value", raw)
			}
		}
		if field.Stored {
			b.stored[field.Name] = append(b.stored[field.Name], raw)
		}
	}

	// Identifier goes through the stored loop above; re-store trimmed.
	b.stored[idField.Name][doc] = id

	b.docLengths = append(b.docLengths, docLen)
	b.docCount++
	return nil
}

// Commit finalises all tables and returns the immutable Store. The builder
// is unusable for writes afterwards. Postings lists are already in ascending
// ordinal order because ordinals are assigned sequentially by the single
// writer.
func (b *Builder) Commit() (*Store, error) {
	if b.committed {
		return nil, fmt.Errorf("commit called twice")
	}
	b.committed = true

	// Stored columns must be rectangular: one row per document.
	for name, col := range b.stored {
		for len(col) < b.docCount {
			col = append(col, "")
		}
		b.stored[name] = col
	}

	s := &Store{
		schema:     b.schema,
		postings:   b.postings,
		numeric:    b.numeric,
		stored:     b.stored,
		docLengths: b.docLengths,
		termCounts: b.termCounts,
		docCount:   b.docCount,
	}
	b.logger.Info("index committed",
		"docs", s.docCount,
		"text_fields", len(b.postings),
	)
	return s, nil
}

func parseNumeric(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
