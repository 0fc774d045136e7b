// Package parser converts raw query strings into immutable query trees. The
// default grouping across terms and fields is disjunctive: matching any term
// in any field qualifies a document. This is a recall-favouring policy, not
// an accident.
//
// Supported syntax, all combined by OR at the top level:
//
//	sensor humedad            bare terms, expanded across all search fields
//	1995                      numeric bare terms also match numeric fields
//	titulo:sensor             field-qualified term
//	anyo:1990..2000           numeric range, either bound may be omitted
//	anyo:1995                 degenerate numeric range
//	spatial W,E,S,N [terms]   leading spatial clause, rest parsed as above
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/geodoc-io/geodoc/internal/analysis"
	"github.com/geodoc-io/geodoc/internal/schema"
	"github.com/geodoc-io/geodoc/internal/search/spatial"
	gderrors "github.com/geodoc-io/geodoc/pkg/errors"
)

// Node is one node of a parsed query tree. Trees are immutable once built.
type Node interface {
	isNode()
}

// Term matches documents whose field contains the (already analysed) term.
type Term struct {
	Field string
	Term  string
}

// Or matches documents satisfying any child.
type Or struct {
	Children []Node
}

// And matches documents satisfying every child.
type And struct {
	Children []Node
}

// NumericRange matches documents whose numeric field value lies in
// [Low, High]; a nil bound is open.
type NumericRange struct {
	Field string
	Low   *float64
	High  *float64
}

func (Term) isNode()         {}
func (Or) isNode()           {}
func (And) isNode()          {}
func (NumericRange) isNode() {}

// Query is a parsed query: an optional text tree and an optional spatial
// box. Both nil means a no-op query that matches nothing.
type Query struct {
	Raw     string
	Root    Node
	Spatial *spatial.Box
}

// IsEmpty reports whether the query can match anything at all.
func (q *Query) IsEmpty() bool {
	return q.Root == nil && q.Spatial == nil
}

// Parser builds query trees against one schema, normalising query terms with
// the same analyzer the index was built with.
type Parser struct {
	schema   *schema.Schema
	analyzer analysis.Analyzer
	fields   []string // search fields bare terms expand across
}

// New creates a parser over the schema's search fields: every text field,
// plus every numeric field for tokens that read as numbers.
func New(s *schema.Schema, analyzer analysis.Analyzer) *Parser {
	return &Parser{
		schema:   s,
		analyzer: analyzer,
		fields:   s.SearchFields(),
	}
}

// Parse converts a raw query string into a Query. Malformed input never
// fails hard: the offending clause degrades to nothing and the error (a
// wrapped ErrMalformedQuery) reports what was dropped, alongside a usable,
// possibly empty Query.
func (p *Parser) Parse(raw string) (*Query, error) {
	q := &Query{Raw: raw}
	text := strings.TrimSpace(raw)
	if text == "" {
		return q, nil
	}

	var parseErr error
	if rest, box, err := p.parseSpatialPrefix(text); box != nil || err != nil {
		q.Spatial = box
		text = rest
		parseErr = err
	}

	var nodes []Node
	for _, token := range strings.Fields(text) {
		node, err := p.parseToken(token)
		if err != nil && parseErr == nil {
			parseErr = err
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}
	switch len(nodes) {
	case 0:
	case 1:
		q.Root = nodes[0]
	default:
		q.Root = Or{Children: nodes}
	}
	return q, parseErr
}

// parseSpatialPrefix recognises a leading "spatial W,E,S,N" clause and
// returns the remaining text. A malformed clause is dropped entirely.
func (p *Parser) parseSpatialPrefix(text string) (rest string, box *spatial.Box, err error) {
	head, tail, _ := strings.Cut(text, " ")
	if !strings.EqualFold(head, "spatial") {
		return text, nil, nil
	}
	coords, tail, _ := strings.Cut(strings.TrimSpace(tail), " ")
	parts := strings.Split(coords, ",")
	if len(parts) != 4 {
		return tail, nil, fmt.Errorf("%w: spatial clause needs four comma-separated bounds, got %q",
			gderrors.ErrMalformedQuery, coords)
	}
	bounds := make([]float64, 4)
	for i, part := range parts {
		v, convErr := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if convErr != nil {
			return tail, nil, fmt.Errorf("%w: spatial bound %q is not a number",
				gderrors.ErrMalformedQuery, part)
		}
		bounds[i] = v
	}
	return tail, &spatial.Box{West: bounds[0], East: bounds[1], South: bounds[2], North: bounds[3]}, nil
}

// parseToken compiles one whitespace-delimited token into a node, or nil if
// it analyses away (e.g. a pure stopword).
func (p *Parser) parseToken(token string) (Node, error) {
	if name, value, ok := strings.Cut(token, ":"); ok {
		if field, known := p.schema.Field(name); known {
			switch field.Type {
			case schema.Numeric:
				return p.parseNumeric(name, value)
			case schema.Text:
				return p.termNode([]string{name}, value), nil
			}
			// Identifier/datetime fields are not searchable; fall through to
			// treating the whole token as text.
		}
	}
	return p.termNode(p.fields, token), nil
}

// parseNumeric compiles "lo..hi", "lo..", "..hi", or a single value.
func (p *Parser) parseNumeric(field, value string) (Node, error) {
	lowText, highText, isRange := strings.Cut(value, "..")
	if !isRange {
		highText = lowText
	}
	var low, high *float64
	if lowText != "" {
		v, err := strconv.ParseFloat(lowText, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad lower bound %q for field %s", gderrors.ErrMalformedQuery, lowText, field)
		}
		low = &v
	}
	if highText != "" {
		v, err := strconv.ParseFloat(highText, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad upper bound %q for field %s", gderrors.ErrMalformedQuery, highText, field)
		}
		high = &v
	}
	if low == nil && high == nil {
		return nil, fmt.Errorf("%w: empty range for field %s", gderrors.ErrMalformedQuery, field)
	}
	return NumericRange{Field: field, Low: low, High: high}, nil
}

// termNode analyses raw text and expands the resulting terms across the
// given fields, OR-grouped. A token that parses as a number additionally
// matches each numeric field as an exact value, so a bare "1995" finds
// documents with anyo=1995. Returns nil when everything analyses away.
func (p *Parser) termNode(fields []string, raw string) Node {
	terms := p.analyzer.Analyze(raw)
	number, numErr := strconv.ParseFloat(raw, 64)
	var children []Node
	for _, name := range fields {
		field, _ := p.schema.Field(name)
		if field.Type == schema.Numeric {
			if numErr == nil {
				v := number
				children = append(children, NumericRange{Field: name, Low: &v, High: &v})
			}
			continue
		}
		for _, term := range terms {
			children = append(children, Term{Field: name, Term: term})
		}
	}
	switch len(children) {
	case 0:
		return nil
	case 1:
		return children[0]
	default:
		return Or{Children: children}
	}
}
