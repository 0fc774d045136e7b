package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/geodoc-io/geodoc/internal/analysis"
	"github.com/geodoc-io/geodoc/internal/schema"
	"github.com/geodoc-io/geodoc/internal/search/spatial"
	gderrors "github.com/geodoc-io/geodoc/pkg/errors"
)

func testParser(t *testing.T) *Parser {
	t.Helper()
	s, err := schema.New(
		schema.Field{Name: "path", Type: schema.Identifier},
		schema.Field{Name: "titulo", Type: schema.Text},
		schema.Field{Name: "content", Type: schema.Text},
		schema.Field{Name: "anyo", Type: schema.Numeric},
		schema.Field{Name: "modified", Type: schema.Datetime},
	)
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	return New(s, analysis.NewSimple())
}

func TestParse(t *testing.T) {
	p := testParser(t)

	cases := []struct {
		name        string
		raw         string
		wantRoot    Node
		wantSpatial *spatial.Box
		wantErr     error
	}{
		{
			name: "empty",
			raw:  "   ",
		},
		{
			name: "bare term expands across text fields",
			raw:  "sensor",
			wantRoot: Or{Children: []Node{
				Term{Field: "titulo", Term: "sensor"},
				Term{Field: "content", Term: "sensor"},
			}},
		},
		{
			name: "two bare terms are disjunctive",
			raw:  "sensor agua",
			wantRoot: Or{Children: []Node{
				Or{Children: []Node{
					Term{Field: "titulo", Term: "sensor"},
					Term{Field: "content", Term: "sensor"},
				}},
				Or{Children: []Node{
					Term{Field: "titulo", Term: "agua"},
					Term{Field: "content", Term: "agua"},
				}},
			}},
		},
		{
			// Bare numbers search year values too, not just the text that
			// happens to contain the digits.
			name: "numeric bare term also targets numeric fields",
			raw:  "1995",
			wantRoot: Or{Children: []Node{
				Term{Field: "titulo", Term: "1995"},
				Term{Field: "content", Term: "1995"},
				NumericRange{Field: "anyo", Low: ptr(1995), High: ptr(1995)},
			}},
		},
		{
			name:     "field-qualified term",
			raw:      "titulo:sensor",
			wantRoot: Term{Field: "titulo", Term: "sensor"},
		},
		{
			name:     "closed numeric range",
			raw:      "anyo:1990..2000",
			wantRoot: NumericRange{Field: "anyo", Low: ptr(1990), High: ptr(2000)},
		},
		{
			name:     "open low range",
			raw:      "anyo:..2000",
			wantRoot: NumericRange{Field: "anyo", High: ptr(2000)},
		},
		{
			name:     "open high range",
			raw:      "anyo:1990..",
			wantRoot: NumericRange{Field: "anyo", Low: ptr(1990)},
		},
		{
			name:     "single year degenerates to a range",
			raw:      "anyo:1995",
			wantRoot: NumericRange{Field: "anyo", Low: ptr(1995), High: ptr(1995)},
		},
		{
			name:    "bad numeric bound degrades to nothing",
			raw:     "anyo:abc",
			wantErr: gderrors.ErrMalformedQuery,
		},
		{
			name:    "empty range is malformed",
			raw:     "anyo:..",
			wantErr: gderrors.ErrMalformedQuery,
		},
		{
			name: "unknown field prefix is plain text",
			raw:  "foo:bar",
			wantRoot: Or{Children: []Node{
				Term{Field: "titulo", Term: "foo"},
				Term{Field: "titulo", Term: "bar"},
				Term{Field: "content", Term: "foo"},
				Term{Field: "content", Term: "bar"},
			}},
		},
		{
			name:        "spatial only",
			raw:         "spatial -2.5,1.0,40.0,44.0",
			wantSpatial: &spatial.Box{West: -2.5, East: 1.0, South: 40.0, North: 44.0},
		},
		{
			name: "spatial with text",
			raw:  "spatial -2,1,40,44 sensor",
			wantRoot: Or{Children: []Node{
				Term{Field: "titulo", Term: "sensor"},
				Term{Field: "content", Term: "sensor"},
			}},
			wantSpatial: &spatial.Box{West: -2, East: 1, South: 40, North: 44},
		},
		{
			name:    "spatial with too few bounds",
			raw:     "spatial -2,1,40",
			wantErr: gderrors.ErrMalformedQuery,
		},
		{
			name: "malformed spatial keeps the text clause",
			raw:  "spatial -2,oops,40,44 sensor",
			wantRoot: Or{Children: []Node{
				Term{Field: "titulo", Term: "sensor"},
				Term{Field: "content", Term: "sensor"},
			}},
			wantErr: gderrors.ErrMalformedQuery,
		},
		{
			name:     "case-insensitive spatial keyword",
			raw:      "SPATIAL -2,1,40,44 titulo:sensor",
			wantRoot: Term{Field: "titulo", Term: "sensor"},
			wantSpatial: &spatial.Box{
				West: -2, East: 1, South: 40, North: 44,
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := p.Parse(tc.raw)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tc.raw, err, tc.wantErr)
				}
			} else if err != nil {
				t.Fatalf("Parse(%q): %v", tc.raw, err)
			}
			if q == nil {
				t.Fatal("Parse returned nil query")
			}
			if diff := cmp.Diff(tc.wantRoot, q.Root); diff != "" {
				t.Errorf("Parse(%q) root mismatch (-want +got):\n%s", tc.raw, diff)
			}
			if diff := cmp.Diff(tc.wantSpatial, q.Spatial); diff != "" {
				t.Errorf("Parse(%q) spatial mismatch (-want +got):\n%s", tc.raw, diff)
			}
		})
	}
}

func TestParseNeverReturnsNilQuery(t *testing.T) {
	p := testParser(t)
	inputs := []string{"", "anyo:abc", "spatial oops", "spatial", "   :   "}
	for _, raw := range inputs {
		q, _ := p.Parse(raw)
		if q == nil {
			t.Errorf("Parse(%q) returned nil query", raw)
		}
	}
}

func TestParseEmptyQueryIsEmpty(t *testing.T) {
	p := testParser(t)
	q, err := p.Parse("anyo:abc")
	if !errors.Is(err, gderrors.ErrMalformedQuery) {
		t.Fatalf("error = %v, want ErrMalformedQuery", err)
	}
	if !q.IsEmpty() {
		t.Error("fully malformed query should be empty")
	}
}

func ptr(v float64) *float64 { return &v }
