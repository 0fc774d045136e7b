// Package schema declares the typed field layout an index is created with
// and the raw document records the builder consumes.
package schema

import (
	"fmt"
	"sort"
)

// FieldType classifies how a field is indexed and stored.
type FieldType string

const (
	// Text fields are analysed and indexed as postings.
	Text FieldType = "text"
	// Identifier fields are stored verbatim and act as the document's
	// external key. Exactly one per schema.
	Identifier FieldType = "identifier"
	// Numeric fields are parsed to float64 and indexed for range queries.
	Numeric FieldType = "numeric"
	// Datetime fields are stored verbatim but not searchable.
	Datetime FieldType = "datetime"
)

// Field is one declared slot in the document layout. Default, when set on a
// numeric field, is indexed in place of a missing source value; numeric
// fields without a Default stay absent, which is what the spatial filter
// relies on to tell "no bounding box" from "box at zero".
type Field struct {
	Name    string    `json:"name"`
	Type    FieldType `json:"type"`
	Stored  bool      `json:"stored"`
	Default *float64  `json:"default,omitempty"`
}

// Schema is the ordered, immutable set of field declarations. It is fixed at
// index-creation time; every document indexed must conform to it.
type Schema struct {
	fields []Field
	byName map[string]int
}

// New validates the declarations and builds a Schema. Exactly one Identifier
// field is required; identifier and datetime fields are always stored.
func New(fields ...Field) (*Schema, error) {
	byName := make(map[string]int, len(fields))
	identifiers := 0
	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("field %d has no name", i)
		}
		if _, dup := byName[f.Name]; dup {
			return nil, fmt.Errorf("duplicate field %q", f.Name)
		}
		switch f.Type {
		case Text, Numeric:
		case Identifier:
			identifiers++
			fields[i].Stored = true
		case Datetime:
			fields[i].Stored = true
		default:
			return nil, fmt.Errorf("field %q has unknown type %q", f.Name, f.Type)
		}
		byName[f.Name] = i
	}
	if identifiers != 1 {
		return nil, fmt.Errorf("schema needs exactly one identifier field, got %d", identifiers)
	}
	return &Schema{fields: fields, byName: byName}, nil
}

// Fields returns the declarations in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks up a declaration by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// IdentifierField returns the single identifier declaration.
func (s *Schema) IdentifierField() Field {
	for _, f := range s.fields {
		if f.Type == Identifier {
			return f
		}
	}
	// New guarantees one exists.
	panic("schema without identifier field")
}

// TextFields returns the names of all analysed fields, in declaration order.
func (s *Schema) TextFields() []string {
	return s.names(Text)
}

// NumericFields returns the names of all numeric fields, in declaration order.
func (s *Schema) NumericFields() []string {
	return s.names(Numeric)
}

// StoredFields returns the names of all stored fields, in declaration order.
func (s *Schema) StoredFields() []string {
	var out []string
	for _, f := range s.fields {
		if f.Stored {
			out = append(out, f.Name)
		}
	}
	return out
}

// SearchFields returns the field names the multi-field parser targets by
// default: every text and numeric field.
func (s *Schema) SearchFields() []string {
	var out []string
	for _, f := range s.fields {
		if f.Type == Text || f.Type == Numeric {
			out = append(out, f.Name)
		}
	}
	return out
}

func (s *Schema) names(t FieldType) []string {
	var out []string
	for _, f := range s.fields {
		if f.Type == t {
			out = append(out, f.Name)
		}
	}
	return out
}

// Record is one raw document as delivered by a source collaborator: field
// name to raw string value. Absent fields are simply missing keys; numeric
// parsing and analysis happen in the builder.
type Record struct {
	Fields map[string]string
}

// FieldNames returns the record's keys sorted, for deterministic reporting.
func (r Record) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DublinCore returns the default schema for Dublin-Core metadata collections:
// a stored path identifier, the analysed metadata fields plus a catch-all
// content field, a year, and the four stored bounding-box coordinates.
func DublinCore() *Schema {
	s, err := New(
		Field{Name: "path", Type: Identifier},
		Field{Name: "autor", Type: Text},
		Field{Name: "director", Type: Text},
		Field{Name: "departamento", Type: Text},
		Field{Name: "titulo", Type: Text},
		Field{Name: "descripcion", Type: Text},
		Field{Name: "subject", Type: Text},
		Field{Name: "content", Type: Text},
		Field{Name: "anyo", Type: Numeric, Default: zero()},
		Field{Name: "west", Type: Numeric, Stored: true},
		Field{Name: "east", Type: Numeric, Stored: true},
		Field{Name: "south", Type: Numeric, Stored: true},
		Field{Name: "north", Type: Numeric, Stored: true},
		Field{Name: "modified", Type: Datetime},
	)
	if err != nil {
		panic(err)
	}
	return s
}

func zero() *float64 {
	z := 0.0
	return &z
}

// PlainText returns the schema used for free-text collections: a stored path
// identifier, one catch-all content field, and the file modification time.
func PlainText() *Schema {
	s, err := New(
		Field{Name: "path", Type: Identifier},
		Field{Name: "content", Type: Text},
		Field{Name: "modified", Type: Datetime},
	)
	if err != nil {
		panic(err)
	}
	return s
}
