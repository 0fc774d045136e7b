package index

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/geodoc-io/geodoc/internal/analysis"
	"github.com/geodoc-io/geodoc/internal/schema"
)

func rangeTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := schema.New(
		schema.Field{Name: "path", Type: schema.Identifier},
		schema.Field{Name: "anyo", Type: schema.Numeric},
	)
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	b := NewBuilder(s, analysis.NewSimple())
	years := []string{"1990", "1995", "", "2000", "2005"}
	for i, year := range years {
		rec := schema.Record{Fields: map[string]string{"path": string(rune('a' + i))}}
		if year != "" {
			rec.Fields["anyo"] = year
		}
		if err := b.AddDocument(rec); err != nil {
			t.Fatalf("AddDocument: %v", err)
		}
	}
	store, err := b.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return store
}

func TestRangeScan(t *testing.T) {
	store := rangeTestStore(t)

	cases := []struct {
		name      string
		low, high *float64
		want      []int
	}{
		{name: "closed range", low: ptr(1990), high: ptr(2000), want: []int{0, 1, 3}},
		{name: "open low", high: ptr(1995), want: []int{0, 1}},
		{name: "open high", low: ptr(2000), want: []int{3, 4}},
		{name: "both open", want: []int{0, 1, 3, 4}},
		{name: "degenerate", low: ptr(1995), high: ptr(1995), want: []int{1}},
		{name: "no match", low: ptr(2100), high: ptr(2200), want: nil},
		{name: "inverted bounds", low: ptr(2000), high: ptr(1990), want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := store.RangeScan("anyo", tc.low, tc.high)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("RangeScan mismatch (-want +got):\n%s", diff)
			}
		})
	}

	// Doc 2 has no year at all; it must never match any range, open
	// bounds included.
	for _, doc := range store.RangeScan("anyo", nil, nil) {
		if doc == 2 {
			t.Error("document without a value matched an open range")
		}
	}
	if got := store.RangeScan("unknown", nil, nil); got != nil {
		t.Errorf("RangeScan on unknown field = %v, want nil", got)
	}
}

func TestStoreRoundTripTables(t *testing.T) {
	store := rangeTestStore(t)
	reopened := NewStore(store.Schema(), store.Tables())

	if got, want := reopened.DocumentCount(), store.DocumentCount(); got != want {
		t.Errorf("DocumentCount = %d, want %d", got, want)
	}
	if diff := cmp.Diff(
		store.RangeScan("anyo", ptr(1990), ptr(2000)),
		reopened.RangeScan("anyo", ptr(1990), ptr(2000)),
	); diff != "" {
		t.Errorf("RangeScan after table round trip mismatch:\n%s", diff)
	}
}

func TestAvgDocLengthEmpty(t *testing.T) {
	s, err := schema.New(schema.Field{Name: "path", Type: schema.Identifier})
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	b := NewBuilder(s, analysis.NewSimple())
	store, err := b.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if got := store.AvgDocLength(); got != 0 {
		t.Errorf("AvgDocLength of empty index = %v, want 0", got)
	}
}
