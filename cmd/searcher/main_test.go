package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/geodoc-io/geodoc/internal/analysis"
	"github.com/geodoc-io/geodoc/internal/index"
	"github.com/geodoc-io/geodoc/internal/schema"
	"github.com/geodoc-io/geodoc/internal/search/executor"
	"github.com/geodoc-io/geodoc/internal/search/parser"
	"github.com/geodoc-io/geodoc/internal/search/scorer"
)

func interactiveFixture(t *testing.T) (*parser.Parser, *executor.Executor) {
	t.Helper()
	s := schema.DublinCore()
	analyzer := analysis.NewSimple()
	b := index.NewBuilder(s, analyzer)
	if err := b.AddDocument(schema.Record{Fields: map[string]string{
		"path": "10-a.xml", "content": "sensor humedad",
	}}); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	store, err := b.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	sc, err := scorer.New("tfidf", store)
	if err != nil {
		t.Fatalf("scorer.New: %v", err)
	}
	return parser.New(s, analyzer), executor.New(store, sc)
}

func TestRunInteractiveQuitSentinel(t *testing.T) {
	p, exec := interactiveFixture(t)

	in := strings.NewReader("humedad\nq\nhumedad\n")
	var out bytes.Buffer
	runInteractive(p, exec, 0, "full", in, &out)

	// Only the query before "q" runs; the one after is never read.
	if got, want := out.String(), "10-a.xml\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
