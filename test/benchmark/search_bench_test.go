package benchmark

import (
	"testing"

	"github.com/geodoc-io/geodoc/internal/analysis"
	"github.com/geodoc-io/geodoc/internal/schema"
	"github.com/geodoc-io/geodoc/internal/search/executor"
	"github.com/geodoc-io/geodoc/internal/search/parser"
	"github.com/geodoc-io/geodoc/internal/search/scorer"
)

func searchFixture(b *testing.B) (*parser.Parser, *executor.Executor) {
	b.Helper()
	store := buildCorpus(b, 1000)
	analyzer, err := analysis.NewLanguage("spanish")
	if err != nil {
		b.Fatalf("analyzer: %v", err)
	}
	sc, err := scorer.New("tfidf", store)
	if err != nil {
		b.Fatalf("scorer: %v", err)
	}
	return parser.New(schema.DublinCore(), analyzer), executor.New(store, sc)
}

func BenchmarkSearch(b *testing.B) {
	p, e := searchFixture(b)

	queries := map[string]string{
		"single_term":  "humedad",
		"multi_term":   "sensores humedad riego",
		"field_scoped": "titulo:sensores",
		"range":        "anyo:1995..2005",
		"spatial":      "spatial -2,0,40,43",
		"combined":     "spatial -2,0,40,43 sensores humedad",
	}
	for name, raw := range queries {
		b.Run(name, func(b *testing.B) {
			q, err := p.Parse(raw)
			if err != nil {
				b.Fatalf("Parse(%q): %v", raw, err)
			}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				results := e.Execute(q, 10)
				_ = results
			}
		})
	}
}

func BenchmarkParse(b *testing.B) {
	p, _ := searchFixture(b)
	raw := "spatial -2,0,40,43 titulo:sensores anyo:1995..2005 humedad"
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q, err := p.Parse(raw)
		if err != nil {
			b.Fatal(err)
		}
		_ = q
	}
}
