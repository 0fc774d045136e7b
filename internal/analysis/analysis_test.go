package analysis

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestWordTokenizer(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name: "single word",
			text: "sensor",
			want: []string{"sensor"},
		},
		{
			name: "punctuation is a delimiter",
			text: "red, de sensores; (remota)",
			want: []string{"red", "de", "sensores", "remota"},
		},
		{
			name: "digits and underscore stay inside tokens",
			text: "modelo_3 año 1995",
			want: []string{"modelo_3", "año", "1995"},
		},
		{
			name: "only delimiters",
			text: "... --- !!!",
			want: nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := WordTokenizer{}.Tokenize(tc.text)
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tc.text, diff)
			}
		})
	}
}

func TestChainSpanish(t *testing.T) {
	analyzer, err := NewLanguage("spanish")
	if err != nil {
		t.Fatalf("NewLanguage(spanish): %v", err)
	}

	cases := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name: "stopwords drop out",
			text: "la red de el agua",
			want: []string{"red", "agu"},
		},
		{
			name: "uppercase stopwords drop out too",
			text: "La Red DE Sensores",
			want: []string{"red", "sensor"},
		},
		{
			name: "suffixes are stemmed",
			text: "universidad trabajando",
			want: []string{"univers", "trabaj"},
		},
		{
			name: "only stopwords leave nothing",
			text: "de la los en",
			want: nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := analyzer.Analyze(tc.text)
			if len(tc.want) == 0 && len(got) == 0 {
				return
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Analyze(%q) mismatch (-want +got):\n%s", tc.text, diff)
			}
		})
	}
}

// Stemming an already-analysed stream must be a fixed point, or index terms
// and query terms would drift apart.
func TestChainIdempotent(t *testing.T) {
	analyzer, err := NewLanguage("spanish")
	if err != nil {
		t.Fatalf("NewLanguage(spanish): %v", err)
	}
	texts := []string{
		"sensores humedad temperatura",
		"universidad de zaragoza",
		"trabajando con redes remotas",
	}
	for _, text := range texts {
		once := analyzer.Analyze(text)
		for _, term := range once {
			again := analyzer.Analyze(term)
			if len(again) != 1 || again[0] != term {
				t.Errorf("Analyze(%q) is not stable: got %v", term, again)
			}
		}
	}
}

func TestSnowballStemFilterFixedPoint(t *testing.T) {
	f, err := NewSnowballStemFilter("spanish")
	if err != nil {
		t.Fatalf("NewSnowballStemFilter: %v", err)
	}
	// "humedad" needs two stemmer passes to settle.
	words := []string{"humedad", "temperatura", "universidad", "sensores", "riego"}
	once := f.Filter(words)
	again := f.Filter(once)
	if diff := cmp.Diff(once, again); diff != "" {
		t.Errorf("re-stemming changed terms (-once +again):\n%s", diff)
	}
}

func TestNewSimple(t *testing.T) {
	analyzer := NewSimple()
	got := analyzer.Analyze("La Red DE Sensores")
	want := []string{"la", "red", "de", "sensores"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("simple analyzer mismatch (-want +got):\n%s", diff)
	}
}

func TestNewVariantSelection(t *testing.T) {
	cases := []struct {
		name     string
		variant  string
		language string
		wantErr  bool
	}{
		{name: "default is chain", variant: "", language: "spanish"},
		{name: "explicit chain", variant: "chain", language: "english"},
		{name: "simple ignores language", variant: "simple", language: "klingon"},
		{name: "unknown variant", variant: "fancy", language: "spanish", wantErr: true},
		{name: "unknown language", variant: "chain", language: "klingon", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			analyzer, err := New(tc.variant, tc.language)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("New(%q, %q) expected error", tc.variant, tc.language)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q, %q): %v", tc.variant, tc.language, err)
			}
			if analyzer == nil {
				t.Fatalf("New(%q, %q) returned nil analyzer", tc.variant, tc.language)
			}
		})
	}
}

func TestStopWordFilterUnknownLanguage(t *testing.T) {
	if _, err := NewStopWordFilter("klingon"); err == nil {
		t.Error("expected error for unknown stopword language")
	}
}
