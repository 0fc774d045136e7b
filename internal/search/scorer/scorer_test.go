package scorer

import (
	"math"
	"testing"
)

// fakeStats is a hand-rolled corpus view with fixed document frequencies.
type fakeStats struct {
	docs    int
	freqs   map[string]int
	lengths map[int]int
	avgLen  float64
}

func (f fakeStats) DocumentCount() int             { return f.docs }
func (f fakeStats) DocFreq(field, term string) int { return f.freqs[field+":"+term] }
func (f fakeStats) DocLength(doc int) int          { return f.lengths[doc] }
func (f fakeStats) AvgDocLength() float64          { return f.avgLen }

func TestTFIDFScore(t *testing.T) {
	stats := fakeStats{
		docs: 10,
		freqs: map[string]int{
			"content:sensor": 2,
			"content:agua":   5,
			"titulo:sensor":  1,
		},
	}
	sc, err := New("tfidf", stats)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cases := []struct {
		name    string
		matches []TermMatch
		want    float64
	}{
		{
			name: "no matches",
			want: 0,
		},
		{
			name:    "single term",
			matches: []TermMatch{{Field: "content", Term: "sensor", Freq: 3}},
			want:    3 * math.Log(10.0/2.0),
		},
		{
			name: "terms accumulate",
			matches: []TermMatch{
				{Field: "content", Term: "sensor", Freq: 1},
				{Field: "content", Term: "agua", Freq: 2},
			},
			want: math.Log(10.0/2.0) + 2*math.Log(10.0/5.0),
		},
		{
			name: "same term in two fields scores per field",
			matches: []TermMatch{
				{Field: "content", Term: "sensor", Freq: 1},
				{Field: "titulo", Term: "sensor", Freq: 1},
			},
			want: math.Log(10.0/2.0) + math.Log(10.0/1.0),
		},
		{
			name:    "unknown term contributes nothing",
			matches: []TermMatch{{Field: "content", Term: "nada", Freq: 4}},
			want:    0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := sc.Score(0, tc.matches)
			if math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("Score = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTFIDFRareTermsScoreHigher(t *testing.T) {
	stats := fakeStats{
		docs: 100,
		freqs: map[string]int{
			"content:raro":  1,
			"content:comun": 90,
		},
	}
	sc, err := New("tfidf", stats)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rare := sc.Score(0, []TermMatch{{Field: "content", Term: "raro", Freq: 1}})
	common := sc.Score(0, []TermMatch{{Field: "content", Term: "comun", Freq: 1}})
	if rare <= common {
		t.Errorf("rare term score %v should beat common term score %v", rare, common)
	}
}

func TestScoreGrowsWithFrequency(t *testing.T) {
	stats := fakeStats{
		docs:    10,
		freqs:   map[string]int{"content:sensor": 3},
		lengths: map[int]int{0: 20},
		avgLen:  20,
	}
	for _, model := range []string{"tfidf", "bm25"} {
		t.Run(model, func(t *testing.T) {
			sc, err := New(model, stats)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			prev := 0.0
			for freq := 1; freq <= 8; freq++ {
				got := sc.Score(0, []TermMatch{{Field: "content", Term: "sensor", Freq: freq}})
				if got < prev {
					t.Fatalf("score dropped from %v to %v at freq %d", prev, got, freq)
				}
				prev = got
			}
		})
	}
}

func TestBM25Score(t *testing.T) {
	stats := fakeStats{
		docs:    10,
		freqs:   map[string]int{"content:sensor": 2},
		lengths: map[int]int{0: 10, 1: 40},
		avgLen:  20,
	}
	sc, err := New("bm25", stats)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	match := []TermMatch{{Field: "content", Term: "sensor", Freq: 2}}
	short := sc.Score(0, match)
	long := sc.Score(1, match)
	if short <= 0 {
		t.Fatalf("score should be positive, got %v", short)
	}
	// Same term frequency in a shorter document is stronger evidence.
	if short <= long {
		t.Errorf("short doc score %v should beat long doc score %v", short, long)
	}

	if got := sc.Score(0, nil); got != 0 {
		t.Errorf("empty match score = %v, want 0", got)
	}
	if got := sc.Score(0, []TermMatch{{Field: "content", Term: "nada", Freq: 1}}); got != 0 {
		t.Errorf("unknown term score = %v, want 0", got)
	}
}

func TestBM25ZeroAvgLength(t *testing.T) {
	stats := fakeStats{docs: 1, freqs: map[string]int{"content:x": 1}}
	sc, err := New("bm25", stats)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := sc.Score(0, []TermMatch{{Field: "content", Term: "x", Freq: 1}})
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Errorf("score with zero average length = %v", got)
	}
}

func TestNewUnknownModel(t *testing.T) {
	if _, err := New("cosine", fakeStats{}); err == nil {
		t.Error("expected error for unknown model")
	}
}

func TestNewDefaultsToTFIDF(t *testing.T) {
	sc, err := New("", fakeStats{docs: 2, freqs: map[string]int{"f:t": 1}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := math.Log(2.0)
	if got := sc.Score(0, []TermMatch{{Field: "f", Term: "t", Freq: 1}}); math.Abs(got-want) > 1e-12 {
		t.Errorf("default model score = %v, want %v", got, want)
	}
}
