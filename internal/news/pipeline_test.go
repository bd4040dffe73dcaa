package news

import (
	"math"
	"testing"
	"time"
)

func TestClean_EndToEnd(t *testing.T) {
	base := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	first := Item{
		Title:       "Petrobras aprova pagamento de dividendos extraordinários",
		Link:        "https://example.com/petrobras",
		Source:      "Exemplo",
		PublishedAt: base,
		Query:       "Petrobras",
	}
	variant := Item{
		Title:       "Banco Central mantém taxa Selic em 10,5% ao ano pela terceira vez seguida",
		Link:        "https://example.com/selic-1",
		PublishedAt: base.Add(time.Hour),
		Query:       "Selic",
	}
	original := Item{
		Title:       "Banco Central mantém taxa Selic em 10,5% ao ano pela terceira vez",
		Link:        "https://example.com/selic-2",
		PublishedAt: base.Add(2 * time.Hour),
		Query:       "Selic",
	}

	items := []Item{first, first, variant, first, original}

	out, st := Clean(items, Options{SimilarityThreshold: 0.7})
	if len(out) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(out), out)
	}
	if out[0] != first || out[1] != variant {
		t.Errorf("got %q,%q, want first and variant in input order", out[0].Link, out[1].Link)
	}

	want := Stats{Input: 5, Duplicates: 2, NearDuplicates: 1, Output: 2}
	if st != want {
		t.Errorf("stats = %+v, want %+v", st, want)
	}
}

func TestClean_AllStages(t *testing.T) {
	base := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	items := []Item{
		{Title: "Dólar fecha em queda", Link: "https://g1.globo.com/1", PublishedAt: base.Add(time.Hour)},
		{Title: "Time vence e esporte comemora", Link: "https://valor.com.br/2", PublishedAt: base},
		{Title: "Ibovespa renova máxima", Link: "https://blog.example.com/3", PublishedAt: base},
		{Title: "Ibovespa sobe forte", Link: "https://valor.com.br/4", PublishedAt: base},
		{Title: "Dólar fecha em queda", Link: "https://g1.globo.com/1", PublishedAt: base.Add(time.Hour)},
	}

	opts := Options{
		SimilarityThreshold: 0.7,
		PreferredSources:    []string{"valor.com.br"},
		Blacklist:           []string{"esporte"},
		AllowListEnabled:    true,
		AllowList:           []string{"valor.com.br", "globo.com"},
	}

	out, st := Clean(items, opts)
	want := Stats{Input: 5, Duplicates: 1, NotAllowed: 1, Blacklisted: 1, Output: 2}
	if st != want {
		t.Errorf("stats = %+v, want %+v", st, want)
	}
	if len(out) != 2 {
		t.Fatalf("got %d items, want 2", len(out))
	}
	if out[0].Link != "https://valor.com.br/4" || out[1].Link != "https://g1.globo.com/1" {
		t.Errorf("got order %q,%q", out[0].Link, out[1].Link)
	}
}

func TestClean_AllowListDisabled(t *testing.T) {
	items := []Item{{Title: "a", Link: "https://example.com"}}
	out, st := Clean(items, Options{AllowList: []string{"valor.com.br"}})
	if len(out) != 1 || st.NotAllowed != 0 {
		t.Errorf("allow-list applied while disabled: %d items, stats %+v", len(out), st)
	}
}

func TestClean_EmptyBatch(t *testing.T) {
	out, st := Clean(nil, Options{})
	if len(out) != 0 {
		t.Errorf("got %d items from empty batch", len(out))
	}
	if st != (Stats{}) {
		t.Errorf("stats = %+v, want zero", st)
	}
}

func TestClean_BlankAllowListKeepsItems(t *testing.T) {
	items := []Item{
		{Title: "Copom mantém Selic", Link: "https://valor.globo.com/a"},
		{Title: "Dólar recua", Link: "https://example.com/b"},
	}
	out, st := Clean(items, Options{AllowListEnabled: true, AllowList: []string{"  ", ""}})
	if st.NotAllowed != 0 || len(out) != 2 {
		t.Errorf("stats = %s, want nothing removed by the allow-list", st)
	}
}

func TestOptions_Threshold(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.7, 0.7},
		{0.5, 0.5},
		{1, 1},
		{0, DefaultSimilarityThreshold},
		{-0.2, DefaultSimilarityThreshold},
		{1.5, 1},
		{math.NaN(), DefaultSimilarityThreshold},
	}
	for _, tt := range tests {
		if got := (Options{SimilarityThreshold: tt.in}).Threshold(); got != tt.want {
			t.Errorf("Threshold(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStats_String(t *testing.T) {
	s := Stats{Input: 5, Duplicates: 2, NearDuplicates: 1, Output: 2}
	want := "in=5 duplicates=2 not_allowed=0 blacklisted=0 near_duplicates=1 out=2"
	if got := s.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
