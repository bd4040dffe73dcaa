package news

import (
	"testing"
	"time"
)

func TestPrioritize_PreferredSourcesFirst(t *testing.T) {
	base := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	items := []Item{
		{Title: "none-new", Link: "https://g1.globo.com/x", PublishedAt: base.Add(3 * time.Hour)},
		{Title: "infomoney", Link: "https://www.infomoney.com.br/y", PublishedAt: base.Add(2 * time.Hour)},
		{Title: "none-old", Link: "https://estadao.com.br/z", PublishedAt: base},
		{Title: "valor", Link: "https://valor.com.br/w", PublishedAt: base.Add(-24 * time.Hour)},
	}

	out := Prioritize(items, []string{"valor.com.br", "infomoney.com.br"})
	want := []string{"valor", "infomoney", "none-new", "none-old"}
	if len(out) != len(want) {
		t.Fatalf("got %d items, want %d", len(out), len(want))
	}
	for i, w := range want {
		if out[i].Title != w {
			t.Errorf("position %d: got %q, want %q", i, out[i].Title, w)
		}
	}
}

func TestPrioritize_RecencyWithinSameSource(t *testing.T) {
	base := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	items := []Item{
		{Title: "older", Link: "https://valor.com.br/1", PublishedAt: base},
		{Title: "newer", Link: "https://valor.com.br/2", PublishedAt: base.Add(time.Hour)},
	}

	out := Prioritize(items, []string{"valor.com.br"})
	if out[0].Title != "newer" || out[1].Title != "older" {
		t.Errorf("got %q,%q, want newer,older", out[0].Title, out[1].Title)
	}
}

func TestPrioritize_StableOnTies(t *testing.T) {
	ts := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	items := []Item{
		{Title: "a", Link: "https://x.com", PublishedAt: ts},
		{Title: "b", Link: "https://y.com", PublishedAt: ts},
		{Title: "c", Link: "https://z.com", PublishedAt: ts},
	}

	out := Prioritize(items, []string{"valor.com.br"})
	for i, w := range []string{"a", "b", "c"} {
		if out[i].Title != w {
			t.Errorf("position %d: got %q, want %q", i, out[i].Title, w)
		}
	}
}

func TestPrioritize_EmptyListIsIdentity(t *testing.T) {
	base := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	items := []Item{
		{Title: "old", PublishedAt: base},
		{Title: "new", PublishedAt: base.Add(time.Hour)},
	}

	out := Prioritize(items, nil)
	if out[0].Title != "old" || out[1].Title != "new" {
		t.Errorf("empty preference list reordered items: %q,%q", out[0].Title, out[1].Title)
	}
}

func TestPriorityScore(t *testing.T) {
	prefs := []string{"valor.com.br", "infomoney.com.br"}
	tests := []struct {
		link string
		want int
	}{
		{"https://valor.com.br/a", 100},
		{"https://infomoney.com.br/a", 99},
		{"https://example.com", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := priorityScore(tt.link, prefs); got != tt.want {
			t.Errorf("priorityScore(%q) = %d, want %d", tt.link, got, tt.want)
		}
	}
}

func TestPriorityScore_BlankEntry(t *testing.T) {
	prefs := []string{"", "valor.com.br"}
	if got := priorityScore("https://example.com/x", prefs); got != 0 {
		t.Errorf("blank preference matched: score %d, want 0", got)
	}
	if got := priorityScore("https://valor.com.br/x", prefs); got != 99 {
		t.Errorf("score = %d, want 99", got)
	}
}
