package news

import (
	"testing"
	"time"
)

func TestDedupExact_KeepsFirstOccurrence(t *testing.T) {
	now := time.Now()
	items := []Item{
		{Title: "t1", Link: "l1", Source: "A", PublishedAt: now},
		{Title: "t1", Link: "l1", Source: "B", PublishedAt: now.Add(time.Hour)},
		{Title: "t2", Link: "l2", Source: "C", PublishedAt: now},
	}

	out, removed := DedupExact(items)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if len(out) != 2 {
		t.Fatalf("got %d items, want 2", len(out))
	}
	if out[0].Source != "A" || out[1].Source != "C" {
		t.Errorf("got sources %q,%q, want A,C", out[0].Source, out[1].Source)
	}
}

func TestDedupExact_Idempotent(t *testing.T) {
	items := []Item{
		{Title: "a", Link: "x"},
		{Title: "a", Link: "y"},
		{Title: "b", Link: "x"},
		{Title: "a", Link: "x"},
		{},
		{},
	}

	once, _ := DedupExact(items)
	twice, removed := DedupExact(once)
	if removed != 0 {
		t.Errorf("second pass removed %d items", removed)
	}
	if len(once) != len(twice) {
		t.Fatalf("second pass changed length: %d -> %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("item %d changed: %+v -> %+v", i, once[i], twice[i])
		}
	}
}

func TestDedupExact_EmptyFieldsCollapse(t *testing.T) {
	items := []Item{{Source: "first"}, {Source: "second"}}

	out, removed := DedupExact(items)
	if len(out) != 1 || removed != 1 {
		t.Fatalf("got %d items (%d removed), want 1 (1 removed)", len(out), removed)
	}
	if out[0].Source != "first" {
		t.Errorf("kept %q, want first", out[0].Source)
	}
}

func TestDedupExact_TitleLinkBoundary(t *testing.T) {
	items := []Item{
		{Title: "ab", Link: "c"},
		{Title: "a", Link: "bc"},
	}

	out, _ := DedupExact(items)
	if len(out) != 2 {
		t.Errorf("got %d items, want 2: different title/link pairs must not collide", len(out))
	}
}

func TestDedupExact_Empty(t *testing.T) {
	out, removed := DedupExact(nil)
	if len(out) != 0 || removed != 0 {
		t.Errorf("got %d items, %d removed, want 0, 0", len(out), removed)
	}
}
