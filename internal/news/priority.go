package news

import (
	"sort"
	"strings"
)

// priorityScore gives 100 minus the index of the first preferred substring
// found in link, or 0 when none matches. Matching is plain containment like
// FilterAllowed; blank entries are skipped instead of matching every link,
// but still hold their index.
func priorityScore(link string, preferred []string) int {
	for i, dom := range preferred {
		if dom != "" && strings.Contains(link, dom) {
			return 100 - i
		}
	}
	return 0
}

// Prioritize orders items by preferred source first and recency second.
// The sort is stable, so ties keep their incoming order. With no preferred
// sources the items come back in the same order.
func Prioritize(items []Item, preferred []string) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	if len(preferred) == 0 {
		return out
	}

	type ranked struct {
		item  Item
		score int
	}
	rs := make([]ranked, len(out))
	for i, it := range out {
		rs[i] = ranked{item: it, score: priorityScore(it.Link, preferred)}
	}

	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].score != rs[j].score {
			return rs[i].score > rs[j].score // preferred sources first
		}
		return rs[i].item.PublishedAt.After(rs[j].item.PublishedAt) // newest first
	})

	for i, r := range rs {
		out[i] = r.item
	}
	return out
}
