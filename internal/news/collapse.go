package news

// CollapseSimilar removes items whose title is at least threshold-similar to
// the title of an earlier surviving item. Removed items never remove others.
//
// The scan is O(n²) in the batch size; callers bound n with the lookback
// window before calling.
func CollapseSimilar(items []Item, threshold float64) ([]Item, int) {
	removed := make(map[int]struct{})

	// Token sets are computed once per item instead of once per pair.
	sets := make([]map[string]struct{}, len(items))
	for i, it := range items {
		if it.Title != "" {
			sets[i] = tokenSet(it.Title)
		}
	}

	for i := 0; i < len(items); i++ {
		if _, gone := removed[i]; gone {
			continue
		}
		for j := i + 1; j < len(items); j++ {
			if _, gone := removed[j]; gone {
				continue
			}
			if jaccard(sets[i], sets[j]) >= threshold {
				removed[j] = struct{}{}
			}
		}
	}

	out := make([]Item, 0, len(items)-len(removed))
	for i, it := range items {
		if _, gone := removed[i]; !gone {
			out = append(out, it)
		}
	}
	return out, len(removed)
}

// jaccard is Similarity over precomputed token sets. A nil set stands for an
// empty title and always scores 0.
func jaccard(left, right map[string]struct{}) float64 {
	if left == nil || right == nil {
		return 0
	}
	intersection := 0
	for w := range left {
		if _, ok := right[w]; ok {
			intersection++
		}
	}
	union := len(left) + len(right) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
