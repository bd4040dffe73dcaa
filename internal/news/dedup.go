package news

import (
	"crypto/sha1"
	"encoding/hex"
)

// makeNewsKey generates a hash key from title and link for exact deduplication.
// The NUL separator keeps ("ab", "c") and ("a", "bc") apart.
func makeNewsKey(title, link string) string {
	h := sha1.New()
	h.Write([]byte(title))
	h.Write([]byte{0})
	h.Write([]byte(link))
	return hex.EncodeToString(h.Sum(nil))
}

// DedupExact drops items whose (title, link) pair was already seen.
// The first occurrence wins and the relative order is kept.
func DedupExact(items []Item) ([]Item, int) {
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))

	for _, it := range items {
		key := makeNewsKey(it.Title, it.Link)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}

	return out, len(items) - len(out)
}
