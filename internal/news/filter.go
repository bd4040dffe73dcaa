package news

import (
	"regexp"
	"strings"
	"time"
)

// FilterAllowed keeps only items whose link contains at least one of the
// allowed substrings. Matching is plain case-sensitive containment, not a
// parsed domain comparison, so "g1.globo.com" also matches
// "g1.globo.com.evil.example". Blank entries are ignored; a list with no
// usable entry keeps everything.
func FilterAllowed(items []Item, allow []string) ([]Item, int) {
	doms := make([]string, 0, len(allow))
	for _, dom := range allow {
		if dom = strings.TrimSpace(dom); dom != "" {
			doms = append(doms, dom)
		}
	}
	if len(doms) == 0 {
		return items, 0
	}

	out := make([]Item, 0, len(items))
	for _, it := range items {
		for _, dom := range doms {
			if strings.Contains(it.Link, dom) {
				out = append(out, it)
				break
			}
		}
	}
	return out, len(items) - len(out)
}

// wordPattern builds a case-insensitive whole-word matcher with Unicode
// word boundaries (\b is ASCII-only).
func wordPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])` + regexp.QuoteMeta(term) + `(?:$|[^\p{L}\p{N}_])`)
}

// Blacklist matches titles against whole-word terms.
type Blacklist struct {
	patterns []*regexp.Regexp
}

// NewBlacklist compiles terms once. Blank terms are ignored.
func NewBlacklist(terms []string) *Blacklist {
	bl := &Blacklist{}
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		bl.patterns = append(bl.patterns, wordPattern(t))
	}
	return bl
}

// Matches reports whether title contains any blacklisted term as a whole word.
func (bl *Blacklist) Matches(title string) bool {
	if title == "" {
		return false
	}
	for _, re := range bl.patterns {
		if re.MatchString(title) {
			return true
		}
	}
	return false
}

// FilterBlacklist removes items whose title contains a blacklisted term.
func FilterBlacklist(items []Item, terms []string) ([]Item, int) {
	bl := NewBlacklist(terms)
	if len(bl.patterns) == 0 {
		return items, 0
	}

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if !bl.Matches(it.Title) {
			out = append(out, it)
		}
	}
	return out, len(items) - len(out)
}

// Since keeps items published at or after cutoff.
func Since(items []Item, cutoff time.Time) ([]Item, int) {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if !it.PublishedAt.Before(cutoff) {
			out = append(out, it)
		}
	}
	return out, len(items) - len(out)
}
