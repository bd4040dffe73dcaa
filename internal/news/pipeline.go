// Package news holds the clipping item model and the cleaning pipeline:
// exact dedup, allow-list, blacklist, near-duplicate collapsing and
// priority ordering. Every stage is a pure function over a slice of items.
package news

import (
	"fmt"
	"math"
)

// DefaultSimilarityThreshold is used when no usable threshold is configured.
const DefaultSimilarityThreshold = 0.7

// Options configures one pipeline run.
type Options struct {
	SimilarityThreshold float64
	PreferredSources    []string // domain substrings, highest priority first
	Blacklist           []string // whole-word title terms, case-insensitive
	AllowListEnabled    bool
	AllowList           []string // link substrings
}

// Threshold returns the similarity threshold clamped to a usable value.
// NaN and non-positive values fall back to the default.
func (o Options) Threshold() float64 {
	t := o.SimilarityThreshold
	switch {
	case math.IsNaN(t) || t <= 0:
		return DefaultSimilarityThreshold
	case t > 1:
		return 1
	}
	return t
}

// Stats counts what each stage removed.
type Stats struct {
	Input          int
	Duplicates     int
	NotAllowed     int
	Blacklisted    int
	NearDuplicates int
	Output         int
}

func (s Stats) String() string {
	return fmt.Sprintf("in=%d duplicates=%d not_allowed=%d blacklisted=%d near_duplicates=%d out=%d",
		s.Input, s.Duplicates, s.NotAllowed, s.Blacklisted, s.NearDuplicates, s.Output)
}

// Clean runs the full pipeline over a batch. An empty result is a normal
// outcome and the caller is expected to skip rendering.
func Clean(items []Item, opts Options) ([]Item, Stats) {
	st := Stats{Input: len(items)}

	out, n := DedupExact(items)
	st.Duplicates = n

	if opts.AllowListEnabled {
		out, n = FilterAllowed(out, opts.AllowList)
		st.NotAllowed = n
	}

	out, n = FilterBlacklist(out, opts.Blacklist)
	st.Blacklisted = n

	out, n = CollapseSimilar(out, opts.Threshold())
	st.NearDuplicates = n

	out = Prioritize(out, opts.PreferredSources)
	st.Output = len(out)

	return out, st
}
