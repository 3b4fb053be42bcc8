// Package verses partitions a chapter's citations by the verse they cite.
package verses

import (
	"sort"
	"strconv"

	"github.com/bitflora/patristics-explorer/internal/corpus"
	"github.com/bitflora/patristics-explorer/internal/filter"
)

// WorkLookup resolves work ids. *corpus.Index satisfies it.
type WorkLookup interface {
	Work(id int) (corpus.Work, bool)
}

// Group is the citations sharing one verse key.
type Group struct {
	Key       string
	Citations []corpus.Citation
}

// PrimaryKey derives the grouping key of a verse locator: nil is the whole
// chapter, a range keeps its leading verse ("13-17" → "13"). Locators that
// do not start with a digit are returned unchanged.
func PrimaryKey(locator *string) string {
	if locator == nil {
		return corpus.WholeChapter
	}
	if n := leadingDigits(*locator); n > 0 {
		return (*locator)[:n]
	}
	return *locator
}

// leadingDigits returns the length of the ASCII digit run that starts s.
func leadingDigits(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}

// GroupByVerse partitions citations by PrimaryKey, dropping those whose work
// is unknown or whose work category is not active. Groups are ordered with
// the whole chapter first, then verses numerically, then any opaque keys.
// Citations keep their input order within a group.
func GroupByVerse(citations []corpus.Citation, works WorkLookup, active filter.Categories) []Group {
	byKey := make(map[string][]corpus.Citation)
	for _, c := range citations {
		w, ok := works.Work(c.WorkID)
		if !ok || !active.Has(w.Category) {
			continue
		}
		k := PrimaryKey(c.Verse)
		byKey[k] = append(byKey[k], c)
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	SortKeys(keys)

	out := make([]Group, len(keys))
	for i, k := range keys {
		out[i] = Group{Key: k, Citations: byKey[k]}
	}
	return out
}

// SortKeys orders verse keys: "whole", then numeric keys by value, then
// any remaining keys lexically.
func SortKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		ri, ni := keyRank(keys[i])
		rj, nj := keyRank(keys[j])
		if ri != rj {
			return ri < rj
		}
		if ri == 1 && ni != nj {
			return ni < nj
		}
		return keys[i] < keys[j]
	})
}

func keyRank(k string) (rank int, num uint64) {
	if k == corpus.WholeChapter {
		return 0, 0
	}
	if n, err := strconv.ParseUint(k, 10, 64); err == nil {
		return 1, n
	}
	return 2, 0
}

// Counts returns the number of citations per verse key, for the verse heatmap.
func Counts(groups []Group) map[string]int {
	out := make(map[string]int, len(groups))
	for _, g := range groups {
		out[g.Key] = len(g.Citations)
	}
	return out
}

// Find returns the group for key.
func Find(groups []Group, key string) (Group, bool) {
	for _, g := range groups {
		if g.Key == key {
			return g, true
		}
	}
	return Group{}, false
}
