// Package filter recomputes citation counts for an active set of author
// categories from the index's per-category counts, without touching the
// citations themselves.
package filter

import (
	"sort"

	"github.com/bitflora/patristics-explorer/internal/corpus"
)

// Categories is an immutable set of active author categories.
type Categories struct {
	set map[string]struct{}
}

// NewCategories builds a set from names. Duplicates collapse.
func NewCategories(names ...string) Categories {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return Categories{set: set}
}

// All returns a set holding every category of the index.
func All(idx *corpus.Index) Categories {
	return NewCategories(idx.Categories()...)
}

// Has reports whether category is active.
func (c Categories) Has(category string) bool {
	_, ok := c.set[category]
	return ok
}

// Len returns the number of active categories.
func (c Categories) Len() int { return len(c.set) }

// Slice returns the active categories sorted.
func (c Categories) Slice() []string {
	out := make([]string, 0, len(c.set))
	for k := range c.set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// With returns a copy of the set with category toggled on or off.
func (c Categories) With(category string, on bool) Categories {
	next := make(map[string]struct{}, len(c.set)+1)
	for k := range c.set {
		next[k] = struct{}{}
	}
	if on {
		next[category] = struct{}{}
	} else {
		delete(next, category)
	}
	return Categories{set: next}
}

// FilteredCount sums the chapter's counts for the active categories.
// Count-only chapters carry no breakdown and always report their total.
func FilteredCount(ch corpus.Chapter, active Categories) int {
	switch c := ch.(type) {
	case corpus.CategorizedChapter:
		n := 0
		for cat := range active.set {
			n += c.Count(cat)
		}
		return n
	case corpus.CountOnlyChapter:
		return c.Count
	default:
		return 0
	}
}

// ChapterCounts returns the filtered count of each chapter of b, in chapter order.
func ChapterCounts(b corpus.Book, active Categories) []int {
	chs := b.Chapters()
	out := make([]int, len(chs))
	for i, ch := range chs {
		out[i] = FilteredCount(ch, active)
	}
	return out
}

// BookCount sums the filtered counts of every chapter of b.
func BookCount(b corpus.Book, active Categories) int {
	n := 0
	for _, ch := range b.Chapters() {
		n += FilteredCount(ch, active)
	}
	return n
}

// BookCounts returns the filtered count of every book of idx, in canonical order.
func BookCounts(idx *corpus.Index, active Categories) []int {
	books := idx.Books()
	out := make([]int, len(books))
	for i, b := range books {
		out[i] = BookCount(b, active)
	}
	return out
}

// GlobalCount sums the filtered counts over the whole index.
func GlobalCount(idx *corpus.Index, active Categories) int {
	n := 0
	for _, c := range BookCounts(idx, active) {
		n += c
	}
	return n
}

// CategoryCount is one slice of the category breakdown.
type CategoryCount struct {
	Category string
	Count    int
}

// CategoryTotals sums each category across every categorized chapter of the
// index, largest first and then by name. Count-only chapters have no
// breakdown to attribute and are left out.
func CategoryTotals(idx *corpus.Index) []CategoryCount {
	sums := make(map[string]int)
	for _, b := range idx.Books() {
		for _, ch := range b.Chapters() {
			if cc, ok := ch.(corpus.CategorizedChapter); ok {
				for cat, n := range cc.Counts() {
					sums[cat] += n
				}
			}
		}
	}
	out := make([]CategoryCount, 0, len(sums))
	for cat, n := range sums {
		out = append(out, CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}
