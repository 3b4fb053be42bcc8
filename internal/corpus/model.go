// Package corpus holds the immutable in-memory index of the citation corpus
// and the adapters that load it, and its paged-in detail, from the builder's
// outputs.
package corpus

import (
	"fmt"
	"sort"
	"strings"
)

// OtherCategory is assigned to works whose category is missing.
const OtherCategory = "Other"

// WholeChapter is the verse key used for citations of a whole chapter.
const WholeChapter = "whole"

// Work is an authored manuscript in the corpus.
type Work struct {
	ID       int
	Author   string
	Title    string
	Year     *int
	Category string
	RefCount *int
	Link     string
}

// Dated reports whether the work carries a year.
func (w Work) Dated() bool { return w.Year != nil }

// Chapter is a chapter entry of the index. It is either a CategorizedChapter
// or, for indexes written before categories existed, a CountOnlyChapter.
type Chapter interface {
	Number() int
	Total() int
	isChapter()
}

// CategorizedChapter carries per-category citation counts.
type CategorizedChapter struct {
	Num    int
	counts map[string]int
}

// NewCategorizedChapter copies counts; non-positive entries are dropped.
func NewCategorizedChapter(num int, counts map[string]int) CategorizedChapter {
	c := make(map[string]int, len(counts))
	for k, v := range counts {
		if v > 0 {
			c[k] = v
		}
	}
	return CategorizedChapter{Num: num, counts: c}
}

func (c CategorizedChapter) Number() int { return c.Num }

// Total is the sum of the per-category counts.
func (c CategorizedChapter) Total() int {
	n := 0
	for _, v := range c.counts {
		n += v
	}
	return n
}

// Count returns the count for a single category.
func (c CategorizedChapter) Count(category string) int { return c.counts[category] }

// Counts returns a copy of the per-category counts.
func (c CategorizedChapter) Counts() map[string]int {
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

func (CategorizedChapter) isChapter() {}

// CountOnlyChapter is a legacy chapter entry with only a total.
type CountOnlyChapter struct {
	Num   int
	Count int
}

func (c CountOnlyChapter) Number() int { return c.Num }
func (c CountOnlyChapter) Total() int  { return c.Count }
func (CountOnlyChapter) isChapter()    {}

// Book is a bible book present in the index together with its cited chapters.
type Book struct {
	Slug     string
	Name     string
	Order    int
	chapters []Chapter
}

// NewBook builds a book, rejecting duplicate chapter numbers. Chapters are
// kept in ascending number order.
func NewBook(slug, name string, order int, chapters []Chapter) (Book, error) {
	seen := make(map[int]bool, len(chapters))
	chs := make([]Chapter, 0, len(chapters))
	for _, ch := range chapters {
		if seen[ch.Number()] {
			return Book{}, fmt.Errorf("book %s: duplicate chapter %d", slug, ch.Number())
		}
		seen[ch.Number()] = true
		chs = append(chs, ch)
	}
	sort.SliceStable(chs, func(i, j int) bool { return chs[i].Number() < chs[j].Number() })
	return Book{Slug: slug, Name: name, Order: order, chapters: chs}, nil
}

// Chapters returns the book's chapters in ascending order.
func (b Book) Chapters() []Chapter {
	out := make([]Chapter, len(b.chapters))
	copy(out, b.chapters)
	return out
}

// Chapter returns the chapter with the given number.
func (b Book) Chapter(num int) (Chapter, bool) {
	for _, ch := range b.chapters {
		if ch.Number() == num {
			return ch, true
		}
	}
	return nil, false
}

// Citation is one occurrence of a work referencing a scripture locator.
// Verse is nil for whole-chapter citations, otherwise "7" or "13-17".
type Citation struct {
	WorkID    int
	Verse     *string
	PassageID string
}

// ChapterDetail is the paged-in citation list of one chapter.
type ChapterDetail struct {
	Book      string
	Chapter   int
	Citations []Citation
}

// WorkRef is one citation made by a work, located by book and chapter.
type WorkRef struct {
	BookSlug string
	Chapter  int
	Verse    *string
}

// WorkDetail is the paged-in citation list of one work.
type WorkDetail struct {
	WorkID int
	Refs   []WorkRef
}

// ChapterKey identifies a distinct (book slug, chapter) pair.
type ChapterKey struct {
	Slug    string
	Chapter int
}

func (k ChapterKey) String() string { return fmt.Sprintf("%s/%d", k.Slug, k.Chapter) }

// Index is the immutable corpus index: books in canonical order plus works.
type Index struct {
	books      []Book
	bookBySlug map[string]int
	works      map[int]Work
	workOrder  []int
	categories []string
}

// NewIndex assembles an index. Books are ordered by their canonical order;
// works missing a category are assigned OtherCategory.
func NewIndex(books []Book, works []Work) (*Index, error) {
	idx := &Index{
		books:      make([]Book, len(books)),
		bookBySlug: make(map[string]int, len(books)),
		works:      make(map[int]Work, len(works)),
	}
	copy(idx.books, books)
	sort.SliceStable(idx.books, func(i, j int) bool { return idx.books[i].Order < idx.books[j].Order })
	for i, b := range idx.books {
		if _, dup := idx.bookBySlug[b.Slug]; dup {
			return nil, fmt.Errorf("duplicate book %s", b.Slug)
		}
		idx.bookBySlug[b.Slug] = i
	}

	cats := make(map[string]bool)
	for _, w := range works {
		if _, dup := idx.works[w.ID]; dup {
			return nil, fmt.Errorf("duplicate work id %d", w.ID)
		}
		w.Category = strings.TrimSpace(w.Category)
		if w.Category == "" {
			w.Category = OtherCategory
		}
		idx.works[w.ID] = w
		idx.workOrder = append(idx.workOrder, w.ID)
		cats[w.Category] = true
	}
	for _, b := range idx.books {
		for _, ch := range b.chapters {
			if cc, ok := ch.(CategorizedChapter); ok {
				for c := range cc.counts {
					cats[c] = true
				}
			}
		}
	}
	for c := range cats {
		idx.categories = append(idx.categories, c)
	}
	sort.Strings(idx.categories)
	return idx, nil
}

// Books returns the books in canonical order.
func (x *Index) Books() []Book {
	out := make([]Book, len(x.books))
	copy(out, x.books)
	return out
}

// Book looks up a book by slug.
func (x *Index) Book(slug string) (Book, bool) {
	i, ok := x.bookBySlug[slug]
	if !ok {
		return Book{}, false
	}
	return x.books[i], true
}

// Work resolves a work id.
func (x *Index) Work(id int) (Work, bool) {
	w, ok := x.works[id]
	return w, ok
}

// Works returns all works in load order.
func (x *Index) Works() []Work {
	out := make([]Work, 0, len(x.workOrder))
	for _, id := range x.workOrder {
		out = append(out, x.works[id])
	}
	return out
}

// Categories returns every category present in the index, sorted.
func (x *Index) Categories() []string {
	out := make([]string, len(x.categories))
	copy(out, x.categories)
	return out
}
