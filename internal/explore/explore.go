// Package explore composes the corpus index, the category filter and the
// derived views into what a browser renders: heatmaps for books, chapters
// and verses, citation cards with their highlighted sentence, and the era
// timeline.
//
// An Explorer holds no selection state. Each view is computed from the
// index, the active categories and a Selection passed in by the caller.
// Views that wait on a fetch (verses, cards, timeline) are committed under a
// generation, so a result that finishes after a newer request of the same
// view has begun is returned uncommitted and never becomes current.
package explore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/bitflora/patristics-explorer/internal/corpus"
	"github.com/bitflora/patristics-explorer/internal/era"
	"github.com/bitflora/patristics-explorer/internal/filter"
	"github.com/bitflora/patristics-explorer/internal/heat"
	"github.com/bitflora/patristics-explorer/internal/highlight"
	"github.com/bitflora/patristics-explorer/internal/verses"
)

// Selection is the book, chapter and verse currently being looked at.
// Zero fields mean nothing is selected at that level.
type Selection struct {
	Book    string
	Chapter int
	Verse   string // verse key as produced by verses.PrimaryKey
}

// WithBook selects a book and clears chapter and verse.
func (s Selection) WithBook(slug string) Selection { return Selection{Book: slug} }

// WithChapter selects a chapter of the current book and clears the verse.
func (s Selection) WithChapter(n int) Selection { return Selection{Book: s.Book, Chapter: n} }

// WithVerse selects a verse key of the current chapter.
func (s Selection) WithVerse(key string) Selection {
	s.Verse = key
	return s
}

// BookHeat is one cell of the book heatmap.
type BookHeat struct {
	Slug  string
	Name  string
	Count int
	Level int
}

// ChapterHeat is one cell of a book's chapter heatmap.
type ChapterHeat struct {
	Number int
	Count  int
	Level  int
}

// VerseView is a chapter's citations grouped by verse.
type VerseView struct {
	Book    string
	Chapter int
	Groups  []verses.Group
	Levels  map[string]int // heat level per verse key
}

// Card is one citation ready for display. Err is set when its passage could
// not be loaded; the rest of the view is unaffected.
type Card struct {
	Citation corpus.Citation
	Work     corpus.Work
	VerseKey string
	Span     highlight.Span
	Err      error
}

// TimelineView is a committed era timeline and the works whose citation
// lists could not be loaded.
type TimelineView struct {
	era.Timeline
	Generation uint64
	Failed     []int
}

// Options tunes an Explorer.
type Options struct {
	FetchConcurrency int // parallel work fetches for the timeline; ≤0 means NumCPU
	BucketWidth      int // fixed era bucket width; ≤0 chooses from the span
	Logger           *slog.Logger
}

// Explorer serves views over one corpus.
type Explorer struct {
	idx         *corpus.Index
	src         corpus.Source
	chapters    *corpus.Cache[corpus.ChapterKey, corpus.ChapterDetail]
	passages    *corpus.Cache[string, string]
	gatherer    *era.Gatherer
	verses      Latest[VerseView]
	cards       Latest[[]Card]
	timeline    Latest[TimelineView]
	bucketWidth int
	log         *slog.Logger
}

// New loads the index from src once and returns an Explorer over it.
func New(ctx context.Context, src corpus.Source, opts Options) (*Explorer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	idx, err := src.Index(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("corpus index loaded",
		"books", len(idx.Books()), "works", len(idx.Works()), "categories", len(idx.Categories()))
	return &Explorer{
		idx:         idx,
		src:         src,
		chapters:    corpus.NewCache[corpus.ChapterKey, corpus.ChapterDetail](),
		passages:    corpus.NewCache[string, string](),
		gatherer:    era.NewGatherer(src, opts.FetchConcurrency, logger),
		bucketWidth: opts.BucketWidth,
		log:         logger,
	}, nil
}

// Index returns the corpus index.
func (e *Explorer) Index() *corpus.Index { return e.idx }

// AllCategories returns the set of every category in the corpus.
func (e *Explorer) AllCategories() filter.Categories { return filter.All(e.idx) }

// Books returns the book heatmap for the active categories, in canonical order.
func (e *Explorer) Books(active filter.Categories) []BookHeat {
	books := e.idx.Books()
	counts := filter.BookCounts(e.idx, active)
	levels := heat.Levels(counts)
	out := make([]BookHeat, len(books))
	for i, b := range books {
		out[i] = BookHeat{Slug: b.Slug, Name: b.Name, Count: counts[i], Level: levels[i]}
	}
	return out
}

// Chapters returns the chapter heatmap of one book.
func (e *Explorer) Chapters(slug string, active filter.Categories) ([]ChapterHeat, error) {
	b, ok := e.idx.Book(slug)
	if !ok {
		return nil, fmt.Errorf("book %s: %w", slug, corpus.ErrNotFound)
	}
	chs := b.Chapters()
	counts := filter.ChapterCounts(b, active)
	levels := heat.Levels(counts)
	out := make([]ChapterHeat, len(chs))
	for i, ch := range chs {
		out[i] = ChapterHeat{Number: ch.Number(), Count: counts[i], Level: levels[i]}
	}
	return out, nil
}

func (e *Explorer) chapter(ctx context.Context, slug string, num int) (corpus.ChapterDetail, error) {
	key := corpus.ChapterKey{Slug: slug, Chapter: num}
	d, err := e.chapters.GetOrLoad(ctx, key, func(ctx context.Context) (corpus.ChapterDetail, error) {
		return e.src.Chapter(ctx, slug, num)
	})
	if err != nil {
		e.log.Warn("chapter unavailable", "chapter", key.String(), "error", err)
	}
	return d, err
}

// Verses groups the selected chapter's citations by verse. The view is
// committed only if no later Verses call has begun meanwhile; a failed fetch
// commits nothing.
func (e *Explorer) Verses(ctx context.Context, sel Selection, active filter.Categories) (view VerseView, committed bool, err error) {
	gen := e.verses.Begin()
	view, err = e.verseView(ctx, sel, active)
	if err != nil {
		return VerseView{}, false, err
	}
	committed = e.verses.Commit(gen, view)
	if !committed {
		e.log.Debug("discarding stale verse view", "generation", gen, "current", e.verses.Current())
	}
	return view, committed, nil
}

// CurrentVerses returns the last committed verse view.
func (e *Explorer) CurrentVerses() (VerseView, bool) {
	v, gen := e.verses.Value()
	return v, gen != 0
}

func (e *Explorer) verseView(ctx context.Context, sel Selection, active filter.Categories) (VerseView, error) {
	if sel.Book == "" || sel.Chapter == 0 {
		return VerseView{}, fmt.Errorf("no chapter selected")
	}
	d, err := e.chapter(ctx, sel.Book, sel.Chapter)
	if err != nil {
		return VerseView{}, err
	}
	groups := verses.GroupByVerse(d.Citations, e.idx, active)
	counts := make([]int, len(groups))
	for i, g := range groups {
		counts[i] = len(g.Citations)
	}
	levels := heat.Levels(counts)
	lv := make(map[string]int, len(groups))
	for i, g := range groups {
		lv[g.Key] = levels[i]
	}
	return VerseView{Book: sel.Book, Chapter: sel.Chapter, Groups: groups, Levels: lv}, nil
}

// Cards builds the citation cards of the selection: the selected verse's
// group, or every group when no verse is selected. A passage that fails to
// load marks only its own card. Cards are committed under their own
// generation, like Verses.
func (e *Explorer) Cards(ctx context.Context, sel Selection, active filter.Categories) (cards []Card, committed bool, err error) {
	gen := e.cards.Begin()
	vv, err := e.verseView(ctx, sel, active)
	if err != nil {
		return nil, false, err
	}
	groups := vv.Groups
	if sel.Verse != "" {
		g, ok := verses.Find(groups, sel.Verse)
		if !ok {
			groups = nil
		} else {
			groups = []verses.Group{g}
		}
	}

	for _, g := range groups {
		for _, c := range g.Citations {
			w, _ := e.idx.Work(c.WorkID)
			card := Card{Citation: c, Work: w, VerseKey: g.Key}
			text, err := e.passage(ctx, c.PassageID)
			if err != nil {
				card.Err = err
			} else {
				card.Span = highlight.Highlight(text, sel.Chapter, c.Verse)
			}
			cards = append(cards, card)
		}
	}

	committed = e.cards.Commit(gen, cards)
	if !committed {
		e.log.Debug("discarding stale cards", "generation", gen, "current", e.cards.Current())
	}
	return cards, committed, nil
}

// CurrentCards returns the last committed cards.
func (e *Explorer) CurrentCards() ([]Card, bool) {
	v, gen := e.cards.Value()
	return v, gen != 0
}

func (e *Explorer) passage(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", &corpus.FetchError{Kind: "passage", Err: corpus.ErrNotFound}
	}
	text, err := e.passages.GetOrLoad(ctx, id, func(ctx context.Context) (string, error) {
		return e.src.Passage(ctx, id)
	})
	if err != nil {
		e.log.Debug("passage unavailable", "passage", id, "error", err)
	}
	return text, err
}

// Timeline gathers the citation lists of the dated active works and buckets
// them by era. The result is committed only if no later Timeline call has
// begun meanwhile; committed reports whether that happened. A superseded
// result is still returned but must not be rendered.
func (e *Explorer) Timeline(ctx context.Context, active filter.Categories) (view TimelineView, committed bool) {
	gen := e.timeline.Begin()

	var works []corpus.Work
	var ids []int
	for _, w := range e.idx.Works() {
		if !active.Has(w.Category) {
			continue
		}
		works = append(works, w)
		if w.Dated() {
			ids = append(ids, w.ID)
		}
	}

	refs, failed := e.gatherer.Gather(ctx, ids)
	view = TimelineView{
		Timeline:   era.BucketWorksByEra(works, refs, active, e.bucketWidth),
		Generation: gen,
	}
	for id := range failed {
		view.Failed = append(view.Failed, id)
	}
	sort.Ints(view.Failed)
	if len(view.Failed) > 0 {
		e.log.Warn("timeline built with missing works", "failed", len(view.Failed), "generation", gen)
	}

	committed = e.timeline.Commit(gen, view)
	if !committed {
		e.log.Debug("discarding stale timeline", "generation", gen, "current", e.timeline.Current())
	}
	return view, committed
}

// CurrentTimeline returns the last committed timeline.
func (e *Explorer) CurrentTimeline() (TimelineView, bool) {
	v, gen := e.timeline.Value()
	return v, gen != 0
}
