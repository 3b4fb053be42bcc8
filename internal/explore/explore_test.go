package explore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/bitflora/patristics-explorer/internal/bible"
	"github.com/bitflora/patristics-explorer/internal/corpus"
	"github.com/bitflora/patristics-explorer/internal/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	idx      *corpus.Index
	chapters map[corpus.ChapterKey]corpus.ChapterDetail
	works    map[int]corpus.WorkDetail
	passages map[string]string

	mu         sync.Mutex
	workCalls  int
	chCalls    int
	gateFirst  chan struct{} // when set, the first Work call blocks until closed
	firstStart chan struct{}

	gateChapter  chan struct{} // when set, the first Chapter call blocks until closed
	chapterStart chan struct{}
}

func (f *fakeSource) Index(context.Context) (*corpus.Index, error) { return f.idx, nil }

func (f *fakeSource) Chapter(_ context.Context, slug string, ch int) (corpus.ChapterDetail, error) {
	f.mu.Lock()
	f.chCalls++
	first := f.chCalls == 1
	f.mu.Unlock()
	if first && f.gateChapter != nil {
		close(f.chapterStart)
		<-f.gateChapter
	}
	key := corpus.ChapterKey{Slug: slug, Chapter: ch}
	d, ok := f.chapters[key]
	if !ok {
		return corpus.ChapterDetail{}, &corpus.FetchError{Kind: "chapter", Key: key.String(), Err: corpus.ErrNotFound}
	}
	return d, nil
}

func (f *fakeSource) Work(_ context.Context, id int) (corpus.WorkDetail, error) {
	f.mu.Lock()
	f.workCalls++
	first := f.workCalls == 1
	f.mu.Unlock()
	if first && f.gateFirst != nil {
		close(f.firstStart)
		<-f.gateFirst
	}
	d, ok := f.works[id]
	if !ok {
		return corpus.WorkDetail{}, &corpus.FetchError{Kind: "work", Key: fmt.Sprint(id), Err: corpus.ErrNotFound}
	}
	return d, nil
}

func (f *fakeSource) Passage(_ context.Context, id string) (string, error) {
	p, ok := f.passages[id]
	if !ok {
		return "", &corpus.FetchError{Kind: "passage", Key: id, Err: corpus.ErrNotFound}
	}
	return p, nil
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func newFake(t *testing.T) *fakeSource {
	t.Helper()
	rom, err := corpus.NewBook("romans", "Romans", 61, []corpus.Chapter{
		corpus.NewCategorizedChapter(8, map[string]int{"Ante-Nicene": 3, "Nicene": 1}),
		corpus.NewCategorizedChapter(12, map[string]int{"Nicene": 10}),
	})
	require.NoError(t, err)
	gen, err := corpus.NewBook("genesis", "Genesis", 1, []corpus.Chapter{
		corpus.CountOnlyChapter{Num: 1, Count: 2},
	})
	require.NoError(t, err)
	idx, err := corpus.NewIndex([]corpus.Book{rom, gen}, []corpus.Work{
		{ID: 1, Author: "Origen", Year: intPtr(246), Category: "Ante-Nicene"},
		{ID: 2, Author: "Augustine", Year: intPtr(420), Category: "Nicene"},
		{ID: 3, Author: "Anonymous", Category: "Nicene"},
	})
	require.NoError(t, err)

	return &fakeSource{
		idx: idx,
		chapters: map[corpus.ChapterKey]corpus.ChapterDetail{
			{Slug: "romans", Chapter: 8}: {Book: "romans", Chapter: 8, Citations: []corpus.Citation{
				{WorkID: 1, Verse: strPtr("13"), PassageID: "p1"},
				{WorkID: 1, Verse: strPtr("10"), PassageID: "p2"},
				{WorkID: 2, Verse: nil, PassageID: "p3"},
				{WorkID: 1, Verse: strPtr("13-17"), PassageID: "missing"},
				{WorkID: 42, Verse: strPtr("9"), PassageID: "p1"},
			}},
		},
		works: map[int]corpus.WorkDetail{
			1: {WorkID: 1, Refs: []corpus.WorkRef{{BookSlug: "romans", Chapter: 8}, {BookSlug: "genesis", Chapter: 1}}},
			2: {WorkID: 2, Refs: []corpus.WorkRef{{BookSlug: "romans", Chapter: 8}}},
		},
		passages: map[string]string{
			"p1": "Hence it is written. As Rom. viii. 13 teaches, mortify the flesh. Amen.",
			"p2": "No reference to the verse here.",
			"p3": "The whole chapter is praised.",
		},
	}
}

func newExplorer(t *testing.T, src corpus.Source) *Explorer {
	t.Helper()
	e, err := New(context.Background(), src, Options{FetchConcurrency: 2})
	require.NoError(t, err)
	return e
}

func TestBooksHeatmap(t *testing.T) {
	e := newExplorer(t, newFake(t))
	got := e.Books(e.AllCategories())
	assert.Equal(t, []BookHeat{
		{Slug: "genesis", Name: "Genesis", Count: 2, Level: 1},
		{Slug: "romans", Name: "Romans", Count: 14, Level: 4},
	}, got)

	got = e.Books(filter.NewCategories("Ante-Nicene"))
	assert.Equal(t, 2, got[0].Count, "legacy chapters keep their total under any filter")
	assert.Equal(t, 3, got[1].Count)
	assert.Equal(t, 4, got[1].Level)
	assert.Equal(t, 3, got[0].Level)
}

func TestChaptersHeatmap(t *testing.T) {
	e := newExplorer(t, newFake(t))
	got, err := e.Chapters("romans", e.AllCategories())
	require.NoError(t, err)
	assert.Equal(t, []ChapterHeat{{Number: 8, Count: 4, Level: 3}, {Number: 12, Count: 10, Level: 4}}, got)

	got, err = e.Chapters("romans", filter.NewCategories())
	require.NoError(t, err)
	assert.Equal(t, 0, got[0].Level)

	_, err = e.Chapters("tobit", e.AllCategories())
	assert.ErrorIs(t, err, corpus.ErrNotFound)
}

func TestVersesGroupsAndCaches(t *testing.T) {
	src := newFake(t)
	e := newExplorer(t, src)
	sel := Selection{}.WithBook("romans").WithChapter(8)

	vv, ok, err := e.Verses(context.Background(), sel, e.AllCategories())
	require.NoError(t, err)
	assert.True(t, ok)
	keys := make([]string, len(vv.Groups))
	for i, g := range vv.Groups {
		keys[i] = g.Key
	}
	assert.Equal(t, []string{"whole", "10", "13"}, keys, "unresolved work 42 is dropped")
	assert.Equal(t, 4, vv.Levels["13"])
	assert.Equal(t, 3, vv.Levels["10"])

	vv, _, err = e.Verses(context.Background(), sel, filter.NewCategories("Nicene"))
	require.NoError(t, err)
	require.Len(t, vv.Groups, 1)
	assert.Equal(t, "whole", vv.Groups[0].Key)
	assert.Equal(t, 1, src.chCalls, "chapter detail is fetched once per session")

	_, _, err = e.Verses(context.Background(), Selection{Book: "romans"}, e.AllCategories())
	assert.Error(t, err)

	_, ok, err = e.Verses(context.Background(), sel.WithChapter(12), e.AllCategories())
	assert.False(t, ok)
	var fe *corpus.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "romans/12", fe.Key)
}

func TestCards(t *testing.T) {
	e := newExplorer(t, newFake(t))
	sel := Selection{Book: "romans", Chapter: 8}.WithVerse("13")

	cards, ok, err := e.Cards(context.Background(), sel, e.AllCategories())
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, cards, 2)

	assert.NoError(t, cards[0].Err)
	assert.Equal(t, "Origen", cards[0].Work.Author)
	assert.Equal(t, "As Rom. viii. 13 teaches, mortify the flesh.", cards[0].Span.Highlighted)
	assert.Equal(t, "Hence it is written. ", cards[0].Span.Prefix)

	assert.ErrorIs(t, cards[1].Err, corpus.ErrNotFound, "a missing passage only marks its own card")

	all, _, err := e.Cards(context.Background(), sel.WithVerse(""), e.AllCategories())
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "whole", all[0].VerseKey)
	assert.False(t, all[0].Span.Found())
	assert.Equal(t, "The whole chapter is praised.", all[0].Span.Prefix)
	assert.False(t, all[1].Span.Found(), "p2 has no reference to highlight")

	none, _, err := e.Cards(context.Background(), sel.WithVerse("99"), e.AllCategories())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTimeline(t *testing.T) {
	src := newFake(t)
	e := newExplorer(t, src)

	view, ok := e.Timeline(context.Background(), e.AllCategories())
	require.True(t, ok)
	assert.Equal(t, 1, view.Undated)
	assert.Equal(t, 25, view.Width)
	assert.Empty(t, view.Failed)

	totals := view.Totals()
	assert.Equal(t, 2, totals[bible.ActsEpistles].Citations)
	assert.Equal(t, 1, totals[bible.Pentateuch].Citations)

	calls := src.workCalls
	_, ok = e.Timeline(context.Background(), filter.NewCategories("Nicene"))
	require.True(t, ok)
	assert.Equal(t, calls, src.workCalls, "recomputing after a filter change never refetches")

	cur, ok := e.CurrentTimeline()
	require.True(t, ok)
	assert.Equal(t, uint64(2), cur.Generation)
}

func TestTimelineReportsFailedWorks(t *testing.T) {
	src := newFake(t)
	delete(src.works, 2)
	e := newExplorer(t, src)

	view, ok := e.Timeline(context.Background(), e.AllCategories())
	require.True(t, ok)
	assert.Equal(t, []int{2}, view.Failed)
	workCount := 0
	for _, b := range view.Buckets {
		workCount += b.WorkCount
	}
	assert.Equal(t, 2, workCount, "a work that failed to load still counts as a dated work")
}

func TestTimelineStaleResultDiscarded(t *testing.T) {
	src := newFake(t)
	src.gateFirst = make(chan struct{})
	src.firstStart = make(chan struct{})
	e := newExplorer(t, src)

	type result struct {
		view TimelineView
		ok   bool
	}
	older := make(chan result, 1)
	go func() {
		v, ok := e.Timeline(context.Background(), e.AllCategories())
		older <- result{v, ok}
	}()
	<-src.firstStart

	newer, ok := e.Timeline(context.Background(), filter.NewCategories("Nicene"))
	require.True(t, ok)
	assert.Equal(t, uint64(2), newer.Generation)

	close(src.gateFirst)
	r := <-older
	assert.False(t, r.ok, "generation 1 finished after generation 2 began")
	assert.Equal(t, uint64(1), r.view.Generation)

	cur, _ := e.CurrentTimeline()
	assert.Equal(t, uint64(2), cur.Generation, "stale result never overwrites the newer one")
}

func TestCardsStaleResultDiscarded(t *testing.T) {
	src := newFake(t)
	src.chapters[corpus.ChapterKey{Slug: "romans", Chapter: 12}] = corpus.ChapterDetail{
		Book: "romans", Chapter: 12,
		Citations: []corpus.Citation{{WorkID: 2, Verse: strPtr("3"), PassageID: "p3"}},
	}
	src.gateChapter = make(chan struct{})
	src.chapterStart = make(chan struct{})
	e := newExplorer(t, src)

	type result struct {
		cards []Card
		ok    bool
		err   error
	}
	older := make(chan result, 1)
	go func() {
		c, ok, err := e.Cards(context.Background(), Selection{Book: "romans", Chapter: 8}, e.AllCategories())
		older <- result{c, ok, err}
	}()
	<-src.chapterStart

	newer, ok, err := e.Cards(context.Background(), Selection{Book: "romans", Chapter: 12}, e.AllCategories())
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, newer, 1)

	close(src.gateChapter)
	r := <-older
	require.NoError(t, r.err)
	assert.False(t, r.ok, "romans 8 finished after romans 12 was requested")
	assert.NotEmpty(t, r.cards)

	cur, ok := e.CurrentCards()
	require.True(t, ok)
	require.Len(t, cur, 1)
	assert.Equal(t, 2, cur[0].Work.ID)
}

func TestVersesStaleResultDiscarded(t *testing.T) {
	src := newFake(t)
	src.chapters[corpus.ChapterKey{Slug: "romans", Chapter: 12}] = corpus.ChapterDetail{
		Book: "romans", Chapter: 12,
		Citations: []corpus.Citation{{WorkID: 2, Verse: strPtr("3"), PassageID: "p3"}},
	}
	src.gateChapter = make(chan struct{})
	src.chapterStart = make(chan struct{})
	e := newExplorer(t, src)

	older := make(chan bool, 1)
	go func() {
		_, ok, err := e.Verses(context.Background(), Selection{Book: "romans", Chapter: 8}, e.AllCategories())
		older <- ok && err == nil
	}()
	<-src.chapterStart

	_, ok, err := e.Verses(context.Background(), Selection{Book: "romans", Chapter: 12}, e.AllCategories())
	require.NoError(t, err)
	require.True(t, ok)

	close(src.gateChapter)
	assert.False(t, <-older)

	cur, ok := e.CurrentVerses()
	require.True(t, ok)
	assert.Equal(t, 12, cur.Chapter, "stale verse view never overwrites the newer one")
}

func TestNewPropagatesIndexError(t *testing.T) {
	boom := errors.New("boom")
	_, err := New(context.Background(), errSource{err: boom}, Options{})
	assert.ErrorIs(t, err, boom)
}

type errSource struct {
	corpus.Source
	err error
}

func (s errSource) Index(context.Context) (*corpus.Index, error) { return nil, s.err }

func TestSelection(t *testing.T) {
	s := Selection{}.WithBook("romans").WithChapter(8).WithVerse("13")
	assert.Equal(t, Selection{Book: "romans", Chapter: 8, Verse: "13"}, s)
	assert.Equal(t, Selection{Book: "romans"}, s.WithBook("romans"))
	assert.Equal(t, Selection{Book: "romans", Chapter: 9}, s.WithChapter(9))
}
