package corpus

import (
	"fmt"
	"log/slog"

	"github.com/bitflora/patristics-explorer/internal/bible"
)

// ── JSON payload types ────────────────────────────────────────────────────────
//
// These mirror the files written by the corpus builder under data/static/.

// chapterEntry is a chapter's counts in index.json.gz. Cats is absent in
// indexes written before categories were recorded.
type chapterEntry struct {
	Ch    int            `json:"ch"`
	Count int            `json:"count"`
	Cats  map[string]int `json:"cats,omitempty"`
}

type bookEntry struct {
	Name     string         `json:"name"`
	Slug     string         `json:"slug"`
	Order    int            `json:"order"`
	Chapters []chapterEntry `json:"chapters"`
}

type globalWork struct {
	ID       int    `json:"id"`
	Author   string `json:"author"`
	Title    string `json:"title"`
	Year     *int   `json:"year"`
	Category string `json:"category,omitempty"`
	RefCount *int   `json:"ref_count"`
	Link     string `json:"link,omitempty"`
}

// indexPayload is the top-level structure for index.json.gz.
type indexPayload struct {
	Books []bookEntry  `json:"books"`
	Works []globalWork `json:"works"`
}

// workEntry is a manuscript entry in a chapter's deduplicated works list.
// The builder numbers these entries by position within the chapter, so ID is
// only a global work id in files that reference passages by id.
type workEntry struct {
	ID       int    `json:"id"`
	Author   string `json:"author"`
	Title    string `json:"title"`
	Year     *int   `json:"year"`
	Filename string `json:"filename,omitempty"`
}

// chapterRef is a single citation record within a chapter file. A ref
// carries either a passage id or, in older files, the passage text itself.
type chapterRef struct {
	V    *string `json:"v"`
	W    int     `json:"w"`
	P    string  `json:"p,omitempty"`
	Text string  `json:"text,omitempty"`
}

// chapterPayload is the structure of bible/{book-slug}/{ch}.json.gz.
type chapterPayload struct {
	Book    string       `json:"book"`
	Chapter int          `json:"chapter"`
	Works   []workEntry  `json:"works"`
	Refs    []chapterRef `json:"refs"`
}

type workRef struct {
	Book     string  `json:"book"`
	BookSlug string  `json:"book_slug"`
	Chapter  int     `json:"chapter"`
	V        *string `json:"v"`
}

// workPayload is the structure of manuscripts/{id}.json.gz.
type workPayload struct {
	ID   int       `json:"id"`
	Refs []workRef `json:"refs"`
}

// ── Decoding ──────────────────────────────────────────────────────────────────

func (p indexPayload) toIndex(log *slog.Logger) (*Index, error) {
	books := make([]Book, 0, len(p.Books))
	for _, be := range p.Books {
		chs := make([]Chapter, 0, len(be.Chapters))
		for _, ce := range be.Chapters {
			if ce.Cats == nil {
				chs = append(chs, CountOnlyChapter{Num: ce.Ch, Count: ce.Count})
				continue
			}
			cc := NewCategorizedChapter(ce.Ch, ce.Cats)
			if cc.Total() != ce.Count {
				log.Warn("chapter count disagrees with category breakdown",
					"book", be.Slug, "chapter", ce.Ch, "count", ce.Count, "breakdown", cc.Total())
			}
			chs = append(chs, cc)
		}
		order := be.Order
		if order == 0 {
			order = bible.OrderOf(be.Slug)
		}
		b, err := NewBook(be.Slug, be.Name, order, chs)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}

	works := make([]Work, 0, len(p.Works))
	for _, gw := range p.Works {
		works = append(works, Work{
			ID:       gw.ID,
			Author:   orDefault(gw.Author, "Unknown"),
			Title:    gw.Title,
			Year:     gw.Year,
			Category: gw.Category,
			RefCount: gw.RefCount,
			Link:     gw.Link,
		})
	}
	return NewIndex(books, works)
}

// toDetail converts a chapter file. Works-list entries are mapped to global
// work ids through works; citations of entries that do not resolve are
// dropped. Passages carried inline are handed to register under a synthetic
// id.
func (p chapterPayload) toDetail(key ChapterKey, works *workResolver, log *slog.Logger, register func(id, text string)) ChapterDetail {
	globalIDs := p.hasPassageIDs()
	ids := make([]int, len(p.Works))
	resolved := make([]bool, len(p.Works))
	for i, we := range p.Works {
		ids[i], resolved[i] = works.resolve(we, globalIDs)
		if !resolved[i] {
			log.Warn("chapter work not in index", "chapter", key.String(),
				"author", we.Author, "title", we.Title, "id", we.ID)
		}
	}

	d := ChapterDetail{Book: key.Slug, Chapter: key.Chapter}
	for i, r := range p.Refs {
		if r.W < 0 || r.W >= len(p.Works) {
			log.Debug("ref points outside works list", "chapter", key.String(), "w", r.W)
			continue
		}
		if !resolved[r.W] {
			continue
		}
		checkLocator(log, key.String(), r.V)
		pid := r.P
		if pid == "" && r.Text != "" {
			pid = fmt.Sprintf("%s/%d", key.String(), i)
			register(pid, r.Text)
		}
		d.Citations = append(d.Citations, Citation{
			WorkID:    ids[r.W],
			Verse:     r.V,
			PassageID: pid,
		})
	}
	return d
}

// hasPassageIDs reports whether the file references passages by id rather
// than carrying their text, which marks files whose works ids are global.
func (p chapterPayload) hasPassageIDs() bool {
	for _, r := range p.Refs {
		if r.P != "" {
			return true
		}
	}
	return false
}

// workKey is what the builder writes for a work in both index.json.gz and a
// chapter's works list.
type workKey struct {
	author string
	title  string
	year   int
	dated  bool
}

func keyOf(author, title string, year *int) workKey {
	k := workKey{author: orDefault(author, "Unknown"), title: title}
	if year != nil {
		k.year, k.dated = *year, true
	}
	return k
}

// workResolver maps chapter works-list entries onto the index's works.
type workResolver struct {
	byKey map[workKey]int
	known map[int]bool
}

// newWorkResolver indexes works by author, title and year. When several works
// share all three, the first in index order wins.
func newWorkResolver(idx *Index) *workResolver {
	works := idx.Works()
	r := &workResolver{
		byKey: make(map[workKey]int, len(works)),
		known: make(map[int]bool, len(works)),
	}
	for _, w := range works {
		r.known[w.ID] = true
		k := keyOf(w.Author, w.Title, w.Year)
		if _, dup := r.byKey[k]; !dup {
			r.byKey[k] = w.ID
		}
	}
	return r
}

// resolve finds the global id of a works-list entry. Author, title and year
// decide; the entry's own id is used only when globalIDs is set and it names
// a known work.
func (r *workResolver) resolve(we workEntry, globalIDs bool) (int, bool) {
	if id, ok := r.byKey[keyOf(we.Author, we.Title, we.Year)]; ok {
		return id, true
	}
	if globalIDs && r.known[we.ID] {
		return we.ID, true
	}
	return 0, false
}

func (p workPayload) toDetail(log *slog.Logger) WorkDetail {
	d := WorkDetail{WorkID: p.ID, Refs: make([]WorkRef, 0, len(p.Refs))}
	for _, r := range p.Refs {
		checkLocator(log, fmt.Sprintf("work %d", p.ID), r.V)
		d.Refs = append(d.Refs, WorkRef{BookSlug: r.BookSlug, Chapter: r.Chapter, Verse: r.V})
	}
	return d
}

// checkLocator logs verse locators that do not start with a digit. They are
// kept and treated as opaque keys downstream.
func checkLocator(log *slog.Logger, where string, v *string) {
	if v == nil {
		return
	}
	if *v == "" || (*v)[0] < '0' || (*v)[0] > '9' {
		log.Debug("malformed verse locator", "at", where, "locator", *v)
	}
}

// orDefault returns s if non-empty, otherwise fallback.
func orDefault(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
